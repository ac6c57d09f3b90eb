package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"kokorolog/internal/emotion"
)

// openaiClient classifies and paraphrases through the OpenAI responses
// API.
type openaiClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func newOpenAIClient(o Options) *openaiClient {
	client := openai.NewClient(option.WithAPIKey(o.APIKey))
	model := o.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &openaiClient{client: &client, model: model, timeout: o.Timeout}
}

// Generate runs a single-turn completion and returns the raw text.
func (c *openaiClient) Generate(ctx context.Context, prompt string) (string, error) {
	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(512),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
			},
		},
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai responses: %w", err)
	}
	text := resp.OutputText()
	if text == "" {
		return "", fmt.Errorf("openai returned empty response")
	}
	return text, nil
}

// ClassifyText implements emotion.External.
func (c *openaiClient) ClassifyText(ctx context.Context, text string) (emotion.Vector, error) {
	return classify(ctx, c, c.timeout, text)
}
