package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"kokorolog/internal/emotion"
)

// geminiClient classifies and paraphrases through the Gemini API.
type geminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func newGeminiClient(ctx context.Context, o Options) (*geminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: o.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	model := o.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &geminiClient{client: client, model: model, timeout: o.Timeout}, nil
}

// Generate runs a single-turn completion and returns the raw text.
func (c *geminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx,
		c.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0),
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty response")
	}
	return text, nil
}

// ClassifyText implements emotion.External.
func (c *geminiClient) ClassifyText(ctx context.Context, text string) (emotion.Vector, error) {
	return classify(ctx, c, c.timeout, text)
}
