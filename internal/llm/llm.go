// Package llm provides the optional external classifier and reply
// paraphraser backing the emotion pipeline. Every call is time-bounded
// and every failure is recoverable: callers always have a lexicon-only
// answer ready.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"kokorolog/internal/emotion"
	"kokorolog/internal/logging"
)

// Client is a provider-backed text model. It satisfies
// emotion.External for distribution mixing and additionally generates
// free-form text for reply paraphrasing.
type Client interface {
	emotion.External
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options selects and configures a provider.
type Options struct {
	Provider string // gemini, openai, off
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// New builds the configured client. Provider "off" (or an empty API
// key) returns nil with no error: the pipeline runs lexicon-only.
func New(ctx context.Context, o Options) (Client, error) {
	if o.Provider == "off" || o.Provider == "" || o.APIKey == "" {
		return nil, nil
	}
	if o.Timeout <= 0 {
		o.Timeout = 8 * time.Second
	}
	switch o.Provider {
	case "gemini":
		return newGeminiClient(ctx, o)
	case "openai":
		return newOpenAIClient(o), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", o.Provider)
	}
}

// classifyPrompt asks for a weight per canonical label as plain JSON.
const classifyPrompt = `あなたは生徒の日記を読む感情分析器です。次のテキストを読み、6つの感情それぞれの強さを0から1で推定してください。
出力は次のキーを持つJSONオブジェクトのみ: "楽しい", "悲しい", "怒り", "不安", "しんどい", "中立"。
説明文は不要です。

テキスト:
%s`

// parseVector decodes a model response into a Vector. Code fences and
// surrounding prose are tolerated; anything outside the outermost
// braces is ignored.
func parseVector(raw string) (emotion.Vector, error) {
	var v emotion.Vector
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return v, fmt.Errorf("no JSON object in model output")
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &v); err != nil {
		return v, fmt.Errorf("malformed label JSON: %w", err)
	}
	if v.SumNonNeutral()+v.Get(emotion.Neutral) == 0 {
		return v, fmt.Errorf("model returned an all-zero distribution")
	}
	return v, nil
}

// classify runs the shared prompt/parse path for a provider.
func classify(ctx context.Context, c Client, timeout time.Duration, text string) (emotion.Vector, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	timer := logging.StartTimer(logging.CategoryLLM, "classify")
	raw, err := c.Generate(ctx, fmt.Sprintf(classifyPrompt, text))
	timer.StopWithThreshold(timeout / 2)
	if err != nil {
		logging.LLMWarn("classify call failed: %v", err)
		return emotion.Vector{}, err
	}
	v, err := parseVector(raw)
	if err != nil {
		logging.LLMWarn("classify parse failed: %v", err)
		return emotion.Vector{}, err
	}
	return v, nil
}
