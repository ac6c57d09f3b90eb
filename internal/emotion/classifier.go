package emotion

import (
	"context"
	"strings"
)

// Result is the outcome of classifying one submission.
type Result struct {
	// Emotion is the arg-max of Labels, ties broken by canonical order.
	Emotion Label `json:"emotion"`
	// Score is the value of Emotion within Labels.
	Score float64 `json:"score"`
	// Labels is the full probability distribution.
	Labels Vector `json:"labels"`
	// Manual marks a student-selected label that bypassed the text.
	Manual bool `json:"manual,omitempty"`
}

// Classifier turns free text into a Result. Implementations must be
// pure with respect to their inputs and safe for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, text string) Result
}

// External is an optional second opinion: a remote classifier that
// returns a distribution over the six labels. Failure of any kind is
// recoverable — callers proceed lexicon-only.
type External interface {
	ClassifyText(ctx context.Context, text string) (Vector, error)
}

// RuleClassifier is the primary pipeline: lexicon scoring, floor
// normalization, and an optional convex mix with an external
// distribution.
type RuleClassifier struct {
	params   Params
	scorer   *Scorer
	external External // nil when disabled
}

// NewRuleClassifier builds the primary classifier. external may be nil.
func NewRuleClassifier(p Params, external External) *RuleClassifier {
	return &RuleClassifier{params: p, scorer: NewScorer(p), external: external}
}

// Classify runs the lexicon pipeline. When an external classifier is
// configured and answers in time, its distribution is mixed in with
// weight ExternalWeight and the result renormalized with the plain
// partition (not the floor variant). Classify is total: any text,
// including empty, yields a valid distribution.
func (c *RuleClassifier) Classify(ctx context.Context, text string) Result {
	lex := normalizeFloorDamped(c.scorer.Score(text), c.params, confidenceResolve(text))

	labels := lex
	if c.external != nil {
		if ext, err := c.external.ClassifyText(ctx, text); err == nil {
			labels = c.mix(lex, Normalize(ext))
		}
	}

	top := labels.ArgMax()
	return Result{Emotion: top, Score: labels[top], Labels: labels}
}

// mix forms (1-w)*lexicon + w*external over all six labels, then
// renormalizes with the plain partition.
func (c *RuleClassifier) mix(lex, ext Vector) Vector {
	w := c.params.ExternalWeight
	var combined Vector
	for i := range combined {
		combined[i] = (1.0-w)*lex[i] + w*ext[i]
	}
	return Normalize(combined)
}

// Resolver wraps a Classifier with manual-override handling: a student
// picking their own emotion always wins over anything the text says.
type Resolver struct {
	classifier Classifier
	normalizer *Normalizer
	manualOnly bool
}

// NewResolver builds a Resolver. With manualOnly set, an unrecognizable
// selected emotion is a client error instead of falling back to text
// classification.
func NewResolver(c Classifier, n *Normalizer, manualOnly bool) *Resolver {
	return &Resolver{classifier: c, normalizer: n, manualOnly: manualOnly}
}

// invalidSelections are placeholder tokens the front end sends for "no
// choice made"; they are treated as absent, not as unknown labels.
var invalidSelections = map[string]bool{
	"未選択": true, "none": true, "null": true, "なし": true,
	"na": true, "n/a": true, "-": true,
}

// Resolve classifies one submission. selected, when it normalizes to a
// canonical label, produces a one-hot result with score 1.0 and the
// text is never consulted. An empty text with no selection returns
// ErrEmptyText; an unrecognizable selection returns ErrUnknownLabel in
// manual-only mode and otherwise falls through to the text.
func (r *Resolver) Resolve(ctx context.Context, text, selected string) (Result, error) {
	sel := strings.TrimSpace(selected)
	if invalidSelections[strings.ToLower(sel)] {
		sel = ""
	}
	if sel != "" {
		if label, ok := r.normalizer.Normalize(sel); ok {
			return Result{Emotion: label, Score: 1.0, Labels: OneHot(label), Manual: true}, nil
		}
		if r.manualOnly {
			return Result{}, ErrUnknownLabel
		}
	}
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyText
	}
	return r.classifier.Classify(ctx, text), nil
}
