package emotion

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Normalizer resolves free-text emotion names (aliases, width and case
// variants, partial matches) to canonical labels. It is built once at
// startup and read-only afterwards, so it can be shared freely.
type Normalizer struct {
	aliases map[string]Label
}

// fallbackAliases is the built-in table used when no overlay document
// is supplied, or when the supplied one cannot be parsed.
var fallbackAliases = map[string]Label{
	"嬉しい":   Fun,
	"うれしい":  Fun,
	"たのしい":  Fun,
	"楽しみ":   Fun,
	"わくわく":  Fun,
	"ok":    Neutral,
	"ふつう":   Neutral,
	"普通":    Neutral,
	"怒":     Angry,
	"ムカつく":  Angry,
	"むかつく":  Angry,
	"イライラ":  Angry,
	"こわい":   Anxious,
	"怖い":    Anxious,
	"心配":    Anxious,
	"しんど":   Tired,
	"疲れ":    Tired,
	"疲れた":   Tired,
	"ヘトヘト":  Tired,
	"落ち込":   Sad,
	"ショック":  Sad,
	"さみしい":  Sad,
}

// fold applies Unicode compatibility normalization, lower-casing, and
// whitespace trimming so that width and case variants compare equal.
func fold(s string) string {
	return strings.TrimSpace(strings.ToLower(norm.NFKC.String(s)))
}

// NewNormalizer builds a Normalizer from the built-in alias table.
func NewNormalizer() *Normalizer {
	return newNormalizer(nil)
}

// aliasDoc is the overlay document shape: canonical label name mapped
// to a list of alias strings.
type aliasDoc map[string][]string

// NewNormalizerFromYAML builds a Normalizer from the built-in table
// overlaid with the given YAML document. A malformed document or an
// entry keyed by a non-canonical name yields an error; callers are
// expected to fall back to NewNormalizer and log.
func NewNormalizerFromYAML(data []byte) (*Normalizer, error) {
	var doc aliasDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse alias document: %w", err)
	}
	overlay := make(map[string]Label)
	for canonical, aliases := range doc {
		label, ok := ParseLabel(strings.TrimSpace(canonical))
		if !ok {
			return nil, fmt.Errorf("alias document: unknown canonical label %q", canonical)
		}
		for _, a := range aliases {
			if folded := fold(a); folded != "" {
				overlay[folded] = label
			}
		}
	}
	return newNormalizer(overlay), nil
}

func newNormalizer(overlay map[string]Label) *Normalizer {
	aliases := make(map[string]Label, len(fallbackAliases)+len(overlay))
	for a, l := range fallbackAliases {
		aliases[fold(a)] = l
	}
	for a, l := range overlay {
		aliases[a] = l
	}
	// Canonical names always resolve to themselves, overlay or not.
	for _, l := range Labels() {
		aliases[fold(l.String())] = l
	}
	return &Normalizer{aliases: aliases}
}

// Normalize maps raw to a canonical label. Resolution order: canonical
// exact match, alias exact match, then substring containment in either
// direction. The second return is false when nothing matches or raw is
// empty; the caller decides whether that is an error.
func (n *Normalizer) Normalize(raw string) (Label, bool) {
	s := fold(raw)
	if s == "" {
		return Neutral, false
	}
	for _, l := range Labels() {
		if s == fold(l.String()) {
			return l, true
		}
	}
	if l, ok := n.aliases[s]; ok {
		return l, true
	}
	// Containment only tests canonical names, in canonical order, so
	// the result stays deterministic for inputs like "超楽しい".
	for _, l := range Labels() {
		name := fold(l.String())
		if strings.Contains(s, name) || strings.Contains(name, s) {
			return l, true
		}
	}
	return Neutral, false
}
