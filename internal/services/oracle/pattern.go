package oracle

import (
	"context"
	"slices"
	"strings"
)

type patternRule struct {
	keywords []string
	matches  []string // secrets answered "yes"
}

// Checked in order; the first rule whose keyword appears in the question wins
var patternRules = []patternRule{
	{[]string{"animal", "living", "alive"}, []string{"dog", "cat", "elephant", "penguin", "kangaroo"}},
	{[]string{"food", "eat"}, []string{"pizza", "chocolate", "champagne"}},
	{[]string{"person", "human"}, []string{"astronaut"}},
	{[]string{"object", "thing"}, []string{"computer", "guitar", "telephone", "umbrella", "telescope", "submarine"}},
	{[]string{"nature", "natural"}, []string{"mountain", "rainbow", "volcano", "butterfly", "hurricane"}},
	{[]string{"big", "large"}, []string{"elephant", "mountain", "volcano", "submarine", "telescope"}},
	{[]string{"small", "tiny"}, []string{"butterfly", "chocolate"}},
	{[]string{"fly", "flying"}, []string{"butterfly"}},
	{[]string{"water", "swim"}, []string{"submarine", "penguin"}},
}

// PatternJudge answers from a fixed table of keyword categories. Questions
// that match no category are answered "unknown".
type PatternJudge struct{}

// NewPatternJudge creates a PatternJudge
func NewPatternJudge() *PatternJudge {
	return &PatternJudge{}
}

var _ Judge = (*PatternJudge)(nil)

func (j *PatternJudge) Judge(ctx context.Context, question, secret string) (string, error) {
	q := strings.ToLower(question)
	w := strings.ToLower(strings.TrimSpace(secret))
	for _, rule := range patternRules {
		if !containsAny(q, rule.keywords) {
			continue
		}
		if slices.Contains(rule.matches, w) {
			return CoerceLabel(LabelYes), nil
		}
		return CoerceLabel(LabelNo), nil
	}
	return CoerceLabel(LabelUnknown), nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
