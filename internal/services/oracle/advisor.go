package oracle

import (
	"context"
	"strings"
)

// GraduatedQuestions get more pointed as a player takes more hints
var GraduatedQuestions = []string{
	"Is it a living thing?",
	"Is it something made by humans?",
	"Is it bigger than a person?",
	"Would you usually find it indoors?",
	"Can you hold it in one hand?",
	"Does it make a sound?",
	"Is it associated with a particular place, like the sea or the sky?",
	"Have you used or eaten one today?",
}

// GraduatedAdvisor suggests GraduatedQuestions in order, repeating the last
// one once they run out
type GraduatedAdvisor struct{}

// NewGraduatedAdvisor creates a GraduatedAdvisor
func NewGraduatedAdvisor() *GraduatedAdvisor {
	return &GraduatedAdvisor{}
}

var _ HintAdvisor = (*GraduatedAdvisor)(nil)

func (a *GraduatedAdvisor) Suggest(ctx context.Context, req HintRequest) (string, error) {
	return graduatedQuestion(len(req.PriorHints)), nil
}

func graduatedQuestion(n int) string {
	if n >= len(GraduatedQuestions) {
		n = len(GraduatedQuestions) - 1
	}
	if n < 0 {
		n = 0
	}
	return GraduatedQuestions[n]
}

// SafeAdvisor guards another advisor: suggestions that mention the secret
// or are not questions are replaced by the graduated question
type SafeAdvisor struct {
	inner HintAdvisor
}

// NewSafeAdvisor wraps inner
func NewSafeAdvisor(inner HintAdvisor) *SafeAdvisor {
	return &SafeAdvisor{inner: inner}
}

var _ HintAdvisor = (*SafeAdvisor)(nil)

func (a *SafeAdvisor) Suggest(ctx context.Context, req HintRequest) (string, error) {
	suggestion, err := a.inner.Suggest(ctx, req)
	if err != nil {
		return "", err
	}
	suggestion = strings.TrimSpace(suggestion)
	if !IsGuess(suggestion) && !mentions(suggestion, req.SecretWord) {
		return suggestion, nil
	}

	if q := graduatedQuestion(len(req.PriorHints)); !mentions(q, req.SecretWord) {
		return q, nil
	}
	for _, q := range GraduatedQuestions {
		if !mentions(q, req.SecretWord) {
			return q, nil
		}
	}
	return "Is it common?", nil
}

func mentions(text, secret string) bool {
	secret = strings.ToLower(strings.TrimSpace(secret))
	if secret == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), secret)
}
