// Package oracle holds the judge, opponent and hint advisor used by the turn
// engine, in deterministic and LLM-backed flavours.
package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcoot/guessword/internal/model"
)

// Judge answers a yes/no question about the secret word with a Vocabulary label
type Judge interface {
	Judge(ctx context.Context, question, secret string) (string, error)
}

// Opponent decides the AI player's next move from the full conversation.
// Output containing no "?" is treated as a guess.
type Opponent interface {
	NextMove(ctx context.Context, history []model.Message) (string, error)
}

// HintRequest carries what an advisor may look at
type HintRequest struct {
	SecretWord string
	// History is the requesting player's own messages
	History []model.Message
	// PriorHints are the questions suggested by this player's earlier hints
	PriorHints []string
}

// HintAdvisor suggests the next yes/no question for a player
type HintAdvisor interface {
	Suggest(ctx context.Context, req HintRequest) (string, error)
}

// Labels in the judge vocabulary
const (
	LabelYes         = "yes"
	LabelNo          = "no"
	LabelSometimes   = "sometimes"
	LabelUnknown     = "unknown"
	LabelProbably    = "probably"
	LabelProbablyNot = "probably not"
	LabelDepends     = "depends"
	LabelIrrelevant  = "irrelevant"
)

// FallbackLabel replaces judge output outside the vocabulary
const FallbackLabel = LabelIrrelevant

const questionMark = "?"

// Vocabulary is the closed set of answers a question can receive
var Vocabulary = []string{
	LabelYes,
	LabelNo,
	LabelSometimes,
	LabelUnknown,
	LabelProbably,
	LabelProbablyNot,
	LabelDepends,
	LabelIrrelevant,
}

// IsLabel reports whether s is exactly a Vocabulary label
func IsLabel(s string) bool {
	for _, l := range Vocabulary {
		if s == l {
			return true
		}
	}
	return false
}

// CoerceLabel normalises raw judge output and maps anything outside the
// vocabulary to FallbackLabel
func CoerceLabel(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.Trim(s, "\"'`")
	s = strings.TrimRight(s, ".!")
	s = strings.TrimSpace(s)
	if IsLabel(s) {
		return s
	}
	return FallbackLabel
}

// IsGuess reports whether an opponent move is a guess rather than a question
func IsGuess(move string) bool {
	return !strings.Contains(move, questionMark)
}

// Kind names an oracle implementation
type Kind string

const (
	KindPattern Kind = "pattern" // Deterministic, no network
	KindLLM     Kind = "llm"     // Backed by a chat completion API
)

// Set bundles the three oracles the turn engine needs
type Set struct {
	Judge    Judge
	Opponent Opponent
	Advisor  HintAdvisor
}

// NewPatternSet returns the deterministic oracles
func NewPatternSet() Set {
	return Set{
		Judge:    NewPatternJudge(),
		Opponent: NewScriptedOpponent(),
		Advisor:  NewSafeAdvisor(NewGraduatedAdvisor()),
	}
}

// NewLLMSet returns oracles backed by c
func NewLLMSet(c Completer) Set {
	return Set{
		Judge:    NewLLMJudge(c),
		Opponent: NewLLMOpponent(c),
		Advisor:  NewSafeAdvisor(NewLLMAdvisor(c)),
	}
}

// NewSet selects an implementation by kind. c may be nil for KindPattern.
func NewSet(kind Kind, c Completer) (Set, error) {
	switch kind {
	case KindPattern, "":
		return NewPatternSet(), nil
	case KindLLM:
		if c == nil {
			return Set{}, fmt.Errorf("oracle %q needs an llm client", kind)
		}
		return NewLLMSet(c), nil
	default:
		return Set{}, fmt.Errorf("unknown oracle %q", kind)
	}
}
