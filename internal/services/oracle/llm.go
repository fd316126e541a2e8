package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mcoot/guessword/internal/model"
)

// Completer is the subset of the llm client the oracles use
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// LLMJudge asks the model to pick a vocabulary label
type LLMJudge struct {
	llm Completer
}

// NewLLMJudge creates an LLMJudge
func NewLLMJudge(c Completer) *LLMJudge {
	return &LLMJudge{llm: c}
}

var _ Judge = (*LLMJudge)(nil)

func (j *LLMJudge) Judge(ctx context.Context, question, secret string) (string, error) {
	text, err := j.llm.Complete(ctx, judgePrompt(secret), question)
	if err != nil {
		return "", err
	}
	return CoerceLabel(text), nil
}

func judgePrompt(secret string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the judge in a word guessing game similar to twenty questions. The secret word is %q.\n\n", secret)
	fmt.Fprintf(&b, "A player will ask a yes/no question to narrow down the secret word. Respond with ONLY one of these %d options:\n", len(Vocabulary))
	for _, label := range Vocabulary {
		fmt.Fprintf(&b, "- %s\n", label)
	}
	b.WriteString("\nYou cannot explain yourself, so choose the option that fits best.")
	return b.String()
}

// LLMOpponent asks the model for its next question or guess
type LLMOpponent struct {
	llm Completer
}

// NewLLMOpponent creates an LLMOpponent
func NewLLMOpponent(c Completer) *LLMOpponent {
	return &LLMOpponent{llm: c}
}

var _ Opponent = (*LLMOpponent)(nil)

var errEmptyMove = errors.New("opponent produced an empty move")

const opponentSystem = `You are playing a word guessing game against a human. Each turn you either ask a yes/no question or guess the secret word.

Use the human's questions and the answers they received, and your own earlier questions and guesses, to decide your move.

Guidelines:
- Start with broad questions to narrow down the category.
- Ask more specific questions as you learn more.
- When you are confident, guess. To guess, output only the word with no question mark.

Previous conversation:
%s`

func (o *LLMOpponent) NextMove(ctx context.Context, history []model.Message) (string, error) {
	prompt := "What is your next yes/no question? Or make a guess if you are confident."
	text, err := o.llm.Complete(ctx, fmt.Sprintf(opponentSystem, FormatHistory(history)), prompt)
	if err != nil {
		return "", err
	}
	move := strings.Trim(strings.TrimSpace(text), "\"'`")
	move = strings.TrimSpace(move)
	if move == "" {
		return "", errEmptyMove
	}
	return move, nil
}

// FormatHistory renders messages one per line for a prompt
func FormatHistory(history []model.Message) string {
	if len(history) == 0 {
		return "No previous questions yet."
	}
	lines := make([]string, 0, len(history))
	for _, m := range history {
		who := "Player"
		if m.AuthorID == model.AIPlayerID {
			who = "AI"
		}
		response := m.ResponseText()
		if response == "" {
			response = "(pending)"
		}
		lines = append(lines, fmt.Sprintf("%s %s: %s -> %s", who, m.Type, m.Content, response))
	}
	return strings.Join(lines, "\n")
}

// LLMAdvisor asks the model for one strategic question
type LLMAdvisor struct {
	llm Completer
}

// NewLLMAdvisor creates an LLMAdvisor. Wrap it in a SafeAdvisor.
func NewLLMAdvisor(c Completer) *LLMAdvisor {
	return &LLMAdvisor{llm: c}
}

var _ HintAdvisor = (*LLMAdvisor)(nil)

const advisorSystem = `You are helping a player in a word guessing game. The secret word is %q.

The player asked for a hint. Suggest exactly one yes/no question they should ask next that moves them closer to the secret word.

Rules:
- Never say the secret word or any part of it.
- Reply with the question only, ending with a question mark.
- Each hint should be a little more specific than the previous ones.

What the player has asked so far:
%s

Questions already suggested:
%s`

func (a *LLMAdvisor) Suggest(ctx context.Context, req HintRequest) (string, error) {
	prior := "None."
	if len(req.PriorHints) > 0 {
		prior = "- " + strings.Join(req.PriorHints, "\n- ")
	}
	system := fmt.Sprintf(advisorSystem, req.SecretWord, FormatHistory(req.History), prior)
	return a.llm.Complete(ctx, system, "Suggest the next question.")
}
