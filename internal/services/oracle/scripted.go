package oracle

import (
	"context"
	"slices"
	"strings"

	"github.com/mcoot/guessword/internal/model"
)

// ScriptedQuestions are asked broad to narrow
var ScriptedQuestions = []string{
	"Is it a living thing?",
	"Is it an object?",
	"Is it something you can hold?",
	"Is it bigger than a person?",
	"Is it found in nature?",
	"Is it made by humans?",
	"Can it move on its own?",
	"Is it used for transportation?",
	"Is it food?",
	"Is it an animal?",
	"Does it have legs?",
	"Can it fly?",
	"Does it live in water?",
	"Is it a mammal?",
	"Is it electronic?",
}

// ScriptedGuesses are tried in order once the opponent starts guessing
var ScriptedGuesses = []string{
	"computer", "elephant", "pizza", "guitar", "mountain",
	"butterfly", "telephone", "submarine", "rainbow", "volcano",
}

const (
	// scriptedQuestionLimit is how many moves are made before guessing starts
	scriptedQuestionLimit = 8
	// lastResortGuess is played when every scripted guess has been tried
	lastResortGuess = "mystery"
	// exhaustedGuess is played when every scripted question has been asked
	exhaustedGuess = "computer"
)

// ScriptedOpponent plays a fixed question list, then a fixed guess list
type ScriptedOpponent struct{}

// NewScriptedOpponent creates a ScriptedOpponent
func NewScriptedOpponent() *ScriptedOpponent {
	return &ScriptedOpponent{}
}

var _ Opponent = (*ScriptedOpponent)(nil)

func (o *ScriptedOpponent) NextMove(ctx context.Context, history []model.Message) (string, error) {
	var own []model.Message
	for _, m := range history {
		if m.AuthorID == model.AIPlayerID {
			own = append(own, m)
		}
	}

	if len(own) >= scriptedQuestionLimit {
		var guessed []string
		for _, m := range own {
			if m.Type == model.MessageTypeGuess {
				guessed = append(guessed, strings.ToLower(m.Content))
			}
		}
		for _, g := range ScriptedGuesses {
			if !slices.Contains(guessed, g) {
				return g, nil
			}
		}
		return lastResortGuess, nil
	}

	asked := make([]string, len(own))
	for i, m := range own {
		asked[i] = strings.ToLower(m.Content)
	}
	for _, q := range ScriptedQuestions {
		core := questionCore(q)
		if !slices.ContainsFunc(asked, func(a string) bool { return strings.Contains(a, core) }) {
			return q, nil
		}
	}
	return exhaustedGuess, nil
}

// questionCore is the part of a scripted question used to spot repeats,
// skipping the common "Is it " style opener
func questionCore(q string) string {
	q = strings.ToLower(q)
	start, end := 6, 15
	if end > len(q) {
		end = len(q)
	}
	if start >= end {
		return q
	}
	return q[start:end]
}
