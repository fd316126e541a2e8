package game

import (
	"strings"

	"github.com/mcoot/guessword/internal/model"
)

// guessTrailing is stripped from the end of submitted guesses
const guessTrailing = "?!.,:;"

// NormalizeGuess lowercases and trims a guess and drops trailing punctuation
func NormalizeGuess(guess string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(guess)), guessTrailing)
}

// NormalizeSecret lowercases and trims a secret word
func NormalizeSecret(secret string) string {
	return strings.ToLower(strings.TrimSpace(secret))
}

// IsCorrectGuess reports whether a player's guess names the secret
func IsCorrectGuess(guess, secret string) bool {
	return NormalizeGuess(guess) == NormalizeSecret(secret)
}

// View returns a copy of game that is safe to show to players: the secret
// word is blank until the game is completed
func View(game *model.Game) *model.Game {
	view := game.Clone()
	if view.IsActive() {
		view.SecretWord = ""
	}
	return view
}
