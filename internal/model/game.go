package model

import "time"

// GameID uniquely identifies a game
type GameID string

// GameCode is the 6-character code a second player uses to join a friend game
type GameCode string

// GameMode selects who the opponent is
type GameMode string

const (
	GameModeAI     GameMode = "ai"     // Human against the opponent agent
	GameModeFriend GameMode = "friend" // Two humans sharing a join code
)

// Valid reports whether the mode is one of the known modes
func (m GameMode) Valid() bool {
	return m == GameModeAI || m == GameModeFriend
}

// GameStatus is the lifecycle state of a game
type GameStatus string

const (
	GameStatusActive    GameStatus = "active"
	GameStatusCompleted GameStatus = "completed" // Terminal
)

// AIPlayerID is the sentinel player ID used for the opponent agent
const AIPlayerID PlayerID = "ai"

// NoTurn is the current turn of a friend game while a claimed move is
// being applied. No player can claim it.
const NoTurn PlayerID = ""

// Game is a single day's guessing match between two participants
type Game struct {
	ID         GameID
	Code       GameCode // Empty unless Mode is friend
	SecretWord string
	Date       string // YYYY-MM-DD in the canonical daily zone
	Mode       GameMode
	Status     GameStatus
	WinnerID   PlayerID // Empty until completed

	Messages []Message // Ordered by timestamp, append-only

	Player1ID   PlayerID
	Player2ID   PlayerID // AIPlayerID in ai mode, empty until joined in friend mode
	CurrentTurn PlayerID
	HintsUsed   int

	// Version increases every time an action claims the turn
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true while the game accepts actions
func (g *Game) IsActive() bool {
	return g.Status == GameStatusActive
}

// IsParticipant returns true if the player occupies either seat
func (g *Game) IsParticipant(playerID PlayerID) bool {
	return playerID != "" && (g.Player1ID == playerID || g.Player2ID == playerID)
}

// OtherPlayer returns the seat opposite the given player
func (g *Game) OtherPlayer(playerID PlayerID) PlayerID {
	if playerID == g.Player1ID {
		return g.Player2ID
	}
	return g.Player1ID
}

// MessagesBy returns the messages authored by a player, in order
func (g *Game) MessagesBy(playerID PlayerID) []Message {
	var result []Message
	for _, m := range g.Messages {
		if m.AuthorID == playerID {
			result = append(result, m)
		}
	}
	return result
}

// HintsBy returns the suggested questions from a player's previous hints
func (g *Game) HintsBy(playerID PlayerID) []string {
	var result []string
	for _, m := range g.Messages {
		if m.AuthorID == playerID && m.Type == MessageTypeHint && m.Content != "" {
			result = append(result, m.Content)
		}
	}
	return result
}

// PendingMessage returns the unjudged message, if any
func (g *Game) PendingMessage() *Message {
	for i := range g.Messages {
		if !g.Messages[i].IsJudged() {
			return &g.Messages[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the game
func (g *Game) Clone() *Game {
	clone := *g
	clone.Messages = make([]Message, len(g.Messages))
	for i, m := range g.Messages {
		clone.Messages[i] = m.Clone()
	}
	return &clone
}
