package response

import (
	"time"

	"github.com/mcoot/guessword/internal/model"
	"github.com/mcoot/guessword/internal/services/auth"
	"github.com/mcoot/guessword/internal/services/game"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		IsGuest:     p.IsGuest,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Message is one entry in a game's conversation
type Message struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Response  *string   `json:"response"` // null while pending
	AuthorID  string    `json:"author_id"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageFromModel converts model.Message
func MessageFromModel(m model.Message) Message {
	m = m.Clone()
	return Message{
		ID:        string(m.ID),
		Type:      string(m.Type),
		Content:   m.Content,
		Response:  m.Response,
		AuthorID:  string(m.AuthorID),
		Timestamp: m.Timestamp,
	}
}

// Game is the player-facing view of a game. SecretWord is only set once
// the game is completed.
type Game struct {
	ID          string    `json:"id"`
	Code        string    `json:"code,omitempty"`
	Date        string    `json:"date"`
	Mode        string    `json:"mode"`
	Status      string    `json:"status"`
	WinnerID    *string   `json:"winner_id"`
	SecretWord  string    `json:"secret_word,omitempty"`
	Player1ID   string    `json:"player1_id"`
	Player2ID   string    `json:"player2_id"`
	CurrentTurn string    `json:"current_turn"`
	HintsUsed   int       `json:"hints_used"`
	Version     int64     `json:"version"`
	Messages    []Message `json:"messages"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GameFromModel converts a game, redacting the secret while it is active
func GameFromModel(g *model.Game) Game {
	v := game.View(g)
	messages := make([]Message, len(v.Messages))
	for i, m := range v.Messages {
		messages[i] = MessageFromModel(m)
	}
	return Game{
		ID:          string(v.ID),
		Code:        string(v.Code),
		Date:        v.Date,
		Mode:        string(v.Mode),
		Status:      string(v.Status),
		WinnerID:    optionalID(v.WinnerID),
		SecretWord:  v.SecretWord,
		Player1ID:   string(v.Player1ID),
		Player2ID:   string(v.Player2ID),
		CurrentTurn: string(v.CurrentTurn),
		HintsUsed:   v.HintsUsed,
		Version:     v.Version,
		Messages:    messages,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

// ActionResponse is the response after submitting an action
type ActionResponse struct {
	AuthorMessage   Message  `json:"author_message"`
	OpponentMessage *Message `json:"opponent_message"`
	Status          string   `json:"status"`
	WinnerID        *string  `json:"winner_id"`
	Game            Game     `json:"game"`
}

// ActionResponseFromResult converts a game.ActionResult
func ActionResponseFromResult(r *game.ActionResult) ActionResponse {
	var opponent *Message
	if r.OpponentMessage != nil {
		m := MessageFromModel(*r.OpponentMessage)
		opponent = &m
	}
	return ActionResponse{
		AuthorMessage:   MessageFromModel(r.AuthorMessage),
		OpponentMessage: opponent,
		Status:          string(r.Status),
		WinnerID:        optionalID(r.WinnerID),
		Game:            GameFromModel(r.Game),
	}
}

// Daily describes the current daily word window
type Daily struct {
	Date             string    `json:"date"`
	Zone             string    `json:"zone"`
	NextWordAt       time.Time `json:"next_word_at"`
	SecondsUntilNext int64     `json:"seconds_until_next"`
}

// DailyFromInfo converts game.Daily
func DailyFromInfo(d game.Daily) Daily {
	return Daily{
		Date:             d.Date,
		Zone:             d.Zone,
		NextWordAt:       d.NextWordAt,
		SecondsUntilNext: d.SecondsUntilNext,
	}
}

// Event is the wire form of an engine event pushed over SSE
type Event struct {
	Type      string    `json:"type"`
	GameID    string    `json:"game_id"`
	PlayerID  string    `json:"player_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	Message     *Message `json:"message,omitempty"`
	CurrentTurn string   `json:"current_turn,omitempty"`
	Version     int64    `json:"version,omitempty"`
	WinnerID    string   `json:"winner_id,omitempty"`
	SecretWord  string   `json:"secret_word,omitempty"`
}

// EventFromModel converts model.Event, flattening its payload
func EventFromModel(e model.Event) Event {
	out := Event{
		Type:      string(e.Type),
		GameID:    string(e.GameID),
		PlayerID:  string(e.PlayerID),
		Timestamp: e.Timestamp,
	}
	switch p := e.Payload.(type) {
	case model.MessagePayload:
		m := MessageFromModel(p.Message)
		out.Message = &m
	case model.TurnChangedPayload:
		out.CurrentTurn = string(p.CurrentTurn)
		out.Version = p.Version
	case model.GameCompletedPayload:
		out.WinnerID = string(p.WinnerID)
		out.SecretWord = p.SecretWord
	case model.PlayerJoinedPayload:
		out.PlayerID = string(p.PlayerID)
	}
	return out
}

// HealthResponse reports server status
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage,omitempty"`
	Oracle  string `json:"oracle,omitempty"`
	Words   int    `json:"words"`
}

func optionalID(id model.PlayerID) *string {
	if id == "" {
		return nil
	}
	s := string(id)
	return &s
}
