package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventPlayerJoined    EventType = "player_joined"
	EventMessageAppended EventType = "message_appended"
	EventMessageJudged   EventType = "message_judged"
	EventTurnChanged     EventType = "turn_changed"
	EventGameCompleted   EventType = "game_completed"
)

// Event describes a state change in a game
type Event struct {
	Type      EventType
	Timestamp time.Time
	GameID    GameID
	PlayerID  PlayerID // The player who triggered or is affected
	Payload   any      // Type-specific data
}

// PlayerJoinedPayload contains data for player joined events
type PlayerJoinedPayload struct {
	PlayerID PlayerID
}

// MessagePayload contains the message for appended and judged events
type MessagePayload struct {
	Message Message
}

// TurnChangedPayload contains data for turn changed events
type TurnChangedPayload struct {
	CurrentTurn PlayerID
	Version     int64
}

// GameCompletedPayload contains data for game completed events
type GameCompletedPayload struct {
	WinnerID   PlayerID
	SecretWord string
}
