package model

import "time"

// MessageID uniquely identifies a message within the system
type MessageID string

// MessageType is the kind of action a message records
type MessageType string

const (
	MessageTypeQuestion MessageType = "question"
	MessageTypeGuess    MessageType = "guess"
	MessageTypeHint     MessageType = "hint"
)

// Valid reports whether the type is one of the known message types
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeQuestion, MessageTypeGuess, MessageTypeHint:
		return true
	default:
		return false
	}
}

// Responses recorded against guess messages
const (
	ResponseCorrect   = "Correct!"
	ResponseIncorrect = "Incorrect!"
)

// Message is one question, guess or hint in a game's conversation
type Message struct {
	ID      MessageID
	Type    MessageType
	Content string

	// Response is nil while the message is waiting to be judged
	Response *string

	AuthorID  PlayerID
	Timestamp time.Time
}

// IsJudged returns true once the message carries a response
func (m *Message) IsJudged() bool {
	return m.Response != nil
}

// ResponseText returns the response, or an empty string if unjudged
func (m *Message) ResponseText() string {
	if m.Response == nil {
		return ""
	}
	return *m.Response
}

// Clone returns a copy that does not share the response pointer
func (m Message) Clone() Message {
	if m.Response != nil {
		r := *m.Response
		m.Response = &r
	}
	return m
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
