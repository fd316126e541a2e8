package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player is someone who can sit in a game seat
type Player struct {
	ID          PlayerID
	DisplayName string
	IsGuest     bool // true for players without a login
	CreatedAt   time.Time
}

// RegisteredPlayer holds login credentials for a non-guest Player
type RegisteredPlayer struct {
	PlayerID     PlayerID
	Username     string // login username (immutable)
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
