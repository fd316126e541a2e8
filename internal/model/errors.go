package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Validation errors, raised before anything is written
	ErrInvalidAction = errors.New("invalid action")
	ErrInvalidType   = fmt.Errorf("%w: message type must be question, guess or hint", ErrInvalidAction)
	ErrEmptyContent  = fmt.Errorf("%w: content is required", ErrInvalidAction)
	ErrInvalidMode   = fmt.Errorf("%w: mode must be ai or friend", ErrInvalidAction)
	ErrInvalidCode   = fmt.Errorf("%w: join code must be 6 letters or digits", ErrInvalidAction)

	// Game state errors, raised before anything is written
	ErrGameNotFound  = errors.New("game not found")
	ErrGameComplete  = errors.New("game is already complete")
	ErrNotPlayerTurn = errors.New("not this player's turn")
	ErrNotInGame     = errors.New("player is not in this game")
	ErrStaleGame     = errors.New("game changed since it was last read")

	// Storage errors
	ErrMessageNotFound  = errors.New("message not found")
	ErrCodeTaken        = errors.New("join code already in use")
	ErrCodeExhausted    = errors.New("could not allocate a unique join code")
	ErrWordListNotFound = errors.New("word list not loaded")

	// Oracle errors
	ErrOracleFailure = errors.New("oracle failure")
)

// OracleError reports a failed judge, opponent or hint call
type OracleError struct {
	Oracle string // "judge", "opponent" or "hint"
	Err    error
}

// Error implements error
func (e *OracleError) Error() string {
	return fmt.Sprintf("%s oracle failed: %v", e.Oracle, e.Err)
}

// Unwrap exposes the underlying cause
func (e *OracleError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrOracleFailure
func (e *OracleError) Is(target error) bool {
	return target == ErrOracleFailure
}

// NewOracleError wraps err as an OracleError
func NewOracleError(oracle string, err error) error {
	return &OracleError{Oracle: oracle, Err: err}
}
