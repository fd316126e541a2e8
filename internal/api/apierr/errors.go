package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/guessword/internal/model"
	"github.com/mcoot/guessword/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidType        = "INVALID_TYPE"
	CodeEmptyContent       = "EMPTY_CONTENT"
	CodeInvalidMode        = "INVALID_MODE"
	CodeInvalidCode        = "INVALID_CODE"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotYourTurn        = "NOT_YOUR_TURN"
	CodeNotInGame          = "NOT_IN_GAME"
	CodeGameComplete       = "GAME_COMPLETE"
	CodeStaleGame          = "STALE_GAME"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeGameNotFound       = "GAME_NOT_FOUND"
	CodeWordListNotFound   = "WORD_LIST_NOT_FOUND"
	CodeCodeExhausted      = "CODE_EXHAUSTED"
	CodeOracleFailure      = "ORACLE_FAILURE"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Validation; the specific reasons are checked before the family
	case errors.Is(err, model.ErrInvalidType):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidType, "Action type must be question, guess or hint"}}
	case errors.Is(err, model.ErrEmptyContent):
		return &httpError{http.StatusBadRequest, APIError{CodeEmptyContent, "Please enter a question or guess"}}
	case errors.Is(err, model.ErrInvalidMode):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidMode, "Mode must be ai or friend"}}
	case errors.Is(err, model.ErrInvalidCode):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidCode, "Game code must be 6 letters or digits"}}
	case errors.Is(err, model.ErrInvalidAction):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}

	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrNotInGame):
		return &httpError{http.StatusForbidden, APIError{CodeNotInGame, "You are not playing in this game"}}
	case errors.Is(err, model.ErrNotPlayerTurn):
		return &httpError{http.StatusConflict, APIError{CodeNotYourTurn, "It's not your turn"}}
	case errors.Is(err, model.ErrGameComplete):
		return &httpError{http.StatusConflict, APIError{CodeGameComplete, "This game is already over"}}
	case errors.Is(err, model.ErrStaleGame):
		return &httpError{http.StatusConflict, APIError{CodeStaleGame, "The game changed since you last looked, refresh and try again"}}
	case errors.Is(err, model.ErrOracleFailure):
		return &httpError{http.StatusBadGateway, APIError{CodeOracleFailure, "The judge could not answer right now, please try again"}}
	case errors.Is(err, model.ErrWordListNotFound):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeWordListNotFound, "No word list is loaded"}}
	case errors.Is(err, model.ErrCodeExhausted):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeCodeExhausted, "Could not allocate a game code, please try again"}}

	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, auth.ErrUsernameExists):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists"}}
	case errors.Is(err, auth.ErrMissingCredentials):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Username and password are required"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
