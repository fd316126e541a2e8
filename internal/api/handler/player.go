package handler

import (
	"net/http"

	"github.com/mcoot/guessword/internal/api/middleware"
	"github.com/mcoot/guessword/internal/api/request"
	"github.com/mcoot/guessword/internal/api/response"
	"github.com/mcoot/guessword/internal/services/auth"
)

// PlayerHandler serves guest creation, accounts and sessions
type PlayerHandler struct {
	auth *auth.Service
}

func NewPlayerHandler(authService *auth.Service) *PlayerHandler {
	return &PlayerHandler{auth: authService}
}

// CreateGuest handles POST /api/v1/players/guest. The body is optional.
func (h *PlayerHandler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGuestRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.auth.CreateGuestPlayer(r.Context(), req.DisplayName)
	writeSession(w, http.StatusCreated, session, err)
}

// Register handles POST /api/v1/players/register
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := requireCredentials(req.Username, req.Password); err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.auth.RegisterPlayer(r.Context(), req.Username, req.Password, req.DisplayName)
	writeSession(w, http.StatusCreated, session, err)
}

// Login handles POST /api/v1/players/login
func (h *PlayerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := requireCredentials(req.Username, req.Password); err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.auth.Login(r.Context(), req.Username, req.Password)
	writeSession(w, http.StatusOK, session, err)
}

// Logout revokes the caller's token. Always 204.
func (h *PlayerHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session := middleware.GetSession(r.Context()); session != nil {
		h.auth.InvalidateSession(session.Token)
	}
	response.NoContent(w)
}

// GetMe handles GET /api/v1/players/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.PlayerFromModel(middleware.MustGetPlayer(r.Context())))
}

func requireCredentials(username, password string) error {
	switch {
	case username == "":
		return NewInvalidRequestError("username is required")
	case password == "":
		return NewInvalidRequestError("password is required")
	}
	return nil
}

func writeSession(w http.ResponseWriter, status int, session *auth.Session, err error) {
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, status, response.AuthResponseFromSession(session))
}
