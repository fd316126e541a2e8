package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/guessword/internal/api/middleware"
	"github.com/mcoot/guessword/internal/api/request"
	"github.com/mcoot/guessword/internal/api/response"
	"github.com/mcoot/guessword/internal/model"
	"github.com/mcoot/guessword/internal/services/game"
	"github.com/mcoot/guessword/internal/sse"
)

// GameHandler handles game endpoints
type GameHandler struct {
	gameController *game.Controller
	hubManager     *sse.HubManager
	logger         *slog.Logger
}

// NewGameHandler creates a new game handler. hubManager may be nil, in which
// case the events endpoint is unavailable.
func NewGameHandler(gameController *game.Controller, hubManager *sse.HubManager, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		gameController: gameController,
		hubManager:     hubManager,
		logger:         logger.With(slog.String("component", "game-handler")),
	}
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.CreateGameRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	mode := model.GameMode(req.Mode)
	if mode == "" {
		mode = model.GameModeAI
	}

	g, err := h.gameController.CreateGame(r.Context(), player.ID, mode)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GameFromModel(g))
}

// Join handles POST /api/v1/games/join
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.JoinGameRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Code == "" {
		WriteError(w, NewInvalidRequestError("code is required"))
		return
	}

	g, err := h.gameController.JoinGame(r.Context(), req.Code, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.GameID(mux.Vars(r)["id"])

	g, err := h.gameController.GetGame(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

// Act handles POST /api/v1/games/{id}/actions
func (h *GameHandler) Act(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := model.GameID(mux.Vars(r)["id"])

	var req request.ActionRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.gameController.SubmitAction(r.Context(), game.Action{
		GameID:          id,
		ActorID:         player.ID,
		Type:            model.MessageType(req.Type),
		Content:         req.Content,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ActionResponseFromResult(result))
}

// Events handles GET /api/v1/games/{id}/events
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := model.GameID(mux.Vars(r)["id"])

	if h.hubManager == nil {
		WriteError(w, NewInvalidRequestError("event streaming is disabled"))
		return
	}

	// Make sure the game exists before holding a connection open for it
	if _, err := h.gameController.GetGame(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	hub := h.hubManager.GetOrCreateHub(id)
	h.logger.Debug("sse connect", slog.String("game_id", string(id)), slog.String("player_id", string(player.ID)))
	sse.ServeSSE(w, r, hub, player.ID)
}
