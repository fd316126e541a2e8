package handler

import (
	"net/http"

	"github.com/mcoot/guessword/internal/api/response"
	"github.com/mcoot/guessword/internal/services/game"
)

// DailyHandler reports the daily word window
type DailyHandler struct {
	gameController *game.Controller
}

// NewDailyHandler creates a new daily handler
func NewDailyHandler(gameController *game.Controller) *DailyHandler {
	return &DailyHandler{gameController: gameController}
}

// Get handles GET /api/v1/daily
func (h *DailyHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.DailyFromInfo(h.gameController.DailyInfo()))
}
