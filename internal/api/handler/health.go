package handler

import (
	"net/http"

	"github.com/mcoot/guessword/internal/api/response"
)

// WordCounter reports how many words are loaded
type WordCounter interface {
	Words() []string
}

// HealthHandler reports server status
type HealthHandler struct {
	storageType string
	oracleKind  string
	words       WordCounter
}

// NewHealthHandler creates a new health handler. words may be nil.
func NewHealthHandler(storageType, oracleKind string, words WordCounter) *HealthHandler {
	return &HealthHandler{storageType: storageType, oracleKind: oracleKind, words: words}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp := response.HealthResponse{
		Status:  "ok",
		Storage: h.storageType,
		Oracle:  h.oracleKind,
	}
	if h.words != nil {
		resp.Words = len(h.words.Words())
	}
	response.JSON(w, http.StatusOK, resp)
}
