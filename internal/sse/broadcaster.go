package sse

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mcoot/guessword/internal/api/response"
	"github.com/mcoot/guessword/internal/model"
)

// Broadcaster pushes engine events to the game's SSE hub as JSON.
// Events for games nobody is watching are dropped.
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Notify implements game.Notifier
func (b *Broadcaster) Notify(ctx context.Context, event model.Event) {
	hub := b.hubManager.GetHub(event.GameID)
	if hub == nil {
		return
	}

	data, err := json.Marshal(response.EventFromModel(event))
	if err != nil {
		b.logger.Error("sse failed to encode event",
			slog.String("game_id", string(event.GameID)),
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()))
		return
	}
	hub.BroadcastEvent(string(event.Type), string(data))
}
