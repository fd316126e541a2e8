package game

import (
	"context"
	"sync"

	"github.com/mcoot/guessword/internal/model"
)

// Notifier receives engine events as they happen. Implementations must not
// block for long; the engine calls them inline.
type Notifier interface {
	Notify(ctx context.Context, event model.Event)
}

// NopNotifier drops every event
type NopNotifier struct{}

func (NopNotifier) Notify(ctx context.Context, event model.Event) {}

// RecordingNotifier keeps every event it receives
type RecordingNotifier struct {
	mu     sync.Mutex
	events []model.Event
}

func (n *RecordingNotifier) Notify(ctx context.Context, event model.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

// Events returns the recorded events in order
func (n *RecordingNotifier) Events() []model.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	result := make([]model.Event, len(n.events))
	copy(result, n.events)
	return result
}

// Types returns the recorded event types in order
func (n *RecordingNotifier) Types() []model.EventType {
	events := n.Events()
	result := make([]model.EventType, len(events))
	for i, e := range events {
		result[i] = e.Type
	}
	return result
}
