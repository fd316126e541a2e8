package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/guessword/internal/api/response"
	"github.com/mcoot/guessword/internal/model"
	"github.com/mcoot/guessword/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "test-event",
			data:      "hello world",
			expected:  "event: test-event\ndata: hello world\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "message_appended",
			data:      "{\n  \"a\": 1\n}",
			expected:  "event: message_appended\ndata: {\ndata:   \"a\": 1\ndata: }\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(formatSSEMessage(tt.eventName, tt.data)))
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"single line", "hello", []string{"hello"}},
		{"two lines", "line1\nline2", []string{"line1", "line2"}},
		{"trailing newline", "line1\n", []string{"line1"}},
		{"empty string", "", []string{""}},
		{"crlf line endings", "line1\r\nline2\r\n", []string{"line1", "line2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, splitLines(tt.input))
		})
	}
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub("g1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub, "player1")
	require.True(t, hub.Register(client))
	assert.Equal(t, 1, hub.ClientCount())

	hub.BroadcastEvent("test-event", "test data")

	select {
	case msg := <-client.send:
		assert.Equal(t, "event: test-event\ndata: test data\n\n", string(msg))
	case <-time.After(time.Second):
		t.Fatal("client did not receive message")
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub("g1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub, "player1")
	require.True(t, hub.Register(client))

	hub.Unregister(client)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-client.send
	assert.False(t, open)
}

func TestHub_BroadcastToMultipleClients(t *testing.T) {
	hub := NewHub("g1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	clients := []*Client{
		NewClient(hub, "player1"),
		NewClient(hub, "player2"),
		NewClient(hub, "player3"),
	}
	for _, c := range clients {
		require.True(t, hub.Register(c))
	}
	assert.Equal(t, 3, hub.ClientCount())

	hub.BroadcastEvent("update", "data")

	for i, client := range clients {
		select {
		case msg := <-client.send:
			assert.Equal(t, "event: update\ndata: data\n\n", string(msg))
		case <-time.After(time.Second):
			t.Fatalf("client %d did not receive message", i+1)
		}
	}
}

func TestHub_RegisterAfterCloseFails(t *testing.T) {
	hub := NewHub("g1", testutil.NopLogger())
	go hub.Run()
	hub.Close()
	hub.Close()

	assert.False(t, hub.Register(NewClient(hub, "player1")))
}

func TestHubManager_GetOrCreateHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.CloseAll()

	hub1 := manager.GetOrCreateHub("g1")
	require.NotNil(t, hub1)
	assert.Same(t, hub1, manager.GetOrCreateHub("g1"))
	assert.NotSame(t, hub1, manager.GetOrCreateHub("g2"))
}

func TestHubManager_GetHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.CloseAll()

	assert.Nil(t, manager.GetHub("missing"))

	created := manager.GetOrCreateHub("g1")
	assert.Same(t, created, manager.GetHub("g1"))
}

func TestHubManager_RemoveHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())

	manager.GetOrCreateHub("g1")
	manager.RemoveHub("g1")
	assert.Nil(t, manager.GetHub("g1"))

	// Removing an unknown hub is a no-op
	manager.RemoveHub("missing")
}

func TestHubManager_CleanupEmptyHubs(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.CloseAll()

	manager.GetOrCreateHub("empty")
	active := manager.GetOrCreateHub("active")
	require.True(t, active.Register(NewClient(active, "player1")))

	manager.CleanupEmptyHubs()

	assert.Nil(t, manager.GetHub("empty"))
	assert.NotNil(t, manager.GetHub("active"))
}

func TestBroadcaster_DropsEventsForUnwatchedGames(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	broadcaster.Notify(context.Background(), model.Event{Type: model.EventTurnChanged, GameID: "g1"})
	assert.Nil(t, manager.GetHub("g1"))
}

func TestBroadcaster_EncodesEventAsJSON(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.CloseAll()
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	hub := manager.GetOrCreateHub("g1")
	client := NewClient(hub, "player1")
	require.True(t, hub.Register(client))

	broadcaster.Notify(context.Background(), model.Event{
		Type:     model.EventTurnChanged,
		GameID:   "g1",
		PlayerID: "p2",
		Payload:  model.TurnChangedPayload{CurrentTurn: "p2", Version: 3},
	})

	select {
	case msg := <-client.send:
		text := string(msg)
		require.True(t, strings.HasPrefix(text, "event: turn_changed\ndata: "))
		payload := strings.TrimSuffix(strings.TrimPrefix(text, "event: turn_changed\ndata: "), "\n\n")

		var ev response.Event
		require.NoError(t, json.Unmarshal([]byte(payload), &ev))
		assert.Equal(t, "g1", ev.GameID)
		assert.Equal(t, "p2", ev.CurrentTurn)
		assert.Equal(t, int64(3), ev.Version)
	case <-time.After(time.Second):
		t.Fatal("client did not receive event")
	}
}

func TestServeSSE_StreamsEvents(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.CloseAll()
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeSSE(w, r, manager.GetOrCreateHub("g1"), "player1")
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	reader := bufio.NewReader(resp.Body)

	name, data := readEvent(t, reader)
	assert.Equal(t, "connected", name)
	assert.Contains(t, data, `"game_id":"g1"`)

	broadcaster.Notify(ctx, model.Event{
		Type:    model.EventGameCompleted,
		GameID:  "g1",
		Payload: model.GameCompletedPayload{WinnerID: "p1", SecretWord: "guitar"},
	})

	name, data = readEvent(t, reader)
	assert.Equal(t, "game_completed", name)
	assert.Contains(t, data, `"secret_word":"guitar"`)
}

func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var name string
	var data []string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSuffix(line, "\n")
		switch {
		case line == "":
			if name != "" {
				return name, strings.Join(data, "\n")
			}
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
		}
	}
}
