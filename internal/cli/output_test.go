package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestPrintGameText(t *testing.T) {
	var buf bytes.Buffer
	out := &Output{format: "text", w: &buf}

	out.Print(Game{
		ID:          "g1",
		Code:        "ABC234",
		Date:        "2024-01-01",
		Mode:        "friend",
		Status:      "active",
		Player1ID:   "p_1",
		CurrentTurn: "p_1",
		Messages: []Message{
			{ID: "m1", Type: "question", Content: "Is it alive?", Response: strPtr("no"), AuthorID: "p_1", Timestamp: time.Now()},
			{ID: "m2", Type: "question", Content: "Is it big?", AuthorID: "ai", Timestamp: time.Now()},
		},
	})

	text := buf.String()
	assert.Contains(t, text, "Join code: ABC234")
	assert.Contains(t, text, "Waiting for a friend to join")
	assert.Contains(t, text, "Is it alive? -> no")
	assert.Contains(t, text, "Is it big? -> ...")
}

func TestPrintCompletedAction(t *testing.T) {
	var buf bytes.Buffer
	out := &Output{format: "text", w: &buf}

	out.Print(ActionResult{
		AuthorMessage: Message{ID: "m1", Type: "guess", Content: "guitar", Response: strPtr("Correct!"), AuthorID: "p_1"},
		Status:        "completed",
		WinnerID:      strPtr("p_1"),
		Game:          Game{Status: "completed", WinnerID: strPtr("p_1"), SecretWord: "guitar"},
	})

	assert.Contains(t, buf.String(), `p_1 won, the word was "guitar"`)
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	out := &Output{format: "json", w: &buf}

	out.Print(Daily{Date: "2024-01-01", Zone: "America/Denver", SecondsUntilNext: 60})

	var d Daily
	require.NoError(t, json.Unmarshal(buf.Bytes(), &d))
	assert.Equal(t, "America/Denver", d.Zone)
	assert.Equal(t, int64(60), d.SecondsUntilNext)
}

func TestPrintMessageJSON(t *testing.T) {
	var buf bytes.Buffer
	out := &Output{format: "json", w: &buf}

	out.PrintMessage("Logged out")

	var m map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "Logged out", m["message"])
}
