package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events <game-id>",
		Short: "Stream live events from a game",
		Long: `Connect to the game's SSE endpoint and stream events in real-time.

Events include:
  - connected: Stream established
  - player_joined: A friend joined the game
  - message_appended: A question, guess or hint was added
  - message_judged: A pending message got its answer
  - turn_changed: The turn passed to another player
  - game_completed: The word was guessed

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamEvents(cmd.Context(), args[0])
		},
	}

	return cmd
}

// SSEEvent is one event read from the stream
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

// eventData is the subset of the server's event payload shown in text mode
type eventData struct {
	PlayerID    string   `json:"player_id"`
	Message     *Message `json:"message"`
	CurrentTurn string   `json:"current_turn"`
	WinnerID    string   `json:"winner_id"`
	SecretWord  string   `json:"secret_word"`
}

func streamEvents(ctx context.Context, gameID string) error {
	body, err := client.Stream(ctx, "/api/v1/games/"+gameID+"/events")
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	out := NewOutput(cfg.Output)
	err = readEvents(body, func(ev SSEEvent) {
		out.printEvent(ev)
	})
	// Ctrl+C cancels the request, which surfaces as a read error
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}

	out.PrintMessage("Disconnected")
	return nil
}

// readEvents parses an SSE stream, calling fn for each named event.
// Comment lines (keepalives) are skipped.
func readEvents(r io.Reader, fn func(SSEEvent)) error {
	scanner := bufio.NewScanner(r)
	var name string
	var data []string

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if name != "" {
				fn(SSEEvent{Time: time.Now(), Event: name, Data: strings.Join(data, "\n")})
			}
			name, data = "", nil
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}

	err := scanner.Err()
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (o *Output) printEvent(ev SSEEvent) {
	if o.format == "json" {
		data, _ := json.Marshal(ev)
		fmt.Fprintln(o.w, string(data))
		return
	}
	fmt.Fprintf(o.w, "[%s] %s\n", ev.Time.Format(time.TimeOnly), describeEvent(ev))
}

// describeEvent renders an event as one line of text
func describeEvent(ev SSEEvent) string {
	var d eventData
	if err := json.Unmarshal([]byte(ev.Data), &d); err != nil {
		return ev.Event + ": " + strings.ReplaceAll(ev.Data, "\n", " ")
	}

	switch ev.Event {
	case "player_joined":
		return d.PlayerID + " joined"
	case "message_appended", "message_judged":
		if d.Message == nil {
			break
		}
		resp := "..."
		if d.Message.Response != nil {
			resp = *d.Message.Response
		}
		return fmt.Sprintf("%s %s: %s -> %s", d.Message.AuthorID, d.Message.Type, d.Message.Content, resp)
	case "turn_changed":
		return "turn: " + d.CurrentTurn
	case "game_completed":
		return fmt.Sprintf("%s won, the word was %q", d.WinnerID, d.SecretWord)
	}
	return ev.Event + ": " + ev.Data
}
