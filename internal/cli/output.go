package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case Game:
		o.printGame(v)
	case Message:
		o.printMessage(v)
	case ActionResult:
		o.printActionResult(v)
	case Daily:
		o.printDaily(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// AuthResult combines player and token
type AuthResult struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Message response type
type Message struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Response  *string   `json:"response"`
	AuthorID  string    `json:"author_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Game response type
type Game struct {
	ID          string    `json:"id"`
	Code        string    `json:"code,omitempty"`
	Date        string    `json:"date"`
	Mode        string    `json:"mode"`
	Status      string    `json:"status"`
	WinnerID    *string   `json:"winner_id"`
	SecretWord  string    `json:"secret_word,omitempty"`
	Player1ID   string    `json:"player1_id"`
	Player2ID   string    `json:"player2_id"`
	CurrentTurn string    `json:"current_turn"`
	HintsUsed   int       `json:"hints_used"`
	Version     int64     `json:"version"`
	Messages    []Message `json:"messages"`
}

// ActionResult response type
type ActionResult struct {
	AuthorMessage   Message  `json:"author_message"`
	OpponentMessage *Message `json:"opponent_message"`
	Status          string   `json:"status"`
	WinnerID        *string  `json:"winner_id"`
	Game            Game     `json:"game"`
}

// Daily response type
type Daily struct {
	Date             string    `json:"date"`
	Zone             string    `json:"zone"`
	NextWordAt       time.Time `json:"next_word_at"`
	SecondsUntilNext int64     `json:"seconds_until_next"`
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Storage string `json:"storage,omitempty"`
	Oracle  string `json:"oracle,omitempty"`
	Words   int    `json:"words"`
}

func (o *Output) printPlayer(p Player) {
	guestStr := "no"
	if p.IsGuest {
		guestStr = "yes"
	}
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Fprintf(o.w, "Guest: %s\n", guestStr)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	fmt.Fprintf(o.w, "Token: %s\n", a.SessionToken)
	fmt.Fprintf(o.w, "Expires: %s\n", a.ExpiresAt.Local().Format(time.DateTime))
}

func (o *Output) printGame(g Game) {
	fmt.Fprintf(o.w, "Game: %s (%s, %s)\n", g.ID, g.Mode, g.Date)
	if g.Code != "" {
		fmt.Fprintf(o.w, "Join code: %s\n", g.Code)
	}
	fmt.Fprintf(o.w, "Status: %s\n", g.Status)
	if g.Player2ID == "" {
		fmt.Fprintln(o.w, "Waiting for a friend to join")
	}
	if g.Status == "active" {
		fmt.Fprintf(o.w, "Turn: %s\n", g.CurrentTurn)
	}
	fmt.Fprintf(o.w, "Hints used: %d\n", g.HintsUsed)

	if len(g.Messages) > 0 {
		fmt.Fprintln(o.w)
		for _, m := range g.Messages {
			o.printMessage(m)
		}
	}

	if g.Status == "completed" {
		fmt.Fprintln(o.w)
		fmt.Fprintln(o.w, gameOverLine(g))
	}
}

func (o *Output) printMessage(m Message) {
	resp := "..."
	if m.Response != nil {
		resp = *m.Response
	}
	fmt.Fprintf(o.w, "  [%s] %s %s: %s -> %s\n",
		m.Timestamp.Local().Format(time.TimeOnly), m.AuthorID, m.Type, m.Content, resp)
}

func (o *Output) printActionResult(r ActionResult) {
	o.printMessage(r.AuthorMessage)
	if r.OpponentMessage != nil {
		o.printMessage(*r.OpponentMessage)
	}

	if r.Status == "completed" {
		fmt.Fprintln(o.w, gameOverLine(r.Game))
		return
	}
	fmt.Fprintf(o.w, "Turn: %s\n", r.Game.CurrentTurn)
}

func (o *Output) printDaily(d Daily) {
	fmt.Fprintf(o.w, "Today: %s (%s)\n", d.Date, d.Zone)
	fmt.Fprintf(o.w, "Next word in %s\n", (time.Duration(d.SecondsUntilNext) * time.Second).String())
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	if h.Storage != "" {
		fmt.Fprintf(o.w, "Storage: %s\n", h.Storage)
	}
	if h.Oracle != "" {
		fmt.Fprintf(o.w, "Oracle: %s\n", h.Oracle)
	}
	fmt.Fprintf(o.w, "Words: %d\n", h.Words)
}
