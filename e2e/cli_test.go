package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/guessword/internal/api"
	"github.com/mcoot/guessword/internal/factory"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "guessword-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/guessword")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

// withTokenFile returns a runner sharing the binary but keeping its own session
func (r *cliRunner) withTokenFile(path string) *cliRunner {
	return &cliRunner{
		binaryPath: r.binaryPath,
		serverURL:  r.serverURL,
		tokenFile:  path,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Env = cliEnv()
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Env = cliEnv()
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// cliEnv drops GUESSWORD_* variables so the developer's own session never leaks in
func cliEnv() []string {
	var env []string
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "GUESSWORD_") {
			env = append(env, kv)
		}
	}
	return env
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	app      *factory.TestApp
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	// The test app pins the clock to 2024-01-01, when the word is "guitar"
	app := factory.NewTestApp()
	require.NoError(t, app.LoadTestWords())

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	server := api.NewServer(app.Router(), api.DefaultServerConfig(), logger)
	server.OnShutdown(app.HubManager.CloseAll)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := server.Run(ctx, listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		app:  app,
		shutdown: func() {
			cancel()
			<-done
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type playerResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

type authResponse struct {
	Player       playerResponse `json:"player"`
	SessionToken string         `json:"session_token"`
}

type messageResponse struct {
	Type     string  `json:"type"`
	Content  string  `json:"content"`
	Response *string `json:"response"`
	AuthorID string  `json:"author_id"`
}

type gameResponse struct {
	ID          string            `json:"id"`
	Code        string            `json:"code"`
	Mode        string            `json:"mode"`
	Status      string            `json:"status"`
	WinnerID    *string           `json:"winner_id"`
	SecretWord  string            `json:"secret_word"`
	Player2ID   string            `json:"player2_id"`
	CurrentTurn string            `json:"current_turn"`
	HintsUsed   int               `json:"hints_used"`
	Version     int64             `json:"version"`
	Messages    []messageResponse `json:"messages"`
}

type actionResponse struct {
	AuthorMessage   messageResponse  `json:"author_message"`
	OpponentMessage *messageResponse `json:"opponent_message"`
	Status          string           `json:"status"`
	WinnerID        *string          `json:"winner_id"`
	Game            gameResponse     `json:"game"`
}

type healthResponse struct {
	Status string `json:"status"`
	Words  int    `json:"words"`
}

type dailyResponse struct {
	Date string `json:"date"`
	Zone string `json:"zone"`
}

type textResponse struct {
	Message string `json:"message"`
}

func parse[T any](t *testing.T, output string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(output), &v), "output: %s", output)
	return v
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	resp := parse[healthResponse](t, output)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Words)
}

func TestCLI_Daily(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("daily")
	require.NoError(t, err, "output: %s", output)

	resp := parse[dailyResponse](t, output)
	assert.Equal(t, "2024-01-01", resp.Date)
	assert.Equal(t, "America/Denver", resp.Zone)
}

func TestCLI_PlayerCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Create guest
	output, err := cli.run("player", "guest", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)

	authResp := parse[authResponse](t, output)
	assert.Equal(t, "Alice", authResp.Player.DisplayName)
	assert.True(t, authResp.Player.IsGuest)
	assert.NotEmpty(t, authResp.SessionToken)

	// Get me (token should be saved in token file)
	output, err = cli.run("player", "me")
	require.NoError(t, err, "output: %s", output)

	player := parse[playerResponse](t, output)
	assert.Equal(t, "Alice", player.DisplayName)
	assert.Equal(t, authResp.Player.ID, player.ID)

	// Logout clears the saved token and revokes the session
	output, err = cli.run("player", "logout")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "Logged out", parse[textResponse](t, output).Message)

	_, err = os.Stat(cli.tokenFile)
	assert.True(t, os.IsNotExist(err))

	_, err = cli.runWithToken(authResp.SessionToken, "player", "me")
	assert.Error(t, err)
}

func TestCLI_RegisterAndLogin(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("player", "register", "--user", "alice", "--pass", "hunter22")
	require.NoError(t, err, "output: %s", output)
	registered := parse[authResponse](t, output)
	assert.Equal(t, "alice", registered.Player.DisplayName)
	assert.False(t, registered.Player.IsGuest)

	output, err = cli.run("player", "login", "--user", "alice", "--pass", "hunter22")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, registered.Player.ID, parse[authResponse](t, output).Player.ID)

	output, err = cli.run("player", "login", "--user", "alice", "--pass", "nope")
	assert.Error(t, err)
	assert.Contains(t, output, "INVALID_CREDENTIALS")
}

func TestCLI_AIGameFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("player", "guest", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)
	alice := parse[authResponse](t, output)

	output, err = cli.run("game", "create")
	require.NoError(t, err, "output: %s", output)
	g := parse[gameResponse](t, output)
	assert.Equal(t, "ai", g.Mode)
	assert.Equal(t, "active", g.Status)
	assert.Empty(t, g.SecretWord)

	// Multi-word questions are joined back together
	output, err = cli.run("game", "ask", g.ID, "Is", "it", "alive?")
	require.NoError(t, err, "output: %s", output)
	result := parse[actionResponse](t, output)
	assert.Equal(t, "Is it alive?", result.AuthorMessage.Content)
	require.NotNil(t, result.AuthorMessage.Response)
	assert.Equal(t, "no", *result.AuthorMessage.Response)
	require.NotNil(t, result.OpponentMessage)
	assert.Equal(t, "ai", result.OpponentMessage.AuthorID)
	assert.Equal(t, alice.Player.ID, result.Game.CurrentTurn)

	output, err = cli.run("game", "hint", g.ID)
	require.NoError(t, err, "output: %s", output)
	result = parse[actionResponse](t, output)
	assert.Equal(t, "hint", result.AuthorMessage.Type)
	assert.Equal(t, 1, result.Game.HintsUsed)

	// A stale version is rejected
	output, err = cli.run("game", "guess", g.ID, "pizza", "--expect-version", "0")
	assert.Error(t, err)
	assert.Contains(t, output, "STALE_GAME")

	output, err = cli.run("game", "guess", g.ID, "guitar")
	require.NoError(t, err, "output: %s", output)
	result = parse[actionResponse](t, output)
	assert.Equal(t, "completed", result.Status)
	require.NotNil(t, result.WinnerID)
	assert.Equal(t, alice.Player.ID, *result.WinnerID)
	assert.Equal(t, "guitar", result.Game.SecretWord)

	output, err = cli.run("game", "get", g.ID)
	require.NoError(t, err, "output: %s", output)
	final := parse[gameResponse](t, output)
	assert.Len(t, final.Messages, 5)
}

func TestCLI_FriendGameFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli1 := newCLIRunner(t, ts.addr)
	cli2 := cli1.withTokenFile(filepath.Join(t.TempDir(), "token2"))

	output, err := cli1.run("player", "guest", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)

	output, err = cli2.run("player", "guest", "--name", "Bob")
	require.NoError(t, err, "output: %s", output)
	bob := parse[authResponse](t, output)

	output, err = cli1.run("game", "create", "--mode", "friend")
	require.NoError(t, err, "output: %s", output)
	g := parse[gameResponse](t, output)
	require.Len(t, g.Code, 6)
	assert.Empty(t, g.Player2ID)

	output, err = cli2.run("game", "join", strings.ToLower(g.Code))
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, bob.Player.ID, parse[gameResponse](t, output).Player2ID)

	output, err = cli1.run("game", "ask", g.ID, "Is it an animal?")
	require.NoError(t, err, "output: %s", output)
	result := parse[actionResponse](t, output)
	assert.Nil(t, result.OpponentMessage)
	assert.Equal(t, bob.Player.ID, result.Game.CurrentTurn)

	// Alice has to wait for Bob
	output, err = cli1.run("game", "guess", g.ID, "guitar")
	assert.Error(t, err)
	assert.Contains(t, output, "NOT_YOUR_TURN")

	output, err = cli2.run("game", "guess", g.ID, "Guitar")
	require.NoError(t, err, "output: %s", output)
	result = parse[actionResponse](t, output)
	assert.Equal(t, "completed", result.Status)
	assert.Equal(t, bob.Player.ID, *result.WinnerID)

	// The watcher prints the history and exits once the game is over
	output, err = cli1.run("game", "watch", g.ID, "--interval", "100ms")
	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, output, "Is it an animal?")
	assert.Contains(t, output, "Game over.")
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Get player without auth
	output, err := cli.run("player", "me")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "unauthorized")

	output, err = cli.run("player", "guest", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("game", "get", "missing")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "not found")

	output, err = cli.run("game", "join", "ZZZZZZ")
	assert.Error(t, err)
	assert.Contains(t, output, "GAME_NOT_FOUND")

	output, err = cli.run("game", "create", "--mode", "solo")
	assert.Error(t, err)
	assert.Contains(t, output, "--mode")
}
