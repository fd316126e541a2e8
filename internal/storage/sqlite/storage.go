package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mcoot/guessword/internal/model"
	"github.com/mcoot/guessword/internal/storage"
)

// Config holds SQLite storage configuration
type Config struct {
	// Path is the database file, or ":memory:"
	Path string
}

// Storage is a SQLite-backed implementation of the storage interface.
// Timestamps are stored as UTC unix milliseconds.
type Storage struct {
	db *sql.DB
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// New opens (creating if needed) the database at cfg.Path and applies the schema
func New(cfg Config) (*Storage, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if path != ":memory:" {
		parent := filepath.Dir(path)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases alive and serialises writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pragmas := []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func toMs(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMs(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO players (id, display_name, is_guest, created_at_ms)
VALUES (?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE
SET display_name = excluded.display_name,
    is_guest = excluded.is_guest
`, string(player.ID), player.DisplayName, player.IsGuest, toMs(player.CreatedAt))
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var (
		player    model.Player
		rawID     string
		createdMs int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, display_name, is_guest, created_at_ms FROM players WHERE id = ?
`, string(id)).Scan(&rawID, &player.DisplayName, &player.IsGuest, &createdMs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	player.ID = model.PlayerID(rawID)
	player.CreatedAt = fromMs(createdMs)
	return &player, nil
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO registered_players (player_id, username, password_hash, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (player_id) DO UPDATE
SET password_hash = excluded.password_hash,
    updated_at_ms = excluded.updated_at_ms
`, string(rp.PlayerID), rp.Username, rp.PasswordHash, toMs(rp.CreatedAt), toMs(rp.UpdatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("username %q already registered: %w", rp.Username, err)
	}
	return err
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	return s.scanRegisteredPlayer(s.db.QueryRowContext(ctx, `
SELECT player_id, username, password_hash, created_at_ms, updated_at_ms
FROM registered_players WHERE player_id = ?
`, string(playerID)))
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	return s.scanRegisteredPlayer(s.db.QueryRowContext(ctx, `
SELECT player_id, username, password_hash, created_at_ms, updated_at_ms
FROM registered_players WHERE username = ?
`, username))
}

func (s *Storage) scanRegisteredPlayer(row *sql.Row) (*model.RegisteredPlayer, error) {
	var (
		rp                   model.RegisteredPlayer
		rawID                string
		createdMs, updatedMs int64
	)
	if err := row.Scan(&rawID, &rp.Username, &rp.PasswordHash, &createdMs, &updatedMs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	rp.PlayerID = model.PlayerID(rawID)
	rp.CreatedAt = fromMs(createdMs)
	rp.UpdatedAt = fromMs(updatedMs)
	return &rp, nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	code := sql.NullString{String: string(game.Code), Valid: game.Code != ""}
	_, err = tx.ExecContext(ctx, `
INSERT INTO games (
    id, code, secret_word, date, mode, status, winner_id, player1_id, player2_id,
    current_turn, hints_used, version, created_at_ms, updated_at_ms
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		string(game.ID), code, game.SecretWord, game.Date, string(game.Mode), string(game.Status),
		string(game.WinnerID), string(game.Player1ID), string(game.Player2ID), string(game.CurrentTurn),
		game.HintsUsed, game.Version, toMs(game.CreatedAt), toMs(game.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) && code.Valid {
			return model.ErrCodeTaken
		}
		return err
	}

	for _, msg := range game.Messages {
		if err := insertMessage(ctx, tx, game.ID, msg); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertMessage(ctx context.Context, db execer, id model.GameID, msg model.Message) error {
	var response sql.NullString
	if msg.Response != nil {
		response = sql.NullString{String: *msg.Response, Valid: true}
	}
	_, err := db.ExecContext(ctx, `
INSERT INTO messages (id, game_id, type, content, response, author_id, timestamp_ms)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, string(msg.ID), string(id), string(msg.Type), msg.Content, response, string(msg.AuthorID), toMs(msg.Timestamp))
	return err
}

const gameColumns = `
id, code, secret_word, date, mode, status, winner_id, player1_id, player2_id,
current_turn, hints_used, version, created_at_ms, updated_at_ms`

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return s.loadGame(ctx, s.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, string(id)))
}

func (s *Storage) GetGameByCode(ctx context.Context, code model.GameCode) (*model.Game, error) {
	return s.loadGame(ctx, s.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE code = ?`, string(code)))
}

func (s *Storage) loadGame(ctx context.Context, row *sql.Row) (*model.Game, error) {
	var (
		game                                   model.Game
		id, mode, status, winner, p1, p2, turn string
		code                                   sql.NullString
		createdMs, updatedMs                   int64
	)
	err := row.Scan(
		&id, &code, &game.SecretWord, &game.Date, &mode, &status, &winner, &p1, &p2,
		&turn, &game.HintsUsed, &game.Version, &createdMs, &updatedMs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}
	game.ID = model.GameID(id)
	game.Code = model.GameCode(code.String)
	game.Mode = model.GameMode(mode)
	game.Status = model.GameStatus(status)
	game.WinnerID = model.PlayerID(winner)
	game.Player1ID = model.PlayerID(p1)
	game.Player2ID = model.PlayerID(p2)
	game.CurrentTurn = model.PlayerID(turn)
	game.CreatedAt = fromMs(createdMs)
	game.UpdatedAt = fromMs(updatedMs)

	messages, err := s.loadMessages(ctx, game.ID)
	if err != nil {
		return nil, err
	}
	game.Messages = messages
	return &game, nil
}

func (s *Storage) loadMessages(ctx context.Context, id model.GameID) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, type, content, response, author_id, timestamp_ms
FROM messages
WHERE game_id = ?
ORDER BY timestamp_ms ASC, seq ASC
`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]model.Message, 0)
	for rows.Next() {
		var (
			msg                model.Message
			msgID, typ, author string
			response           sql.NullString
			timestampMs        int64
		)
		if err := rows.Scan(&msgID, &typ, &msg.Content, &response, &author, &timestampMs); err != nil {
			return nil, err
		}
		msg.ID = model.MessageID(msgID)
		msg.Type = model.MessageType(typ)
		msg.AuthorID = model.PlayerID(author)
		msg.Timestamp = fromMs(timestampMs)
		if response.Valid {
			msg.Response = model.StringPtr(response.String)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (s *Storage) CodeExists(ctx context.Context, code model.GameCode) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM games WHERE code = ?`, string(code)).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Storage) JoinGame(ctx context.Context, code model.GameCode, playerID model.PlayerID) (*model.Game, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE games
SET player2_id = ?
WHERE code = ? AND status = ? AND player2_id = '' AND player1_id <> ?
`, string(playerID), string(code), string(model.GameStatusActive), string(playerID))
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	game, err := s.GetGameByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if n == 0 && !game.IsParticipant(playerID) {
		return nil, model.ErrGameNotFound
	}
	return game, nil
}

func (s *Storage) ClaimTurn(ctx context.Context, id model.GameID, playerID model.PlayerID, version int64, holder model.PlayerID) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE games
SET version = version + 1, current_turn = ?
WHERE id = ? AND status = ? AND current_turn = ? AND version = ?
`, string(holder), string(id), string(model.GameStatusActive), string(playerID), version)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		return version + 1, nil
	}

	// Work out which precondition failed
	game, err := s.GetGame(ctx, id)
	if err != nil {
		return 0, err
	}
	if err := storage.CheckClaim(game, playerID, version); err != nil {
		return 0, err
	}
	return 0, model.ErrStaleGame
}

func (s *Storage) AppendMessage(ctx context.Context, id model.GameID, msg model.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
UPDATE games SET updated_at_ms = MAX(updated_at_ms, ?) WHERE id = ?
`, toMs(msg.Timestamp), string(id))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return model.ErrGameNotFound
	}

	if err := insertMessage(ctx, tx, id, msg); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Storage) PatchMessageResponse(ctx context.Context, id model.GameID, msgID model.MessageID, response string) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE messages SET response = ? WHERE game_id = ? AND id = ?
`, response, string(id), string(msgID))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := s.GetGame(ctx, id); err != nil {
		return err
	}
	return model.ErrMessageNotFound
}

func (s *Storage) SetCompleted(ctx context.Context, id model.GameID, winnerID model.PlayerID) error {
	return s.updateActive(ctx, id, `
UPDATE games SET status = ?, winner_id = ? WHERE id = ? AND status = ?
`, string(model.GameStatusCompleted), string(winnerID), string(id), string(model.GameStatusActive))
}

func (s *Storage) SetTurn(ctx context.Context, id model.GameID, playerID model.PlayerID) error {
	return s.updateActive(ctx, id, `
UPDATE games SET current_turn = ? WHERE id = ? AND status = ?
`, string(playerID), string(id), string(model.GameStatusActive))
}

// updateActive runs an UPDATE guarded by status = active and reports
// ErrGameNotFound or ErrGameComplete when it matches nothing
func (s *Storage) updateActive(ctx context.Context, id model.GameID, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := s.GetGame(ctx, id); err != nil {
		return err
	}
	return model.ErrGameComplete
}

func (s *Storage) IncrementHints(ctx context.Context, id model.GameID) (int, error) {
	var hints int
	err := s.db.QueryRowContext(ctx, `
UPDATE games SET hints_used = hints_used + 1 WHERE id = ? RETURNING hints_used
`, string(id)).Scan(&hints)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, model.ErrGameNotFound
		}
		return 0, err
	}
	return hints, nil
}

// Word list operations

func (s *Storage) GetWordList(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT word FROM word_list ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, model.ErrWordListNotFound
	}
	return words, nil
}

func (s *Storage) SaveWordList(ctx context.Context, words []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM word_list`); err != nil {
		return err
	}
	for i, w := range words {
		if _, err := tx.ExecContext(ctx, `INSERT INTO word_list (position, word) VALUES (?, ?)`, i, w); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Storage) PinDailyWord(ctx context.Context, date string, word string) (string, error) {
	if _, err := s.db.ExecContext(ctx, `
INSERT INTO daily_words (date, word) VALUES (?, ?)
ON CONFLICT (date) DO NOTHING
`, date, word); err != nil {
		return "", err
	}
	var pinned string
	if err := s.db.QueryRowContext(ctx, `SELECT word FROM daily_words WHERE date = ?`, date).Scan(&pinned); err != nil {
		return "", err
	}
	return pinned, nil
}
