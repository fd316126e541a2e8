package sqlite

import (
	"context"
	"database/sql"
	"strings"
)

func ensureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS players (
    id TEXT PRIMARY KEY,
    display_name TEXT NOT NULL,
    is_guest INTEGER NOT NULL DEFAULT 0,
    created_at_ms INTEGER NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS registered_players (
    player_id TEXT PRIMARY KEY,
    username TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at_ms INTEGER NOT NULL,
    updated_at_ms INTEGER NOT NULL
)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_registered_players_username ON registered_players(username)`,
		`
CREATE TABLE IF NOT EXISTS games (
    id TEXT PRIMARY KEY,
    code TEXT,
    secret_word TEXT NOT NULL,
    date TEXT NOT NULL,
    mode TEXT NOT NULL,
    status TEXT NOT NULL,
    winner_id TEXT NOT NULL DEFAULT '',
    player1_id TEXT NOT NULL,
    player2_id TEXT NOT NULL DEFAULT '',
    current_turn TEXT NOT NULL,
    hints_used INTEGER NOT NULL DEFAULT 0,
    version INTEGER NOT NULL DEFAULT 0,
    created_at_ms INTEGER NOT NULL,
    updated_at_ms INTEGER NOT NULL
)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_games_code ON games(code) WHERE code IS NOT NULL`,
		`
CREATE TABLE IF NOT EXISTS messages (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    game_id TEXT NOT NULL,
    type TEXT NOT NULL,
    content TEXT NOT NULL,
    response TEXT,
    author_id TEXT NOT NULL,
    timestamp_ms INTEGER NOT NULL,
    FOREIGN KEY(game_id) REFERENCES games(id) ON DELETE CASCADE
)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_game ON messages(game_id, timestamp_ms, seq)`,
		`
CREATE TABLE IF NOT EXISTS word_list (
    position INTEGER PRIMARY KEY,
    word TEXT NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS daily_words (
    date TEXT PRIMARY KEY,
    word TEXT NOT NULL
)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
