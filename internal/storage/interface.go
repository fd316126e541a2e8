package storage

import (
	"context"

	"github.com/mcoot/guessword/internal/model"
)

// Storage defines the interface for data persistence.
//
// Games returned by GetGame and friends are snapshots: callers may mutate
// them freely, and must go through the write operations below to persist
// anything.
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)

	// Registered player operations
	SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)
	GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error)

	// Game operations
	CreateGame(ctx context.Context, game *model.Game) error
	// GetGame returns the game with its messages in timestamp order
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	GetGameByCode(ctx context.Context, code model.GameCode) (*model.Game, error)
	CodeExists(ctx context.Context, code model.GameCode) (bool, error)
	// JoinGame seats playerID as player2 of an active friend game.
	// It is idempotent for a player already seated, and returns
	// ErrGameNotFound when the code is unknown, inactive or full.
	JoinGame(ctx context.Context, code model.GameCode, playerID model.PlayerID) (*model.Game, error)
	// ClaimTurn atomically checks that the game is active, that playerID holds
	// the turn and that the version is unchanged, then bumps the version and
	// hands the turn to holder until the caller moves it on with SetTurn.
	ClaimTurn(ctx context.Context, id model.GameID, playerID model.PlayerID, version int64, holder model.PlayerID) (int64, error)
	AppendMessage(ctx context.Context, id model.GameID, msg model.Message) error
	PatchMessageResponse(ctx context.Context, id model.GameID, msgID model.MessageID, response string) error
	// SetCompleted moves an active game to completed exactly once
	SetCompleted(ctx context.Context, id model.GameID, winnerID model.PlayerID) error
	SetTurn(ctx context.Context, id model.GameID, playerID model.PlayerID) error
	IncrementHints(ctx context.Context, id model.GameID) (int, error)

	// Word list operations
	GetWordList(ctx context.Context) ([]string, error)
	SaveWordList(ctx context.Context, words []string) error
	// PinDailyWord stores word for date unless one is already stored,
	// and returns whichever word is stored
	PinDailyWord(ctx context.Context, date string, word string) (string, error)
}
