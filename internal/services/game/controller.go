package game

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mcoot/guessword/internal/dependencies/clock"
	"github.com/mcoot/guessword/internal/dependencies/random"
	"github.com/mcoot/guessword/internal/model"
	"github.com/mcoot/guessword/internal/services/daily"
	"github.com/mcoot/guessword/internal/services/oracle"
	"github.com/mcoot/guessword/internal/storage"
)

const (
	// CodeAlphabet is the character set for join codes (no I, O, 0, 1)
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// CodeLength is the length of join codes
	CodeLength = 6
	// MaxCodeAttempts bounds the search for an unused join code
	MaxCodeAttempts = 10
)

// Controller is the turn engine: it creates and joins games and applies
// player actions, including the opponent's inline turn in ai mode
type Controller struct {
	storage  storage.Storage
	selector *daily.Selector
	oracles  oracle.Set
	notifier Notifier
	clock    clock.Clock
	random   random.Random
	locks    *gameLocks
	logger   *slog.Logger
}

// NewController creates a new game Controller
func NewController(
	storage storage.Storage,
	selector *daily.Selector,
	oracles oracle.Set,
	notifier Notifier,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Controller{
		storage:  storage,
		selector: selector,
		oracles:  oracles,
		notifier: notifier,
		clock:    clock,
		random:   random,
		locks:    newGameLocks(),
		logger:   logger.With(slog.String("component", "game-controller")),
	}
}

// TodaysWord returns today's date key and secret word, pinning the word for
// the date so later list changes do not alter it
func (c *Controller) TodaysWord(ctx context.Context) (string, string, error) {
	now := c.clock.Now()
	date := c.selector.DateKey(now)
	word := c.selector.WordForDate(now)
	if word == "" {
		return "", "", model.ErrWordListNotFound
	}
	pinned, err := c.storage.PinDailyWord(ctx, date, word)
	if err != nil {
		return "", "", err
	}
	return date, pinned, nil
}

// CreateGame starts a game on today's word with ownerID as player 1
func (c *Controller) CreateGame(ctx context.Context, ownerID model.PlayerID, mode model.GameMode) (*model.Game, error) {
	if !mode.Valid() {
		return nil, model.ErrInvalidMode
	}
	if ownerID == "" || ownerID == model.AIPlayerID {
		return nil, model.ErrPlayerNotFound
	}

	date, word, err := c.TodaysWord(ctx)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	game := &model.Game{
		ID:          model.GameID(c.random.ID()),
		SecretWord:  word,
		Date:        date,
		Mode:        mode,
		Status:      model.GameStatusActive,
		Messages:    []model.Message{},
		Player1ID:   ownerID,
		CurrentTurn: ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	switch mode {
	case model.GameModeAI:
		game.Player2ID = model.AIPlayerID
		err = c.storage.CreateGame(ctx, game)
	case model.GameModeFriend:
		err = c.createWithCode(ctx, game)
	}
	if err != nil {
		c.logger.Error("failed to create game",
			slog.String("player_id", string(ownerID)),
			slog.String("mode", string(mode)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("game created",
		slog.String("game_id", string(game.ID)),
		slog.String("player_id", string(ownerID)),
		slog.String("mode", string(mode)),
		slog.String("date", date),
	)
	return game, nil
}

// createWithCode picks unused join codes until one is stored
func (c *Controller) createWithCode(ctx context.Context, game *model.Game) error {
	for range MaxCodeAttempts {
		code := model.GameCode(c.random.String(CodeLength, CodeAlphabet))
		exists, err := c.storage.CodeExists(ctx, code)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		game.Code = code
		err = c.storage.CreateGame(ctx, game)
		if errors.Is(err, model.ErrCodeTaken) {
			continue
		}
		return err
	}
	game.Code = ""
	return model.ErrCodeExhausted
}

// NormalizeCode uppercases and trims a join code and checks its shape
func NormalizeCode(code string) (model.GameCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != CodeLength {
		return "", model.ErrInvalidCode
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", model.ErrInvalidCode
		}
	}
	return model.GameCode(code), nil
}

// JoinGame seats playerID as player 2 of the friend game with this code.
// Rejoining is a no-op; a full or finished game reports ErrGameNotFound.
func (c *Controller) JoinGame(ctx context.Context, code string, playerID model.PlayerID) (*model.Game, error) {
	normalized, err := NormalizeCode(code)
	if err != nil {
		return nil, err
	}
	if playerID == "" || playerID == model.AIPlayerID {
		return nil, model.ErrPlayerNotFound
	}

	game, err := c.storage.JoinGame(ctx, normalized, playerID)
	if err != nil {
		return nil, err
	}

	if game.Player2ID == playerID {
		c.logger.Info("player joined game",
			slog.String("game_id", string(game.ID)),
			slog.String("player_id", string(playerID)),
		)
		c.publish(ctx, game.ID, model.EventPlayerJoined, playerID, model.PlayerJoinedPayload{PlayerID: playerID})
	}
	return game, nil
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, id)
}

// Daily describes the current word period
type Daily struct {
	Date             string
	Zone             string
	NextWordAt       time.Time
	SecondsUntilNext int64
}

// DailyInfo reports today's date key and when the next word arrives
func (c *Controller) DailyInfo() Daily {
	now := c.clock.Now()
	return Daily{
		Date:             c.selector.DateKey(now),
		Zone:             c.selector.Location().String(),
		NextWordAt:       c.selector.NextBoundary(now),
		SecondsUntilNext: int64(c.selector.TimeUntilNext(now).Seconds()),
	}
}

func (c *Controller) publish(ctx context.Context, id model.GameID, typ model.EventType, playerID model.PlayerID, payload any) {
	c.notifier.Notify(ctx, model.Event{
		Type:      typ,
		Timestamp: c.clock.Now(),
		GameID:    id,
		PlayerID:  playerID,
		Payload:   payload,
	})
}
