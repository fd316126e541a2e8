package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/guessword/internal/model"
	"github.com/mcoot/guessword/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
//
// A game is split across two keys: a JSON blob with the scalar fields and a
// LIST of JSON messages. Read-modify-write operations on the blob run as
// WATCH/MULTI transactions so concurrent writers cannot lose updates.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.MaxTxRetries <= 0 {
		cfg.MaxTxRetries = 1
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Apply TTL only for guest players
	var ttl time.Duration
	if player.IsGuest {
		ttl = s.cfg.GuestPlayerTTL
	}

	return s.client.Set(ctx, playerKey(player.ID), data, ttl).Err()
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	data, err := json.Marshal(rp)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, registeredPlayerKey(rp.PlayerID), data, 0)
	pipe.Set(ctx, usernameIndexKey(rp.Username), string(rp.PlayerID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	data, err := s.client.Get(ctx, registeredPlayerKey(playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var rp model.RegisteredPlayer
	if err := json.Unmarshal(data, &rp); err != nil {
		return nil, err
	}
	return &rp, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	playerIDStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	return s.GetRegisteredPlayer(ctx, model.PlayerID(playerIDStr))
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	scalar := game.Clone()
	scalar.Messages = nil
	data, err := json.Marshal(scalar)
	if err != nil {
		return err
	}

	if game.Code != "" {
		claimed, err := s.client.SetNX(ctx, codeIndexKey(game.Code), string(game.ID), s.cfg.GameTTL).Result()
		if err != nil {
			return err
		}
		if !claimed {
			return model.ErrCodeTaken
		}
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, gameKey(game.ID), data, s.cfg.GameTTL)
	for _, msg := range game.Messages {
		msgData, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		pipe.RPush(ctx, messagesKey(game.ID), msgData)
	}
	if len(game.Messages) > 0 {
		pipe.Expire(ctx, messagesKey(game.ID), s.cfg.GameTTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	pipe := s.client.Pipeline()
	gameCmd := pipe.Get(ctx, gameKey(id))
	msgsCmd := pipe.LRange(ctx, messagesKey(id), 0, -1)
	_, err := pipe.Exec(ctx)
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	data, err := gameCmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}

	raw, err := msgsCmd.Result()
	if err != nil {
		return nil, err
	}
	game.Messages = make([]model.Message, 0, len(raw))
	for _, r := range raw {
		var msg model.Message
		if err := json.Unmarshal([]byte(r), &msg); err != nil {
			return nil, err
		}
		game.Messages = append(game.Messages, msg)
		if msg.Timestamp.After(game.UpdatedAt) {
			game.UpdatedAt = msg.Timestamp
		}
	}
	sort.SliceStable(game.Messages, func(i, j int) bool {
		return game.Messages[i].Timestamp.Before(game.Messages[j].Timestamp)
	})

	return &game, nil
}

func (s *Storage) GetGameByCode(ctx context.Context, code model.GameCode) (*model.Game, error) {
	id, err := s.client.Get(ctx, codeIndexKey(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}
	return s.GetGame(ctx, model.GameID(id))
}

func (s *Storage) CodeExists(ctx context.Context, code model.GameCode) (bool, error) {
	exists, err := s.client.Exists(ctx, codeIndexKey(code)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (s *Storage) JoinGame(ctx context.Context, code model.GameCode, playerID model.PlayerID) (*model.Game, error) {
	id, err := s.client.Get(ctx, codeIndexKey(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	err = s.updateGame(ctx, model.GameID(id), func(game *model.Game) error {
		if game.IsParticipant(playerID) {
			return nil
		}
		if !game.IsActive() || game.Player2ID != "" {
			return model.ErrGameNotFound
		}
		game.Player2ID = playerID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetGame(ctx, model.GameID(id))
}

func (s *Storage) ClaimTurn(ctx context.Context, id model.GameID, playerID model.PlayerID, version int64, holder model.PlayerID) (int64, error) {
	var newVersion int64
	err := s.updateGame(ctx, id, func(game *model.Game) error {
		if err := storage.CheckClaim(game, playerID, version); err != nil {
			return err
		}
		game.Version++
		game.CurrentTurn = holder
		newVersion = game.Version
		return nil
	})
	return newVersion, err
}

func (s *Storage) AppendMessage(ctx context.Context, id model.GameID, msg model.Message) error {
	exists, err := s.client.Exists(ctx, gameKey(id)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return model.ErrGameNotFound
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, messagesKey(id), data)
	pipe.Expire(ctx, messagesKey(id), s.cfg.GameTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) PatchMessageResponse(ctx context.Context, id model.GameID, msgID model.MessageID, response string) error {
	key := messagesKey(id)

	txf := func(tx *redis.Tx) error {
		raw, err := tx.LRange(ctx, key, 0, -1).Result()
		if err != nil {
			return err
		}
		for i, r := range raw {
			var msg model.Message
			if err := json.Unmarshal([]byte(r), &msg); err != nil {
				return err
			}
			if msg.ID != msgID {
				continue
			}
			msg.Response = model.StringPtr(response)
			data, err := json.Marshal(msg)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.LSet(ctx, key, int64(i), data)
				return nil
			})
			return err
		}
		return model.ErrMessageNotFound
	}

	return s.watch(ctx, txf, key)
}

func (s *Storage) SetCompleted(ctx context.Context, id model.GameID, winnerID model.PlayerID) error {
	return s.updateGame(ctx, id, func(game *model.Game) error {
		if !game.IsActive() {
			return model.ErrGameComplete
		}
		game.Status = model.GameStatusCompleted
		game.WinnerID = winnerID
		return nil
	})
}

func (s *Storage) SetTurn(ctx context.Context, id model.GameID, playerID model.PlayerID) error {
	return s.updateGame(ctx, id, func(game *model.Game) error {
		if !game.IsActive() {
			return model.ErrGameComplete
		}
		game.CurrentTurn = playerID
		return nil
	})
}

func (s *Storage) IncrementHints(ctx context.Context, id model.GameID) (int, error) {
	var hints int
	err := s.updateGame(ctx, id, func(game *model.Game) error {
		game.HintsUsed++
		hints = game.HintsUsed
		return nil
	})
	return hints, err
}

// updateGame runs fn against the stored game blob inside a WATCH transaction
// and writes the result back, keeping the key's TTL
func (s *Storage) updateGame(ctx context.Context, id model.GameID, fn func(game *model.Game) error) error {
	key := gameKey(id)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrGameNotFound
			}
			return err
		}

		var game model.Game
		if err := json.Unmarshal(data, &game); err != nil {
			return err
		}
		if err := fn(&game); err != nil {
			return err
		}

		out, err := json.Marshal(&game)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, out, redis.SetArgs{KeepTTL: true})
			return nil
		})
		return err
	}

	return s.watch(ctx, txf, key)
}

// watch retries txf while a watched key changes underneath it
func (s *Storage) watch(ctx context.Context, txf func(tx *redis.Tx) error, keys ...string) error {
	var err error
	for range s.cfg.MaxTxRetries {
		err = s.client.Watch(ctx, txf, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

// Word list operations

func (s *Storage) GetWordList(ctx context.Context) ([]string, error) {
	words, err := s.client.LRange(ctx, wordListKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, model.ErrWordListNotFound
	}
	return words, nil
}

func (s *Storage) SaveWordList(ctx context.Context, words []string) error {
	key := wordListKey()

	// Replace the list atomically; order matters for daily selection
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(words) > 0 {
		members := make([]interface{}, len(words))
		for i, w := range words {
			members[i] = w
		}
		pipe.RPush(ctx, key, members...)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) PinDailyWord(ctx context.Context, date string, word string) (string, error) {
	key := dailyWordKey(date)
	if err := s.client.SetNX(ctx, key, word, s.cfg.DailyWordTTL).Err(); err != nil {
		return "", err
	}
	return s.client.Get(ctx, key).Result()
}
