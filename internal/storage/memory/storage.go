package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/guessword/internal/model"
	"github.com/mcoot/guessword/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players           map[model.PlayerID]*model.Player
	registeredPlayers map[model.PlayerID]*model.RegisteredPlayer
	usernameIndex     map[string]model.PlayerID
	games             map[model.GameID]*model.Game
	codeIndex         map[model.GameCode]model.GameID
	wordList          []string
	dailyWords        map[string]string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:           make(map[model.PlayerID]*model.Player),
		registeredPlayers: make(map[model.PlayerID]*model.RegisteredPlayer),
		usernameIndex:     make(map[string]model.PlayerID),
		games:             make(map[model.GameID]*model.Game),
		codeIndex:         make(map[model.GameCode]model.GameID),
		dailyWords:        make(map[string]string),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *player
	s.players[player.ID] = &p
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *rp
	s.registeredPlayers[rp.PlayerID] = &r
	s.usernameIndex[rp.Username] = rp.PlayerID
	return nil
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	r := *rp
	return &r, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	playerID, ok := s.usernameIndex[username]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return s.GetRegisteredPlayer(ctx, playerID)
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if game.Code != "" {
		if _, taken := s.codeIndex[game.Code]; taken {
			return model.ErrCodeTaken
		}
		s.codeIndex[game.Code] = game.ID
	}
	s.games[game.ID] = game.Clone()
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game.Clone(), nil
}

func (s *Storage) GetGameByCode(ctx context.Context, code model.GameCode) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.codeIndex[code]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return s.games[id].Clone(), nil
}

func (s *Storage) CodeExists(ctx context.Context, code model.GameCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.codeIndex[code]
	return ok, nil
}

func (s *Storage) JoinGame(ctx context.Context, code model.GameCode, playerID model.PlayerID) (*model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.codeIndex[code]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	game := s.games[id]
	if game.IsParticipant(playerID) {
		return game.Clone(), nil
	}
	if !game.IsActive() || game.Player2ID != "" {
		return nil, model.ErrGameNotFound
	}
	game.Player2ID = playerID
	return game.Clone(), nil
}

func (s *Storage) ClaimTurn(ctx context.Context, id model.GameID, playerID model.PlayerID, version int64, holder model.PlayerID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return 0, model.ErrGameNotFound
	}
	if err := storage.CheckClaim(game, playerID, version); err != nil {
		return 0, err
	}
	game.Version++
	game.CurrentTurn = holder
	return game.Version, nil
}

func (s *Storage) AppendMessage(ctx context.Context, id model.GameID, msg model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return model.ErrGameNotFound
	}
	game.Messages = append(game.Messages, msg.Clone())
	sort.SliceStable(game.Messages, func(i, j int) bool {
		return game.Messages[i].Timestamp.Before(game.Messages[j].Timestamp)
	})
	if msg.Timestamp.After(game.UpdatedAt) {
		game.UpdatedAt = msg.Timestamp
	}
	return nil
}

func (s *Storage) PatchMessageResponse(ctx context.Context, id model.GameID, msgID model.MessageID, response string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return model.ErrGameNotFound
	}
	for i := range game.Messages {
		if game.Messages[i].ID == msgID {
			game.Messages[i].Response = model.StringPtr(response)
			return nil
		}
	}
	return model.ErrMessageNotFound
}

func (s *Storage) SetCompleted(ctx context.Context, id model.GameID, winnerID model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return model.ErrGameNotFound
	}
	if !game.IsActive() {
		return model.ErrGameComplete
	}
	game.Status = model.GameStatusCompleted
	game.WinnerID = winnerID
	return nil
}

func (s *Storage) SetTurn(ctx context.Context, id model.GameID, playerID model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return model.ErrGameNotFound
	}
	if !game.IsActive() {
		return model.ErrGameComplete
	}
	game.CurrentTurn = playerID
	return nil
}

func (s *Storage) IncrementHints(ctx context.Context, id model.GameID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return 0, model.ErrGameNotFound
	}
	game.HintsUsed++
	return game.HintsUsed, nil
}

// Word list operations

func (s *Storage) GetWordList(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.wordList == nil {
		return nil, model.ErrWordListNotFound
	}
	result := make([]string, len(s.wordList))
	copy(result, s.wordList)
	return result, nil
}

func (s *Storage) SaveWordList(ctx context.Context, words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wordList = make([]string, len(words))
	copy(s.wordList, words)
	return nil
}

func (s *Storage) PinDailyWord(ctx context.Context, date string, word string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.dailyWords[date]; ok {
		return existing, nil
	}
	s.dailyWords[date] = word
	return word, nil
}
