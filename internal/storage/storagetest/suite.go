// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/guessword/internal/model"
	"github.com/mcoot/guessword/internal/storage"
)

// Suite runs the storage contract against a fresh backend per test.
// Backend test packages embed it and set NewStorage in SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func (s *Suite) newGame(id model.GameID, code model.GameCode) *model.Game {
	game := &model.Game{
		ID:          id,
		Code:        code,
		SecretWord:  "elephant",
		Date:        "2024-01-01",
		Mode:        model.GameModeAI,
		Status:      model.GameStatusActive,
		Player1ID:   "p1",
		Player2ID:   model.AIPlayerID,
		CurrentTurn: "p1",
		Messages:    []model.Message{},
		CreatedAt:   baseTime,
		UpdatedAt:   baseTime,
	}
	if code != "" {
		game.Mode = model.GameModeFriend
		game.Player2ID = ""
	}
	return game
}

func (s *Suite) mustCreate(game *model.Game) {
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, game))
}

func message(id model.MessageID, author model.PlayerID, offset time.Duration) model.Message {
	return model.Message{
		ID:        id,
		Type:      model.MessageTypeQuestion,
		Content:   "Is it big?",
		AuthorID:  author,
		Timestamp: baseTime.Add(offset),
	}
}

// Players

func (s *Suite) TestSaveAndGetPlayer() {
	player := &model.Player{ID: "player-1", DisplayName: "Alice", CreatedAt: baseTime}
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, player))

	got, err := s.Storage.GetPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(player.ID, got.ID)
	s.Equal("Alice", got.DisplayName)
	s.False(got.IsGuest)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestRegisteredPlayerLookups() {
	rp := &model.RegisteredPlayer{
		PlayerID:     "player-1",
		Username:     "alice",
		PasswordHash: "hash",
		CreatedAt:    baseTime,
		UpdatedAt:    baseTime,
	}
	s.Require().NoError(s.Storage.SaveRegisteredPlayer(s.Ctx, rp))

	byID, err := s.Storage.GetRegisteredPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("alice", byID.Username)
	s.Equal("hash", byID.PasswordHash)

	byName, err := s.Storage.GetRegisteredPlayerByUsername(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), byName.PlayerID)

	_, err = s.Storage.GetRegisteredPlayerByUsername(s.Ctx, "bob")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Games

func (s *Suite) TestCreateAndGetGame() {
	game := s.newGame("game-1", "")
	s.mustCreate(game)

	got, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(game.SecretWord, got.SecretWord)
	s.Equal(game.Date, got.Date)
	s.Equal(model.GameModeAI, got.Mode)
	s.Equal(model.GameStatusActive, got.Status)
	s.Equal(model.AIPlayerID, got.Player2ID)
	s.Equal(model.PlayerID("p1"), got.CurrentTurn)
	s.Equal(int64(0), got.Version)
	s.Empty(got.Messages)
	s.True(game.CreatedAt.Equal(got.CreatedAt))
}

func (s *Suite) TestGetGameNotFound() {
	_, err := s.Storage.GetGame(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrGameNotFound)

	_, err = s.Storage.GetGameByCode(s.Ctx, "ZZZZZZ")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestGameIsSnapshot() {
	s.mustCreate(s.newGame("game-1", ""))

	got, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	got.SecretWord = "changed"
	got.Messages = append(got.Messages, message("m1", "p1", time.Second))

	again, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal("elephant", again.SecretWord)
	s.Empty(again.Messages)
}

func (s *Suite) TestCodeIndex() {
	s.mustCreate(s.newGame("game-1", "ABC234"))

	exists, err := s.Storage.CodeExists(s.Ctx, "ABC234")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.Storage.CodeExists(s.Ctx, "XYZ789")
	s.Require().NoError(err)
	s.False(exists)

	got, err := s.Storage.GetGameByCode(s.Ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal(model.GameID("game-1"), got.ID)
}

func (s *Suite) TestCreateGameRejectsDuplicateCode() {
	s.mustCreate(s.newGame("game-1", "ABC234"))

	err := s.Storage.CreateGame(s.Ctx, s.newGame("game-2", "ABC234"))
	s.ErrorIs(err, model.ErrCodeTaken)

	got, err := s.Storage.GetGameByCode(s.Ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal(model.GameID("game-1"), got.ID)
}

func (s *Suite) TestGamesWithoutCodeDoNotCollide() {
	s.mustCreate(s.newGame("game-1", ""))
	s.mustCreate(s.newGame("game-2", ""))
}

func (s *Suite) TestJoinGame() {
	s.mustCreate(s.newGame("game-1", "ABC234"))

	game, err := s.Storage.JoinGame(s.Ctx, "ABC234", "p2")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p2"), game.Player2ID)

	// Idempotent for seated players
	game, err = s.Storage.JoinGame(s.Ctx, "ABC234", "p2")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p2"), game.Player2ID)

	game, err = s.Storage.JoinGame(s.Ctx, "ABC234", "p1")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p2"), game.Player2ID)

	_, err = s.Storage.JoinGame(s.Ctx, "ABC234", "p3")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestJoinGameUnknownOrCompleted() {
	_, err := s.Storage.JoinGame(s.Ctx, "NOPE23", "p2")
	s.ErrorIs(err, model.ErrGameNotFound)

	s.mustCreate(s.newGame("game-1", "ABC234"))
	s.Require().NoError(s.Storage.SetCompleted(s.Ctx, "game-1", "p1"))

	_, err = s.Storage.JoinGame(s.Ctx, "ABC234", "p2")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestClaimTurn() {
	s.mustCreate(s.newGame("game-1", ""))

	version, err := s.Storage.ClaimTurn(s.Ctx, "game-1", "p1", 0, model.AIPlayerID)
	s.Require().NoError(err)
	s.Equal(int64(1), version)

	game, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(int64(1), game.Version)
	s.Equal(model.AIPlayerID, game.CurrentTurn)
}

func (s *Suite) TestClaimTurnHandsOffTurn() {
	s.mustCreate(s.newGame("game-1", ""))

	_, err := s.Storage.ClaimTurn(s.Ctx, "game-1", "p1", 0, model.NoTurn)
	s.Require().NoError(err)

	// The new version is no use to the same player until the turn comes back
	_, err = s.Storage.ClaimTurn(s.Ctx, "game-1", "p1", 1, model.NoTurn)
	s.ErrorIs(err, model.ErrNotPlayerTurn)

	s.Require().NoError(s.Storage.SetTurn(s.Ctx, "game-1", "p1"))
	version, err := s.Storage.ClaimTurn(s.Ctx, "game-1", "p1", 1, model.NoTurn)
	s.Require().NoError(err)
	s.Equal(int64(2), version)
}

func (s *Suite) TestClaimTurnRejections() {
	s.mustCreate(s.newGame("game-1", ""))

	_, err := s.Storage.ClaimTurn(s.Ctx, "missing", "p1", 0, "p1")
	s.ErrorIs(err, model.ErrGameNotFound)

	_, err = s.Storage.ClaimTurn(s.Ctx, "game-1", model.AIPlayerID, 0, "p1")
	s.ErrorIs(err, model.ErrNotPlayerTurn)

	_, err = s.Storage.ClaimTurn(s.Ctx, "game-1", "p1", 7, "p1")
	s.ErrorIs(err, model.ErrStaleGame)

	s.Require().NoError(s.Storage.SetCompleted(s.Ctx, "game-1", "p1"))
	_, err = s.Storage.ClaimTurn(s.Ctx, "game-1", "p1", 0, "p1")
	s.ErrorIs(err, model.ErrGameComplete)
}

func (s *Suite) TestClaimTurnSameVersionOnlyOnce() {
	s.mustCreate(s.newGame("game-1", ""))

	_, err := s.Storage.ClaimTurn(s.Ctx, "game-1", "p1", 0, "p1")
	s.Require().NoError(err)

	_, err = s.Storage.ClaimTurn(s.Ctx, "game-1", "p1", 0, "p1")
	s.ErrorIs(err, model.ErrStaleGame)
}

func (s *Suite) TestClaimTurnConcurrent() {
	s.mustCreate(s.newGame("game-1", ""))

	const attempts = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Storage.ClaimTurn(s.Ctx, "game-1", "p1", 0, "p1"); err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, winners)
}

func (s *Suite) TestAppendMessagesKeepsTimestampOrder() {
	s.mustCreate(s.newGame("game-1", ""))

	s.Require().NoError(s.Storage.AppendMessage(s.Ctx, "game-1", message("m2", "p1", 2*time.Second)))
	s.Require().NoError(s.Storage.AppendMessage(s.Ctx, "game-1", message("m1", "p1", time.Second)))
	s.Require().NoError(s.Storage.AppendMessage(s.Ctx, "game-1", message("m3", model.AIPlayerID, 3*time.Second)))

	game, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Require().Len(game.Messages, 3)
	s.Equal(model.MessageID("m1"), game.Messages[0].ID)
	s.Equal(model.MessageID("m2"), game.Messages[1].ID)
	s.Equal(model.MessageID("m3"), game.Messages[2].ID)
	s.Nil(game.Messages[0].Response)
	s.True(baseTime.Add(3 * time.Second).Equal(game.UpdatedAt))
}

func (s *Suite) TestAppendMessageUnknownGame() {
	err := s.Storage.AppendMessage(s.Ctx, "missing", message("m1", "p1", 0))
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestPatchMessageResponse() {
	s.mustCreate(s.newGame("game-1", ""))
	s.Require().NoError(s.Storage.AppendMessage(s.Ctx, "game-1", message("m1", "p1", time.Second)))
	s.Require().NoError(s.Storage.AppendMessage(s.Ctx, "game-1", message("m2", "p1", 2*time.Second)))

	s.Require().NoError(s.Storage.PatchMessageResponse(s.Ctx, "game-1", "m1", "yes"))

	game, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Require().NotNil(game.Messages[0].Response)
	s.Equal("yes", *game.Messages[0].Response)
	s.Nil(game.Messages[1].Response)

	err = s.Storage.PatchMessageResponse(s.Ctx, "game-1", "nope", "yes")
	s.ErrorIs(err, model.ErrMessageNotFound)
}

func (s *Suite) TestSetCompletedOnce() {
	s.mustCreate(s.newGame("game-1", ""))

	s.Require().NoError(s.Storage.SetCompleted(s.Ctx, "game-1", "p1"))

	game, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(model.GameStatusCompleted, game.Status)
	s.Equal(model.PlayerID("p1"), game.WinnerID)

	err = s.Storage.SetCompleted(s.Ctx, "game-1", model.AIPlayerID)
	s.ErrorIs(err, model.ErrGameComplete)

	game, err = s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), game.WinnerID)

	err = s.Storage.SetCompleted(s.Ctx, "missing", "p1")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestSetTurn() {
	s.mustCreate(s.newGame("game-1", ""))

	s.Require().NoError(s.Storage.SetTurn(s.Ctx, "game-1", model.AIPlayerID))
	game, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(model.AIPlayerID, game.CurrentTurn)

	s.Require().NoError(s.Storage.SetCompleted(s.Ctx, "game-1", model.AIPlayerID))
	s.ErrorIs(s.Storage.SetTurn(s.Ctx, "game-1", "p1"), model.ErrGameComplete)
}

func (s *Suite) TestIncrementHints() {
	s.mustCreate(s.newGame("game-1", ""))

	n, err := s.Storage.IncrementHints(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(1, n)
	n, err = s.Storage.IncrementHints(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(2, n)

	_, err = s.Storage.IncrementHints(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrGameNotFound)
}

// Word lists

func (s *Suite) TestWordListNotLoaded() {
	_, err := s.Storage.GetWordList(s.Ctx)
	s.ErrorIs(err, model.ErrWordListNotFound)
}

func (s *Suite) TestSaveWordListReplacesInOrder() {
	s.Require().NoError(s.Storage.SaveWordList(s.Ctx, []string{"pizza", "guitar"}))
	s.Require().NoError(s.Storage.SaveWordList(s.Ctx, []string{"volcano", "elephant", "computer"}))

	words, err := s.Storage.GetWordList(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]string{"volcano", "elephant", "computer"}, words)
}

func (s *Suite) TestPinDailyWordFirstWriterWins() {
	word, err := s.Storage.PinDailyWord(s.Ctx, "2024-01-01", "elephant")
	s.Require().NoError(err)
	s.Equal("elephant", word)

	word, err = s.Storage.PinDailyWord(s.Ctx, "2024-01-01", "pizza")
	s.Require().NoError(err)
	s.Equal("elephant", word)

	word, err = s.Storage.PinDailyWord(s.Ctx, "2024-01-02", "pizza")
	s.Require().NoError(err)
	s.Equal("pizza", word)
}
