package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/guessword/internal/model"
	"github.com/mcoot/guessword/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	memory *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.memory = New()
	s.Storage = s.memory
	s.Ctx = context.Background()
}

func (s *StorageSuite) TestSavePlayerCopiesInput() {
	player := &model.Player{ID: "player-1", DisplayName: "Alice"}
	s.Require().NoError(s.memory.SavePlayer(s.Ctx, player))

	player.DisplayName = "Mallory"

	got, err := s.memory.GetPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("Alice", got.DisplayName)
}

func (s *StorageSuite) TestSaveWordListCopiesInput() {
	words := []string{"pizza", "guitar"}
	s.Require().NoError(s.memory.SaveWordList(s.Ctx, words))

	words[0] = "changed"

	got, err := s.memory.GetWordList(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]string{"pizza", "guitar"}, got)
}
