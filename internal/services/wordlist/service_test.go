package wordlist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/guessword/internal/model"
	"github.com/mcoot/guessword/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage)
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestNotLoadedByDefault() {
	s.False(s.service.IsLoaded())
	s.Empty(s.service.Words())
}

func (s *ServiceSuite) TestLoadFallsBackToDefaults() {
	s.Require().NoError(s.service.Load(s.ctx, ""))

	s.Equal(DefaultWords, s.service.Words())

	stored, err := s.storage.GetWordList(s.ctx)
	s.Require().NoError(err)
	s.Equal(DefaultWords, stored)
}

func (s *ServiceSuite) TestLoadPrefersStoredList() {
	s.Require().NoError(s.storage.SaveWordList(s.ctx, []string{"pizza", "guitar"}))

	s.Require().NoError(s.service.Load(s.ctx, ""))
	s.Equal([]string{"pizza", "guitar"}, s.service.Words())
}

func (s *ServiceSuite) TestLoadFromFile() {
	path := filepath.Join(s.T().TempDir(), "words.txt")
	content := "# secret words\nPizza\n\n  guitar  \npizza # again\nvolcano\n"
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))

	s.Require().NoError(s.service.Load(s.ctx, path))
	s.Equal([]string{"pizza", "guitar", "volcano"}, s.service.Words())

	stored, err := s.storage.GetWordList(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"pizza", "guitar", "volcano"}, stored)
}

func (s *ServiceSuite) TestLoadFromMissingFile() {
	err := s.service.Load(s.ctx, filepath.Join(s.T().TempDir(), "missing.txt"))
	s.Error(err)
	s.False(s.service.IsLoaded())
}

func (s *ServiceSuite) TestLoadWordsRejectsEmptyList() {
	err := s.service.LoadWords(s.ctx, []string{" ", ""})
	s.ErrorIs(err, model.ErrWordListNotFound)
}

func (s *ServiceSuite) TestWordsReturnsCopy() {
	s.Require().NoError(s.service.LoadWords(s.ctx, []string{"pizza"}))

	words := s.service.Words()
	words[0] = "changed"

	s.Equal([]string{"pizza"}, s.service.Words())
}
