package wordlist

import (
	"bufio"
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/mcoot/guessword/internal/model"
	"github.com/mcoot/guessword/internal/storage"
)

// DefaultWords is the built-in secret word list, used when no file is configured
var DefaultWords = []string{
	"elephant", "computer", "guitar", "rainbow", "pizza",
	"astronaut", "mountain", "butterfly", "telephone", "umbrella",
	"chocolate", "dinosaur", "symphony", "volcano", "penguin",
	"telescope", "hurricane", "champagne", "submarine", "kangaroo",
}

// Service owns the ordered list of secret words
type Service struct {
	storage storage.Storage

	mu    sync.RWMutex
	words []string
}

// New creates a new word list Service
func New(storage storage.Storage) *Service {
	return &Service{storage: storage}
}

// Load populates the list from path if set, else from storage, else from
// DefaultWords. Whatever is loaded is written back to storage.
func (s *Service) Load(ctx context.Context, path string) error {
	if path != "" {
		return s.LoadFromFile(ctx, path)
	}
	err := s.LoadFromStorage(ctx)
	if errors.Is(err, model.ErrWordListNotFound) {
		return s.LoadWords(ctx, DefaultWords)
	}
	return err
}

// LoadFromStorage loads the list previously saved by another replica or run
func (s *Service) LoadFromStorage(ctx context.Context) error {
	words, err := s.storage.GetWordList(ctx)
	if err != nil {
		return err
	}
	s.set(Normalize(words))
	return nil
}

// LoadFromFile loads words from a file (one word per line, # starts a comment)
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	return s.LoadWords(ctx, words)
}

// LoadWords normalises words, saves them to storage and makes them current
func (s *Service) LoadWords(ctx context.Context, words []string) error {
	words = Normalize(words)
	if len(words) == 0 {
		return model.ErrWordListNotFound
	}
	if err := s.storage.SaveWordList(ctx, words); err != nil {
		return err
	}
	s.set(words)
	return nil
}

func (s *Service) set(words []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.words = words
}

// Words returns a copy of the current list
func (s *Service) Words() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]string, len(s.words))
	copy(result, s.words)
	return result
}

// IsLoaded returns whether a non-empty list is loaded
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words) > 0
}

// Normalize lowercases and trims words, dropping blanks and later duplicates
func Normalize(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	result := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		result = append(result, w)
	}
	return result
}
