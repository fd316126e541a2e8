package factory

import (
	"context"
	"time"

	"github.com/mcoot/guessword/internal/dependencies/mocks"
	"github.com/mcoot/guessword/internal/services/auth"
	"github.com/mcoot/guessword/internal/services/daily"
	"github.com/mcoot/guessword/internal/services/oracle"
	"github.com/mcoot/guessword/internal/storage/memory"
	"github.com/mcoot/guessword/internal/testutil"
)

// TestWords is the word list loaded by LoadTestWords. On the mock clock's
// start date the secret word is "guitar".
var TestWords = []string{"guitar", "pizza", "volcano"}

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
// and the deterministic pattern oracles
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	loc, err := daily.LoadLocation(daily.DefaultZone)
	if err != nil {
		panic(err)
	}

	app := newWithDependencies(store, mockClock, mockRandom, loc, oracle.NewPatternSet(),
		auth.Config{Secret: "test-secret", SessionDuration: auth.DefaultConfig().SessionDuration},
		testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// LoadTestWords loads TestWords as the secret word list
func (t *TestApp) LoadTestWords() error {
	return t.WordList.LoadWords(context.Background(), TestWords)
}
