package game

import (
	"sync"

	"github.com/mcoot/guessword/internal/model"
)

// gameLocks serialises actions on the same game within this process.
// Across processes, ClaimTurn moving the turn off the actor is what keeps
// a second submission out while a move is applied.
type gameLocks struct {
	mu    sync.Mutex
	locks map[model.GameID]*gameLock
}

type gameLock struct {
	mu   sync.Mutex
	refs int
}

func newGameLocks() *gameLocks {
	return &gameLocks{locks: make(map[model.GameID]*gameLock)}
}

// lock blocks until id is free and returns the matching unlock
func (l *gameLocks) lock(id model.GameID) func() {
	l.mu.Lock()
	gl, ok := l.locks[id]
	if !ok {
		gl = &gameLock{}
		l.locks[id] = gl
	}
	gl.refs++
	l.mu.Unlock()

	gl.mu.Lock()
	return func() {
		gl.mu.Unlock()
		l.mu.Lock()
		gl.refs--
		if gl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
