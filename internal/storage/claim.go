package storage

import "github.com/mcoot/guessword/internal/model"

// CheckClaim applies the ClaimTurn preconditions to a loaded game, in the
// order callers see them: completed, wrong player, then stale version.
// Backends call it while holding whatever lock or transaction makes the
// subsequent version bump atomic.
func CheckClaim(game *model.Game, playerID model.PlayerID, version int64) error {
	if !game.IsActive() {
		return model.ErrGameComplete
	}
	if game.CurrentTurn != playerID {
		return model.ErrNotPlayerTurn
	}
	if game.Version != version {
		return model.ErrStaleGame
	}
	return nil
}
