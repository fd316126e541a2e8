package redis

import (
	"fmt"

	"github.com/mcoot/guessword/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "guessword"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// registeredPlayerKey returns the Redis key for a RegisteredPlayer
func registeredPlayerKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:registered_player:%s", keyPrefix, playerID)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// gameKey returns the Redis key for a Game's scalar fields
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// messagesKey returns the Redis key for the LIST of a game's messages
func messagesKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s:messages", keyPrefix, id)
}

// codeIndexKey returns the Redis key for the join code -> game_id index
func codeIndexKey(code model.GameCode) string {
	return fmt.Sprintf("%s:idx:code:%s", keyPrefix, code)
}

// wordListKey returns the Redis key for the ordered secret word LIST
func wordListKey() string {
	return fmt.Sprintf("%s:wordlist", keyPrefix)
}

// dailyWordKey returns the Redis key for the word pinned to a date
func dailyWordKey(date string) string {
	return fmt.Sprintf("%s:daily:%s", keyPrefix, date)
}
