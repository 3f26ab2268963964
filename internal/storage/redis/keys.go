package redis

import (
	"fmt"

	"github.com/mcoot/battleship-go/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "bsgame"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// inviteKey returns the Redis key for an Invite
func inviteKey(id model.InviteID) string {
	return fmt.Sprintf("%s:invite:%s", keyPrefix, id)
}

// invitesForGameIndexKey returns the Redis key for the SET of invite ids for a game
func invitesForGameIndexKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:idx:invites_for_game:%s", keyPrefix, gameID)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gamesIndexKey returns the Redis key for the SET of all game ids
func gamesIndexKey() string {
	return fmt.Sprintf("%s:idx:games", keyPrefix)
}

// movesKey returns the Redis key for the LIST of moves in a game
func movesKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:moves:%s", keyPrefix, gameID)
}

// changesChannel returns the Pub/Sub channel carrying change events for a game
func changesChannel(gameID model.GameID) string {
	return fmt.Sprintf("%s:changes:%s", keyPrefix, gameID)
}
