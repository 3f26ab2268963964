package model

import "time"

// ChangeKind identifies what changed in a game
type ChangeKind string

const (
	ChangeGameUpdated ChangeKind = "game_updated"
	ChangeMoveAdded   ChangeKind = "move_added"
	ChangeGameDeleted ChangeKind = "game_deleted"
)

// ChangeEvent is delivered to subscribers after a committed write
type ChangeEvent struct {
	GameID GameID     `json:"game_id"`
	Kind   ChangeKind `json:"kind"`
	At     time.Time  `json:"at"`
}
