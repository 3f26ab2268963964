package model

import "time"

// MoveID uniquely identifies a shot
type MoveID string

// Move is a single shot fired by a player. Moves are append-only.
type Move struct {
	ID        MoveID
	GameID    GameID
	PlayerID  PlayerID
	Cell      Cell
	Hit       bool
	Seq       int // 1-based write order within the game
	CreatedAt time.Time
}

// MovesBy returns the moves fired by the given player, preserving order
func MovesBy(moves []Move, playerID PlayerID) []Move {
	var result []Move
	for _, m := range moves {
		if m.PlayerID == playerID {
			result = append(result, m)
		}
	}
	return result
}

// HasShot returns true if the player already fired at the cell
func HasShot(moves []Move, playerID PlayerID, cell Cell) bool {
	for _, m := range moves {
		if m.PlayerID == playerID && m.Cell == cell {
			return true
		}
	}
	return false
}
