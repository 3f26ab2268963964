package model

import "time"

// GameID uniquely identifies a game
type GameID string

// GameStatus represents the lifecycle phase of a game
type GameStatus string

const (
	GameStatusPending          GameStatus = "pending"           // Created, waiting for the invite to be accepted
	GameStatusPendingPositions GameStatus = "pending_positions" // Both players known, fleets not yet submitted
	GameStatusInProgress       GameStatus = "in_progress"       // Both fleets set, shots being fired
	GameStatusFinished         GameStatus = "finished"          // A fleet has been sunk
)

var statusRank = map[GameStatus]int{
	GameStatusPending:          0,
	GameStatusPendingPositions: 1,
	GameStatusInProgress:       2,
	GameStatusFinished:         3,
}

// CanAdvanceTo returns true if moving from s to next is a forward transition
func (s GameStatus) CanAdvanceTo(next GameStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// Game is the aggregate root for a single battleship match
type Game struct {
	ID        GameID
	Player1ID PlayerID
	Player2ID PlayerID

	PlayerIDTurn PlayerID
	Status       GameStatus

	Player1Positions    Fleet
	Player2Positions    Fleet
	Player1PositionsSet bool
	Player2PositionsSet bool

	PlayerIDWinner PlayerID // Empty until finished
	WinnerMessage  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPlayer returns true if the player is one of the two participants
func (g *Game) HasPlayer(playerID PlayerID) bool {
	return playerID != "" && (playerID == g.Player1ID || playerID == g.Player2ID)
}

// OpponentOf returns the other participant, or empty if playerID is not in the game
func (g *Game) OpponentOf(playerID PlayerID) PlayerID {
	switch playerID {
	case g.Player1ID:
		return g.Player2ID
	case g.Player2ID:
		return g.Player1ID
	default:
		return ""
	}
}

// PositionsOf returns the fleet belonging to a participant
func (g *Game) PositionsOf(playerID PlayerID) Fleet {
	switch playerID {
	case g.Player1ID:
		return g.Player1Positions
	case g.Player2ID:
		return g.Player2Positions
	default:
		return nil
	}
}

// PositionsSetFor returns whether a participant has submitted their fleet
func (g *Game) PositionsSetFor(playerID PlayerID) bool {
	switch playerID {
	case g.Player1ID:
		return g.Player1PositionsSet
	case g.Player2ID:
		return g.Player2PositionsSet
	default:
		return false
	}
}

// SetPositions records a participant's fleet and marks it as set
func (g *Game) SetPositions(playerID PlayerID, fleet Fleet) {
	switch playerID {
	case g.Player1ID:
		g.Player1Positions = fleet.Clone()
		g.Player1PositionsSet = true
	case g.Player2ID:
		g.Player2Positions = fleet.Clone()
		g.Player2PositionsSet = true
	}
}

// BothPositionsSet returns true once both fleets are submitted
func (g *Game) BothPositionsSet() bool {
	return g.Player1PositionsSet && g.Player2PositionsSet
}

// Clone returns a deep copy of the game
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	clone := *g
	clone.Player1Positions = g.Player1Positions.Clone()
	clone.Player2Positions = g.Player2Positions.Clone()
	return &clone
}
