// Package view derives what each player is allowed to see of a game.
package view

import (
	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/services/resolver"
)

// Shot is a fired cell and its outcome
type Shot struct {
	Cell model.Cell
	Hit  bool
}

// Projection is one player's view of a game. It never contains the
// opponent's fleet; opponent ships are only ever named once sunk.
type Projection struct {
	GameID   model.GameID
	Status   model.GameStatus
	PlayerID model.PlayerID

	OpponentID   model.PlayerID
	OpponentName string

	PlayerIDTurn   model.PlayerID
	IsMyTurn       bool
	PlayerIDWinner model.PlayerID
	WinnerMessage  string

	PositionsAreSet         bool
	OpponentPositionsAreSet bool
	Positions               model.Fleet // The viewer's own fleet

	Moves         []Shot // Viewer's shots at the opponent
	OpponentMoves []Shot // Opponent's shots at the viewer

	ShipsSunk         []model.ShipKind // Viewer's ships sunk by the opponent
	OpponentShipsSunk []model.ShipKind // Opponent's ships sunk by the viewer
}

// Project recomputes the viewer's projection from the game record and its
// full move history. Nothing is carried over between calls.
func Project(game *model.Game, moves []model.Move, viewerID model.PlayerID, opponentName string) (*Projection, error) {
	if !game.HasPlayer(viewerID) {
		return nil, model.ErrUnauthorized
	}
	opponentID := game.OpponentOf(viewerID)

	mine := model.MovesBy(moves, viewerID)
	theirs := model.MovesBy(moves, opponentID)

	p := &Projection{
		GameID:                  game.ID,
		Status:                  game.Status,
		PlayerID:                viewerID,
		OpponentID:              opponentID,
		OpponentName:            opponentName,
		PlayerIDTurn:            game.PlayerIDTurn,
		IsMyTurn:                game.Status == model.GameStatusInProgress && game.PlayerIDTurn == viewerID,
		PlayerIDWinner:          game.PlayerIDWinner,
		WinnerMessage:           game.WinnerMessage,
		PositionsAreSet:         game.PositionsSetFor(viewerID),
		OpponentPositionsAreSet: game.PositionsSetFor(opponentID),
		Positions:               game.PositionsOf(viewerID).Clone(),
		Moves:                   shots(mine),
		OpponentMoves:           shots(theirs),
		ShipsSunk:               []model.ShipKind{},
		OpponentShipsSunk:       []model.ShipKind{},
	}
	if p.Positions == nil {
		p.Positions = model.EmptyFleet()
	}

	if p.PositionsAreSet {
		p.ShipsSunk = resolver.SunkShips(game.PositionsOf(viewerID), theirs)
	}
	if p.OpponentPositionsAreSet {
		p.OpponentShipsSunk = resolver.SunkShips(game.PositionsOf(opponentID), mine)
	}
	return p, nil
}

func shots(moves []model.Move) []Shot {
	result := make([]Shot, len(moves))
	for i, m := range moves {
		result[i] = Shot{Cell: m.Cell, Hit: m.Hit}
	}
	return result
}
