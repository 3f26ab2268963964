// Package resolver decides the outcome of shots and detects finished games.
// All functions are pure and safe to call from any goroutine.
package resolver

import "github.com/mcoot/battleship-go/internal/model"

// Outcome is the result of a single shot
type Outcome struct {
	Hit          bool
	ShipJustSunk model.ShipKind // Empty unless this shot completed a ship
	FleetSunk    bool
}

// Resolve computes the outcome of the attacker firing at cell, given the
// defender's fleet and the attacker's earlier shots in this game.
func Resolve(defender model.Fleet, attackerShots []model.Move, cell model.Cell) Outcome {
	kind, hit := defender.ShipAt(cell)
	if !hit {
		return Outcome{}
	}

	hits := hitSet(attackerShots)
	hits[cell] = true

	outcome := Outcome{Hit: true}
	if covered(defender[kind], hits) {
		outcome.ShipJustSunk = kind
	}
	outcome.FleetSunk = coversFleet(defender, hits)
	return outcome
}

// SunkShips replays hit shots against a fleet and returns every fully covered
// ship in placement order
func SunkShips(fleet model.Fleet, shots []model.Move) []model.ShipKind {
	hits := hitSet(shots)
	sunk := []model.ShipKind{}
	for _, kind := range model.ShipKinds() {
		cells := fleet[kind]
		if len(cells) > 0 && covered(cells, hits) {
			sunk = append(sunk, kind)
		}
	}
	return sunk
}

// CheckWinner returns the winner of a game if there is one.
//
// A finished game reports its recorded winner. An in-progress game has a
// winner when one player's hit shots cover every cell of the opponent's
// complete fleet. Games in any other state never have a winner.
func CheckWinner(game *model.Game, moves []model.Move) (model.PlayerID, bool) {
	switch game.Status {
	case model.GameStatusFinished:
		return game.PlayerIDWinner, game.PlayerIDWinner != ""
	case model.GameStatusInProgress:
	default:
		return "", false
	}

	for _, attacker := range []model.PlayerID{game.Player1ID, game.Player2ID} {
		defender := game.PositionsOf(game.OpponentOf(attacker))
		if !defender.IsComplete() {
			continue
		}
		if coversFleet(defender, hitSet(model.MovesBy(moves, attacker))) {
			return attacker, true
		}
	}
	return "", false
}

func hitSet(shots []model.Move) map[model.Cell]bool {
	hits := make(map[model.Cell]bool, len(shots))
	for _, m := range shots {
		if m.Hit {
			hits[m.Cell] = true
		}
	}
	return hits
}

func covered(cells []model.Cell, hits map[model.Cell]bool) bool {
	for _, c := range cells {
		if !hits[c] {
			return false
		}
	}
	return true
}

func coversFleet(fleet model.Fleet, hits map[model.Cell]bool) bool {
	if !fleet.IsComplete() {
		return false
	}
	return covered(fleet.Cells(), hits)
}
