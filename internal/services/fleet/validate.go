// Package fleet validates ship placements and builds fleets one cell at a time.
package fleet

import (
	"fmt"

	"github.com/mcoot/battleship-go/internal/model"
)

// Validate checks a submitted fleet against the placement rules.
// Every ship kind must have exactly its required number of cells, every cell
// must be on the board, and no two cells may be equal. Cells belonging to
// different ships must not touch orthogonally or diagonally.
func Validate(fleet model.Fleet) error {
	for kind := range fleet {
		if !model.IsValidShipKind(kind) {
			return fmt.Errorf("%w: unknown ship kind %q", model.ErrInvalidFleet, kind)
		}
	}

	owner := make(map[model.Cell]model.ShipKind, model.FleetCellCount)
	for _, kind := range model.ShipKinds() {
		cells := fleet[kind]
		if len(cells) != model.ShipLength(kind) {
			return fmt.Errorf("%w: %s must be %d cells long, got %d",
				model.ErrInvalidFleet, kind, model.ShipLength(kind), len(cells))
		}
		for _, cell := range cells {
			if !cell.InBounds() {
				return fmt.Errorf("%w: %s cell (%d,%d) is off the board",
					model.ErrInvalidFleet, kind, cell.X, cell.Y)
			}
			if other, taken := owner[cell]; taken {
				return fmt.Errorf("%w: cell (%d,%d) is used by both %s and %s",
					model.ErrInvalidFleet, cell.X, cell.Y, other, kind)
			}
			owner[cell] = kind
		}
	}

	for cell, kind := range owner {
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				neighbour := model.Cell{X: cell.X + dx, Y: cell.Y + dy}
				other, ok := owner[neighbour]
				if ok && other != kind {
					return fmt.Errorf("%w: %s touches %s at (%d,%d)",
						model.ErrInvalidFleet, kind, other, cell.X, cell.Y)
				}
			}
		}
	}

	return nil
}

// Line returns length cells starting at start, extending along the row when
// horizontal and down the column otherwise.
func Line(start model.Cell, horizontal bool, length int) []model.Cell {
	cells := make([]model.Cell, length)
	for i := range cells {
		if horizontal {
			cells[i] = model.Cell{X: start.X, Y: start.Y + i}
		} else {
			cells[i] = model.Cell{X: start.X + i, Y: start.Y}
		}
	}
	return cells
}
