package fleet

import (
	"fmt"

	"github.com/mcoot/battleship-go/internal/model"
)

type direction int

const (
	directionUnset direction = iota
	directionHorizontal
	directionVertical
)

// Placer builds a fleet one cell at a time, largest ship first.
//
// The first cell of a ship may be any free cell not touching a finished ship.
// The second cell must be orthogonally adjacent to the first and fixes the
// ship's direction. Every further cell must extend that line at either end.
// A ship is finished once it reaches its length, and the next kind begins.
type Placer struct {
	fleet     model.Fleet
	index     int
	direction direction
}

// NewPlacer creates a Placer with an empty fleet
func NewPlacer() *Placer {
	return &Placer{fleet: model.EmptyFleet()}
}

// Current returns the ship kind being placed, or false once all ships are placed
func (p *Placer) Current() (model.ShipKind, bool) {
	kinds := model.ShipKinds()
	if p.index >= len(kinds) {
		return "", false
	}
	return kinds[p.index], true
}

// Done returns true once every ship has been placed
func (p *Placer) Done() bool {
	_, ok := p.Current()
	return !ok
}

// Fleet returns a copy of the cells placed so far
func (p *Placer) Fleet() model.Fleet {
	return p.fleet.Clone()
}

// Reset discards all placed cells
func (p *Placer) Reset() {
	p.fleet = model.EmptyFleet()
	p.index = 0
	p.direction = directionUnset
}

// CanPlace reports whether cell is a legal next cell for the current ship
func (p *Placer) CanPlace(cell model.Cell) bool {
	return p.check(cell) == nil
}

// ValidCells returns every legal next cell in row-major order
func (p *Placer) ValidCells() []model.Cell {
	var cells []model.Cell
	for x := 0; x < model.BoardSize; x++ {
		for y := 0; y < model.BoardSize; y++ {
			cell := model.Cell{X: x, Y: y}
			if p.CanPlace(cell) {
				cells = append(cells, cell)
			}
		}
	}
	return cells
}

// Place adds cell to the current ship
func (p *Placer) Place(cell model.Cell) error {
	if err := p.check(cell); err != nil {
		return err
	}

	kind, _ := p.Current()
	ship := p.fleet[kind]
	if len(ship) == 1 {
		if ship[0].X == cell.X {
			p.direction = directionHorizontal
		} else {
			p.direction = directionVertical
		}
	}
	p.fleet[kind] = append(ship, cell)

	if len(p.fleet[kind]) == model.ShipLength(kind) {
		p.index++
		p.direction = directionUnset
	}
	return nil
}

func (p *Placer) check(cell model.Cell) error {
	kind, ok := p.Current()
	if !ok {
		return fmt.Errorf("%w: all ships already placed", model.ErrInvalidFleet)
	}
	if !cell.InBounds() {
		return fmt.Errorf("%w: cell (%d,%d) is off the board", model.ErrInvalidFleet, cell.X, cell.Y)
	}

	for _, placed := range model.ShipKinds()[:p.index] {
		for _, c := range p.fleet[placed] {
			if c == cell {
				return fmt.Errorf("%w: cell (%d,%d) is taken by %s", model.ErrInvalidFleet, cell.X, cell.Y, placed)
			}
			if c.IsAdjacent(cell) {
				return fmt.Errorf("%w: cell (%d,%d) touches %s", model.ErrInvalidFleet, cell.X, cell.Y, placed)
			}
		}
	}

	ship := p.fleet[kind]
	for _, c := range ship {
		if c == cell {
			return fmt.Errorf("%w: cell (%d,%d) is already part of %s", model.ErrInvalidFleet, cell.X, cell.Y, kind)
		}
	}

	switch len(ship) {
	case 0:
		return nil
	case 1:
		first := ship[0]
		if abs(first.X-cell.X)+abs(first.Y-cell.Y) != 1 {
			return fmt.Errorf("%w: %s cells must be in a straight line", model.ErrInvalidFleet, kind)
		}
		return nil
	}

	lo, hi := bounds(ship, p.direction)
	var extends bool
	if p.direction == directionHorizontal {
		extends = cell.X == ship[0].X && (cell.Y == lo-1 || cell.Y == hi+1)
	} else {
		extends = cell.Y == ship[0].Y && (cell.X == lo-1 || cell.X == hi+1)
	}
	if !extends {
		return fmt.Errorf("%w: %s cells must be in a straight line", model.ErrInvalidFleet, kind)
	}
	return nil
}

// bounds returns the lowest and highest coordinate along the locked direction
func bounds(cells []model.Cell, dir direction) (int, int) {
	coord := func(c model.Cell) int {
		if dir == directionHorizontal {
			return c.Y
		}
		return c.X
	}
	lo, hi := coord(cells[0]), coord(cells[0])
	for _, c := range cells[1:] {
		lo = min(lo, coord(c))
		hi = max(hi, coord(c))
	}
	return lo, hi
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
