package model

// BoardSize is the dimension of the square battleship grid
const BoardSize = 10

// Cell identifies a square on the grid
type Cell struct {
	X int `json:"x"` // row, 0-indexed from top
	Y int `json:"y"` // column, 0-indexed from left
}

// InBounds returns true if the cell lies on the board
func (c Cell) InBounds() bool {
	return c.X >= 0 && c.X < BoardSize && c.Y >= 0 && c.Y < BoardSize
}

// IsAdjacent returns true if the two cells touch orthogonally or diagonally.
// A cell is not adjacent to itself.
func (c Cell) IsAdjacent(other Cell) bool {
	if c == other {
		return false
	}
	return abs(c.X-other.X) <= 1 && abs(c.Y-other.Y) <= 1
}

// Neighbours returns the in-bounds orthogonal neighbours of the cell
func (c Cell) Neighbours() []Cell {
	candidates := []Cell{
		{X: c.X - 1, Y: c.Y},
		{X: c.X + 1, Y: c.Y},
		{X: c.X, Y: c.Y - 1},
		{X: c.X, Y: c.Y + 1},
	}
	result := make([]Cell, 0, len(candidates))
	for _, n := range candidates {
		if n.InBounds() {
			result = append(result, n)
		}
	}
	return result
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// ShipKind names one of the five ships of a fleet
type ShipKind string

const (
	ShipCarrier    ShipKind = "carrier"
	ShipBattleship ShipKind = "battleship"
	ShipCruiser    ShipKind = "cruiser"
	ShipSubmarine  ShipKind = "submarine"
	ShipDestroyer  ShipKind = "destroyer"
)

// FleetCellCount is the number of cells covered by a complete fleet
const FleetCellCount = 17

var shipLengths = map[ShipKind]int{
	ShipCarrier:    5,
	ShipBattleship: 4,
	ShipCruiser:    3,
	ShipSubmarine:  3,
	ShipDestroyer:  2,
}

// ShipKinds returns all ship kinds in placement order, largest first
func ShipKinds() []ShipKind {
	return []ShipKind{ShipCarrier, ShipBattleship, ShipCruiser, ShipSubmarine, ShipDestroyer}
}

// ShipLength returns the required number of cells for a ship kind,
// or 0 for an unknown kind
func ShipLength(kind ShipKind) int {
	return shipLengths[kind]
}

// IsValidShipKind returns true for the five known ship kinds
func IsValidShipKind(kind ShipKind) bool {
	_, ok := shipLengths[kind]
	return ok
}

// Fleet maps each ship kind to the cells it occupies
type Fleet map[ShipKind][]Cell

// EmptyFleet returns a fleet with every ship kind present and no cells
func EmptyFleet() Fleet {
	fleet := make(Fleet, len(shipLengths))
	for _, kind := range ShipKinds() {
		fleet[kind] = []Cell{}
	}
	return fleet
}

// Clone returns a deep copy of the fleet
func (f Fleet) Clone() Fleet {
	if f == nil {
		return nil
	}
	result := make(Fleet, len(f))
	for kind, cells := range f {
		copied := make([]Cell, len(cells))
		copy(copied, cells)
		result[kind] = copied
	}
	return result
}

// Cells returns every occupied cell, in ship placement order
func (f Fleet) Cells() []Cell {
	var cells []Cell
	for _, kind := range ShipKinds() {
		cells = append(cells, f[kind]...)
	}
	return cells
}

// ShipAt returns the ship occupying the given cell
func (f Fleet) ShipAt(cell Cell) (ShipKind, bool) {
	for _, kind := range ShipKinds() {
		for _, c := range f[kind] {
			if c == cell {
				return kind, true
			}
		}
	}
	return "", false
}

// IsComplete returns true if every ship kind has exactly its required cell count
func (f Fleet) IsComplete() bool {
	for _, kind := range ShipKinds() {
		if len(f[kind]) != ShipLength(kind) {
			return false
		}
	}
	return true
}
