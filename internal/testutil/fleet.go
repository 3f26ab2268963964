package testutil

import "github.com/mcoot/battleship-go/internal/model"

// StandardFleet returns a legal fleet with every ship laid horizontally
// from column 0 on rows 0, 2, 4, 6 and 8.
func StandardFleet() model.Fleet {
	return model.Fleet{
		model.ShipCarrier:    row(0, 5),
		model.ShipBattleship: row(2, 4),
		model.ShipCruiser:    row(4, 3),
		model.ShipSubmarine:  row(6, 3),
		model.ShipDestroyer:  row(8, 2),
	}
}

// MissCell is a cell StandardFleet never occupies
var MissCell = model.Cell{X: 9, Y: 9}

func row(x, length int) []model.Cell {
	cells := make([]model.Cell, length)
	for i := range cells {
		cells[i] = model.Cell{X: x, Y: i}
	}
	return cells
}
