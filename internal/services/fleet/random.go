package fleet

import (
	"errors"

	"github.com/mcoot/battleship-go/internal/dependencies/random"
	"github.com/mcoot/battleship-go/internal/model"
)

// maxRandomAttempts bounds how many times Random restarts after boxing itself in
const maxRandomAttempts = 100

// ErrNoPlacement is returned when Random cannot find a legal layout
var ErrNoPlacement = errors.New("could not find a legal fleet layout")

// Random builds a legal fleet by placing each ship along a randomly chosen
// line that fits. Every fleet it returns passes Validate.
func Random(rnd random.Random) (model.Fleet, error) {
	placer := NewPlacer()
	for range maxRandomAttempts {
		if placeAll(placer, rnd) {
			return placer.Fleet(), nil
		}
		placer.Reset()
	}
	return nil, ErrNoPlacement
}

func placeAll(placer *Placer, rnd random.Random) bool {
	for !placer.Done() {
		kind, _ := placer.Current()
		candidates := candidateLines(placer, model.ShipLength(kind))
		if len(candidates) == 0 {
			return false
		}
		for _, cell := range candidates[rnd.Intn(len(candidates))] {
			if err := placer.Place(cell); err != nil {
				return false
			}
		}
	}
	return true
}

// candidateLines lists every straight line of the given length whose cells
// could all be accepted by the placer, in row-major order
func candidateLines(placer *Placer, length int) [][]model.Cell {
	var lines [][]model.Cell
	for x := 0; x < model.BoardSize; x++ {
		for y := 0; y < model.BoardSize; y++ {
			for _, horizontal := range []bool{true, false} {
				line := Line(model.Cell{X: x, Y: y}, horizontal, length)
				if fits(placer, line) {
					lines = append(lines, line)
				}
			}
		}
	}
	return lines
}

func fits(placer *Placer, line []model.Cell) bool {
	for _, cell := range line {
		if !placer.CanPlace(cell) {
			return false
		}
	}
	return true
}
