package bot

import (
	"github.com/mcoot/battleship-go/internal/dependencies/random"
	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/services/fleet"
	"github.com/mcoot/battleship-go/internal/services/view"
)

// Strategy names
const (
	StrategyRandom = "random"
	StrategyHunt   = "hunt"
)

// Strategy defines how a bot lays out its fleet and picks its shots.
// Strategies only ever see the bot's own projection.
type Strategy interface {
	// ChooseFleet returns the fleet the bot submits
	ChooseFleet() (model.Fleet, error)
	// ChooseShot selects an unshot cell to fire at
	ChooseShot(p *view.Projection) model.Cell
}

// RandomStrategy places a random legal fleet and fires at random unshot cells
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

func (s *RandomStrategy) ChooseFleet() (model.Fleet, error) {
	return fleet.Random(s.random)
}

// ChooseShot picks a random unshot cell on the board
func (s *RandomStrategy) ChooseShot(p *view.Projection) model.Cell {
	shot := shotSet(p)
	var open []model.Cell
	for x := 0; x < model.BoardSize; x++ {
		for y := 0; y < model.BoardSize; y++ {
			c := model.Cell{X: x, Y: y}
			if !shot[c] {
				open = append(open, c)
			}
		}
	}
	if len(open) == 0 {
		return model.Cell{}
	}
	return open[s.random.Intn(len(open))]
}

// HuntStrategy fires randomly until it hits, then works the orthogonal
// neighbours of its hits before going back to random shots
type HuntStrategy struct {
	random   random.Random
	fallback *RandomStrategy
}

// NewHuntStrategy creates a new HuntStrategy
func NewHuntStrategy(rnd random.Random) *HuntStrategy {
	return &HuntStrategy{random: rnd, fallback: NewRandomStrategy(rnd)}
}

func (s *HuntStrategy) ChooseFleet() (model.Fleet, error) {
	return fleet.Random(s.random)
}

func (s *HuntStrategy) ChooseShot(p *view.Projection) model.Cell {
	targets := huntTargets(p)
	if len(targets) == 0 {
		return s.fallback.ChooseShot(p)
	}
	return targets[s.random.Intn(len(targets))]
}

// huntTargets lists unshot orthogonal neighbours of hits, newest hit first
func huntTargets(p *view.Projection) []model.Cell {
	shot := shotSet(p)
	seen := make(map[model.Cell]bool)
	var targets []model.Cell
	for i := len(p.Moves) - 1; i >= 0; i-- {
		if !p.Moves[i].Hit {
			continue
		}
		for _, n := range p.Moves[i].Cell.Neighbours() {
			if shot[n] || seen[n] {
				continue
			}
			seen[n] = true
			targets = append(targets, n)
		}
		if len(targets) > 0 {
			return targets
		}
	}
	return targets
}

func shotSet(p *view.Projection) map[model.Cell]bool {
	shot := make(map[model.Cell]bool, len(p.Moves))
	for _, m := range p.Moves {
		shot[m.Cell] = true
	}
	return shot
}

// DefaultStrategies returns every built-in strategy keyed by name
func DefaultStrategies(rnd random.Random) map[string]Strategy {
	return map[string]Strategy{
		StrategyRandom: NewRandomStrategy(rnd),
		StrategyHunt:   NewHuntStrategy(rnd),
	}
}
