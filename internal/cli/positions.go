package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mcoot/battleship-go/internal/dependencies/random"
	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/services/fleet"
)

// ParseShip parses a ship placement of the form kind=x,y,h or kind=x,y,v,
// where x,y is the bow and h runs along the row, v down the column
func ParseShip(arg string) (model.ShipKind, []model.Cell, error) {
	name, placement, ok := strings.Cut(arg, "=")
	if !ok {
		return "", nil, fmt.Errorf("ship %q: expected kind=x,y,h|v", arg)
	}

	kind := model.ShipKind(strings.ToLower(strings.TrimSpace(name)))
	if !model.IsValidShipKind(kind) {
		return "", nil, fmt.Errorf("ship %q: unknown kind %q", arg, name)
	}

	parts := strings.Split(placement, ",")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("ship %q: expected kind=x,y,h|v", arg)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return "", nil, fmt.Errorf("ship %q: invalid x: %w", arg, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", nil, fmt.Errorf("ship %q: invalid y: %w", arg, err)
	}

	var horizontal bool
	switch strings.ToLower(strings.TrimSpace(parts[2])) {
	case "h":
		horizontal = true
	case "v":
		horizontal = false
	default:
		return "", nil, fmt.Errorf("ship %q: direction must be h or v", arg)
	}

	return kind, fleet.Line(model.Cell{X: x, Y: y}, horizontal, model.ShipLength(kind)), nil
}

// ParseFleet builds a fleet from one placement per ship
func ParseFleet(placements []string) (model.Fleet, error) {
	result := model.EmptyFleet()
	for _, placement := range placements {
		kind, cells, err := ParseShip(placement)
		if err != nil {
			return nil, err
		}
		if len(result[kind]) > 0 {
			return nil, fmt.Errorf("ship %q placed twice", kind)
		}
		result[kind] = cells
	}
	return result, nil
}

// LoadFleet reads a fleet from a JSON file mapping ship kind to cells
func LoadFleet(path string) (model.Fleet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f model.Fleet
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fleet file: %w", err)
	}
	return f, nil
}

// chooseFleet resolves the positions flags to a fleet. The fleet is checked
// locally so obvious mistakes are reported without a round trip.
func chooseFleet(randomFleet bool, file string, placements []string) (model.Fleet, error) {
	var (
		f   model.Fleet
		err error
	)
	switch {
	case randomFleet:
		f, err = fleet.Random(random.New())
	case file != "":
		f, err = LoadFleet(file)
	case len(placements) > 0:
		f, err = ParseFleet(placements)
	default:
		return nil, errors.New("give ship placements, --random or --file")
	}
	if err != nil {
		return nil, err
	}
	if err := fleet.Validate(f); err != nil {
		return nil, err
	}
	return f, nil
}
