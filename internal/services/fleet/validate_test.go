package fleet_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/services/fleet"
	"github.com/mcoot/battleship-go/internal/testutil"
)

type ValidateSuite struct {
	suite.Suite
}

func TestValidateSuite(t *testing.T) {
	suite.Run(t, new(ValidateSuite))
}

func (s *ValidateSuite) TestAcceptsStandardFleet() {
	s.NoError(fleet.Validate(testutil.StandardFleet()))
}

func (s *ValidateSuite) TestAcceptsVerticalFleet() {
	f := model.Fleet{
		model.ShipCarrier:    fleet.Line(model.Cell{X: 0, Y: 0}, false, 5),
		model.ShipBattleship: fleet.Line(model.Cell{X: 0, Y: 2}, false, 4),
		model.ShipCruiser:    fleet.Line(model.Cell{X: 0, Y: 4}, false, 3),
		model.ShipSubmarine:  fleet.Line(model.Cell{X: 0, Y: 6}, false, 3),
		model.ShipDestroyer:  fleet.Line(model.Cell{X: 8, Y: 9}, false, 2),
	}
	s.NoError(fleet.Validate(f))
}

func (s *ValidateSuite) TestRejectsEmptyFleet() {
	s.ErrorIs(fleet.Validate(model.EmptyFleet()), model.ErrInvalidFleet)
}

func (s *ValidateSuite) TestRejectsMissingShip() {
	f := testutil.StandardFleet()
	delete(f, model.ShipDestroyer)

	err := fleet.Validate(f)
	s.ErrorIs(err, model.ErrInvalidFleet)
	s.Contains(err.Error(), "destroyer")
}

func (s *ValidateSuite) TestRejectsWrongLength() {
	f := testutil.StandardFleet()
	f[model.ShipCarrier] = f[model.ShipCarrier][:4]

	err := fleet.Validate(f)
	s.ErrorIs(err, model.ErrInvalidFleet)
	s.Contains(err.Error(), "carrier must be 5 cells long")
}

func (s *ValidateSuite) TestRejectsUnknownKind() {
	f := testutil.StandardFleet()
	f["dinghy"] = []model.Cell{{X: 9, Y: 9}}

	s.ErrorIs(fleet.Validate(f), model.ErrInvalidFleet)
}

func (s *ValidateSuite) TestRejectsOutOfBounds() {
	f := testutil.StandardFleet()
	f[model.ShipDestroyer] = []model.Cell{{X: 8, Y: 9}, {X: 8, Y: 10}}

	err := fleet.Validate(f)
	s.ErrorIs(err, model.ErrInvalidFleet)
	s.Contains(err.Error(), "off the board")
}

func (s *ValidateSuite) TestRejectsNegativeCoordinates() {
	f := testutil.StandardFleet()
	f[model.ShipDestroyer] = []model.Cell{{X: -1, Y: 9}, {X: 0, Y: 9}}

	s.ErrorIs(fleet.Validate(f), model.ErrInvalidFleet)
}

func (s *ValidateSuite) TestRejectsOverlapAcrossShips() {
	f := testutil.StandardFleet()
	f[model.ShipDestroyer] = []model.Cell{{X: 0, Y: 0}, {X: 1, Y: 0}}

	s.ErrorIs(fleet.Validate(f), model.ErrInvalidFleet)
}

func (s *ValidateSuite) TestRejectsRepeatedCellWithinShip() {
	f := testutil.StandardFleet()
	f[model.ShipDestroyer] = []model.Cell{{X: 8, Y: 0}, {X: 8, Y: 0}}

	s.ErrorIs(fleet.Validate(f), model.ErrInvalidFleet)
}

func (s *ValidateSuite) TestRejectsOrthogonalAdjacency() {
	f := testutil.StandardFleet()
	// Row 1 touches the carrier on row 0
	f[model.ShipDestroyer] = []model.Cell{{X: 1, Y: 8}, {X: 1, Y: 9}}
	f[model.ShipCarrier] = fleet.Line(model.Cell{X: 0, Y: 5}, true, 5)

	err := fleet.Validate(f)
	s.ErrorIs(err, model.ErrInvalidFleet)
	s.Contains(err.Error(), "touches")
}

func (s *ValidateSuite) TestRejectsDiagonalAdjacency() {
	f := testutil.StandardFleet()
	// (9,2) is diagonal to the destroyer's (8,1)
	f[model.ShipDestroyer] = []model.Cell{{X: 8, Y: 0}, {X: 8, Y: 1}}
	f[model.ShipSubmarine] = fleet.Line(model.Cell{X: 9, Y: 2}, true, 3)

	s.ErrorIs(fleet.Validate(f), model.ErrInvalidFleet)
}

func (s *ValidateSuite) TestLine() {
	s.Equal([]model.Cell{{X: 3, Y: 4}, {X: 3, Y: 5}, {X: 3, Y: 6}}, fleet.Line(model.Cell{X: 3, Y: 4}, true, 3))
	s.Equal([]model.Cell{{X: 3, Y: 4}, {X: 4, Y: 4}}, fleet.Line(model.Cell{X: 3, Y: 4}, false, 2))
}
