package view_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/services/fleet"
	"github.com/mcoot/battleship-go/internal/services/view"
	"github.com/mcoot/battleship-go/internal/testutil"
)

type ProjectionSuite struct {
	suite.Suite
	game        *model.Game
	secretFleet model.Fleet
}

func TestProjectionSuite(t *testing.T) {
	suite.Run(t, new(ProjectionSuite))
}

func (s *ProjectionSuite) SetupTest() {
	s.secretFleet = model.Fleet{
		model.ShipCarrier:    fleet.Line(model.Cell{X: 0, Y: 9}, false, 5),
		model.ShipBattleship: fleet.Line(model.Cell{X: 0, Y: 7}, false, 4),
		model.ShipCruiser:    fleet.Line(model.Cell{X: 0, Y: 5}, false, 3),
		model.ShipSubmarine:  fleet.Line(model.Cell{X: 6, Y: 5}, false, 3),
		model.ShipDestroyer:  fleet.Line(model.Cell{X: 7, Y: 9}, false, 2),
	}
	s.Require().NoError(fleet.Validate(s.secretFleet))

	s.game = &model.Game{
		ID:                  "g1",
		Player1ID:           "p1",
		Player2ID:           "p2",
		PlayerIDTurn:        "p1",
		Status:              model.GameStatusInProgress,
		Player1Positions:    testutil.StandardFleet(),
		Player2Positions:    s.secretFleet,
		Player1PositionsSet: true,
		Player2PositionsSet: true,
	}
}

func (s *ProjectionSuite) TestOwnFleetAndFlags() {
	p, err := view.Project(s.game, nil, "p1", "Bob")
	s.Require().NoError(err)

	s.Equal(testutil.StandardFleet(), p.Positions)
	s.True(p.PositionsAreSet)
	s.True(p.OpponentPositionsAreSet)
	s.Equal(model.PlayerID("p2"), p.OpponentID)
	s.Equal("Bob", p.OpponentName)
	s.True(p.IsMyTurn)
	s.Empty(p.Moves)
	s.Empty(p.ShipsSunk)
	s.Empty(p.OpponentShipsSunk)
}

func (s *ProjectionSuite) TestSplitsShotsByShooter() {
	moves := []model.Move{
		{PlayerID: "p1", Cell: model.Cell{X: 0, Y: 9}, Hit: true, Seq: 1},
		{PlayerID: "p1", Cell: model.Cell{X: 9, Y: 0}, Hit: false, Seq: 2},
		{PlayerID: "p2", Cell: model.Cell{X: 0, Y: 0}, Hit: true, Seq: 3},
	}

	p, err := view.Project(s.game, moves, "p1", "Bob")
	s.Require().NoError(err)
	s.Equal([]view.Shot{{Cell: model.Cell{X: 0, Y: 9}, Hit: true}, {Cell: model.Cell{X: 9, Y: 0}}}, p.Moves)
	s.Equal([]view.Shot{{Cell: model.Cell{X: 0, Y: 0}, Hit: true}}, p.OpponentMoves)

	other, err := view.Project(s.game, moves, "p2", "Alice")
	s.Require().NoError(err)
	s.Equal(p.Moves, other.OpponentMoves)
	s.False(other.IsMyTurn)
}

func (s *ProjectionSuite) TestSunkShipsBothWays() {
	var moves []model.Move
	for _, c := range s.secretFleet[model.ShipDestroyer] {
		moves = append(moves, model.Move{PlayerID: "p1", Cell: c, Hit: true})
	}
	for _, c := range testutil.StandardFleet()[model.ShipCruiser] {
		moves = append(moves, model.Move{PlayerID: "p2", Cell: c, Hit: true})
	}

	p, err := view.Project(s.game, moves, "p1", "Bob")
	s.Require().NoError(err)
	s.Equal([]model.ShipKind{model.ShipCruiser}, p.ShipsSunk)
	s.Equal([]model.ShipKind{model.ShipDestroyer}, p.OpponentShipsSunk)
}

func (s *ProjectionSuite) TestNeverExposesOpponentFleet() {
	moves := []model.Move{{PlayerID: "p1", Cell: s.secretFleet[model.ShipCarrier][0], Hit: true}}
	p, err := view.Project(s.game, moves, "p1", "Bob")
	s.Require().NoError(err)

	data, err := json.Marshal(p)
	s.Require().NoError(err)
	var decoded map[string]any
	s.Require().NoError(json.Unmarshal(data, &decoded))

	// Only the one hit cell of the carrier may appear anywhere in the projection
	hidden := s.secretFleet.Cells()[1:]
	for _, c := range hidden {
		for _, own := range testutil.StandardFleet().Cells() {
			s.Require().NotEqual(own, c, "fixture fleets must not overlap")
		}
		for _, shot := range append(p.Moves, p.OpponentMoves...) {
			s.NotEqual(c, shot.Cell)
		}
	}
	s.Equal(testutil.StandardFleet(), p.Positions)
}

func (s *ProjectionSuite) TestPositionsNotSetYet() {
	s.game.Status = model.GameStatusPendingPositions
	s.game.Player2PositionsSet = false
	s.game.Player2Positions = model.EmptyFleet()

	p, err := view.Project(s.game, nil, "p2", "Alice")
	s.Require().NoError(err)
	s.False(p.PositionsAreSet)
	s.True(p.OpponentPositionsAreSet)
	s.Equal(model.EmptyFleet(), p.Positions)
	s.False(p.IsMyTurn)
	s.Empty(p.ShipsSunk)
}

func (s *ProjectionSuite) TestFinishedGameCarriesWinner() {
	s.game.Status = model.GameStatusFinished
	s.game.PlayerIDWinner = "p2"
	s.game.WinnerMessage = "gg"

	p, err := view.Project(s.game, nil, "p1", "Bob")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p2"), p.PlayerIDWinner)
	s.Equal("gg", p.WinnerMessage)
	s.False(p.IsMyTurn)
}

func (s *ProjectionSuite) TestOutsiderIsUnauthorized() {
	_, err := view.Project(s.game, nil, "p3", "")
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *ProjectionSuite) TestProjectionOwnsItsFleet() {
	p, err := view.Project(s.game, nil, "p1", "Bob")
	s.Require().NoError(err)
	p.Positions[model.ShipCarrier][0] = model.Cell{X: 9, Y: 9}

	s.Equal(model.Cell{X: 0, Y: 0}, s.game.Player1Positions[model.ShipCarrier][0])
}
