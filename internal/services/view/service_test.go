package view_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/battleship-go/internal/dependencies/mocks"
	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/services/auth"
	"github.com/mcoot/battleship-go/internal/services/game"
	"github.com/mcoot/battleship-go/internal/services/view"
	"github.com/mcoot/battleship-go/internal/storage"
	"github.com/mcoot/battleship-go/internal/storage/memory"
	"github.com/mcoot/battleship-go/internal/testutil"
)

const waitTimeout = 2 * time.Second

type ServiceSuite struct {
	suite.Suite
	storage    *memory.Storage
	controller *game.Controller
	service    *view.Service
	ctx        context.Context

	gameID model.GameID
	p1     auth.Credentials
	p2     auth.Credentials
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	rnd := mocks.NewMockRandom()
	authService := auth.New(s.storage, clk, rnd, auth.Config{Secret: "test-secret"}, testutil.NopLogger())
	s.controller = game.NewController(s.storage, authService, nil, clk, rnd, testutil.NopLogger())
	s.service = view.New(s.storage, authService, s.controller, testutil.NopLogger())
	s.ctx = context.Background()

	created, err := s.controller.CreateGame(s.ctx, "Alice", "Bob")
	s.Require().NoError(err)
	accepted, err := s.controller.AcceptInvite(s.ctx, created.InviteID)
	s.Require().NoError(err)
	s.gameID, s.p1, s.p2 = created.Game.ID, created.Player1, accepted.Player2
}

func (s *ServiceSuite) setPositions(creds auth.Credentials) {
	_, err := s.controller.SetPositions(s.ctx, s.gameID, creds.PlayerID, creds.Token, testutil.StandardFleet())
	s.Require().NoError(err)
}

type update struct {
	p   *view.Projection
	err error
}

func (s *ServiceSuite) watch(creds auth.Credentials) (<-chan update, func()) {
	updates := make(chan update, 64)
	stop, err := s.service.Watch(s.ctx, s.gameID, creds.PlayerID, creds.Token, func(p *view.Projection, err error) {
		updates <- update{p: p, err: err}
	})
	s.Require().NoError(err)
	return updates, stop
}

// waitFor reads updates until one satisfies cond
func (s *ServiceSuite) waitFor(updates <-chan update, cond func(update) bool) update {
	deadline := time.After(waitTimeout)
	for {
		select {
		case u := <-updates:
			if cond(u) {
				return u
			}
		case <-deadline:
			s.FailNow("timed out waiting for projection")
			return update{}
		}
	}
}

// Snapshot tests

func (s *ServiceSuite) TestSnapshotRoundTripsPositions() {
	s.setPositions(s.p1)

	own, err := s.service.Snapshot(s.ctx, s.gameID, s.p1.PlayerID, s.p1.Token)
	s.Require().NoError(err)
	s.True(own.PositionsAreSet)
	s.Equal(testutil.StandardFleet(), own.Positions)
	s.Equal("Bob", own.OpponentName)

	other, err := s.service.Snapshot(s.ctx, s.gameID, s.p2.PlayerID, s.p2.Token)
	s.Require().NoError(err)
	s.False(other.PositionsAreSet)
	s.True(other.OpponentPositionsAreSet)
	s.Equal(model.EmptyFleet(), other.Positions)
	s.Equal("Alice", other.OpponentName)
}

func (s *ServiceSuite) TestSnapshotRequiresCredentials() {
	_, err := s.service.Snapshot(s.ctx, s.gameID, s.p1.PlayerID, s.p2.Token)
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *ServiceSuite) TestSnapshotFinishesMissedWin() {
	s.setPositions(s.p1)
	s.setPositions(s.p2)

	// Shots covering the fleet land without the record being finished
	err := s.storage.Transact(s.ctx, s.gameID, func(tx *storage.Tx) error {
		for _, cell := range testutil.StandardFleet().Cells() {
			tx.AppendMove(model.Move{PlayerID: s.p2.PlayerID, Cell: cell, Hit: true})
		}
		return nil
	})
	s.Require().NoError(err)

	p, err := s.service.Snapshot(s.ctx, s.gameID, s.p1.PlayerID, s.p1.Token)
	s.Require().NoError(err)
	s.Equal(model.GameStatusFinished, p.Status)
	s.Equal(s.p2.PlayerID, p.PlayerIDWinner)
	s.Len(p.ShipsSunk, 5)

	g, err := s.storage.GetGame(s.ctx, s.gameID)
	s.Require().NoError(err)
	s.Equal(model.GameStatusFinished, g.Status)
	s.Equal(s.p2.PlayerID, g.PlayerIDWinner)

	// A second viewer's pass agrees and writes nothing new
	again, err := s.service.Snapshot(s.ctx, s.gameID, s.p2.PlayerID, s.p2.Token)
	s.Require().NoError(err)
	s.Equal(s.p2.PlayerID, again.PlayerIDWinner)
}

func (s *ServiceSuite) TestSyncPathAgreesWithMovePath() {
	s.setPositions(s.p1)
	s.setPositions(s.p2)

	var last *game.MoveResult
	for _, cell := range testutil.StandardFleet().Cells() {
		var err error
		last, err = s.controller.MakeMove(s.ctx, s.gameID, s.p1.PlayerID, s.p1.Token, cell)
		s.Require().NoError(err)
	}

	p, err := s.service.Snapshot(s.ctx, s.gameID, s.p2.PlayerID, s.p2.Token)
	s.Require().NoError(err)
	s.Equal(last.WinnerID, p.PlayerIDWinner)
	s.Equal(model.GameStatusFinished, p.Status)
}

// Watch tests

func (s *ServiceSuite) TestWatchDeliversInitialProjection() {
	updates, stop := s.watch(s.p1)
	defer stop()

	u := s.waitFor(updates, func(update) bool { return true })
	s.Require().NoError(u.err)
	s.Equal(model.GameStatusPendingPositions, u.p.Status)
}

func (s *ServiceSuite) TestWatchFollowsChanges() {
	updates, stop := s.watch(s.p2)
	defer stop()

	s.setPositions(s.p1)
	s.setPositions(s.p2)
	u := s.waitFor(updates, func(u update) bool { return u.p != nil && u.p.Status == model.GameStatusInProgress })
	s.False(u.p.IsMyTurn)

	_, err := s.controller.MakeMove(s.ctx, s.gameID, s.p1.PlayerID, s.p1.Token, testutil.MissCell)
	s.Require().NoError(err)

	u = s.waitFor(updates, func(u update) bool { return u.p != nil && len(u.p.OpponentMoves) == 1 })
	s.True(u.p.IsMyTurn)
	s.Equal(testutil.MissCell, u.p.OpponentMoves[0].Cell)
}

func (s *ServiceSuite) TestWatchRejectsBadToken() {
	_, err := s.service.Watch(s.ctx, s.gameID, s.p1.PlayerID, "bad", func(*view.Projection, error) {})
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *ServiceSuite) TestWatchEndsWhenGameDeleted() {
	updates, stop := s.watch(s.p1)
	defer stop()
	s.waitFor(updates, func(update) bool { return true })

	s.Require().NoError(s.controller.DeleteGame(s.ctx, s.gameID))

	u := s.waitFor(updates, func(u update) bool { return u.err != nil })
	s.ErrorIs(u.err, model.ErrNotFound)
}

func (s *ServiceSuite) TestStopUnsubscribes() {
	updates, stop := s.watch(s.p1)
	s.waitFor(updates, func(update) bool { return true })
	stop()

	s.Eventually(func() bool { return s.storage.SubscriberCount(s.gameID) == 0 }, waitTimeout, 10*time.Millisecond)
}

func (s *ServiceSuite) TestWatchEndsWithContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	_, err := s.service.Watch(ctx, s.gameID, s.p1.PlayerID, s.p1.Token, func(*view.Projection, error) {})
	s.Require().NoError(err)

	cancel()
	s.Eventually(func() bool { return s.storage.SubscriberCount(s.gameID) == 0 }, waitTimeout, 10*time.Millisecond)
}
