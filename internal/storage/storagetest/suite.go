// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/storage"
	"github.com/mcoot/battleship-go/internal/testutil"
)

// eventTimeout bounds how long the suite waits for change events
const eventTimeout = 2 * time.Second

// Suite runs the shared storage contract against a backend.
// Backends embed it and set Store in their own SetupTest.
type Suite struct {
	suite.Suite
	Store storage.Storage
	Ctx   context.Context
}

func (s *Suite) newGame(id model.GameID) *model.Game {
	return &model.Game{
		ID:               id,
		Player1ID:        "p1",
		Player2ID:        "p2",
		PlayerIDTurn:     "p1",
		Status:           model.GameStatusPending,
		Player1Positions: model.EmptyFleet(),
		Player2Positions: model.EmptyFleet(),
		CreatedAt:        time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:        time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *Suite) saveGame(id model.GameID) *model.Game {
	g := s.newGame(id)
	s.Require().NoError(s.Store.SaveGame(s.Ctx, g))
	return g
}

func (s *Suite) appendMoves(gameID model.GameID, moves ...model.Move) {
	err := s.Store.Transact(s.Ctx, gameID, func(tx *storage.Tx) error {
		for _, m := range moves {
			tx.AppendMove(m)
		}
		return nil
	})
	s.Require().NoError(err)
}

// Player tests

func (s *Suite) TestSaveAndGetPlayer() {
	player := &model.Player{ID: "p1", Name: "Alice", TokenFingerprint: "abc"}
	s.Require().NoError(s.Store.SavePlayer(s.Ctx, player))

	retrieved, err := s.Store.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal("Alice", retrieved.Name)
	s.Equal("abc", retrieved.TokenFingerprint)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Store.GetPlayer(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *Suite) TestDeletePlayer() {
	s.Require().NoError(s.Store.SavePlayer(s.Ctx, &model.Player{ID: "p1", Name: "Alice"}))
	s.Require().NoError(s.Store.DeletePlayer(s.Ctx, "p1"))

	_, err := s.Store.GetPlayer(s.Ctx, "p1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestReturnedPlayerIsACopy() {
	s.Require().NoError(s.Store.SavePlayer(s.Ctx, &model.Player{ID: "p1", Name: "Alice"}))
	p, err := s.Store.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	p.Name = "Mallory"

	again, err := s.Store.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal("Alice", again.Name)
}

// Invite tests

func (s *Suite) TestInviteLifecycle() {
	invite := &model.Invite{ID: "inv-1", PlayerID: "p2", GameID: "g1", GameType: model.GameTypeBattleship}
	s.Require().NoError(s.Store.SaveInvite(s.Ctx, invite))
	s.Require().NoError(s.Store.SaveInvite(s.Ctx, &model.Invite{ID: "inv-2", PlayerID: "p3", GameID: "g2"}))

	retrieved, err := s.Store.GetInvite(s.Ctx, "inv-1")
	s.Require().NoError(err)
	s.Equal(model.GameID("g1"), retrieved.GameID)
	s.Equal(model.GameTypeBattleship, retrieved.GameType)

	invites, err := s.Store.ListInvitesForGame(s.Ctx, "g1")
	s.Require().NoError(err)
	s.Require().Len(invites, 1)
	s.Equal(model.InviteID("inv-1"), invites[0].ID)

	s.Require().NoError(s.Store.DeleteInvite(s.Ctx, "inv-1"))
	_, err = s.Store.GetInvite(s.Ctx, "inv-1")
	s.ErrorIs(err, model.ErrInviteNotFound)

	invites, err = s.Store.ListInvitesForGame(s.Ctx, "g1")
	s.Require().NoError(err)
	s.Empty(invites)
}

// Game tests

func (s *Suite) TestSaveAndGetGame() {
	g := s.newGame("g1")
	g.Player1Positions = testutil.StandardFleet()
	g.Player1PositionsSet = true
	s.Require().NoError(s.Store.SaveGame(s.Ctx, g))

	retrieved, err := s.Store.GetGame(s.Ctx, "g1")
	s.Require().NoError(err)
	s.Equal(model.GameStatusPending, retrieved.Status)
	s.Equal(testutil.StandardFleet(), retrieved.Player1Positions)
	s.True(retrieved.Player1PositionsSet)
	s.Equal(g.CreatedAt.UTC(), retrieved.CreatedAt.UTC())
}

func (s *Suite) TestGetGameNotFound() {
	_, err := s.Store.GetGame(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestDeleteGameRemovesMoves() {
	s.saveGame("g1")
	s.appendMoves("g1", model.Move{ID: "m1", PlayerID: "p1", Cell: model.Cell{X: 1, Y: 1}})

	s.Require().NoError(s.Store.DeleteGame(s.Ctx, "g1"))

	_, err := s.Store.GetGame(s.Ctx, "g1")
	s.ErrorIs(err, model.ErrGameNotFound)
	moves, err := s.Store.ListMoves(s.Ctx, "g1", storage.MoveFilter{})
	s.Require().NoError(err)
	s.Empty(moves)
}

func (s *Suite) TestListGames() {
	s.saveGame("g1")
	s.saveGame("g2")

	games, err := s.Store.ListGames(s.Ctx)
	s.Require().NoError(err)
	s.Len(games, 2)

	s.Require().NoError(s.Store.DeleteGame(s.Ctx, "g1"))
	games, err = s.Store.ListGames(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(games, 1)
	s.Equal(model.GameID("g2"), games[0].ID)
}

// Move tests

func (s *Suite) TestListMovesOrderedAndFiltered() {
	s.saveGame("g1")
	s.appendMoves("g1",
		model.Move{ID: "m1", PlayerID: "p1", Cell: model.Cell{X: 0, Y: 0}, Hit: true},
		model.Move{ID: "m2", PlayerID: "p1", Cell: model.Cell{X: 0, Y: 1}},
	)
	s.appendMoves("g1", model.Move{ID: "m3", PlayerID: "p2", Cell: model.Cell{X: 0, Y: 0}})

	all, err := s.Store.ListMoves(s.Ctx, "g1", storage.MoveFilter{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal([]int{1, 2, 3}, []int{all[0].Seq, all[1].Seq, all[2].Seq})
	s.Equal(model.GameID("g1"), all[0].GameID)
	s.True(all[0].Hit)

	byPlayer, err := s.Store.ListMoves(s.Ctx, "g1", storage.MoveFilter{PlayerID: "p1"})
	s.Require().NoError(err)
	s.Len(byPlayer, 2)

	cell := model.Cell{X: 0, Y: 0}
	byCell, err := s.Store.ListMoves(s.Ctx, "g1", storage.MoveFilter{PlayerID: "p2", Cell: &cell})
	s.Require().NoError(err)
	s.Require().Len(byCell, 1)
	s.Equal(model.MoveID("m3"), byCell[0].ID)
}

// Transaction tests

func (s *Suite) TestTransactMissingGame() {
	err := s.Store.Transact(s.Ctx, "nonexistent", func(tx *storage.Tx) error { return nil })
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestTransactCommitsBatch() {
	s.saveGame("g1")
	s.Require().NoError(s.Store.SaveInvite(s.Ctx, &model.Invite{ID: "inv-1", PlayerID: "p2", GameID: "g1"}))

	err := s.Store.Transact(s.Ctx, "g1", func(tx *storage.Tx) error {
		g := tx.Game()
		g.Status = model.GameStatusPendingPositions
		tx.PutGame(g)
		tx.SavePlayer(&model.Player{ID: "p2", Name: "Bob", TokenFingerprint: "fp"})
		tx.DeleteInvite("inv-1")
		return nil
	})
	s.Require().NoError(err)

	g, err := s.Store.GetGame(s.Ctx, "g1")
	s.Require().NoError(err)
	s.Equal(model.GameStatusPendingPositions, g.Status)

	p, err := s.Store.GetPlayer(s.Ctx, "p2")
	s.Require().NoError(err)
	s.Equal("fp", p.TokenFingerprint)

	_, err = s.Store.GetInvite(s.Ctx, "inv-1")
	s.ErrorIs(err, model.ErrInviteNotFound)
}

func (s *Suite) TestTransactErrorWritesNothing() {
	s.saveGame("g1")
	boom := errors.New("boom")

	err := s.Store.Transact(s.Ctx, "g1", func(tx *storage.Tx) error {
		g := tx.Game()
		g.Status = model.GameStatusFinished
		tx.PutGame(g)
		tx.AppendMove(model.Move{ID: "m1", PlayerID: "p1"})
		return boom
	})
	s.ErrorIs(err, boom)

	g, err := s.Store.GetGame(s.Ctx, "g1")
	s.Require().NoError(err)
	s.Equal(model.GameStatusPending, g.Status)
	moves, err := s.Store.ListMoves(s.Ctx, "g1", storage.MoveFilter{})
	s.Require().NoError(err)
	s.Empty(moves)
}

func (s *Suite) TestTransactSeesStagedMoves() {
	s.saveGame("g1")
	s.appendMoves("g1", model.Move{ID: "m1", PlayerID: "p1"})

	err := s.Store.Transact(s.Ctx, "g1", func(tx *storage.Tx) error {
		s.Len(tx.Moves(), 1)
		m := tx.AppendMove(model.Move{ID: "m2", PlayerID: "p2"})
		s.Equal(2, m.Seq)
		s.Len(tx.Moves(), 2)
		return nil
	})
	s.Require().NoError(err)
}

func (s *Suite) TestConcurrentTransactionsSerialize() {
	s.saveGame("g1")

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Store.Transact(s.Ctx, "g1", func(tx *storage.Tx) error {
				tx.AppendMove(model.Move{ID: model.MoveID(string(rune('a' + i))), PlayerID: "p1", Cell: model.Cell{X: i, Y: 0}})
				return nil
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}

	moves, err := s.Store.ListMoves(s.Ctx, "g1", storage.MoveFilter{})
	s.Require().NoError(err)
	s.Require().Len(moves, writers)
	for i, m := range moves {
		s.Equal(i+1, m.Seq)
	}
}

// Subscription tests

func (s *Suite) collect(gameID model.GameID) (<-chan model.ChangeEvent, func()) {
	events := make(chan model.ChangeEvent, 16)
	unsubscribe, err := s.Store.Subscribe(s.Ctx, gameID, func(e model.ChangeEvent) {
		select {
		case events <- e:
		default:
		}
	})
	s.Require().NoError(err)
	return events, unsubscribe
}

func (s *Suite) next(events <-chan model.ChangeEvent) model.ChangeEvent {
	select {
	case e := <-events:
		return e
	case <-time.After(eventTimeout):
		s.FailNow("timed out waiting for change event")
		return model.ChangeEvent{}
	}
}

func (s *Suite) TestSubscribeReceivesCommittedChanges() {
	s.saveGame("g1")
	events, unsubscribe := s.collect("g1")
	defer unsubscribe()

	s.appendMoves("g1", model.Move{ID: "m1", PlayerID: "p1"})
	e := s.next(events)
	s.Equal(model.GameID("g1"), e.GameID)
	s.Equal(model.ChangeMoveAdded, e.Kind)

	s.Require().NoError(s.Store.DeleteGame(s.Ctx, "g1"))
	s.Equal(model.ChangeGameDeleted, s.next(events).Kind)
}

func (s *Suite) TestSubscribeIgnoresOtherGames() {
	s.saveGame("g1")
	s.saveGame("g2")
	events, unsubscribe := s.collect("g1")
	defer unsubscribe()

	s.Require().NoError(s.Store.SaveGame(s.Ctx, s.newGame("g2")))
	s.Require().NoError(s.Store.SaveGame(s.Ctx, s.newGame("g1")))

	e := s.next(events)
	s.Equal(model.GameID("g1"), e.GameID)
	s.Equal(model.ChangeGameUpdated, e.Kind)
}

func (s *Suite) TestUnsubscribeStopsDelivery() {
	s.saveGame("g1")
	events, unsubscribe := s.collect("g1")
	unsubscribe()
	unsubscribe()

	s.Require().NoError(s.Store.SaveGame(s.Ctx, s.newGame("g1")))

	select {
	case e := <-events:
		s.Failf("unexpected event", "%+v", e)
	case <-time.After(100 * time.Millisecond):
	}
}
