package redis

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/storage"
	"github.com/mcoot/battleship-go/internal/storage/storagetest"
	"github.com/mcoot/battleship-go/internal/testutil"
)

type StorageSuite struct {
	storagetest.Suite
	mini    *miniredis.Miniredis
	client  *redis.Client
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.PlayerTTL = time.Hour
	cfg.InviteTTL = time.Hour
	cfg.GameTTL = time.Hour

	s.storage = NewWithClient(s.client, cfg, testutil.NopLogger())
	s.Store = s.storage
	s.Ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestKeysUsePrefix() {
	s.Require().NoError(s.storage.SaveGame(s.Ctx, &model.Game{ID: "g1"}))
	s.Require().NoError(s.storage.SavePlayer(s.Ctx, &model.Player{ID: "p1"}))

	s.True(s.mini.Exists("bsgame:game:g1"))
	s.True(s.mini.Exists("bsgame:player:p1"))
	members, err := s.mini.Members("bsgame:idx:games")
	s.Require().NoError(err)
	s.Equal([]string{"g1"}, members)
}

func (s *StorageSuite) TestTTLApplied() {
	s.Require().NoError(s.storage.SaveGame(s.Ctx, &model.Game{ID: "g1"}))
	s.Require().NoError(s.storage.Transact(s.Ctx, "g1", func(tx *storage.Tx) error {
		tx.AppendMove(model.Move{ID: "m1", PlayerID: "p1"})
		return nil
	}))

	s.Equal(time.Hour, s.mini.TTL("bsgame:game:g1"))
	s.Equal(time.Hour, s.mini.TTL("bsgame:moves:g1"))
}

func (s *StorageSuite) TestExpiredGameDroppedFromIndex() {
	s.Require().NoError(s.storage.SaveGame(s.Ctx, &model.Game{ID: "g1"}))
	s.mini.FastForward(2 * time.Hour)

	games, err := s.storage.ListGames(s.Ctx)
	s.Require().NoError(err)
	s.Empty(games)

	members, _ := s.mini.Members("bsgame:idx:games")
	s.Empty(members)
}

func (s *StorageSuite) TestTransactRetriesAfterConflict() {
	s.Require().NoError(s.storage.SaveGame(s.Ctx, &model.Game{ID: "g1", Status: model.GameStatusInProgress}))

	attempts := 0
	err := s.storage.Transact(s.Ctx, "g1", func(tx *storage.Tx) error {
		attempts++
		if attempts == 1 {
			// A write from another client between WATCH and EXEC
			s.Require().NoError(s.client.RPush(s.Ctx, "bsgame:moves:g1", `{"ID":"other","PlayerID":"p2","Seq":1}`).Err())
		}
		tx.AppendMove(model.Move{ID: "mine", PlayerID: "p1"})
		return nil
	})
	s.Require().NoError(err)
	s.Equal(2, attempts)

	moves, err := s.storage.ListMoves(s.Ctx, "g1", storage.MoveFilter{})
	s.Require().NoError(err)
	s.Require().Len(moves, 2)
	s.Equal(model.MoveID("mine"), moves[1].ID)
	s.Equal(2, moves[1].Seq)
}

func (s *StorageSuite) TestTransactGivesUpAfterRepeatedConflicts() {
	s.Require().NoError(s.storage.SaveGame(s.Ctx, &model.Game{ID: "g1"}))

	err := s.storage.Transact(s.Ctx, "g1", func(tx *storage.Tx) error {
		s.Require().NoError(s.client.RPush(s.Ctx, "bsgame:moves:g1", `{"ID":"other"}`).Err())
		tx.AppendMove(model.Move{ID: "mine"})
		return nil
	})
	s.ErrorIs(err, storage.ErrTxConflict)
}

func (s *StorageSuite) TestFailedPublishIsLogged() {
	var buf bytes.Buffer
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	store := NewWithClient(client, DefaultConfig(), testutil.JSONLogger(&buf))
	s.Require().NoError(client.Close())

	store.publish(s.Ctx, model.ChangeEvent{GameID: "g1", Kind: model.ChangeMoveAdded})

	s.Contains(buf.String(), "failed to publish change")
	s.Contains(buf.String(), `"game_id":"g1"`)
	s.Contains(buf.String(), `"component":"redis-storage"`)
}
