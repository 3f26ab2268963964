package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/storage"
)

// Transact runs fn under WATCH on the game and its move list and commits the
// staged writes with MULTI/EXEC. A concurrent write to either key aborts the
// EXEC and the whole read-modify-write is retried.
func (s *Storage) Transact(ctx context.Context, gameID model.GameID, fn func(tx *storage.Tx) error) error {
	for range storage.MaxTxRetries {
		var committed *storage.Tx
		err := s.client.Watch(ctx, func(rtx *redis.Tx) error {
			game, err := getGame(ctx, rtx, gameID)
			if err != nil {
				return err
			}
			moves, err := listMoves(ctx, rtx, gameID)
			if err != nil {
				return err
			}

			tx := storage.NewTx(game, moves)
			if err := fn(tx); err != nil {
				return err
			}
			if !tx.Dirty() {
				return nil
			}

			_, err = rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				return s.stage(ctx, pipe, gameID, tx)
			})
			if err == nil {
				committed = tx
			}
			return err
		}, gameKey(gameID), movesKey(gameID))

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return err
		}
		if committed != nil {
			for _, event := range committed.Events(time.Now()) {
				s.publish(ctx, event)
			}
		}
		return nil
	}
	return storage.ErrTxConflict
}

func (s *Storage) stage(ctx context.Context, pipe redis.Pipeliner, gameID model.GameID, tx *storage.Tx) error {
	if game := tx.StagedGame(); game != nil {
		data, err := json.Marshal(game)
		if err != nil {
			return err
		}
		pipe.Set(ctx, gameKey(gameID), data, s.cfg.GameTTL)
	}

	if moves := tx.StagedMoves(); len(moves) > 0 {
		values := make([]any, len(moves))
		for i, m := range moves {
			data, err := json.Marshal(m)
			if err != nil {
				return err
			}
			values[i] = data
		}
		pipe.RPush(ctx, movesKey(gameID), values...)
		if s.cfg.GameTTL > 0 {
			pipe.Expire(ctx, movesKey(gameID), s.cfg.GameTTL)
		}
	}

	for _, p := range tx.StagedPlayers() {
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		pipe.Set(ctx, playerKey(p.ID), data, s.cfg.PlayerTTL)
	}

	for _, id := range tx.StagedInviteDeletes() {
		pipe.Del(ctx, inviteKey(id))
		pipe.SRem(ctx, invitesForGameIndexKey(gameID), string(id))
	}
	return nil
}
