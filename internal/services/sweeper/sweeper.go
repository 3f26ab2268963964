package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/battleship-go/internal/dependencies/clock"
	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/storage"
)

// DefaultGameTTL is how long a game may sit without updates before it is swept
const DefaultGameTTL = 24 * time.Hour

// Deleter removes a game and everything that belongs to it
type Deleter interface {
	DeleteGame(ctx context.Context, gameID model.GameID) error
}

// Sweeper deletes games that have gone quiet for longer than the TTL
type Sweeper struct {
	storage  storage.Storage
	deleter  Deleter
	clock    clock.Clock
	ttl      time.Duration
	onDelete []func(model.GameID)
	logger   *slog.Logger
}

// New creates a new Sweeper. A non-positive ttl uses DefaultGameTTL.
func New(store storage.Storage, deleter Deleter, clk clock.Clock, ttl time.Duration, logger *slog.Logger) *Sweeper {
	if ttl <= 0 {
		ttl = DefaultGameTTL
	}
	return &Sweeper{
		storage: store,
		deleter: deleter,
		clock:   clk,
		ttl:     ttl,
		logger:  logger.With(slog.String("component", "sweeper")),
	}
}

// OnDelete registers fn to be called with each swept game id
func (s *Sweeper) OnDelete(fn func(model.GameID)) {
	s.onDelete = append(s.onDelete, fn)
}

// SweepOnce deletes every expired game and returns how many were removed.
// Failures are logged and skipped.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	games, err := s.storage.ListGames(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, g := range games {
		if s.clock.Since(g.UpdatedAt) <= s.ttl {
			continue
		}
		if err := ctx.Err(); err != nil {
			return deleted, err
		}

		if err := s.deleter.DeleteGame(ctx, g.ID); err != nil {
			s.logger.Warn("failed to sweep game",
				slog.String("game_id", string(g.ID)),
				slog.String("error", err.Error()),
			)
			continue
		}
		for _, fn := range s.onDelete {
			fn(g.ID)
		}
		deleted++
	}

	if deleted > 0 {
		s.logger.Info("swept expired games", slog.Int("count", deleted))
	}
	return deleted, nil
}

// Run sweeps every interval until ctx ends
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}
