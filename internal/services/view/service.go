package view

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/services/auth"
	"github.com/mcoot/battleship-go/internal/services/resolver"
	"github.com/mcoot/battleship-go/internal/storage"
)

// Finisher records a winner the record has not yet caught up with
type Finisher interface {
	FinishIfWon(ctx context.Context, gameID model.GameID) (model.PlayerID, bool, error)
}

// UpdateFunc receives recomputed projections. A non-nil error ends the
// watch and no further calls are made.
type UpdateFunc func(*Projection, error)

// Service serves projections on demand and as a live feed
type Service struct {
	storage  storage.Storage
	auth     *auth.Service
	finisher Finisher
	logger   *slog.Logger
}

// New creates a new view Service
func New(store storage.Storage, authService *auth.Service, finisher Finisher, logger *slog.Logger) *Service {
	return &Service{
		storage:  store,
		auth:     authService,
		finisher: finisher,
		logger:   logger.With(slog.String("component", "view-service")),
	}
}

// Snapshot authenticates the viewer and returns their current projection
func (s *Service) Snapshot(ctx context.Context, gameID model.GameID, playerID model.PlayerID, token string) (*Projection, error) {
	player, err := s.auth.Authenticate(ctx, gameID, playerID, token)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, gameID, player.ID)
}

// Watch authenticates the viewer and calls fn with a fresh projection now and
// after every change to the game. Bursts of changes are coalesced and only one
// recompute runs at a time. The returned function stops the watch.
func (s *Service) Watch(ctx context.Context, gameID model.GameID, playerID model.PlayerID, token string, fn UpdateFunc) (func(), error) {
	player, err := s.auth.Authenticate(ctx, gameID, playerID, token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	changed := make(chan struct{}, 1)
	unsubscribe, err := s.storage.Subscribe(ctx, gameID, func(model.ChangeEvent) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		cancel()
		return nil, err
	}

	stop := func() {
		cancel()
		unsubscribe()
	}

	// Subscribed first so no change between this load and the feed is lost
	initial, err := s.project(ctx, gameID, player.ID)
	if err != nil {
		stop()
		return nil, err
	}

	go func() {
		defer stop()
		fn(initial, nil)
		for {
			select {
			case <-ctx.Done():
				return
			case <-changed:
			}

			p, err := s.project(ctx, gameID, player.ID)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				s.logger.Debug("watch ended",
					slog.String("game_id", string(gameID)),
					slog.String("player_id", string(player.ID)),
					slog.String("error", err.Error()),
				)
				fn(nil, err)
				return
			}
			fn(p, nil)
		}
	}()

	return stop, nil
}

// project loads the game, runs the sync-path win check and builds the projection
func (s *Service) project(ctx context.Context, gameID model.GameID, viewerID model.PlayerID) (*Projection, error) {
	game, moves, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if _, won := resolver.CheckWinner(game, moves); won && game.Status != model.GameStatusFinished {
		if _, _, err := s.finisher.FinishIfWon(ctx, gameID); err != nil {
			return nil, err
		}
		if game, moves, err = s.load(ctx, gameID); err != nil {
			return nil, err
		}
	}

	var opponentName string
	if opponentID := game.OpponentOf(viewerID); opponentID != "" {
		opponent, err := s.storage.GetPlayer(ctx, opponentID)
		switch {
		case err == nil:
			opponentName = opponent.Name
		case !errors.Is(err, model.ErrNotFound):
			return nil, err
		}
	}

	return Project(game, moves, viewerID, opponentName)
}

func (s *Service) load(ctx context.Context, gameID model.GameID) (*model.Game, []model.Move, error) {
	game, err := s.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	moves, err := s.storage.ListMoves(ctx, gameID, storage.MoveFilter{})
	if err != nil {
		return nil, nil, err
	}
	return game, moves, nil
}
