package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/services/auth"
	"github.com/mcoot/battleship-go/internal/services/game"
	"github.com/mcoot/battleship-go/internal/services/view"
)

// MaxBotIterations is a safety limit for the PlayTurns loop
const MaxBotIterations = 1000

// GameResult is returned when a game against a bot is set up
type GameResult struct {
	Game   *model.Game
	Player auth.Credentials
	BotID  model.PlayerID
}

// seat is a bot's place in one game
type seat struct {
	creds    auth.Credentials
	strategy string
}

// Service plays the bot side of games. Bots act through the same
// authenticated operations as human players.
type Service struct {
	controller *game.Controller
	views      *view.Service
	strategies map[string]Strategy
	logger     *slog.Logger

	mu    sync.Mutex
	seats map[model.GameID]seat
}

// NewService creates a new bot Service
func NewService(
	controller *game.Controller,
	views *view.Service,
	strategies map[string]Strategy,
	logger *slog.Logger,
) *Service {
	return &Service{
		controller: controller,
		views:      views,
		strategies: strategies,
		logger:     logger.With(slog.String("component", "bot-service")),
		seats:      make(map[model.GameID]seat),
	}
}

// HasStrategy returns true if the named strategy is registered
func (s *Service) HasStrategy(name string) bool {
	_, ok := s.strategies[name]
	return ok
}

// CreateBotGame creates a game between a human and a bot. The bot accepts
// the invite and submits its fleet straight away; the human's credentials
// are returned.
func (s *Service) CreateBotGame(ctx context.Context, humanName string, strategy string) (*GameResult, error) {
	st, ok := s.strategies[strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownBot, strategy)
	}

	created, err := s.controller.CreateGameAgainst(ctx, humanName, &model.Player{
		Name:        botName(strategy),
		IsBot:       true,
		BotStrategy: strategy,
	})
	if err != nil {
		return nil, err
	}
	gameID := created.Game.ID

	accepted, err := s.controller.AcceptInvite(ctx, created.InviteID)
	if err != nil {
		return nil, s.abandon(ctx, gameID, err)
	}
	botCreds := accepted.Player2

	positions, err := st.ChooseFleet()
	if err != nil {
		return nil, s.abandon(ctx, gameID, err)
	}
	g, err := s.controller.SetPositions(ctx, gameID, botCreds.PlayerID, botCreds.Token, positions)
	if err != nil {
		return nil, s.abandon(ctx, gameID, err)
	}

	s.mu.Lock()
	s.seats[gameID] = seat{creds: botCreds, strategy: strategy}
	s.mu.Unlock()

	s.logger.Info("bot game created",
		slog.String("game_id", string(gameID)),
		slog.String("bot_id", string(botCreds.PlayerID)),
		slog.String("strategy", strategy),
	)

	return &GameResult{Game: g, Player: created.Player1, BotID: botCreds.PlayerID}, nil
}

// abandon deletes a bot game whose setup failed part way and returns cause
func (s *Service) abandon(ctx context.Context, gameID model.GameID, cause error) error {
	if err := s.controller.DeleteGame(context.WithoutCancel(ctx), gameID); err != nil {
		s.logger.Warn("failed to remove abandoned bot game",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
	}
	return cause
}

// PlayTurns fires the bot's shots for as long as it holds the turn.
// Games without a bot are left alone.
func (s *Service) PlayTurns(ctx context.Context, gameID model.GameID) ([]*game.MoveResult, error) {
	s.mu.Lock()
	st, ok := s.seats[gameID]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	strategy := s.strategyFor(st.strategy)

	var results []*game.MoveResult
	for range MaxBotIterations {
		p, err := s.views.Snapshot(ctx, gameID, st.creds.PlayerID, st.creds.Token)
		if err != nil {
			// A deleted game takes the bot's player with it
			if _, gerr := s.controller.GetGame(ctx, gameID); errors.Is(gerr, model.ErrNotFound) {
				s.Forget(gameID)
				return results, gerr
			}
			return results, err
		}
		if p.Status != model.GameStatusInProgress || !p.IsMyTurn {
			break
		}

		cell := strategy.ChooseShot(p)
		res, err := s.controller.MakeMove(ctx, gameID, st.creds.PlayerID, st.creds.Token, cell)
		if err != nil {
			return results, err
		}
		results = append(results, res)

		s.logger.Debug("bot fired",
			slog.String("game_id", string(gameID)),
			slog.Int("x", cell.X),
			slog.Int("y", cell.Y),
			slog.Bool("hit", res.Move.Hit),
		)
		if res.GameOver {
			break
		}
	}

	return results, nil
}

// IsBotGame returns true if a bot is seated in the game
func (s *Service) IsBotGame(gameID model.GameID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seats[gameID]
	return ok
}

// Forget drops the bot's seat for a deleted game
func (s *Service) Forget(gameID model.GameID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seats, gameID)
}

// strategyFor returns the named strategy, falling back to random
func (s *Service) strategyFor(name string) Strategy {
	if st, ok := s.strategies[name]; ok {
		return st
	}
	return s.strategies[StrategyRandom]
}

func botName(strategy string) string {
	return fmt.Sprintf("Bot (%s)", strategy)
}
