package bot_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/battleship-go/internal/dependencies/mocks"
	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/services/auth"
	"github.com/mcoot/battleship-go/internal/services/bot"
	"github.com/mcoot/battleship-go/internal/services/game"
	"github.com/mcoot/battleship-go/internal/services/view"
	"github.com/mcoot/battleship-go/internal/storage/memory"
	"github.com/mcoot/battleship-go/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	store          *memory.Storage
	mockRandom     *mocks.MockRandom
	gameController *game.Controller
	viewService    *view.Service
	botService     *bot.Service

	ctx context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = memory.New()
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.mockRandom = mocks.NewMockRandom()
	logger := testutil.NopLogger()
	s.ctx = context.Background()

	authService := auth.New(s.store, clk, s.mockRandom, auth.Config{Secret: "test-secret"}, logger)
	s.gameController = game.NewController(s.store, authService, nil, clk, s.mockRandom, logger)
	s.viewService = view.New(s.store, authService, s.gameController, logger)
	s.botService = bot.NewService(s.gameController, s.viewService, bot.DefaultStrategies(s.mockRandom), logger)
}

// startBotGame creates a bot game and sets the human's fleet. With an empty
// random queue the bot's fleet sits in rows 0 and 2, so row 9 is open water.
func (s *ServiceSuite) startBotGame(strategy string) *bot.GameResult {
	result, err := s.botService.CreateBotGame(s.ctx, "Alice", strategy)
	s.Require().NoError(err)
	_, err = s.gameController.SetPositions(s.ctx, result.Game.ID, result.Player.PlayerID, result.Player.Token, testutil.StandardFleet())
	s.Require().NoError(err)
	return result
}

func (s *ServiceSuite) TestCreateBotGame() {
	result, err := s.botService.CreateBotGame(s.ctx, "Alice", bot.StrategyRandom)
	s.Require().NoError(err)

	s.Equal(model.GameStatusPendingPositions, result.Game.Status)
	s.True(result.Game.Player2PositionsSet)
	s.False(result.Game.Player1PositionsSet)
	s.Equal(result.BotID, result.Game.Player2ID)
	s.True(s.botService.IsBotGame(result.Game.ID))

	botPlayer, err := s.store.GetPlayer(s.ctx, result.BotID)
	s.Require().NoError(err)
	s.True(botPlayer.IsBot)
	s.Equal(bot.StrategyRandom, botPlayer.BotStrategy)

	p, err := s.viewService.Snapshot(s.ctx, result.Game.ID, result.Player.PlayerID, result.Player.Token)
	s.Require().NoError(err)
	s.Equal("Bot (random)", p.OpponentName)
	s.True(p.OpponentPositionsAreSet)

	// The bot's invite is consumed
	invites, err := s.store.ListInvitesForGame(s.ctx, result.Game.ID)
	s.Require().NoError(err)
	s.Empty(invites)
}

func (s *ServiceSuite) TestCreateBotGameUnknownStrategy() {
	_, err := s.botService.CreateBotGame(s.ctx, "Alice", "cheater")
	s.ErrorIs(err, model.ErrUnknownBot)
}

func (s *ServiceSuite) TestCreateBotGameNameRequired() {
	_, err := s.botService.CreateBotGame(s.ctx, "  ", bot.StrategyRandom)
	s.ErrorIs(err, model.ErrNameRequired)
}

func (s *ServiceSuite) TestPlayTurnsWaitsForHuman() {
	result := s.startBotGame(bot.StrategyRandom)

	moves, err := s.botService.PlayTurns(s.ctx, result.Game.ID)
	s.Require().NoError(err)
	s.Empty(moves)
}

func (s *ServiceSuite) TestRandomBotKeepsFiringWhileItHits() {
	result := s.startBotGame(bot.StrategyRandom)
	gameID := result.Game.ID

	miss, err := s.gameController.MakeMove(s.ctx, gameID, result.Player.PlayerID, result.Player.Token, testutil.MissCell)
	s.Require().NoError(err)
	s.Require().False(miss.Move.Hit)

	// Row-major shots walk the carrier in row 0 then miss at (0,5)
	moves, err := s.botService.PlayTurns(s.ctx, gameID)
	s.Require().NoError(err)
	s.Require().Len(moves, 6)
	for i := range 5 {
		s.True(moves[i].Move.Hit)
		s.Equal(model.Cell{X: 0, Y: i}, moves[i].Move.Cell)
	}
	s.Equal(model.ShipCarrier, moves[4].ShipJustSunk)
	s.False(moves[5].Move.Hit)

	g, err := s.gameController.GetGame(s.ctx, gameID)
	s.Require().NoError(err)
	s.Equal(result.Player.PlayerID, g.PlayerIDTurn)
}

func (s *ServiceSuite) TestHuntBotWorksNeighbours() {
	result := s.startBotGame(bot.StrategyHunt)
	gameID := result.Game.ID

	_, err := s.gameController.MakeMove(s.ctx, gameID, result.Player.PlayerID, result.Player.Token, testutil.MissCell)
	s.Require().NoError(err)

	// Random hit at (0,0), then its first neighbour (1,0) is open water
	moves, err := s.botService.PlayTurns(s.ctx, gameID)
	s.Require().NoError(err)
	s.Require().Len(moves, 2)
	s.Equal(model.Cell{X: 0, Y: 0}, moves[0].Move.Cell)
	s.True(moves[0].Move.Hit)
	s.Equal(model.Cell{X: 1, Y: 0}, moves[1].Move.Cell)
	s.False(moves[1].Move.Hit)
}

func (s *ServiceSuite) TestPlayTurnsIgnoresHumanGames() {
	created, err := s.gameController.CreateGame(s.ctx, "Alice", "Bob")
	s.Require().NoError(err)

	moves, err := s.botService.PlayTurns(s.ctx, created.Game.ID)
	s.NoError(err)
	s.Nil(moves)
}

func (s *ServiceSuite) TestPlayTurnsForgetsDeletedGame() {
	result := s.startBotGame(bot.StrategyRandom)
	s.Require().NoError(s.gameController.DeleteGame(s.ctx, result.Game.ID))

	_, err := s.botService.PlayTurns(s.ctx, result.Game.ID)
	s.ErrorIs(err, model.ErrNotFound)
	s.False(s.botService.IsBotGame(result.Game.ID))
}

func (s *ServiceSuite) TestForget() {
	result := s.startBotGame(bot.StrategyRandom)
	s.botService.Forget(result.Game.ID)
	s.False(s.botService.IsBotGame(result.Game.ID))
}

// fixedFleetStrategy submits a canned fleet, or fails to choose one
type fixedFleetStrategy struct {
	fleet model.Fleet
	err   error
}

func (f fixedFleetStrategy) ChooseFleet() (model.Fleet, error) { return f.fleet, f.err }

func (f fixedFleetStrategy) ChooseShot(*view.Projection) model.Cell { return model.Cell{} }

func (s *ServiceSuite) TestCreateBotGameRemovesGameWhenSetupFails() {
	errNoFleet := errors.New("no fleet")
	tests := []struct {
		name     string
		strategy bot.Strategy
		wantErr  error
	}{
		{name: "fleet choice fails", strategy: fixedFleetStrategy{err: errNoFleet}, wantErr: errNoFleet},
		{name: "fleet rejected", strategy: fixedFleetStrategy{fleet: model.EmptyFleet()}, wantErr: model.ErrInvalidFleet},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			svc := bot.NewService(s.gameController, s.viewService,
				map[string]bot.Strategy{"broken": tt.strategy}, testutil.NopLogger())

			_, err := svc.CreateBotGame(s.ctx, "Alice", "broken")
			s.Require().ErrorIs(err, tt.wantErr)

			games, err := s.store.ListGames(s.ctx)
			s.Require().NoError(err)
			s.Empty(games)
		})
	}
}
