package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mcoot/battleship-go/internal/dependencies/clock"
	"github.com/mcoot/battleship-go/internal/dependencies/random"
	"github.com/mcoot/battleship-go/internal/metrics"
	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/services/auth"
	"github.com/mcoot/battleship-go/internal/services/fleet"
	"github.com/mcoot/battleship-go/internal/services/resolver"
	"github.com/mcoot/battleship-go/internal/storage"
)

const (
	// GameIDLength is the length of generated game IDs
	GameIDLength = 12
	// GameIDAlphabet is the character set for generated game IDs
	GameIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// MaxWinnerMessageLength is the longest message a winner may post, in characters
	MaxWinnerMessageLength = 1000
)

// CreateResult is returned when a game is created
type CreateResult struct {
	Game     *model.Game
	Player1  auth.Credentials
	InviteID model.InviteID
}

// AcceptResult is returned when an invite is accepted
type AcceptResult struct {
	Game    *model.Game
	Player2 auth.Credentials
}

// MoveResult describes the effect of one shot
type MoveResult struct {
	Move         model.Move
	ShipJustSunk model.ShipKind
	GameOver     bool
	WinnerID     model.PlayerID
	Game         *model.Game
}

// Controller manages the game state machine.
// Every mutation of a game runs on that game's mailbox inside a storage
// transaction, so precondition checks and writes are atomic.
type Controller struct {
	storage   storage.Storage
	auth      *auth.Service
	sequencer *Sequencer
	metrics   *metrics.Metrics
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger
}

// NewController creates a new GameController
func NewController(
	storage storage.Storage,
	authService *auth.Service,
	m *metrics.Metrics,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:   storage,
		auth:      authService,
		sequencer: NewSequencer(),
		metrics:   m,
		clock:     clock,
		random:    random,
		logger:    logger.With(slog.String("component", "game-controller")),
	}
}

// CreateGame creates both players, a pending game and the invite for player 2.
// Only player 1 receives credentials now; player 2 receives theirs on accept.
func (c *Controller) CreateGame(ctx context.Context, player1Name, player2Name string) (*CreateResult, error) {
	return c.CreateGameAgainst(ctx, player1Name, &model.Player{Name: player2Name})
}

// CreateGameAgainst creates a game whose second player is described by
// opponent. The opponent's ID and creation time are assigned here.
func (c *Controller) CreateGameAgainst(ctx context.Context, player1Name string, opponent *model.Player) (*CreateResult, error) {
	player1Name = strings.TrimSpace(player1Name)
	opponentName := strings.TrimSpace(opponent.Name)
	if player1Name == "" || opponentName == "" {
		return nil, model.ErrNameRequired
	}
	if player1Name == opponentName {
		return nil, model.ErrNameCollision
	}

	now := c.clock.Now()
	gameID := model.GameID(c.random.String(GameIDLength, GameIDAlphabet))

	player1 := &model.Player{
		ID:        model.PlayerID(uuid.NewString()),
		Name:      player1Name,
		CreatedAt: now,
	}
	creds, fingerprint, err := c.auth.Issue(gameID, player1.ID)
	if err != nil {
		return nil, err
	}
	player1.TokenFingerprint = fingerprint

	player2 := *opponent
	player2.ID = model.PlayerID(uuid.NewString())
	player2.Name = opponentName
	player2.TokenFingerprint = ""
	player2.CreatedAt = now

	game := &model.Game{
		ID:               gameID,
		Player1ID:        player1.ID,
		Player2ID:        player2.ID,
		PlayerIDTurn:     player1.ID,
		Status:           model.GameStatusPending,
		Player1Positions: model.EmptyFleet(),
		Player2Positions: model.EmptyFleet(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	invite := &model.Invite{
		ID:        model.InviteID(uuid.NewString()),
		PlayerID:  player2.ID,
		GameID:    gameID,
		GameType:  model.GameTypeBattleship,
		CreatedAt: now,
	}

	if err := c.storage.SavePlayer(ctx, player1); err != nil {
		return nil, err
	}
	if err := c.storage.SavePlayer(ctx, &player2); err != nil {
		return nil, err
	}
	if err := c.storage.SaveGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	if err := c.storage.SaveInvite(ctx, invite); err != nil {
		return nil, err
	}

	c.metrics.GameCreated()
	c.logger.Info("game created",
		slog.String("game_id", string(gameID)),
		slog.String("player1_id", string(player1.ID)),
		slog.String("player2_id", string(player2.ID)),
		slog.Bool("opponent_is_bot", player2.IsBot),
	)

	return &CreateResult{Game: game, Player1: creds, InviteID: invite.ID}, nil
}

// AcceptInvite consumes the invite, moves the game to pending_positions and
// issues player 2's credentials, all in one atomic batch
func (c *Controller) AcceptInvite(ctx context.Context, inviteID model.InviteID) (*AcceptResult, error) {
	invite, err := c.storage.GetInvite(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	player2, err := c.storage.GetPlayer(ctx, invite.PlayerID)
	if err != nil {
		return nil, err
	}

	creds, fingerprint, err := c.auth.Issue(invite.GameID, player2.ID)
	if err != nil {
		return nil, err
	}

	var game *model.Game
	err = c.mutate(ctx, invite.GameID, func(tx *storage.Tx) error {
		g := tx.Game()
		if g.Status != model.GameStatusPending || g.Player2ID != invite.PlayerID {
			return model.ErrInvalidState
		}

		g.Status = model.GameStatusPendingPositions
		g.UpdatedAt = c.clock.Now()
		tx.PutGame(g)

		p := *player2
		p.TokenFingerprint = fingerprint
		tx.SavePlayer(&p)
		tx.DeleteInvite(invite.ID)

		game = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("invite accepted",
		slog.String("game_id", string(game.ID)),
		slog.String("player_id", string(player2.ID)),
	)
	return &AcceptResult{Game: game, Player2: creds}, nil
}

// SetPositions records a player's fleet. A player may resubmit while the game
// is still waiting for positions. The game starts once both fleets are set.
func (c *Controller) SetPositions(ctx context.Context, gameID model.GameID, playerID model.PlayerID, token string, positions model.Fleet) (*model.Game, error) {
	player, err := c.auth.Authenticate(ctx, gameID, playerID, token)
	if err != nil {
		return nil, err
	}

	var game *model.Game
	err = c.mutate(ctx, gameID, func(tx *storage.Tx) error {
		g := tx.Game()
		if !g.HasPlayer(player.ID) {
			return model.ErrUnauthorized
		}
		if g.Status != model.GameStatusPendingPositions {
			return model.ErrInvalidState
		}
		if err := fleet.Validate(positions); err != nil {
			return err
		}

		g.SetPositions(player.ID, positions)
		if g.BothPositionsSet() {
			g.Status = model.GameStatusInProgress
		}
		g.UpdatedAt = c.clock.Now()
		tx.PutGame(g)

		game = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("positions set",
		slog.String("game_id", string(gameID)),
		slog.String("player_id", string(playerID)),
		slog.String("status", string(game.Status)),
	)
	return game, nil
}

// MakeMove fires a shot for the player. A miss passes the turn to the
// opponent; a hit keeps the turn with the shooter.
func (c *Controller) MakeMove(ctx context.Context, gameID model.GameID, playerID model.PlayerID, token string, cell model.Cell) (*MoveResult, error) {
	player, err := c.auth.Authenticate(ctx, gameID, playerID, token)
	if err != nil {
		return nil, err
	}
	if !cell.InBounds() {
		return nil, model.ErrInvalidCell
	}

	var result *MoveResult
	err = c.mutate(ctx, gameID, func(tx *storage.Tx) error {
		g := tx.Game()
		if !g.HasPlayer(player.ID) {
			return model.ErrUnauthorized
		}
		if g.Status != model.GameStatusInProgress {
			return model.ErrInvalidState
		}
		if g.PlayerIDTurn != player.ID {
			return model.ErrNotYourTurn
		}
		moves := tx.Moves()
		if model.HasShot(moves, player.ID, cell) {
			return model.ErrDuplicateShot
		}

		opponent := g.OpponentOf(player.ID)
		outcome := resolver.Resolve(g.PositionsOf(opponent), model.MovesBy(moves, player.ID), cell)

		now := c.clock.Now()
		move := tx.AppendMove(model.Move{
			ID:        model.MoveID(uuid.NewString()),
			PlayerID:  player.ID,
			Cell:      cell,
			Hit:       outcome.Hit,
			CreatedAt: now,
		})
		if !outcome.Hit {
			g.PlayerIDTurn = opponent
		}

		winner, won := resolver.CheckWinner(g, tx.Moves())
		if won {
			g.Status = model.GameStatusFinished
			g.PlayerIDWinner = winner
		}
		g.UpdatedAt = now
		tx.PutGame(g)

		result = &MoveResult{
			Move:         move,
			ShipJustSunk: outcome.ShipJustSunk,
			GameOver:     won,
			WinnerID:     winner,
			Game:         g,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.metrics.MoveResolved(result.Move.Hit)
	c.logger.Debug("move made",
		slog.String("game_id", string(gameID)),
		slog.String("player_id", string(playerID)),
		slog.Int("x", cell.X),
		slog.Int("y", cell.Y),
		slog.Bool("hit", result.Move.Hit),
		slog.String("ship_sunk", string(result.ShipJustSunk)),
	)
	if result.GameOver {
		c.metrics.GameFinished(metrics.DetectedByMove)
		c.logger.Info("game finished",
			slog.String("game_id", string(gameID)),
			slog.String("winner_id", string(result.WinnerID)),
			slog.String("detected_by", metrics.DetectedByMove),
		)
	}
	return result, nil
}

// FinishIfWon re-evaluates the win condition and records the winner if the
// game is not yet marked finished. It returns the winner, if any, and whether
// this call performed the write. Calling it on a finished game is a no-op.
func (c *Controller) FinishIfWon(ctx context.Context, gameID model.GameID) (model.PlayerID, bool, error) {
	var winner model.PlayerID
	var finishedNow bool
	err := c.mutate(ctx, gameID, func(tx *storage.Tx) error {
		g := tx.Game()
		w, won := resolver.CheckWinner(g, tx.Moves())
		winner, finishedNow = w, false
		if !won || g.Status == model.GameStatusFinished {
			return nil
		}

		g.Status = model.GameStatusFinished
		g.PlayerIDWinner = w
		g.UpdatedAt = c.clock.Now()
		tx.PutGame(g)
		finishedNow = true
		return nil
	})
	if err != nil {
		return "", false, err
	}

	if finishedNow {
		c.metrics.GameFinished(metrics.DetectedBySync)
		c.logger.Info("game finished",
			slog.String("game_id", string(gameID)),
			slog.String("winner_id", string(winner)),
			slog.String("detected_by", metrics.DetectedBySync),
		)
	}
	return winner, finishedNow, nil
}

// PostWinnerMessage lets the winner of a finished game record a message
func (c *Controller) PostWinnerMessage(ctx context.Context, gameID model.GameID, playerID model.PlayerID, token string, text string) (*model.Game, error) {
	player, err := c.auth.Authenticate(ctx, gameID, playerID, token)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	var game *model.Game
	err = c.mutate(ctx, gameID, func(tx *storage.Tx) error {
		g := tx.Game()
		if !g.HasPlayer(player.ID) {
			return model.ErrUnauthorized
		}
		if g.Status != model.GameStatusFinished {
			return model.ErrInvalidState
		}
		if g.PlayerIDWinner != player.ID {
			return model.ErrUnauthorized
		}
		if err := validateMessage(text); err != nil {
			return err
		}

		g.WinnerMessage = text
		g.UpdatedAt = c.clock.Now()
		tx.PutGame(g)
		game = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return game, nil
}

func validateMessage(text string) error {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return fmt.Errorf("%w: message is empty", model.ErrInvalidMessage)
	}
	if n > MaxWinnerMessageLength {
		return fmt.Errorf("%w: message exceeds %d characters", model.ErrInvalidMessage, MaxWinnerMessageLength)
	}
	return nil
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, gameID)
}

// GetPlayer retrieves a player by ID
func (c *Controller) GetPlayer(ctx context.Context, playerID model.PlayerID) (*model.Player, error) {
	return c.storage.GetPlayer(ctx, playerID)
}

// DeleteGame removes a game with its moves, invites and players
func (c *Controller) DeleteGame(ctx context.Context, gameID model.GameID) error {
	return c.sequencer.Do(ctx, gameID, func() error {
		ctx := context.WithoutCancel(ctx)

		game, err := c.storage.GetGame(ctx, gameID)
		if err != nil {
			return err
		}

		invites, err := c.storage.ListInvitesForGame(ctx, gameID)
		if err != nil {
			return err
		}
		var errs []error
		for _, invite := range invites {
			errs = append(errs, c.storage.DeleteInvite(ctx, invite.ID))
		}
		errs = append(errs,
			c.storage.DeletePlayer(ctx, game.Player1ID),
			c.storage.DeletePlayer(ctx, game.Player2ID),
			c.storage.DeleteGame(ctx, gameID),
		)
		if err := errors.Join(errs...); err != nil {
			return err
		}

		c.logger.Info("game deleted", slog.String("game_id", string(gameID)))
		return nil
	})
}

// mutate runs fn in a storage transaction on the game's mailbox.
// Once queued the mutation is not cancelled by ctx.
func (c *Controller) mutate(ctx context.Context, gameID model.GameID, fn func(tx *storage.Tx) error) error {
	return c.sequencer.Do(ctx, gameID, func() error {
		return c.storage.Transact(context.WithoutCancel(ctx), gameID, fn)
	})
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateGame(ctx context.Context, player1Name, player2Name string) (*CreateResult, error)
	CreateGameAgainst(ctx context.Context, player1Name string, opponent *model.Player) (*CreateResult, error)
	AcceptInvite(ctx context.Context, inviteID model.InviteID) (*AcceptResult, error)
	SetPositions(ctx context.Context, gameID model.GameID, playerID model.PlayerID, token string, positions model.Fleet) (*model.Game, error)
	MakeMove(ctx context.Context, gameID model.GameID, playerID model.PlayerID, token string, cell model.Cell) (*MoveResult, error)
	FinishIfWon(ctx context.Context, gameID model.GameID) (model.PlayerID, bool, error)
	PostWinnerMessage(ctx context.Context, gameID model.GameID, playerID model.PlayerID, token string, text string) (*model.Game, error)
	GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error)
	GetPlayer(ctx context.Context, playerID model.PlayerID) (*model.Player, error)
	DeleteGame(ctx context.Context, gameID model.GameID) error
}

var _ ControllerInterface = (*Controller)(nil)
