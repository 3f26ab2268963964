package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/battleship-go/internal/api/middleware"
	"github.com/mcoot/battleship-go/internal/api/request"
	"github.com/mcoot/battleship-go/internal/api/response"
	"github.com/mcoot/battleship-go/internal/api/sse"
	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/services/bot"
	"github.com/mcoot/battleship-go/internal/services/game"
	"github.com/mcoot/battleship-go/internal/services/view"
)

// GameHandler handles game endpoints
type GameHandler struct {
	gameController *game.Controller
	viewService    *view.Service
	botService     *bot.Service
	broadcaster    *sse.Broadcaster
	logger         *slog.Logger
}

// NewGameHandler creates a new game handler. botService and hubManager may be nil.
func NewGameHandler(
	gameController *game.Controller,
	viewService *view.Service,
	botService *bot.Service,
	hubManager *sse.HubManager,
	logger *slog.Logger,
) *GameHandler {
	var broadcaster *sse.Broadcaster
	if hubManager != nil {
		broadcaster = sse.NewBroadcaster(hubManager, logger)
	}
	return &GameHandler{
		gameController: gameController,
		viewService:    viewService,
		botService:     botService,
		broadcaster:    broadcaster,
		logger:         logger.With(slog.String("component", "game-handler")),
	}
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGameRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.gameController.CreateGame(r.Context(), req.Player1Name, req.Player2Name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.CreateGameResponseFromResult(result))
}

// CreateBot handles POST /api/v1/games/bot
func (h *GameHandler) CreateBot(w http.ResponseWriter, r *http.Request) {
	if h.botService == nil {
		WriteError(w, NewInvalidRequestError("bot games are not available"))
		return
	}

	var req request.CreateBotGameRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Strategy == "" {
		req.Strategy = bot.StrategyRandom
	}

	result, err := h.botService.CreateBotGame(r.Context(), req.PlayerName, req.Strategy)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.CreateBotGameResponseFromResult(result))
}

// AcceptInvite handles POST /api/v1/invites/{id}/accept
func (h *GameHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	inviteID := model.InviteID(mux.Vars(r)["id"])

	result, err := h.gameController.AcceptInvite(r.Context(), inviteID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AcceptInviteResponseFromResult(result))
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	creds := middleware.GetCredentials(r.Context())
	gameID := model.GameID(mux.Vars(r)["id"])

	p, err := h.viewService.Snapshot(r.Context(), gameID, creds.PlayerID, creds.Token)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProjectionFromView(p))
}

// SetPositions handles PUT /api/v1/games/{id}/positions
func (h *GameHandler) SetPositions(w http.ResponseWriter, r *http.Request) {
	creds := middleware.GetCredentials(r.Context())
	gameID := model.GameID(mux.Vars(r)["id"])

	var req request.SetPositionsRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Positions == nil {
		WriteError(w, NewInvalidRequestError("positions required"))
		return
	}

	if _, err := h.gameController.SetPositions(r.Context(), gameID, creds.PlayerID, creds.Token, req.Positions); err != nil {
		WriteError(w, err)
		return
	}

	h.playBot(r.Context(), gameID)
	response.NoContent(w)
}

// MakeMove handles POST /api/v1/games/{id}/moves
func (h *GameHandler) MakeMove(w http.ResponseWriter, r *http.Request) {
	creds := middleware.GetCredentials(r.Context())
	gameID := model.GameID(mux.Vars(r)["id"])

	var req request.MoveRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.X == nil || req.Y == nil {
		WriteError(w, NewInvalidRequestError("x and y are required"))
		return
	}

	result, err := h.gameController.MakeMove(r.Context(), gameID, creds.PlayerID, creds.Token, model.Cell{X: *req.X, Y: *req.Y})
	if err != nil {
		WriteError(w, err)
		return
	}
	h.broadcastMove(result.Move)

	if !result.GameOver {
		h.playBot(r.Context(), gameID)
	}

	response.Created(w, response.MoveResponseFromResult(result))
}

// PostWinnerMessage handles POST /api/v1/games/{id}/winner-message
func (h *GameHandler) PostWinnerMessage(w http.ResponseWriter, r *http.Request) {
	creds := middleware.GetCredentials(r.Context())
	gameID := model.GameID(mux.Vars(r)["id"])

	var req request.WinnerMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if _, err := h.gameController.PostWinnerMessage(r.Context(), gameID, creds.PlayerID, creds.Token, req.Message); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// playBot lets a seated bot take its turns and broadcasts its shots.
// Bot failures do not fail the human's request.
func (h *GameHandler) playBot(ctx context.Context, gameID model.GameID) {
	if h.botService == nil || !h.botService.IsBotGame(gameID) {
		return
	}

	results, err := h.botService.PlayTurns(context.WithoutCancel(ctx), gameID)
	for _, res := range results {
		h.broadcastMove(res.Move)
	}
	if err != nil {
		h.logger.Error("bot turn failed",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
	}
}

func (h *GameHandler) broadcastMove(move model.Move) {
	if h.broadcaster != nil {
		h.broadcaster.BroadcastMove(move)
	}
}
