package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/battleship-go/internal/api/handler"
	"github.com/mcoot/battleship-go/internal/api/middleware"
	"github.com/mcoot/battleship-go/internal/api/response"
	"github.com/mcoot/battleship-go/internal/api/sse"
	"github.com/mcoot/battleship-go/internal/api/ws"
	"github.com/mcoot/battleship-go/internal/metrics"
	"github.com/mcoot/battleship-go/internal/services/bot"
	"github.com/mcoot/battleship-go/internal/services/game"
	"github.com/mcoot/battleship-go/internal/services/view"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	GameController *game.Controller
	ViewService    *view.Service
	BotService     *bot.Service     // optional
	HubManager     *sse.HubManager
	Metrics        *metrics.Metrics // optional, /metrics is 404 without it
	AllowedOrigin  string           // WebSocket origin check, empty allows any
	SSEKeepalive   time.Duration    // zero uses sse.DefaultKeepalive
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	gameHandler := handler.NewGameHandler(cfg.GameController, cfg.ViewService, cfg.BotService, cfg.HubManager, cfg.Logger)
	streamHandler := handler.NewStreamHandler(cfg.ViewService, cfg.HubManager, cfg.Metrics, ws.NewUpgrader(cfg.AllowedOrigin), cfg.SSEKeepalive, cfg.Logger)

	r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))
	api.Use(middleware.ExtractCredentials)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Open routes: these hand out credentials
	api.HandleFunc("/games", gameHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/games/bot", gameHandler.CreateBot).Methods(http.MethodPost)
	api.HandleFunc("/invites/{id}/accept", gameHandler.AcceptInvite).Methods(http.MethodPost)

	// Player routes, authenticated by the game core
	api.HandleFunc("/games/{id}", gameHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/positions", gameHandler.SetPositions).Methods(http.MethodPut)
	api.HandleFunc("/games/{id}/moves", gameHandler.MakeMove).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/winner-message", gameHandler.PostWinnerMessage).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/events", streamHandler.Events).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/ws", streamHandler.WebSocket).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok"})
}
