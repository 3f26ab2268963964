package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mcoot/battleship-go/internal/api/middleware"
	"github.com/mcoot/battleship-go/internal/api/response"
	"github.com/mcoot/battleship-go/internal/api/sse"
	"github.com/mcoot/battleship-go/internal/api/ws"
	"github.com/mcoot/battleship-go/internal/metrics"
	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/services/view"
)

// feed receives encoded projections and the end of the watch
type feed interface {
	Snapshot(data []byte)
	End(reason string)
}

// StreamHandler serves live projection feeds over SSE and WebSocket
type StreamHandler struct {
	viewService *view.Service
	hubManager  *sse.HubManager
	metrics     *metrics.Metrics
	upgrader    *websocket.Upgrader
	keepalive   time.Duration
	logger      *slog.Logger
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(
	viewService *view.Service,
	hubManager *sse.HubManager,
	m *metrics.Metrics,
	upgrader *websocket.Upgrader,
	keepalive time.Duration,
	logger *slog.Logger,
) *StreamHandler {
	if upgrader == nil {
		upgrader = ws.NewUpgrader("")
	}
	return &StreamHandler{
		viewService: viewService,
		hubManager:  hubManager,
		metrics:     m,
		upgrader:    upgrader,
		keepalive:   keepalive,
		logger:      logger.With(slog.String("component", "stream-handler")),
	}
}

// Events handles GET /api/v1/games/{id}/events
func (h *StreamHandler) Events(w http.ResponseWriter, r *http.Request) {
	creds := middleware.GetCredentials(r.Context())
	gameID := model.GameID(mux.Vars(r)["id"])

	client := sse.NewClient(creds.PlayerID)

	stop, err := h.watch(r, gameID, creds, client)
	if err != nil {
		WriteError(w, err)
		return
	}
	defer stop()

	h.metrics.StreamClientConnected()
	defer h.metrics.StreamClientDisconnected()

	sse.ServeSSE(w, r, h.hubManager.GetOrCreateHub(gameID), client, h.keepalive)
}

// WebSocket handles GET /api/v1/games/{id}/ws
func (h *StreamHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	creds := middleware.GetCredentials(r.Context())
	gameID := model.GameID(mux.Vars(r)["id"])

	client := ws.NewClient(creds.PlayerID, h.logger)

	// Authenticated by the watch before the upgrade so failures are plain HTTP errors
	stop, err := h.watch(r, gameID, creds, client)
	if err != nil {
		WriteError(w, err)
		return
	}
	defer stop()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
		return
	}

	h.metrics.StreamClientConnected()
	defer h.metrics.StreamClientDisconnected()

	// A hijacked connection outlives its request context, so end it explicitly
	go func() {
		<-r.Context().Done()
		client.End("server shutting down")
	}()

	client.Run(conn)
}

// watch feeds the viewer's projections into f until the game goes away
func (h *StreamHandler) watch(r *http.Request, gameID model.GameID, creds middleware.Credentials, f feed) (func(), error) {
	return h.viewService.Watch(r.Context(), gameID, creds.PlayerID, creds.Token, func(p *view.Projection, err error) {
		if err != nil {
			reason := "watch failed"
			if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrUnauthorized) {
				reason = "game deleted"
			}
			f.End(reason)
			return
		}

		data, err := json.Marshal(response.ProjectionFromView(p))
		if err != nil {
			h.logger.Error("failed to encode projection",
				slog.String("game_id", string(gameID)),
				slog.String("error", err.Error()),
			)
			return
		}
		f.Snapshot(data)
	})
}
