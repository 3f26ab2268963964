package sse

import (
	"encoding/json"
	"log/slog"

	"github.com/mcoot/battleship-go/internal/model"
)

// MoveEvent is the fog-safe summary of a shot sent to every viewer
type MoveEvent struct {
	PlayerID string `json:"player_id"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Hit      bool   `json:"hit"`
	Seq      int    `json:"seq"`
}

// Broadcaster handles broadcasting game-wide updates to SSE clients
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// BroadcastMove tells every viewer of the game where a shot landed
func (b *Broadcaster) BroadcastMove(move model.Move) {
	hub := b.hubManager.GetHub(move.GameID)
	if hub == nil {
		return
	}

	data, err := json.Marshal(MoveEvent{
		PlayerID: string(move.PlayerID),
		X:        move.Cell.X,
		Y:        move.Cell.Y,
		Hit:      move.Hit,
		Seq:      move.Seq,
	})
	if err != nil {
		b.logger.Error("sse failed to encode move",
			slog.String("game_id", string(move.GameID)),
			slog.String("error", err.Error()))
		return
	}
	hub.BroadcastEvent(EventMove, string(data))
}

// GameDeleted disconnects every viewer of a deleted game
func (b *Broadcaster) GameDeleted(gameID model.GameID) {
	b.hubManager.RemoveHub(gameID)
}
