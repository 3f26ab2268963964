package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/storage"
)

// Subscribe listens on the game's Pub/Sub channel. The subscription is
// confirmed before Subscribe returns, so no event published afterwards is missed.
func (s *Storage) Subscribe(ctx context.Context, gameID model.GameID, fn storage.ChangeHandler) (func(), error) {
	pubsub := s.client.Subscribe(ctx, changesChannel(gameID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	var once sync.Once
	done := make(chan struct{})
	unsubscribe := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}

	messages := pubsub.Channel()
	go func() {
		for {
			select {
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event model.ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				fn(event)
			case <-ctx.Done():
				unsubscribe()
				return
			case <-done:
				return
			}
		}
	}()

	return unsubscribe, nil
}

// publish announces a committed change. The write has already succeeded, so a
// failed publish is logged and only delays viewers until their next event.
func (s *Storage) publish(ctx context.Context, event model.ChangeEvent) {
	data, err := json.Marshal(event)
	if err == nil {
		err = s.client.Publish(ctx, changesChannel(event.GameID), data).Err()
	}
	if err != nil {
		s.logger.Warn("failed to publish change",
			slog.String("game_id", string(event.GameID)),
			slog.String("kind", string(event.Kind)),
			slog.String("error", err.Error()),
		)
	}
}
