package redis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
	logger *slog.Logger
}

// New creates a new Redis storage instance
func New(cfg Config, logger *slog.Logger) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg, logger), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config, logger *slog.Logger) *Storage {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Storage{
		client: client,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "redis-storage")),
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// reader is the read side shared by *redis.Client and *redis.Tx
type reader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, playerKey(player.ID), data, s.cfg.PlayerTTL).Err()
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	return s.client.Del(ctx, playerKey(id)).Err()
}

// Invite operations

func (s *Storage) SaveInvite(ctx context.Context, invite *model.Invite) error {
	data, err := json.Marshal(invite)
	if err != nil {
		return err
	}

	indexKey := invitesForGameIndexKey(invite.GameID)

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, inviteKey(invite.ID), data, s.cfg.InviteTTL)
	pipe.SAdd(ctx, indexKey, string(invite.ID))
	if s.cfg.InviteTTL > 0 {
		pipe.Expire(ctx, indexKey, s.cfg.InviteTTL) // Keep index TTL in sync
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetInvite(ctx context.Context, id model.InviteID) (*model.Invite, error) {
	data, err := s.client.Get(ctx, inviteKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrInviteNotFound
		}
		return nil, err
	}

	var invite model.Invite
	if err := json.Unmarshal(data, &invite); err != nil {
		return nil, err
	}
	return &invite, nil
}

func (s *Storage) DeleteInvite(ctx context.Context, id model.InviteID) error {
	invite, err := s.GetInvite(ctx, id)
	if errors.Is(err, model.ErrInviteNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, inviteKey(id))
	pipe.SRem(ctx, invitesForGameIndexKey(invite.GameID), string(id))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListInvitesForGame(ctx context.Context, gameID model.GameID) ([]*model.Invite, error) {
	ids, err := s.client.SMembers(ctx, invitesForGameIndexKey(gameID)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Invite{}, nil
	}
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = inviteKey(model.InviteID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	invites := make([]*model.Invite, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Invite may have expired
		}
		var invite model.Invite
		if err := json.Unmarshal([]byte(str), &invite); err != nil {
			continue // Skip invalid data
		}
		invites = append(invites, &invite)
	}
	return invites, nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, gameKey(game.ID), data, s.cfg.GameTTL)
	pipe.SAdd(ctx, gamesIndexKey(), string(game.ID))
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	s.publish(ctx, model.ChangeEvent{GameID: game.ID, Kind: model.ChangeGameUpdated, At: time.Now()})
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return getGame(ctx, s.client, id)
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	var deleted *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, gameKey(id))
		pipe.Del(ctx, movesKey(id))
		pipe.SRem(ctx, gamesIndexKey(), string(id))
		return nil
	})
	if err != nil {
		return err
	}

	if deleted.Val() > 0 {
		s.publish(ctx, model.ChangeEvent{GameID: id, Kind: model.ChangeGameDeleted, At: time.Now()})
	}
	return nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	ids, err := s.client.SMembers(ctx, gamesIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Game{}, nil
	}
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = gameKey(model.GameID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	games := make([]*model.Game, 0, len(values))
	var expired []any
	for i, val := range values {
		str, ok := val.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}
		var game model.Game
		if err := json.Unmarshal([]byte(str), &game); err != nil {
			continue // Skip invalid data
		}
		games = append(games, &game)
	}

	// Drop index entries whose records expired by TTL
	if len(expired) > 0 {
		if err := s.client.SRem(ctx, gamesIndexKey(), expired...).Err(); err != nil {
			return nil, err
		}
	}
	return games, nil
}

// Move operations

func (s *Storage) ListMoves(ctx context.Context, gameID model.GameID, filter storage.MoveFilter) ([]model.Move, error) {
	moves, err := listMoves(ctx, s.client, gameID)
	if err != nil {
		return nil, err
	}
	var result []model.Move
	for _, m := range moves {
		if filter.Matches(m) {
			result = append(result, m)
		}
	}
	return result, nil
}

func getGame(ctx context.Context, r reader, id model.GameID) (*model.Game, error) {
	data, err := r.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func listMoves(ctx context.Context, r reader, gameID model.GameID) ([]model.Move, error) {
	values, err := r.LRange(ctx, movesKey(gameID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	moves := make([]model.Move, 0, len(values))
	for _, val := range values {
		var move model.Move
		if err := json.Unmarshal([]byte(val), &move); err != nil {
			return nil, err
		}
		moves = append(moves, move)
	}
	return moves, nil
}
