package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Every read and write copies, so callers never share state with the store.
type Storage struct {
	mu sync.RWMutex

	players map[model.PlayerID]*model.Player
	invites map[model.InviteID]*model.Invite
	games   map[model.GameID]*model.Game
	moves   map[model.GameID][]model.Move

	subMu       sync.Mutex
	subscribers map[model.GameID]map[int]storage.ChangeHandler
	nextSubID   int
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:     make(map[model.PlayerID]*model.Player),
		invites:     make(map[model.InviteID]*model.Invite),
		games:       make(map[model.GameID]*model.Game),
		moves:       make(map[model.GameID][]model.Move),
		subscribers: make(map[model.GameID]map[int]storage.ChangeHandler),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *player
	s.players[player.ID] = &p
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

// Invite operations

func (s *Storage) SaveInvite(ctx context.Context, invite *model.Invite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv := *invite
	s.invites[invite.ID] = &inv
	return nil
}

func (s *Storage) GetInvite(ctx context.Context, id model.InviteID) (*model.Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	invite, ok := s.invites[id]
	if !ok {
		return nil, model.ErrInviteNotFound
	}
	inv := *invite
	return &inv, nil
}

func (s *Storage) DeleteInvite(ctx context.Context, id model.InviteID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.invites, id)
	return nil
}

func (s *Storage) ListInvitesForGame(ctx context.Context, gameID model.GameID) ([]*model.Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var invites []*model.Invite
	for _, invite := range s.invites {
		if invite.GameID == gameID {
			inv := *invite
			invites = append(invites, &inv)
		}
	}
	sort.Slice(invites, func(i, j int) bool { return invites[i].ID < invites[j].ID })
	return invites, nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	s.games[game.ID] = game.Clone()
	s.mu.Unlock()

	s.notify(model.ChangeEvent{GameID: game.ID, Kind: model.ChangeGameUpdated, At: time.Now()})
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game.Clone(), nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	_, existed := s.games[id]
	delete(s.games, id)
	delete(s.moves, id)
	s.mu.Unlock()

	if existed {
		s.notify(model.ChangeEvent{GameID: id, Kind: model.ChangeGameDeleted, At: time.Now()})
	}
	return nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]*model.Game, 0, len(s.games))
	for _, game := range s.games {
		games = append(games, game.Clone())
	}
	sort.Slice(games, func(i, j int) bool { return games[i].ID < games[j].ID })
	return games, nil
}

// Move operations

func (s *Storage) ListMoves(ctx context.Context, gameID model.GameID, filter storage.MoveFilter) ([]model.Move, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var moves []model.Move
	for _, m := range s.moves[gameID] {
		if filter.Matches(m) {
			moves = append(moves, m)
		}
	}
	return moves, nil
}

// Transact holds the write lock for the whole of fn, so transactions never conflict
func (s *Storage) Transact(ctx context.Context, gameID model.GameID, fn func(tx *storage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx, err := s.apply(gameID, fn)
	if err != nil || tx == nil {
		return err
	}

	for _, event := range tx.Events(time.Now()) {
		s.notify(event)
	}
	return nil
}

// apply runs fn and commits its staged writes under the lock. It returns nil
// when fn staged nothing. The lock is released even if fn panics.
func (s *Storage) apply(gameID model.GameID, fn func(tx *storage.Tx) error) (*storage.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[gameID]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	moves := make([]model.Move, len(s.moves[gameID]))
	copy(moves, s.moves[gameID])

	tx := storage.NewTx(game.Clone(), moves)
	if err := fn(tx); err != nil {
		return nil, err
	}
	if !tx.Dirty() {
		return nil, nil
	}

	if g := tx.StagedGame(); g != nil {
		s.games[gameID] = g
	}
	s.moves[gameID] = append(s.moves[gameID], tx.StagedMoves()...)
	for _, p := range tx.StagedPlayers() {
		player := *p
		s.players[p.ID] = &player
	}
	for _, id := range tx.StagedInviteDeletes() {
		delete(s.invites, id)
	}
	return tx, nil
}

// Subscriptions

func (s *Storage) Subscribe(ctx context.Context, gameID model.GameID, fn storage.ChangeHandler) (func(), error) {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	if s.subscribers[gameID] == nil {
		s.subscribers[gameID] = make(map[int]storage.ChangeHandler)
	}
	s.subscribers[gameID][id] = fn
	s.subMu.Unlock()

	var once sync.Once
	stopped := make(chan struct{})
	unsubscribe := func() {
		once.Do(func() {
			close(stopped)
			s.subMu.Lock()
			defer s.subMu.Unlock()
			delete(s.subscribers[gameID], id)
			if len(s.subscribers[gameID]) == 0 {
				delete(s.subscribers, gameID)
			}
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			unsubscribe()
		case <-stopped:
		}
	}()

	return unsubscribe, nil
}

// SubscriberCount returns the number of live subscriptions for a game
func (s *Storage) SubscriberCount(gameID model.GameID) int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subscribers[gameID])
}

func (s *Storage) notify(event model.ChangeEvent) {
	s.subMu.Lock()
	handlers := make([]storage.ChangeHandler, 0, len(s.subscribers[event.GameID]))
	for _, fn := range s.subscribers[event.GameID] {
		handlers = append(handlers, fn)
	}
	s.subMu.Unlock()

	for _, fn := range handlers {
		fn(event)
	}
}
