package storage

import (
	"context"
	"errors"

	"github.com/mcoot/battleship-go/internal/model"
)

// MaxTxRetries is how many times a conflicting transaction is re-run before
// Transact gives up with ErrTxConflict
const MaxTxRetries = 16

// ErrTxConflict is returned when a transaction keeps losing to concurrent writers
var ErrTxConflict = errors.New("storage transaction conflict")

// MoveFilter narrows a ListMoves query. Zero fields match everything.
type MoveFilter struct {
	PlayerID model.PlayerID
	Cell     *model.Cell
}

// Matches returns true if the move satisfies the filter
func (f MoveFilter) Matches(m model.Move) bool {
	if f.PlayerID != "" && m.PlayerID != f.PlayerID {
		return false
	}
	if f.Cell != nil && m.Cell != *f.Cell {
		return false
	}
	return true
}

// ChangeHandler receives change events for a subscribed game.
// Handlers are invoked from the writer's goroutine and must not block.
type ChangeHandler func(model.ChangeEvent)

// Storage defines the interface for data persistence
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Invite operations
	SaveInvite(ctx context.Context, invite *model.Invite) error
	GetInvite(ctx context.Context, id model.InviteID) (*model.Invite, error)
	DeleteInvite(ctx context.Context, id model.InviteID) error
	ListInvitesForGame(ctx context.Context, gameID model.GameID) ([]*model.Invite, error)

	// Game operations. DeleteGame also removes the game's moves.
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	DeleteGame(ctx context.Context, id model.GameID) error
	ListGames(ctx context.Context) ([]*model.Game, error)

	// Move operations, ordered by Seq
	ListMoves(ctx context.Context, gameID model.GameID, filter MoveFilter) ([]model.Move, error)

	// Transact runs fn against a snapshot of the game and its moves and
	// commits the writes it staged atomically. fn may be run more than once
	// and must not call back into the Storage. If fn returns an error
	// nothing is written.
	Transact(ctx context.Context, gameID model.GameID, fn func(tx *Tx) error) error

	// Subscribe registers fn for change events on a game until the returned
	// unsubscribe function is called or ctx ends
	Subscribe(ctx context.Context, gameID model.GameID, fn ChangeHandler) (func(), error)
}
