package storage

import (
	"time"

	"github.com/mcoot/battleship-go/internal/model"
)

// Tx stages writes against a consistent snapshot of one game.
// Backends build a Tx in Transact and apply the staged writes on commit.
type Tx struct {
	game     *model.Game
	moves    []model.Move
	appended []model.Move
	players  []*model.Player
	invites  []model.InviteID
	gameSet  bool
}

// NewTx creates a transaction over the given snapshot. Backends pass copies.
func NewTx(game *model.Game, moves []model.Move) *Tx {
	return &Tx{game: game, moves: moves}
}

// Game returns a copy of the game including any staged update
func (t *Tx) Game() *model.Game {
	return t.game.Clone()
}

// Moves returns the committed moves followed by any staged ones
func (t *Tx) Moves() []model.Move {
	result := make([]model.Move, 0, len(t.moves)+len(t.appended))
	result = append(result, t.moves...)
	return append(result, t.appended...)
}

// PutGame stages an update of the game record
func (t *Tx) PutGame(game *model.Game) {
	t.game = game.Clone()
	t.gameSet = true
}

// AppendMove stages a new move and returns it with its sequence number assigned
func (t *Tx) AppendMove(move model.Move) model.Move {
	move.GameID = t.game.ID
	move.Seq = len(t.moves) + len(t.appended) + 1
	t.appended = append(t.appended, move)
	return move
}

// SavePlayer stages a player write
func (t *Tx) SavePlayer(player *model.Player) {
	p := *player
	t.players = append(t.players, &p)
}

// DeleteInvite stages an invite deletion
func (t *Tx) DeleteInvite(id model.InviteID) {
	t.invites = append(t.invites, id)
}

// Dirty returns true if any write was staged
func (t *Tx) Dirty() bool {
	return t.gameSet || len(t.appended) > 0 || len(t.players) > 0 || len(t.invites) > 0
}

// StagedGame returns the updated game, or nil if the game was not changed
func (t *Tx) StagedGame() *model.Game {
	if !t.gameSet {
		return nil
	}
	return t.game.Clone()
}

// StagedMoves returns the moves to append
func (t *Tx) StagedMoves() []model.Move {
	return t.appended
}

// StagedPlayers returns the players to write
func (t *Tx) StagedPlayers() []*model.Player {
	return t.players
}

// StagedInviteDeletes returns the invites to delete
func (t *Tx) StagedInviteDeletes() []model.InviteID {
	return t.invites
}

// Events returns the change events a commit of this transaction produces
func (t *Tx) Events(at time.Time) []model.ChangeEvent {
	var events []model.ChangeEvent
	for range t.appended {
		events = append(events, model.ChangeEvent{GameID: t.game.ID, Kind: model.ChangeMoveAdded, At: at})
	}
	if t.gameSet {
		events = append(events, model.ChangeEvent{GameID: t.game.ID, Kind: model.ChangeGameUpdated, At: at})
	}
	return events
}
