package response

import (
	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/services/auth"
	"github.com/mcoot/battleship-go/internal/services/bot"
	"github.com/mcoot/battleship-go/internal/services/game"
	"github.com/mcoot/battleship-go/internal/services/view"
)

// Credentials are handed to a player once; the token is not retrievable later
type Credentials struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
	Token    string `json:"token"`
}

// CredentialsFromAuth converts auth.Credentials
func CredentialsFromAuth(c auth.Credentials) Credentials {
	return Credentials{
		GameID:   string(c.GameID),
		PlayerID: string(c.PlayerID),
		Token:    c.Token,
	}
}

// CreateGameResponse is the response for creating a two-player game
type CreateGameResponse struct {
	GameID   string      `json:"game_id"`
	Player   Credentials `json:"player"`
	InviteID string      `json:"invite_id"`
}

// CreateGameResponseFromResult converts a game.CreateResult
func CreateGameResponseFromResult(r *game.CreateResult) CreateGameResponse {
	return CreateGameResponse{
		GameID:   string(r.Game.ID),
		Player:   CredentialsFromAuth(r.Player1),
		InviteID: string(r.InviteID),
	}
}

// CreateBotGameResponse is the response for creating a game against a bot
type CreateBotGameResponse struct {
	GameID string      `json:"game_id"`
	Player Credentials `json:"player"`
	BotID  string      `json:"bot_id"`
}

// CreateBotGameResponseFromResult converts a bot.GameResult
func CreateBotGameResponseFromResult(r *bot.GameResult) CreateBotGameResponse {
	return CreateBotGameResponse{
		GameID: string(r.Game.ID),
		Player: CredentialsFromAuth(r.Player),
		BotID:  string(r.BotID),
	}
}

// AcceptInviteResponse is the response for accepting an invite
type AcceptInviteResponse struct {
	GameID string      `json:"game_id"`
	Player Credentials `json:"player"`
}

// AcceptInviteResponseFromResult converts a game.AcceptResult
func AcceptInviteResponseFromResult(r *game.AcceptResult) AcceptInviteResponse {
	return AcceptInviteResponse{
		GameID: string(r.Game.ID),
		Player: CredentialsFromAuth(r.Player2),
	}
}

// Shot is a fired cell as seen by either player
type Shot struct {
	X   int  `json:"x"`
	Y   int  `json:"y"`
	Hit bool `json:"hit"`
}

// Projection is a player's view of a game
type Projection struct {
	GameID                  string            `json:"game_id"`
	Status                  string            `json:"status"`
	PlayerID                string            `json:"player_id"`
	OpponentID              string            `json:"opponent_id"`
	OpponentName            string            `json:"opponent_name"`
	PlayerIDTurn            string            `json:"player_id_turn"`
	IsMyTurn                bool              `json:"is_my_turn"`
	PlayerIDWinner          string            `json:"player_id_winner,omitempty"`
	WinnerMessage           string            `json:"winner_message,omitempty"`
	PositionsAreSet         bool              `json:"positions_are_set"`
	OpponentPositionsAreSet bool              `json:"opponent_positions_are_set"`
	Positions               map[string][]Cell `json:"positions"`
	Moves                   []Shot            `json:"moves"`
	OpponentMoves           []Shot            `json:"opponent_moves"`
	ShipsSunk               []string          `json:"ships_sunk"`
	OpponentShipsSunk       []string          `json:"opponent_ships_sunk"`
}

// Cell is a board coordinate
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ProjectionFromView converts a view.Projection
func ProjectionFromView(p *view.Projection) Projection {
	positions := make(map[string][]Cell, len(p.Positions))
	for kind, cells := range p.Positions {
		converted := make([]Cell, len(cells))
		for i, c := range cells {
			converted[i] = Cell{X: c.X, Y: c.Y}
		}
		positions[string(kind)] = converted
	}

	return Projection{
		GameID:                  string(p.GameID),
		Status:                  string(p.Status),
		PlayerID:                string(p.PlayerID),
		OpponentID:              string(p.OpponentID),
		OpponentName:            p.OpponentName,
		PlayerIDTurn:            string(p.PlayerIDTurn),
		IsMyTurn:                p.IsMyTurn,
		PlayerIDWinner:          string(p.PlayerIDWinner),
		WinnerMessage:           p.WinnerMessage,
		PositionsAreSet:         p.PositionsAreSet,
		OpponentPositionsAreSet: p.OpponentPositionsAreSet,
		Positions:               positions,
		Moves:                   shotsFromView(p.Moves),
		OpponentMoves:           shotsFromView(p.OpponentMoves),
		ShipsSunk:               kinds(p.ShipsSunk),
		OpponentShipsSunk:       kinds(p.OpponentShipsSunk),
	}
}

func shotsFromView(shots []view.Shot) []Shot {
	result := make([]Shot, len(shots))
	for i, s := range shots {
		result[i] = Shot{X: s.Cell.X, Y: s.Cell.Y, Hit: s.Hit}
	}
	return result
}

func kinds(ks []model.ShipKind) []string {
	result := make([]string, len(ks))
	for i, k := range ks {
		result[i] = string(k)
	}
	return result
}

// Move is a recorded shot
type Move struct {
	ID       string `json:"id"`
	PlayerID string `json:"player_id"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Hit      bool   `json:"hit"`
	Seq      int    `json:"seq"`
}

// MoveFromModel converts a model.Move
func MoveFromModel(m model.Move) Move {
	return Move{
		ID:       string(m.ID),
		PlayerID: string(m.PlayerID),
		X:        m.Cell.X,
		Y:        m.Cell.Y,
		Hit:      m.Hit,
		Seq:      m.Seq,
	}
}

// MoveResponse is the response for firing a shot
type MoveResponse struct {
	Move         Move   `json:"move"`
	ShipJustSunk string `json:"ship_just_sunk,omitempty"`
	GameOver     bool   `json:"game_over"`
	WinnerID     string `json:"winner_id,omitempty"`
}

// MoveResponseFromResult converts a game.MoveResult
func MoveResponseFromResult(r *game.MoveResult) MoveResponse {
	return MoveResponse{
		Move:         MoveFromModel(r.Move),
		ShipJustSunk: string(r.ShipJustSunk),
		GameOver:     r.GameOver,
		WinnerID:     string(r.WinnerID),
	}
}

// HealthResponse is the response for the health check
type HealthResponse struct {
	Status string `json:"status"`
}
