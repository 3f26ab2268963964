package request

import "github.com/mcoot/battleship-go/internal/model"

// CreateGameRequest is the request body for creating a two-player game
type CreateGameRequest struct {
	Player1Name string `json:"player1_name"`
	Player2Name string `json:"player2_name"`
}

// CreateBotGameRequest is the request body for creating a game against a bot
type CreateBotGameRequest struct {
	PlayerName string `json:"player_name"`
	Strategy   string `json:"strategy,omitempty"`
}

// SetPositionsRequest is the request body for submitting a fleet
type SetPositionsRequest struct {
	Positions model.Fleet `json:"positions"`
}

// MoveRequest is the request body for firing a shot
type MoveRequest struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

// WinnerMessageRequest is the request body for posting the winner's message
type WinnerMessageRequest struct {
	Message string `json:"message"`
}
