package model

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every error returned by the game core matches exactly one
// of these roots with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidState  = errors.New("invalid game state")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrDuplicateShot = errors.New("cell already shot")
	ErrInvalidFleet  = errors.New("invalid fleet")
	ErrNameCollision = errors.New("player names must differ")
)

var (
	// Not found errors
	ErrGameNotFound   = fmt.Errorf("game %w", ErrNotFound)
	ErrPlayerNotFound = fmt.Errorf("player %w", ErrNotFound)
	ErrInviteNotFound = fmt.Errorf("game invite %w", ErrNotFound)

	// Input errors
	ErrInvalidCell    = errors.New("cell is outside the board")
	ErrNameRequired   = errors.New("player name is required")
	ErrInvalidMessage = errors.New("invalid winner message")
	ErrUnknownBot     = errors.New("unknown bot strategy")
)
