package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player represents a game participant.
// The bearer token handed to the player is never stored, only its fingerprint.
type Player struct {
	ID               PlayerID
	Name             string
	TokenFingerprint string // Empty until a credential has been issued
	IsBot            bool
	BotStrategy      string // Only set for bots
	CreatedAt        time.Time
}

// HasCredential returns true once a token has been issued for the player
func (p *Player) HasCredential() bool {
	return p.TokenFingerprint != ""
}
