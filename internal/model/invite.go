package model

import "time"

// InviteID uniquely identifies a game invite
type InviteID string

// GameTypeBattleship is the only game type invites are issued for
const GameTypeBattleship = "battleship"

// Invite is a one-time pointer letting the second player join a pending game
type Invite struct {
	ID        InviteID
	PlayerID  PlayerID
	GameID    GameID
	GameType  string
	CreatedAt time.Time
}
