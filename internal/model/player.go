package model

import "time"

// PlayerID is the stable identity of a player within a room. It survives
// reconnects, unlike ConnectionID.
type PlayerID string

// ConnectionID identifies the client connection currently bound to a player
type ConnectionID string

// Team identifies a side in doubles play
type Team string

const (
	TeamNone Team = ""
	TeamA    Team = "A"
	TeamB    Team = "B"
)

// Player is a room member, either in the player list or a spectator
type Player struct {
	ID           PlayerID     `json:"id"`
	ConnectionID ConnectionID `json:"connection_id"`
	DisplayName  string       `json:"display_name"`
	Team         Team         `json:"team,omitempty"`
	Disconnected bool         `json:"disconnected"`
	JoinedAt     time.Time    `json:"joined_at"`
}

// Session binds an identity token to a player in a room
type Session struct {
	Token        string       `json:"token"`
	RoomID       RoomID       `json:"room_id"`
	PlayerID     PlayerID     `json:"player_id"`
	ConnectionID ConnectionID `json:"connection_id"`
	CreatedAt    time.Time    `json:"created_at"`
}
