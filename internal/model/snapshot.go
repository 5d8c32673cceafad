package model

import "time"

// PlayerState is a player merged with its engine score and derived stats
type PlayerState struct {
	ID           PlayerID    `json:"id"`
	DisplayName  string      `json:"display_name"`
	Team         Team        `json:"team,omitempty"`
	IsHost       bool        `json:"is_host"`
	Disconnected bool        `json:"disconnected"`
	Remaining    *int        `json:"remaining,omitempty"`
	AwaitingIn   bool        `json:"awaiting_in,omitempty"`
	Marks        map[int]int `json:"marks,omitempty"`
	Points       *int        `json:"points,omitempty"`
	LegsWon      int         `json:"legs_won"`
	SetsWon      int         `json:"sets_won"`
	Stats        PlayerStats `json:"stats"`
}

// SpectatorState is a spectator as shown in snapshots
type SpectatorState struct {
	ID           PlayerID `json:"id"`
	DisplayName  string   `json:"display_name"`
	Disconnected bool     `json:"disconnected"`
}

// RoomState is the full denormalized state sent to every room member after
// each mutation. Clients replace their copy wholesale.
type RoomState struct {
	Version            int64            `json:"version"`
	RoomID             RoomID           `json:"room_id"`
	Name               string           `json:"name"`
	HostID             PlayerID         `json:"host_id"`
	Ruleset            RulesetKind      `json:"ruleset"`
	Options            RulesetOptions   `json:"options"`
	TeamMode           TeamMode         `json:"team_mode"`
	MaxPlayers         int              `json:"max_players"`
	HasPassword        bool             `json:"has_password"`
	GameStatus         GameStatus       `json:"game_status"`
	Players            []PlayerState    `json:"players"`
	Spectators         []SpectatorState `json:"spectators"`
	CurrentPlayerIndex int              `json:"current_player_index"`
	CurrentPlayerID    PlayerID         `json:"current_player_id,omitempty"`
	DartsInTurn        int              `json:"darts_in_turn"`
	PendingQuery       *Query           `json:"pending_query,omitempty"`
	LegsWon            map[PlayerID]int `json:"legs_won"`
	SetsWon            map[PlayerID]int `json:"sets_won"`
	SetNumber          int              `json:"set_number"`
	LegNumber          int              `json:"leg_number"`
	LastThrow          *ThrowRecord     `json:"last_throw,omitempty"`
	LegWinner          PlayerID         `json:"leg_winner,omitempty"`
	Winner             PlayerID         `json:"winner,omitempty"`
	Forfeit            bool             `json:"forfeit,omitempty"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// LegWon is the transient notification sent when a leg is decided
type LegWon struct {
	RoomID      RoomID           `json:"room_id"`
	LegWinner   PlayerID         `json:"leg_winner"`
	SetNumber   int              `json:"set_number"`
	LegNumber   int              `json:"leg_number"`
	NextPlayer  PlayerID         `json:"next_player,omitempty"`
	LegsWon     map[PlayerID]int `json:"legs_won"`
	SetsWon     map[PlayerID]int `json:"sets_won"`
	MatchWinner PlayerID         `json:"match_winner,omitempty"`
}
