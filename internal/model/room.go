package model

import (
	"slices"
	"time"
)

// RoomID is the short human-readable code used to join a room
type RoomID string

// GameStatus is the room-level status reported in snapshots
type GameStatus string

const (
	GameStatusWaiting  GameStatus = "waiting"  // No match, or a rematch was requested
	GameStatusActive   GameStatus = "active"   // Match in progress
	GameStatusFinished GameStatus = "finished" // Match decided, awaiting rematch
)

// Role distinguishes players from spectators
type Role string

const (
	RolePlayer    Role = "player"
	RoleSpectator Role = "spectator"
)

// TeamMode is singles or doubles
type TeamMode string

const (
	TeamModeSingles TeamMode = "singles"
	TeamModeDoubles TeamMode = "doubles"
)

// Capacity returns the maximum number of players for the team mode
func (m TeamMode) Capacity() int {
	if m == TeamModeDoubles {
		return 4
	}
	return 2
}

// Room is a group of players and spectators sharing one match at a time
type Room struct {
	ID            RoomID         `json:"id"`
	Name          string         `json:"name"`
	HostID        PlayerID       `json:"host_id"`
	Players       []Player       `json:"players"`
	Spectators    []Player       `json:"spectators"`
	Ruleset       RulesetKind    `json:"ruleset"`
	Options       RulesetOptions `json:"options"`
	TeamMode      TeamMode       `json:"team_mode"`
	MaxPlayers    int            `json:"max_players"`
	PasswordHash  string         `json:"password_hash,omitempty"`
	BullOffWinner PlayerID       `json:"bull_off_winner,omitempty"`
	Status        GameStatus     `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Clone returns a deep copy of the room
func (r *Room) Clone() *Room {
	c := *r
	c.Players = slices.Clone(r.Players)
	c.Spectators = slices.Clone(r.Spectators)
	return &c
}

// IsFull reports whether the player list is at capacity
func (r *Room) IsFull() bool {
	return len(r.Players) >= r.MaxPlayers
}

// GetPlayer returns the player with the given id, or nil
func (r *Room) GetPlayer(id PlayerID) *Player {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// GetMember returns the player or spectator with the given id and its role
func (r *Room) GetMember(id PlayerID) (*Player, Role) {
	if p := r.GetPlayer(id); p != nil {
		return p, RolePlayer
	}
	for i := range r.Spectators {
		if r.Spectators[i].ID == id {
			return &r.Spectators[i], RoleSpectator
		}
	}
	return nil, ""
}

// FindByName returns the member with the given display name and its role
func (r *Room) FindByName(name string) (*Player, Role) {
	for i := range r.Players {
		if r.Players[i].DisplayName == name {
			return &r.Players[i], RolePlayer
		}
	}
	for i := range r.Spectators {
		if r.Spectators[i].DisplayName == name {
			return &r.Spectators[i], RoleSpectator
		}
	}
	return nil, ""
}

// RemoveMember removes a player or spectator and reports its former role
func (r *Room) RemoveMember(id PlayerID) (Role, bool) {
	for i := range r.Players {
		if r.Players[i].ID == id {
			r.Players = slices.Delete(r.Players, i, i+1)
			return RolePlayer, true
		}
	}
	for i := range r.Spectators {
		if r.Spectators[i].ID == id {
			r.Spectators = slices.Delete(r.Spectators, i, i+1)
			return RoleSpectator, true
		}
	}
	return "", false
}

// TeamCount returns how many players are on the team
func (r *Room) TeamCount(team Team) int {
	n := 0
	for _, p := range r.Players {
		if p.Team == team {
			n++
		}
	}
	return n
}

// PlayerIDs returns the ids of the player list in room order
func (r *Room) PlayerIDs() []PlayerID {
	ids := make([]PlayerID, len(r.Players))
	for i, p := range r.Players {
		ids[i] = p.ID
	}
	return ids
}

// SmallerTeam returns the doubles team with fewer players, TeamA on a tie.
// Singles rooms have no teams.
func (r *Room) SmallerTeam() Team {
	if r.TeamMode != TeamModeDoubles {
		return TeamNone
	}
	if r.TeamCount(TeamB) < r.TeamCount(TeamA) {
		return TeamB
	}
	return TeamA
}

// PromoteSpectators moves spectators into free player slots in join order
// and returns the promoted ids
func (r *Room) PromoteSpectators() []PlayerID {
	var promoted []PlayerID
	for len(r.Spectators) > 0 && !r.IsFull() {
		p := r.Spectators[0]
		r.Spectators = r.Spectators[1:]
		p.Team = r.SmallerTeam()
		r.Players = append(r.Players, p)
		promoted = append(promoted, p.ID)
	}
	return promoted
}
