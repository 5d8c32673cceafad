package model

import (
	"maps"
	"slices"
	"time"
)

// MatchStatus is the lifecycle state of a match
type MatchStatus string

const (
	MatchActive   MatchStatus = "active"
	MatchFinished MatchStatus = "finished"
)

// CricketTargets are the numbers that count in Cricket, 25 being the bull
var CricketTargets = []int{15, 16, 17, 18, 19, 20, 25}

// LegState is the ruleset engine state for the leg being played
type LegState struct {
	Order        []PlayerID               `json:"order"`
	CurrentIndex int                      `json:"current_index"`
	DartsInTurn  int                      `json:"darts_in_turn"`
	Remaining    map[PlayerID]int         `json:"remaining,omitempty"`
	Marks        map[PlayerID]map[int]int `json:"marks,omitempty"`
	Points       map[PlayerID]int         `json:"points,omitempty"`
	Opened       map[PlayerID]bool        `json:"opened,omitempty"` // double or master in only
	Winner       PlayerID                 `json:"winner,omitempty"`
}

// HasOpened reports whether the player's visits count toward their score
func (l *LegState) HasOpened(id PlayerID) bool {
	return l.Opened == nil || l.Opened[id]
}

// CurrentPlayer returns the player whose turn it is
func (l *LegState) CurrentPlayer() PlayerID {
	if len(l.Order) == 0 {
		return ""
	}
	return l.Order[l.CurrentIndex]
}

// Advance moves the turn to the next player and clears the dart counter
func (l *LegState) Advance() {
	if len(l.Order) == 0 {
		return
	}
	l.CurrentIndex = (l.CurrentIndex + 1) % len(l.Order)
	l.DartsInTurn = 0
}

// Clone returns a deep copy of the leg state
func (l LegState) Clone() LegState {
	c := l
	c.Order = slices.Clone(l.Order)
	c.Remaining = maps.Clone(l.Remaining)
	c.Points = maps.Clone(l.Points)
	c.Opened = maps.Clone(l.Opened)
	if l.Marks != nil {
		c.Marks = make(map[PlayerID]map[int]int, len(l.Marks))
		for id, m := range l.Marks {
			c.Marks[id] = maps.Clone(m)
		}
	}
	return c
}

// Match is the scored contest running in a room
type Match struct {
	ID         string           `json:"id"`
	RoomID     RoomID           `json:"room_id"`
	Ruleset    RulesetKind      `json:"ruleset"`
	Options    RulesetOptions   `json:"options"`
	Order      []PlayerID       `json:"order"`
	Leg        LegState         `json:"leg"`
	SetNumber  int              `json:"set_number"`
	LegNumber  int              `json:"leg_number"`
	LegStarter int              `json:"leg_starter"`
	LegsWon    map[PlayerID]int `json:"legs_won"`
	SetsWon    map[PlayerID]int `json:"sets_won"`
	Throws     []ThrowRecord    `json:"throws"`
	Pending    *Query           `json:"pending,omitempty"`
	Status     MatchStatus      `json:"status"`
	Winner     PlayerID         `json:"winner,omitempty"`
	Forfeit    bool             `json:"forfeit,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
}

// Clone returns a deep copy of the match
func (m *Match) Clone() *Match {
	c := *m
	c.Order = slices.Clone(m.Order)
	c.Leg = m.Leg.Clone()
	c.LegsWon = maps.Clone(m.LegsWon)
	c.SetsWon = maps.Clone(m.SetsWon)
	c.Throws = slices.Clone(m.Throws)
	if m.Pending != nil {
		q := *m.Pending
		c.Pending = &q
	}
	if m.FinishedAt != nil {
		t := *m.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}

// LastThrow returns the most recent throw record, or nil
func (m *Match) LastThrow() *ThrowRecord {
	if len(m.Throws) == 0 {
		return nil
	}
	return &m.Throws[len(m.Throws)-1]
}

// IndexOf returns the position of a player in the base turn order, or -1
func (m *Match) IndexOf(id PlayerID) int {
	return slices.Index(m.Order, id)
}
