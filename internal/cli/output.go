package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case JoinResult:
		o.printJoinResult(v)
	case RoomState:
		o.printRoomState(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Team        string `json:"team,omitempty"`
}

// JoinResult is returned by room create and join
type JoinResult struct {
	RoomID       string     `json:"room_id"`
	Player       Player     `json:"player"`
	Role         string     `json:"role"`
	SessionToken string     `json:"session_token"`
	Reconnected  bool       `json:"reconnected"`
	State        *RoomState `json:"state"`
}

// PlayerState response type
type PlayerState struct {
	ID           string         `json:"id"`
	DisplayName  string         `json:"display_name"`
	Team         string         `json:"team,omitempty"`
	IsHost       bool           `json:"is_host"`
	Disconnected bool           `json:"disconnected"`
	Remaining    *int           `json:"remaining,omitempty"`
	Marks        map[string]int `json:"marks,omitempty"`
	Points       *int           `json:"points,omitempty"`
	LegsWon      int            `json:"legs_won"`
	SetsWon      int            `json:"sets_won"`
	Stats        PlayerStats    `json:"stats"`
}

// PlayerStats response type
type PlayerStats struct {
	DartsThrown   int     `json:"darts_thrown"`
	Average       float64 `json:"average"`
	MarksPerRound float64 `json:"marks_per_round,omitempty"`
	Max180s       int     `json:"max_180s"`
	HighestFinish int     `json:"highest_finish"`
	CheckoutRate  float64 `json:"checkout_rate"`
}

// Spectator response type
type Spectator struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Query response type
type Query struct {
	Kind          string `json:"kind"`
	Type          string `json:"type,omitempty"`
	PlayerID      string `json:"player_id"`
	ReportedScore int    `json:"reported_score"`
}

// ThrowRecord response type
type ThrowRecord struct {
	PlayerID string `json:"player_id"`
	Reported int    `json:"reported"`
	Scored   int    `json:"scored"`
	Bust     bool   `json:"bust"`
	Checkout bool   `json:"checkout"`
}

// RoomState response type
type RoomState struct {
	Version         int64         `json:"version"`
	RoomID          string        `json:"room_id"`
	Name            string        `json:"name"`
	Ruleset         string        `json:"ruleset"`
	TeamMode        string        `json:"team_mode"`
	GameStatus      string        `json:"game_status"`
	Players         []PlayerState `json:"players"`
	Spectators      []Spectator   `json:"spectators"`
	CurrentPlayerID string        `json:"current_player_id,omitempty"`
	DartsInTurn     int           `json:"darts_in_turn"`
	PendingQuery    *Query        `json:"pending_query,omitempty"`
	SetNumber       int           `json:"set_number"`
	LegNumber       int           `json:"leg_number"`
	LastThrow       *ThrowRecord  `json:"last_throw,omitempty"`
	Winner          string        `json:"winner,omitempty"`
	Forfeit         bool          `json:"forfeit,omitempty"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
	Server string `json:"server"`
}

func (o *Output) printJoinResult(j JoinResult) {
	verb := "Joined"
	if j.Reconnected {
		verb = "Reconnected to"
	}
	fmt.Fprintf(o.w, "%s room %s as %s (%s)\n", verb, j.RoomID, j.Player.DisplayName, j.Role)
	fmt.Fprintf(o.w, "Player ID: %s\n", j.Player.ID)
	if j.State != nil {
		fmt.Fprintln(o.w)
		o.printRoomState(*j.State)
	}
}

func (o *Output) printRoomState(s RoomState) {
	fmt.Fprintf(o.w, "Room: %s (%s)\n", s.RoomID, s.Name)
	fmt.Fprintf(o.w, "Ruleset: %s, %s\n", s.Ruleset, s.TeamMode)
	fmt.Fprintf(o.w, "Status: %s\n", s.GameStatus)
	if s.GameStatus != "waiting" {
		fmt.Fprintf(o.w, "Set %d, Leg %d\n", s.SetNumber, s.LegNumber)
	}

	fmt.Fprintf(o.w, "Players (%d):\n", len(s.Players))
	for _, p := range s.Players {
		marker := "  "
		if p.ID == s.CurrentPlayerID && s.GameStatus == "active" {
			marker = "> "
		}
		var tags []string
		if p.IsHost {
			tags = append(tags, "host")
		}
		if p.Team != "" {
			tags = append(tags, "team "+p.Team)
		}
		if p.Disconnected {
			tags = append(tags, "disconnected")
		}
		tagStr := ""
		if len(tags) > 0 {
			tagStr = " [" + strings.Join(tags, ", ") + "]"
		}
		fmt.Fprintf(o.w, "%s%s%s: %s  legs %d sets %d  %s\n",
			marker, p.DisplayName, tagStr, o.score(p), p.LegsWon, p.SetsWon, o.stats(s.Ruleset, p.Stats))
	}

	if len(s.Spectators) > 0 {
		names := make([]string, len(s.Spectators))
		for i, sp := range s.Spectators {
			names[i] = sp.DisplayName
		}
		fmt.Fprintf(o.w, "Spectators: %s\n", strings.Join(names, ", "))
	}

	if s.LastThrow != nil {
		t := s.LastThrow
		result := strconv.Itoa(t.Scored)
		switch {
		case t.Bust:
			result = "bust"
		case t.Checkout:
			result += " (checkout)"
		}
		fmt.Fprintf(o.w, "Last throw: %s reported %d, %s\n", o.playerName(s, t.PlayerID), t.Reported, result)
	}

	if q := s.PendingQuery; q != nil {
		switch q.Kind {
		case "checkout":
			fmt.Fprintf(o.w, "Waiting for %s: how many darts for the checkout? (0 if not finished)\n", o.playerName(s, q.PlayerID))
		default:
			fmt.Fprintf(o.w, "Waiting for %s: how many darts at a double?\n", o.playerName(s, q.PlayerID))
		}
	}

	if s.Winner != "" {
		suffix := ""
		if s.Forfeit {
			suffix = " (forfeit)"
		}
		fmt.Fprintf(o.w, "Winner: %s%s\n", o.playerName(s, s.Winner), suffix)
	}
}

// score renders the X01 remaining score or the Cricket marks and points
func (o *Output) score(p PlayerState) string {
	if p.Remaining != nil {
		return strconv.Itoa(*p.Remaining)
	}
	if p.Marks == nil {
		return "-"
	}
	targets := make([]string, 0, len(p.Marks))
	for target := range p.Marks {
		targets = append(targets, target)
	}
	sort.Slice(targets, func(i, j int) bool {
		a, _ := strconv.Atoi(targets[i])
		b, _ := strconv.Atoi(targets[j])
		return a > b
	})
	parts := make([]string, 0, len(targets))
	for _, target := range targets {
		parts = append(parts, fmt.Sprintf("%s:%d", target, p.Marks[target]))
	}
	points := 0
	if p.Points != nil {
		points = *p.Points
	}
	return fmt.Sprintf("%s  %d pts", strings.Join(parts, " "), points)
}

func (o *Output) stats(ruleset string, st PlayerStats) string {
	if ruleset == "cricket" {
		return fmt.Sprintf("mpr %.2f", st.MarksPerRound)
	}
	return fmt.Sprintf("avg %.1f", st.Average)
}

func (o *Output) playerName(s RoomState, id string) string {
	for _, p := range s.Players {
		if p.ID == id {
			return p.DisplayName
		}
	}
	return id
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "%s: %s\n", h.Server, h.Status)
}
