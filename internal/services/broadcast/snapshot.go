package broadcast

import (
	"maps"
	"slices"
	"time"

	"github.com/mcoot/dartsync/internal/model"
	"github.com/mcoot/dartsync/internal/services/ruleset"
	"github.com/mcoot/dartsync/internal/services/stats"
)

// BuildState assembles the full room state. match may be nil, in which case
// players are shown at the ruleset's starting values.
func BuildState(room *model.Room, match *model.Match, version int64, now time.Time) *model.RoomState {
	state := &model.RoomState{
		Version:     version,
		RoomID:      room.ID,
		Name:        room.Name,
		HostID:      room.HostID,
		Ruleset:     room.Ruleset,
		Options:     room.Options,
		TeamMode:    room.TeamMode,
		MaxPlayers:  room.MaxPlayers,
		HasPassword: room.PasswordHash != "",
		GameStatus:  room.Status,
		Players:     []model.PlayerState{},
		Spectators:  []model.SpectatorState{},
		LegsWon:     map[model.PlayerID]int{},
		SetsWon:     map[model.PlayerID]int{},
		UpdatedAt:   now,
	}

	leg := previewLeg(room)
	var playerStats map[model.PlayerID]model.PlayerStats
	if match != nil {
		leg = match.Leg
		playerStats = stats.Compute(match)
		state.PendingQuery = match.Pending
		state.LegsWon = maps.Clone(match.LegsWon)
		state.SetsWon = maps.Clone(match.SetsWon)
		state.SetNumber = match.SetNumber
		state.LegNumber = match.LegNumber
		state.LastThrow = match.LastThrow()
		state.LegWinner = match.Leg.Winner
		state.Winner = match.Winner
		state.Forfeit = match.Forfeit
		state.DartsInTurn = match.Leg.DartsInTurn
	}

	for _, p := range orderedPlayers(room, match) {
		ps := model.PlayerState{
			ID:           p.ID,
			DisplayName:  p.DisplayName,
			Team:         p.Team,
			IsHost:       p.ID == room.HostID,
			Disconnected: p.Disconnected,
			LegsWon:      state.LegsWon[p.ID],
			SetsWon:      state.SetsWon[p.ID],
			Stats:        playerStats[p.ID],
		}
		switch room.Ruleset {
		case model.RulesetX01:
			if remaining, ok := leg.Remaining[p.ID]; ok {
				ps.Remaining = &remaining
				ps.AwaitingIn = !leg.HasOpened(p.ID)
			}
		case model.RulesetCricket:
			ps.Marks = maps.Clone(leg.Marks[p.ID])
			if points, ok := leg.Points[p.ID]; ok {
				ps.Points = &points
			}
		}
		state.Players = append(state.Players, ps)
	}

	for _, sp := range room.Spectators {
		state.Spectators = append(state.Spectators, model.SpectatorState{
			ID:           sp.ID,
			DisplayName:  sp.DisplayName,
			Disconnected: sp.Disconnected,
		})
	}

	if current := leg.CurrentPlayer(); current != "" && match != nil {
		state.CurrentPlayerID = current
		for i, ps := range state.Players {
			if ps.ID == current {
				state.CurrentPlayerIndex = i
			}
		}
	}
	return state
}

// orderedPlayers lists room players in match turn order. Players who joined
// after the match started follow in room order.
func orderedPlayers(room *model.Room, match *model.Match) []model.Player {
	players := slices.Clone(room.Players)
	if match == nil {
		return players
	}
	rank := func(id model.PlayerID) int {
		if i := match.IndexOf(id); i >= 0 {
			return i
		}
		return len(match.Order)
	}
	slices.SortStableFunc(players, func(a, b model.Player) int {
		return rank(a.ID) - rank(b.ID)
	})
	return players
}

// previewLeg shows the starting values a new match would begin from
func previewLeg(room *model.Room) model.LegState {
	engine, err := ruleset.New(room.Ruleset, room.Options)
	if err != nil {
		return model.LegState{}
	}
	return engine.NewLeg(room.PlayerIDs())
}
