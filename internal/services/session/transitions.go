package session

import (
	"maps"
	"slices"
	"time"

	"github.com/mcoot/dartsync/internal/model"
	"github.com/mcoot/dartsync/internal/services/ruleset"
)

// CompleteLeg books the leg just won on match.Leg and either finishes the
// match or deals the next leg. It must run on the room's loop with the
// loaded room and match; callers save both afterwards.
func CompleteLeg(room *model.Room, match *model.Match, now time.Time) (*model.LegWon, error) {
	winner := match.Leg.Winner
	notice := &model.LegWon{
		RoomID:    room.ID,
		LegWinner: winner,
		SetNumber: match.SetNumber,
		LegNumber: match.LegNumber,
	}
	match.Pending = nil
	match.LegsWon[winner]++

	if match.LegsWon[winner] < match.Options.LegsToWin() {
		match.LegNumber++
		notice.LegsWon = maps.Clone(match.LegsWon)
		notice.SetsWon = maps.Clone(match.SetsWon)
		return notice, nextLeg(match, notice)
	}

	match.SetsWon[winner]++
	notice.LegsWon = maps.Clone(match.LegsWon)
	notice.SetsWon = maps.Clone(match.SetsWon)

	if match.SetsWon[winner] >= match.Options.SetsToWin() {
		match.Status = model.MatchFinished
		match.Winner = winner
		match.FinishedAt = &now
		room.Status = model.GameStatusFinished
		room.UpdatedAt = now
		notice.MatchWinner = winner
		return notice, nil
	}

	for id := range match.LegsWon {
		match.LegsWon[id] = 0
	}
	match.SetNumber++
	match.LegNumber = 1
	return notice, nextLeg(match, notice)
}

// nextLeg rotates the leg starter and deals a fresh leg
func nextLeg(match *model.Match, notice *model.LegWon) error {
	engine, err := ruleset.New(match.Ruleset, match.Options)
	if err != nil {
		return err
	}
	match.LegStarter = (match.LegStarter + 1) % len(match.Order)
	match.Leg = engine.NewLeg(rotate(match.Order, match.LegStarter))
	notice.NextPlayer = match.Leg.CurrentPlayer()
	return nil
}

// RemoveFromMatch takes a departing player out of the active match. The
// room must no longer list the leaver. With fewer than two players left, or
// a doubles team short of a player, the match ends as a forfeit. Reports
// whether the match was forfeited.
func RemoveFromMatch(room *model.Room, match *model.Match, playerID model.PlayerID, now time.Time) (bool, error) {
	if match == nil || match.Status != model.MatchActive {
		return false, nil
	}
	idx := match.IndexOf(playerID)
	if idx < 0 {
		return false, nil
	}

	order := slices.Delete(slices.Clone(match.Order), idx, idx+1)
	if len(order) < 2 || room.TeamMode == model.TeamModeDoubles {
		match.Status = model.MatchFinished
		match.Forfeit = true
		match.Pending = nil
		match.FinishedAt = &now
		match.Winner = forfeitWinner(room, order)
		room.Status = model.GameStatusFinished
		room.UpdatedAt = now
		return true, nil
	}

	if idx < match.LegStarter {
		match.LegStarter--
	}
	match.Order = order
	match.LegStarter %= len(order)
	delete(match.LegsWon, playerID)
	delete(match.SetsWon, playerID)

	// A tentative win by the leaver cannot be confirmed, so the leg is replayed
	if match.Leg.Winner == playerID {
		engine, err := ruleset.New(match.Ruleset, match.Options)
		if err != nil {
			return false, err
		}
		match.Pending = nil
		match.Leg = engine.NewLeg(rotate(order, match.LegStarter))
		return false, nil
	}

	if match.Pending != nil && match.Pending.PlayerID == playerID {
		match.Pending = nil
	}
	removeFromLeg(&match.Leg, playerID)
	return false, nil
}

// forfeitWinner picks the player credited with a forfeit. In doubles that is
// the first remaining player on the complete team.
func forfeitWinner(room *model.Room, order []model.PlayerID) model.PlayerID {
	if room.TeamMode != model.TeamModeDoubles {
		if len(order) == 1 {
			return order[0]
		}
		return ""
	}
	short := room.SmallerTeam()
	for _, id := range order {
		if p := room.GetPlayer(id); p != nil && p.Team != short {
			return id
		}
	}
	return ""
}

func removeFromLeg(leg *model.LegState, playerID model.PlayerID) {
	idx := slices.Index(leg.Order, playerID)
	if idx < 0 {
		return
	}
	leg.Order = slices.Delete(leg.Order, idx, idx+1)
	delete(leg.Remaining, playerID)
	delete(leg.Marks, playerID)
	delete(leg.Points, playerID)
	delete(leg.Opened, playerID)

	switch {
	case idx < leg.CurrentIndex:
		leg.CurrentIndex--
	case idx == leg.CurrentIndex:
		leg.DartsInTurn = 0
		leg.CurrentIndex %= len(leg.Order)
	}
}

// rotate returns order starting from position start
func rotate(order []model.PlayerID, start int) []model.PlayerID {
	out := make([]model.PlayerID, 0, len(order))
	out = append(out, order[start:]...)
	return append(out, order[:start]...)
}

// turnOrder builds the match order with starter first. Doubles alternate
// between the teams.
func turnOrder(room *model.Room, starter model.PlayerID) []model.PlayerID {
	order := room.PlayerIDs()
	if room.TeamMode == model.TeamModeDoubles {
		first, second := model.TeamA, model.TeamB
		if p := room.GetPlayer(starter); p != nil && p.Team == model.TeamB {
			first, second = second, first
		}
		a, b := teamMembers(room, first), teamMembers(room, second)
		order = order[:0:0]
		for i := 0; i < max(len(a), len(b)); i++ {
			if i < len(a) {
				order = append(order, a[i])
			}
			if i < len(b) {
				order = append(order, b[i])
			}
		}
	}
	if i := slices.Index(order, starter); i > 0 {
		order = rotate(order, i)
	}
	return order
}

func teamMembers(room *model.Room, team model.Team) []model.PlayerID {
	var ids []model.PlayerID
	for _, p := range room.Players {
		if p.Team == team {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
