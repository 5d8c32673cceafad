// Package stats derives per-player match statistics from the throw log.
// Nothing here is stored; every value is recomputed from the records.
package stats

import (
	"math"

	"github.com/mcoot/dartsync/internal/model"
)

type legKey struct {
	set int
	leg int
}

// Compute returns statistics for every player that appears in the match
// order, including players without throws.
func Compute(match *model.Match) map[model.PlayerID]model.PlayerStats {
	out := make(map[model.PlayerID]model.PlayerStats, len(match.Order))
	for _, id := range match.Order {
		out[id] = model.PlayerStats{}
	}

	marks := make(map[model.PlayerID]int)
	legDarts := make(map[model.PlayerID]map[legKey]int)
	wonLegs := make(map[model.PlayerID][]legKey)

	for _, t := range match.Throws {
		st := out[t.PlayerID]
		st.DartsThrown += t.Darts
		st.PointsScored += t.Scored
		st.DoublesHit += t.DoublesHit
		st.DoublesThrown += t.DoublesShot

		if match.Ruleset == model.RulesetX01 && !t.Bust {
			switch {
			case t.Scored == 180:
				st.Max180s++
			case t.Scored >= 140:
				st.TonForties++
			case t.Scored >= 100:
				st.Tons++
			}
			if t.Checkout && t.Scored > st.HighestFinish {
				st.HighestFinish = t.Scored
			}
		}
		marks[t.PlayerID] += t.Marks

		key := legKey{set: t.Set, leg: t.Leg}
		if legDarts[t.PlayerID] == nil {
			legDarts[t.PlayerID] = make(map[legKey]int)
		}
		legDarts[t.PlayerID][key] += t.Darts
		if t.LegWon {
			wonLegs[t.PlayerID] = append(wonLegs[t.PlayerID], key)
		}
		out[t.PlayerID] = st
	}

	for id, st := range out {
		st.LegsPlayed = len(legDarts[id])
		if st.DartsThrown > 0 {
			if match.Ruleset == model.RulesetCricket {
				st.MarksPerRound = round2(float64(marks[id]) * 3 / float64(st.DartsThrown))
			} else {
				st.Average = round2(float64(st.PointsScored) * 3 / float64(st.DartsThrown))
			}
		}
		if st.DoublesThrown > 0 {
			st.CheckoutRate = round2(float64(st.DoublesHit) * 100 / float64(st.DoublesThrown))
		}
		for _, key := range wonLegs[id] {
			darts := legDarts[id][key]
			if st.BestLeg == 0 || darts < st.BestLeg {
				st.BestLeg = darts
			}
		}
		out[id] = st
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
