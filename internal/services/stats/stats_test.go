package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/dartsync/internal/model"
)

func visit(player model.PlayerID, leg, scored int) model.ThrowRecord {
	return model.ThrowRecord{PlayerID: player, Set: 1, Leg: leg, Reported: scored, Scored: scored, Darts: 3}
}

func TestComputeX01(t *testing.T) {
	checkout := visit("alice", 1, 41)
	checkout.Darts = 2
	checkout.Checkout = true
	checkout.LegWon = true
	checkout.DoublesHit = 1
	checkout.DoublesShot = 1

	bust := model.ThrowRecord{PlayerID: "bob", Set: 1, Leg: 1, Reported: 38, Darts: 3, Bust: true, DoublesShot: 2}

	match := &model.Match{
		Ruleset: model.RulesetX01,
		Order:   []model.PlayerID{"alice", "bob", "carol"},
		Throws: []model.ThrowRecord{
			visit("alice", 1, 140),
			visit("bob", 1, 100),
			visit("alice", 1, 140),
			bust,
			visit("alice", 1, 180),
			checkout,
		},
	}

	got := Compute(match)

	alice := got["alice"]
	assert.Equal(t, 11, alice.DartsThrown)
	assert.Equal(t, 501, alice.PointsScored)
	assert.InDelta(t, 136.64, alice.Average, 0.001)
	assert.Equal(t, 2, alice.TonForties)
	assert.Equal(t, 1, alice.Max180s)
	assert.Equal(t, 41, alice.HighestFinish)
	assert.Equal(t, 11, alice.BestLeg)
	assert.Equal(t, 1, alice.DoublesHit)
	assert.Equal(t, 1, alice.DoublesThrown)
	assert.InDelta(t, 100.0, alice.CheckoutRate, 0.001)
	assert.Equal(t, 1, alice.LegsPlayed)

	bob := got["bob"]
	assert.Equal(t, 6, bob.DartsThrown)
	assert.Equal(t, 100, bob.PointsScored)
	assert.Equal(t, 1, bob.Tons)
	assert.Equal(t, 2, bob.DoublesThrown)
	assert.Zero(t, bob.CheckoutRate)
	assert.Zero(t, bob.BestLeg)

	require.Contains(t, got, model.PlayerID("carol"))
	assert.Zero(t, got["carol"].DartsThrown)
	assert.Zero(t, got["carol"].Average)
}

func TestComputeBestLegTakesFewestDarts(t *testing.T) {
	won := func(leg, darts int) model.ThrowRecord {
		r := visit("alice", leg, 100)
		r.Darts = darts
		r.Checkout = true
		r.LegWon = true
		return r
	}
	match := &model.Match{
		Ruleset: model.RulesetX01,
		Order:   []model.PlayerID{"alice"},
		Throws: []model.ThrowRecord{
			visit("alice", 1, 100), visit("alice", 1, 100), visit("alice", 1, 100), won(1, 3),
			visit("alice", 2, 100), won(2, 1),
		},
	}

	got := Compute(match)

	assert.Equal(t, 4, got["alice"].BestLeg)
	assert.Equal(t, 2, got["alice"].LegsPlayed)
}

func TestComputeCricketMarksPerRound(t *testing.T) {
	dart := func(marks, scored int) model.ThrowRecord {
		return model.ThrowRecord{PlayerID: "alice", Set: 1, Leg: 1, Darts: 1, Marks: marks, Scored: scored}
	}
	match := &model.Match{
		Ruleset: model.RulesetCricket,
		Order:   []model.PlayerID{"alice"},
		Throws:  []model.ThrowRecord{dart(3, 0), dart(1, 20), dart(0, 0)},
	}

	got := Compute(match)

	assert.InDelta(t, 4.0, got["alice"].MarksPerRound, 0.001)
	assert.Equal(t, 20, got["alice"].PointsScored)
	assert.Zero(t, got["alice"].Average)
	assert.Zero(t, got["alice"].Tons)
}
