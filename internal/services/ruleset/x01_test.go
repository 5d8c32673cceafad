package ruleset

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/dartsync/internal/model"
)

type X01Suite struct {
	suite.Suite
	engine *X01
	leg    model.LegState
}

func TestX01Suite(t *testing.T) {
	suite.Run(t, new(X01Suite))
}

func (s *X01Suite) SetupTest() {
	s.engine = NewX01(model.DefaultRulesetOptions())
	s.leg = s.engine.NewLeg([]model.PlayerID{"alice", "bob"})
}

func (s *X01Suite) throw(player model.PlayerID, points int) Result {
	res, err := s.engine.ProcessThrow(&s.leg, player, model.Points(points))
	s.Require().NoError(err)
	return res
}

func (s *X01Suite) TestNewLegStartsEveryoneAtStartingScore() {
	s.Equal(501, s.leg.Remaining["alice"])
	s.Equal(501, s.leg.Remaining["bob"])
	s.Equal(model.PlayerID("alice"), s.leg.CurrentPlayer())
}

func (s *X01Suite) TestScoringThrowAdvancesTurn() {
	res := s.throw("alice", 60)

	s.True(res.Valid)
	s.False(res.Bust)
	s.Equal(501, res.ScoreBefore)
	s.Equal(441, res.ScoreAfter)
	s.True(res.TurnEnded)
	s.Equal(441, s.leg.Remaining["alice"])
	s.Equal(model.PlayerID("bob"), s.leg.CurrentPlayer())
}

func (s *X01Suite) TestTurnAdvancesExactlyOncePerThrow() {
	s.throw("alice", 60)
	s.Equal(1, s.leg.CurrentIndex)
	s.throw("bob", 45)
	s.Equal(0, s.leg.CurrentIndex)
	s.throw("alice", 0)
	s.Equal(1, s.leg.CurrentIndex)
}

func (s *X01Suite) TestScenarioAReachesWinnerThenRejectsThrows() {
	s.throw("alice", 140)
	s.throw("bob", 26)
	s.throw("alice", 140)
	s.throw("bob", 26)
	s.throw("alice", 180)
	s.throw("bob", 26)
	s.Equal(41, s.leg.Remaining["alice"])

	res := s.throw("alice", 41)
	s.True(res.Won())
	s.Equal(model.PlayerID("alice"), res.Winner)
	s.False(res.TurnEnded)
	s.Equal(0, s.leg.Remaining["alice"])
	s.Equal(model.PlayerID("alice"), s.leg.CurrentPlayer())

	_, err := s.engine.ProcessThrow(&s.leg, "alice", model.Points(10))
	s.ErrorIs(err, model.ErrGameAlreadyEnded)
	_, err = s.engine.ProcessThrow(&s.leg, "bob", model.Points(10))
	s.ErrorIs(err, model.ErrGameAlreadyEnded)
}

func (s *X01Suite) TestBustBelowZeroLeavesScore() {
	s.leg.Remaining["alice"] = 35

	res := s.throw("alice", 38)

	s.True(res.Bust)
	s.Equal(35, res.ScoreBefore)
	s.Equal(35, res.ScoreAfter)
	s.Equal(35, s.leg.Remaining["alice"])
	s.Equal(model.PlayerID("bob"), s.leg.CurrentPlayer())
}

func (s *X01Suite) TestBustOnOneUnderDoubleOut() {
	s.leg.Remaining["alice"] = 40

	res := s.throw("alice", 39)

	s.True(res.Bust)
	s.Equal(40, s.leg.Remaining["alice"])
}

func (s *X01Suite) useOptions(mutate func(*model.RulesetOptions)) {
	opts := model.DefaultRulesetOptions()
	mutate(&opts)
	s.engine = NewX01(opts)
	s.leg = s.engine.NewLeg([]model.PlayerID{"alice", "bob"})
}

func (s *X01Suite) TestOneBustsUnderEveryOutMode() {
	for _, out := range []model.InOutMode{model.ModeSingle, model.ModeDouble, model.ModeMaster} {
		s.useOptions(func(o *model.RulesetOptions) { o.OutMode = out })
		s.leg.Remaining["alice"] = 40

		res := s.throw("alice", 39)

		s.True(res.Bust, "out mode %s", out)
		s.Equal(40, s.leg.Remaining["alice"], "out mode %s", out)
	}
}

func (s *X01Suite) TestSingleInOpensImmediately() {
	s.True(s.leg.HasOpened("alice"))
	s.Nil(s.leg.Opened)
}

func (s *X01Suite) TestDoubleInZeroVisitKeepsStartingScore() {
	s.useOptions(func(o *model.RulesetOptions) { o.InMode = model.ModeDouble })
	s.False(s.leg.HasOpened("alice"))

	res := s.throw("alice", 0)

	s.True(res.Valid)
	s.False(res.Bust)
	s.True(res.TurnEnded)
	s.Equal(501, s.leg.Remaining["alice"])
	s.False(s.leg.HasOpened("alice"))
	s.Equal(model.PlayerID("bob"), s.leg.CurrentPlayer())
}

func (s *X01Suite) TestDoubleInRejectsOneBeforeOpening() {
	s.useOptions(func(o *model.RulesetOptions) { o.InMode = model.ModeDouble })

	_, err := s.engine.ProcessThrow(&s.leg, "alice", model.Points(1))

	s.ErrorIs(err, model.ErrInvalidScoreFormat)
	s.Equal(501, s.leg.Remaining["alice"])
	s.Equal(0, s.leg.CurrentIndex)
}

func (s *X01Suite) TestDoubleInOpeningVisitScores() {
	s.useOptions(func(o *model.RulesetOptions) { o.InMode = model.ModeDouble })

	res := s.throw("alice", 57)

	s.Equal(57, res.Scored)
	s.Equal(444, s.leg.Remaining["alice"])
	s.True(s.leg.HasOpened("alice"))
	s.False(s.leg.HasOpened("bob"))

	s.throw("bob", 0)
	s.throw("alice", 1)
	s.Equal(443, s.leg.Remaining["alice"])
}

func (s *X01Suite) TestMasterInWaitsForOpening() {
	s.useOptions(func(o *model.RulesetOptions) { o.InMode = model.ModeMaster })

	s.throw("alice", 0)
	s.throw("bob", 60)

	s.Equal(501, s.leg.Remaining["alice"])
	s.Equal(441, s.leg.Remaining["bob"])
	s.False(s.leg.HasOpened("alice"))
	s.True(s.leg.HasOpened("bob"))
}

func (s *X01Suite) TestBustPropertyOverRange() {
	for remaining := 2; remaining <= 170; remaining++ {
		for points := 0; points <= 180; points++ {
			if !ValidVisit(points) {
				continue
			}
			after := remaining - points
			if after >= 0 && after != 1 {
				continue
			}
			leg := s.engine.NewLeg([]model.PlayerID{"alice", "bob"})
			leg.Remaining["alice"] = remaining

			res, err := s.engine.ProcessThrow(&leg, "alice", model.Points(points))
			s.Require().NoError(err)
			s.Require().True(res.Bust, "remaining %d points %d", remaining, points)
			s.Require().Equal(remaining, leg.Remaining["alice"])
		}
	}
}

func (s *X01Suite) TestNotYourTurn() {
	_, err := s.engine.ProcessThrow(&s.leg, "bob", model.Points(60))

	s.ErrorIs(err, model.ErrNotYourTurn)
	s.Equal(501, s.leg.Remaining["bob"])
	s.Equal(0, s.leg.CurrentIndex)
}

func (s *X01Suite) TestInvalidInputs() {
	cases := []model.ThrowInput{
		model.Points(-1),
		model.Points(181),
		model.Points(179),
		model.TargetHit{Number: 20, Multiplier: 3},
		nil,
	}
	for _, input := range cases {
		_, err := s.engine.ProcessThrow(&s.leg, "alice", input)
		s.ErrorIs(err, model.ErrInvalidScoreFormat, "input %v", input)
	}
	s.Equal(501, s.leg.Remaining["alice"])
	s.Equal(0, s.leg.CurrentIndex)
}

func (s *X01Suite) TestCanCheckoutFrom() {
	s.True(CanCheckoutFrom(170))
	s.False(CanCheckoutFrom(169))
	s.False(CanCheckoutFrom(171))
	s.True(CanCheckoutFrom(35))
	for _, bogey := range []int{169, 168, 166, 165, 163, 162, 159} {
		s.False(CanCheckoutFrom(bogey), "bogey %d", bogey)
	}
}

func (s *X01Suite) TestMinCheckoutDarts() {
	s.Equal(1, MinCheckoutDarts(40, model.ModeDouble))
	s.Equal(1, MinCheckoutDarts(50, model.ModeDouble))
	s.Equal(2, MinCheckoutDarts(41, model.ModeDouble))
	s.Equal(2, MinCheckoutDarts(110, model.ModeDouble))
	s.Equal(3, MinCheckoutDarts(109, model.ModeDouble))
	s.Equal(3, MinCheckoutDarts(170, model.ModeDouble))
	s.Equal(1, MinCheckoutDarts(57, model.ModeSingle))
}

func (s *X01Suite) TestMinCheckoutDartsMasterOut() {
	for _, one := range []int{2, 40, 3, 57, 60, 50} {
		s.Equal(1, MinCheckoutDarts(one, model.ModeMaster), "score %d", one)
	}
	s.Equal(2, MinCheckoutDarts(25, model.ModeMaster), "outer bull is a single")
	s.Equal(2, MinCheckoutDarts(59, model.ModeMaster))
	s.Equal(2, MinCheckoutDarts(120, model.ModeMaster))
	s.Equal(3, MinCheckoutDarts(119, model.ModeMaster))
	s.Equal(3, MinCheckoutDarts(180, model.ModeMaster))
}
