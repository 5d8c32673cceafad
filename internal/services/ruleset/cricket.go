package ruleset

import (
	"slices"

	"github.com/mcoot/dartsync/internal/model"
)

const (
	closedMarks  = 3
	dartsPerTurn = 3
	bull         = 25
)

// Cricket scores marks on 15 to 20 and the bull. One throw intent is a
// single dart.
type Cricket struct{}

// NewCricket creates a Cricket engine
func NewCricket() *Cricket {
	return &Cricket{}
}

var _ Engine = (*Cricket)(nil)

func (e *Cricket) Kind() model.RulesetKind { return model.RulesetCricket }

func (e *Cricket) NewLeg(order []model.PlayerID) model.LegState {
	leg := model.LegState{
		Order:  append([]model.PlayerID(nil), order...),
		Marks:  make(map[model.PlayerID]map[int]int, len(order)),
		Points: make(map[model.PlayerID]int, len(order)),
	}
	for _, id := range order {
		leg.Marks[id] = make(map[int]int, len(model.CricketTargets))
		leg.Points[id] = 0
	}
	return leg
}

func (e *Cricket) ProcessThrow(leg *model.LegState, playerID model.PlayerID, input model.ThrowInput) (Result, error) {
	hit, ok := input.(model.TargetHit)
	if !ok || !validHit(hit) {
		return Result{}, model.ErrInvalidScoreFormat
	}
	if err := checkTurn(leg, playerID); err != nil {
		return Result{}, err
	}

	before := leg.Points[playerID]
	res := Result{Valid: true, ScoreBefore: before}

	if IsCricketTarget(hit.Number) {
		marks := leg.Marks[playerID]
		if marks == nil {
			marks = make(map[int]int, len(model.CricketTargets))
			leg.Marks[playerID] = marks
		}
		added := min(closedMarks-marks[hit.Number], hit.Multiplier)
		overflow := hit.Multiplier - added
		marks[hit.Number] += added
		res.Marks = added

		if overflow > 0 && !allOpponentsClosed(leg, playerID, hit.Number) {
			res.Scored = overflow * hit.Number
			leg.Points[playerID] += res.Scored
		}
	}
	res.ScoreAfter = leg.Points[playerID]
	leg.DartsInTurn++

	if hasWon(leg, playerID) {
		leg.Winner = playerID
		res.Winner = playerID
		return res, nil
	}

	if leg.DartsInTurn >= dartsPerTurn {
		leg.Advance()
		res.TurnEnded = true
	}
	return res, nil
}

// IsCricketTarget reports whether a number counts in Cricket
func IsCricketTarget(number int) bool {
	return slices.Contains(model.CricketTargets, number)
}

func validHit(hit model.TargetHit) bool {
	if hit.Multiplier < 1 || hit.Multiplier > 3 {
		return false
	}
	switch {
	case hit.Number == 0:
		return true
	case hit.Number == bull:
		return hit.Multiplier <= 2
	default:
		return hit.Number >= 1 && hit.Number <= 20
	}
}

func allOpponentsClosed(leg *model.LegState, playerID model.PlayerID, number int) bool {
	for _, id := range leg.Order {
		if id == playerID {
			continue
		}
		if leg.Marks[id][number] < closedMarks {
			return false
		}
	}
	return true
}

// hasWon is true once every target is closed and no opponent leads on points.
// A tie on points goes to the player who closed out.
func hasWon(leg *model.LegState, playerID model.PlayerID) bool {
	for _, target := range model.CricketTargets {
		if leg.Marks[playerID][target] < closedMarks {
			return false
		}
	}
	points := leg.Points[playerID]
	for _, id := range leg.Order {
		if id != playerID && leg.Points[id] > points {
			return false
		}
	}
	return true
}
