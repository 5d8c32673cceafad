package ruleset

import "github.com/mcoot/dartsync/internal/model"

// X01 counts each player down from a starting score. One throw intent is a
// whole visit reported as a single total.
//
// Under double or master in, a player's score does not move until they open.
// The visit that opens is reported as the points counted from the opening
// dart onward, so any non-zero total opens and a zero total leaves the player
// waiting.
type X01 struct {
	startingScore int
	inMode        model.InOutMode
}

// NewX01 creates an X01 engine from room options
func NewX01(opts model.RulesetOptions) *X01 {
	return &X01{startingScore: opts.StartingScore, inMode: opts.InMode}
}

// minOpening is the smallest total a visit can score once it opens on a
// double (D1) or, for master in, a double or treble
const minOpening = 2

var _ Engine = (*X01)(nil)

func (e *X01) Kind() model.RulesetKind { return model.RulesetX01 }

func (e *X01) NewLeg(order []model.PlayerID) model.LegState {
	leg := model.LegState{
		Order:     append([]model.PlayerID(nil), order...),
		Remaining: make(map[model.PlayerID]int, len(order)),
	}
	if e.inMode == model.ModeDouble || e.inMode == model.ModeMaster {
		leg.Opened = make(map[model.PlayerID]bool, len(order))
	}
	for _, id := range order {
		leg.Remaining[id] = e.startingScore
		if leg.Opened != nil {
			leg.Opened[id] = false
		}
	}
	return leg
}

func (e *X01) ProcessThrow(leg *model.LegState, playerID model.PlayerID, input model.ThrowInput) (Result, error) {
	points, ok := input.(model.Points)
	if !ok || !ValidVisit(int(points)) {
		return Result{}, model.ErrInvalidScoreFormat
	}
	if err := checkTurn(leg, playerID); err != nil {
		return Result{}, err
	}

	before := leg.Remaining[playerID]
	opening := !leg.HasOpened(playerID)
	if opening {
		if points == 0 {
			leg.Advance()
			return Result{Valid: true, ScoreBefore: before, ScoreAfter: before, TurnEnded: true}, nil
		}
		if points < minOpening {
			return Result{}, model.ErrInvalidScoreFormat
		}
	}

	after := before - int(points)
	if isBust(after) {
		leg.Advance()
		return Result{Valid: true, Bust: true, ScoreBefore: before, ScoreAfter: before, TurnEnded: true}, nil
	}

	if opening {
		leg.Opened[playerID] = true
	}
	leg.Remaining[playerID] = after
	if after == 0 {
		// The double on the last dart is confirmed by the checkout query
		leg.Winner = playerID
		return Result{Valid: true, Winner: playerID, ScoreBefore: before, ScoreAfter: 0, Scored: int(points)}, nil
	}

	leg.Advance()
	return Result{Valid: true, ScoreBefore: before, ScoreAfter: after, Scored: int(points), TurnEnded: true}, nil
}

// isBust reports whether a visit would leave an unplayable score. A score of
// 1 busts under every out mode.
func isBust(after int) bool {
	return after < 0 || after == 1
}
