// Package ruleset holds the X01 and Cricket scoring engines. Engines are pure:
// they mutate only the LegState they are handed, and they validate a throw
// completely before touching it, so a rejected throw leaves the leg as it was.
package ruleset

import (
	"fmt"

	"github.com/mcoot/dartsync/internal/model"
)

// Result describes the outcome of one processed throw
type Result struct {
	Valid  bool
	Bust   bool
	Winner model.PlayerID

	// ScoreBefore and ScoreAfter are the remaining score for X01 and the
	// player's points for Cricket.
	ScoreBefore int
	ScoreAfter  int

	Scored    int
	Marks     int
	TurnEnded bool
}

// Won reports whether the throw decided the leg
func (r Result) Won() bool {
	return r.Winner != ""
}

// Engine turns a throw intent into a new leg state and a Result
type Engine interface {
	Kind() model.RulesetKind

	// NewLeg returns a fresh leg for the given turn order
	NewLeg(order []model.PlayerID) model.LegState

	// ProcessThrow applies one throw by playerID to the leg
	ProcessThrow(leg *model.LegState, playerID model.PlayerID, input model.ThrowInput) (Result, error)
}

// New returns the engine for a ruleset kind
func New(kind model.RulesetKind, opts model.RulesetOptions) (Engine, error) {
	switch kind {
	case model.RulesetX01:
		return NewX01(opts), nil
	case model.RulesetCricket:
		return NewCricket(), nil
	default:
		return nil, fmt.Errorf("%w: unknown ruleset %q", model.ErrInvalidRoomConfig, kind)
	}
}

// checkTurn rejects throws on a decided leg or out of turn
func checkTurn(leg *model.LegState, playerID model.PlayerID) error {
	if leg.Winner != "" {
		return model.ErrGameAlreadyEnded
	}
	if leg.CurrentPlayer() != playerID {
		return model.ErrNotYourTurn
	}
	return nil
}
