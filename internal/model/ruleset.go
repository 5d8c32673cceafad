package model

import "fmt"

// RulesetKind selects the scoring engine for a room
type RulesetKind string

const (
	RulesetX01     RulesetKind = "x01"
	RulesetCricket RulesetKind = "cricket"
)

// InOutMode is the X01 in/out requirement
type InOutMode string

const (
	ModeSingle InOutMode = "single"
	ModeDouble InOutMode = "double"
	ModeMaster InOutMode = "master"
)

// MatchFormat says how the leg and set targets are read
type MatchFormat string

const (
	FormatFirstTo MatchFormat = "first_to"
	FormatBestOf  MatchFormat = "best_of"
)

// StarterPolicy decides who may start a match
type StarterPolicy string

const (
	StarterHost     StarterPolicy = "host"
	StarterOpponent StarterPolicy = "opponent"
	StarterBullOff  StarterPolicy = "bulloff"
)

// RulesetOptions holds the configurable match settings of a room
type RulesetOptions struct {
	StartingScore int           `json:"starting_score"`
	InMode        InOutMode     `json:"in_mode"`
	OutMode       InOutMode     `json:"out_mode"`
	Legs          int           `json:"legs"`
	Sets          int           `json:"sets"`
	Format        MatchFormat   `json:"format"`
	Starter       StarterPolicy `json:"starter"`
}

// DefaultRulesetOptions returns 501 double-out, first to one leg
func DefaultRulesetOptions() RulesetOptions {
	return RulesetOptions{
		StartingScore: 501,
		InMode:        ModeSingle,
		OutMode:       ModeDouble,
		Legs:          1,
		Sets:          1,
		Format:        FormatFirstTo,
		Starter:       StarterHost,
	}
}

// WithDefaults fills zero-valued fields from DefaultRulesetOptions
func (o RulesetOptions) WithDefaults() RulesetOptions {
	d := DefaultRulesetOptions()
	if o.StartingScore == 0 {
		o.StartingScore = d.StartingScore
	}
	if o.InMode == "" {
		o.InMode = d.InMode
	}
	if o.OutMode == "" {
		o.OutMode = d.OutMode
	}
	if o.Legs == 0 {
		o.Legs = d.Legs
	}
	if o.Sets == 0 {
		o.Sets = d.Sets
	}
	if o.Format == "" {
		o.Format = d.Format
	}
	if o.Starter == "" {
		o.Starter = d.Starter
	}
	return o
}

// Validate checks the options for the given ruleset
func (o RulesetOptions) Validate(kind RulesetKind) error {
	switch kind {
	case RulesetX01, RulesetCricket:
	default:
		return fmt.Errorf("%w: unknown ruleset %q", ErrInvalidRoomConfig, kind)
	}
	if kind == RulesetX01 && (o.StartingScore < 2 || o.StartingScore > 1001) {
		return fmt.Errorf("%w: starting score %d", ErrInvalidRoomConfig, o.StartingScore)
	}
	if !o.InMode.valid() || !o.OutMode.valid() {
		return fmt.Errorf("%w: in/out mode", ErrInvalidRoomConfig)
	}
	if o.Legs < 1 || o.Sets < 1 {
		return fmt.Errorf("%w: legs and sets must be positive", ErrInvalidRoomConfig)
	}
	switch o.Format {
	case FormatFirstTo, FormatBestOf:
	default:
		return fmt.Errorf("%w: format %q", ErrInvalidRoomConfig, o.Format)
	}
	switch o.Starter {
	case StarterHost, StarterOpponent, StarterBullOff:
	default:
		return fmt.Errorf("%w: starter policy %q", ErrInvalidRoomConfig, o.Starter)
	}
	return nil
}

func (m InOutMode) valid() bool {
	return m == ModeSingle || m == ModeDouble || m == ModeMaster
}

// LegsToWin returns the legs needed to take a set
func (o RulesetOptions) LegsToWin() int {
	return toWin(o.Legs, o.Format)
}

// SetsToWin returns the sets needed to take the match
func (o RulesetOptions) SetsToWin() int {
	return toWin(o.Sets, o.Format)
}

func toWin(target int, format MatchFormat) int {
	if format == FormatBestOf {
		return target/2 + 1
	}
	return target
}
