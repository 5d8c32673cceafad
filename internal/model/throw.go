package model

import "time"

// ThrowInput is what a client reports for one throw intent. X01 rooms take
// Points (the total of a visit), Cricket rooms take a TargetHit (one dart).
type ThrowInput interface {
	isThrowInput()
}

// Points is the total scored by a three-dart X01 visit
type Points int

// TargetHit is a single dart on a number with a multiplier. Number 0 is a miss.
type TargetHit struct {
	Number     int `json:"number"`
	Multiplier int `json:"multiplier"`
}

func (Points) isThrowInput()    {}
func (TargetHit) isThrowInput() {}

// ThrowRecord is one entry of a match's append-only throw log. Player
// statistics are derived from these records.
type ThrowRecord struct {
	PlayerID    PlayerID  `json:"player_id"`
	Set         int       `json:"set"`
	Leg         int       `json:"leg"`
	Reported    int       `json:"reported"`
	Number      int       `json:"number,omitempty"`
	Multiplier  int       `json:"multiplier,omitempty"`
	Scored      int       `json:"scored"`
	ScoreBefore int       `json:"score_before"`
	Marks       int       `json:"marks,omitempty"`
	Darts       int       `json:"darts"`
	Bust        bool      `json:"bust"`
	Checkout    bool      `json:"checkout"`
	LegWon      bool      `json:"leg_won"`
	DoublesHit  int       `json:"doubles_hit"`
	DoublesShot int       `json:"doubles_thrown"`
	ThrownAt    time.Time `json:"thrown_at"`
}
