package model

// PlayerStats are per-match statistics derived from the throw log
type PlayerStats struct {
	DartsThrown   int     `json:"darts_thrown"`
	PointsScored  int     `json:"points_scored"`
	Average       float64 `json:"average"`
	MarksPerRound float64 `json:"marks_per_round,omitempty"`
	Tons          int     `json:"tons"`
	TonForties    int     `json:"ton_forties"`
	Max180s       int     `json:"max_180s"`
	HighestFinish int     `json:"highest_finish"`
	BestLeg       int     `json:"best_leg"`
	DoublesHit    int     `json:"doubles_hit"`
	DoublesThrown int     `json:"doubles_thrown"`
	CheckoutRate  float64 `json:"checkout_rate"`
	LegsPlayed    int     `json:"legs_played"`
}
