package model

// QueryKind identifies the confirmation a query asks for
type QueryKind string

const (
	QueryCheckout       QueryKind = "checkout"
	QueryDoubleAttempts QueryKind = "double_attempts"
)

// DoubleAttemptsType says why a double-attempts query was raised
type DoubleAttemptsType string

const (
	AttemptsMissed DoubleAttemptsType = "attempts" // finishable score, no finish
	AttemptsBust   DoubleAttemptsType = "bust"     // bust from a finishable score
)

// Query is an outstanding confirmation the throwing player must answer
// before the match accepts another throw.
type Query struct {
	ID               string             `json:"id"`
	Kind             QueryKind          `json:"kind"`
	Type             DoubleAttemptsType `json:"type,omitempty"`
	PlayerID         PlayerID           `json:"player_id"`
	ReportedScore    int                `json:"reported_score"`
	ScoreBeforeThrow int                `json:"score_before_throw"`
	ThrowIndex       int                `json:"throw_index"`
}
