package request

import (
	"errors"

	"github.com/mcoot/dartsync/internal/model"
)

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	Name        string               `json:"name,omitempty"`
	DisplayName string               `json:"display_name"`
	Ruleset     model.RulesetKind    `json:"ruleset,omitempty"`
	Options     model.RulesetOptions `json:"options"`
	MaxPlayers  int                  `json:"max_players,omitempty"`
	TeamMode    model.TeamMode       `json:"team_mode,omitempty"`
	Password    string               `json:"password,omitempty"`
}

// JoinRoomRequest is the request body for joining or rejoining a room
type JoinRoomRequest struct {
	DisplayName string `json:"display_name"`
	Password    string `json:"password,omitempty"`
}

// SetTeamRequest is the request body for choosing a doubles team. An empty
// player ID means the requester.
type SetTeamRequest struct {
	PlayerID string `json:"player_id,omitempty"`
	Team     string `json:"team"`
}

// BullOffRequest records who won the bull-off
type BullOffRequest struct {
	WinnerID string `json:"winner_id"`
}

// StartMatchRequest is the request body for starting a match. An empty
// starting player lets the room's starter policy decide.
type StartMatchRequest struct {
	StartingPlayerID string `json:"starting_player_id,omitempty"`
}

// ThrowRequest reports a visit total (X01) or a single dart (Cricket)
type ThrowRequest struct {
	Points     *int `json:"points,omitempty"`
	Number     *int `json:"number,omitempty"`
	Multiplier *int `json:"multiplier,omitempty"`
}

var errAmbiguousThrow = errors.New("throw needs either points or number and multiplier")

// Input converts the request into the throw input the engines take
func (t ThrowRequest) Input() (model.ThrowInput, error) {
	switch {
	case t.Points != nil && t.Number == nil && t.Multiplier == nil:
		return model.Points(*t.Points), nil
	case t.Points == nil && t.Number != nil:
		multiplier := 1
		if t.Multiplier != nil {
			multiplier = *t.Multiplier
		}
		return model.TargetHit{Number: *t.Number, Multiplier: multiplier}, nil
	default:
		return nil, errAmbiguousThrow
	}
}

// CheckoutRequest answers a checkout query. Zero darts means the leg was
// not actually won.
type CheckoutRequest struct {
	Darts *int `json:"darts"`
}

// DoubleAttemptsRequest answers a double-attempts query
type DoubleAttemptsRequest struct {
	Attempts *int `json:"attempts"`
}

// Intent is a client message on the WebSocket. Type selects which of the
// remaining fields apply.
type Intent struct {
	Type string `json:"type"`
	ThrowRequest
	Darts    *int `json:"darts,omitempty"`
	Attempts *int `json:"attempts,omitempty"`
}

// Intent types accepted on the WebSocket
const (
	IntentThrow          = "throw"
	IntentCheckout       = "checkout"
	IntentDoubleAttempts = "double_attempts"
	IntentGetState       = "get_state"
)
