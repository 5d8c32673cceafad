package response

import (
	"github.com/mcoot/dartsync/internal/api/apierr"
	"github.com/mcoot/dartsync/internal/model"
	"github.com/mcoot/dartsync/internal/services/room"
)

// Player represents the joining member in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Team        string `json:"team,omitempty"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		Team:        string(p.Team),
	}
}

// JoinResponse is returned when creating or joining a room
type JoinResponse struct {
	RoomID       string           `json:"room_id"`
	Player       Player           `json:"player"`
	Role         string           `json:"role"`
	SessionToken string           `json:"session_token"`
	Reconnected  bool             `json:"reconnected"`
	State        *model.RoomState `json:"state"`
}

// JoinResponseFromResult converts a room.JoinResult
func JoinResponseFromResult(r *room.JoinResult) JoinResponse {
	return JoinResponse{
		RoomID:       string(r.State.RoomID),
		Player:       PlayerFromModel(r.Player),
		Role:         string(r.Role),
		SessionToken: r.Token,
		Reconnected:  r.Reconnected,
		State:        r.State,
	}
}

// ErrorMessage is the WebSocket reply to a rejected intent
type ErrorMessage struct {
	Type  string          `json:"type"`
	Error apierr.APIError `json:"error"`
}

// NewErrorMessage builds the WebSocket error reply for err
func NewErrorMessage(err error) ErrorMessage {
	_, apiErr := apierr.From(err)
	return ErrorMessage{Type: "error", Error: apiErr}
}
