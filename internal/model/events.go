package model

import "time"

// EventType identifies the type of event pushed to room members
type EventType string

const (
	EventState  EventType = "state"
	EventLegWon EventType = "leg_won"
	EventClosed EventType = "room_closed"
)

// Event is the envelope for everything pushed to realtime clients
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RoomID    RoomID    `json:"room_id"`
	Payload   any       `json:"payload,omitempty"`
}
