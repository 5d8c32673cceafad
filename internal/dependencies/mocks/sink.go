package mocks

import (
	"slices"
	"sync"

	"github.com/mcoot/dartsync/internal/model"
)

// RecordingSink captures every event published to it, per room
type RecordingSink struct {
	mu     sync.Mutex
	events map[model.RoomID][]model.Event
	closed map[model.RoomID]bool
}

// NewRecordingSink creates an empty RecordingSink
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{
		events: make(map[model.RoomID][]model.Event),
		closed: make(map[model.RoomID]bool),
	}
}

// Publish records the event
func (s *RecordingSink) Publish(roomID model.RoomID, event model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[roomID] = append(s.events[roomID], event)
}

// CloseRoom records that the room's hub was closed
func (s *RecordingSink) CloseRoom(roomID model.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed[roomID] = true
}

// Events returns the events published to a room
func (s *RecordingSink) Events(roomID model.RoomID) []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events[roomID])
}

// EventsOfType returns the room's events of one type
func (s *RecordingSink) EventsOfType(roomID model.RoomID, typ model.EventType) []model.Event {
	var out []model.Event
	for _, e := range s.Events(roomID) {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// LastState returns the payload of the room's most recent state event
func (s *RecordingSink) LastState(roomID model.RoomID) *model.RoomState {
	states := s.EventsOfType(roomID, model.EventState)
	if len(states) == 0 {
		return nil
	}
	state, _ := states[len(states)-1].Payload.(*model.RoomState)
	return state
}

// Closed reports whether the room's hub was closed
func (s *RecordingSink) Closed(roomID model.RoomID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed[roomID]
}

// Reset forgets everything recorded
func (s *RecordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[model.RoomID][]model.Event)
	s.closed = make(map[model.RoomID]bool)
}
