// Package broadcast assembles room snapshots and pushes them to every member
// of the room.
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/dartsync/internal/dependencies/clock"
	"github.com/mcoot/dartsync/internal/model"
	"github.com/mcoot/dartsync/internal/storage"
)

// Sink delivers events to the connected clients of a room
type Sink interface {
	Publish(roomID model.RoomID, event model.Event)
	CloseRoom(roomID model.RoomID)
}

// Service is the state broadcaster
type Service struct {
	storage storage.Storage
	sink    Sink
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new broadcast Service
func New(storage storage.Storage, sink Sink, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		sink:    sink,
		clock:   clock,
		logger:  logger.With(slog.String("component", "broadcaster")),
	}
}

// Publish builds the room's snapshot, stores it as the last broadcast state
// and pushes it to the room. Callers run it on the room's loop right after
// saving a mutation, so snapshots go out in mutation order.
func (s *Service) Publish(ctx context.Context, room *model.Room, match *model.Match) (*model.RoomState, error) {
	var version int64 = 1
	prev, err := s.storage.GetSnapshot(ctx, room.ID)
	switch {
	case err == nil:
		version = prev.Version + 1
	case !errors.Is(err, model.ErrRoomNotFound):
		return nil, fmt.Errorf("loading previous snapshot: %w", err)
	}

	now := s.clock.Now()
	state := BuildState(room, match, version, now)
	if err := s.storage.SaveSnapshot(ctx, state); err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}

	s.sink.Publish(room.ID, model.Event{
		Type:      model.EventState,
		Timestamp: now,
		RoomID:    room.ID,
		Payload:   state,
	})
	s.logger.Debug("state published",
		slog.String("room_id", string(room.ID)),
		slog.Int64("version", version),
		slog.String("game_status", string(state.GameStatus)),
	)
	return state, nil
}

// PublishLegWon sends the transient leg result notification
func (s *Service) PublishLegWon(roomID model.RoomID, notice *model.LegWon) {
	s.sink.Publish(roomID, model.Event{
		Type:      model.EventLegWon,
		Timestamp: s.clock.Now(),
		RoomID:    roomID,
		Payload:   notice,
	})
}

// PublishClosed tells clients the room is gone and drops its hub
func (s *Service) PublishClosed(roomID model.RoomID) {
	s.sink.Publish(roomID, model.Event{
		Type:      model.EventClosed,
		Timestamp: s.clock.Now(),
		RoomID:    roomID,
	})
	s.sink.CloseRoom(roomID)
}

// GetState returns the last broadcast snapshot of a room, the same value
// every client received with the most recent push.
func (s *Service) GetState(ctx context.Context, roomID model.RoomID) (*model.RoomState, error) {
	state, err := s.storage.GetSnapshot(ctx, roomID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, model.ErrRoomNotFound) {
		return nil, err
	}

	// No push yet; build one from stored state without bumping the version
	room, err := s.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	match, err := s.storage.GetMatch(ctx, roomID)
	if errors.Is(err, model.ErrMatchNotFound) {
		match = nil
	} else if err != nil {
		return nil, err
	}
	return BuildState(room, match, 0, s.clock.Now()), nil
}
