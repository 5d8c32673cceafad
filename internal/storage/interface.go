package storage

import (
	"context"

	"github.com/mcoot/dartsync/internal/model"
)

// Storage holds the live state of rooms. Implementations return copies, so
// a caller mutating a loaded value changes nothing until it saves.
type Storage interface {
	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	// DeleteRoom removes the room with its match, snapshot and sessions
	DeleteRoom(ctx context.Context, id model.RoomID) error
	RoomExists(ctx context.Context, id model.RoomID) (bool, error)

	// Match operations, keyed by the owning room
	SaveMatch(ctx context.Context, match *model.Match) error
	GetMatch(ctx context.Context, roomID model.RoomID) (*model.Match, error)
	DeleteMatch(ctx context.Context, roomID model.RoomID) error

	// Last broadcast snapshot of a room
	SaveSnapshot(ctx context.Context, state *model.RoomState) error
	GetSnapshot(ctx context.Context, roomID model.RoomID) (*model.RoomState, error)

	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSessionsForPlayer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) error
}

// RequireRoom returns ErrRoomNotFound unless the room exists. Controllers
// check it before dispatching so unknown codes never get a room loop.
func RequireRoom(ctx context.Context, s Storage, id model.RoomID) error {
	exists, err := s.RoomExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return model.ErrRoomNotFound
	}
	return nil
}
