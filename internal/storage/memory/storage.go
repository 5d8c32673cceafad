package memory

import (
	"context"
	"sync"

	"github.com/mcoot/dartsync/internal/model"
	"github.com/mcoot/dartsync/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	rooms     map[model.RoomID]*model.Room
	matches   map[model.RoomID]*model.Match
	snapshots map[model.RoomID]*model.RoomState
	sessions  map[string]*model.Session
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		rooms:     make(map[model.RoomID]*model.Room),
		matches:   make(map[model.RoomID]*model.Match),
		snapshots: make(map[model.RoomID]*model.RoomState),
		sessions:  make(map[string]*model.Session),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room.Clone()
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room.Clone(), nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	delete(s.matches, id)
	delete(s.snapshots, id)
	for token, sess := range s.sessions {
		if sess.RoomID == id {
			delete(s.sessions, token)
		}
	}
	return nil
}

func (s *Storage) RoomExists(ctx context.Context, id model.RoomID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[id]
	return ok, nil
}

// Match operations

func (s *Storage) SaveMatch(ctx context.Context, match *model.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[match.RoomID] = match.Clone()
	return nil
}

func (s *Storage) GetMatch(ctx context.Context, roomID model.RoomID) (*model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	match, ok := s.matches[roomID]
	if !ok {
		return nil, model.ErrMatchNotFound
	}
	return match.Clone(), nil
}

func (s *Storage) DeleteMatch(ctx context.Context, roomID model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.matches, roomID)
	return nil
}

// Snapshot operations

func (s *Storage) SaveSnapshot(ctx context.Context, state *model.RoomState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *state
	s.snapshots[state.RoomID] = &cp
	return nil
}

func (s *Storage) GetSnapshot(ctx context.Context, roomID model.RoomID) (*model.RoomState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.snapshots[roomID]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	cp := *state
	return &cp, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	s.sessions[session.Token] = &cp
	return nil
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, model.ErrInvalidToken
	}
	cp := *sess
	return &cp, nil
}

func (s *Storage) DeleteSessionsForPlayer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, sess := range s.sessions {
		if sess.RoomID == roomID && sess.PlayerID == playerID {
			delete(s.sessions, token)
		}
	}
	return nil
}
