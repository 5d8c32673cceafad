package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/dartsync/internal/model"
	"github.com/mcoot/dartsync/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New connects to Redis and fails if the server does not answer a ping
// within cfg.DialTimeout
func New(ctx context.Context, cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the connection, used by the health endpoint
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, s.cfg.KeyTTL).Err()
}

func (s *Storage) getJSON(ctx context.Context, key string, v any, notFound error) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		return err
	}
	return json.Unmarshal(data, v)
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	// Refresh the session index TTL alongside the room so both expire together
	pipe := s.client.Pipeline()
	pipe.Set(ctx, roomKey(room.ID), data, s.cfg.KeyTTL)
	pipe.Expire(ctx, roomSessionsIndexKey(room.ID), s.cfg.KeyTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	var room model.Room
	if err := s.getJSON(ctx, roomKey(id), &room, model.ErrRoomNotFound); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	indexKey := roomSessionsIndexKey(id)

	tokens, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, roomKey(id), matchKey(id), snapshotKey(id), indexKey)
	for _, token := range tokens {
		pipe.Del(ctx, sessionKey(token))
	}
	_, err = pipe.Exec(ctx)
	if err != nil {
		return err
	}

	// Player index sets are named by room, so sweep them by pattern
	iter := s.client.Scan(ctx, 0, playerSessionsIndexKey(id, "*"), 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (s *Storage) RoomExists(ctx context.Context, id model.RoomID) (bool, error) {
	exists, err := s.client.Exists(ctx, roomKey(id)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// Match operations

func (s *Storage) SaveMatch(ctx context.Context, match *model.Match) error {
	return s.setJSON(ctx, matchKey(match.RoomID), match)
}

func (s *Storage) GetMatch(ctx context.Context, roomID model.RoomID) (*model.Match, error) {
	var match model.Match
	if err := s.getJSON(ctx, matchKey(roomID), &match, model.ErrMatchNotFound); err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *Storage) DeleteMatch(ctx context.Context, roomID model.RoomID) error {
	return s.client.Del(ctx, matchKey(roomID)).Err()
}

// Snapshot operations

func (s *Storage) SaveSnapshot(ctx context.Context, state *model.RoomState) error {
	return s.setJSON(ctx, snapshotKey(state.RoomID), state)
}

func (s *Storage) GetSnapshot(ctx context.Context, roomID model.RoomID) (*model.RoomState, error) {
	var state model.RoomState
	if err := s.getJSON(ctx, snapshotKey(roomID), &state, model.ErrRoomNotFound); err != nil {
		return nil, err
	}
	return &state, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	roomIndex := roomSessionsIndexKey(session.RoomID)
	playerIndex := playerSessionsIndexKey(session.RoomID, session.PlayerID)

	pipe := s.client.Pipeline()
	pipe.Set(ctx, sessionKey(session.Token), data, s.cfg.KeyTTL)
	pipe.SAdd(ctx, roomIndex, session.Token)
	pipe.Expire(ctx, roomIndex, s.cfg.KeyTTL)
	pipe.SAdd(ctx, playerIndex, session.Token)
	pipe.Expire(ctx, playerIndex, s.cfg.KeyTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var session model.Session
	if err := s.getJSON(ctx, sessionKey(token), &session, model.ErrInvalidToken); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) DeleteSessionsForPlayer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) error {
	playerIndex := playerSessionsIndexKey(roomID, playerID)

	tokens, err := s.client.SMembers(ctx, playerIndex).Result()
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	for _, token := range tokens {
		pipe.Del(ctx, sessionKey(token))
		pipe.SRem(ctx, roomSessionsIndexKey(roomID), token)
	}
	pipe.Del(ctx, playerIndex)
	_, err = pipe.Exec(ctx)
	return err
}
