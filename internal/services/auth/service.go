package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/dartsync/internal/dependencies/clock"
	"github.com/mcoot/dartsync/internal/dependencies/random"
	"github.com/mcoot/dartsync/internal/model"
	"github.com/mcoot/dartsync/internal/storage"
)

// Service issues identity tokens for room members and checks room passwords.
// A token names a stable player identity, not a connection, so a client that
// reconnects can be handed a fresh token for the same player.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	sessionDuration time.Duration
	bcryptCost      int
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
	BcryptCost      int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
		BcryptCost:      bcrypt.DefaultCost,
	}
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = def.SessionDuration
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = def.BcryptCost
	}
	return &Service{
		storage:         storage,
		clock:           clock,
		random:          random,
		logger:          logger,
		sessionDuration: cfg.SessionDuration,
		bcryptCost:      cfg.BcryptCost,
	}
}

// IssueToken creates a session binding a new token to the player and the
// connection it joined on
func (s *Service) IssueToken(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, connID model.ConnectionID) (*model.Session, error) {
	session := &model.Session{
		Token:        "tok_" + s.random.UUID(),
		RoomID:       roomID,
		PlayerID:     playerID,
		ConnectionID: connID,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.storage.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return session, nil
}

// Authenticate resolves a token to its session
func (s *Service) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, model.ErrInvalidToken
	}
	session, err := s.storage.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if s.clock.Now().After(session.CreatedAt.Add(s.sessionDuration)) {
		return nil, model.ErrInvalidToken
	}
	return session, nil
}

// RevokePlayer invalidates every token issued to the player in the room
func (s *Service) RevokePlayer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) error {
	if err := s.storage.DeleteSessionsForPlayer(ctx, roomID, playerID); err != nil {
		return fmt.Errorf("revoking sessions: %w", err)
	}
	return nil
}

// HashPassword returns the bcrypt hash of a room password. An empty password
// hashes to the empty string, meaning the room is open.
func (s *Service) HashPassword(password string) (string, error) {
	if password == "" {
		return "", nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a join attempt against a room's password hash
func (s *Service) CheckPassword(hash, password string) error {
	if hash == "" {
		return nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return model.ErrInvalidPassword
	}
	if err != nil {
		s.logger.Warn("password check failed", slog.String("error", err.Error()))
		return model.ErrInvalidPassword
	}
	return nil
}
