// Package room is the player and room registry: creating and joining rooms,
// spectators, teams, host migration and connection tracking. It knows
// nothing about scoring.
package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mcoot/dartsync/internal/dependencies/clock"
	"github.com/mcoot/dartsync/internal/dependencies/random"
	"github.com/mcoot/dartsync/internal/dispatch"
	"github.com/mcoot/dartsync/internal/model"
	"github.com/mcoot/dartsync/internal/services/auth"
	"github.com/mcoot/dartsync/internal/services/broadcast"
	"github.com/mcoot/dartsync/internal/services/session"
	"github.com/mcoot/dartsync/internal/storage"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6

	// MaxNameLength bounds display and room names, in characters
	MaxNameLength = 32

	maxCodeAttempts = 10
)

// CreateParams are the settings a host chooses for a new room
type CreateParams struct {
	Name       string
	HostName   string
	Ruleset    model.RulesetKind
	Options    model.RulesetOptions
	MaxPlayers int
	TeamMode   model.TeamMode
	Password   string
}

// JoinResult is what a member gets back from creating or joining a room
type JoinResult struct {
	State       *model.RoomState
	Player      model.Player
	Role        model.Role
	Token       string
	Reconnected bool
}

// Controller manages room membership
type Controller struct {
	storage     storage.Storage
	dispatcher  *dispatch.Dispatcher
	auth        *auth.Service
	broadcaster *broadcast.Service
	clock       clock.Clock
	random      random.Random
	logger      *slog.Logger
}

// NewController creates a new room Controller
func NewController(
	storage storage.Storage,
	dispatcher *dispatch.Dispatcher,
	auth *auth.Service,
	broadcaster *broadcast.Service,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:     storage,
		dispatcher:  dispatcher,
		auth:        auth,
		broadcaster: broadcaster,
		clock:       clock,
		random:      random,
		logger:      logger.With(slog.String("component", "room")),
	}
}

var errCodeTaken = errors.New("room code taken")

// CreateRoom creates a room with the requester as host and first player
func (c *Controller) CreateRoom(ctx context.Context, params CreateParams) (*JoinResult, error) {
	hostName, err := validateName(params.HostName)
	if err != nil {
		return nil, err
	}
	roomName := strings.TrimSpace(params.Name)
	if roomName == "" {
		roomName = hostName + "'s room"
	}
	if utf8.RuneCountInString(roomName) > MaxNameLength {
		return nil, fmt.Errorf("%w: room name too long", model.ErrInvalidRoomConfig)
	}

	kind := params.Ruleset
	if kind == "" {
		kind = model.RulesetX01
	}
	opts := params.Options.WithDefaults()
	if err := opts.Validate(kind); err != nil {
		return nil, err
	}

	teamMode := params.TeamMode
	if teamMode == "" {
		teamMode = model.TeamModeSingles
	}
	if teamMode != model.TeamModeSingles && teamMode != model.TeamModeDoubles {
		return nil, fmt.Errorf("%w: team mode %q", model.ErrInvalidRoomConfig, teamMode)
	}
	maxPlayers, err := resolveMaxPlayers(teamMode, params.MaxPlayers)
	if err != nil {
		return nil, err
	}

	hash, err := c.auth.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing room password: %w", err)
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := model.RoomID(c.random.RoomCode(RoomCodeLength))
		now := c.clock.Now()
		host := model.Player{
			ID:           model.PlayerID(c.random.UUID()),
			ConnectionID: model.ConnectionID(c.random.UUID()),
			DisplayName:  hostName,
			JoinedAt:     now,
		}
		if teamMode == model.TeamModeDoubles {
			host.Team = model.TeamA
		}
		room := &model.Room{
			ID:           code,
			Name:         roomName,
			HostID:       host.ID,
			Players:      []model.Player{host},
			Spectators:   []model.Player{},
			Ruleset:      kind,
			Options:      opts,
			TeamMode:     teamMode,
			MaxPlayers:   maxPlayers,
			PasswordHash: hash,
			Status:       model.GameStatusWaiting,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		var result *JoinResult
		err := c.dispatcher.Do(ctx, code, func(ctx context.Context) error {
			exists, err := c.storage.RoomExists(ctx, code)
			if err != nil {
				return err
			}
			if exists {
				return errCodeTaken
			}
			if err := c.storage.SaveRoom(ctx, room); err != nil {
				return err
			}
			result, err = c.admit(ctx, room, host, model.RolePlayer, false)
			return err
		})
		if errors.Is(err, errCodeTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}

		c.logger.Info("room created",
			slog.String("room_id", string(code)),
			slog.String("host_id", string(host.ID)),
			slog.String("ruleset", string(kind)),
			slog.String("team_mode", string(teamMode)),
			slog.Int("max_players", maxPlayers),
			slog.Bool("password", hash != ""),
		)
		return result, nil
	}
	return nil, fmt.Errorf("generating room code: %d attempts collided", maxCodeAttempts)
}

// GetRoom retrieves a room by code
func (c *Controller) GetRoom(ctx context.Context, roomID model.RoomID) (*model.Room, error) {
	return c.storage.GetRoom(ctx, roomID)
}

// JoinRoom adds a member to a room. A disconnected member with the same
// display name is re-bound to its existing identity instead. Joiners become
// spectators when the room is full or a match is being played.
func (c *Controller) JoinRoom(ctx context.Context, roomID model.RoomID, name, password string) (*JoinResult, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	if err := storage.RequireRoom(ctx, c.storage, roomID); err != nil {
		return nil, err
	}

	var result *JoinResult
	err = c.dispatcher.Do(ctx, roomID, func(ctx context.Context) error {
		room, err := c.storage.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if err := c.auth.CheckPassword(room.PasswordHash, password); err != nil {
			return err
		}

		now := c.clock.Now()
		if existing, role := room.FindByName(name); existing != nil {
			if !existing.Disconnected {
				return model.ErrNameTaken
			}
			if err := c.auth.RevokePlayer(ctx, roomID, existing.ID); err != nil {
				return err
			}
			existing.ConnectionID = model.ConnectionID(c.random.UUID())
			existing.Disconnected = false
			room.UpdatedAt = now
			if err := c.storage.SaveRoom(ctx, room); err != nil {
				return err
			}

			c.logger.Info("member reconnected",
				slog.String("room_id", string(roomID)),
				slog.String("player_id", string(existing.ID)),
				slog.String("role", string(role)),
			)
			result, err = c.admit(ctx, room, *existing, role, true)
			return err
		}

		player := model.Player{
			ID:           model.PlayerID(c.random.UUID()),
			ConnectionID: model.ConnectionID(c.random.UUID()),
			DisplayName:  name,
			JoinedAt:     now,
		}
		role := model.RolePlayer
		if room.IsFull() || room.Status == model.GameStatusActive {
			role = model.RoleSpectator
			room.Spectators = append(room.Spectators, player)
		} else {
			player.Team = room.SmallerTeam()
			room.Players = append(room.Players, player)
		}
		room.UpdatedAt = now
		if err := c.storage.SaveRoom(ctx, room); err != nil {
			return err
		}

		c.logger.Info("member joined",
			slog.String("room_id", string(roomID)),
			slog.String("player_id", string(player.ID)),
			slog.String("role", string(role)),
			slog.Int("player_count", len(room.Players)),
		)
		result, err = c.admit(ctx, room, player, role, false)
		return err
	})
	return result, err
}

// Leave removes a member from a room and revokes its tokens. The host role
// passes to the first remaining player, and the room is destroyed when its
// last player leaves. The returned state is nil when the room was destroyed.
func (c *Controller) Leave(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*model.RoomState, error) {
	if err := storage.RequireRoom(ctx, c.storage, roomID); err != nil {
		return nil, err
	}
	var state *model.RoomState
	err := c.dispatcher.Do(ctx, roomID, func(ctx context.Context) error {
		room, err := c.storage.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}
		role, ok := room.RemoveMember(playerID)
		if !ok {
			return model.ErrPlayerNotFound
		}
		if err := c.auth.RevokePlayer(ctx, roomID, playerID); err != nil {
			return err
		}

		logger := c.logger.With(
			slog.String("room_id", string(roomID)),
			slog.String("player_id", string(playerID)),
		)

		if role == model.RolePlayer && len(room.Players) == 0 {
			if err := c.storage.DeleteRoom(ctx, roomID); err != nil {
				return err
			}
			c.broadcaster.PublishClosed(roomID)
			c.dispatcher.Stop(roomID)
			logger.Info("room closed, last player left")
			return nil
		}

		now := c.clock.Now()
		m, err := c.storage.GetMatch(ctx, roomID)
		switch {
		case errors.Is(err, model.ErrMatchNotFound):
			m = nil
		case err != nil:
			return err
		}

		if role == model.RolePlayer {
			forfeited, err := session.RemoveFromMatch(room, m, playerID, now)
			if err != nil {
				return err
			}
			if m != nil {
				if err := c.storage.SaveMatch(ctx, m); err != nil {
					return err
				}
			}
			if forfeited {
				logger.Info("match forfeited", slog.String("winner", string(m.Winner)))
			}
			if room.HostID == playerID {
				room.HostID = room.Players[0].ID
				logger.Info("host migrated", slog.String("new_host", string(room.HostID)))
			}
			if room.BullOffWinner == playerID {
				room.BullOffWinner = ""
			}
			if room.Status != model.GameStatusActive {
				room.PromoteSpectators()
			}
		}

		room.UpdatedAt = now
		if err := c.storage.SaveRoom(ctx, room); err != nil {
			return err
		}
		logger.Info("member left", slog.String("role", string(role)))

		state, err = c.broadcaster.Publish(ctx, room, m)
		return err
	})
	return state, err
}

// Disconnect flags a member disconnected when connID is still its current
// connection. The member keeps its place in the turn rotation.
func (c *Controller) Disconnect(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, connID model.ConnectionID) error {
	return c.setConnected(ctx, roomID, playerID, connID, false)
}

// Attach clears the disconnected flag when a member opens a realtime
// connection with its current connection id
func (c *Controller) Attach(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, connID model.ConnectionID) error {
	return c.setConnected(ctx, roomID, playerID, connID, true)
}

func (c *Controller) setConnected(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, connID model.ConnectionID, connected bool) error {
	// Streams of a destroyed room still release their connection
	if err := storage.RequireRoom(ctx, c.storage, roomID); err != nil {
		return err
	}
	return c.dispatcher.Do(ctx, roomID, func(ctx context.Context) error {
		room, err := c.storage.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}
		member, _ := room.GetMember(playerID)
		if member == nil {
			return model.ErrPlayerNotFound
		}
		if member.ConnectionID != connID || member.Disconnected == !connected {
			return nil
		}

		member.Disconnected = !connected
		room.UpdatedAt = c.clock.Now()
		if err := c.storage.SaveRoom(ctx, room); err != nil {
			return err
		}
		c.logger.Info("connection state changed",
			slog.String("room_id", string(roomID)),
			slog.String("player_id", string(playerID)),
			slog.Bool("connected", connected),
		)

		m, err := c.storage.GetMatch(ctx, roomID)
		if errors.Is(err, model.ErrMatchNotFound) {
			m = nil
		} else if err != nil {
			return err
		}
		_, err = c.broadcaster.Publish(ctx, room, m)
		return err
	})
}
