// Package session manages the lifecycle of a room's match: starting it,
// moving between legs and sets, forfeits and rematches.
package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/dartsync/internal/dependencies/clock"
	"github.com/mcoot/dartsync/internal/dependencies/random"
	"github.com/mcoot/dartsync/internal/dispatch"
	"github.com/mcoot/dartsync/internal/model"
	"github.com/mcoot/dartsync/internal/services/broadcast"
	"github.com/mcoot/dartsync/internal/services/ruleset"
	"github.com/mcoot/dartsync/internal/storage"
)

// Controller starts and resets matches
type Controller struct {
	storage     storage.Storage
	dispatcher  *dispatch.Dispatcher
	broadcaster *broadcast.Service
	clock       clock.Clock
	random      random.Random
	logger      *slog.Logger
}

// NewController creates a new session Controller
func NewController(
	storage storage.Storage,
	dispatcher *dispatch.Dispatcher,
	broadcaster *broadcast.Service,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:     storage,
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
		clock:       clock,
		random:      random,
		logger:      logger.With(slog.String("component", "session")),
	}
}

// StartMatch begins a match in a waiting or finished room. startingPlayerID
// may be empty, in which case the starter policy picks who throws first.
func (c *Controller) StartMatch(ctx context.Context, roomID model.RoomID, requesterID, startingPlayerID model.PlayerID) (*model.RoomState, error) {
	if err := storage.RequireRoom(ctx, c.storage, roomID); err != nil {
		return nil, err
	}
	var state *model.RoomState
	err := c.dispatcher.Do(ctx, roomID, func(ctx context.Context) error {
		room, err := c.storage.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if room.GetPlayer(requesterID) == nil {
			return model.ErrUnauthorized
		}

		existing, err := c.loadMatch(ctx, roomID)
		if err != nil {
			return err
		}
		if existing != nil && existing.Status == model.MatchActive {
			return model.ErrMatchInProgress
		}

		if !mayStart(room, requesterID) {
			return model.ErrUnauthorized
		}
		if !hasEnoughPlayers(room) {
			return model.ErrNotEnoughPlayers
		}

		starter := startingPlayerID
		if starter == "" {
			starter = defaultStarter(room, requesterID)
		} else if room.GetPlayer(starter) == nil {
			return model.ErrPlayerNotFound
		}

		engine, err := ruleset.New(room.Ruleset, room.Options)
		if err != nil {
			return err
		}

		now := c.clock.Now()
		order := turnOrder(room, starter)
		match := &model.Match{
			ID:        c.random.UUID(),
			RoomID:    roomID,
			Ruleset:   room.Ruleset,
			Options:   room.Options,
			Order:     order,
			Leg:       engine.NewLeg(order),
			SetNumber: 1,
			LegNumber: 1,
			LegsWon:   make(map[model.PlayerID]int, len(order)),
			SetsWon:   make(map[model.PlayerID]int, len(order)),
			Status:    model.MatchActive,
			StartedAt: now,
		}
		for _, id := range order {
			match.LegsWon[id] = 0
			match.SetsWon[id] = 0
		}

		room.Status = model.GameStatusActive
		room.UpdatedAt = now

		if err := c.storage.SaveMatch(ctx, match); err != nil {
			return err
		}
		if err := c.storage.SaveRoom(ctx, room); err != nil {
			return err
		}

		c.logger.Info("match started",
			slog.String("room_id", string(roomID)),
			slog.String("match_id", match.ID),
			slog.String("ruleset", string(match.Ruleset)),
			slog.String("starter", string(starter)),
			slog.Int("player_count", len(order)),
		)

		state, err = c.broadcaster.Publish(ctx, room, match)
		return err
	})
	return state, err
}

// RecordBullOff stores the winner of the bull-off thrown at the board. Under
// the bulloff starter policy only that player may start the match.
func (c *Controller) RecordBullOff(ctx context.Context, roomID model.RoomID, requesterID, winnerID model.PlayerID) (*model.RoomState, error) {
	if err := storage.RequireRoom(ctx, c.storage, roomID); err != nil {
		return nil, err
	}
	var state *model.RoomState
	err := c.dispatcher.Do(ctx, roomID, func(ctx context.Context) error {
		room, err := c.storage.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if room.HostID != requesterID {
			return model.ErrUnauthorized
		}
		if room.Status == model.GameStatusActive {
			return model.ErrMatchInProgress
		}
		if room.GetPlayer(winnerID) == nil {
			return model.ErrPlayerNotFound
		}

		room.BullOffWinner = winnerID
		room.UpdatedAt = c.clock.Now()
		if err := c.storage.SaveRoom(ctx, room); err != nil {
			return err
		}

		c.logger.Info("bull-off recorded",
			slog.String("room_id", string(roomID)),
			slog.String("winner", string(winnerID)),
		)

		state, err = c.broadcaster.Publish(ctx, room, nil)
		return err
	})
	return state, err
}

// Rematch discards the room's match and returns the room to waiting, keeping
// its players, teams and options. Spectators fill any free player slots.
func (c *Controller) Rematch(ctx context.Context, roomID model.RoomID, requesterID model.PlayerID) (*model.RoomState, error) {
	if err := storage.RequireRoom(ctx, c.storage, roomID); err != nil {
		return nil, err
	}
	var state *model.RoomState
	err := c.dispatcher.Do(ctx, roomID, func(ctx context.Context) error {
		room, err := c.storage.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if room.GetPlayer(requesterID) == nil {
			return model.ErrUnauthorized
		}

		if err := c.storage.DeleteMatch(ctx, roomID); err != nil {
			return err
		}

		room.Status = model.GameStatusWaiting
		room.BullOffWinner = ""
		promoted := room.PromoteSpectators()
		room.UpdatedAt = c.clock.Now()
		if err := c.storage.SaveRoom(ctx, room); err != nil {
			return err
		}

		c.logger.Info("rematch requested",
			slog.String("room_id", string(roomID)),
			slog.String("requested_by", string(requesterID)),
			slog.Int("promoted_spectators", len(promoted)),
		)

		state, err = c.broadcaster.Publish(ctx, room, nil)
		return err
	})
	return state, err
}

func (c *Controller) loadMatch(ctx context.Context, roomID model.RoomID) (*model.Match, error) {
	match, err := c.storage.GetMatch(ctx, roomID)
	if errors.Is(err, model.ErrMatchNotFound) {
		return nil, nil
	}
	return match, err
}

// mayStart applies the room's starter policy
func mayStart(room *model.Room, requesterID model.PlayerID) bool {
	switch room.Options.Starter {
	case model.StarterOpponent:
		return requesterID != room.HostID
	case model.StarterBullOff:
		return room.BullOffWinner != "" && requesterID == room.BullOffWinner
	default:
		return requesterID == room.HostID
	}
}

func defaultStarter(room *model.Room, requesterID model.PlayerID) model.PlayerID {
	switch room.Options.Starter {
	case model.StarterOpponent, model.StarterBullOff:
		return requesterID
	default:
		return room.Players[0].ID
	}
}

// hasEnoughPlayers needs two players for singles and two full teams for doubles
func hasEnoughPlayers(room *model.Room) bool {
	if room.TeamMode == model.TeamModeDoubles {
		half := room.TeamMode.Capacity() / 2
		return room.TeamCount(model.TeamA) == half && room.TeamCount(model.TeamB) == half
	}
	return len(room.Players) >= 2
}

// Interface for dependency injection
type ControllerInterface interface {
	StartMatch(ctx context.Context, roomID model.RoomID, requesterID, startingPlayerID model.PlayerID) (*model.RoomState, error)
	RecordBullOff(ctx context.Context, roomID model.RoomID, requesterID, winnerID model.PlayerID) (*model.RoomState, error)
	Rematch(ctx context.Context, roomID model.RoomID, requesterID model.PlayerID) (*model.RoomState, error)
}

var _ ControllerInterface = (*Controller)(nil)
