// Package match accepts throws for a room's active match, derives the
// confirmation queries a throw raises and applies their answers.
package match

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mcoot/dartsync/internal/dependencies/clock"
	"github.com/mcoot/dartsync/internal/dependencies/random"
	"github.com/mcoot/dartsync/internal/dispatch"
	"github.com/mcoot/dartsync/internal/model"
	"github.com/mcoot/dartsync/internal/services/broadcast"
	"github.com/mcoot/dartsync/internal/services/ruleset"
	"github.com/mcoot/dartsync/internal/services/session"
	"github.com/mcoot/dartsync/internal/storage"
)

// Controller is the turn and confirmation orchestrator
type Controller struct {
	storage     storage.Storage
	dispatcher  *dispatch.Dispatcher
	broadcaster *broadcast.Service
	clock       clock.Clock
	random      random.Random
	logger      *slog.Logger
}

// NewController creates a new match Controller
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
		logger:      logger.With(slog.String("component", "match")),
	}
}

// Throw applies one throw intent by playerID to the room's active match
func (c *Controller) Throw(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, input model.ThrowInput) (*model.RoomState, error) {
	if err := storage.RequireRoom(ctx, c.storage, roomID); err != nil {
		return nil, err
	}
	var state *model.RoomState
	err := c.dispatcher.Do(ctx, roomID, func(ctx context.Context) error {
		room, m, err := c.load(ctx, roomID)
		if err != nil {
			return err
		}
		if m == nil {
			return model.ErrMatchNotActive
		}
		if m.Status == model.MatchFinished {
			return model.ErrGameAlreadyEnded
		}
		if m.Pending != nil {
			return model.ErrQueryPending
		}
		if !acceptsInput(m.Ruleset, input) {
			return model.ErrInvalidScoreFormat
		}

		engine, err := ruleset.New(m.Ruleset, m.Options)
		if err != nil {
			return err
		}
		res, err := engine.ProcessThrow(&m.Leg, playerID, input)
		if err != nil {
			return err
		}

		now := c.clock.Now()
		record := newRecord(m, playerID, input, res, now)
		m.Throws = append(m.Throws, record)
		m.Pending = c.deriveQuery(m, playerID, record, len(m.Throws)-1)

		var notice *model.LegWon
		if res.Won() && m.Ruleset == model.RulesetCricket {
			if notice, err = session.CompleteLeg(room, m, now); err != nil {
				return err
			}
		}

		c.logger.Debug("throw processed",
			slog.String("room_id", string(roomID)),
			slog.String("player_id", string(playerID)),
			slog.Int("scored", res.Scored),
			slog.Int("score_after", res.ScoreAfter),
			slog.Bool("bust", res.Bust),
			slog.Bool("won", res.Won()),
		)
		if m.Pending != nil {
			c.logger.Debug("query raised",
				slog.String("room_id", string(roomID)),
				slog.String("kind", string(m.Pending.Kind)),
				slog.String("type", string(m.Pending.Type)),
			)
		}

		state, err = c.commit(ctx, room, m, notice)
		return err
	})
	return state, err
}

// ResolveCheckout answers a checkout query with the darts the finishing
// visit took. Zero darts rejects the checkout and turns the visit into a bust.
func (c *Controller) ResolveCheckout(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, darts int) (*model.RoomState, error) {
	if err := storage.RequireRoom(ctx, c.storage, roomID); err != nil {
		return nil, err
	}
	var state *model.RoomState
	err := c.dispatcher.Do(ctx, roomID, func(ctx context.Context) error {
		room, m, err := c.load(ctx, roomID)
		if err != nil {
			return err
		}
		q, err := pendingQuery(m, model.QueryCheckout, playerID)
		if err != nil {
			return err
		}
		if darts < 0 || darts > 3 {
			return model.ErrInvalidScoreFormat
		}
		if darts > 0 && darts < ruleset.MinCheckoutDarts(q.ScoreBeforeThrow, m.Options.OutMode) {
			return model.ErrInvalidScoreFormat
		}

		record := &m.Throws[q.ThrowIndex]
		m.Pending = nil

		var notice *model.LegWon
		if darts == 0 {
			record.Bust = true
			record.Checkout = false
			record.LegWon = false
			record.Scored = 0
			m.Leg.Remaining[playerID] = q.ScoreBeforeThrow
			m.Leg.Winner = ""
			m.Leg.Advance()
			c.logger.Info("checkout rejected",
				slog.String("room_id", string(roomID)),
				slog.String("player_id", string(playerID)),
				slog.Int("score_restored", q.ScoreBeforeThrow),
			)
		} else {
			record.Darts = record.Darts - 3 + darts
			if doubleOut(m.Options.OutMode) {
				record.DoublesHit++
				record.DoublesShot++
			}
			if notice, err = session.CompleteLeg(room, m, c.clock.Now()); err != nil {
				return err
			}
			c.logger.Info("checkout confirmed",
				slog.String("room_id", string(roomID)),
				slog.String("player_id", string(playerID)),
				slog.Int("finish", q.ReportedScore),
				slog.Int("darts", darts),
			)
		}

		state, err = c.commit(ctx, room, m, notice)
		return err
	})
	return state, err
}

// ResolveDoubleAttempts records how many darts of the visit were aimed at a
// double. The turn has already moved on and is not touched.
func (c *Controller) ResolveDoubleAttempts(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, attempts int) (*model.RoomState, error) {
	if err := storage.RequireRoom(ctx, c.storage, roomID); err != nil {
		return nil, err
	}
	var state *model.RoomState
	err := c.dispatcher.Do(ctx, roomID, func(ctx context.Context) error {
		room, m, err := c.load(ctx, roomID)
		if err != nil {
			return err
		}
		q, err := pendingQuery(m, model.QueryDoubleAttempts, playerID)
		if err != nil {
			return err
		}
		if attempts < 0 || attempts > 3 {
			return model.ErrInvalidScoreFormat
		}

		m.Throws[q.ThrowIndex].DoublesShot += attempts
		m.Pending = nil

		state, err = c.commit(ctx, room, m, nil)
		return err
	})
	return state, err
}

// load returns the room and its match; the match is nil when none exists
func (c *Controller) load(ctx context.Context, roomID model.RoomID) (*model.Room, *model.Match, error) {
	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	m, err := c.storage.GetMatch(ctx, roomID)
	if errors.Is(err, model.ErrMatchNotFound) {
		return room, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return room, m, nil
}

// commit saves the mutation and pushes the new snapshot, followed by the
// leg result when a leg ended
func (c *Controller) commit(ctx context.Context, room *model.Room, m *model.Match, notice *model.LegWon) (*model.RoomState, error) {
	if err := c.storage.SaveMatch(ctx, m); err != nil {
		return nil, err
	}
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	state, err := c.broadcaster.Publish(ctx, room, m)
	if err != nil {
		return nil, err
	}
	if notice != nil {
		c.broadcaster.PublishLegWon(room.ID, notice)
		c.logger.Info("leg won",
			slog.String("room_id", string(room.ID)),
			slog.String("winner", string(notice.LegWinner)),
			slog.Int("set", notice.SetNumber),
			slog.Int("leg", notice.LegNumber),
			slog.String("match_winner", string(notice.MatchWinner)),
		)
	}
	return state, nil
}

// deriveQuery classifies an X01 visit into the confirmation it needs, if any
func (c *Controller) deriveQuery(m *model.Match, playerID model.PlayerID, record model.ThrowRecord, index int) *model.Query {
	if m.Ruleset != model.RulesetX01 {
		return nil
	}
	q := &model.Query{
		ID:               c.random.UUID(),
		PlayerID:         playerID,
		ReportedScore:    record.Reported,
		ScoreBeforeThrow: record.ScoreBefore,
		ThrowIndex:       index,
	}
	switch {
	case record.LegWon:
		q.Kind = model.QueryCheckout
	case !doubleOut(m.Options.OutMode) || !ruleset.CanCheckoutFrom(record.ScoreBefore):
		return nil
	case record.Bust:
		q.Kind, q.Type = model.QueryDoubleAttempts, model.AttemptsBust
	default:
		q.Kind, q.Type = model.QueryDoubleAttempts, model.AttemptsMissed
	}
	return q
}

func newRecord(m *model.Match, playerID model.PlayerID, input model.ThrowInput, res ruleset.Result, now time.Time) model.ThrowRecord {
	record := model.ThrowRecord{
		PlayerID:    playerID,
		Set:         m.SetNumber,
		Leg:         m.LegNumber,
		Scored:      res.Scored,
		ScoreBefore: res.ScoreBefore,
		Marks:       res.Marks,
		Bust:        res.Bust,
		LegWon:      res.Won(),
		ThrownAt:    now,
	}
	switch v := input.(type) {
	case model.Points:
		record.Reported = int(v)
		record.Darts = 3
		record.Checkout = res.Won()
	case model.TargetHit:
		record.Reported = v.Number * v.Multiplier
		record.Number = v.Number
		record.Multiplier = v.Multiplier
		record.Darts = 1
	}
	return record
}

// pendingQuery returns the match's pending query if it is of kind and
// belongs to playerID
func pendingQuery(m *model.Match, kind model.QueryKind, playerID model.PlayerID) (*model.Query, error) {
	if m == nil || m.Pending == nil || m.Pending.Kind != kind {
		return nil, model.ErrNoPendingQuery
	}
	if m.Pending.PlayerID != playerID {
		return nil, model.ErrUnauthorized
	}
	return m.Pending, nil
}

// acceptsInput checks the throw variant against the ruleset
func acceptsInput(kind model.RulesetKind, input model.ThrowInput) bool {
	switch input.(type) {
	case model.Points:
		return kind == model.RulesetX01
	case model.TargetHit:
		return kind == model.RulesetCricket
	default:
		return false
	}
}

func doubleOut(mode model.InOutMode) bool {
	return mode == model.ModeDouble || mode == model.ModeMaster
}

// Interface for dependency injection
type ControllerInterface interface {
	Throw(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, input model.ThrowInput) (*model.RoomState, error)
	ResolveCheckout(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, darts int) (*model.RoomState, error)
	ResolveDoubleAttempts(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, attempts int) (*model.RoomState, error)
}

var _ ControllerInterface = (*Controller)(nil)
