package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/dartsync/internal/api/apierr"
	"github.com/mcoot/dartsync/internal/api/middleware"
	"github.com/mcoot/dartsync/internal/api/request"
	"github.com/mcoot/dartsync/internal/api/response"
	"github.com/mcoot/dartsync/internal/model"
	"github.com/mcoot/dartsync/internal/realtime"
	"github.com/mcoot/dartsync/internal/services/match"
	"github.com/mcoot/dartsync/internal/services/room"
)

// EventsConfig configures the realtime transports
type EventsConfig struct {
	Keepalive      time.Duration
	OriginPatterns []string
}

// EventsHandler streams room events over SSE and WebSocket. The WebSocket
// also accepts throw and confirmation intents.
type EventsHandler struct {
	hubs    *realtime.HubManager
	rooms   room.ControllerInterface
	matches match.ControllerInterface
	states  StateSource
	config  EventsConfig
	logger  *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hubs *realtime.HubManager, rooms room.ControllerInterface, matches match.ControllerInterface, states StateSource, config EventsConfig, logger *slog.Logger) *EventsHandler {
	if config.Keepalive <= 0 {
		config.Keepalive = 15 * time.Second
	}
	return &EventsHandler{
		hubs:    hubs,
		rooms:   rooms,
		matches: matches,
		states:  states,
		config:  config,
		logger:  logger.With(slog.String("component", "events")),
	}
}

// SSE handles GET /api/v1/rooms/{id}/events
func (h *EventsHandler) SSE(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	client := realtime.NewClient(session.PlayerID, session.ConnectionID, "sse")
	hub := h.hubs.Attach(session.RoomID, client)
	defer h.release(r.Context(), hub, client, session)

	initial, err := h.connect(r.Context(), session)
	if err != nil {
		WriteError(w, err)
		return
	}

	realtime.ServeSSE(w, r, client, initial, h.config.Keepalive)
}

// WebSocket handles GET /api/v1/rooms/{id}/ws
func (h *EventsHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.config.OriginPatterns,
	})
	if err != nil {
		// Accept has already written the HTTP error
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.CloseNow()

	client := realtime.NewClient(session.PlayerID, session.ConnectionID, "websocket")
	hub := h.hubs.Attach(session.RoomID, client)
	defer h.release(r.Context(), hub, client, session)

	initial, err := h.connect(r.Context(), session)
	if err != nil {
		_ = realtime.WriteJSON(r.Context(), conn, response.NewErrorMessage(err))
		_ = conn.Close(websocket.StatusPolicyViolation, "not a room member")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return realtime.WriteWebSocket(gctx, conn, client, initial, h.config.Keepalive)
	})
	g.Go(func() error {
		defer cancel()
		return h.readIntents(gctx, conn, session)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		h.logger.Debug("websocket closed", slog.String("error", err.Error()))
	}
	_ = conn.Close(websocket.StatusNormalClosure, "")
}

// readIntents applies the client's intents until the peer closes. A
// rejected intent is answered with an error message on the same socket;
// accepted ones reach every member through the state broadcast.
func (h *EventsHandler) readIntents(ctx context.Context, conn *websocket.Conn, session *model.Session) error {
	for {
		var intent request.Intent
		if err := wsjson.Read(ctx, conn, &intent); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		reply, err := h.applyIntent(ctx, session, intent)
		if err != nil {
			reply = response.NewErrorMessage(err)
		}
		if reply != nil {
			if err := realtime.WriteJSON(ctx, conn, reply); err != nil {
				return err
			}
		}
	}
}

// applyIntent runs one intent. The returned value, if any, is sent back
// to this connection only.
func (h *EventsHandler) applyIntent(ctx context.Context, session *model.Session, intent request.Intent) (any, error) {
	switch intent.Type {
	case request.IntentThrow:
		input, err := intent.Input()
		if err != nil {
			return nil, apierr.NewInvalidRequestError(err.Error())
		}
		_, err = h.matches.Throw(ctx, session.RoomID, session.PlayerID, input)
		return nil, err

	case request.IntentCheckout:
		if intent.Darts == nil {
			return nil, apierr.NewInvalidRequestError("darts is required")
		}
		_, err := h.matches.ResolveCheckout(ctx, session.RoomID, session.PlayerID, *intent.Darts)
		return nil, err

	case request.IntentDoubleAttempts:
		if intent.Attempts == nil {
			return nil, apierr.NewInvalidRequestError("attempts is required")
		}
		_, err := h.matches.ResolveDoubleAttempts(ctx, session.RoomID, session.PlayerID, *intent.Attempts)
		return nil, err

	case request.IntentGetState:
		state, err := h.states.GetState(ctx, session.RoomID)
		if err != nil {
			return nil, err
		}
		return stateEvent(state), nil

	default:
		return nil, apierr.NewInvalidRequestError("unknown intent type")
	}
}

// connect marks the member connected and returns the snapshot that opens
// the stream. The client is attached to the hub first so no update between
// the snapshot and the first broadcast is missed.
func (h *EventsHandler) connect(ctx context.Context, session *model.Session) (*model.Event, error) {
	if err := h.rooms.Attach(ctx, session.RoomID, session.PlayerID, session.ConnectionID); err != nil {
		return nil, err
	}
	state, err := h.states.GetState(ctx, session.RoomID)
	if err != nil {
		return nil, err
	}
	return stateEvent(state), nil
}

// release detaches the client and flags the member disconnected when this
// was its last open stream
func (h *EventsHandler) release(ctx context.Context, hub *realtime.Hub, client *realtime.Client, session *model.Session) {
	if hub.Unregister(client) {
		return
	}
	err := h.rooms.Disconnect(context.WithoutCancel(ctx), session.RoomID, session.PlayerID, session.ConnectionID)
	if err != nil && !errors.Is(err, model.ErrRoomNotFound) && !errors.Is(err, model.ErrPlayerNotFound) {
		h.logger.Error("failed to record disconnect",
			slog.String("room_id", string(session.RoomID)),
			slog.String("player_id", string(session.PlayerID)),
			slog.String("error", err.Error()),
		)
	}
}

func stateEvent(state *model.RoomState) *model.Event {
	return &model.Event{
		Type:      model.EventState,
		Timestamp: state.UpdatedAt,
		RoomID:    state.RoomID,
		Payload:   state,
	}
}
