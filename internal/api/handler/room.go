package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/dartsync/internal/api/middleware"
	"github.com/mcoot/dartsync/internal/api/request"
	"github.com/mcoot/dartsync/internal/api/response"
	"github.com/mcoot/dartsync/internal/model"
	"github.com/mcoot/dartsync/internal/services/room"
	"github.com/mcoot/dartsync/internal/services/session"
)

// StateSource provides the current snapshot of a room
type StateSource interface {
	GetState(ctx context.Context, roomID model.RoomID) (*model.RoomState, error)
}

// RoomHandler handles room membership and match lifecycle endpoints
type RoomHandler struct {
	rooms    room.ControllerInterface
	sessions session.ControllerInterface
	states   StateSource
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms room.ControllerInterface, sessions session.ControllerInterface, states StateSource) *RoomHandler {
	return &RoomHandler{
		rooms:    rooms,
		sessions: sessions,
		states:   states,
	}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.rooms.CreateRoom(r.Context(), room.CreateParams{
		Name:       req.Name,
		HostName:   req.DisplayName,
		Ruleset:    req.Ruleset,
		Options:    req.Options,
		MaxPlayers: req.MaxPlayers,
		TeamMode:   req.TeamMode,
		Password:   req.Password,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.JoinResponseFromResult(result))
}

// Join handles POST /api/v1/rooms/{id}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	roomID := model.RoomID(mux.Vars(r)["id"])

	var req request.JoinRoomRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.rooms.JoinRoom(r.Context(), roomID, req.DisplayName, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.JoinResponseFromResult(result))
}

// Leave handles POST /api/v1/rooms/{id}/leave
func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	state, err := h.rooms.Leave(r.Context(), session.RoomID, session.PlayerID)
	if err != nil {
		WriteError(w, err)
		return
	}
	if state == nil {
		// Last player left and the room is gone
		response.NoContent(w)
		return
	}

	response.State(w, state)
}

// SetTeam handles POST /api/v1/rooms/{id}/team
func (h *RoomHandler) SetTeam(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	var req request.SetTeamRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}
	target := session.PlayerID
	if req.PlayerID != "" {
		target = model.PlayerID(req.PlayerID)
	}

	state, err := h.rooms.SetTeam(r.Context(), session.RoomID, session.PlayerID, target, model.Team(req.Team))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.State(w, state)
}

// BullOff handles POST /api/v1/rooms/{id}/bulloff
func (h *RoomHandler) BullOff(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	var req request.BullOffRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	state, err := h.sessions.RecordBullOff(r.Context(), session.RoomID, session.PlayerID, model.PlayerID(req.WinnerID))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.State(w, state)
}

// Start handles POST /api/v1/rooms/{id}/start
func (h *RoomHandler) Start(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	var req request.StartMatchRequest
	if err := decodeBody(r, &req, true); err != nil {
		WriteError(w, err)
		return
	}

	state, err := h.sessions.StartMatch(r.Context(), session.RoomID, session.PlayerID, model.PlayerID(req.StartingPlayerID))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.State(w, state)
}

// Rematch handles POST /api/v1/rooms/{id}/rematch
func (h *RoomHandler) Rematch(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	state, err := h.sessions.Rematch(r.Context(), session.RoomID, session.PlayerID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.State(w, state)
}

// State handles GET /api/v1/rooms/{id}/state
func (h *RoomHandler) State(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	state, err := h.states.GetState(r.Context(), session.RoomID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.State(w, state)
}
