package handler

import (
	"net/http"

	"github.com/mcoot/dartsync/internal/api/apierr"
	"github.com/mcoot/dartsync/internal/api/middleware"
	"github.com/mcoot/dartsync/internal/api/request"
	"github.com/mcoot/dartsync/internal/api/response"
	"github.com/mcoot/dartsync/internal/services/match"
)

// MatchHandler handles throws and confirmation answers
type MatchHandler struct {
	matches match.ControllerInterface
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(matches match.ControllerInterface) *MatchHandler {
	return &MatchHandler{matches: matches}
}

// Throw handles POST /api/v1/rooms/{id}/throw
func (h *MatchHandler) Throw(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	var req request.ThrowRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}
	input, err := req.Input()
	if err != nil {
		WriteError(w, apierr.NewInvalidRequestError(err.Error()))
		return
	}

	state, err := h.matches.Throw(r.Context(), session.RoomID, session.PlayerID, input)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.State(w, state)
}

// Checkout handles POST /api/v1/rooms/{id}/checkout
func (h *MatchHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	var req request.CheckoutRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}
	if req.Darts == nil {
		WriteError(w, apierr.NewInvalidRequestError("darts is required"))
		return
	}

	state, err := h.matches.ResolveCheckout(r.Context(), session.RoomID, session.PlayerID, *req.Darts)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.State(w, state)
}

// DoubleAttempts handles POST /api/v1/rooms/{id}/double-attempts
func (h *MatchHandler) DoubleAttempts(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	var req request.DoubleAttemptsRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}
	if req.Attempts == nil {
		WriteError(w, apierr.NewInvalidRequestError("attempts is required"))
		return
	}

	state, err := h.matches.ResolveDoubleAttempts(r.Context(), session.RoomID, session.PlayerID, *req.Attempts)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.State(w, state)
}
