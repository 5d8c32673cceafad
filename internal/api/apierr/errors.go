package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/dartsync/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeForbidden          = "FORBIDDEN"
	CodeRoomNotFound       = "ROOM_NOT_FOUND"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeMatchNotFound      = "MATCH_NOT_FOUND"
	CodeInvalidPassword    = "INVALID_PASSWORD"
	CodeInvalidName        = "INVALID_NAME"
	CodeNameTaken          = "NAME_TAKEN"
	CodeInvalidRoomConfig  = "INVALID_ROOM_CONFIG"
	CodeTeamFull           = "TEAM_FULL"
	CodeMatchNotActive     = "MATCH_NOT_ACTIVE"
	CodeMatchInProgress    = "MATCH_IN_PROGRESS"
	CodeNotEnoughPlayers   = "NOT_ENOUGH_PLAYERS"
	CodeNotYourTurn        = "NOT_YOUR_TURN"
	CodeGameAlreadyEnded   = "GAME_ALREADY_ENDED"
	CodeInvalidScoreFormat = "INVALID_SCORE_FORMAT"
	CodeQueryPending       = "QUERY_PENDING"
	CodeNoPendingQuery     = "NO_PENDING_QUERY"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	status, apiErr := From(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: apiErr})
}

// From maps an error to its HTTP status and API error body. Transports
// without status codes, like the WebSocket, use only the body.
func From(err error) (int, APIError) {
	he := toHTTPError(err)
	return he.status, he.apiError
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Room and membership errors
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrInvalidPassword):
		return &httpError{http.StatusForbidden, APIError{CodeInvalidPassword, "Invalid room password"}}
	case errors.Is(err, model.ErrInvalidName):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidName, "Display name must be 1 to 32 characters"}}
	case errors.Is(err, model.ErrNameTaken):
		return &httpError{http.StatusConflict, APIError{CodeNameTaken, "Display name is already taken in this room"}}
	case errors.Is(err, model.ErrInvalidRoomConfig):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRoomConfig, err.Error()}}
	case errors.Is(err, model.ErrTeamFull):
		return &httpError{http.StatusConflict, APIError{CodeTeamFull, "Team is full"}}
	case errors.Is(err, model.ErrUnauthorized):
		return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Not allowed to perform this action"}}
	case errors.Is(err, model.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidToken, "Invalid or expired token"}}

	// Match errors
	case errors.Is(err, model.ErrMatchNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeMatchNotFound, "Match not found"}}
	case errors.Is(err, model.ErrMatchNotActive):
		return &httpError{http.StatusConflict, APIError{CodeMatchNotActive, "No match in progress"}}
	case errors.Is(err, model.ErrMatchInProgress):
		return &httpError{http.StatusConflict, APIError{CodeMatchInProgress, "Match is in progress"}}
	case errors.Is(err, model.ErrNotEnoughPlayers):
		return &httpError{http.StatusConflict, APIError{CodeNotEnoughPlayers, "Not enough players to start"}}
	case errors.Is(err, model.ErrNotYourTurn):
		return &httpError{http.StatusConflict, APIError{CodeNotYourTurn, "Not your turn"}}
	case errors.Is(err, model.ErrGameAlreadyEnded):
		return &httpError{http.StatusConflict, APIError{CodeGameAlreadyEnded, "Game has already ended"}}

	// Throw and query errors
	case errors.Is(err, model.ErrInvalidScoreFormat):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidScoreFormat, "Invalid score format"}}
	case errors.Is(err, model.ErrQueryPending):
		return &httpError{http.StatusConflict, APIError{CodeQueryPending, "A confirmation is pending"}}
	case errors.Is(err, model.ErrNoPendingQuery):
		return &httpError{http.StatusConflict, APIError{CodeNoPendingQuery, "No matching confirmation is pending"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
