package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrNameTaken      = errors.New("display name is already taken in this room")
	ErrInvalidName    = errors.New("display name is required")
	ErrInvalidToken   = errors.New("invalid or expired token")

	// Room errors
	ErrRoomNotFound      = errors.New("room not found")
	ErrInvalidPassword   = errors.New("invalid room password")
	ErrInvalidRoomConfig = errors.New("invalid room configuration")
	ErrTeamFull          = errors.New("team is full")
	ErrUnauthorized      = errors.New("player is not authorized for this action")

	// Match errors
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchNotActive   = errors.New("no match in progress")
	ErrMatchInProgress  = errors.New("match is in progress")
	ErrNotEnoughPlayers = errors.New("not enough players to start a match")
	ErrNotYourTurn      = errors.New("not this player's turn")
	ErrGameAlreadyEnded = errors.New("game has already ended")

	// Throw and query errors
	ErrInvalidScoreFormat = errors.New("invalid score format")
	ErrQueryPending       = errors.New("a confirmation query is pending")
	ErrNoPendingQuery     = errors.New("no matching query is pending")
)
