package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/dartsync/internal/api/handler"
	"github.com/mcoot/dartsync/internal/api/middleware"
	"github.com/mcoot/dartsync/internal/realtime"
	"github.com/mcoot/dartsync/internal/services/auth"
	"github.com/mcoot/dartsync/internal/services/match"
	"github.com/mcoot/dartsync/internal/services/room"
	"github.com/mcoot/dartsync/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	AuthService       *auth.Service
	RoomController    room.ControllerInterface
	SessionController session.ControllerInterface
	MatchController   match.ControllerInterface
	States            handler.StateSource
	HubManager        *realtime.HubManager
	Events            handler.EventsConfig
	// HealthCheck reports backend health (optional)
	HealthCheck func(ctx context.Context) error
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	roomHandler := handler.NewRoomHandler(cfg.RoomController, cfg.SessionController, cfg.States)
	matchHandler := handler.NewMatchHandler(cfg.MatchController)
	eventsHandler := handler.NewEventsHandler(cfg.HubManager, cfg.RoomController, cfg.MatchController, cfg.States, cfg.Events, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Creating and joining hand out the token, so no auth
	api.HandleFunc("/rooms", roomHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{id}/join", roomHandler.Join).Methods(http.MethodPost)

	// Member routes (token must belong to the room in the path)
	rooms := api.PathPrefix("/rooms/{id}").Subrouter()
	rooms.Use(authMiddleware)
	rooms.HandleFunc("/leave", roomHandler.Leave).Methods(http.MethodPost)
	rooms.HandleFunc("/team", roomHandler.SetTeam).Methods(http.MethodPost)
	rooms.HandleFunc("/bulloff", roomHandler.BullOff).Methods(http.MethodPost)
	rooms.HandleFunc("/start", roomHandler.Start).Methods(http.MethodPost)
	rooms.HandleFunc("/rematch", roomHandler.Rematch).Methods(http.MethodPost)
	rooms.HandleFunc("/state", roomHandler.State).Methods(http.MethodGet)

	// Match routes
	rooms.HandleFunc("/throw", matchHandler.Throw).Methods(http.MethodPost)
	rooms.HandleFunc("/checkout", matchHandler.Checkout).Methods(http.MethodPost)
	rooms.HandleFunc("/double-attempts", matchHandler.DoubleAttempts).Methods(http.MethodPost)

	// Realtime
	rooms.HandleFunc("/events", eventsHandler.SSE).Methods(http.MethodGet)
	rooms.HandleFunc("/ws", eventsHandler.WebSocket).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler(cfg.HealthCheck)).Methods(http.MethodGet)

	return r
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if check != nil {
			if err := check(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
