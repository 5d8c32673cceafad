// Package factory wires storage, services and the realtime layer into an
// App that the server and the tests share.
package factory

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/dartsync/internal/config"
	"github.com/mcoot/dartsync/internal/dependencies/clock"
	"github.com/mcoot/dartsync/internal/dependencies/random"
	"github.com/mcoot/dartsync/internal/dispatch"
	"github.com/mcoot/dartsync/internal/realtime"
	"github.com/mcoot/dartsync/internal/services/auth"
	"github.com/mcoot/dartsync/internal/services/broadcast"
	"github.com/mcoot/dartsync/internal/services/match"
	"github.com/mcoot/dartsync/internal/services/room"
	"github.com/mcoot/dartsync/internal/services/session"
	"github.com/mcoot/dartsync/internal/storage"
	"github.com/mcoot/dartsync/internal/storage/memory"
	redisstorage "github.com/mcoot/dartsync/internal/storage/redis"
)

// App contains all wired application components
type App struct {
	Storage storage.Storage
	Clock   clock.Clock
	Random  random.Random

	// Dispatcher runs each room's mutations on its own goroutine
	Dispatcher *dispatch.Dispatcher

	AuthService       *auth.Service
	Broadcaster       *broadcast.Service
	HubManager        *realtime.HubManager
	RoomController    *room.Controller
	SessionController *session.Controller
	MatchController   *match.Controller
}

// New opens the configured storage backend and wires the application
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("storage ready", slog.String("type", cfg.StorageType))

	authCfg := auth.DefaultConfig()
	authCfg.SessionDuration = cfg.SessionDuration

	return newWithDependencies(store, clock.UTC, random.New(), authCfg, logger), nil
}

func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageType {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StorageRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisCfg.KeyTTL = cfg.RedisKeyTTL
		store, err := redisstorage.New(ctx, redisCfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
}

func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, authCfg auth.Config, logger *slog.Logger) *App {
	dispatcher := dispatch.New(logger)
	hubManager := realtime.NewHubManager(logger)

	authService := auth.New(store, clk, rnd, logger, authCfg)
	broadcaster := broadcast.New(store, hubManager, clk, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		Dispatcher:        dispatcher,
		AuthService:       authService,
		Broadcaster:       broadcaster,
		HubManager:        hubManager,
		RoomController:    room.NewController(store, dispatcher, authService, broadcaster, clk, rnd, logger),
		SessionController: session.NewController(store, dispatcher, broadcaster, clk, rnd, logger),
		MatchController:   match.NewController(store, dispatcher, broadcaster, clk, rnd, logger),
	}
}

// Ping checks the storage backend when it supports it
func (a *App) Ping(ctx context.Context) error {
	if p, ok := a.Storage.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close stops the room loops, drops realtime clients and releases storage
func (a *App) Close() error {
	a.Dispatcher.Close()
	a.HubManager.CloseAll()
	if c, ok := a.Storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
