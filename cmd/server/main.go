package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/dartsync/internal/api"
	"github.com/mcoot/dartsync/internal/api/handler"
	"github.com/mcoot/dartsync/internal/config"
	"github.com/mcoot/dartsync/internal/factory"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	app, err := factory.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("closing application", slog.String("error", err.Error()))
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		AuthService:       app.AuthService,
		RoomController:    app.RoomController,
		SessionController: app.SessionController,
		MatchController:   app.MatchController,
		States:            app.Broadcaster,
		HubManager:        app.HubManager,
		Events: handler.EventsConfig{
			Keepalive:      cfg.SSEKeepalive,
			OriginPatterns: cfg.AllowedOrigins,
		},
		HealthCheck: app.Ping,
	})

	server := api.NewServer(router, api.ServerConfig{
		Addr:            cfg.Addr,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		IdleTimeout:     cfg.IdleTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// End realtime streams so Shutdown does not wait on them
	server.OnShutdown(app.HubManager.CloseAll)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		return server.Shutdown(context.Background())
	})

	g.Go(func() error {
		cleanupHubs(gctx, app, cfg.HubCleanup)
		return nil
	})

	return g.Wait()
}

// cleanupHubs periodically drops hubs of rooms nobody is watching
func cleanupHubs(ctx context.Context, app *factory.App, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			app.HubManager.CleanupEmptyHubs()
		case <-ctx.Done():
			return
		}
	}
}
