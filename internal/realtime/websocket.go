package realtime

import (
	"context"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/mcoot/dartsync/internal/model"
)

// Time allowed to write a message to the peer
const writeWait = 5 * time.Second

// WriteWebSocket forwards the client's events to conn as JSON text frames
// and pings the peer every keepalive. It returns when the client is dropped,
// ctx ends, or a write fails.
func WriteWebSocket(ctx context.Context, conn *websocket.Conn, client *Client, initial *model.Event, keepalive time.Duration) error {
	if initial != nil {
		if err := writeJSON(ctx, conn, initial); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(keepalive)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.Events():
			if !ok {
				return nil
			}
			if err := writeJSON(ctx, conn, event); err != nil {
				return err
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func writeJSON(ctx context.Context, conn *websocket.Conn, v any) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return wsjson.Write(writeCtx, conn, v)
}

// WriteJSON writes a single JSON message, used for replies to intents
func WriteJSON(ctx context.Context, conn *websocket.Conn, v any) error {
	return writeJSON(ctx, conn, v)
}
