package http

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/samirrijal/pinmap/internal/pkg/broadcast"
	"github.com/samirrijal/pinmap/internal/pkg/metrics"
)

const wsPingInterval = 30 * time.Second

// WebSocketHandler relays the broadcaster to a WebSocket client: replay
// history first, then live pins, one text frame per pin. Incoming frames
// are read only to notice when the client goes away.
func WebSocketHandler(b *broadcast.Broadcaster) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		sub := broadcast.NewSubscriber(uuid.NewString())
		if err := b.Register(sub); err != nil {
			_ = c.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		}
		slog.Info("ws client connected", "remote", remoteAddr, "client", sub.ID())
		metrics.ActiveStreams.WithLabelValues("ws").Inc()

		defer func() {
			b.Unregister(sub)
			sub.Close()
			metrics.ActiveStreams.WithLabelValues("ws").Dec()
			slog.Info("ws client disconnected", "remote", remoteAddr, "client", sub.ID())
		}()

		// Reader: any error means the peer is gone.
		go func() {
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					sub.Close()
					return
				}
			}
		}()

		for {
			ctx, cancel := context.WithTimeout(context.Background(), wsPingInterval)
			msg, err := sub.Next(ctx)
			cancel()

			switch {
			case err == nil:
				err = c.WriteMessage(websocket.TextMessage, []byte(msg))
			case errors.Is(err, context.DeadlineExceeded):
				err = c.WriteMessage(websocket.PingMessage, nil)
			default:
				return
			}
			if err != nil {
				return
			}
		}
	}
}
