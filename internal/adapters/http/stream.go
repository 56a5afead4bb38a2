package http

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/samirrijal/pinmap/internal/pkg/broadcast"
	"github.com/samirrijal/pinmap/internal/pkg/metrics"
)

const defaultHeartbeat = 15 * time.Second

// writeEvent frames msg as one SSE event. Each line gets its own data field.
func writeEvent(w *bufio.Writer, msg string) error {
	for _, line := range strings.Split(msg, "\n") {
		if _, err := w.WriteString("data: " + line + "\n"); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\n")
	return err
}

// StreamHandler serves live pins as server-sent events. The replay history
// is sent first, then every new pin as it is created.
func StreamHandler(deps *Dependencies) fiber.Handler {
	heartbeat := deps.Heartbeat
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}

	return func(c *fiber.Ctx) error {
		sub := broadcast.NewSubscriber(uuid.NewString())
		if err := deps.Broadcaster.Register(sub); err != nil {
			return errUnavailable(c, "server is shutting down")
		}

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")
		c.Set("X-Accel-Buffering", "no")

		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			metrics.ActiveStreams.WithLabelValues("sse").Inc()
			defer metrics.ActiveStreams.WithLabelValues("sse").Dec()
			defer func() {
				deps.Broadcaster.Unregister(sub)
				sub.Close()
				slog.Info("stream client disconnected", "client", sub.ID())
			}()

			if _, err := w.WriteString(": connected\n\n"); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}

			for {
				ctx, cancel := context.WithTimeout(context.Background(), heartbeat)
				msg, err := sub.Next(ctx)
				cancel()

				switch {
				case err == nil:
					err = writeEvent(w, msg)
				case errors.Is(err, context.DeadlineExceeded):
					_, err = w.WriteString(": keep-alive\n\n")
				default:
					// Subscriber closed by shutdown.
					_ = w.Flush()
					return
				}
				if err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		})
		return nil
	}
}
