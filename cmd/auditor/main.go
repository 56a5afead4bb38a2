package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"

	natsadapter "github.com/samirrijal/pinmap/internal/adapters/nats"
	"github.com/samirrijal/pinmap/internal/core/domain"
	"github.com/samirrijal/pinmap/internal/core/ports"
	"github.com/samirrijal/pinmap/internal/pkg/config"
	"github.com/samirrijal/pinmap/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("pinmap-auditor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if cfg.NATS.URL == "" {
		log.Fatal("nats.url is required for the auditor")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, natsadapter.AuditorDurable)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	slog.Info("pin auditor started", "durable", natsadapter.AuditorDurable)
	if err := run(ctx, sub); err != nil {
		log.Fatalf("auditor: %v", err)
	}
	slog.Info("pin auditor stopped")
}

// run audits pin events from sub until ctx is cancelled.
func run(ctx context.Context, sub ports.EventSubscriber) error {
	if err := sub.SubscribePinEvents(ctx, audit); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	<-ctx.Done()
	return nil
}

// audit writes one structured line per pin event. Malformed payloads are
// logged and acknowledged; redelivering them would never succeed.
func audit(ctx context.Context, subject string, data []byte) error {
	switch subject {
	case natsadapter.SubjectPinCreated:
		var pin domain.Pin
		if err := json.Unmarshal(data, &pin); err != nil {
			slog.WarnContext(ctx, "malformed pin event", "subject", subject, "error", err)
			return nil
		}
		slog.InfoContext(ctx, "pin created",
			"id", pin.ID,
			"name", pin.Name,
			"location", pin.Location,
			"lat", pin.Lat,
			"lng", pin.Lng,
		)
	case natsadapter.SubjectPinDeleted:
		var ev natsadapter.DeletedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			slog.WarnContext(ctx, "malformed pin event", "subject", subject, "error", err)
			return nil
		}
		slog.InfoContext(ctx, "pin deleted", "id", ev.ID)
	default:
		slog.DebugContext(ctx, "ignoring pin event", "subject", subject)
	}
	return nil
}
