package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/samirrijal/pinmap/internal/adapters/storage"
	"github.com/samirrijal/pinmap/internal/core/usecases"
	"github.com/samirrijal/pinmap/internal/pkg/config"
	"github.com/samirrijal/pinmap/internal/pkg/lightmap"
	"github.com/samirrijal/pinmap/internal/pkg/logging"
)

func main() {
	out := flag.String("o", "light-map.html", "output file")
	flag.Parse()

	cfg, err := config.Load("pinmap-export")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repo, closeRepo, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer closeRepo()

	// Export never creates pins, so no resolver or broadcaster is needed.
	pins, err := usecases.NewPinService(repo, nil, nil, nil).ListByTime(ctx)
	if err != nil {
		log.Fatalf("list pins: %v", err)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("create %s: %v", *out, err)
	}
	w := bufio.NewWriter(f)

	if err := lightmap.Render(w, pins, time.Now()); err != nil {
		f.Close()
		log.Fatalf("render: %v", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		log.Fatalf("write %s: %v", *out, err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("close %s: %v", *out, err)
	}

	slog.Info("light map written", "file", *out, "pins", len(pins))
}
