package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"

	"github.com/samirrijal/pinmap/internal/adapters/postgres"
	"github.com/samirrijal/pinmap/internal/pkg/config"
)

var migrations = []struct {
	up, down string
}{
	{"migrations/001_pins.sql", "migrations/001_pins.down.sql"},
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}

	cfg, err := config.Load("pinmap-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var files []string
	switch os.Args[1] {
	case "up":
		for _, m := range migrations {
			files = append(files, m.up)
		}
	case "down":
		for _, m := range migrations {
			files = append(files, m.down)
		}
		slices.Reverse(files)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	err = db.ApplyFiles(ctx, files, func(path string) {
		fmt.Printf("OK  %s\n", path)
	})
	if err != nil {
		log.Fatalf("migrate %s: %v", os.Args[1], err)
	}

	log.Printf("%d migration(s) applied", len(files))
}
