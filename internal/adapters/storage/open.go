// Package storage opens the pin repository selected by configuration.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/pinmap/internal/adapters/badgerstore"
	"github.com/samirrijal/pinmap/internal/adapters/filestore"
	"github.com/samirrijal/pinmap/internal/adapters/postgres"
	"github.com/samirrijal/pinmap/internal/adapters/s3store"
	"github.com/samirrijal/pinmap/internal/core/ports"
	"github.com/samirrijal/pinmap/internal/pkg/config"
)

// Repository is a pin store that can report its health.
type Repository interface {
	ports.PinRepository
	ports.Pinger
}

// Open returns the configured repository and a function that releases it.
func Open(ctx context.Context, cfg *config.Config) (Repository, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverFile, "":
		s, err := filestore.New(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using file pin store", "dir", cfg.Storage.Dir)
		return s, func() {}, nil

	case config.DriverBadger:
		s, err := badgerstore.Open(cfg.Storage.BadgerDir)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using badger pin store", "dir", cfg.Storage.BadgerDir)
		return s, func() {
			if err := s.Close(); err != nil {
				slog.Error("close badger", "error", err)
			}
		}, nil

	case config.DriverS3:
		s, err := s3store.New(ctx, s3store.Config{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			Region:    cfg.S3.Region,
			UseSSL:    cfg.S3.UseSSL,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil

	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("database: %w", err)
		}
		slog.Info("using postgres pin store", "host", cfg.Database.Host, "db", cfg.Database.DBName)
		return postgres.NewPinRepo(db), db.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
