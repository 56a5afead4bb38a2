// Package badgerstore keeps pins in an embedded BadgerDB, one key per pin.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/samirrijal/pinmap/internal/core/domain"
	"github.com/samirrijal/pinmap/internal/pkg/metrics"
)

const pinKeyPrefix = "pin:"

// Store implements ports.PinRepository using BadgerDB.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a database at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	return New(db), nil
}

// New wraps an already open database.
func New(db *badger.DB) *Store {
	return &Store{db: db}
}

func pinKey(id string) []byte {
	return []byte(pinKeyPrefix + id)
}

// Save stores the pin.
func (s *Store) Save(ctx context.Context, pin *domain.Pin) error {
	if !domain.SafeID(pin.ID) {
		return fmt.Errorf("%w: unsafe id %q", domain.ErrInvalidPin, pin.ID)
	}
	data, err := json.Marshal(pin)
	if err != nil {
		return fmt.Errorf("marshal pin: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(pinKey(pin.ID), data); err != nil {
			return fmt.Errorf("set pin: %w", err)
		}
		return nil
	})
}

// Get retrieves a pin by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.Pin, error) {
	if !domain.SafeID(id) {
		return nil, domain.ErrPinNotFound
	}
	var pin domain.Pin
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(pinKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domain.ErrPinNotFound
		}
		if err != nil {
			return fmt.Errorf("get pin: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &pin)
		})
	})
	if err != nil {
		return nil, err
	}
	return &pin, nil
}

// List iterates every pin key. Values that fail to decode are skipped.
func (s *Store) List(ctx context.Context) ([]domain.Pin, error) {
	pins := []domain.Pin{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(pinKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var pin domain.Pin
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &pin)
			})
			if err != nil {
				slog.Warn("skipping unreadable pin", "key", string(item.Key()), "error", err)
				metrics.PinReadErrors.WithLabelValues("badger").Inc()
				continue
			}
			pins = append(pins, pin)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list pins: %w", err)
	}
	return pins, nil
}

// Delete removes a pin, reporting whether it existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	if !domain.SafeID(id) {
		return false, nil
	}
	existed := false
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(pinKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		existed = true
		return txn.Delete(pinKey(id))
	})
	if err != nil {
		return false, fmt.Errorf("delete pin: %w", err)
	}
	return existed, nil
}

// Ping reports whether the database is open.
func (s *Store) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger: database closed")
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
