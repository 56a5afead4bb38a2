package ports

import (
	"context"

	"github.com/samirrijal/pinmap/internal/core/domain"
)

// PinRepository persists pins, one record per pin keyed by its identifier.
type PinRepository interface {
	// Save writes a new record. Pins are never updated in place.
	Save(ctx context.Context, pin *domain.Pin) error
	// Get returns domain.ErrPinNotFound when the record does not exist.
	Get(ctx context.Context, id string) (*domain.Pin, error)
	// List returns every readable record. Unreadable records are skipped.
	List(ctx context.Context) ([]domain.Pin, error)
	// Delete reports whether a record existed.
	Delete(ctx context.Context, id string) (bool, error)
}

// Pinger is implemented by repositories that can report backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}
