package ports

import (
	"context"

	"github.com/samirrijal/pinmap/internal/core/domain"
)

// ReverseGeocoder maps a coordinate pair to a place description.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (*domain.Place, error)
}

// EventPublisher publishes pin domain events to a message broker.
type EventPublisher interface {
	PublishPinCreated(ctx context.Context, pin *domain.Pin) error
	PublishPinDeleted(ctx context.Context, id string) error
}

// EventSubscriber consumes pin domain events from a message broker.
type EventSubscriber interface {
	SubscribePinEvents(ctx context.Context, handler func(ctx context.Context, subject string, data []byte) error) error
}

// Broadcaster fans messages out to live viewers.
type Broadcaster interface {
	Broadcast(msg string) int
}

// CacheService provides read-through caching.
// A ttlSeconds of zero stores the value without expiry.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
