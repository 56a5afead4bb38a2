package usecases

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/pinmap/internal/core/domain"
	"github.com/samirrijal/pinmap/internal/core/ports"
	"github.com/samirrijal/pinmap/internal/pkg/metrics"
	"github.com/samirrijal/pinmap/internal/pkg/telemetry"
)

// Resolver maps coordinates to a place name.
type Resolver interface {
	Resolve(ctx context.Context, lat, lon float64) string
}

// PinService handles pin-related business logic.
type PinService struct {
	pins        ports.PinRepository
	resolver    Resolver
	broadcaster ports.Broadcaster
	publisher   ports.EventPublisher
	now         func() time.Time
	newID       func() string

	publishTimeout time.Duration
}

// DefaultPublishTimeout bounds a single event publish. Pins are already
// persisted and broadcast when the publish runs.
const DefaultPublishTimeout = 2 * time.Second

// NewPinService creates a new PinService. broadcaster and publisher may be nil.
func NewPinService(
	pins ports.PinRepository,
	resolver Resolver,
	broadcaster ports.Broadcaster,
	publisher ports.EventPublisher,
) *PinService {
	return &PinService{
		pins:        pins,
		resolver:    resolver,
		broadcaster: broadcaster,
		publisher:   publisher,
		now:         time.Now,
		newID:       uuid.NewString,

		publishTimeout: DefaultPublishTimeout,
	}
}

// WithClock overrides the timestamp source.
func (s *PinService) WithClock(now func() time.Time) *PinService {
	s.now = now
	return s
}

// WithPublishTimeout overrides the per-event publish deadline.
func (s *PinService) WithPublishTimeout(d time.Duration) *PinService {
	s.publishTimeout = d
	return s
}

// publishContext keeps ctx values but not its cancellation, and bounds the
// publish by publishTimeout.
func (s *PinService) publishContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
}

// List returns all stored pins in no particular order.
func (s *PinService) List(ctx context.Context) ([]domain.Pin, error) {
	pins, err := s.pins.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pins: %w", err)
	}
	if pins == nil {
		pins = []domain.Pin{}
	}
	return pins, nil
}

// ListByTime returns all stored pins, oldest first.
func (s *PinService) ListByTime(ctx context.Context) ([]domain.Pin, error) {
	pins, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(pins, func(a, b domain.Pin) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return pins, nil
}

// Get returns a single pin.
func (s *PinService) Get(ctx context.Context, id string) (*domain.Pin, error) {
	return s.pins.Get(ctx, id)
}

// Create enriches input with an identifier, timestamp and resolved location,
// persists it and announces it to live viewers.
func (s *PinService) Create(ctx context.Context, input domain.NewPin) (*domain.Pin, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidPin)
	}

	ctx, span := telemetry.Tracer().Start(ctx, "pins.create")
	defer span.End()

	pin := &domain.Pin{
		ID:        s.newID(),
		Lat:       input.Lat,
		Lng:       input.Lng,
		Name:      input.Name,
		Image:     input.Image,
		Timestamp: s.now(),
	}
	span.SetAttributes(attribute.String("pin.id", pin.ID))

	pin.Location = domain.UnknownLocation
	if s.resolver != nil {
		pin.Location = s.resolver.Resolve(ctx, pin.Lat, pin.Lng)
	}

	if err := s.pins.Save(ctx, pin); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("save pin: %w", err)
	}
	metrics.PinsCreated.Inc()
	slog.InfoContext(ctx, "pin created", "id", pin.ID, "name", pin.Name, "location", pin.Location)

	s.announce(ctx, pin)
	return pin, nil
}

// Delete removes a pin and reports whether it existed.
func (s *PinService) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := s.pins.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete pin %s: %w", id, err)
	}
	if !ok {
		slog.WarnContext(ctx, "pin not found", "id", id)
		return false, nil
	}
	metrics.PinsDeleted.Inc()
	slog.InfoContext(ctx, "pin deleted", "id", id)

	if s.publisher != nil {
		pctx, cancel := s.publishContext(ctx)
		defer cancel()
		if err := s.publisher.PublishPinDeleted(pctx, id); err != nil {
			slog.WarnContext(ctx, "publish pin deleted", "id", id, "error", err)
		}
	}
	return true, nil
}

func (s *PinService) announce(ctx context.Context, pin *domain.Pin) {
	if s.broadcaster != nil {
		data, err := json.Marshal(pin)
		if err != nil {
			slog.ErrorContext(ctx, "encode pin for broadcast", "id", pin.ID, "error", err)
		} else {
			s.broadcaster.Broadcast(string(data))
			metrics.BroadcastMessages.Inc()
		}
	}
	if s.publisher != nil {
		pctx, cancel := s.publishContext(ctx)
		defer cancel()
		if err := s.publisher.PublishPinCreated(pctx, pin); err != nil {
			slog.WarnContext(ctx, "publish pin created", "id", pin.ID, "error", err)
		}
	}
}
