package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/pinmap/internal/core/domain"
)

// --- Mock ReverseGeocoder ---

type mockGeocoder struct {
	mu        sync.Mutex
	calls     int
	reverseFn func(ctx context.Context, lat, lon float64) (*domain.Place, error)
}

func (m *mockGeocoder) Reverse(ctx context.Context, lat, lon float64) (*domain.Place, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.reverseFn != nil {
		return m.reverseFn(ctx, lat, lon)
	}
	return nil, errors.New("not configured")
}

func (m *mockGeocoder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttlSeconds
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock PinRepository ---

type mockPinRepo struct {
	mu       sync.Mutex
	pins     map[string]domain.Pin
	saveFn   func(ctx context.Context, pin *domain.Pin) error
	listFn   func(ctx context.Context) ([]domain.Pin, error)
	deleteFn func(ctx context.Context, id string) (bool, error)
}

func newMockPinRepo() *mockPinRepo {
	return &mockPinRepo{pins: map[string]domain.Pin{}}
}

func (m *mockPinRepo) Save(ctx context.Context, pin *domain.Pin) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, pin)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pins[pin.ID] = *pin
	return nil
}

func (m *mockPinRepo) Get(ctx context.Context, id string) (*domain.Pin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pins[id]
	if !ok {
		return nil, domain.ErrPinNotFound
	}
	return &p, nil
}

func (m *mockPinRepo) List(ctx context.Context) ([]domain.Pin, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Pin
	for _, p := range m.pins {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockPinRepo) Delete(ctx context.Context, id string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pins[id]; !ok {
		return false, nil
	}
	delete(m.pins, id)
	return true, nil
}

// --- Mock Broadcaster and EventPublisher ---

type mockBroadcaster struct {
	mu   sync.Mutex
	msgs []string
}

func (m *mockBroadcaster) Broadcast(msg string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	return 1
}

type mockPublisher struct {
	created   []string
	deleted   []string
	err       error
	publishFn func(ctx context.Context) error
}

func (m *mockPublisher) PublishPinCreated(ctx context.Context, pin *domain.Pin) error {
	m.created = append(m.created, pin.ID)
	if m.publishFn != nil {
		return m.publishFn(ctx)
	}
	return m.err
}

func (m *mockPublisher) PublishPinDeleted(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	if m.publishFn != nil {
		return m.publishFn(ctx)
	}
	return m.err
}

// stalledPublish blocks until the publish context ends, like a JetStream
// publish against a broker that stopped answering.
func stalledPublish(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

// --- Static resolver ---

type staticResolver string

func (s staticResolver) Resolve(ctx context.Context, lat, lon float64) string { return string(s) }
