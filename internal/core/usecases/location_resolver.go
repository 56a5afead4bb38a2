package usecases

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"github.com/samirrijal/pinmap/internal/core/domain"
	"github.com/samirrijal/pinmap/internal/core/ports"
	"github.com/samirrijal/pinmap/internal/pkg/metrics"
	"github.com/samirrijal/pinmap/internal/pkg/telemetry"
)

// addressPreference is the order in which address fields name a place.
var addressPreference = []string{"city", "town", "village", "suburb", "county", "state"}

// coord is an exact coordinate pair. Near-identical floats are distinct keys.
type coord struct {
	lat, lon float64
}

func (c coord) String() string {
	return strconv.FormatFloat(c.lat, 'g', -1, 64) + "," + strconv.FormatFloat(c.lon, 'g', -1, 64)
}

// ResolverOptions tunes a LocationResolver. Zero values take the defaults.
type ResolverOptions struct {
	// Pace is waited before every outbound lookup. Default 1s; negative disables.
	Pace time.Duration
	// Timeout bounds a single outbound lookup. Default 5s.
	Timeout time.Duration
	// Shared is an optional second cache tier consulted before the network.
	Shared ports.CacheService
	// Sleep replaces the pacing wait, for tests.
	Sleep func(time.Duration)
}

// LocationResolver maps coordinates to place names, memoizing every answer
// for the lifetime of the process.
type LocationResolver struct {
	geocoder ports.ReverseGeocoder
	shared   ports.CacheService
	pace     time.Duration
	timeout  time.Duration
	sleep    func(time.Duration)

	mu      sync.RWMutex
	entries map[coord]string
	group   singleflight.Group
}

// NewLocationResolver creates a resolver backed by geocoder.
func NewLocationResolver(geocoder ports.ReverseGeocoder, opts ResolverOptions) *LocationResolver {
	r := &LocationResolver{
		geocoder: geocoder,
		shared:   opts.Shared,
		pace:     opts.Pace,
		timeout:  opts.Timeout,
		sleep:    opts.Sleep,
		entries:  make(map[coord]string),
	}
	if r.pace == 0 {
		r.pace = time.Second
	}
	if r.timeout <= 0 {
		r.timeout = 5 * time.Second
	}
	if r.sleep == nil {
		r.sleep = time.Sleep
	}
	return r
}

// Resolve returns the place name for (lat, lon). It never fails: lookups
// that cannot be answered yield domain.UnknownLocation. A pair reaches the
// geocoder at most once.
func (r *LocationResolver) Resolve(ctx context.Context, lat, lon float64) string {
	key := coord{lat: lat, lon: lon}

	if name, ok := r.cached(key); ok {
		metrics.GeocodeLookups.WithLabelValues("hit").Inc()
		return name
	}

	v, _, _ := r.group.Do(key.String(), func() (any, error) {
		if name, ok := r.cached(key); ok {
			return name, nil
		}
		name := r.lookup(ctx, key)
		r.mu.Lock()
		r.entries[key] = name
		r.mu.Unlock()
		return name, nil
	})
	return v.(string)
}

// Len returns the number of memoized coordinate pairs.
func (r *LocationResolver) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *LocationResolver) cached(key coord) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.entries[key]
	return name, ok
}

func (r *LocationResolver) sharedKey(key coord) string {
	return "geo:reverse:" + key.String()
}

func (r *LocationResolver) lookup(ctx context.Context, key coord) string {
	ctx = context.WithoutCancel(ctx)

	if r.shared != nil {
		if data, err := r.shared.Get(ctx, r.sharedKey(key)); err == nil && len(data) > 0 {
			metrics.GeocodeLookups.WithLabelValues("shared_hit").Inc()
			return string(data)
		}
	}

	if r.pace > 0 {
		r.sleep(r.pace)
	}

	ctx, span := telemetry.Tracer().Start(ctx, "geocode.reverse")
	defer span.End()
	span.SetAttributes(attribute.Float64("geo.lat", key.lat), attribute.Float64("geo.lon", key.lon))

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	slog.Info("geocoding request", "lat", key.lat, "lon", key.lon)
	start := time.Now()
	place, err := r.geocoder.Reverse(ctx, key.lat, key.lon)
	metrics.GeocodeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		slog.Error("reverse geocoding failed", "lat", key.lat, "lon", key.lon, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.GeocodeLookups.WithLabelValues("error").Inc()
		return domain.UnknownLocation
	}

	name, ok := PlaceName(place)
	if !ok {
		metrics.GeocodeLookups.WithLabelValues("fallback").Inc()
		return domain.UnknownLocation
	}
	metrics.GeocodeLookups.WithLabelValues("resolved").Inc()
	span.SetAttributes(attribute.String("geo.place", name))

	if r.shared != nil {
		if err := r.shared.Set(ctx, r.sharedKey(key), []byte(name), 0); err != nil {
			slog.Warn("shared geocode cache write failed", "error", err)
		}
	}
	return name
}

// PlaceName picks a human-readable name from a reverse geocoding answer: the
// first populated address field by preference, else the first segment of the
// display name. ok is false when neither is available.
func PlaceName(p *domain.Place) (name string, ok bool) {
	if p == nil {
		return "", false
	}
	for _, field := range addressPreference {
		if v := strings.TrimSpace(p.Address[field]); v != "" {
			slog.Debug("found location", "name", v, "field", field)
			return v, true
		}
	}
	if p.DisplayName != "" {
		first, _, _ := strings.Cut(p.DisplayName, ",")
		if first = strings.TrimSpace(first); first != "" {
			slog.Debug("using display name fallback", "name", first)
			return first, true
		}
	}
	return "", false
}
