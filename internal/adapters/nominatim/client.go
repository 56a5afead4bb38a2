// Package nominatim is a reverse geocoding client for the OpenStreetMap
// Nominatim API.
package nominatim

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/samirrijal/pinmap/internal/core/domain"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "TUI Map Application/1.0"
	DefaultZoom      = 10
)

// Client implements ports.ReverseGeocoder.
type Client struct {
	baseURL   string
	userAgent string
	zoom      int
	http      *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithUserAgent sets the User-Agent header. Nominatim rejects anonymous clients.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithZoom sets the address detail level.
func WithZoom(zoom int) Option {
	return func(c *Client) { c.zoom = zoom }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: DefaultUserAgent,
		zoom:      DefaultZoom,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reverse looks up the place at (lat, lon). The caller bounds the request
// through ctx.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*domain.Place, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "json")
	params.Set("zoom", strconv.Itoa(c.zoom))

	reqURL := fmt.Sprintf("%s/reverse?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim reverse: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim reverse: unexpected status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("nominatim reverse: read body: %w", err)
	}

	var place domain.Place
	if err := json.Unmarshal(body, &place); err != nil {
		return nil, fmt.Errorf("nominatim reverse: decode: %w", err)
	}
	return &place, nil
}
