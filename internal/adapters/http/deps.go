package http

import (
	"time"

	"github.com/samirrijal/pinmap/internal/core/ports"
	"github.com/samirrijal/pinmap/internal/core/usecases"
	"github.com/samirrijal/pinmap/internal/pkg/broadcast"
)

// EventsStatus reports broker connectivity.
type EventsStatus interface {
	Connected() bool
}

// Dependencies holds all services needed by HTTP handlers.
// Store, Events and Cache are optional and only consulted by /ready.
type Dependencies struct {
	Pins        *usecases.PinService
	Broadcaster *broadcast.Broadcaster
	Store       ports.Pinger
	Events      EventsStatus
	Cache       ports.Pinger
	// Heartbeat is the idle interval between SSE keep-alive comments.
	Heartbeat time.Duration
	StaticDir string
	// OpenAPIPath defaults to api/openapi.yaml relative to the working directory.
	OpenAPIPath string
	Now       func() time.Time
}

func (d *Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
