// Package broadcast is an in-process publish/subscribe hub with a bounded
// replay history for late joiners.
package broadcast

import (
	"errors"
	"log/slog"
	"sync"
)

// DefaultHistory is the replay buffer size used when none is given.
const DefaultHistory = 100

// ErrClosed is returned when registering on a closed broadcaster.
var ErrClosed = errors.New("broadcaster closed")

// Broadcaster delivers every message to all registered subscribers and
// replays the most recent messages to new ones. Register, Unregister and
// Broadcast are serialised by a single mutex so a subscriber joining during a
// broadcast sees each message exactly once.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[*Subscriber]struct{}
	history *ring
	closed  bool
}

// New creates a broadcaster keeping the last capacity messages.
func New(capacity int) *Broadcaster {
	if capacity <= 0 {
		capacity = DefaultHistory
	}
	return &Broadcaster{
		clients: make(map[*Subscriber]struct{}),
		history: newRing(capacity),
	}
}

// Register adds sub and enqueues the replay history to it in arrival order.
func (b *Broadcaster) Register(sub *Subscriber) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.clients[sub] = struct{}{}
	replayed := 0
	b.history.each(func(msg string) {
		if sub.enqueue(msg) == nil {
			replayed++
		}
	})
	total := len(b.clients)
	b.mu.Unlock()

	slog.Info("stream client registered", "client", sub.ID(), "replayed", replayed, "total_clients", total)
	return nil
}

// Unregister removes sub. Removing an absent subscriber is a no-op.
func (b *Broadcaster) Unregister(sub *Subscriber) {
	b.mu.Lock()
	_, ok := b.clients[sub]
	delete(b.clients, sub)
	total := len(b.clients)
	b.mu.Unlock()

	if ok {
		slog.Info("stream client unregistered", "client", sub.ID(), "total_clients", total)
	}
}

// Broadcast records msg in the history and enqueues it to every subscriber.
// Subscribers that can no longer accept messages are dropped. It returns the
// number of subscribers the message was delivered to.
func (b *Broadcaster) Broadcast(msg string) int {
	b.mu.Lock()
	b.history.push(msg)
	delivered := 0
	for sub := range b.clients {
		if err := sub.enqueue(msg); err != nil {
			delete(b.clients, sub)
			continue
		}
		delivered++
	}
	b.mu.Unlock()

	slog.Debug("broadcast message", "clients", delivered)
	return delivered
}

// Len returns the number of registered subscribers.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// History returns a copy of the replay buffer, oldest first.
func (b *Broadcaster) History() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, b.history.len())
	b.history.each(func(msg string) { out = append(out, msg) })
	return out
}

// Close closes every subscriber and rejects further registrations.
// Messages broadcast afterwards are kept in the history only.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	subs := make([]*Subscriber, 0, len(b.clients))
	for sub := range b.clients {
		subs = append(subs, sub)
	}
	clear(b.clients)
	b.closed = true
	b.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
	slog.Info("broadcaster closed", "closed_clients", len(subs))
}
