package broadcast

import (
	"context"
	"errors"
	"sync"
)

// ErrSubscriberClosed is returned by Next once a closed subscriber has been drained.
var ErrSubscriberClosed = errors.New("subscriber closed")

// Subscriber is a single live viewer with a private FIFO queue.
// Enqueueing never blocks; Next blocks until a message arrives or the
// subscriber is closed.
type Subscriber struct {
	id string

	mu     sync.Mutex
	queue  []string
	closed bool
	wake   chan struct{}
}

// NewSubscriber creates an open subscriber.
func NewSubscriber(id string) *Subscriber {
	return &Subscriber{id: id, wake: make(chan struct{}, 1)}
}

// ID returns the identifier given at construction.
func (s *Subscriber) ID() string { return s.id }

func (s *Subscriber) enqueue(msg string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSubscriberClosed
	}
	s.queue = append(s.queue, msg)
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Subscriber) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Next returns the oldest queued message. Messages queued before Close are
// still returned; after that Next returns ErrSubscriberClosed. A done ctx
// returns ctx.Err() and leaves the queue untouched.
func (s *Subscriber) Next(ctx context.Context) (string, error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			msg := s.queue[0]
			s.queue[0] = ""
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return msg, nil
		}
		closed := s.closed
		s.mu.Unlock()

		if closed {
			return "", ErrSubscriberClosed
		}

		select {
		case <-s.wake:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// Close marks the subscriber closed and wakes a blocked Next. Idempotent.
func (s *Subscriber) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.notify()
}
