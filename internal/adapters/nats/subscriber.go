package natsadapter

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

// AuditorDurable is the durable consumer name used by cmd/auditor.
const AuditorDurable = "pin-auditor"

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	durable string
}

// NewSubscriber connects to NATS. durable names the consumer so that
// restarts resume where the previous run stopped.
func NewSubscriber(url, durable string) (*Subscriber, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, err
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStream(js); err != nil {
		conn.Close()
		return nil, err
	}
	return &Subscriber{conn: conn, js: js, durable: durable}, nil
}

// SubscribePinEvents delivers every pins.* message to handler. A handler
// error naks the message for redelivery, up to three attempts.
func (s *Subscriber) SubscribePinEvents(ctx context.Context, handler func(ctx context.Context, subject string, data []byte) error) error {
	_, err := s.js.Subscribe("pins.>", func(msg *nats.Msg) {
		if err := handler(ctx, msg.Subject, msg.Data); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(s.durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return fmt.Errorf("subscribe pins.>: %w", err)
	}
	return nil
}

// Close drains the connection. The durable consumer is left on the server.
func (s *Subscriber) Close() {
	_ = s.conn.Drain()
}
