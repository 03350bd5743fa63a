package publish

import (
	"context"
	"fmt"

	"github.com/kbukum/eventstream/wire"
)

// Sink adapts the publisher to a streaming-write interface: each Send is
// one event record, and it completes only after the publisher commits.
// There is no internal queue — a stalled publish blocks the producer, which
// is the system's only backpressure mechanism.
type Sink struct {
	publisher *Publisher
	channel   string
}

// NewSink creates a sink writing to one channel.
func NewSink(p *Publisher, channel string) *Sink {
	return &Sink{publisher: p, channel: channel}
}

// Send publishes one event and blocks until the publisher commits. A failed
// publish surfaces as a write error carrying the original cause.
func (s *Sink) Send(ctx context.Context, ev wire.Event) error {
	if err := s.publisher.PublishEvent(ctx, ev, s.channel); err != nil {
		return fmt.Errorf("writing event to channel %q: %w", s.channel, err)
	}
	return nil
}
