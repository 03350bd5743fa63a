package stream

import (
	"context"
	"sync"

	"github.com/kbukum/eventstream/bus"
	"github.com/kbukum/eventstream/logger"
	"github.com/kbukum/eventstream/pipeline"
	"github.com/kbukum/eventstream/wire"
)

// Subscription receives the events addressed to a fixed channel set for the
// lifetime of one connection. It implements pipeline.Iterator[wire.Event]
// and is normally ended only by connection closure.
type Subscription struct {
	bus      *bus.Bus
	channels []string
	members  map[string]struct{}

	lastEventID string

	mu     sync.Mutex
	queue  []wire.Event
	closed bool

	notify chan struct{}
	done   chan struct{}

	listener  *bus.Listener
	closeOnce sync.Once

	log *logger.Logger
}

// SubscriptionOption configures a Subscription.
type SubscriptionOption func(*Subscription)

// WithLastEventID carries the client's resume marker on the subscription.
// Replay is out of scope; the marker is passed through untouched.
func WithLastEventID(id string) SubscriptionOption {
	return func(s *Subscription) { s.lastEventID = id }
}

// Subscribe attaches a new subscription to the bus. The channel set is
// deduplicated preserving first-seen order. The caller must Close the
// subscription on every exit path.
func Subscribe(b *bus.Bus, channels []string, opts ...SubscriptionOption) *Subscription {
	deduped := Dedupe(channels)

	s := &Subscription{
		bus:      b,
		channels: deduped,
		members:  make(map[string]struct{}, len(deduped)),
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
		log:      logger.WithComponent("stream"),
	}
	for _, ch := range deduped {
		s.members[ch] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}

	s.listener = b.Subscribe(deduped, s.onEvent)
	return s
}

// ID returns the bus listener identity of this subscription.
func (s *Subscription) ID() string { return s.listener.ID() }

// Channels returns the resolved channel set, deduplicated in first-seen order.
func (s *Subscription) Channels() []string { return s.channels }

// LastEventID returns the resume marker supplied by the client, if any.
func (s *Subscription) LastEventID() string { return s.lastEventID }

// onEvent is the bus callback. It runs inside Publish and must not block:
// matching events are queued for the puller.
func (s *Subscription) onEvent(channel string, ev wire.Event) {
	if _, ok := s.members[channel]; !ok {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, ev)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Next blocks until an event is available, the subscription is closed, or
// ctx is done. Queued events are drained even after Close, so nothing the
// bus already delivered is lost.
func (s *Subscription) Next(ctx context.Context) (wire.Event, bool, error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			ev := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return ev, true, nil
		}
		closed := s.closed
		s.mu.Unlock()

		if closed {
			return wire.Event{}, false, nil
		}

		select {
		case <-s.notify:
		case <-s.done:
		case <-ctx.Done():
			return wire.Event{}, false, ctx.Err()
		}
	}
}

// Close detaches the subscription from the bus. Idempotent; safe on every
// exit path.
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		close(s.done)
		s.bus.Unsubscribe(s.listener)

		s.log.Debug("subscription closed", map[string]interface{}{
			logger.FieldListenerID: s.listener.ID(),
			logger.FieldChannels:   s.channels,
		})
	})
	return nil
}

// Events returns the subscription as a lazy pipeline of event records.
func (s *Subscription) Events() *pipeline.Pipeline[wire.Event] {
	return pipeline.From[wire.Event](s)
}

// Dedupe removes duplicate channel names preserving first-seen order.
func Dedupe(channels []string) []string {
	seen := make(map[string]struct{}, len(channels))
	out := make([]string, 0, len(channels))
	for _, ch := range channels {
		if _, ok := seen[ch]; ok {
			continue
		}
		seen[ch] = struct{}{}
		out = append(out, ch)
	}
	return out
}
