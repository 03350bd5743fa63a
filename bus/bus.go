package bus

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/eventstream/logger"
	"github.com/kbukum/eventstream/observability"
	"github.com/kbukum/eventstream/wire"
)

// Handler receives one addressed event. It is invoked synchronously inside
// Publish and must not block; subscriptions queue internally.
type Handler func(channel string, ev wire.Event)

// Listener is the handle returned by Subscribe. It identifies one attached
// subscriber across all of its channels.
type Listener struct {
	id       string
	channels []string
	fn       Handler
}

// ID returns the listener's unique identifier.
func (l *Listener) ID() string { return l.id }

// Channels returns the channels this listener is attached to.
func (l *Listener) Channels() []string { return l.channels }

// Bus is the process-wide event bus.
type Bus struct {
	mu sync.RWMutex

	// channel name -> listener id -> listener
	channels map[string]map[string]*Listener
	// listener id -> listener, for counting and idempotent detach
	listeners map[string]*Listener

	metrics *observability.Metrics
	log     *logger.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithMetrics attaches metric instruments to the bus.
func WithMetrics(m *observability.Metrics) Option {
	return func(b *Bus) { b.metrics = m }
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		channels:  make(map[string]map[string]*Listener),
		listeners: make(map[string]*Listener),
		log:       logger.WithComponent("bus"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe attaches fn to every named channel and returns the handle used
// to detach it. Channel names are registered as given; deduplication is the
// subscription's concern.
func (b *Bus) Subscribe(channels []string, fn Handler) *Listener {
	l := &Listener{
		id:       uuid.NewString(),
		channels: channels,
		fn:       fn,
	}

	b.mu.Lock()
	b.listeners[l.id] = l
	for _, ch := range channels {
		subs, ok := b.channels[ch]
		if !ok {
			subs = make(map[string]*Listener)
			b.channels[ch] = subs
		}
		subs[l.id] = l
	}
	b.mu.Unlock()

	b.metrics.RecordSubscriberAttached(context.Background())
	b.log.Debug("listener attached", map[string]interface{}{
		logger.FieldListenerID: l.id,
		logger.FieldChannels:   channels,
	})

	return l
}

// Unsubscribe fully detaches a listener. It is idempotent: detaching an
// already-detached listener is a no-op.
func (b *Bus) Unsubscribe(l *Listener) {
	if l == nil {
		return
	}

	b.mu.Lock()
	if _, ok := b.listeners[l.id]; !ok {
		b.mu.Unlock()
		return
	}
	delete(b.listeners, l.id)
	for _, ch := range l.channels {
		subs, ok := b.channels[ch]
		if !ok {
			continue
		}
		delete(subs, l.id)
		if len(subs) == 0 {
			delete(b.channels, ch)
		}
	}
	b.mu.Unlock()

	b.metrics.RecordSubscriberDetached(context.Background())
	b.log.Debug("listener detached", map[string]interface{}{
		logger.FieldListenerID: l.id,
	})
}

// Publish synchronously fans ev out to every listener currently attached to
// channel. The listener set is snapshotted before invocation, so a callback
// may publish or unsubscribe without corrupting the iteration, and a
// listener registered during the call does not see it.
func (b *Bus) Publish(channel string, ev wire.Event) {
	b.mu.RLock()
	subs := b.channels[channel]
	snapshot := make([]*Listener, 0, len(subs))
	for _, l := range subs {
		snapshot = append(snapshot, l)
	}
	b.mu.RUnlock()

	for _, l := range snapshot {
		l.fn(channel, ev)
	}
}

// ListenerCount returns the number of attached listeners.
func (b *Bus) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// ChannelListenerCount returns the number of listeners attached to channel.
func (b *Bus) ChannelListenerCount(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.channels[channel])
}
