package publish

import (
	"context"

	"github.com/kbukum/eventstream/bus"
	"github.com/kbukum/eventstream/errors"
	"github.com/kbukum/eventstream/logger"
	"github.com/kbukum/eventstream/observability"
	"github.com/kbukum/eventstream/wire"
)

// External is the proxy-side delivery leg, satisfied by grip.Publisher.
// PublishEvent must return only after the proxy acknowledged the event.
type External interface {
	PublishEvent(ctx context.Context, channel string, ev wire.Event) error
}

// Config configures a Publisher.
//
// Fan-out policy: every publish is mirrored onto the local bus so
// directly-connected subscribers in this process receive it; when External
// is set, the event is additionally delivered to the proxy and the external
// acknowledgment is awaited first. The two legs are independent best-effort
// deliveries, not a transaction — an external failure fails the call but
// does not undo local delivery, and vice versa.
type Config struct {
	// Bus is the process-local bus. Required.
	Bus *bus.Bus
	// External is the proxy delivery leg. Nil when no proxy is configured.
	External External
	// Prefix namespaces channel names on the proxy side. Local bus
	// channels stay unprefixed.
	Prefix string
	// Metrics is optional.
	Metrics *observability.Metrics
}

// Publisher is the sole entry point producers use to emit an event.
type Publisher struct {
	bus      *bus.Bus
	external External
	prefix   string
	metrics  *observability.Metrics
	log      *logger.Logger
}

// New creates a Publisher.
func New(cfg Config) *Publisher {
	return &Publisher{
		bus:      cfg.Bus,
		external: cfg.External,
		prefix:   cfg.Prefix,
		metrics:  cfg.Metrics,
		log:      logger.WithComponent("publish"),
	}
}

// PublishEvent delivers ev to channel through every configured leg. It
// returns once all required legs have completed; an external failure is
// surfaced as a delivery error and is never retried here — retry policy
// belongs to the producer.
func (p *Publisher) PublishEvent(ctx context.Context, ev wire.Event, channel string) error {
	ctx, span := observability.StartSpan(ctx, observability.SpanPublish)
	defer span.End()

	mode := "local"
	if p.external != nil {
		mode = "both"
		if err := p.external.PublishEvent(ctx, p.prefix+channel, ev); err != nil {
			p.metrics.RecordPublishFailure(ctx, channel)
			observability.SetSpanError(ctx, err)
			p.log.Error("external delivery failed", logger.ErrorFields(channel, err))
			return errors.DeliveryFailed(channel, err)
		}
	}

	p.bus.Publish(channel, ev)
	p.metrics.RecordPublish(ctx, channel, mode)

	p.log.Debug("event published", map[string]interface{}{
		logger.FieldChannel:   channel,
		logger.FieldEventType: ev.Type,
	})
	return nil
}
