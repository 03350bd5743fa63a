package sse

import (
	"context"
	"fmt"

	"github.com/kbukum/eventstream/bus"
	"github.com/kbukum/eventstream/component"
	"github.com/kbukum/eventstream/config"
	"github.com/kbukum/eventstream/grip"
	"github.com/kbukum/eventstream/observability"
	"github.com/kbukum/eventstream/publish"
)

// Component wires the event distribution engine as a lifecycle-managed
// component: the bus, the publisher with its optional proxy leg, and the
// stream handler. Register it with the component registry.
type Component struct {
	bus       *bus.Bus
	publisher *publish.Publisher
	handler   *Handler
}

var _ component.Component = (*Component)(nil)

// NewComponent builds the engine from service configuration.
func NewComponent(cfg *config.Config, metrics *observability.Metrics) *Component {
	b := bus.New(bus.WithMetrics(metrics))

	opts := Options{
		Channels:            cfg.Stream.Channels,
		ChannelQueryParam:   cfg.Stream.ChannelQueryParam,
		AlwaysQueryChannels: cfg.Stream.AlwaysQueryChannels,
		ChannelPrefix:       cfg.Stream.ChannelPrefix,
		KeepAliveInterval:   cfg.Stream.KeepAliveInterval,
		Metrics:             metrics,
	}

	var external publish.External
	if cfg.Grip.Configured() {
		external = grip.NewPublisher(cfg.Grip)
	}
	if cfg.Grip.Configured() || cfg.Grip.Key != "" {
		opts.Proxy = grip.NewProxy(cfg.Grip)
	}

	return &Component{
		bus: b,
		publisher: publish.New(publish.Config{
			Bus:      b,
			External: external,
			Prefix:   cfg.Stream.ChannelPrefix,
			Metrics:  metrics,
		}),
		handler: NewHandler(b, opts),
	}
}

// Bus returns the process-local event bus.
func (c *Component) Bus() *bus.Bus { return c.bus }

// Publisher returns the write path producers publish through.
func (c *Component) Publisher() *publish.Publisher { return c.publisher }

// Handler returns the stream handler for route registration.
func (c *Component) Handler() *Handler { return c.handler }

// Name returns the component name.
func (c *Component) Name() string { return "sse" }

// Start is a no-op; connections drive all activity.
func (c *Component) Start(context.Context) error { return nil }

// Stop is a no-op; connections tear down with the HTTP server.
func (c *Component) Stop(context.Context) error { return nil }

// Health reports the number of attached listeners.
func (c *Component) Health(context.Context) component.Health {
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d listeners attached", c.bus.ListenerCount()),
	}
}
