package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/eventstream/grip"
)

// DefaultChannelQueryParam is the query parameter clients use to name
// channels when none are configured statically.
const DefaultChannelQueryParam = "channel"

// DefaultChannelPrefix namespaces channel names on the proxy side.
const DefaultChannelPrefix = "events-"

// DefaultKeepAliveInterval is the idle heartbeat interval.
const DefaultKeepAliveInterval = 20 * time.Second

// StreamConfig configures event stream endpoints.
type StreamConfig struct {
	// Channels statically binds every connection to these channels.
	Channels []string `yaml:"channels" mapstructure:"channels"`
	// ChannelQueryParam names the query parameter that supplies channels.
	ChannelQueryParam string `yaml:"channel_query_param" mapstructure:"channel_query_param"`
	// AlwaysQueryChannels reads query channels even when static channels
	// are configured.
	AlwaysQueryChannels bool `yaml:"always_query_channels" mapstructure:"always_query_channels"`
	// ChannelPrefix namespaces channel names on the proxy side. Local
	// subscriptions use unprefixed names.
	ChannelPrefix string `yaml:"channel_prefix" mapstructure:"channel_prefix"`
	// KeepAliveInterval is the idle heartbeat interval.
	KeepAliveInterval time.Duration `yaml:"keep_alive_interval" mapstructure:"keep_alive_interval" validate:"min=0"`
}

// ApplyDefaults applies default values to stream configuration.
func (c *StreamConfig) ApplyDefaults() {
	if c.ChannelQueryParam == "" {
		c.ChannelQueryParam = DefaultChannelQueryParam
	}
	if c.ChannelPrefix == "" {
		c.ChannelPrefix = DefaultChannelPrefix
	}
	if c.KeepAliveInterval == 0 {
		c.KeepAliveInterval = DefaultKeepAliveInterval
	}
}

// Config is the full configuration of the eventstream service.
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Stream StreamConfig `yaml:"stream" mapstructure:"stream"`
	Grip   grip.Config  `yaml:"grip" mapstructure:"grip"`
}

var structValidator = validator.New()

// ApplyDefaults applies default values to the full configuration.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Stream.ApplyDefaults()
}

// Validate validates the full configuration.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := structValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Load reads, defaults and validates the service configuration.
func Load(serviceName string, opts ...LoaderOption) (*Config, error) {
	var cfg Config
	if err := LoadConfig(serviceName, &cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
