package dispatch

import (
	"time"

	"github.com/FerroO2000/lfmq/internal/config"
)

// Default configuration values for the dispatcher.
const (
	DefaultMaxBatch     = 64
	DefaultIdleInterval = time.Millisecond
	DefaultStopOnStop   = true
)

// Config is the configuration of a [Dispatcher].
type Config struct {
	// MaxBatch is the maximum number of messages dispatched by a single drain.
	// It bounds the time spent in a drain call.
	//
	// Default: 64
	MaxBatch int `yaml:"max_batch"`

	// IdleInterval is the time the run loop waits before draining
	// again when the queue is empty.
	//
	// Default: 1 millisecond
	IdleInterval time.Duration `yaml:"idle_interval"`

	// StopOnStop states whether the run loop returns after
	// dispatching a stop message.
	//
	// Default: true
	StopOnStop bool `yaml:"stop_on_stop"`
}

// NewConfig returns the default configuration for the dispatcher.
func NewConfig() *Config {
	return &Config{
		MaxBatch:     DefaultMaxBatch,
		IdleInterval: DefaultIdleInterval,
		StopOnStop:   DefaultStopOnStop,
	}
}

// Validate checks the configuration.
func (c *Config) Validate(ac *config.AnomalyCollector) {
	config.CheckNotNegative(ac, "MaxBatch", &c.MaxBatch, DefaultMaxBatch)
	config.CheckNotZero(ac, "MaxBatch", &c.MaxBatch, DefaultMaxBatch)

	config.CheckNotNegative(ac, "IdleInterval", &c.IdleInterval, DefaultIdleInterval)
	config.CheckNotZero(ac, "IdleInterval", &c.IdleInterval, DefaultIdleInterval)
}
