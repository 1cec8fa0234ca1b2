package commands

import (
	"fmt"
	"os"

	"github.com/FerroO2000/lfmq/dispatch"
	"github.com/FerroO2000/lfmq/internal/config"
	"github.com/FerroO2000/lfmq/internal/rb"
	"gopkg.in/yaml.v3"
)

// Default configuration values for the bench command.
const (
	DefaultBenchCapacity = 1024
	DefaultBenchMessages = 1_000_000
)

// benchConfig is the configuration of the bench command.
type benchConfig struct {
	// Capacity is the number of slots of the control queue.
	Capacity uint32 `yaml:"capacity"`

	// Messages is the number of messages sent by the producer.
	Messages int `yaml:"messages"`

	// Dispatcher is the configuration of the consumer.
	Dispatcher *dispatch.Config `yaml:"dispatcher"`
}

func newBenchConfig() *benchConfig {
	return &benchConfig{
		Capacity:   DefaultBenchCapacity,
		Messages:   DefaultBenchMessages,
		Dispatcher: dispatch.NewConfig(),
	}
}

// Validate checks the configuration.
func (c *benchConfig) Validate(ac *config.AnomalyCollector) {
	config.CheckNotLower(ac, "Capacity", &c.Capacity, rb.MinCapacity)

	config.CheckNotNegative(ac, "Messages", &c.Messages, DefaultBenchMessages)
	config.CheckNotZero(ac, "Messages", &c.Messages, DefaultBenchMessages)
}

// loadBenchConfig reads the configuration from a YAML file.
// Missing fields keep their default value.
func loadBenchConfig(path string) (*benchConfig, error) {
	cfg := newBenchConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if cfg.Dispatcher == nil {
		cfg.Dispatcher = dispatch.NewConfig()
	}

	return cfg, nil
}
