package config

import (
	"testing"
	"time"

	"github.com/FerroO2000/lfmq/internal"
	"github.com/stretchr/testify/assert"
)

type testConfig struct {
	Capacity uint32
	Batch    int
	Interval time.Duration
	Gain     float32
}

func (c *testConfig) Validate(ac *AnomalyCollector) {
	CheckNotLower(ac, "Capacity", &c.Capacity, 3)
	CheckNotNegative(ac, "Batch", &c.Batch, 64)
	CheckNotZero(ac, "Batch", &c.Batch, 64)
	CheckNotZero(ac, "Interval", &c.Interval, time.Millisecond)
	CheckNotGreater(ac, "Gain", &c.Gain, 1)
}

func Test_Validator(t *testing.T) {
	assert := assert.New(t)

	validator := NewValidator(internal.NewTelemetry("config", "test"))

	valid := &testConfig{Capacity: 1024, Batch: 8, Interval: time.Second, Gain: 0.5}
	assert.Zero(validator.Validate(valid))
	assert.Equal(&testConfig{Capacity: 1024, Batch: 8, Interval: time.Second, Gain: 0.5}, valid)

	invalid := &testConfig{Capacity: 2, Batch: -1, Gain: 4}
	assert.Equal(4, validator.Validate(invalid))
	assert.Equal(&testConfig{Capacity: 3, Batch: 64, Interval: time.Millisecond, Gain: 1}, invalid)
}

func Test_AnomalyCollector(t *testing.T) {
	assert := assert.New(t)

	ac := NewAnomalyCollector()
	batch := 0
	CheckNotZero(ac, "Batch", &batch, 32)

	assert.Equal(1, ac.Len())
	for anomaly := range ac.All() {
		assert.Equal("Batch", anomaly.Field)
		assert.Equal("cannot be zero", anomaly.Reason)
		assert.Equal(0, anomaly.Actual)
		assert.Equal(32, anomaly.Fallback)
	}
}
