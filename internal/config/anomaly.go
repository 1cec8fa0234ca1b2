package config

import (
	"iter"
	"slices"
)

// Anomaly is an invalid configuration field that has been replaced by a fallback.
type Anomaly struct {
	Field    string
	Reason   string
	Actual   any
	Fallback any
}

// AnomalyCollector is an utility struct for collecting anomalies.
type AnomalyCollector struct {
	anomalies []*Anomaly
}

// NewAnomalyCollector returns a new empty collector.
func NewAnomalyCollector() *AnomalyCollector {
	return &AnomalyCollector{
		anomalies: []*Anomaly{},
	}
}

func (ac *AnomalyCollector) add(field, reason string, actual, fallback any) {
	ac.anomalies = append(ac.anomalies, &Anomaly{
		Field:    field,
		Reason:   reason,
		Actual:   actual,
		Fallback: fallback,
	})
}

// All iterates over the collected anomalies.
func (ac *AnomalyCollector) All() iter.Seq[*Anomaly] {
	return slices.Values(ac.anomalies)
}

// Len returns the number of collected anomalies.
func (ac *AnomalyCollector) Len() int {
	return len(ac.anomalies)
}
