package connector

import (
	"github.com/FerroO2000/lfmq/internal/rb"
)

// MinCapacity is the smallest accepted capacity.
const MinCapacity = rb.MinCapacity

// ErrInvalidCapacity is returned when the capacity is lower than [MinCapacity].
var ErrInvalidCapacity = rb.ErrInvalidCapacity

// NewRingBuffer returns a new lock-free spsc generic ring buffer
// with the given number of slots.
func NewRingBuffer[T any](capacity uint32) (*RingBuffer[T], error) {
	return rb.NewRingBuffer[T](capacity)
}

// NewControlQueue returns a new control message queue
// with the given number of slots.
func NewControlQueue(capacity uint32) (*ControlQueue, error) {
	return rb.NewRingBuffer[msg](capacity)
}
