// Package rb provides a lock-free single producer/single consumer generic ring buffer.
package rb

import (
	"errors"
	"fmt"
)

// MinCapacity is the smallest accepted capacity.
// One slot is always kept free, so a capacity of 2 would leave a single usable slot.
const MinCapacity = 3

var (
	// ErrInvalidCapacity is returned when the capacity is lower than [MinCapacity].
	ErrInvalidCapacity = errors.New("ring buffer: capacity must be greater than 2")

	// ErrConcurrentProducer is the panic value raised by lfmqdebug builds
	// when two goroutines push at the same time.
	ErrConcurrentProducer = errors.New("ring buffer: concurrent push, only one producer is allowed")
	// ErrConcurrentConsumer is the panic value raised by lfmqdebug builds
	// when two goroutines pop at the same time.
	ErrConcurrentConsumer = errors.New("ring buffer: concurrent pop, only one consumer is allowed")
)

// RingBuffer is a lock-free single producer/single consumer generic ring buffer.
//
// Exactly one goroutine may call the producer methods ([RingBuffer.Push], [RingBuffer.PushRef])
// and exactly one goroutine may call the consumer methods ([RingBuffer.Pop], [RingBuffer.Front])
// for the whole lifetime of the buffer. The two may be the same goroutine.
// Breaking this rule is a data race; builds with the lfmqdebug tag panic on it.
//
// No method blocks, allocates or takes a lock.
// A full buffer on push and an empty buffer on pop are reported as false.
type RingBuffer[T any] struct {
	spsc *spscBuffer[T]

	guard guard
}

// NewRingBuffer returns a new ring buffer with the given number of slots.
// At most capacity-1 items can be held at the same time.
func NewRingBuffer[T any](capacity uint32) (*RingBuffer[T], error) {
	if capacity < MinCapacity {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}

	return &RingBuffer[T]{
		spsc: newSPSCBuffer[T](uint64(capacity)),
	}, nil
}

// MustNewRingBuffer is like [NewRingBuffer] but panics on an invalid capacity.
func MustNewRingBuffer[T any](capacity uint32) *RingBuffer[T] {
	rb, err := NewRingBuffer[T](capacity)
	if err != nil {
		panic(err)
	}
	return rb
}

// Push copies the item into the buffer.
// It returns false, leaving the buffer untouched, if the buffer is full.
// Only call it from the producer goroutine.
func (rb *RingBuffer[T]) Push(item T) bool {
	return rb.PushRef(&item)
}

// PushRef is like [RingBuffer.Push] but copies the item from a pointer.
// It avoids an extra copy for large items.
func (rb *RingBuffer[T]) PushRef(item *T) bool {
	rb.guard.enterProducer()
	ok := rb.spsc.push(item)
	rb.guard.exitProducer()
	return ok
}

// Pop removes the oldest item and copies it into out.
// out may be nil to discard the item.
// It returns false, leaving out untouched, if the buffer is empty.
// Only call it from the consumer goroutine.
func (rb *RingBuffer[T]) Pop(out *T) bool {
	rb.guard.enterConsumer()
	ok := rb.spsc.pop(out)
	rb.guard.exitConsumer()
	return ok
}

// Front returns a pointer to the oldest item without removing it.
// If the buffer is empty the pointed slot holds a stale or zero value,
// so check [RingBuffer.IsEmpty] first.
// Only call it from the consumer goroutine.
func (rb *RingBuffer[T]) Front() *T {
	rb.guard.enterConsumer()
	item := rb.spsc.front()
	rb.guard.exitConsumer()
	return item
}

// IsEmpty states whether the buffer is empty.
// Under concurrent use the result is only a snapshot.
func (rb *RingBuffer[T]) IsEmpty() bool {
	return rb.spsc.isEmpty()
}

// Len returns the number of items in the buffer.
// Under concurrent use the result is only a snapshot.
func (rb *RingBuffer[T]) Len() uint32 {
	return uint32(rb.spsc.len())
}

// Capacity returns the number of slots of the buffer.
func (rb *RingBuffer[T]) Capacity() uint32 {
	return uint32(rb.spsc.capacity)
}

// UsableCapacity returns the maximum number of items
// the buffer can hold at the same time (capacity-1).
func (rb *RingBuffer[T]) UsableCapacity() uint32 {
	return uint32(rb.spsc.capacity - 1)
}
