// Package connector contains the queues connecting the control goroutine
// to the real-time goroutine.
package connector

// Producer is the side of a queue owned by the producer goroutine.
type Producer[T any] interface {
	// Push copies the item into the queue.
	// It returns false if the queue is full.
	Push(item T) bool
	// PushRef copies the pointed item into the queue.
	// It returns false if the queue is full.
	PushRef(item *T) bool
}

// Consumer is the side of a queue owned by the consumer goroutine.
type Consumer[T any] interface {
	// Pop removes the oldest item and copies it into out (if not nil).
	// It returns false if the queue is empty.
	Pop(out *T) bool
	// Front returns the oldest item without removing it.
	Front() *T
	// IsEmpty states whether the queue is empty.
	IsEmpty() bool
}

// Queue is a bounded single producer/single consumer queue.
type Queue[T any] interface {
	Producer[T]
	Consumer[T]

	// Len returns the number of items in the queue.
	Len() uint32
	// Capacity returns the number of slots of the queue.
	Capacity() uint32
}
