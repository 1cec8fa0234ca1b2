package rb

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// commonBuffer holds the two cursors of a ring buffer.
// Each cursor lives on its own cache line.
type commonBuffer struct {
	_ cpu.CacheLinePad

	// read is written only by the consumer.
	read atomic.Uint64

	_ cpu.CacheLinePad

	// write is written only by the producer.
	write atomic.Uint64

	_ cpu.CacheLinePad

	capacity uint64

	_ cpu.CacheLinePad
}

func newCommonBuffer(capacity uint64) *commonBuffer {
	return &commonBuffer{
		capacity: capacity,
	}
}

// next returns the index that follows idx, wrapping at capacity.
func (cb *commonBuffer) next(idx uint64) uint64 {
	idx++
	if idx == cb.capacity {
		return 0
	}
	return idx
}

func (cb *commonBuffer) isEmpty() bool {
	return cb.read.Load() == cb.write.Load()
}

func (cb *commonBuffer) len() uint64 {
	read := cb.read.Load()
	write := cb.write.Load()

	if write < read {
		return write + cb.capacity - read
	}

	return write - read
}
