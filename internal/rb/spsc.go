package rb

// spscBuffer is the single producer/single consumer ring buffer.
//
// Both cursors stay in [0, capacity). One slot is always left free
// so that read == write means empty and write+1 == read means full,
// which lets each side publish its cursor with a plain store.
type spscBuffer[T any] struct {
	*commonBuffer

	buffer []T
}

func newSPSCBuffer[T any](capacity uint64) *spscBuffer[T] {
	return &spscBuffer[T]{
		commonBuffer: newCommonBuffer(capacity),

		buffer: make([]T, capacity),
	}
}

func (b *spscBuffer[T]) push(item *T) bool {
	// The write cursor is owned by the producer
	write := b.write.Load()
	next := b.next(write)

	// Check if buffer is full
	if next == b.read.Load() {
		return false
	}

	// The slot must be filled before the cursor is published
	b.buffer[write] = *item
	b.write.Store(next)

	return true
}

func (b *spscBuffer[T]) pop(out *T) bool {
	// The read cursor is owned by the consumer
	read := b.read.Load()

	// Check if buffer is empty
	if read == b.write.Load() {
		return false
	}

	if out != nil {
		*out = b.buffer[read]
	}

	// Hand the slot back to the producer
	b.read.Store(b.next(read))

	return true
}

func (b *spscBuffer[T]) front() *T {
	return &b.buffer[b.read.Load()]
}
