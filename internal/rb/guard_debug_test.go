//go:build lfmqdebug

package rb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_guard(t *testing.T) {
	assert := assert.New(t)

	rb := MustNewRingBuffer[int](8)

	// Sequential use never trips the guard
	assert.NotPanics(func() {
		for i := range 100 {
			rb.Push(i)
			rb.Front()
			rb.Pop(nil)
		}
	})

	// Simulate a producer still inside Push
	rb.guard.producer.Store(1)
	assert.PanicsWithValue(ErrConcurrentProducer, func() { rb.Push(1) })
	assert.PanicsWithValue(ErrConcurrentProducer, func() { rb.PushRef(new(int)) })
	rb.guard.exitProducer()
	assert.True(rb.Push(1))

	// Simulate a consumer still inside Pop
	rb.guard.consumer.Store(1)
	assert.PanicsWithValue(ErrConcurrentConsumer, func() { rb.Pop(nil) })
	assert.PanicsWithValue(ErrConcurrentConsumer, func() { rb.Front() })
	rb.guard.exitConsumer()
	assert.True(rb.Pop(nil))
}
