//go:build lfmqdebug

package rb

import (
	"sync/atomic"
)

// guard detects concurrent use of the same side of the buffer.
// It is only compiled with the lfmqdebug build tag.
type guard struct {
	producer atomic.Uint32
	consumer atomic.Uint32
}

func (g *guard) enterProducer() {
	if !g.producer.CompareAndSwap(0, 1) {
		panic(ErrConcurrentProducer)
	}
}

func (g *guard) exitProducer() {
	g.producer.Store(0)
}

func (g *guard) enterConsumer() {
	if !g.consumer.CompareAndSwap(0, 1) {
		panic(ErrConcurrentConsumer)
	}
}

func (g *guard) exitConsumer() {
	g.consumer.Store(0)
}
