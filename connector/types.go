package connector

import (
	"github.com/FerroO2000/lfmq/internal/message"
	"github.com/FerroO2000/lfmq/internal/rb"
)

type msg = message.Message

// RingBuffer is a lock-free spsc generic ring buffer.
type RingBuffer[T any] = rb.RingBuffer[T]

// ControlQueue is the ring buffer carrying control messages.
type ControlQueue = RingBuffer[msg]

var _ Queue[msg] = (*ControlQueue)(nil)
