package dispatch

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/FerroO2000/lfmq/connector"
	"github.com/FerroO2000/lfmq/internal"
	"github.com/FerroO2000/lfmq/internal/message"
)

// Sender pushes messages into a control queue
// and keeps track of the messages dropped because the queue was full.
//
// It must be the only producer of the queue.
type Sender struct {
	tel *internal.Telemetry

	queue connector.Producer[msg]

	sentMessages    atomic.Int64
	droppedMessages atomic.Int64
}

// NewSender returns a new sender writing into the given queue.
func NewSender(queue connector.Producer[msg]) *Sender {
	return &Sender{
		tel: internal.NewTelemetry("dispatch", "sender"),

		queue: queue,
	}
}

// Init initializes the sender.
func (s *Sender) Init(_ context.Context) error {
	s.tel.LogInfo("initializing")

	s.tel.NewCounter("sent_messages", func() int64 { return s.sentMessages.Load() })
	s.tel.NewCounter("dropped_messages", func() int64 { return s.droppedMessages.Load() })

	return nil
}

// Send pushes a copy of the message into the queue.
// It returns false if the queue is full, the message is then dropped
// and it is up to the caller to retry.
func (s *Sender) Send(m *msg) bool {
	if !s.queue.PushRef(m) {
		s.droppedMessages.Add(1)
		return false
	}

	s.sentMessages.Add(1)
	return true
}

// SendResume sends a resume message.
func (s *Sender) SendResume() bool {
	m := message.NewResume()
	return s.Send(&m)
}

// SendPause sends a pause message.
func (s *Sender) SendPause() bool {
	m := message.NewPause()
	return s.Send(&m)
}

// SendStop sends a stop message.
func (s *Sender) SendStop() bool {
	m := message.NewStop()
	return s.Send(&m)
}

// SendVolume sends a volume message.
func (s *Sender) SendVolume(gain float32) bool {
	m := message.NewVolume(gain)
	return s.Send(&m)
}

// SendResize sends a resize message.
func (s *Sender) SendResize(bufferID, frames uint32) bool {
	m := message.NewResize(bufferID, frames)
	return s.Send(&m)
}

// SendEffect sends an effect message of the given kind.
func (s *Sender) SendEffect(kind message.Kind, effectID, slot uint32) bool {
	m := message.NewEffect(kind, effectID, slot)
	return s.Send(&m)
}

// SendPlayAt sends a play-at message.
func (s *Sender) SendPlayAt(frame uint64, offset time.Duration) bool {
	m := message.NewPlayAt(frame, offset)
	return s.Send(&m)
}

// Sent returns the number of messages pushed into the queue.
func (s *Sender) Sent() int64 {
	return s.sentMessages.Load()
}

// Dropped returns the number of messages dropped because the queue was full.
func (s *Sender) Dropped() int64 {
	return s.droppedMessages.Load()
}

// Close closes the sender.
func (s *Sender) Close() {
	s.tel.LogInfo("closing",
		"sent_messages", s.sentMessages.Load(),
		"dropped_messages", s.droppedMessages.Load(),
	)
}
