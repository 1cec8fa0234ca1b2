// Package lfmq provides a lock-free single producer/single consumer queue
// for handing fixed-size control messages from a control goroutine
// to a real-time goroutine.
//
// A [ControlQueue] must be used by exactly one producer goroutine
// (usually through a [Sender]) and exactly one consumer goroutine
// (usually through a [Dispatcher]). No operation blocks or allocates.
package lfmq

import (
	"github.com/FerroO2000/lfmq/connector"
	"github.com/FerroO2000/lfmq/dispatch"
	"github.com/FerroO2000/lfmq/internal/message"
	"github.com/FerroO2000/lfmq/internal/rb"
)

// MaxMessageSize is the maximum size in bytes of a message payload.
const MaxMessageSize = message.MaxMessageSize

// Message is a fixed-size tagged control message.
type Message = message.Message

// Metadata holds the information describing a message.
type Metadata = message.Metadata

// Kind states how the payload of a message must be interpreted.
type Kind = message.Kind

const (
	// KindUnknown is the default kind.
	KindUnknown = message.KindUnknown
	// KindResume resumes the audio stream.
	KindResume = message.KindResume
	// KindPause pauses the audio stream.
	KindPause = message.KindPause
	// KindStop stops the playback.
	KindStop = message.KindStop
	// KindVolume adjusts the volume.
	KindVolume = message.KindVolume
	// KindResize notifies a resized buffer.
	KindResize = message.KindResize
	// KindEffectAdded notifies an added effect.
	KindEffectAdded = message.KindEffectAdded
	// KindEffectRemoved notifies a removed effect.
	KindEffectRemoved = message.KindEffectRemoved
	// KindEffectEnabled enables an effect.
	KindEffectEnabled = message.KindEffectEnabled
	// KindEffectDisabled disables an effect.
	KindEffectDisabled = message.KindEffectDisabled
	// KindPlayAt begins the playback at a specific frame.
	KindPlayAt = message.KindPlayAt

	// KindUser is the first kind available to applications.
	KindUser = message.KindUser
)

// Typed payloads of the built-in kinds.
type (
	VolumePayload = message.VolumePayload
	ResizePayload = message.ResizePayload
	EffectPayload = message.EffectPayload
	PlayAtPayload = message.PlayAtPayload
)

// Errors returned by the constructors.
var (
	ErrInvalidCapacity    = rb.ErrInvalidCapacity
	ErrNilPayload         = message.ErrNilPayload
	ErrPayloadTooLarge    = message.ErrPayloadTooLarge
	ErrUnsupportedPayload = message.ErrUnsupportedPayload
)

// Queue is a lock-free single producer/single consumer ring buffer.
type Queue[T any] = connector.RingBuffer[T]

// ControlQueue is the queue carrying control messages.
type ControlQueue = connector.ControlQueue

// Dispatcher pops control messages and dispatches them on their kind.
type Dispatcher = dispatch.Dispatcher

// DispatcherConfig is the configuration of a [Dispatcher].
type DispatcherConfig = dispatch.Config

// Handler handles a dispatched message.
type Handler = dispatch.Handler

// Sender pushes control messages and counts the dropped ones.
type Sender = dispatch.Sender

// NewQueue returns a new queue with the given number of slots.
// At most capacity-1 items can be held at the same time.
func NewQueue[T any](capacity uint32) (*Queue[T], error) {
	return connector.NewRingBuffer[T](capacity)
}

// NewControlQueue returns a new control queue with the given number of slots.
func NewControlQueue(capacity uint32) (*ControlQueue, error) {
	return connector.NewControlQueue(capacity)
}

// NewMetadata returns the metadata for the given kind.
func NewMetadata(kind Kind) Metadata {
	return message.NewMetadata(kind)
}

// NewMessage returns a message of the given kind holding a copy of data.
func NewMessage[T any](kind Kind, data T) (Message, error) {
	return message.New(message.NewMetadata(kind), data)
}

// SetPayload replaces the payload of the message.
// It returns false, leaving the message untouched, if data is not accepted.
func SetPayload[T any](m *Message, data T) bool {
	return message.SetPayload(m, data)
}

// Payload returns the payload of the message reinterpreted as T.
func Payload[T any](m *Message) T {
	return message.Payload[T](m)
}

// PayloadRef returns a pointer to the payload of the message reinterpreted as T.
func PayloadRef[T any](m *Message) *T {
	return message.PayloadRef[T](m)
}

// NewDispatcherConfig returns the default dispatcher configuration.
func NewDispatcherConfig() *DispatcherConfig {
	return dispatch.NewConfig()
}

// NewDispatcher returns a new dispatcher consuming the queue.
func NewDispatcher(queue *ControlQueue, cfg *DispatcherConfig) *Dispatcher {
	return dispatch.NewDispatcher(queue, cfg)
}

// NewSender returns a new sender producing into the queue.
func NewSender(queue *ControlQueue) *Sender {
	return dispatch.NewSender(queue)
}
