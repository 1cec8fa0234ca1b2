package message

import (
	"errors"
	"unsafe"
)

// MaxMessageSize is the maximum size in bytes of a payload.
// Half of 1 KiB, enough for scalars, small structs and pointers.
const MaxMessageSize = 512

var (
	// ErrNilPayload is returned when the payload is a nil pointer.
	ErrNilPayload = errors.New("message: nil pointer passed in as payload")
	// ErrPayloadTooLarge is returned when the payload is larger than [MaxMessageSize].
	ErrPayloadTooLarge = errors.New("message: payload is larger than the maximum message size")
	// ErrUnsupportedPayload is returned when the payload is a value holding pointers
	// (strings, slices, interfaces, structs with pointer fields).
	// Their bytes would hide the pointers from the garbage collector;
	// pass a pointer to the value instead.
	ErrUnsupportedPayload = errors.New("message: payload values must not contain pointers")
)

// Message is a fixed-size tagged control message.
//
// The payload is stored inline, so a message never owns heap memory
// and can be copied in and out of a ring buffer slot without allocating.
// Which type the payload holds is a convention between producer and consumer
// keyed by the kind of the message: no type information is stored.
type Message struct {
	metadata Metadata

	payloadSize uint32

	// ref keeps a pointer payload visible to the garbage collector.
	ref unsafe.Pointer

	// uint64 words keep the buffer 8-byte aligned for any reinterpreted type.
	payload [MaxMessageSize / 8]uint64
}

// New returns a message with the given metadata and a copy of data as payload.
//
// data can be any value of at most [MaxMessageSize] bytes without pointers inside,
// or a single pointer-like value (pointer, map, channel, function).
// A nil pointer-like value returns [ErrNilPayload].
func New[T any](md Metadata, data T) (Message, error) {
	msg := Message{
		metadata: md,
	}

	if err := setPayload(&msg, &data); err != nil {
		return Message{}, err
	}

	return msg, nil
}

// MustNew is like [New] but panics on error.
func MustNew[T any](md Metadata, data T) Message {
	msg, err := New(md, data)
	if err != nil {
		panic(err)
	}
	return msg
}

// SetPayload replaces the payload of the message with a copy of data.
// It follows the same rules as [New], but it reports a failure as false
// and leaves the previous payload unchanged.
func SetPayload[T any](m *Message, data T) bool {
	return setPayload(m, &data) == nil
}

func setPayload[T any](m *Message, data *T) error {
	switch classOf[T]() {
	case classRef:
		ptr := *(*unsafe.Pointer)(unsafe.Pointer(data))
		if ptr == nil {
			return ErrNilPayload
		}

		m.ref = ptr
		m.payloadSize = uint32(unsafe.Sizeof(ptr))

	case classTooLarge:
		return ErrPayloadTooLarge

	case classUnsupported:
		return ErrUnsupportedPayload

	default:
		src := asBytes(data)
		copy(m.buffer(), src)

		m.ref = nil
		m.payloadSize = uint32(len(src))
	}

	return nil
}

// Payload returns the payload of the message reinterpreted as T.
// The caller must request the same type that was written:
// no check is performed.
func Payload[T any](m *Message) T {
	return *PayloadRef[T](m)
}

// PayloadRef returns a pointer into the message reinterpreted as T.
// The caller must request the same type that was written:
// no check is performed. It panics if T is larger than [MaxMessageSize].
func PayloadRef[T any](m *Message) *T {
	if classOf[T]() == classRef {
		return (*T)(unsafe.Pointer(&m.ref))
	}

	var zero T
	if unsafe.Sizeof(zero) > MaxMessageSize {
		panic(ErrPayloadTooLarge)
	}

	return (*T)(unsafe.Pointer(&m.payload))
}

func (m *Message) buffer() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&m.payload)), MaxMessageSize)
}

// SetRawPayload copies data into the payload.
// It returns false, leaving the previous payload unchanged,
// if data is nil or larger than [MaxMessageSize].
func (m *Message) SetRawPayload(data []byte) bool {
	if data == nil || len(data) > MaxMessageSize {
		return false
	}

	copy(m.buffer(), data)

	m.ref = nil
	m.payloadSize = uint32(len(data))

	return true
}

// PayloadBytes returns the written bytes of the payload.
// The slice aliases the message. It is empty for pointer payloads.
func (m *Message) PayloadBytes() []byte {
	if m.ref != nil {
		return nil
	}
	return m.buffer()[:m.payloadSize]
}

// PayloadSize returns the number of bytes written by the last payload write.
func (m *Message) PayloadSize() int {
	return int(m.payloadSize)
}

// Metadata returns the metadata of the message.
func (m *Message) Metadata() Metadata {
	return m.metadata
}

// SetMetadata sets the metadata of the message.
func (m *Message) SetMetadata(md Metadata) {
	m.metadata = md
}

// Kind returns the kind of the message.
func (m *Message) Kind() Kind {
	return m.metadata.kind
}

// Swap exchanges the whole state of the two messages.
func (m *Message) Swap(other *Message) {
	*m, *other = *other, *m
}

// Reset clears the message.
func (m *Message) Reset() {
	*m = Message{}
}
