package message

import (
	"time"
	"unsafe"
)

// VolumePayload is the payload of a [KindVolume] message.
type VolumePayload struct {
	// Gain is the linear gain applied to the stream (1 is unity).
	Gain float32
}

// ResizePayload is the payload of a [KindResize] message.
type ResizePayload struct {
	// BufferID identifies the resized buffer.
	BufferID uint32
	// Frames is the new length of the buffer in frames.
	Frames uint32
}

// EffectPayload is the payload of the effect messages
// ([KindEffectAdded], [KindEffectRemoved], [KindEffectEnabled], [KindEffectDisabled]).
type EffectPayload struct {
	// EffectID identifies the effect.
	EffectID uint32
	// Slot is the position of the effect in the chain.
	Slot uint32
}

// PlayAtPayload is the payload of a [KindPlayAt] message.
type PlayAtPayload struct {
	// Frame is the frame index to start playing from.
	Frame uint64
	// Offset is the position expressed as time. It is used when Frame is zero.
	Offset time.Duration
}

func newTyped[T any](kind Kind, payload T) Message {
	msg := Message{
		metadata: NewMetadata(kind),
	}

	// Typed payloads are plain values, the copy cannot fail
	src := asBytes(&payload)
	copy(msg.buffer(), src)
	msg.payloadSize = uint32(len(src))

	return msg
}

func typedPayload[T any](m *Message, kinds ...Kind) (T, bool) {
	var zero T

	matches := false
	for _, kind := range kinds {
		if m.metadata.kind == kind {
			matches = true
			break
		}
	}

	if !matches || m.ref != nil || uintptr(m.payloadSize) != unsafe.Sizeof(zero) {
		return zero, false
	}

	return *(*T)(unsafe.Pointer(&m.payload)), true
}

// NewResume returns a [KindResume] message.
func NewResume() Message {
	return Message{metadata: NewMetadata(KindResume)}
}

// NewPause returns a [KindPause] message.
func NewPause() Message {
	return Message{metadata: NewMetadata(KindPause)}
}

// NewStop returns a [KindStop] message.
func NewStop() Message {
	return Message{metadata: NewMetadata(KindStop)}
}

// NewVolume returns a [KindVolume] message.
func NewVolume(gain float32) Message {
	return newTyped(KindVolume, VolumePayload{Gain: gain})
}

// NewResize returns a [KindResize] message.
func NewResize(bufferID, frames uint32) Message {
	return newTyped(KindResize, ResizePayload{BufferID: bufferID, Frames: frames})
}

// NewEffect returns an effect message of the given kind.
// kind should be one of the effect kinds.
func NewEffect(kind Kind, effectID, slot uint32) Message {
	return newTyped(kind, EffectPayload{EffectID: effectID, Slot: slot})
}

// NewPlayAt returns a [KindPlayAt] message.
func NewPlayAt(frame uint64, offset time.Duration) Message {
	return newTyped(KindPlayAt, PlayAtPayload{Frame: frame, Offset: offset})
}

// Volume returns the payload of a [KindVolume] message.
// It returns false if the message has a different kind or payload size.
func (m *Message) Volume() (VolumePayload, bool) {
	return typedPayload[VolumePayload](m, KindVolume)
}

// Resize returns the payload of a [KindResize] message.
func (m *Message) Resize() (ResizePayload, bool) {
	return typedPayload[ResizePayload](m, KindResize)
}

// Effect returns the payload of an effect message.
func (m *Message) Effect() (EffectPayload, bool) {
	return typedPayload[EffectPayload](m,
		KindEffectAdded, KindEffectRemoved, KindEffectEnabled, KindEffectDisabled,
	)
}

// PlayAt returns the payload of a [KindPlayAt] message.
func (m *Message) PlayAt() (PlayAtPayload, bool) {
	return typedPayload[PlayAtPayload](m, KindPlayAt)
}

// IsEffect states whether the kind is one of the effect kinds.
func (k Kind) IsEffect() bool {
	return k >= KindEffectAdded && k <= KindEffectDisabled
}
