// Package message contains the fixed-size control message
// carried by the control queue.
package message

import "strconv"

// Kind states how the payload of a message must be interpreted.
// It is an open enumeration: applications can define their own kinds
// starting from [KindUser].
type Kind uint8

const (
	// KindUnknown is the default kind.
	KindUnknown Kind = iota
	// KindResume resumes the audio stream.
	KindResume
	// KindPause pauses the audio stream.
	KindPause
	// KindStop stops the playback and shuts down the audio goroutine.
	KindStop
	// KindVolume adjusts the volume of the audio stream.
	KindVolume
	// KindResize informs the audio goroutine that one of its dynamic buffers
	// has been resized by the control goroutine.
	KindResize
	// KindEffectAdded notifies that a new effect has been added.
	KindEffectAdded
	// KindEffectRemoved notifies that an effect has been removed.
	KindEffectRemoved
	// KindEffectEnabled enables an effect.
	KindEffectEnabled
	// KindEffectDisabled disables an effect.
	KindEffectDisabled
	// KindPlayAt begins the playback at a specific frame.
	KindPlayAt
)

// KindUser is the first kind available to applications.
const KindUser Kind = 128

// KindCount is the number of representable kinds.
const KindCount = 256

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindResume:
		return "resume"
	case KindPause:
		return "pause"
	case KindStop:
		return "stop"
	case KindVolume:
		return "volume"
	case KindResize:
		return "resize"
	case KindEffectAdded:
		return "effect-added"
	case KindEffectRemoved:
		return "effect-removed"
	case KindEffectEnabled:
		return "effect-enabled"
	case KindEffectDisabled:
		return "effect-disabled"
	case KindPlayAt:
		return "play-at"
	}

	if k >= KindUser {
		return "user-" + strconv.Itoa(int(k-KindUser))
	}

	return "kind-" + strconv.Itoa(int(k))
}

// Metadata holds the information describing a message.
type Metadata struct {
	kind Kind
}

// NewMetadata returns the metadata for the given kind.
func NewMetadata(kind Kind) Metadata {
	return Metadata{kind: kind}
}

// Kind returns the kind of the message.
func (md Metadata) Kind() Kind {
	return md.kind
}

// SetKind sets the kind of the message.
func (md *Metadata) SetKind(kind Kind) {
	md.kind = kind
}
