package message

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type samplePoint struct {
	X, Y  float64
	Label [8]byte
	Index int32
}

func Test_New(t *testing.T) {
	assert := assert.New(t)

	point := samplePoint{X: 1.5, Y: -2.25, Label: [8]byte{'a', 'b'}, Index: 7}

	msg, err := New(NewMetadata(KindUser+1), point)
	assert.NoError(err)

	assert.Equal(KindUser+1, msg.Kind())
	assert.Equal(KindUser+1, msg.Metadata().Kind())
	assert.Equal(32, msg.PayloadSize())
	assert.Equal(point, Payload[samplePoint](&msg))
	assert.Len(msg.PayloadBytes(), 32)

	// The reference points into the message
	PayloadRef[samplePoint](&msg).Index = 9
	assert.Equal(int32(9), Payload[samplePoint](&msg).Index)
}

func Test_New_Scalars(t *testing.T) {
	assert := assert.New(t)

	msgF32 := MustNew(NewMetadata(KindVolume), float32(0.75))
	assert.Equal(4, msgF32.PayloadSize())
	assert.Equal(float32(0.75), Payload[float32](&msgF32))

	nan := math.Float64frombits(0x7ff8000000000001)
	msgF64 := MustNew(NewMetadata(KindUser), nan)
	assert.Equal(8, msgF64.PayloadSize())
	assert.Equal(math.Float64bits(nan), math.Float64bits(Payload[float64](&msgF64)))

	msgEmpty := MustNew(NewMetadata(KindResume), struct{}{})
	assert.Zero(msgEmpty.PayloadSize())

	msgMax := MustNew(NewMetadata(KindUser), [MaxMessageSize]byte{0: 1, MaxMessageSize - 1: 2})
	assert.Equal(MaxMessageSize, msgMax.PayloadSize())
	payload := Payload[[MaxMessageSize]byte](&msgMax)
	assert.Equal(byte(1), payload[0])
	assert.Equal(byte(2), payload[MaxMessageSize-1])
}

func Test_New_Pointer(t *testing.T) {
	assert := assert.New(t)

	buffer := make([]float32, 1024)
	buffer[10] = 3

	msg, err := New(NewMetadata(KindResize), &buffer)
	assert.NoError(err)
	assert.Equal(8, msg.PayloadSize())
	assert.Nil(msg.PayloadBytes())

	got := Payload[*[]float32](&msg)
	assert.Same(&buffer, got)
	assert.Equal(float32(3), (*got)[10])

	callback := func() int { return 5 }
	msgFunc, err := New(NewMetadata(KindUser), callback)
	assert.NoError(err)
	assert.Equal(5, Payload[func() int](&msgFunc)())

	ch := make(chan int, 1)
	msgChan, err := New(NewMetadata(KindUser), ch)
	assert.NoError(err)
	Payload[chan int](&msgChan) <- 1
	assert.Equal(1, <-ch)
}

func Test_New_Errors(t *testing.T) {
	assert := assert.New(t)

	var nilPoint *samplePoint
	_, err := New(NewMetadata(KindUser), nilPoint)
	assert.ErrorIs(err, ErrNilPayload)

	var nilMap map[string]int
	_, err = New(NewMetadata(KindUser), nilMap)
	assert.ErrorIs(err, ErrNilPayload)

	_, err = New(NewMetadata(KindUser), [MaxMessageSize + 1]byte{})
	assert.ErrorIs(err, ErrPayloadTooLarge)

	_, err = New(NewMetadata(KindUser), "a string")
	assert.ErrorIs(err, ErrUnsupportedPayload)

	_, err = New(NewMetadata(KindUser), []int{1})
	assert.ErrorIs(err, ErrUnsupportedPayload)

	type withPointer struct {
		n int
		p *int
	}
	_, err = New(NewMetadata(KindUser), withPointer{})
	assert.ErrorIs(err, ErrUnsupportedPayload)

	assert.PanicsWithValue(ErrNilPayload, func() {
		MustNew(NewMetadata(KindUser), nilPoint)
	})
}

func Test_SetPayload(t *testing.T) {
	assert := assert.New(t)

	msg := MustNew(NewMetadata(KindVolume), float32(0.5))

	// Failed writes leave the previous payload untouched
	var nilPoint *samplePoint
	assert.False(SetPayload(&msg, nilPoint))
	assert.False(SetPayload(&msg, [MaxMessageSize + 8]byte{}))
	assert.False(SetPayload(&msg, "text"))
	assert.Equal(4, msg.PayloadSize())
	assert.Equal(float32(0.5), Payload[float32](&msg))

	assert.True(SetPayload(&msg, uint64(1)<<40))
	assert.Equal(8, msg.PayloadSize())
	assert.Equal(uint64(1)<<40, Payload[uint64](&msg))

	// Switching from a pointer payload to a value payload drops the pointer
	point := &samplePoint{X: 1}
	assert.True(SetPayload(&msg, point))
	assert.Same(point, Payload[*samplePoint](&msg))
	assert.True(SetPayload(&msg, int16(-3)))
	assert.Nil(msg.ref)
	assert.Equal(int16(-3), Payload[int16](&msg))
}

func Test_SetRawPayload(t *testing.T) {
	assert := assert.New(t)

	msg := MustNew(NewMetadata(KindUser), uint32(10))

	assert.False(msg.SetRawPayload(nil))
	assert.False(msg.SetRawPayload(make([]byte, MaxMessageSize+1)))
	assert.Equal(uint32(10), Payload[uint32](&msg))

	assert.True(msg.SetRawPayload([]byte{1, 2, 3}))
	assert.Equal([]byte{1, 2, 3}, msg.PayloadBytes())

	assert.True(msg.SetRawPayload([]byte{}))
	assert.Zero(msg.PayloadSize())
}

func Test_Metadata(t *testing.T) {
	assert := assert.New(t)

	var msg Message
	assert.Equal(KindUnknown, msg.Kind())
	assert.Zero(msg.PayloadSize())

	md := msg.Metadata()
	md.SetKind(KindStop)
	assert.Equal(KindUnknown, msg.Kind())

	msg.SetMetadata(md)
	assert.Equal(KindStop, msg.Kind())
}

func Test_Swap(t *testing.T) {
	assert := assert.New(t)

	point := &samplePoint{Index: 1}

	msgA := MustNew(NewMetadata(KindVolume), float32(0.1))
	msgB := MustNew(NewMetadata(KindResize), point)

	msgA.Swap(&msgB)

	assert.Equal(KindResize, msgA.Kind())
	assert.Equal(8, msgA.PayloadSize())
	assert.Same(point, Payload[*samplePoint](&msgA))

	assert.Equal(KindVolume, msgB.Kind())
	assert.Equal(4, msgB.PayloadSize())
	assert.Equal(float32(0.1), Payload[float32](&msgB))

	msgB.Reset()
	assert.Equal(Message{}, msgB)
}

func Test_TypedPayloads(t *testing.T) {
	assert := assert.New(t)

	volume := NewVolume(0.8)
	vp, ok := volume.Volume()
	assert.True(ok)
	assert.Equal(float32(0.8), vp.Gain)
	_, ok = volume.Resize()
	assert.False(ok)

	resize := NewResize(3, 4096)
	rp, ok := resize.Resize()
	assert.True(ok)
	assert.Equal(ResizePayload{BufferID: 3, Frames: 4096}, rp)

	for _, kind := range []Kind{KindEffectAdded, KindEffectRemoved, KindEffectEnabled, KindEffectDisabled} {
		effect := NewEffect(kind, 12, 2)
		assert.True(kind.IsEffect())

		ep, ok := effect.Effect()
		assert.True(ok)
		assert.Equal(EffectPayload{EffectID: 12, Slot: 2}, ep)
	}

	playAt := NewPlayAt(48_000, 2*time.Second)
	pp, ok := playAt.PlayAt()
	assert.True(ok)
	assert.Equal(uint64(48_000), pp.Frame)
	assert.Equal(2*time.Second, pp.Offset)

	for _, msg := range []Message{NewResume(), NewPause(), NewStop()} {
		assert.Zero(msg.PayloadSize())
		_, ok := msg.Volume()
		assert.False(ok)
	}

	// Matching kind but mismatching payload size is rejected
	wrongSize := MustNew(NewMetadata(KindVolume), float64(1))
	_, ok = wrongSize.Volume()
	assert.False(ok)
}

func Test_Kind_String(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("unknown", KindUnknown.String())
	assert.Equal("volume", KindVolume.String())
	assert.Equal("play-at", KindPlayAt.String())
	assert.Equal("user-0", KindUser.String())
	assert.Equal("user-5", (KindUser + 5).String())
	assert.Equal("kind-42", Kind(42).String())
	assert.False(KindPlayAt.IsEffect())
}

func Benchmark_Message(b *testing.B) {
	b.ReportAllocs()

	b.Run("New", func(b *testing.B) {
		point := samplePoint{X: 1}
		for b.Loop() {
			msg, _ := New(NewMetadata(KindUser), point)
			_ = msg
		}
	})

	b.Run("Payload", func(b *testing.B) {
		msg := MustNew(NewMetadata(KindUser), samplePoint{X: 1})
		for b.Loop() {
			_ = Payload[samplePoint](&msg)
		}
	})

	b.Run("Volume", func(b *testing.B) {
		msg := NewVolume(0.5)
		for b.Loop() {
			_, _ = msg.Volume()
		}
	})
}
