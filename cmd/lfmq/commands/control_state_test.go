package commands

import (
	"testing"
	"time"

	"github.com/FerroO2000/lfmq/internal/message"
	"github.com/stretchr/testify/assert"
)

func kindsOf(msgs []message.Message) []message.Kind {
	kinds := make([]message.Kind, 0, len(msgs))
	for i := range msgs {
		kinds = append(kinds, msgs[i].Kind())
	}
	return kinds
}

func Test_ParseControlState(t *testing.T) {
	assert := assert.New(t)

	state, err := parseControlState([]byte(`
paused: true
play_at:
  frame: 48000
  offset: 10ms
buffers:
  2: 512
effects:
  7: {slot: 1, enabled: true}
`))
	assert.NoError(err)

	assert.True(state.Paused)
	assert.Equal(float32(1), state.Volume)
	assert.Equal(&playAtState{Frame: 48000, Offset: 10 * time.Millisecond}, state.PlayAt)
	assert.Equal(map[uint32]uint32{2: 512}, state.Buffers)
	assert.Equal(map[uint32]effectState{7: {Slot: 1, Enabled: true}}, state.Effects)
	assert.False(state.Stop)

	empty, err := parseControlState(nil)
	assert.NoError(err)
	assert.Equal(newControlState(), empty)

	_, err = parseControlState([]byte("volume: [1, 2"))
	assert.Error(err)
}

func Test_DiffControlState_NoChanges(t *testing.T) {
	assert := assert.New(t)

	assert.Empty(diffControlState(newControlState(), newControlState()))
}

func Test_DiffControlState(t *testing.T) {
	assert := assert.New(t)

	prev := newControlState()

	next := newControlState()
	next.Paused = true
	next.Volume = 0.5
	next.Buffers[3] = 256
	next.Buffers[1] = 1024
	next.PlayAt = &playAtState{Frame: 100, Offset: time.Millisecond}
	next.Stop = true

	msgs := diffControlState(prev, next)

	assert.Equal([]message.Kind{
		message.KindPause, message.KindVolume,
		message.KindResize, message.KindResize,
		message.KindPlayAt, message.KindStop,
	}, kindsOf(msgs))

	vp, ok := msgs[1].Volume()
	assert.True(ok)
	assert.Equal(float32(0.5), vp.Gain)

	rp, ok := msgs[2].Resize()
	assert.True(ok)
	assert.Equal(message.ResizePayload{BufferID: 1, Frames: 1024}, rp)

	rp, ok = msgs[3].Resize()
	assert.True(ok)
	assert.Equal(message.ResizePayload{BufferID: 3, Frames: 256}, rp)

	pp, ok := msgs[4].PlayAt()
	assert.True(ok)
	assert.Equal(message.PlayAtPayload{Frame: 100, Offset: time.Millisecond}, pp)

	// Going back resumes and shrinks the buffers
	back := diffControlState(next, prev)
	assert.Equal([]message.Kind{
		message.KindResume, message.KindVolume,
		message.KindResize, message.KindResize,
	}, kindsOf(back))

	rp, ok = back[2].Resize()
	assert.True(ok)
	assert.Equal(message.ResizePayload{BufferID: 1, Frames: 0}, rp)
}

func Test_DiffControlState_Effects(t *testing.T) {
	assert := assert.New(t)

	prev := newControlState()
	prev.Effects[1] = effectState{Slot: 0, Enabled: true}
	prev.Effects[2] = effectState{Slot: 1, Enabled: false}
	prev.Effects[3] = effectState{Slot: 2, Enabled: true}

	next := newControlState()
	next.Effects[1] = effectState{Slot: 0, Enabled: false}
	next.Effects[3] = effectState{Slot: 4, Enabled: true}
	next.Effects[5] = effectState{Slot: 1, Enabled: true}

	msgs := diffControlState(prev, next)

	assert.Equal([]message.Kind{
		// 2 removed
		message.KindEffectRemoved,
		// 1 disabled
		message.KindEffectDisabled,
		// 3 moved
		message.KindEffectRemoved, message.KindEffectAdded, message.KindEffectEnabled,
		// 5 added
		message.KindEffectAdded, message.KindEffectEnabled,
	}, kindsOf(msgs))

	expected := []message.EffectPayload{
		{EffectID: 2, Slot: 1},
		{EffectID: 1, Slot: 0},
		{EffectID: 3, Slot: 2},
		{EffectID: 3, Slot: 4},
		{EffectID: 3, Slot: 4},
		{EffectID: 5, Slot: 1},
		{EffectID: 5, Slot: 1},
	}

	for i := range msgs {
		ep, ok := msgs[i].Effect()
		assert.True(ok)
		assert.Equal(expected[i], ep)
	}
}

func Test_Player(t *testing.T) {
	assert := assert.New(t)

	p := newPlayer()
	ctx := t.Context()

	next := newControlState()
	next.Paused = true
	next.Volume = 0.25
	next.Buffers[1] = 64
	next.Effects[9] = effectState{Slot: 2, Enabled: true}
	next.PlayAt = &playAtState{Frame: 42}

	msgs := diffControlState(newControlState(), next)
	for i := range msgs {
		switch msgs[i].Kind() {
		case message.KindPause:
			p.onPause(ctx, &msgs[i])
		case message.KindVolume:
			p.onVolume(ctx, &msgs[i])
		case message.KindResize:
			p.onResize(ctx, &msgs[i])
		case message.KindPlayAt:
			p.onPlayAt(ctx, &msgs[i])
		default:
			p.onEffect(ctx, &msgs[i])
		}
	}

	assert.True(p.paused)
	assert.Equal(float32(0.25), p.volume)
	assert.Equal(uint64(42), p.frame)
	assert.Equal(next.Buffers, p.buffers)
	assert.Equal(next.Effects, p.effects)
}
