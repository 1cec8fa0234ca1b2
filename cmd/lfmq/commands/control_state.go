package commands

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/FerroO2000/lfmq/internal/message"
	"gopkg.in/yaml.v3"
)

// playAtState is the playback position requested by the control file.
type playAtState struct {
	Frame  uint64        `yaml:"frame"`
	Offset time.Duration `yaml:"offset"`
}

// effectState is the state of an effect in the control file.
type effectState struct {
	Slot    uint32 `yaml:"slot"`
	Enabled bool   `yaml:"enabled"`
}

// controlState is the content of the control file watched by the watch command.
//
// Example:
//
//	paused: false
//	volume: 0.8
//	play_at:
//	  frame: 48000
//	  offset: 10ms
//	buffers:
//	  1: 1024
//	effects:
//	  7: {slot: 0, enabled: true}
//	stop: false
type controlState struct {
	Paused  bool                   `yaml:"paused"`
	Volume  float32                `yaml:"volume"`
	PlayAt  *playAtState           `yaml:"play_at"`
	Buffers map[uint32]uint32      `yaml:"buffers"`
	Effects map[uint32]effectState `yaml:"effects"`
	Stop    bool                   `yaml:"stop"`
}

func newControlState() *controlState {
	return &controlState{
		Volume:  1,
		Buffers: make(map[uint32]uint32),
		Effects: make(map[uint32]effectState),
	}
}

// loadControlState reads the control file.
// Missing fields keep their default value.
func loadControlState(path string) (*controlState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return parseControlState(data)
}

func parseControlState(data []byte) (*controlState, error) {
	state := newControlState()

	if err := yaml.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to parse control state: %w", err)
	}

	if state.Buffers == nil {
		state.Buffers = make(map[uint32]uint32)
	}
	if state.Effects == nil {
		state.Effects = make(map[uint32]effectState)
	}

	return state, nil
}

// diffControlState returns the messages that bring the audio goroutine
// from the prev state to the next one.
// Buffers and effects are visited in ascending id order
// and the stop message, if any, is always the last one.
func diffControlState(prev, next *controlState) []message.Message {
	msgs := []message.Message{}

	if prev.Paused != next.Paused {
		if next.Paused {
			msgs = append(msgs, message.NewPause())
		} else {
			msgs = append(msgs, message.NewResume())
		}
	}

	if prev.Volume != next.Volume {
		msgs = append(msgs, message.NewVolume(next.Volume))
	}

	msgs = append(msgs, diffBuffers(prev.Buffers, next.Buffers)...)
	msgs = append(msgs, diffEffects(prev.Effects, next.Effects)...)

	if next.PlayAt != nil && (prev.PlayAt == nil || *prev.PlayAt != *next.PlayAt) {
		msgs = append(msgs, message.NewPlayAt(next.PlayAt.Frame, next.PlayAt.Offset))
	}

	if next.Stop && !prev.Stop {
		msgs = append(msgs, message.NewStop())
	}

	return msgs
}

func diffBuffers(prev, next map[uint32]uint32) []message.Message {
	msgs := []message.Message{}

	for _, id := range slices.Sorted(maps.Keys(next)) {
		frames := next[id]
		if prevFrames, ok := prev[id]; ok && prevFrames == frames {
			continue
		}

		msgs = append(msgs, message.NewResize(id, frames))
	}

	// A dropped buffer is shrunk to zero frames
	for _, id := range slices.Sorted(maps.Keys(prev)) {
		if _, ok := next[id]; !ok {
			msgs = append(msgs, message.NewResize(id, 0))
		}
	}

	return msgs
}

func diffEffects(prev, next map[uint32]effectState) []message.Message {
	msgs := []message.Message{}

	for _, id := range slices.Sorted(maps.Keys(prev)) {
		if _, ok := next[id]; !ok {
			msgs = append(msgs, message.NewEffect(message.KindEffectRemoved, id, prev[id].Slot))
		}
	}

	for _, id := range slices.Sorted(maps.Keys(next)) {
		nextEffect := next[id]
		prevEffect, ok := prev[id]

		// A moved effect is removed from its old slot
		if ok && prevEffect.Slot != nextEffect.Slot {
			msgs = append(msgs, message.NewEffect(message.KindEffectRemoved, id, prevEffect.Slot))
			ok = false
		}

		if !ok {
			msgs = append(msgs, message.NewEffect(message.KindEffectAdded, id, nextEffect.Slot))
			prevEffect = effectState{Slot: nextEffect.Slot}
		}

		if prevEffect.Enabled == nextEffect.Enabled {
			continue
		}

		kind := message.KindEffectDisabled
		if nextEffect.Enabled {
			kind = message.KindEffectEnabled
		}
		msgs = append(msgs, message.NewEffect(kind, id, nextEffect.Slot))
	}

	return msgs
}
