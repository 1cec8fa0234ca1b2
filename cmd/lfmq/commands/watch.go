package commands

import (
	"context"
	"path/filepath"
	"runtime"

	"github.com/FerroO2000/lfmq/connector"
	"github.com/FerroO2000/lfmq/dispatch"
	"github.com/FerroO2000/lfmq/internal"
	"github.com/FerroO2000/lfmq/internal/message"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

const maxSendRetries = 1024

var watchCapacity uint32

var watchCmd = &cobra.Command{
	Use:   "watch <control-file>",
	Short: "Turn the changes of a YAML control file into control messages",
	Long: `Watch a YAML control file and send a control message for every change
to a simulated audio goroutine, which applies and logs them.

The control file looks like:

  paused: false
  volume: 0.8
  play_at: {frame: 48000, offset: 10ms}
  buffers:
    1: 1024
  effects:
    7: {slot: 0, enabled: true}
  stop: false

Setting stop to true ends the command.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Uint32Var(&watchCapacity, "capacity", 64, "Number of slots of the control queue")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	ctx, cancelCtx := context.WithCancel(cmd.Context())
	defer cancelCtx()

	queue, err := connector.NewControlQueue(watchCapacity)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Editors often replace the file, so the directory is watched
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	cw := newControlWatcher(path, dispatch.NewSender(queue))
	if err := cw.sender.Init(ctx); err != nil {
		return err
	}
	defer cw.sender.Close()

	p := newPlayer()
	dispatcher := dispatch.NewDispatcher(queue, nil)
	p.register(dispatcher)
	if err := dispatcher.Init(ctx); err != nil {
		return err
	}
	defer dispatcher.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		dispatcher.Run(ctx)
	}()

	cw.reload(ctx)

	for {
		select {
		case <-ctx.Done():
			<-done
			return nil

		case <-done:
			cw.tel.LogInfo("audio goroutine stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				cancelCtx()
				continue
			}

			if event.Name != path {
				continue
			}

			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create {
				cw.reload(ctx)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				cancelCtx()
				continue
			}

			cw.tel.LogError("watcher error", err)
		}
	}
}

// controlWatcher turns the changes of the control file into messages.
type controlWatcher struct {
	tel *internal.Telemetry

	path   string
	sender *dispatch.Sender
	state  *controlState
}

func newControlWatcher(path string, sender *dispatch.Sender) *controlWatcher {
	return &controlWatcher{
		tel: internal.NewTelemetry("cmd", "watch"),

		path:   path,
		sender: sender,
		state:  newControlState(),
	}
}

func (cw *controlWatcher) reload(ctx context.Context) {
	ctx, span := cw.tel.NewTrace(ctx, "reload control file")
	defer span.End()

	next, err := loadControlState(cw.path)
	if err != nil {
		cw.tel.LogError("failed to load control file", err, "path", cw.path)
		span.RecordError(err)
		return
	}

	msgs := diffControlState(cw.state, next)
	cw.state = next

	sent := 0
	for i := range msgs {
		if !cw.send(ctx, &msgs[i]) {
			cw.tel.LogWarn("control queue full, message dropped", "kind", msgs[i].Kind().String())
			continue
		}
		sent++
	}

	span.SetAttributes(
		attribute.Int("changes", len(msgs)),
		attribute.Int("sent", sent),
	)

	cw.tel.LogInfo("control file reloaded", "changes", len(msgs), "sent", sent)
}

func (cw *controlWatcher) send(ctx context.Context, msg *message.Message) bool {
	for range maxSendRetries {
		if cw.sender.Send(msg) {
			return true
		}

		if ctx.Err() != nil {
			return false
		}
		runtime.Gosched()
	}

	return false
}

// player simulates the audio goroutine: it applies the control messages
// to its own state. It is only touched by the dispatcher goroutine.
type player struct {
	tel *internal.Telemetry

	paused  bool
	volume  float32
	frame   uint64
	buffers map[uint32]uint32
	effects map[uint32]effectState
}

func newPlayer() *player {
	return &player{
		tel: internal.NewTelemetry("cmd", "player"),

		volume:  1,
		buffers: make(map[uint32]uint32),
		effects: make(map[uint32]effectState),
	}
}

func (p *player) register(d *dispatch.Dispatcher) {
	d.Handle(message.KindResume, p.onResume)
	d.Handle(message.KindPause, p.onPause)
	d.Handle(message.KindStop, p.onStop)
	d.Handle(message.KindVolume, p.onVolume)
	d.Handle(message.KindResize, p.onResize)
	d.Handle(message.KindPlayAt, p.onPlayAt)

	for _, kind := range []message.Kind{
		message.KindEffectAdded, message.KindEffectRemoved,
		message.KindEffectEnabled, message.KindEffectDisabled,
	} {
		d.Handle(kind, p.onEffect)
	}

	d.HandleDefault(func(_ context.Context, m *message.Message) {
		p.tel.LogWarn("unexpected message", "kind", m.Kind().String())
	})
}

func (p *player) onResume(_ context.Context, _ *message.Message) {
	p.paused = false
	p.tel.LogInfo("playback resumed")
}

func (p *player) onPause(_ context.Context, _ *message.Message) {
	p.paused = true
	p.tel.LogInfo("playback paused")
}

func (p *player) onStop(_ context.Context, _ *message.Message) {
	p.tel.LogInfo("playback stopped", "paused", p.paused, "frame", p.frame, "buffers", len(p.buffers), "effects", len(p.effects))
}

func (p *player) onVolume(_ context.Context, m *message.Message) {
	vp, ok := m.Volume()
	if !ok {
		return
	}

	p.volume = vp.Gain
	p.tel.LogInfo("volume changed", "gain", p.volume)
}

func (p *player) onResize(_ context.Context, m *message.Message) {
	rp, ok := m.Resize()
	if !ok {
		return
	}

	if rp.Frames == 0 {
		delete(p.buffers, rp.BufferID)
	} else {
		p.buffers[rp.BufferID] = rp.Frames
	}

	p.tel.LogInfo("buffer resized", "buffer_id", rp.BufferID, "frames", rp.Frames)
}

func (p *player) onPlayAt(_ context.Context, m *message.Message) {
	pp, ok := m.PlayAt()
	if !ok {
		return
	}

	p.frame = pp.Frame
	p.tel.LogInfo("playback moved", "frame", pp.Frame, "offset", pp.Offset)
}

func (p *player) onEffect(_ context.Context, m *message.Message) {
	ep, ok := m.Effect()
	if !ok {
		return
	}

	switch m.Kind() {
	case message.KindEffectAdded:
		p.effects[ep.EffectID] = effectState{Slot: ep.Slot}
	case message.KindEffectRemoved:
		delete(p.effects, ep.EffectID)
	case message.KindEffectEnabled, message.KindEffectDisabled:
		p.effects[ep.EffectID] = effectState{
			Slot:    ep.Slot,
			Enabled: m.Kind() == message.KindEffectEnabled,
		}
	}

	p.tel.LogInfo("effect changed", "kind", m.Kind().String(), "effect_id", ep.EffectID, "slot", ep.Slot)
}
