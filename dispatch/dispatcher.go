// Package dispatch contains the two ends of a control queue:
// the [Sender] used by the control goroutine and the [Dispatcher]
// used by the real-time goroutine.
package dispatch

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/FerroO2000/lfmq/connector"
	"github.com/FerroO2000/lfmq/internal"
	"github.com/FerroO2000/lfmq/internal/config"
	"github.com/FerroO2000/lfmq/internal/message"
)

type msg = message.Message

// Handler handles a dispatched message.
// The message is only valid until the handler returns.
type Handler func(ctx context.Context, msg *msg)

///////////////
//  METRICS  //
///////////////

type dispatcherMetrics struct {
	tel *internal.Telemetry

	dispatchedMessages atomic.Int64
	unhandledMessages  atomic.Int64
	drainCycles        atomic.Int64

	batchSize *internal.Histogram
}

func newDispatcherMetrics(tel *internal.Telemetry) *dispatcherMetrics {
	return &dispatcherMetrics{
		tel: tel,

		batchSize: tel.NewHistogram("drain_batch_size", "{message}"),
	}
}

func (dm *dispatcherMetrics) init() {
	dm.tel.NewCounter("dispatched_messages", func() int64 { return dm.dispatchedMessages.Load() })
	dm.tel.NewCounter("unhandled_messages", func() int64 { return dm.unhandledMessages.Load() })
	dm.tel.NewCounter("drain_cycles", func() int64 { return dm.drainCycles.Load() })
}

//////////////////
//  DISPATCHER  //
//////////////////

// Dispatcher pops the messages from a control queue and calls
// the handler registered for their kind.
//
// It must be the only consumer of the queue: all its methods
// except [Dispatcher.Handle] and [Dispatcher.HandleDefault] pop from it.
// Handlers must be registered before the dispatcher is run.
type Dispatcher struct {
	tel *internal.Telemetry
	cfg *Config

	queue connector.Consumer[msg]

	handlers       [message.KindCount]Handler
	defaultHandler Handler

	// curr is the destination of every pop
	curr msg

	metrics *dispatcherMetrics
}

// NewDispatcher returns a new dispatcher reading from the given queue.
// A nil configuration means the default one.
func NewDispatcher(queue connector.Consumer[msg], cfg *Config) *Dispatcher {
	if cfg == nil {
		cfg = NewConfig()
	}

	tel := internal.NewTelemetry("dispatch", "dispatcher")

	return &Dispatcher{
		tel: tel,
		cfg: cfg,

		queue: queue,

		metrics: newDispatcherMetrics(tel),
	}
}

// Handle registers the handler for the given kind.
// A nil handler removes the registered one.
func (d *Dispatcher) Handle(kind message.Kind, handler Handler) {
	d.handlers[kind] = handler
}

// HandleDefault registers the handler called for the kinds
// without a registered handler.
func (d *Dispatcher) HandleDefault(handler Handler) {
	d.defaultHandler = handler
}

// Init initializes the dispatcher.
func (d *Dispatcher) Init(_ context.Context) error {
	d.tel.LogInfo("initializing")

	config.NewValidator(d.tel).Validate(d.cfg)

	d.metrics.init()

	return nil
}

// Drain dispatches the messages in the queue without waiting for new ones.
// At most MaxBatch messages are dispatched.
// It returns the number of dispatched messages.
func (d *Dispatcher) Drain(ctx context.Context) int {
	count, _ := d.drain(ctx)
	return count
}

func (d *Dispatcher) drain(ctx context.Context) (int, bool) {
	count := 0
	stopped := false

	for count < d.cfg.MaxBatch {
		if !d.queue.Pop(&d.curr) {
			break
		}

		count++
		d.dispatch(ctx, &d.curr)

		if d.curr.Kind() == message.KindStop && d.cfg.StopOnStop {
			stopped = true
			break
		}
	}

	if count > 0 {
		d.metrics.drainCycles.Add(1)
		d.metrics.dispatchedMessages.Add(int64(count))
		d.metrics.batchSize.Record(ctx, int64(count))
	}

	return count, stopped
}

func (d *Dispatcher) dispatch(ctx context.Context, m *msg) {
	if handler := d.handlers[m.Kind()]; handler != nil {
		handler(ctx, m)
		return
	}

	d.metrics.unhandledMessages.Add(1)

	if d.defaultHandler != nil {
		d.defaultHandler(ctx, m)
	}
}

// Run drains the queue until the context is cancelled
// or, if StopOnStop is enabled, a stop message is dispatched.
// When the queue is empty it waits IdleInterval before draining again.
func (d *Dispatcher) Run(ctx context.Context) {
	d.tel.LogInfo("running")

	idle := time.NewTicker(d.cfg.IdleInterval)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		count, stopped := d.drain(ctx)
		if stopped {
			d.tel.LogInfo("stop message received, stopping")
			return
		}

		if count > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-idle.C:
		}
	}
}

// Close closes the dispatcher.
func (d *Dispatcher) Close() {
	d.tel.LogInfo("closing",
		"dispatched_messages", d.metrics.dispatchedMessages.Load(),
		"unhandled_messages", d.metrics.unhandledMessages.Load(),
	)
}

// Dispatched returns the number of dispatched messages.
func (d *Dispatcher) Dispatched() int64 {
	return d.metrics.dispatchedMessages.Load()
}

// Unhandled returns the number of dispatched messages
// without a registered handler for their kind.
func (d *Dispatcher) Unhandled() int64 {
	return d.metrics.unhandledMessages.Load()
}
