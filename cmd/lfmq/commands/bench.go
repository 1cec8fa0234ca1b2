package commands

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/FerroO2000/lfmq/connector"
	"github.com/FerroO2000/lfmq/dispatch"
	"github.com/FerroO2000/lfmq/internal"
	"github.com/FerroO2000/lfmq/internal/config"
	"github.com/FerroO2000/lfmq/internal/message"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

// kindSequence carries a [sequencePayload].
const kindSequence = message.KindUser

type sequencePayload struct {
	Seq    uint64
	SentAt int64
}

var (
	benchConfigPath string
	benchCapacity   uint32
	benchMessages   int
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure the throughput of a control queue",
	Long: `Run one producer and one dispatcher goroutine over a control queue.

The producer sends numbered messages as fast as the queue accepts them,
retrying when the queue is full. The dispatcher checks that every message
arrives exactly once and in order, then the throughput and the latency
are reported.

Examples:
  # Default run (1024 slots, 1M messages)
  lfmq bench

  # Tiny queue to stress the full/empty paths
  lfmq bench --capacity 3 --messages 100000

  # Load the settings from a YAML file
  lfmq bench --config bench.yaml`,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().StringVarP(&benchConfigPath, "config", "c", "", "YAML configuration file")
	benchCmd.Flags().Uint32Var(&benchCapacity, "capacity", DefaultBenchCapacity, "Number of slots of the queue")
	benchCmd.Flags().IntVarP(&benchMessages, "messages", "n", DefaultBenchMessages, "Number of messages to send")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, _ []string) error {
	cfg := newBenchConfig()
	if benchConfigPath != "" {
		loaded, err := loadBenchConfig(benchConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Explicit flags win over the file
	if cmd.Flags().Changed("capacity") {
		cfg.Capacity = benchCapacity
	}
	if cmd.Flags().Changed("messages") {
		cfg.Messages = benchMessages
	}

	tel := internal.NewTelemetry("cmd", "bench")
	config.NewValidator(tel).Validate(cfg)

	result, err := runBenchmark(cmd.Context(), tel, cfg)
	if err != nil {
		return err
	}

	tel.LogInfo("benchmark completed",
		"capacity", cfg.Capacity,
		"messages", result.received,
		"elapsed", result.elapsed,
		"messages_per_sec", int64(float64(result.received)/result.elapsed.Seconds()),
		"full_queue_retries", result.retries,
		"max_latency", result.maxLatency,
	)

	return nil
}

type benchResult struct {
	received   int
	retries    int64
	elapsed    time.Duration
	maxLatency time.Duration
}

var errOutOfOrder = errors.New("messages received out of order")

func runBenchmark(ctx context.Context, tel *internal.Telemetry, cfg *benchConfig) (*benchResult, error) {
	ctx, span := tel.NewTrace(ctx, "run benchmark")
	defer span.End()

	span.SetAttributes(
		attribute.Int("capacity", int(cfg.Capacity)),
		attribute.Int("messages", cfg.Messages),
	)

	queue, err := connector.NewControlQueue(cfg.Capacity)
	if err != nil {
		return nil, err
	}

	sender := dispatch.NewSender(queue)
	if err := sender.Init(ctx); err != nil {
		return nil, err
	}
	defer sender.Close()

	// A stop message ends the dispatcher
	cfg.Dispatcher.StopOnStop = true
	dispatcher := dispatch.NewDispatcher(queue, cfg.Dispatcher)

	latency := tel.NewHistogram("bench_latency", "ns")

	// Only touched by the dispatcher goroutine
	var (
		next       uint64
		outOfOrder int
		maxLatency time.Duration
	)

	dispatcher.Handle(kindSequence, func(ctx context.Context, m *message.Message) {
		payload := message.PayloadRef[sequencePayload](m)

		if payload.Seq != next {
			outOfOrder++
		}
		next = payload.Seq + 1

		elapsed := time.Duration(time.Now().UnixNano() - payload.SentAt)
		maxLatency = max(maxLatency, elapsed)
		latency.Record(ctx, int64(elapsed))
	})

	if err := dispatcher.Init(ctx); err != nil {
		return nil, err
	}
	defer dispatcher.Close()

	wg := &sync.WaitGroup{}
	wg.Add(1)

	startTime := time.Now()

	go func() {
		defer wg.Done()
		dispatcher.Run(ctx)
	}()

	msg := message.Message{}
	msg.SetMetadata(message.NewMetadata(kindSequence))

	for seq := range uint64(cfg.Messages) {
		payload := sequencePayload{Seq: seq, SentAt: time.Now().UnixNano()}
		message.SetPayload(&msg, payload)

		if !sendWithRetry(ctx, sender, &msg) {
			break
		}
	}
	sendStop(ctx, sender)

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if outOfOrder > 0 {
		return nil, fmt.Errorf("%w: %d", errOutOfOrder, outOfOrder)
	}

	return &benchResult{
		received:   int(next),
		retries:    sender.Dropped(),
		elapsed:    time.Since(startTime),
		maxLatency: maxLatency,
	}, nil
}

// sendWithRetry sends the message, yielding while the queue is full.
// It returns false if the context is cancelled.
func sendWithRetry(ctx context.Context, sender *dispatch.Sender, msg *message.Message) bool {
	for !sender.Send(msg) {
		if ctx.Err() != nil {
			return false
		}
		runtime.Gosched()
	}
	return true
}

func sendStop(ctx context.Context, sender *dispatch.Sender) {
	stop := message.NewStop()
	sendWithRetry(ctx, sender, &stop)
}
