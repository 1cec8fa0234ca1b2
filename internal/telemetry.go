// Package internal contains the telemetry shared by the components of the library.
package internal

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const scopeName = "github.com/FerroO2000/lfmq"

var logHandler atomic.Pointer[slog.Handler]

func init() {
	SetLogHandler(NewConsoleHandler(slog.LevelInfo))
}

// NewConsoleHandler returns a colored log handler writing to stderr.
// Colors are disabled when stderr is not a terminal.
func NewConsoleHandler(level slog.Leveler) slog.Handler {
	noColor := !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd())

	return tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      level,
		TimeFormat: time.StampMilli,
		NoColor:    noColor,
	})
}

// SetLogHandler sets the handler used by the telemetry created afterwards.
func SetLogHandler(handler slog.Handler) {
	logHandler.Store(&handler)
}

// Telemetry groups the logger, the tracer and the meter of a component.
type Telemetry struct {
	logger *slog.Logger
	tracer trace.Tracer
	meter  metric.Meter

	attrs metric.MeasurementOption
}

// NewTelemetry returns the telemetry for the component
// of the given kind (e.g. dispatcher, sender) and name.
func NewTelemetry(kind, name string) *Telemetry {
	logger := slog.New(*logHandler.Load()).With("component_kind", kind, "component_name", name)

	attrs := attribute.NewSet(
		attribute.String("component_kind", kind),
		attribute.String("component_name", name),
	)

	return &Telemetry{
		logger: logger,
		tracer: otel.Tracer(scopeName),
		meter:  otel.Meter(scopeName),

		attrs: metric.WithAttributeSet(attrs),
	}
}

// LogInfo logs a message at the info level.
func (t *Telemetry) LogInfo(msg string, args ...any) {
	t.logger.Info(msg, args...)
}

// LogWarn logs a message at the warn level.
func (t *Telemetry) LogWarn(msg string, args ...any) {
	t.logger.Warn(msg, args...)
}

// LogError logs a message with the error at the error level.
func (t *Telemetry) LogError(msg string, err error, args ...any) {
	t.logger.Error(msg, append(args, tint.Err(err))...)
}

// NewTrace starts a new span.
func (t *Telemetry) NewTrace(ctx context.Context, name string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name)
}

// NewCounter registers an observable counter.
// The callback is called at every metric collection.
func (t *Telemetry) NewCounter(name string, callback func() int64) {
	_, err := t.meter.Int64ObservableCounter(name,
		metric.WithInt64Callback(func(_ context.Context, obs metric.Int64Observer) error {
			obs.Observe(callback(), t.attrs)
			return nil
		}),
	)

	if err != nil {
		t.LogError("failed to create counter", err, "counter", name)
	}
}

// NewUpDownCounter registers an observable up-down counter.
// The callback is called at every metric collection.
func (t *Telemetry) NewUpDownCounter(name string, callback func() int64) {
	_, err := t.meter.Int64ObservableUpDownCounter(name,
		metric.WithInt64Callback(func(_ context.Context, obs metric.Int64Observer) error {
			obs.Observe(callback(), t.attrs)
			return nil
		}),
	)

	if err != nil {
		t.LogError("failed to create up-down counter", err, "counter", name)
	}
}

// Histogram is a synchronous int64 histogram.
type Histogram struct {
	hist  metric.Int64Histogram
	attrs metric.RecordOption
}

// Record records a value.
func (h *Histogram) Record(ctx context.Context, value int64) {
	h.hist.Record(ctx, value, h.attrs)
}

// NewHistogram returns a new histogram.
func (t *Telemetry) NewHistogram(name, unit string) *Histogram {
	hist, err := t.meter.Int64Histogram(name, metric.WithUnit(unit))
	if err != nil {
		t.LogError("failed to create histogram", err, "histogram", name)
		hist = noop.Int64Histogram{}
	}

	return &Histogram{
		hist:  hist,
		attrs: t.attrs,
	}
}
