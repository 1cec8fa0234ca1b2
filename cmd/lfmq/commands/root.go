package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FerroO2000/lfmq/internal"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var (
	version string
	commit  string
	date    string
)

var (
	logLevel     string
	otelEndpoint string
	otelLogs     bool
	traceRatio   float64

	providers *telemetryProviders
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lfmq",
	Short: "lfmq - lock-free control message queue",
	Long: `lfmq exercises the lock-free single producer/single consumer queue
used to hand control messages (resume, pause, volume, effects...)
from a control goroutine to a real-time goroutine.`,
	Version: version,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
	PersistentPreRunE:  setupTelemetry,
	PersistentPostRunE: teardownTelemetry,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SilenceUsage = true
	return rootCmd.ExecuteContext(ctx)
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&otelEndpoint, "otel-endpoint", "", "OTLP gRPC collector endpoint (disabled if empty)")
	rootCmd.PersistentFlags().BoolVar(&otelLogs, "otel-logs", false, "Send logs to the OTLP collector instead of stderr")
	rootCmd.PersistentFlags().Float64Var(&traceRatio, "trace-ratio", 0.05, "Sampling ratio of the traces")
}

func setupTelemetry(cmd *cobra.Command, _ []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}

	internal.SetLogHandler(internal.NewConsoleHandler(level))
	tel := internal.NewTelemetry("cmd", "root")

	if otelEndpoint == "" {
		return nil
	}

	tp, err := initTelemetry(cmd.Context(), otelEndpoint, traceRatio)
	if err != nil {
		// Telemetry is optional, keep running without it
		tel.LogWarn("opentelemetry disabled", "reason", err.Error())
		return nil
	}
	providers = tp

	if otelLogs {
		internal.SetLogHandler(otelslog.NewHandler("github.com/FerroO2000/lfmq",
			otelslog.WithLoggerProvider(tp.loggerProvider),
		))
	}

	return nil
}

func teardownTelemetry(_ *cobra.Command, _ []string) error {
	if providers == nil {
		return nil
	}

	ctx, cancelCtx := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelCtx()

	return providers.shutdown(ctx)
}
