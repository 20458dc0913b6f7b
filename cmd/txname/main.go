// Synthetic transaction-name telemetry generator
// Emits web request and messaging spans, plus a request duration histogram, via the OTel SDK
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/andrewh/txname/pkg/naming"
	"github.com/andrewh/txname/pkg/synth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "txname",
		Short:        "Synthetic span generator for transaction naming conventions",
		SilenceUsage: true,
	}

	root.AddCommand(runCmd())
	root.AddCommand(scenariosCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(versionCmd())

	return root
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Emit the scenario table as spans until interrupted",
		Long: "Emit the scenario table as spans until interrupted.\n\n" +
			"Every flag can also be set with a TXNAME_ environment variable\n" +
			"(e.g. TXNAME_SERVICE_NAME) or in the file given by --config.\n" +
			"Flags take precedence over the environment, which takes precedence over the file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadRunOptions(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), opts.logLevel)
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), opts, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.String("config", "", "YAML file with default values for these flags")
	f.String("endpoint", "", "OTLP endpoint, e.g. localhost:4318 or https://collector.example.com")
	f.String("protocol", "http/protobuf", "OTLP protocol (http/protobuf or grpc)")
	f.Bool("stdout", false, "emit signals to stdout as JSON")
	f.String("signals", "traces,metrics", "comma-separated signals to emit: traces,metrics,logs")
	f.String("compression", "none", "OTLP payload compression (none or gzip)")
	f.String("service-name", defaultServiceName, "service.name resource attribute")
	f.String("scope", defaultScope, "instrumentation scope name")
	f.Float64("sample-ratio", defaultSampleRatio, "fraction of new traces to sample (parent-based)")
	f.Duration("interval", 0, "pause between passes over the scenario table (default 500ms)")
	f.Int("iterations", 0, "stop after this many passes (0 = until interrupted)")
	f.Duration("duration", 0, "stop after this much wall-clock time (0 = until interrupted)")
	f.String("span-duration", "", "synthetic span duration range, e.g. 10ms..200ms or 50ms")
	f.String("messaging-order", "", "messaging span naming: operation-first or destination-first")
	f.String("scenarios", "", "YAML scenario table to emit instead of the built-in one")
	f.String("metrics-addr", "", "serve Prometheus self-metrics on this address (e.g. :9464)")
	f.String("pprof", "", "start pprof HTTP server on this address (e.g. :6060)")
	f.String("pyroscope", "", "push continuous profiles to this Pyroscope server URL")
	f.String("log-level", "info", "diagnostic log level (debug, info, warn, error)")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "txname %s (commit: %s, built: %s)\n", version, commit, buildTime)
		},
	}
}

const (
	defaultServiceName = "otel-service"
	defaultScope       = "otel-data-generator"
	defaultSampleRatio = 0.1
	shutdownTimeout    = 5 * time.Second
)

var validSignals = map[string]bool{
	"traces":  true,
	"metrics": true,
	"logs":    true,
}

func parseSignals(s string) (map[string]bool, error) {
	set := make(map[string]bool)
	for _, sig := range strings.Split(s, ",") {
		sig = strings.TrimSpace(sig)
		if sig == "" {
			continue
		}
		if !validSignals[sig] {
			return nil, fmt.Errorf("unknown signal %q, valid signals: traces, metrics, logs", sig)
		}
		set[sig] = true
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("at least one signal is required")
	}
	return set, nil
}

func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid --log-level: %w", err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(lvl).
		With().Timestamp().
		Logger(), nil
}

// loadScenarios returns the scenario table and naming options from a scenario
// file, or the built-in table when path is empty.
func loadScenarios(path string) ([]synth.Scenario, synth.Options, error) {
	if path == "" {
		opts, err := (&synth.Config{}).Options()
		return synth.DefaultScenarios(), opts, err
	}

	cfg, err := synth.LoadConfig(path)
	if err != nil {
		return nil, synth.Options{}, err
	}
	if err := synth.ValidateConfig(cfg); err != nil {
		return nil, synth.Options{}, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, synth.Options{}, err
	}
	return synth.BuildScenarios(cfg.Scenarios), opts, nil
}

// applyOverrides lets run flags replace the options read from a scenario file.
func applyOverrides(base synth.Options, opts runOptions) (synth.Options, error) {
	if opts.interval < 0 {
		return base, fmt.Errorf("--interval must not be negative, got %s", opts.interval)
	}
	if opts.interval > 0 {
		base.Interval = opts.interval
	}
	if opts.spanDuration != "" {
		r, err := naming.ParseDurationRange(opts.spanDuration)
		if err != nil {
			return base, fmt.Errorf("invalid --span-duration: %w", err)
		}
		base.Durations = r
	}
	if opts.messagingOrder != "" {
		order, err := naming.ParseMessagingOrder(opts.messagingOrder)
		if err != nil {
			return base, err
		}
		base.MessagingOrder = order
	}
	return base, nil
}

func runGenerate(ctx context.Context, opts runOptions, logger zerolog.Logger, stdout, stderr io.Writer) error {
	scenarios, synthOpts, err := loadScenarios(opts.scenariosPath)
	if err != nil {
		return err
	}
	synthOpts, err = applyOverrides(synthOpts, opts)
	if err != nil {
		return err
	}
	if opts.iterations < 0 {
		return fmt.Errorf("--iterations must not be negative, got %d", opts.iterations)
	}
	if opts.sampleRatio < 0 || opts.sampleRatio > 1 {
		return fmt.Errorf("--sample-ratio must be between 0 and 1, got %g", opts.sampleRatio)
	}

	enabledSignals, err := parseSignals(opts.signals)
	if err != nil {
		return err
	}
	if err := validateProtocol(opts.protocol); err != nil {
		return err
	}
	if err := validateCompression(opts.compression); err != nil {
		return err
	}

	ep, err := parseEndpoint(opts.endpoint, opts.protocol)
	if err != nil {
		return err
	}
	if !opts.stdout {
		if err := checkEndpoint(ep); err != nil {
			return err
		}
	}

	startPprof(opts.pprofAddr, logger)
	if opts.pyroscopeAddr != "" {
		stopProfiling, pErr := startPyroscope(opts.pyroscopeAddr, opts.serviceName, logger)
		if pErr != nil {
			return pErr
		}
		defer stopProfiling()
	}

	res, err := newResource(opts.serviceName)
	if err != nil {
		return err
	}

	// Export failures surface through the global handler and end the run.
	ctx, handler, cancelSink := synth.WithSinkFailure(ctx)
	defer cancelSink()
	otel.SetErrorHandler(handler)

	signalOpts := exportOptions{endpoint: ep, protocol: opts.protocol, compression: opts.compression, stdout: opts.stdout, out: stdout}

	tp, shutdownTraces, err := createTracerProvider(ctx, signalOpts, enabledSignals["traces"], opts.sampleRatio, res, logger)
	if err != nil {
		return fmt.Errorf("creating tracer provider: %w", err)
	}
	defer shutdownTraces()

	observers := []synth.SpanObserver{debugObserver{logger: logger}}

	if enabledSignals["metrics"] {
		mp, shutdownMetrics, mErr := createMeterProvider(ctx, signalOpts, res, logger)
		if mErr != nil {
			return fmt.Errorf("creating meter provider: %w", mErr)
		}
		defer shutdownMetrics()
		obs, mErr := synth.NewMetricObserver(mp, opts.scope)
		if mErr != nil {
			return fmt.Errorf("creating metric observer: %w", mErr)
		}
		observers = append(observers, obs)
	}

	if enabledSignals["logs"] {
		lp, shutdownLogs, lErr := createLoggerProvider(ctx, signalOpts, res, logger)
		if lErr != nil {
			return fmt.Errorf("creating logger provider: %w", lErr)
		}
		defer shutdownLogs()
		observers = append(observers, synth.NewLogObserver(lp, opts.scope))
	}

	if opts.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		observers = append(observers, synth.NewPromObserver(reg))
		stopMetrics := serveSelfMetrics(opts.metricsAddr, reg, logger)
		defer stopMetrics()
	}

	engine := &synth.Engine{
		Scenarios: scenarios,
		Resolver: &naming.Resolver{
			Order:     synthOpts.MessagingOrder,
			Durations: synthOpts.Durations,
			Rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // synthetic data, not security-sensitive
		},
		Tracer:     tp.Tracer(opts.scope),
		Observers:  observers,
		Interval:   synthOpts.Interval,
		Iterations: opts.iterations,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if opts.runFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.runFor)
		defer cancel()
	}

	logger.Info().
		Str("service", opts.serviceName).
		Str("scope", opts.scope).
		Int("scenarios", len(scenarios)).
		Str("messaging_order", synthOpts.MessagingOrder.String()).
		Str("span_duration", synthOpts.Durations.String()).
		Dur("interval", synthOpts.Interval).
		Str("signals", opts.signals).
		Msg("generating telemetry")

	stats, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	return json.NewEncoder(stderr).Encode(stats)
}

// debugObserver logs each emitted span at debug level.
type debugObserver struct {
	logger zerolog.Logger
}

func (d debugObserver) Observe(info synth.SpanInfo) {
	d.logger.Debug().
		Str("scenario", info.Scenario).
		Str("span", info.Name).
		Str("kind", info.Kind.String()).
		Dur("duration", info.Duration).
		Msg("span emitted")
}
