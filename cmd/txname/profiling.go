// Opt-in diagnostics servers: pprof, Pyroscope push profiling, and Prometheus self-metrics
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // pprof endpoint is opt-in via --pprof flag
	"time"

	"github.com/grafana/pyroscope-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func startPprof(addr string, logger zerolog.Logger) {
	if addr == "" {
		return
	}
	go func() {
		logger.Info().Str("addr", addr).Msg("pprof server listening")
		if err := http.ListenAndServe(addr, nil); err != nil { //nolint:gosec // pprof server is opt-in via flag
			logger.Error().Err(err).Msg("pprof server error")
		}
	}()
}

// pyroscopeLogger routes profiler diagnostics through zerolog.
type pyroscopeLogger struct {
	logger zerolog.Logger
}

func (l pyroscopeLogger) Infof(format string, args ...any)  { l.logger.Info().Msgf(format, args...) }
func (l pyroscopeLogger) Debugf(format string, args ...any) { l.logger.Debug().Msgf(format, args...) }
func (l pyroscopeLogger) Errorf(format string, args ...any) { l.logger.Error().Msgf(format, args...) }

func startPyroscope(serverAddr, appName string, logger zerolog.Logger) (func(), error) {
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: appName,
		ServerAddress:   serverAddr,
		Logger:          pyroscopeLogger{logger: logger.With().Str("component", "pyroscope").Logger()},
		Tags:            map[string]string{"version": version},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("starting pyroscope profiler: %w", err)
	}
	logger.Info().Str("server", serverAddr).Msg("continuous profiling enabled")
	return func() {
		if err := profiler.Stop(); err != nil {
			logger.Error().Err(err).Msg("error stopping pyroscope profiler")
		}
	}, nil
}

// serveSelfMetrics exposes reg on addr under /metrics and returns a function
// that stops the server.
func serveSelfMetrics(addr string, reg *prometheus.Registry, logger zerolog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info().Str("addr", addr).Msg("self-metrics server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("self-metrics server error")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("error stopping self-metrics server")
		}
	}
}
