// OTel provider and exporter construction for the run command
// One provider per enabled signal, all sharing a resource and released on exit
package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/goware/urlx"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc/encoding/gzip"
)

const (
	protocolHTTP        = "http/protobuf"
	protocolGRPC        = "grpc"
	compressionNone     = "none"
	compressionGzip     = "gzip"
	defaultHTTPPort     = "4318"
	defaultGRPCPort     = "4317"
	connectCheckTimeout = 2 * time.Second
)

func validateProtocol(p string) error {
	switch p {
	case protocolHTTP, protocolGRPC:
		return nil
	default:
		return fmt.Errorf("unsupported protocol %q, supported: http/protobuf, grpc", p)
	}
}

func validateCompression(c string) error {
	switch c {
	case compressionNone, compressionGzip, "":
		return nil
	default:
		return fmt.Errorf("unsupported compression %q, supported: none, gzip", c)
	}
}

// endpoint is a normalised OTLP collector address.
type endpoint struct {
	hostPort string
	insecure bool
}

// parseEndpoint accepts "host", "host:port" or a full http(s) URL. A missing
// scheme means plaintext; a missing port is the protocol's default.
func parseEndpoint(raw, protocol string) (endpoint, error) {
	port := defaultHTTPPort
	if protocol == protocolGRPC {
		port = defaultGRPCPort
	}
	if raw == "" {
		return endpoint{hostPort: net.JoinHostPort("localhost", port), insecure: true}, nil
	}

	u, err := urlx.ParseWithDefaultScheme(raw, "http")
	if err != nil {
		return endpoint{}, fmt.Errorf("invalid --endpoint %q: %w", raw, err)
	}
	var insecure bool
	switch u.Scheme {
	case "http":
		insecure = true
	case "https":
	default:
		return endpoint{}, fmt.Errorf("invalid --endpoint %q: scheme must be http or https", raw)
	}

	host, p, err := urlx.SplitHostPort(u)
	if err != nil {
		return endpoint{}, fmt.Errorf("invalid --endpoint %q: %w", raw, err)
	}
	if host == "" {
		return endpoint{}, fmt.Errorf("invalid --endpoint %q: missing host", raw)
	}
	if p != "" {
		port = p
	}
	return endpoint{hostPort: net.JoinHostPort(host, port), insecure: insecure}, nil
}

func checkEndpoint(ep endpoint) error {
	conn, err := net.DialTimeout("tcp", ep.hostPort, connectCheckTimeout)
	if err != nil {
		return fmt.Errorf("cannot reach OTLP collector at %s\n\n"+
			"To emit signals as JSON to the terminal, use --stdout:\n"+
			"  txname run --stdout --iterations 1\n\n"+
			"To send to a specific collector, use --endpoint:\n"+
			"  txname run --endpoint collector.example.com:4318", ep.hostPort)
	}
	_ = conn.Close()
	return nil
}

// newResource describes this process: the configured service name and a
// random instance ID so concurrent generators stay distinguishable.
func newResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(serviceName),
		semconv.ServiceInstanceID(uuid.NewString()),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}
	return res, nil
}

// exportOptions carries the settings shared by every signal's exporter.
type exportOptions struct {
	endpoint    endpoint
	protocol    string
	compression string
	stdout      bool
	out         io.Writer
}

func (o exportOptions) gzip() bool {
	return o.compression == compressionGzip
}

// createTracerProvider returns a sampled provider. With traces disabled it has
// no processor, so spans are created but never exported.
func createTracerProvider(ctx context.Context, opts exportOptions, enabled bool, ratio float64, res *resource.Resource, logger zerolog.Logger) (*sdktrace.TracerProvider, func(), error) {
	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithResource(res),
	}

	if enabled {
		exporter, err := createTraceExporter(ctx, opts)
		if err != nil {
			return nil, func() {}, err
		}
		if opts.stdout {
			tpOpts = append(tpOpts, sdktrace.WithSyncer(exporter))
		} else {
			tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
		}
	}

	tp := sdktrace.NewTracerProvider(tpOpts...)
	return tp, shutdownFunc(tp, "tracer provider", logger), nil
}

func createTraceExporter(ctx context.Context, opts exportOptions) (sdktrace.SpanExporter, error) {
	if opts.stdout {
		return stdouttrace.New(stdouttrace.WithWriter(opts.out))
	}
	switch opts.protocol {
	case protocolGRPC:
		grpcOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(opts.endpoint.hostPort)}
		if opts.endpoint.insecure {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithInsecure())
		}
		if opts.gzip() {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithCompressor(gzip.Name))
		}
		return otlptracegrpc.New(ctx, grpcOpts...)
	case protocolHTTP:
		httpOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(opts.endpoint.hostPort)}
		if opts.endpoint.insecure {
			httpOpts = append(httpOpts, otlptracehttp.WithInsecure())
		}
		if opts.gzip() {
			httpOpts = append(httpOpts, otlptracehttp.WithCompression(otlptracehttp.GzipCompression))
		}
		return otlptracehttp.New(ctx, httpOpts...)
	default:
		return nil, fmt.Errorf("unsupported protocol %q for traces", opts.protocol)
	}
}

func createMeterProvider(ctx context.Context, opts exportOptions, res *resource.Resource, logger zerolog.Logger) (*sdkmetric.MeterProvider, func(), error) {
	exporter, err := createMetricExporter(ctx, opts)
	if err != nil {
		return nil, func() {}, err
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)
	return mp, shutdownFunc(mp, "meter provider", logger), nil
}

func createMetricExporter(ctx context.Context, opts exportOptions) (sdkmetric.Exporter, error) {
	if opts.stdout {
		return stdoutmetric.New(stdoutmetric.WithWriter(opts.out))
	}
	switch opts.protocol {
	case protocolGRPC:
		grpcOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(opts.endpoint.hostPort)}
		if opts.endpoint.insecure {
			grpcOpts = append(grpcOpts, otlpmetricgrpc.WithInsecure())
		}
		if opts.gzip() {
			grpcOpts = append(grpcOpts, otlpmetricgrpc.WithCompressor(gzip.Name))
		}
		return otlpmetricgrpc.New(ctx, grpcOpts...)
	case protocolHTTP:
		httpOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(opts.endpoint.hostPort)}
		if opts.endpoint.insecure {
			httpOpts = append(httpOpts, otlpmetrichttp.WithInsecure())
		}
		if opts.gzip() {
			httpOpts = append(httpOpts, otlpmetrichttp.WithCompression(otlpmetrichttp.GzipCompression))
		}
		return otlpmetrichttp.New(ctx, httpOpts...)
	default:
		return nil, fmt.Errorf("unsupported protocol %q for metrics", opts.protocol)
	}
}

func createLoggerProvider(ctx context.Context, opts exportOptions, res *resource.Resource, logger zerolog.Logger) (*sdklog.LoggerProvider, func(), error) {
	exporter, err := createLogExporter(ctx, opts)
	if err != nil {
		return nil, func() {}, err
	}

	var processor sdklog.Processor
	if opts.stdout {
		processor = sdklog.NewSimpleProcessor(exporter)
	} else {
		processor = sdklog.NewBatchProcessor(exporter)
	}

	lp := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(processor),
		sdklog.WithResource(res),
	)
	return lp, shutdownFunc(lp, "logger provider", logger), nil
}

func createLogExporter(ctx context.Context, opts exportOptions) (sdklog.Exporter, error) {
	if opts.stdout {
		return stdoutlog.New(stdoutlog.WithWriter(opts.out))
	}
	switch opts.protocol {
	case protocolGRPC:
		grpcOpts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(opts.endpoint.hostPort)}
		if opts.endpoint.insecure {
			grpcOpts = append(grpcOpts, otlploggrpc.WithInsecure())
		}
		if opts.gzip() {
			grpcOpts = append(grpcOpts, otlploggrpc.WithCompressor(gzip.Name))
		}
		return otlploggrpc.New(ctx, grpcOpts...)
	case protocolHTTP:
		httpOpts := []otlploghttp.Option{otlploghttp.WithEndpoint(opts.endpoint.hostPort)}
		if opts.endpoint.insecure {
			httpOpts = append(httpOpts, otlploghttp.WithInsecure())
		}
		if opts.gzip() {
			httpOpts = append(httpOpts, otlploghttp.WithCompression(otlploghttp.GzipCompression))
		}
		return otlploghttp.New(ctx, httpOpts...)
	default:
		return nil, fmt.Errorf("unsupported protocol %q for logs", opts.protocol)
	}
}

// shutdownable is anything with a Shutdown method (TracerProvider, MeterProvider, LoggerProvider).
type shutdownable interface {
	Shutdown(context.Context) error
}

// shutdownFunc returns a closure that flushes and releases s once, bounded by
// shutdownTimeout. Errors are logged, not returned.
func shutdownFunc(s shutdownable, label string, logger zerolog.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msgf("error shutting down %s", label)
		}
	}
}
