// Benchmarks for the generator hot paths
// Run with: go test -bench=. -benchmem ./pkg/synth/
package synth

import (
	"context"
	"io"
	"math/rand/v2"
	"testing"

	"github.com/andrewh/txname/pkg/naming"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func benchmarkEngine(b *testing.B) *Engine {
	b.Helper()
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(io.Discard))
	if err != nil {
		b.Fatal(err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	b.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	b.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	obs, err := NewMetricObserver(mp, "bench")
	if err != nil {
		b.Fatal(err)
	}

	return &Engine{
		Scenarios: DefaultScenarios(),
		Resolver:  naming.NewResolver(naming.OperationFirst, rand.New(rand.NewPCG(1, 2))), //nolint:gosec // deterministic seed for benchmarking
		Tracer:    tp.Tracer("bench"),
		Observers: []SpanObserver{obs},
	}
}

func BenchmarkEmit(b *testing.B) {
	engine := benchmarkEngine(b)
	ctx := context.Background()
	var stats Stats

	b.ReportAllocs()
	b.ResetTimer()
	for i := range b.N {
		engine.Emit(ctx, engine.Scenarios[i%len(engine.Scenarios)], &stats)
	}
}

func BenchmarkEngineRun(b *testing.B) {
	engine := benchmarkEngine(b)
	engine.Iterations = 10

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		stats, err := engine.Run(context.Background())
		if err != nil {
			b.Fatal(err)
		}
		if stats.Spans != int64(10*len(engine.Scenarios)) {
			b.Fatalf("spans = %d", stats.Spans)
		}
	}
}
