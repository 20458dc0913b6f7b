// Generator loop that emits the scenario table as OTel spans
// Span end times are back-dated from the synthetic duration; the loop sleeps between passes
package synth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andrewh/txname/pkg/naming"
	"go.opentelemetry.io/otel/trace"
)

// Engine drives the generator loop.
type Engine struct {
	Scenarios  []Scenario
	Resolver   *naming.Resolver
	Tracer     trace.Tracer
	Observers  []SpanObserver
	Interval   time.Duration
	Iterations int // 0 runs until the context is cancelled
	Now        func() time.Time
}

// Stats holds counters collected during a run.
type Stats struct {
	Iterations    int64   `json:"iterations"`
	Spans         int64   `json:"spans"`
	ServerSpans   int64   `json:"server_spans"`
	ConsumerSpans int64   `json:"consumer_spans"`
	Overrides     int64   `json:"overrides"`
	ElapsedMs     int64   `json:"elapsed_ms"`
	SpansPerSec   float64 `json:"spans_per_second"`
}

// Run emits the scenario table once per iteration until the context is
// cancelled or the iteration bound is reached. A *SinkError cause on the
// context is returned as the run error.
func (e *Engine) Run(ctx context.Context) (*Stats, error) {
	if len(e.Scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios to emit")
	}
	if e.Tracer == nil {
		return nil, fmt.Errorf("no tracer configured")
	}

	var stats Stats
	startTime := time.Now()

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		if err := ctx.Err(); err != nil {
			e.finaliseStats(&stats, startTime)
			return &stats, sinkFailure(ctx)
		}

		for _, sc := range e.Scenarios {
			e.Emit(ctx, sc, &stats)
		}
		stats.Iterations++

		if e.Iterations > 0 && stats.Iterations >= int64(e.Iterations) {
			e.finaliseStats(&stats, startTime)
			return &stats, sinkFailure(ctx)
		}

		timer.Reset(e.Interval)
		select {
		case <-ctx.Done():
			e.finaliseStats(&stats, startTime)
			return &stats, sinkFailure(ctx)
		case <-timer.C:
		}
	}
}

// Emit resolves a single scenario and emits it as a root span whose end time is
// its start time plus the synthetic duration, then notifies observers.
func (e *Engine) Emit(ctx context.Context, sc Scenario, stats *Stats) naming.Span {
	resolved := e.resolver().Resolve(sc.Operation)

	start := e.now()
	end := start.Add(resolved.Duration)

	_, span := e.Tracer.Start(ctx, resolved.Name,
		trace.WithNewRoot(),
		trace.WithTimestamp(start),
		trace.WithSpanKind(resolved.Kind),
		trace.WithAttributes(resolved.Attributes...),
	)
	span.End(trace.WithTimestamp(end))

	if stats != nil {
		stats.Spans++
		switch resolved.Kind {
		case trace.SpanKindServer:
			stats.ServerSpans++
		case trace.SpanKindConsumer:
			stats.ConsumerSpans++
		}
		if hasOverride(sc.Operation) {
			stats.Overrides++
		}
	}

	if len(e.Observers) > 0 {
		info := SpanInfo{
			Scenario:  sc.Name,
			Operation: sc.Operation,
			Name:      resolved.Name,
			Kind:      resolved.Kind,
			Timestamp: start,
			Duration:  resolved.Duration,
			Attrs:     resolved.Attributes,
		}
		for _, obs := range e.Observers {
			obs.Observe(info)
		}
	}

	return resolved
}

func (e *Engine) resolver() *naming.Resolver {
	if e.Resolver == nil {
		e.Resolver = &naming.Resolver{}
	}
	return e.Resolver
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) finaliseStats(stats *Stats, startTime time.Time) {
	elapsed := time.Since(startTime)
	stats.ElapsedMs = elapsed.Milliseconds()
	if secs := elapsed.Seconds(); secs > 0 {
		stats.SpansPerSec = float64(stats.Spans) / secs
	}
}

// sinkFailure returns the *SinkError that cancelled ctx, if any.
// Plain cancellation (signals, deadlines) ends a run cleanly.
func sinkFailure(ctx context.Context) error {
	var se *SinkError
	if errors.As(context.Cause(ctx), &se) {
		return se
	}
	return nil
}

func hasOverride(op naming.Operation) bool {
	switch o := op.(type) {
	case naming.WebRequest:
		return o.NameOverride != nil
	case naming.MessagingOperation:
		return o.NameOverride != nil
	}
	return false
}
