// PromObserver exposes generator self-metrics in Prometheus format.
// Counts emitted spans and their synthetic durations by kind and scenario class.
package synth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PromObserver records generator-side counters for each emitted span.
type PromObserver struct {
	spans    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPromObserver registers the self-metrics with reg.
func NewPromObserver(reg prometheus.Registerer) *PromObserver {
	factory := promauto.With(reg)
	return &PromObserver{
		spans: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txname_spans_total",
				Help: "Total number of synthetic spans emitted",
			},
			[]string{"kind", "scenario"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "txname_span_duration_seconds",
				Help:    "Synthetic duration assigned to emitted spans",
				Buckets: requestDurationBuckets,
			},
			[]string{"kind"},
		),
	}
}

// Observe increments the span counter and records the synthetic duration.
func (p *PromObserver) Observe(info SpanInfo) {
	kind := info.Kind.String()
	p.spans.WithLabelValues(kind, info.Scenario).Inc()
	p.duration.WithLabelValues(kind).Observe(info.Duration.Seconds())
}
