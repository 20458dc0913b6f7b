// MetricObserver records the HTTP server request duration histogram for web request spans.
// Messaging spans are not observed; only inbound requests carry a duration metric.
package synth

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// RequestDurationMetric is the histogram instrument name for web request durations.
const RequestDurationMetric = "http.server.request.duration"

// requestDurationBuckets are the explicit bucket boundaries, in seconds, the HTTP
// semantic conventions recommend for http.server.request.duration.
var requestDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.075, 0.1, 0.25, 0.5, 0.75, 1, 2.5, 5, 7.5, 10}

// MetricObserver records derived metrics for each observed span.
type MetricObserver struct {
	duration metric.Float64Histogram
}

// NewMetricObserver creates a MetricObserver whose instruments belong to the given scope.
func NewMetricObserver(mp metric.MeterProvider, scope string) (*MetricObserver, error) {
	meter := mp.Meter(scope)

	duration, err := meter.Float64Histogram(RequestDurationMetric,
		metric.WithUnit("s"),
		metric.WithDescription("Duration of HTTP server requests."),
		metric.WithExplicitBucketBoundaries(requestDurationBuckets...),
	)
	if err != nil {
		return nil, err
	}

	return &MetricObserver{duration: duration}, nil
}

// Observe records the span duration in seconds, tagged with the span attributes.
func (m *MetricObserver) Observe(info SpanInfo) {
	if !info.IsWebRequest() {
		return
	}
	m.duration.Record(context.Background(), info.Duration.Seconds(), metric.WithAttributes(info.Attrs...))
}
