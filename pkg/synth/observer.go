// SpanObserver interface for deriving signals (metrics, logs) from emitted spans.
// Observers receive span metadata after each span completes.
package synth

import (
	"time"

	"github.com/andrewh/txname/pkg/naming"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SpanInfo holds span metadata for signal derivation.
type SpanInfo struct {
	Scenario  string
	Operation naming.Operation
	Name      string
	Kind      trace.SpanKind
	Timestamp time.Time
	Duration  time.Duration
	Attrs     []attribute.KeyValue
}

// IsWebRequest reports whether the span came from a simulated web request.
func (s SpanInfo) IsWebRequest() bool {
	switch s.Operation.(type) {
	case naming.WebRequest, *naming.WebRequest:
		return true
	default:
		return false
	}
}

// SpanObserver receives span metadata after each span is emitted.
type SpanObserver interface {
	Observe(info SpanInfo)
}
