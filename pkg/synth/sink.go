// Telemetry pipeline failure handling
// Export errors reported by the OTel SDK are fatal to a run
package synth

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
)

// SinkError reports a failure inside the telemetry pipeline, such as an
// exporter that cannot reach its collector.
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("telemetry sink failure: %v", e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// WithSinkFailure returns a context that is cancelled with a *SinkError cause
// the first time the returned handler receives an error. Install the handler
// with otel.SetErrorHandler so SDK export failures stop the engine.
func WithSinkFailure(parent context.Context) (context.Context, otel.ErrorHandler, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)
	handler := otel.ErrorHandlerFunc(func(err error) {
		cancel(&SinkError{Err: err})
	})
	return ctx, handler, func() { cancel(nil) }
}
