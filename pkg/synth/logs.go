// LogObserver emits one log record per simulated operation.
// Records carry the span name as body and the span attributes as log attributes.
package synth

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/log"
)

// LogObserver emits log records for emitted spans.
type LogObserver struct {
	logger log.Logger
}

// NewLogObserver creates a LogObserver that emits logs via the given LoggerProvider.
func NewLogObserver(lp log.LoggerProvider, scope string) *LogObserver {
	return &LogObserver{logger: lp.Logger(scope)}
}

// Observe emits an INFO record timestamped at the span start.
func (l *LogObserver) Observe(info SpanInfo) {
	attrs := make([]log.KeyValue, 0, len(info.Attrs)+3)
	attrs = append(attrs,
		log.String("span.name", info.Name),
		log.String("span.kind", info.Kind.String()),
		log.Float64("duration_s", info.Duration.Seconds()),
	)
	for _, kv := range info.Attrs {
		attrs = append(attrs, logAttribute(kv))
	}

	var rec log.Record
	rec.SetTimestamp(info.Timestamp)
	rec.SetSeverity(log.SeverityInfo)
	rec.SetSeverityText("INFO")
	rec.SetBody(log.StringValue(info.Name))
	rec.AddAttributes(attrs...)
	l.logger.Emit(context.Background(), rec)
}

// logAttribute converts a span attribute to a log attribute of the same type.
func logAttribute(kv attribute.KeyValue) log.KeyValue {
	key := string(kv.Key)
	switch kv.Value.Type() {
	case attribute.INT64:
		return log.Int64(key, kv.Value.AsInt64())
	case attribute.BOOL:
		return log.Bool(key, kv.Value.AsBool())
	case attribute.FLOAT64:
		return log.Float64(key, kv.Value.AsFloat64())
	default:
		return log.String(key, kv.Value.Emit())
	}
}
