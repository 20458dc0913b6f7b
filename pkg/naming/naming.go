// Span naming and attribute derivation for simulated web requests and messaging operations
// Produces the span name, kind, ordered attributes, and synthetic duration for each operation
package naming

import (
	"fmt"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// StatusOK is the response status code attached to every simulated web request.
const StatusOK = 200

// Operation is a simulated unit of work. It is either a WebRequest or a MessagingOperation.
type Operation interface {
	operation()
}

// WebRequest describes an inbound HTTP request. A nil field is absent.
type WebRequest struct {
	Method       *string
	Route        *string
	NameOverride *string
}

func (WebRequest) operation() {}

// MessagingOperation describes a consumed message. A nil field is absent.
type MessagingOperation struct {
	Operation           *string
	DestinationTemplate *string
	DestinationName     *string
	NameOverride        *string
}

func (MessagingOperation) operation() {}

// Destination returns the template if present, otherwise the destination name.
func (m MessagingOperation) Destination() *string {
	if m.DestinationTemplate != nil {
		return m.DestinationTemplate
	}
	return m.DestinationName
}

// Some returns a pointer to s, for building operations from literals.
func Some(s string) *string {
	return &s
}

// Span is the resolved shape of a simulated operation.
type Span struct {
	Name       string
	Kind       trace.SpanKind
	Attributes []attribute.KeyValue
	Duration   time.Duration
}

// MessagingOrder selects which token leads a derived messaging span name.
type MessagingOrder int

const (
	// OperationFirst names messaging spans "operation destination".
	OperationFirst MessagingOrder = iota
	// DestinationFirst names messaging spans "destination operation".
	DestinationFirst
)

func (o MessagingOrder) String() string {
	switch o {
	case OperationFirst:
		return "operation-first"
	case DestinationFirst:
		return "destination-first"
	default:
		return fmt.Sprintf("MessagingOrder(%d)", int(o))
	}
}

// ParseMessagingOrder parses "operation-first" or "destination-first".
// An empty string selects OperationFirst.
func ParseMessagingOrder(s string) (MessagingOrder, error) {
	switch s {
	case "operation-first", "":
		return OperationFirst, nil
	case "destination-first":
		return DestinationFirst, nil
	default:
		return 0, fmt.Errorf("unknown messaging order %q, valid orders: operation-first, destination-first", s)
	}
}

// WebName derives the span name for a web request.
func WebName(req WebRequest) string {
	if req.NameOverride != nil {
		return *req.NameOverride
	}
	return joinTokens(req.Method, req.Route)
}

// WebAttributes returns the present attributes of a web request in fixed order.
func WebAttributes(req WebRequest) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if req.Method != nil {
		attrs = append(attrs, semconv.HTTPRequestMethodKey.String(*req.Method))
	}
	if req.Route != nil {
		attrs = append(attrs, semconv.HTTPRouteKey.String(*req.Route))
	}
	return append(attrs, semconv.HTTPResponseStatusCodeKey.Int(StatusOK))
}

// MessagingName derives the span name for a messaging operation under the given order.
func MessagingName(m MessagingOperation, order MessagingOrder) string {
	if m.NameOverride != nil {
		return *m.NameOverride
	}
	if order == DestinationFirst {
		return joinTokens(m.Destination(), m.Operation)
	}
	return joinTokens(m.Operation, m.Destination())
}

// MessagingAttributes returns the present attributes of a messaging operation in fixed order.
func MessagingAttributes(m MessagingOperation) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if m.Operation != nil {
		attrs = append(attrs, semconv.MessagingOperationKey.String(*m.Operation))
	}
	if m.DestinationTemplate != nil {
		attrs = append(attrs, semconv.MessagingDestinationTemplateKey.String(*m.DestinationTemplate))
	}
	if m.DestinationName != nil {
		attrs = append(attrs, semconv.MessagingDestinationNameKey.String(*m.DestinationName))
	}
	return attrs
}

// joinTokens joins two optional tokens with a single space. An absent token
// renders as empty, so "GET" with no route becomes "GET ". When both are
// absent the result is the empty name rather than a lone separator.
func joinTokens(first, second *string) string {
	if first == nil && second == nil {
		return ""
	}
	return deref(first) + " " + deref(second)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// IntSource draws a uniform integer in [0, n). *rand.Rand satisfies it.
type IntSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) } //nolint:gosec // synthetic data, not security-sensitive

// Resolver turns operations into spans. The zero value resolves messaging
// names operation-first, samples DefaultDurations, and draws from the
// process-wide random source.
type Resolver struct {
	Order     MessagingOrder
	Durations DurationRange
	Rng       IntSource
}

// NewResolver creates a Resolver with the given messaging order and random source.
func NewResolver(order MessagingOrder, rng IntSource) *Resolver {
	return &Resolver{Order: order, Durations: DefaultDurations, Rng: rng}
}

// Resolve dispatches on the operation variant.
func (r *Resolver) Resolve(op Operation) Span {
	switch o := op.(type) {
	case WebRequest:
		return r.Web(o)
	case *WebRequest:
		return r.Web(*o)
	case MessagingOperation:
		return r.Messaging(o)
	case *MessagingOperation:
		return r.Messaging(*o)
	default:
		panic(fmt.Sprintf("BUG: unknown operation type %T", op))
	}
}

// Web resolves a web request into a server span.
func (r *Resolver) Web(req WebRequest) Span {
	return Span{
		Name:       WebName(req),
		Kind:       trace.SpanKindServer,
		Attributes: WebAttributes(req),
		Duration:   r.sampleDuration(),
	}
}

// Messaging resolves a messaging operation into a consumer span.
func (r *Resolver) Messaging(m MessagingOperation) Span {
	return Span{
		Name:       MessagingName(m, r.Order),
		Kind:       trace.SpanKindConsumer,
		Attributes: MessagingAttributes(m),
		Duration:   r.sampleDuration(),
	}
}

func (r *Resolver) sampleDuration() time.Duration {
	rng := r.Rng
	if rng == nil {
		rng = globalSource{}
	}
	d := r.Durations
	if d.IsZero() {
		d = DefaultDurations
	}
	return d.Sample(rng)
}
