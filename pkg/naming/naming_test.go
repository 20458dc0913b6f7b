// Tests for span naming and attribute derivation
// Covers the literal scenario names, override precedence, and both messaging orders
package naming

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// fixedSource always draws the same value, clamped to the requested range.
type fixedSource int

func (f fixedSource) IntN(n int) int {
	return min(int(f), n-1)
}

func TestWebName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  WebRequest
		want string
	}{
		{
			name: "method and route",
			req:  WebRequest{Method: Some("GET"), Route: Some("/Users")},
			want: "GET /Users",
		},
		{
			name: "override wins over method and route",
			req:  WebRequest{Method: Some("GET"), Route: Some("/Users"), NameOverride: Some("Custom span name")},
			want: "Custom span name",
		},
		{
			name: "override only",
			req:  WebRequest{NameOverride: Some("Foo")},
			want: "Foo",
		},
		{
			name: "all absent",
			req:  WebRequest{},
			want: "",
		},
		{
			name: "method without route keeps trailing separator",
			req:  WebRequest{Method: Some("GET")},
			want: "GET ",
		},
		{
			name: "route without method keeps leading separator",
			req:  WebRequest{Route: Some("/Users")},
			want: " /Users",
		},
		{
			name: "empty override is still an override",
			req:  WebRequest{Method: Some("GET"), Route: Some("/Users"), NameOverride: Some("")},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, WebName(tt.req))
		})
	}
}

func TestWebAttributes(t *testing.T) {
	t.Parallel()

	t.Run("all present", func(t *testing.T) {
		t.Parallel()
		attrs := WebAttributes(WebRequest{Method: Some("POST"), Route: Some("/Users")})
		assert.Equal(t, []attribute.KeyValue{
			attribute.String("http.request.method", "POST"),
			attribute.String("http.route", "/Users"),
			attribute.Int64("http.response.status_code", 200),
		}, attrs)
	})

	t.Run("route absent", func(t *testing.T) {
		t.Parallel()
		attrs := WebAttributes(WebRequest{Method: Some("GET"), NameOverride: Some("Custom span name")})
		assert.Equal(t, []attribute.KeyValue{
			attribute.String("http.request.method", "GET"),
			attribute.Int64("http.response.status_code", 200),
		}, attrs)
	})

	t.Run("status code is always present", func(t *testing.T) {
		t.Parallel()
		attrs := WebAttributes(WebRequest{})
		require.Len(t, attrs, 1)
		assert.Equal(t, attribute.Key("http.response.status_code"), attrs[0].Key)
		assert.Equal(t, attribute.INT64, attrs[0].Value.Type())
		assert.Equal(t, int64(200), attrs[0].Value.AsInt64())
	})
}

func TestMessagingName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		op               MessagingOperation
		operationFirst   string
		destinationFirst string
	}{
		{
			name:             "operation and template",
			op:               MessagingOperation{Operation: Some("process"), DestinationTemplate: Some("/customers/{customerId}")},
			operationFirst:   "process /customers/{customerId}",
			destinationFirst: "/customers/{customerId} process",
		},
		{
			name:             "operation and destination name",
			op:               MessagingOperation{Operation: Some("process"), DestinationName: Some("MyTopic")},
			operationFirst:   "process MyTopic",
			destinationFirst: "MyTopic process",
		},
		{
			name: "template takes priority over name",
			op: MessagingOperation{
				Operation:           Some("process"),
				DestinationTemplate: Some("/customers/{customerId}"),
				DestinationName:     Some("customers-42"),
			},
			operationFirst:   "process /customers/{customerId}",
			destinationFirst: "/customers/{customerId} process",
		},
		{
			name:             "override wins",
			op:               MessagingOperation{Operation: Some("process"), DestinationName: Some("MyTopic"), NameOverride: Some("Custom span name")},
			operationFirst:   "Custom span name",
			destinationFirst: "Custom span name",
		},
		{
			name:             "template only",
			op:               MessagingOperation{DestinationTemplate: Some("/customers/{customerId}")},
			operationFirst:   " /customers/{customerId}",
			destinationFirst: "/customers/{customerId} ",
		},
		{
			name:             "all absent",
			op:               MessagingOperation{},
			operationFirst:   "",
			destinationFirst: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.operationFirst, MessagingName(tt.op, OperationFirst))
			assert.Equal(t, tt.destinationFirst, MessagingName(tt.op, DestinationFirst))
		})
	}
}

func TestMessagingAttributes(t *testing.T) {
	t.Parallel()

	attrs := MessagingAttributes(MessagingOperation{
		Operation:           Some("process"),
		DestinationTemplate: Some("/customers/{customerId}"),
		DestinationName:     Some("customers-42"),
		NameOverride:        Some("ignored"),
	})
	assert.Equal(t, []attribute.KeyValue{
		attribute.String("messaging.operation", "process"),
		attribute.String("messaging.destination.template", "/customers/{customerId}"),
		attribute.String("messaging.destination.name", "customers-42"),
	}, attrs)

	assert.Empty(t, MessagingAttributes(MessagingOperation{NameOverride: Some("x")}))
	assert.Equal(t, []attribute.KeyValue{
		attribute.String("messaging.destination.name", "MyTopic"),
	}, MessagingAttributes(MessagingOperation{DestinationName: Some("MyTopic")}))
}

func TestMessagingDestination(t *testing.T) {
	t.Parallel()

	both := MessagingOperation{DestinationTemplate: Some("/customers/{customerId}"), DestinationName: Some("MyTopic")}
	assert.Equal(t, "/customers/{customerId}", *both.Destination())

	nameOnly := MessagingOperation{DestinationName: Some("MyTopic")}
	assert.Equal(t, "MyTopic", *nameOnly.Destination())

	assert.Nil(t, MessagingOperation{}.Destination())
}

func TestResolverWeb(t *testing.T) {
	t.Parallel()

	r := NewResolver(OperationFirst, fixedSource(40))
	span := r.Resolve(WebRequest{Method: Some("GET"), Route: Some("/Users")})

	assert.Equal(t, "GET /Users", span.Name)
	assert.Equal(t, trace.SpanKindServer, span.Kind)
	assert.Len(t, span.Attributes, 3)
	assert.Equal(t, 50*time.Millisecond, span.Duration)
}

func TestResolverMessaging(t *testing.T) {
	t.Parallel()

	op := MessagingOperation{Operation: Some("process"), DestinationTemplate: Some("/customers/{customerId}")}

	a := NewResolver(OperationFirst, fixedSource(0)).Resolve(op)
	b := NewResolver(DestinationFirst, fixedSource(0)).Resolve(&op)

	assert.Equal(t, "process /customers/{customerId}", a.Name)
	assert.Equal(t, "/customers/{customerId} process", b.Name)
	assert.Equal(t, trace.SpanKindConsumer, a.Kind)
	assert.Equal(t, trace.SpanKindConsumer, b.Kind)
	assert.Equal(t, a.Attributes, b.Attributes)
	assert.Equal(t, 10*time.Millisecond, a.Duration)
}

func TestResolverZeroValue(t *testing.T) {
	t.Parallel()

	var r Resolver
	for range 100 {
		span := r.Resolve(WebRequest{})
		assert.GreaterOrEqual(t, span.Duration, 10*time.Millisecond)
		assert.Less(t, span.Duration, 200*time.Millisecond)
	}
	assert.Equal(t, "a b", r.Resolve(MessagingOperation{Operation: Some("a"), DestinationName: Some("b")}).Name)
}

func TestParseMessagingOrder(t *testing.T) {
	t.Parallel()

	for _, order := range []MessagingOrder{OperationFirst, DestinationFirst} {
		got, err := ParseMessagingOrder(order.String())
		require.NoError(t, err)
		assert.Equal(t, order, got)
	}

	got, err := ParseMessagingOrder("")
	require.NoError(t, err)
	assert.Equal(t, OperationFirst, got)

	_, err = ParseMessagingOrder("sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown messaging order")
	assert.Equal(t, "MessagingOrder(7)", MessagingOrder(7).String())
}
