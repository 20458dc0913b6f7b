package semconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/andrewh/txname/pkg/naming"
)

func embedded(t *testing.T) *Registry {
	t.Helper()
	reg, err := LoadEmbedded()
	require.NoError(t, err)
	return reg
}

func TestCheckAttributes(t *testing.T) {
	t.Parallel()
	reg := embedded(t)

	tests := []struct {
		name     string
		attrs    []attribute.KeyValue
		severity []string
	}{
		{
			name:  "web request conforms",
			attrs: naming.WebAttributes(naming.WebRequest{Method: naming.Some("GET"), Route: naming.Some("/Users")}),
		},
		{
			name: "messaging operation conforms",
			attrs: naming.MessagingAttributes(naming.MessagingOperation{
				Operation:           naming.Some("process"),
				DestinationTemplate: naming.Some("/customers/{customerId}"),
			}),
		},
		{
			name:     "unknown key",
			attrs:    []attribute.KeyValue{attribute.String("shop.basket.id", "b1")},
			severity: []string{SeverityError},
		},
		{
			name:     "wrong type",
			attrs:    []attribute.KeyValue{attribute.String("http.response.status_code", "200")},
			severity: []string{SeverityError},
		},
		{
			name:     "enum value outside members",
			attrs:    []attribute.KeyValue{attribute.String("http.request.method", "BREW")},
			severity: []string{SeverityWarning},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			findings := reg.CheckAttributes(tt.attrs)
			got := make([]string, 0, len(findings))
			for _, f := range findings {
				got = append(got, f.Severity)
			}
			if len(tt.severity) == 0 {
				assert.Empty(t, findings)
				return
			}
			assert.Equal(t, tt.severity, got)
		})
	}
}

func TestCheckMetric(t *testing.T) {
	t.Parallel()
	reg := embedded(t)

	full := naming.WebAttributes(naming.WebRequest{Method: naming.Some("POST"), Route: naming.Some("/Users")})
	assert.Empty(t, reg.CheckMetric("http.server.request.duration", full))

	bare := naming.WebAttributes(naming.WebRequest{NameOverride: naming.Some("Foo")})
	findings := reg.CheckMetric("http.server.request.duration", bare)
	require.Len(t, findings, 1)
	assert.Equal(t, "http.request.method", findings[0].Key)
	assert.Equal(t, SeverityWarning, findings[0].Severity)
	assert.False(t, HasErrors(findings))

	unknown := reg.CheckMetric("http.client.request.duration", full)
	assert.True(t, HasErrors(unknown))
}

func TestFindingString(t *testing.T) {
	t.Parallel()
	f := Finding{Key: "http.route", Severity: SeverityError, Message: "has type INT64, convention requires string"}
	assert.Equal(t, "error: http.route: has type INT64, convention requires string", f.String())
}
