// Tests for span observer wiring: every observer sees every span with the resolved shape
package synth

import (
	"context"
	"sync"
	"testing"

	"github.com/andrewh/txname/pkg/naming"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type recordingObserver struct {
	mu    sync.Mutex
	infos []SpanInfo
}

func (r *recordingObserver) Observe(info SpanInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = append(r.infos, info)
}

func TestSpanInfoIsWebRequest(t *testing.T) {
	t.Parallel()

	assert.True(t, SpanInfo{Operation: naming.WebRequest{}}.IsWebRequest())
	assert.True(t, SpanInfo{Operation: &naming.WebRequest{}}.IsWebRequest())
	assert.False(t, SpanInfo{Operation: naming.MessagingOperation{}}.IsWebRequest())
	assert.False(t, SpanInfo{}.IsWebRequest())
}

func TestObserversReceiveEverySpan(t *testing.T) {
	t.Parallel()

	first, second := &recordingObserver{}, &recordingObserver{}
	engine := &Engine{
		Scenarios:  DefaultScenarios(),
		Resolver:   naming.NewResolver(naming.OperationFirst, fixedSource(5)),
		Tracer:     noop.NewTracerProvider().Tracer("test"),
		Observers:  []SpanObserver{first, second},
		Iterations: 2,
	}

	_, err := engine.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, first.infos, 22)
	assert.Equal(t, first.infos, second.infos)

	scenarios := DefaultScenarios()
	for i, info := range first.infos[:len(scenarios)] {
		assert.Equal(t, scenarios[i].Name, info.Scenario)
		assert.Equal(t, scenarios[i].Operation, info.Operation)
		assert.Equal(t, engine.Resolver.Resolve(scenarios[i].Operation).Name, info.Name)
	}
}
