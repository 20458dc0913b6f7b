// Tests for telemetry pipeline failure handling
package synth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithSinkFailure(t *testing.T) {
	t.Parallel()

	ctx, handler, cancel := WithSinkFailure(context.Background())
	defer cancel()
	require.NoError(t, ctx.Err())

	cause := errors.New("export failed: 503")
	handler.Handle(cause)
	handler.Handle(errors.New("second failure is ignored"))

	require.Error(t, ctx.Err())
	err := sinkFailure(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "telemetry sink failure: export failed: 503", err.Error())
}

func TestSinkFailureIgnoresPlainCancel(t *testing.T) {
	t.Parallel()

	ctx, _, cancel := WithSinkFailure(context.Background())
	cancel()
	require.Error(t, ctx.Err())
	assert.NoError(t, sinkFailure(ctx))

	plain, stop := context.WithCancel(context.Background())
	stop()
	assert.NoError(t, sinkFailure(plain))
}
