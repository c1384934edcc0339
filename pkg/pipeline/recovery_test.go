package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/styler-dev/styler/pkg/pipeline"
)

var errBoom = errors.New("boom")

// S6, scaled down to Retry(3, 5ms): the caller's failed first attempt plus
// an op that fails once more then succeeds returns Success from attempt 3,
// after 5ms + 10ms of backoff sleep.
func TestRetrySucceedsOnThirdAttempt(t *testing.T) {
	calls := 0
	op := func(context.Context) (any, error) {
		calls++
		if calls < 2 {
			return nil, errBoom
		}

		return "ok", nil
	}

	strategy := pipeline.Retry{MaxAttempts: 3, InitialDelayMs: 5}

	start := time.Now()
	value, err := strategy.Recover(context.Background(), errBoom, "format", op, nil)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "ok", value)
	assert.Equal(t, 2, calls)
	assert.GreaterOrEqual(t, elapsed, 5*time.Millisecond)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	op := func(context.Context) (any, error) { return nil, errBoom }
	strategy := pipeline.Retry{MaxAttempts: 2, InitialDelayMs: 1}

	_, err := strategy.Recover(context.Background(), errBoom, "read", op, nil)
	require.Error(t, err)

	var pipeErr *pipeline.PipelineError
	require.ErrorAs(t, err, &pipeErr)
}

func TestRetryCancellationReturnsOriginalError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	op := func(context.Context) (any, error) { return "should not run", nil }
	strategy := pipeline.Retry{MaxAttempts: 3, InitialDelayMs: 1000}

	_, err := strategy.Recover(ctx, errBoom, "parse", op, nil)
	assert.Equal(t, errBoom, err)
}

func TestFallbackAlwaysSucceeds(t *testing.T) {
	strategy := pipeline.Fallback{Value: "original source"}

	value, err := strategy.Recover(context.Background(), errBoom, "format", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "original source", value)
}

func TestFailFastCallsHalt(t *testing.T) {
	halted := false
	strategy := pipeline.FailFast{}

	_, err := strategy.Recover(context.Background(), errBoom, "config", nil, func() { halted = true })
	require.Error(t, err)
	assert.True(t, halted)
}

func TestSkipFileReturnsOriginalError(t *testing.T) {
	strategy := pipeline.SkipFile{}

	_, err := strategy.Recover(context.Background(), errBoom, "parse", nil, nil)
	assert.Equal(t, errBoom, err)
}
