package pipeline_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/styler-dev/styler/pkg/pipeline"
)

func TestGuardRuleNilWatchdogRunsUnguarded(t *testing.T) {
	value, err := pipeline.GuardRule[string](nil, "line-length", func() (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", value)
}

func TestGuardRuleReturnsValueWithinTimeout(t *testing.T) {
	watchdog := pipeline.NewRuleWatchdog(50*time.Millisecond, nil)

	value, err := pipeline.GuardRule[int](watchdog, "indentation", func() (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, value)
	assert.Equal(t, 0, watchdog.StalledCount())
}

func TestGuardRuleReportsStallOnTimeout(t *testing.T) {
	watchdog := pipeline.NewRuleWatchdog(10*time.Millisecond, nil)

	_, err := pipeline.GuardRule[int](watchdog, "brace-style", func() (int, error) {
		time.Sleep(200 * time.Millisecond)

		return 0, nil
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, pipeline.ErrRuleStalled))
	assert.Equal(t, 1, watchdog.StalledCount())
}

func TestBackoffDurationSequence(t *testing.T) {
	assert.Equal(t, time.Duration(0), pipeline.BackoffDuration(0))
	assert.Equal(t, 100*time.Millisecond, pipeline.BackoffDuration(1))
	assert.Equal(t, 400*time.Millisecond, pipeline.BackoffDuration(2))
}
