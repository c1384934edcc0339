package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrMaxAttemptsExceeded wraps the last error seen after Retry exhausts
// its attempt budget.
var ErrMaxAttemptsExceeded = errors.New("pipeline: retry attempts exhausted")

// RetryOp is the operation a recovery strategy may re-invoke.
type RetryOp func(ctx context.Context) (any, error)

// RecoveryStrategy implements one of SkipFile / Retry / Fallback /
// FailFast, assigned per stage.
type RecoveryStrategy interface {
	// Recover is called when a stage fails with err. op is the stage's
	// underlying operation, re-invocable by strategies that retry. halt
	// is called when the strategy wants the batch executor to stop
	// dispatching new files (FailFast only).
	Recover(ctx context.Context, err error, stageName string, op RetryOp, halt func()) (any, error)
}

// SkipFile logs at error level and returns the original failure; the
// pipeline stops for this file, but the batch continues.
type SkipFile struct {
	Logger *slog.Logger
}

// Recover implements RecoveryStrategy.
func (s SkipFile) Recover(_ context.Context, err error, stageName string, _ RetryOp, _ func()) (any, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Error("stage failed, skipping file", "stage", stageName, "error", err)

	return nil, err
}

// Retry re-invokes op up to MaxAttempts times with exponential backoff:
// the delay before attempt k (2-indexed) is InitialDelayMs * 2^(k-2) ms.
// Cancellation during the backoff sleep returns the original error
// immediately, re-raising the context's cancellation.
type Retry struct {
	MaxAttempts    int
	InitialDelayMs int
}

// Recover implements RecoveryStrategy.
func (r Retry) Recover(ctx context.Context, err error, stageName string, op RetryOp, _ func()) (any, error) {
	if r.MaxAttempts < 1 {
		panic("pipeline: Retry.MaxAttempts must be >= 1")
	}

	if r.InitialDelayMs < 1 {
		panic("pipeline: Retry.InitialDelayMs must be >= 1")
	}

	lastErr := err

	// The caller's first attempt already failed (err is its result); this
	// loop performs attempts 2..MaxAttempts, matching the "at most
	// MaxAttempts total invocations of retry_op" bound.
	for attempt := 2; attempt <= r.MaxAttempts; attempt++ {
		delay := time.Duration(r.InitialDelayMs) * time.Millisecond * time.Duration(pow2(attempt-2))

		timer := time.NewTimer(delay)

		select {
		case <-ctx.Done():
			timer.Stop()

			return nil, err
		case <-timer.C:
		}

		value, opErr := op(ctx)
		if opErr == nil {
			return value, nil
		}

		lastErr = opErr
	}

	return nil, &PipelineError{Message: ErrMaxAttemptsExceeded.Error(), StageName: stageName, Cause: lastErr}
}

func pow2(exp int) int64 {
	result := int64(1)
	for range exp {
		result *= 2
	}

	return result
}

// Fallback always succeeds with a fixed value, e.g. the format stage
// falling back to the original, unformatted source text.
type Fallback struct {
	Value any
}

// Recover implements RecoveryStrategy.
func (f Fallback) Recover(_ context.Context, _ error, _ string, _ RetryOp, _ func()) (any, error) {
	return f.Value, nil
}

// FailFast returns the failure and additionally halts the batch executor's
// dispatch of new files.
type FailFast struct{}

// Recover implements RecoveryStrategy.
func (FailFast) Recover(_ context.Context, err error, _ string, _ RetryOp, halt func()) (any, error) {
	if halt != nil {
		halt()
	}

	return nil, err
}
