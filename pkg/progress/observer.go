// Package progress implements the batch-level progress observer (C10): a
// ProgressObserver that wraps an inner observer and adds lock-free
// aggregation plus throttled human-readable reporting.
package progress

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/styler-dev/styler/pkg/pipeline"
)

// reportBucketPercent is the minimum forward progress, as a percentage of
// the total file count, required to trigger a report beyond the time-based
// trigger.
const reportBucketPercent = 10

// minReportInterval is the minimum wall-clock time between two reports
// triggered purely by elapsed time, independent of progress made.
const minReportInterval = 5 * time.Second

// Observer wraps an inner pipeline.ProgressObserver, accumulating
// completed/error counts with atomics (so any number of Runner goroutines
// can report concurrently without a mutex) and printing a throttled
// human-readable summary line to Out.
//
// A report fires when either: progress has advanced by at least
// reportBucketPercent of the total since the last report, or at least
// minReportInterval has elapsed since the last report — whichever comes
// first. lastReportedBucket is advanced with a compare-and-swap, so only one
// goroutine prints the report for a newly reached bucket; reports fired by
// the elapsed-time trigger within the same bucket are not deduplicated, and
// concurrent callers may each print one.
type Observer struct {
	inner pipeline.ProgressObserver
	out   io.Writer
	total int64

	completedCount     atomic.Int64
	errorCount         atomic.Int64
	lastReportUnixNano atomic.Int64
	lastReportedBucket atomic.Int64
}

// NewObserver wraps inner, reporting human-readable progress lines to out
// as files complete. total is the batch's total file count (used to
// compute the reporting bucket and the final summary).
func NewObserver(inner pipeline.ProgressObserver, out io.Writer, total int) *Observer {
	if inner == nil {
		inner = pipeline.NoopObserver{}
	}

	o := &Observer{inner: inner, out: out, total: int64(total)}
	o.lastReportUnixNano.Store(time.Now().UnixNano())

	return o
}

// OnProcessingStarted implements pipeline.ProgressObserver.
func (o *Observer) OnProcessingStarted(filePath string, totalStages int) {
	o.inner.OnProcessingStarted(filePath, totalStages)
}

// OnStageStarted implements pipeline.ProgressObserver.
func (o *Observer) OnStageStarted(filePath string, stage pipeline.Stage) {
	o.inner.OnStageStarted(filePath, stage)
}

// OnStageCompleted implements pipeline.ProgressObserver.
func (o *Observer) OnStageCompleted(filePath string, stage pipeline.Stage) {
	o.inner.OnStageCompleted(filePath, stage)
}

// OnProcessingCompleted implements pipeline.ProgressObserver.
func (o *Observer) OnProcessingCompleted(filePath string) {
	o.inner.OnProcessingCompleted(filePath)

	completed := o.completedCount.Add(1)
	o.maybeReport(completed)
}

// OnProcessingFailed implements pipeline.ProgressObserver.
func (o *Observer) OnProcessingFailed(filePath string, err *pipeline.PipelineError) {
	o.inner.OnProcessingFailed(filePath, err)

	o.errorCount.Add(1)
	completed := o.completedCount.Add(1)
	o.maybeReport(completed)
}

// OnPipelineClosed implements pipeline.ProgressObserver.
func (o *Observer) OnPipelineClosed() {
	o.inner.OnPipelineClosed()

	if o.out != nil {
		fmt.Fprintf(o.out, "done: %s processed, %s failed\n",
			humanize.Comma(o.completedCount.Load()), humanize.Comma(o.errorCount.Load()))
	}
}

// Completed returns the number of files that have finished (success or
// failure) so far.
func (o *Observer) Completed() int64 { return o.completedCount.Load() }

// Errors returns the number of files that have failed so far.
func (o *Observer) Errors() int64 { return o.errorCount.Load() }

func (o *Observer) maybeReport(completed int64) {
	if o.out == nil || o.total <= 0 {
		return
	}

	bucket := completed * 100 / o.total / reportBucketPercent
	previousBucket := o.lastReportedBucket.Load()

	now := time.Now()
	elapsedEnough := now.Sub(time.Unix(0, o.lastReportUnixNano.Load())) >= minReportInterval

	if bucket <= previousBucket && !elapsedEnough {
		return
	}

	if !o.lastReportedBucket.CompareAndSwap(previousBucket, bucket) {
		return
	}

	o.lastReportUnixNano.Store(now.UnixNano())

	fmt.Fprintf(o.out, "%s / %s files (%s errors)\n",
		humanize.Comma(completed), humanize.Comma(o.total), humanize.Comma(o.errorCount.Load()))
}
