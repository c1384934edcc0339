package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesProcessedTotal  = "styler.files.processed.total"
	metricStageDuration        = "styler.stage.duration.seconds"
	metricBatchErrorsTotal     = "styler.batch.errors.total"
	metricClasspathProbeHits   = "styler.classpath.probe.hits.total"
	metricClasspathProbeMisses = "styler.classpath.probe.misses.total"

	attrResult = "result"
	attrStage  = "stage"
)

// FileResult classifies the outcome of formatting a single file.
type FileResult string

const (
	// ResultSuccess marks a file that was parsed, formatted, and (if
	// requested) rewritten without error.
	ResultSuccess FileResult = "success"
	// ResultFailed marks a file that errored during one of the pipeline
	// stages and was recorded in the batch's failure set.
	ResultFailed FileResult = "failed"
	// ResultSkipped marks a file excluded before the pipeline ran, e.g. by
	// the changed-files filter or an unrecognized extension.
	ResultSkipped FileResult = "skipped"
)

// BatchMetrics holds OTel instruments for the batch formatting pipeline.
type BatchMetrics struct {
	filesProcessed  metric.Int64Counter
	stageDuration   metric.Float64Histogram
	batchErrors     metric.Int64Counter
	classpathHits   metric.Int64Counter
	classpathMisses metric.Int64Counter
}

// NewBatchMetrics creates batch metric instruments from the given meter.
func NewBatchMetrics(mt metric.Meter) (*BatchMetrics, error) {
	b := newMetricBuilder(mt)

	bm := &BatchMetrics{
		filesProcessed:  b.counter(metricFilesProcessedTotal, "Total files processed by result", "{file}"),
		stageDuration:   b.histogram(metricStageDuration, "Per-stage processing duration in seconds", "s", durationBucketBoundaries...),
		batchErrors:     b.counter(metricBatchErrorsTotal, "Total errors recorded across a batch run", "{error}"),
		classpathHits:   b.counter(metricClasspathProbeHits, "Classpath probe cache hits", "{hit}"),
		classpathMisses: b.counter(metricClasspathProbeMisses, "Classpath probe cache misses", "{miss}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return bm, nil
}

// RecordFileResult increments the files-processed counter for the given
// outcome. Safe to call on a nil receiver (no-op).
func (bm *BatchMetrics) RecordFileResult(ctx context.Context, result FileResult) {
	if bm == nil {
		return
	}

	bm.filesProcessed.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, string(result))))
}

// RecordStageDuration records how long a pipeline stage took for one file.
// Safe to call on a nil receiver (no-op).
func (bm *BatchMetrics) RecordStageDuration(ctx context.Context, stage string, seconds float64) {
	if bm == nil {
		return
	}

	bm.stageDuration.Record(ctx, seconds, metric.WithAttributes(attribute.String(attrStage, stage)))
}

// RecordBatchError increments the batch error counter. Safe to call on a
// nil receiver (no-op).
func (bm *BatchMetrics) RecordBatchError(ctx context.Context) {
	if bm == nil {
		return
	}

	bm.batchErrors.Add(ctx, 1)
}

// RecordClasspathProbe records a classpath probe cache hit or miss. Safe to
// call on a nil receiver (no-op).
func (bm *BatchMetrics) RecordClasspathProbe(ctx context.Context, hit bool) {
	if bm == nil {
		return
	}

	if hit {
		bm.classpathHits.Add(ctx, 1)

		return
	}

	bm.classpathMisses.Add(ctx, 1)
}
