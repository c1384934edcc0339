// Package executor implements the bounded parallel batch executor (C11):
// it dispatches every file in a batch through a shared pipeline.Runner
// over a fixed-size worker pool, enforces a back-pressure queue, honors a
// global deadline, and short-circuits remaining dispatch when a stage's
// FailFast recovery strategy signals a halt.
package executor

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/styler-dev/styler/pkg/pipeline"
	"github.com/styler-dev/styler/pkg/rules"
)

// bufferMultiplier is the factor by which the dispatch queue's capacity
// scales with worker count, keeping workers fed without buffering the
// entire batch in memory at once.
const bufferMultiplier = 2

// Config configures an Executor.
type Config struct {
	// Workers is the number of parallel pipeline runners. 0 selects
	// runtime.NumCPU().
	Workers int

	// WriteOutput controls whether the WRITING stage persists results
	// (true for `format`, false for `check`/dry-run).
	WriteOutput bool

	// Tracer, if non-nil, receives one span per batch run.
	Tracer trace.Tracer

	// Meter, if non-nil, is used to create the executor's instruments.
	Meter metric.Meter
}

// Metrics holds the OTel instruments an Executor reports to, following the
// codebase's RED-metrics instrument shape: one counter per outcome, one
// histogram for per-file duration.
type Metrics struct {
	filesTotal   metric.Int64Counter
	fileDuration metric.Float64Histogram
}

// NewMetrics creates the executor's instruments from mt. Returns nil, nil
// if mt is nil (metrics disabled).
func NewMetrics(mt metric.Meter) (*Metrics, error) {
	if mt == nil {
		return nil, nil //nolint:nilnil // absent meter is a valid "metrics disabled" state, not an error
	}

	filesTotal, err := mt.Int64Counter("styler.files.total",
		metric.WithDescription("Total number of files processed by the batch executor"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, err
	}

	fileDuration, err := mt.Float64Histogram("styler.file.duration.seconds",
		metric.WithDescription("Per-file pipeline duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{filesTotal: filesTotal, fileDuration: fileDuration}, nil
}

func (m *Metrics) record(ctx context.Context, stage string, duration time.Duration) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("outcome", stage))
	m.filesTotal.Add(ctx, 1, attrs)
	m.fileDuration.Record(ctx, duration.Seconds(), attrs)
}

// Executor dispatches a batch of files through a shared pipeline.Runner
// over a bounded worker pool.
type Executor struct {
	runner      *pipeline.Runner
	workers     int
	writeOutput bool
	tracer      trace.Tracer
	metrics     *Metrics

	halted atomic.Bool
}

// New builds an Executor. The Runner it constructs internally shares cfg's
// halt semantics: a FailFast recovery strategy invoked by any worker sets
// the executor's halted flag, which stops further dispatch but lets
// in-flight files finish.
func New(collab pipeline.Collaborators, cfg Config) (*Executor, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	metrics, err := NewMetrics(cfg.Meter)
	if err != nil {
		return nil, err
	}

	exec := &Executor{workers: workers, writeOutput: cfg.WriteOutput, tracer: cfg.Tracer, metrics: metrics}
	exec.runner = pipeline.NewRunner(collab, func() { exec.halted.Store(true) })

	return exec, nil
}

type dispatchItem struct {
	index    int
	filePath string
}

// Run dispatches every file in files through the pipeline, in parallel
// across the executor's worker pool. Results are returned in the same
// order as files, regardless of completion order. If ctx is canceled or a
// FailFast strategy halts the batch, remaining undispatched files are
// reported as Skipped and their corresponding FileOutcome carries a
// context-cancellation error.
func (e *Executor) Run(
	ctx context.Context, files []string, enabledRules map[string]bool, configs []rules.Config,
) []pipeline.FileOutcome {
	if e.tracer != nil {
		var span trace.Span

		ctx, span = e.tracer.Start(ctx, "executor.batch", trace.WithAttributes(
			attribute.Int("file_count", len(files)),
			attribute.Int("workers", e.workers),
		))
		defer span.End()
	}

	results := make([]pipeline.FileOutcome, len(files))
	queue := make(chan dispatchItem, e.workers*bufferMultiplier)

	var wg sync.WaitGroup

	for range min(e.workers, max(len(files), 1)) {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for item := range queue {
				results[item.index] = e.runOne(ctx, item.filePath, enabledRules, configs)
			}
		}()
	}

	e.dispatch(ctx, files, queue)
	wg.Wait()

	for i, f := range files {
		if results[i].FilePath != "" {
			continue
		}

		cause := ctx.Err()
		if cause == nil {
			cause = context.Canceled
		}

		results[i] = pipeline.FileOutcome{FilePath: f, Stage: pipeline.Skipped, Err: &pipeline.PipelineError{
			Message: cause.Error(), FilePath: f, StageName: pipeline.Skipped.String(), Cause: cause,
		}}
	}

	return results
}

func (e *Executor) dispatch(ctx context.Context, files []string, queue chan<- dispatchItem) {
	defer close(queue)

	for i, f := range files {
		if e.halted.Load() {
			return
		}

		select {
		case <-ctx.Done():
			return
		case queue <- dispatchItem{index: i, filePath: f}:
		}
	}
}

func (e *Executor) runOne(
	ctx context.Context, filePath string, enabledRules map[string]bool, configs []rules.Config,
) pipeline.FileOutcome {
	start := time.Now()
	outcome := e.runner.Run(ctx, filePath, enabledRules, configs, e.writeOutput)

	e.metrics.record(ctx, outcome.Stage.String(), time.Since(start))

	return outcome
}
