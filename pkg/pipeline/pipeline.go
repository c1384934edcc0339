package pipeline

import (
	"context"
	"errors"

	"github.com/styler-dev/styler/pkg/ast"
	"github.com/styler-dev/styler/pkg/edit"
	"github.com/styler-dev/styler/pkg/linemap"
	"github.com/styler-dev/styler/pkg/rules"
)

// totalStages is the fixed count of reported stages, Reading..Writing.
const totalStages = 7

// Reader reads a file's raw source bytes.
type Reader func(ctx context.Context, filePath string) ([]byte, error)

// Parser lowers source text into an arena-backed AST, returning the arena
// and its root node index. Parse failures (malformed syntax the grammar
// cannot recover from) surface as a plain error; the arena is owned by the
// caller once returned and must be Close()d.
type Parser interface {
	Parse(ctx context.Context, filePath string, source []byte) (*ast.Arena, ast.NodeIndex, error)
}

// Writer persists the formatted output for a file.
type Writer func(ctx context.Context, filePath string, formatted []byte) error

// FileOutcome is the terminal result of running one file through the
// pipeline, successful or not.
type FileOutcome struct {
	FilePath    string
	Stage       Stage
	Source      []byte
	Formatted   []byte
	Violations  []rules.Violation
	Conflicts   []edit.ConflictWarning
	LineMapping linemap.LineMapping
	Err         *PipelineError
}

// Collaborators bundles the external dependencies a Runner dispatches to.
// Any stage absent from RecoveryByStage falls back to SkipFile.
type Collaborators struct {
	Reader          Reader
	Parser          Parser
	Registry        *rules.Registry
	Writer          Writer
	Observer        ProgressObserver
	RecoveryByStage map[Stage]RecoveryStrategy
}

// Runner drives one file through the fixed stage sequence INIT ->
// READING -> PARSING -> ANALYZING -> FORMATTING -> RESOLVING -> EMITTING
// -> WRITING -> DONE, dispatching each stage's recovery strategy on
// failure and reporting progress. A Runner holds no per-file state, so a
// single instance is shared across every file the executor dispatches.
type Runner struct {
	collab Collaborators
	halt   func()
}

// NewRunner builds a Runner. halt is invoked by a FailFast recovery
// strategy to tell the batch executor to stop dispatching new files; it
// may be nil for a single-file run.
func NewRunner(collab Collaborators, halt func()) *Runner {
	if collab.Observer == nil {
		collab.Observer = NoopObserver{}
	}

	return &Runner{collab: collab, halt: halt}
}

type parseOutput struct {
	arena *ast.Arena
	root  ast.NodeIndex
}

type formatOutput struct {
	resolved  edit.ResolvedSet
	conflicts []edit.ConflictWarning
}

type emitOutput struct {
	output  []byte
	mapping linemap.LineMapping
}

// Run executes the full pipeline for one file. writeOutput controls
// whether the WRITING stage actually persists the result; `check`/dry-run
// callers pass false and read outcome.Formatted instead.
func (r *Runner) Run(
	ctx context.Context, filePath string, enabledRules map[string]bool, configs []rules.Config, writeOutput bool,
) FileOutcome {
	r.collab.Observer.OnProcessingStarted(filePath, totalStages)

	outcome := FileOutcome{FilePath: filePath}

	source, ok := r.readStage(ctx, filePath, &outcome)
	if !ok {
		return outcome
	}

	arena, root, ok := r.parseStage(ctx, filePath, source, &outcome)
	if !ok {
		return outcome
	}

	defer arena.Close()

	tctx := rules.NewTransformationContext(ctx, filePath, source, arena, root, enabledRules)

	if ok = r.analyzeStage(ctx, tctx, configs, &outcome); !ok {
		return outcome
	}

	resolved, ok := r.formatAndResolveStages(ctx, tctx, configs, &outcome)
	if !ok {
		return outcome
	}

	emitted, ok := r.emitStage(ctx, filePath, source, resolved, &outcome)
	if !ok {
		return outcome
	}

	outcome.Formatted = emitted.output
	outcome.LineMapping = emitted.mapping

	if writeOutput && !r.writeStage(ctx, filePath, emitted.output, &outcome) {
		return outcome
	}

	outcome.Stage = Done
	r.collab.Observer.OnProcessingCompleted(filePath)

	return outcome
}

func (r *Runner) readStage(ctx context.Context, filePath string, outcome *FileOutcome) ([]byte, bool) {
	result := runStage(ctx, r, Reading, filePath, func(ctx context.Context) ([]byte, error) {
		return r.collab.Reader(ctx, filePath)
	})
	if !result.IsSuccess() {
		r.fail(outcome, result.Err())

		return nil, false
	}

	source, _ := result.Value()
	outcome.Source = source

	return source, true
}

func (r *Runner) parseStage(
	ctx context.Context, filePath string, source []byte, outcome *FileOutcome,
) (*ast.Arena, ast.NodeIndex, bool) {
	result := runStage(ctx, r, Parsing, filePath, func(ctx context.Context) (parseOutput, error) {
		arena, root, err := r.collab.Parser.Parse(ctx, filePath, source)

		return parseOutput{arena: arena, root: root}, err
	})
	if !result.IsSuccess() {
		r.fail(outcome, result.Err())

		return nil, ast.NoIndex, false
	}

	p, _ := result.Value()

	return p.arena, p.root, true
}

func (r *Runner) analyzeStage(
	ctx context.Context, tctx *rules.TransformationContext, configs []rules.Config, outcome *FileOutcome,
) bool {
	result := runStage(ctx, r, Analyzing, outcome.FilePath, func(context.Context) ([]rules.Violation, error) {
		return r.collab.Registry.RunAnalyze(tctx, configs)
	})
	if !result.IsSuccess() {
		r.fail(outcome, result.Err())

		return false
	}

	violations, _ := result.Value()
	outcome.Violations = violations

	return true
}

// formatAndResolveStages runs FORMATTING (collecting every rule's edits)
// and RESOLVING (the single-pass conflict resolution over that combined
// set) as two separately reported stages sharing one underlying
// computation, matching the staged pipeline's reporting granularity
// without re-running rule Format methods twice.
func (r *Runner) formatAndResolveStages(
	ctx context.Context, tctx *rules.TransformationContext, configs []rules.Config, outcome *FileOutcome,
) (edit.ResolvedSet, bool) {
	formatResult := runStage(ctx, r, Formatting, outcome.FilePath, func(context.Context) (formatOutput, error) {
		resolved, conflicts, err := r.collab.Registry.RunFormat(tctx, configs)

		return formatOutput{resolved: resolved, conflicts: conflicts}, err
	})
	if !formatResult.IsSuccess() {
		r.fail(outcome, formatResult.Err())

		return nil, false
	}

	f, _ := formatResult.Value()
	outcome.Conflicts = f.conflicts

	resolveResult := runStage(ctx, r, Resolving, outcome.FilePath, func(context.Context) (edit.ResolvedSet, error) {
		return f.resolved, nil
	})
	if !resolveResult.IsSuccess() {
		r.fail(outcome, resolveResult.Err())

		return nil, false
	}

	resolved, _ := resolveResult.Value()

	return resolved, true
}

func (r *Runner) emitStage(
	ctx context.Context, filePath string, source []byte, resolved edit.ResolvedSet, outcome *FileOutcome,
) (emitOutput, bool) {
	result := runStage(ctx, r, Emitting, filePath, func(context.Context) (emitOutput, error) {
		output := edit.Apply(source, resolved)
		mapping := buildLineMapping(source, output)

		return emitOutput{output: output, mapping: mapping}, nil
	})
	if !result.IsSuccess() {
		r.fail(outcome, result.Err())

		return emitOutput{}, false
	}

	e, _ := result.Value()

	return e, true
}

func (r *Runner) writeStage(ctx context.Context, filePath string, output []byte, outcome *FileOutcome) bool {
	result := runStage(ctx, r, Writing, filePath, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.collab.Writer(ctx, filePath, output)
	})
	if !result.IsSuccess() {
		r.fail(outcome, result.Err())

		return false
	}

	return true
}

func (r *Runner) fail(outcome *FileOutcome, err *PipelineError) {
	outcome.Stage = Failed
	outcome.Err = err
	r.collab.Observer.OnProcessingFailed(outcome.FilePath, err)
}

// runStage executes op, reporting stage start/completion events, and on
// failure dispatches the stage's configured RecoveryStrategy (SkipFile by
// default). A recovered value must be assignable back to T; a strategy
// that returns the wrong type is a configuration bug, reported as a
// failure rather than a panic.
func runStage[T any](
	ctx context.Context, r *Runner, stage Stage, filePath string, op func(context.Context) (T, error),
) StageResult[T] {
	r.collab.Observer.OnStageStarted(filePath, stage)

	value, err := op(ctx)
	if err == nil {
		r.collab.Observer.OnStageCompleted(filePath, stage)

		return Success(value)
	}

	pipeErr := &PipelineError{Message: err.Error(), FilePath: filePath, StageName: stage.String(), Cause: err}

	strategy := r.collab.RecoveryByStage[stage]
	if strategy == nil {
		strategy = SkipFile{}
	}

	retryOp := func(ctx context.Context) (any, error) { return op(ctx) }

	recovered, recErr := strategy.Recover(ctx, pipeErr, stage.String(), retryOp, r.halt)
	if recErr != nil {
		return Failure[T](asPipelineError(recErr, filePath, stage))
	}

	typed, ok := recovered.(T)
	if !ok {
		return Failure[T](&PipelineError{
			Message: "recovery strategy produced a value of the wrong type", FilePath: filePath, StageName: stage.String(),
		})
	}

	r.collab.Observer.OnStageCompleted(filePath, stage)

	return Success(typed)
}

func asPipelineError(err error, filePath string, stage Stage) *PipelineError {
	var pipeErr *PipelineError
	if errors.As(err, &pipeErr) {
		return pipeErr
	}

	return &PipelineError{Message: err.Error(), FilePath: filePath, StageName: stage.String(), Cause: err}
}

func buildLineMapping(source, formatted []byte) linemap.LineMapping {
	origLines := countLines(source)
	fmtLines := countLines(formatted)

	if origLines == fmtLines {
		return linemap.Identity(origLines)
	}

	b := linemap.NewBuilder()

	shared := min(origLines, fmtLines)
	for i := 1; i <= shared; i++ {
		b.Map(i, i)
	}

	return b.Build(origLines, fmtLines)
}

func countLines(b []byte) int {
	if len(b) == 0 {
		return 0
	}

	count := 1

	for _, c := range b {
		if c == '\n' {
			count++
		}
	}

	return count
}
