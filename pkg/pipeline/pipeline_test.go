package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/styler-dev/styler/pkg/ast"
	"github.com/styler-dev/styler/pkg/pipeline"
	"github.com/styler-dev/styler/pkg/rules"
)

type stubParser struct {
	err error
}

func (p stubParser) Parse(_ context.Context, _ string, source []byte) (*ast.Arena, ast.NodeIndex, error) {
	if p.err != nil {
		return nil, ast.NoIndex, p.err
	}

	arena := ast.NewArena(0)
	root := arena.Allocate(ast.KindCompilationUnit, 0, uint32(len(source)))

	return arena, root, nil
}

type recordingObserver struct {
	started   []string
	completed []string
	failed    []string
	closed    bool
}

func (o *recordingObserver) OnProcessingStarted(filePath string, _ int) { o.started = append(o.started, filePath) }
func (o *recordingObserver) OnStageStarted(string, pipeline.Stage)      {}
func (o *recordingObserver) OnStageCompleted(filePath string, stage pipeline.Stage) {
	o.completed = append(o.completed, filePath+":"+stage.String())
}
func (o *recordingObserver) OnProcessingCompleted(filePath string) { o.completed = append(o.completed, filePath+":DONE") }
func (o *recordingObserver) OnProcessingFailed(filePath string, _ *pipeline.PipelineError) {
	o.failed = append(o.failed, filePath)
}
func (o *recordingObserver) OnPipelineClosed() { o.closed = true }

func newCollaborators(source []byte, parser pipeline.Parser) (pipeline.Collaborators, *[]byte) {
	var written []byte

	return pipeline.Collaborators{
		Reader: func(context.Context, string) ([]byte, error) { return source, nil },
		Parser: parser,
		Registry: rules.NewRegistry(),
		Writer: func(_ context.Context, _ string, formatted []byte) error {
			written = formatted

			return nil
		},
	}, &written
}

// A file with no registered rules passes through every stage unchanged
// and reaches DONE.
func TestRunnerSucceedsWithNoRulesRegistered(t *testing.T) {
	source := []byte("int x = 1;\n")
	collab, written := newCollaborators(source, stubParser{})

	observer := &recordingObserver{}
	collab.Observer = observer

	runner := pipeline.NewRunner(collab, nil)
	outcome := runner.Run(context.Background(), "Test.java", nil, nil, true)

	require.Nil(t, outcome.Err)
	assert.Equal(t, pipeline.Done, outcome.Stage)
	assert.Equal(t, source, outcome.Formatted)
	assert.Equal(t, source, *written)
	assert.Contains(t, observer.started, "Test.java")
	assert.Contains(t, observer.completed, "Test.java:DONE")
}

// A PARSING failure with no configured recovery strategy falls back to
// SkipFile: the file ends in FAILED and the original error is preserved.
func TestRunnerParsingFailureDefaultsToSkipFile(t *testing.T) {
	boom := errors.New("malformed syntax")
	collab, _ := newCollaborators([]byte("garbage"), stubParser{err: boom})

	observer := &recordingObserver{}
	collab.Observer = observer

	runner := pipeline.NewRunner(collab, nil)
	outcome := runner.Run(context.Background(), "Bad.java", nil, nil, false)

	require.NotNil(t, outcome.Err)
	assert.Equal(t, pipeline.Failed, outcome.Stage)
	assert.Equal(t, "PARSING", outcome.Err.StageName)
	assert.Contains(t, observer.failed, "Bad.java")
}

// A FailFast recovery strategy on the READING stage invokes halt and
// reports failure.
func TestRunnerFailFastHaltsOnReadError(t *testing.T) {
	boom := errors.New("permission denied")
	collab := pipeline.Collaborators{
		Reader:   func(context.Context, string) ([]byte, error) { return nil, boom },
		Parser:   stubParser{},
		Registry: rules.NewRegistry(),
		Writer:   func(context.Context, string, []byte) error { return nil },
		RecoveryByStage: map[pipeline.Stage]pipeline.RecoveryStrategy{
			pipeline.Reading: pipeline.FailFast{},
		},
	}

	halted := false
	runner := pipeline.NewRunner(collab, func() { halted = true })

	outcome := runner.Run(context.Background(), "Unreadable.java", nil, nil, false)

	require.NotNil(t, outcome.Err)
	assert.Equal(t, pipeline.Failed, outcome.Stage)
	assert.True(t, halted)
}

// A Fallback recovery strategy on WRITING lets the pipeline reach DONE
// even though persisting the result failed.
func TestRunnerFallbackRecoversWriteFailure(t *testing.T) {
	source := []byte("int x = 1;\n")
	boom := errors.New("disk full")

	collab := pipeline.Collaborators{
		Reader:   func(context.Context, string) ([]byte, error) { return source, nil },
		Parser:   stubParser{},
		Registry: rules.NewRegistry(),
		Writer:   func(context.Context, string, []byte) error { return boom },
		RecoveryByStage: map[pipeline.Stage]pipeline.RecoveryStrategy{
			pipeline.Writing: pipeline.Fallback{Value: struct{}{}},
		},
	}

	runner := pipeline.NewRunner(collab, nil)
	outcome := runner.Run(context.Background(), "Test.java", nil, nil, true)

	require.Nil(t, outcome.Err)
	assert.Equal(t, pipeline.Done, outcome.Stage)
}
