package pipeline_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/styler-dev/styler/pkg/pipeline"
)

func TestCheckpointSaveAndLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")

	manager := pipeline.NewCheckpointManager(path, 3)
	manager.MarkCompleted("A.java", pipeline.BatchStats{FilesProcessed: 1, ViolationsFound: 2})
	manager.MarkCompleted("B.java", pipeline.BatchStats{FilesProcessed: 1})

	require.NoError(t, manager.Save())

	loaded, err := pipeline.LoadCheckpointManager(path, 3)
	require.NoError(t, err)
	assert.True(t, loaded.IsCompleted("A.java"))
	assert.True(t, loaded.IsCompleted("B.java"))
	assert.False(t, loaded.IsCompleted("C.java"))
	assert.Equal(t, 2, loaded.Stats().FilesProcessed)
	assert.Equal(t, 2, loaded.Stats().ViolationsFound)
}

func TestLoadCheckpointManagerMissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")

	manager, err := pipeline.LoadCheckpointManager(path, 5)
	require.NoError(t, err)
	assert.False(t, manager.IsCompleted("anything"))
	require.NoError(t, manager.Validate(5))
}

func TestCheckpointValidateDetectsFileSetMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")

	manager := pipeline.NewCheckpointManager(path, 3)
	require.NoError(t, manager.Save())

	loaded, err := pipeline.LoadCheckpointManager(path, 3)
	require.NoError(t, err)

	err = loaded.Validate(7)
	require.ErrorIs(t, err, pipeline.ErrBatchMismatch)
}

func TestCheckpointClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")

	manager := pipeline.NewCheckpointManager(path, 1)
	require.NoError(t, manager.Save())
	require.NoError(t, manager.Clear())

	_, err := pipeline.LoadCheckpointManager(path, 1)
	require.NoError(t, err)
}
