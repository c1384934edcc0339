package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// checkpointVersion is the current on-disk checkpoint format version.
const checkpointVersion = 1

// checkpointDirPerm matches the repo-wide convention for created directories.
const checkpointDirPerm = 0o750

// ErrBatchMismatch is returned by Checkpoint.Validate when a resumed run's
// file set doesn't match the checkpoint it's trying to resume from.
var ErrBatchMismatch = errors.New("pipeline: checkpoint file set mismatch")

// BatchStats accumulates per-batch counters across the files processed so
// far; a Checkpoint snapshot carries a copy of these alongside the
// completed file set.
type BatchStats struct {
	FilesProcessed  int
	FilesFailed     int
	FilesSkipped    int
	ViolationsFound int
	EditsApplied    int
}

// Add folds another BatchStats into this one.
func (s *BatchStats) Add(other BatchStats) {
	s.FilesProcessed += other.FilesProcessed
	s.FilesFailed += other.FilesFailed
	s.FilesSkipped += other.FilesSkipped
	s.ViolationsFound += other.ViolationsFound
	s.EditsApplied += other.EditsApplied
}

// checkpointSnapshot is the JSON-serialized on-disk representation.
type checkpointSnapshot struct {
	Version        int             `json:"version"`
	CreatedAt      string          `json:"created_at"`
	TotalFileCount int             `json:"total_file_count"`
	Completed      map[string]bool `json:"completed"`
	Stats          BatchStats      `json:"stats"`
}

// CheckpointManager persists batch progress to disk periodically so a
// long-running format/check invocation can resume after an interruption
// instead of reprocessing every file from scratch.
type CheckpointManager struct {
	path string

	mu        sync.Mutex
	completed map[string]bool
	stats     BatchStats
	total     int
}

// NewCheckpointManager creates a manager writing to path. totalFileCount
// is recorded in the snapshot for Validate's sanity check.
func NewCheckpointManager(path string, totalFileCount int) *CheckpointManager {
	return &CheckpointManager{
		path:      path,
		completed: make(map[string]bool),
		total:     totalFileCount,
	}
}

// MarkCompleted records filePath as done and folds delta into the running
// stats. It does not itself write to disk; call Save periodically or
// after each file, depending on the desired durability/overhead tradeoff.
func (m *CheckpointManager) MarkCompleted(filePath string, delta BatchStats) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.completed[filePath] = true
	m.stats.Add(delta)
}

// IsCompleted reports whether filePath was already processed in a prior
// run, per the last loaded checkpoint.
func (m *CheckpointManager) IsCompleted(filePath string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.completed[filePath]
}

// Stats returns a copy of the accumulated batch stats.
func (m *CheckpointManager) Stats() BatchStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stats
}

// Save writes the current progress to disk, replacing any existing
// checkpoint at the same path.
func (m *CheckpointManager) Save() error {
	m.mu.Lock()
	snapshot := checkpointSnapshot{
		Version:        checkpointVersion,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		TotalFileCount: m.total,
		Completed:      copyCompletedSet(m.completed),
		Stats:          m.stats,
	}
	m.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(m.path), checkpointDirPerm); err != nil {
		return fmt.Errorf("pipeline: create checkpoint dir: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("pipeline: marshal checkpoint: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("pipeline: write checkpoint: %w", err)
	}

	return nil
}

// LoadCheckpointManager reads a previously saved checkpoint from path. It
// returns a fresh, empty manager (not an error) if no checkpoint file
// exists, so callers can treat "no checkpoint" and "start of batch"
// uniformly.
func LoadCheckpointManager(path string, totalFileCount int) (*CheckpointManager, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewCheckpointManager(path, totalFileCount), nil
	}

	if err != nil {
		return nil, fmt.Errorf("pipeline: read checkpoint: %w", err)
	}

	var snapshot checkpointSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("pipeline: unmarshal checkpoint: %w", err)
	}

	return &CheckpointManager{
		path:      path,
		completed: snapshot.Completed,
		stats:     snapshot.Stats,
		total:     totalFileCount,
	}, nil
}

// Validate reports ErrBatchMismatch if the loaded checkpoint's recorded
// total file count doesn't match the current batch's, a strong signal
// the file set changed since the checkpoint was written.
func (m *CheckpointManager) Validate(currentFileCount int) error {
	if m.total != currentFileCount {
		return fmt.Errorf("%w: checkpoint has %d files, current batch has %d", ErrBatchMismatch, m.total, currentFileCount)
	}

	return nil
}

// Clear removes the checkpoint file, if any.
func (m *CheckpointManager) Clear() error {
	err := os.Remove(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return err
}

func copyCompletedSet(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}
