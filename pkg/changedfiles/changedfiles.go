// Package changedfiles resolves the set of source files touched relative to
// a git revision, powering the `--changed` flag: format or check only the
// files a change actually touched instead of walking an entire tree.
package changedfiles

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/styler-dev/styler/pkg/gitlib"
)

// ErrNotAGitRepository is returned when repoPath is not inside a git
// working tree.
var ErrNotAGitRepository = errors.New("changedfiles: not a git repository")

// Options configures a Resolve call.
type Options struct {
	// Against is the revision to diff against (a branch, tag, HEAD~N, or
	// commit hash). Empty defaults to HEAD.
	Against string

	// IncludeUntracked adds files present in the working tree but not yet
	// tracked by git (new files a formatter run should still touch).
	IncludeUntracked bool
}

// Resolve returns the absolute paths, under repoPath, of files added or
// modified between opts.Against and the current working tree. Deleted
// files are omitted: there is nothing left to format. The result is
// sorted for deterministic batch ordering.
func Resolve(repoPath string, opts Options) ([]string, error) {
	repo, err := gitlib.OpenRepository(repoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAGitRepository, err)
	}
	defer repo.Free()

	against := opts.Against
	if against == "" {
		against = "HEAD"
	}

	rev, err := repo.ResolveRevision(against)
	if err != nil {
		return nil, err
	}

	commit, err := repo.LookupCommit(context.Background(), rev)
	if err != nil {
		return nil, err
	}
	defer commit.Free()

	tree, err := commit.Tree()
	if err != nil {
		return nil, err
	}
	defer tree.Free()

	diff, err := repo.DiffTreeToWorkdir(tree, opts.IncludeUntracked)
	if err != nil {
		return nil, err
	}
	defer diff.Free()

	numDeltas, err := diff.NumDeltas()
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, numDeltas)

	for i := range numDeltas {
		delta, deltaErr := diff.Delta(i)
		if deltaErr != nil {
			continue
		}

		path, ok := changedPath(delta, opts.IncludeUntracked)
		if !ok {
			continue
		}

		paths = append(paths, filepath.Join(repoPath, path))
	}

	sort.Strings(paths)

	return paths, nil
}

func changedPath(delta gitlib.DiffDelta, includeUntracked bool) (string, bool) {
	switch delta.Status {
	case git2go.DeltaAdded, git2go.DeltaModified, git2go.DeltaRenamed, git2go.DeltaCopied:
		return delta.NewFile.Path, true
	case git2go.DeltaUntracked:
		return delta.NewFile.Path, includeUntracked
	case git2go.DeltaDeleted, git2go.DeltaUnmodified, git2go.DeltaIgnored,
		git2go.DeltaTypeChange, git2go.DeltaUnreadable, git2go.DeltaConflicted:
		return "", false
	default:
		return "", false
	}
}
