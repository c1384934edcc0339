package commands

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/src-d/enry/v2"

	"github.com/styler-dev/styler/pkg/changedfiles"
)

// sourceExtension is the file extension the engine's java grammar
// understands. Other C-family languages would add entries here; only java
// is wired today (see pkg/parser).
const sourceExtension = ".java"

// discoverFiles expands paths (files or directories) into the sorted,
// deduplicated list of source files to run through the batch pipeline.
// Directories are walked recursively; enry filters out vendored and
// generated files so a batch run never rewrites third-party code.
func discoverFiles(paths []string) ([]string, error) {
	seen := make(map[string]bool)

	var files []string

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			addFile(p, seen, &files)

			continue
		}

		walkErr := filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				return nil
			}

			if filepath.Ext(path) != sourceExtension {
				return nil
			}

			if enry.IsVendor(path) || enry.IsGenerated(path, nil) {
				return nil
			}

			addFile(path, seen, &files)

			return nil
		})
		if walkErr != nil {
			return nil, walkErr
		}
	}

	sort.Strings(files)

	return files, nil
}

func addFile(path string, seen map[string]bool, files *[]string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	if seen[abs] {
		return
	}

	seen[abs] = true
	*files = append(*files, abs)
}

// resolveChangedFiles intersects discoverFiles(paths) with the file set
// changedfiles.Resolve reports as touched relative to against, so `--changed`
// combines with explicit path arguments rather than overriding them.
func resolveChangedFiles(repoPath string, paths []string, opts changedfiles.Options) ([]string, error) {
	changed, err := changedfiles.Resolve(repoPath, opts)
	if err != nil {
		return nil, err
	}

	if len(paths) == 0 {
		return filterSourceFiles(changed), nil
	}

	discovered, err := discoverFiles(paths)
	if err != nil {
		return nil, err
	}

	changedSet := make(map[string]bool, len(changed))
	for _, f := range changed {
		changedSet[f] = true
	}

	intersected := make([]string, 0, len(discovered))

	for _, f := range discovered {
		if changedSet[f] {
			intersected = append(intersected, f)
		}
	}

	return intersected, nil
}

func filterSourceFiles(paths []string) []string {
	filtered := make([]string, 0, len(paths))

	for _, p := range paths {
		if filepath.Ext(p) == sourceExtension {
			filtered = append(filtered, p)
		}
	}

	sort.Strings(filtered)

	return filtered
}
