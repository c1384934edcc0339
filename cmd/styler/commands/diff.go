package commands

import (
	"fmt"
	"io"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/styler-dev/styler/pkg/pipeline"
)

// renderUnifiedDiffs writes a per-file unified-style diff for every outcome
// whose Formatted output differs from Source, using line-level diffing so
// the output reads as whole changed lines rather than a character soup.
func renderUnifiedDiffs(w io.Writer, outcomes []pipeline.FileOutcome) error {
	dmp := diffmatchpatch.New()

	for _, outcome := range outcomes {
		if outcome.Err != nil || len(outcome.Formatted) == 0 {
			continue
		}

		src, dst := string(outcome.Source), string(outcome.Formatted)
		if src == dst {
			continue
		}

		srcRunes, dstRunes, lineArray := dmp.DiffLinesToRunes(src, dst)
		diffs := dmp.DiffMainRunes(srcRunes, dstRunes, false)
		diffs = dmp.DiffCharsToLines(diffs, lineArray)

		if _, err := fmt.Fprintf(w, "--- %s\n+++ %s (formatted)\n", outcome.FilePath, outcome.FilePath); err != nil {
			return fmt.Errorf("write diff header: %w", err)
		}

		if err := writeDiffBody(w, diffs); err != nil {
			return err
		}
	}

	return nil
}

func writeDiffBody(w io.Writer, diffs []diffmatchpatch.Diff) error {
	for _, d := range diffs {
		prefix := "  "

		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffEqual:
			prefix = "  "
		}

		for _, line := range splitKeepEmpty(d.Text) {
			if line == "" {
				continue
			}

			if _, err := fmt.Fprintf(w, "%s%s\n", prefix, line); err != nil {
				return fmt.Errorf("write diff line: %w", err)
			}
		}
	}

	return nil
}

func splitKeepEmpty(s string) []string {
	var lines []string

	start := 0

	for i, r := range s {
		if r == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}

	if start < len(s) {
		lines = append(lines, s[start:])
	}

	return lines
}
