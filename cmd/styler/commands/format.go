package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/styler-dev/styler/internal/observability"
	"github.com/styler-dev/styler/pkg/changedfiles"
	"github.com/styler-dev/styler/pkg/executor"
	"github.com/styler-dev/styler/pkg/pipeline"
	"github.com/styler-dev/styler/pkg/progress"
)

// FormatCmd builds the `styler format` subcommand: rewrites every matched
// source file in place according to the configured rule set.
func FormatCmd(flags *GlobalFlags) *cobra.Command {
	var (
		changedAgainst string
		changedOnly    bool
		includeUntrk   bool
		workers        int
		checkpointDir  string
		resume         bool
	)

	cmd := &cobra.Command{
		Use:   "format [paths...]",
		Short: "Format source files in place",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormatOrCheck(cmd, args, flags, batchOptions{
				writeOutput:    true,
				changedAgainst: changedAgainst,
				changedOnly:    changedOnly,
				includeUntrk:   includeUntrk,
				workers:        workers,
				checkpointDir:  checkpointDir,
				resume:         resume,
			})
		},
	}

	cmd.Flags().StringVar(&changedAgainst, "against", "", "git revision to diff against for --changed (default HEAD)")
	cmd.Flags().BoolVar(&changedOnly, "changed", false, "only format files changed relative to --against")
	cmd.Flags().BoolVar(&includeUntrk, "include-untracked", false, "include untracked files with --changed")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel workers (0 = number of CPUs)")
	cmd.Flags().StringVar(&checkpointDir, "checkpoint-dir", "", "directory for batch checkpoint/resume state")
	cmd.Flags().BoolVar(&resume, "resume", false, "resume a batch from its checkpoint, skipping completed files")

	return cmd
}

// CheckCmd builds the `styler check` subcommand: reports formatting
// violations without modifying any file, exiting ExitViolationsFound if
// any were found.
func CheckCmd(flags *GlobalFlags) *cobra.Command {
	var (
		changedAgainst string
		changedOnly    bool
		includeUntrk   bool
		workers        int
		showDiff       bool
	)

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Check source files for formatting violations without modifying them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormatOrCheck(cmd, args, flags, batchOptions{
				writeOutput:    false,
				changedAgainst: changedAgainst,
				changedOnly:    changedOnly,
				includeUntrk:   includeUntrk,
				workers:        workers,
				showDiff:       showDiff,
			})
		},
	}

	cmd.Flags().StringVar(&changedAgainst, "against", "", "git revision to diff against for --changed (default HEAD)")
	cmd.Flags().BoolVar(&changedOnly, "changed", false, "only check files changed relative to --against")
	cmd.Flags().BoolVar(&includeUntrk, "include-untracked", false, "include untracked files with --changed")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel workers (0 = number of CPUs)")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "print a unified diff of the changes formatting would make")

	return cmd
}

type batchOptions struct {
	writeOutput    bool
	changedAgainst string
	changedOnly    bool
	includeUntrk   bool
	workers        int
	checkpointDir  string
	resume         bool
	showDiff       bool
}

func runFormatOrCheck(cmd *cobra.Command, args []string, flags *GlobalFlags, opts batchOptions) error {
	files, err := resolveFiles(args, opts)
	if err != nil {
		cmd.SilenceUsage = true

		return fmt.Errorf("resolve files: %w", err)
	}

	if len(files) == 0 {
		if !*flags.Quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "no source files matched")
		}

		return nil
	}

	mode := observability.ModeCLI

	rt, err := newBatchRuntime(*flags.ConfigPath, rootsFromFiles(files), mode)
	if err != nil {
		cmd.SilenceUsage = true
		os.Exit(ExitConfigError)

		return nil
	}
	defer rt.providers.Shutdown(cmd.Context()) //nolint:errcheck // best-effort flush on exit

	var checkpoint *pipeline.CheckpointManager

	if opts.checkpointDir != "" {
		checkpoint, files = applyCheckpoint(opts, files)
	}

	observer := progress.NewObserver(pipeline.NoopObserver{}, cmd.ErrOrStderr(), len(files))

	exec, err := executor.New(rt.collaborators(observer), executor.Config{
		Workers:     opts.workers,
		WriteOutput: opts.writeOutput,
		Tracer:      rt.providers.Tracer,
		Meter:       rt.providers.Meter,
	})
	if err != nil {
		return fmt.Errorf("build executor: %w", err)
	}

	outcomes := exec.Run(cmd.Context(), files, rt.enabledRules, rt.configs)
	observer.OnPipelineClosed()

	if checkpoint != nil {
		recordCheckpoint(checkpoint, files, outcomes)
	}

	diagnostics := diagnosticsFromOutcomes(outcomes)
	if err := renderDiagnostics(cmd.ErrOrStderr(), diagnostics, *flags.Machine); err != nil {
		return fmt.Errorf("render diagnostics: %w", err)
	}

	if opts.showDiff && !*flags.Machine {
		if err := renderUnifiedDiffs(cmd.OutOrStdout(), outcomes); err != nil {
			return fmt.Errorf("render diff: %w", err)
		}
	}

	if !*flags.Quiet && !*flags.Machine {
		printSummaryTable(cmd.OutOrStdout(), outcomes)
	}

	code := batchExitCode(outcomes)
	if code != ExitSuccess {
		os.Exit(code)
	}

	return nil
}

func resolveFiles(args []string, opts batchOptions) ([]string, error) {
	if !opts.changedOnly {
		return discoverFiles(args)
	}

	repoPath := "."
	if len(args) > 0 {
		repoPath = args[0]
	}

	return resolveChangedFiles(repoPath, args, changedfiles.Options{
		Against:          opts.changedAgainst,
		IncludeUntracked: opts.includeUntrk,
	})
}

func applyCheckpoint(opts batchOptions, files []string) (*pipeline.CheckpointManager, []string) {
	path := opts.checkpointDir

	checkpoint, err := pipeline.LoadCheckpointManager(path, len(files))
	if err != nil {
		checkpoint = pipeline.NewCheckpointManager(path, len(files))
	}

	if !opts.resume {
		return checkpoint, files
	}

	remaining := make([]string, 0, len(files))

	for _, f := range files {
		if !checkpoint.IsCompleted(f) {
			remaining = append(remaining, f)
		}
	}

	return checkpoint, remaining
}

func recordCheckpoint(checkpoint *pipeline.CheckpointManager, files []string, outcomes []pipeline.FileOutcome) {
	for i, outcome := range outcomes {
		delta := pipeline.BatchStats{FilesProcessed: 1}

		if outcome.Err != nil {
			delta = pipeline.BatchStats{FilesFailed: 1}
		} else {
			delta.ViolationsFound = len(outcome.Violations)
		}

		checkpoint.MarkCompleted(files[i], delta)
	}

	_ = checkpoint.Save()
}
