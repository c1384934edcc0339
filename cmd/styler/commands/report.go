package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spf13/cobra"

	"github.com/styler-dev/styler/internal/analyzers/common/plotpage"
	"github.com/styler-dev/styler/internal/observability"
	"github.com/styler-dev/styler/pkg/executor"
	"github.com/styler-dev/styler/pkg/pipeline"
)

const (
	reportMaxStatsCols  = 4
	reportChartHeight   = "500px"
	reportOutputDefault = "styler-report.html"
)

// ReportCmd builds the `styler report` subcommand: runs format/check over
// the given paths exactly like `check` does, then renders an HTML summary
// (violations by rule, pass/fail counts) instead of printing diagnostics.
func ReportCmd(flags *GlobalFlags) *cobra.Command {
	var (
		outputPath string
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "report [paths...]",
		Short: "Render an HTML report of formatting violations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, args, flags, outputPath, workers)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", reportOutputDefault, "output HTML file path")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel workers (0 = number of CPUs)")

	return cmd
}

func runReport(cmd *cobra.Command, args []string, flags *GlobalFlags, outputPath string, workers int) error {
	files, err := discoverFiles(args)
	if err != nil {
		return fmt.Errorf("discover files: %w", err)
	}

	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no source files matched")

		return nil
	}

	rt, err := newBatchRuntimeForReport(*flags.ConfigPath, files)
	if err != nil {
		return err
	}
	defer rt.providers.Shutdown(cmd.Context()) //nolint:errcheck // best-effort flush on exit

	outcomes, err := runBatchForReport(cmd, rt, files, workers)
	if err != nil {
		return err
	}

	if err := writeReport(outputPath, outcomes); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", outputPath)

	return nil
}

func writeReport(outputPath string, outcomes []pipeline.FileOutcome) error {
	page := plotpage.NewPage("Formatting Report", "Rule violations found across the batch.")
	page.ProjectName = "styler"
	page.ProjectSubtitle = "Formatting Report"
	page.Sections = []plotpage.Section{
		buildBatchStatsSection(outcomes),
		{
			Title: "Violations by Rule",
			Chart: buildViolationsByRuleChart(outcomes),
		},
	}

	f, err := os.Create(outputPath) //nolint:gosec // outputPath is an operator-supplied CLI flag
	if err != nil {
		return fmt.Errorf("create %s: %w", outputPath, err)
	}
	defer f.Close()

	renderer := plotpage.HTMLRenderer{}

	if err := renderer.Render(f, page); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	return nil
}

func buildBatchStatsSection(outcomes []pipeline.FileOutcome) plotpage.Section {
	var processed, failed, violations int

	for _, outcome := range outcomes {
		processed++

		if outcome.Err != nil {
			failed++
		}

		violations += len(outcome.Violations)
	}

	grid := plotpage.NewGrid(reportMaxStatsCols,
		plotpage.NewStat("Files Processed", fmt.Sprintf("%d", processed)),
		plotpage.NewStat("Files Failed", fmt.Sprintf("%d", failed)),
		plotpage.NewStat("Violations Found", fmt.Sprintf("%d", violations)),
	)

	return plotpage.Section{
		Title:    "Batch Summary",
		Subtitle: "Aggregate results across the files in this run.",
		Chart:    grid,
	}
}

func buildViolationsByRuleChart(outcomes []pipeline.FileOutcome) *charts.Bar {
	counts := make(map[string]int)

	for _, outcome := range outcomes {
		for _, v := range outcome.Violations {
			counts[v.RuleID]++
		}
	}

	ruleIDs := make([]string, 0, len(counts))
	for id := range counts {
		ruleIDs = append(ruleIDs, id)
	}

	sort.Strings(ruleIDs)

	co := plotpage.DefaultChartOpts()

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(co.Init("100%", reportChartHeight)),
		charts.WithTooltipOpts(co.Tooltip("axis")),
		charts.WithXAxisOpts(co.XAxis("Rule")),
		charts.WithYAxisOpts(co.YAxis("Violations")),
		charts.WithGridOpts(co.Grid()),
	)
	bar.SetXAxis(ruleIDs)

	data := make([]opts.BarData, len(ruleIDs))
	for i, id := range ruleIDs {
		data[i] = opts.BarData{Value: counts[id]}
	}

	bar.AddSeries("Violations", data)

	return bar
}

func newBatchRuntimeForReport(configPath string, files []string) (*batchRuntime, error) {
	rt, err := newBatchRuntime(configPath, rootsFromFiles(files), observability.ModeCLI)
	if err != nil {
		return nil, fmt.Errorf("init runtime: %w", err)
	}

	return rt, nil
}

func runBatchForReport(
	cmd *cobra.Command, rt *batchRuntime, files []string, workers int,
) ([]pipeline.FileOutcome, error) {
	exec, err := executor.New(rt.collaborators(nil), executor.Config{
		Workers:     workers,
		WriteOutput: false,
		Tracer:      rt.providers.Tracer,
		Meter:       rt.providers.Meter,
	})
	if err != nil {
		return nil, fmt.Errorf("build executor: %w", err)
	}

	return exec.Run(cmd.Context(), files, rt.enabledRules, rt.configs), nil
}
