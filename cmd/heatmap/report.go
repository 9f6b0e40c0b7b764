package main

import (
	"github.com/spf13/cobra"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/pipeline"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/storage"
)

var reportCmd = &cobra.Command{
	Use:   "report <export>",
	Short: "Rebuild the analysis from a previous export",
	Long: `Re-run aggregation and burnout detection on exported commits without
classifying again. The export is a commits.csv or commits.jsonl file, or a run
id (or "latest") stored in the configured SQL database.

Examples:
  heatmap report output/commits.csv --window 10
  heatmap report latest --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	f := reportCmd.Flags()
	f.Int("window", 20, "moving-average window")
	f.Int("zone-window", 20, "burnout zone window size")
	f.Float64("threshold", 0.7, "negative ratio that marks a burnout zone")
	f.Int("min-commits", 5, "minimum commits for an author to be ranked")
	f.Int("top", 5, "number of authors to rank")
	f.String("format", "", "terminal output: standard, quiet, json")
	f.String("output-dir", "output", "directory for reports")
	f.BoolVar(&openReport, "open", false, "open the HTML report in a browser")
}

func runReport(cmd *cobra.Command, args []string) error {
	applyAnalyzeFlags(cmd, cfg)
	if err := cfg.Validate().Err(); err != nil {
		return err
	}

	ctx := cmd.Context()
	commits, err := storage.Import(ctx, cfg, args[0], logger)
	if err != nil {
		return err
	}

	result, err := pipeline.Analyze(newAggregator(cfg), newDetector(cfg), commits)
	if err != nil {
		return err
	}
	result.Summary.Source = args[0]

	return emit(ctx, cmd, result, false)
}
