package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/burnout"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/classifier"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/config"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/output"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/pipeline"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/sentiment"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/storage"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [repo]",
	Short: "Classify commit messages and scan for burnout signals",
	Long: `Extract commits from a repository, classify each message, and report the
sentiment timeline, author comparison and burnout zones.

The repository is a local path for --source git (default ".") or an
owner/repo slug for --source github. With --source github, a local checkout
resolves to the repository of its origin remote.

Examples:
  heatmap analyze .
  heatmap analyze ~/src/project --max-commits 1000 --classifier hugot
  heatmap analyze golang/go --source github --days 90 --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

var (
	openReport bool
	noProgress bool
)

func init() {
	registerAnalyzeFlags(analyzeCmd)
}

func registerAnalyzeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("max-commits", 500, "maximum number of commits to analyze (0 = all)")
	f.Int("days", 0, "only analyze commits from the last N days (0 = no limit)")
	f.String("source", "git", "commit source: git, github")
	f.String("classifier", "vader", "classifier backend: vader, hugot, openai, gemini, http")
	f.Int("workers", 0, "concurrent classifications (default: number of CPUs)")
	f.Int("window", 20, "moving-average window")
	f.Int("zone-window", 20, "burnout zone window size")
	f.Float64("threshold", 0.7, "negative ratio that marks a burnout zone")
	f.Int("min-commits", 5, "minimum commits for an author to be ranked (0 = everyone)")
	f.Int("top", 5, "number of authors to rank (0 = all)")
	f.String("format", "", "terminal output: standard, quiet, json")
	f.String("export", "csv", "export format: csv, jsonl, sql")
	f.String("output-dir", "output", "directory for exports and reports")
	f.Bool("clean", false, "strip conventional-commit prefixes, issue refs and tags before classifying")
	f.String("cache", "", "verdict cache: none, bolt, redis")
	f.BoolVar(&openReport, "open", false, "open the HTML report in a browser")
	f.BoolVar(&noProgress, "no-progress", false, "hide the progress bar")
}

// applyAnalyzeFlags copies explicitly set flags over the loaded config
func applyAnalyzeFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("max-commits") {
		cfg.Source.MaxCommits, _ = f.GetInt("max-commits")
	}
	if f.Changed("days") {
		cfg.Source.Days, _ = f.GetInt("days")
	}
	if f.Changed("source") {
		cfg.Source.Type, _ = f.GetString("source")
	}
	if f.Changed("classifier") {
		cfg.Classifier.Backend, _ = f.GetString("classifier")
	}
	if f.Changed("workers") {
		cfg.Classifier.Workers, _ = f.GetInt("workers")
	}
	if f.Changed("window") {
		cfg.Analysis.Window, _ = f.GetInt("window")
	}
	if f.Changed("zone-window") {
		cfg.Analysis.ZoneWindow, _ = f.GetInt("zone-window")
	}
	if f.Changed("threshold") {
		cfg.Analysis.Threshold, _ = f.GetFloat64("threshold")
	}
	if f.Changed("min-commits") {
		cfg.Analysis.MinCommits, _ = f.GetInt("min-commits")
	}
	if f.Changed("top") {
		cfg.Analysis.TopN, _ = f.GetInt("top")
	}
	if f.Changed("format") {
		cfg.Output.Format, _ = f.GetString("format")
	}
	if f.Changed("export") {
		cfg.Output.Export, _ = f.GetString("export")
	}
	if f.Changed("output-dir") {
		cfg.Output.Dir, _ = f.GetString("output-dir")
	}
	if f.Changed("clean") {
		cfg.Classifier.CleanMessages, _ = f.GetBool("clean")
	}
	if f.Changed("cache") {
		cfg.Cache.Type, _ = f.GetString("cache")
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	applyAnalyzeFlags(cmd, cfg)
	if err := cfg.Validate().Err(); err != nil {
		return err
	}

	target := "."
	if len(args) == 1 {
		target = args[0]
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := pipeline.NewSource(ctx, cfg, target)
	if err != nil {
		return err
	}

	c, err := classifier.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	opts := pipeline.Options{
		Workers: cfg.Classifier.Workers,
		Timeout: cfg.Classifier.Timeout,
	}
	if !noProgress && term.IsTerminal(int(os.Stderr.Fd())) {
		opts.Progress = os.Stderr
	}

	p := pipeline.New(source, c, newAggregator(cfg), newDetector(cfg), opts)
	result, err := p.Run(ctx)
	if err != nil {
		return err
	}

	return emit(ctx, cmd, result, true)
}

func newAggregator(cfg *config.Config) *sentiment.Aggregator {
	return sentiment.NewAggregator(sentiment.DefaultScoreTable(), sentiment.Options{
		Window:        cfg.Analysis.Window,
		CleanMessages: cfg.Classifier.CleanMessages,
	})
}

func newDetector(cfg *config.Config) *burnout.Detector {
	return burnout.NewDetector(burnout.Options{
		WindowSize: cfg.Analysis.ZoneWindow,
		Threshold:  cfg.Analysis.Threshold,
	})
}

// emit prints the terminal summary and writes the output directory
func emit(ctx context.Context, cmd *cobra.Command, result *pipeline.Result, export bool) error {
	level := output.GetDefaultVerbosity()
	if cfg.Output.Format != "" {
		var err error
		if level, err = output.ParseVerbosity(cfg.Output.Format); err != nil {
			return err
		}
	}
	opts := output.DefaultOptions()
	opts.TopN = cfg.Analysis.TopN
	opts.MinCommits = cfg.Analysis.MinCommits
	if err := output.NewFormatter(level, opts).Format(result, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("format output: %w", err)
	}

	if export {
		location, err := storage.NewExporter(cfg, logger).Export(ctx, result.Commits)
		if err != nil {
			return err
		}
		logger.WithField("location", location).Debug("Commits exported")
	}

	renderPath, err := output.WriteRenderData(cfg.Output.Dir, output.BuildRenderData(result, cfg.Analysis.MinCommits))
	if err != nil {
		return err
	}
	mdPath, htmlPath, err := output.WriteReport(cfg.Output.Dir, result, opts)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"render":   renderPath,
		"markdown": mdPath,
		"html":     htmlPath,
	}).Info("Reports written")

	if openReport {
		if err := browser.OpenFile(htmlPath); err != nil {
			logger.WithError(err).Warn("Could not open browser")
		}
	}
	return nil
}
