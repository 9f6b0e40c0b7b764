// Package pipeline runs one analysis pass: extract commits, classify their
// messages on a bounded worker pool, aggregate the sentiment series and scan
// it for burnout signals.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/burnout"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/classifier"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/errors"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/sentiment"
)

// DefaultTimeout bounds the classification phase
const DefaultTimeout = 10 * time.Minute

// Options configures a Pipeline
type Options struct {
	Workers  int
	Timeout  time.Duration
	Progress io.Writer // nil = no progress bar
}

// Summary counts what happened during a run
type Summary struct {
	Source                 string        `json:"source"`
	Backend                string        `json:"backend"`
	Commits                int           `json:"commits"`
	Classified             int           `json:"classified"`
	EmptyMessages          int           `json:"empty_messages"`
	ClassificationFailures int           `json:"classification_failures"`
	CacheHits              int64         `json:"cache_hits"`
	CacheMisses            int64         `json:"cache_misses"`
	Duration               time.Duration `json:"duration"`
}

// Result is the outcome of a full run
type Result struct {
	Commits []models.AnalyzedCommit       `json:"commits"`
	Series  *sentiment.Series             `json:"-"`
	Report  *burnout.Report               `json:"burnout"`
	Authors map[string]models.AuthorStats `json:"authors"`
	Summary Summary                       `json:"summary"`
}

// Pipeline coordinates a single analysis pass
type Pipeline struct {
	source     Source
	classifier classifier.Classifier
	aggregator *sentiment.Aggregator
	detector   *burnout.Detector
	opts       Options
	logger     *slog.Logger
}

// New creates a pipeline
func New(
	source Source,
	c classifier.Classifier,
	aggregator *sentiment.Aggregator,
	detector *burnout.Detector,
	opts Options,
) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Pipeline{
		source:     source,
		classifier: c,
		aggregator: aggregator,
		detector:   detector,
		opts:       opts,
		logger:     slog.Default().With("component", "pipeline"),
	}
}

// Run extracts, classifies, aggregates and scans. Zero extracted commits fail
// with ErrEmptyInput.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	p.logger.Info("starting analysis", "source", p.source.Describe(), "classifier", p.classifier.Name())

	commits, err := p.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, errors.EmptyInputf("no commits found in %s", p.source.Describe())
	}

	Chronological(commits)

	analyzed, summary, err := p.Classify(ctx, commits)
	if err != nil {
		return nil, err
	}

	result, err := Analyze(p.aggregator, p.detector, analyzed)
	if err != nil {
		return nil, err
	}

	summary.Source = p.source.Describe()
	summary.Duration = time.Since(start)
	result.Summary = summary

	p.logger.Info("analysis completed",
		"commits", summary.Commits,
		"empty_messages", summary.EmptyMessages,
		"failures", summary.ClassificationFailures,
		"risk", result.Report.Signal.BurnoutRisk,
		"duration", summary.Duration.String())

	return result, nil
}

// Chronological reverses a newest-first commit list in place
func Chronological(commits []models.CommitRecord) {
	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}
}

// Classify labels every commit message. Each result lands in the slot of
// its commit so input order is preserved. Empty messages and per-commit
// failures get the neutral placeholder. Exceeding the timeout aborts the
// whole phase with ErrClassificationTimeout.
func (p *Pipeline) Classify(ctx context.Context, commits []models.CommitRecord) ([]models.AnalyzedCommit, Summary, error) {
	summary := Summary{Backend: p.classifier.Name(), Commits: len(commits)}
	analyzed := make([]models.AnalyzedCommit, len(commits))

	cctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	bar := p.newProgressBar(len(commits))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(cctx)
	g.SetLimit(p.opts.Workers)
	for i, commit := range commits {
		g.Go(func() error {
			defer bar.Add(1)

			text, ok := p.aggregator.Prepare(commit.Message)
			if !ok {
				analyzed[i] = models.AnalyzedCommit{Commit: commit, Observation: models.NeutralPlaceholder()}
				mu.Lock()
				summary.EmptyMessages++
				mu.Unlock()
				return nil
			}

			obs, err := p.classifyOne(gctx, commit.ID, text)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				p.logger.Warn("classification failed, using neutral placeholder",
					"commit", commit.ID, "error", err)
				obs = models.NeutralPlaceholder()
				mu.Lock()
				summary.ClassificationFailures++
				mu.Unlock()
			} else {
				mu.Lock()
				summary.Classified++
				mu.Unlock()
			}
			analyzed[i] = models.AnalyzedCommit{Commit: commit, Observation: obs}
			return nil
		})
	}
	err := g.Wait()
	bar.Finish()

	if err != nil {
		if ctx.Err() == nil && cctx.Err() == context.DeadlineExceeded {
			return nil, summary, fmt.Errorf("%w after %s", errors.ErrClassificationTimeout, p.opts.Timeout)
		}
		return nil, summary, err
	}

	if cached, ok := p.classifier.(*classifier.Cached); ok {
		summary.CacheHits, summary.CacheMisses = cached.Stats()
	}
	return analyzed, summary, nil
}

func (p *Pipeline) classifyOne(ctx context.Context, commitID, text string) (models.SentimentObservation, error) {
	raw, err := p.classifier.Classify(ctx, text)
	if err != nil {
		return models.SentimentObservation{}, errors.ClassificationError(err, commitID)
	}
	verdict, err := raw.Resolve()
	if err != nil {
		return models.SentimentObservation{}, errors.ClassificationError(err, commitID)
	}
	return p.aggregator.Observe(verdict.Label, verdict.Confidence), nil
}

func (p *Pipeline) newProgressBar(total int) *progressbar.ProgressBar {
	w := p.opts.Progress
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions(total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription("[cyan]Classifying commits[reset]"),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]#[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: "-",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

// Analyze aggregates chronologically ordered analyzed commits and scans the
// series for burnout signals. It is shared by fresh runs and re-analysis of
// an export.
func Analyze(aggregator *sentiment.Aggregator, detector *burnout.Detector, analyzed []models.AnalyzedCommit) (*Result, error) {
	series, err := aggregator.Build(analyzed)
	if err != nil {
		return nil, err
	}
	report, err := detector.Detect(series)
	if err != nil {
		return nil, err
	}
	return &Result{
		Commits: analyzed,
		Series:  series,
		Report:  report,
		Authors: sentiment.AuthorStats(series),
		Summary: Summary{Commits: len(analyzed)},
	}, nil
}
