package sentiment

import (
	"log/slog"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/errors"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
)

// Point is one chronological entry of a Series
type Point struct {
	models.AnalyzedCommit
	MovingAverage *float64 `json:"moving_average,omitempty"`
}

// Series is the chronologically ordered aggregate of analyzed commits
type Series struct {
	Points []Point
	Window int
}

// Options configures an Aggregator
type Options struct {
	Window int
	// CleanMessages strips conventional-commit prefixes, issue refs and tags
	// before classification.
	CleanMessages bool
}

// Aggregator scores classifier verdicts and builds series statistics
type Aggregator struct {
	table  ScoreTable
	opts   Options
	logger *slog.Logger
}

// NewAggregator creates an aggregator over the given score table
func NewAggregator(table ScoreTable, opts Options) *Aggregator {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	return &Aggregator{
		table:  table,
		opts:   opts,
		logger: slog.Default().With("component", "aggregator"),
	}
}

// Window returns the configured moving-average window
func (a *Aggregator) Window() int {
	return a.opts.Window
}

// Table returns the score table in use
func (a *Aggregator) Table() ScoreTable {
	return a.table
}

// Prepare turns a raw commit message into classifier input
func (a *Aggregator) Prepare(msg string) (string, bool) {
	text, ok := PrepareMessage(msg)
	if !ok {
		return "", false
	}
	if a.opts.CleanMessages {
		text = CleanMessage(text)
		if text == "" {
			return "", false
		}
	}
	return text, true
}

// Observe scores a classifier verdict
func (a *Aggregator) Observe(label models.Label, confidence float64) models.SentimentObservation {
	return a.table.Observe(label, confidence)
}

// Build assembles a Series from chronologically ordered analyzed commits.
// An empty input fails with ErrEmptyInput.
func (a *Aggregator) Build(commits []models.AnalyzedCommit) (*Series, error) {
	if len(commits) == 0 {
		return nil, errors.EmptyInputf("cannot aggregate an empty commit list")
	}

	scores := make([]float64, len(commits))
	for i, c := range commits {
		scores[i] = c.Observation.Score
	}
	ma := MovingAverage(scores, a.opts.Window)

	points := make([]Point, len(commits))
	for i, c := range commits {
		points[i] = Point{AnalyzedCommit: c, MovingAverage: ma[i]}
	}

	a.logger.Debug("series built", "commits", len(points), "window", a.opts.Window)
	return &Series{Points: points, Window: a.opts.Window}, nil
}

// Len returns the number of commits in the series
func (s *Series) Len() int {
	return len(s.Points)
}

// Scores returns the per-commit sentiment scores in order
func (s *Series) Scores() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Observation.Score
	}
	return out
}

// Labels returns the per-commit labels in order
func (s *Series) Labels() []models.Label {
	out := make([]models.Label, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Observation.Label
	}
	return out
}

// MovingAverages returns the per-commit moving averages in order
func (s *Series) MovingAverages() []*float64 {
	out := make([]*float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.MovingAverage
	}
	return out
}

// MeanSentiment is the mean score over the full series
func (s *Series) MeanSentiment() float64 {
	return Mean(s.Scores())
}

// Trend is the moving-average trend of the series
func (s *Series) Trend() float64 {
	return Trend(s.MovingAverages(), s.Window)
}

// BucketCounts counts commits per polarity bucket
func (s *Series) BucketCounts() map[models.Bucket]int {
	counts := map[models.Bucket]int{
		models.BucketPositive: 0,
		models.BucketNeutral:  0,
		models.BucketNegative: 0,
	}
	for _, p := range s.Points {
		counts[p.Observation.Label.Bucket()]++
	}
	return counts
}
