package burnout

import (
	"log/slog"
	"time"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/errors"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/sentiment"
)

// Late-night hours, local to each commit: 22:00 through 05:59
const (
	lateNightStart = 22
	lateNightEnd   = 6
)

// Report is the detector output for one series
type Report struct {
	Signal   models.BurnoutSignal `json:"signal"`
	Triggers Triggers             `json:"triggers"`
	Severity SeverityLevel        `json:"severity"`
	Zones    []models.BurnoutZone `json:"zones"`
}

// Detector computes burnout signals over an aggregated series
type Detector struct {
	opts   Options
	logger *slog.Logger
}

// NewDetector creates a detector
func NewDetector(opts Options) *Detector {
	return &Detector{
		opts:   opts.normalized(),
		logger: slog.Default().With("component", "burnout"),
	}
}

// Options returns the normalized detector options
func (d *Detector) Options() Options {
	return d.opts
}

// Detect computes the signal, rubric and zones for a series
func (d *Detector) Detect(s *sentiment.Series) (*Report, error) {
	signal, triggers, err := Signals(s)
	if err != nil {
		return nil, err
	}

	times := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		times[i] = p.Commit.Timestamp
	}
	zones, err := DetectZones(s.Labels(), times, d.opts)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("burnout scan complete",
		"commits", signal.TotalCommits,
		"risk", signal.BurnoutRisk,
		"zones", len(zones))

	return &Report{
		Signal:   signal,
		Triggers: triggers,
		Severity: Severity(signal.BurnoutRisk),
		Zones:    zones,
	}, nil
}

// Signals computes the repository-level signal and its rubric triggers. The
// trend uses the series' moving-average window and is 0 when the series holds
// that many commits or fewer. The stress ratio always uses the full series as
// denominator.
func Signals(s *sentiment.Series) (models.BurnoutSignal, Triggers, error) {
	if s == nil || s.Len() == 0 {
		return models.BurnoutSignal{}, Triggers{}, errors.EmptyInputf("cannot detect burnout signals on an empty series")
	}

	var (
		stress, weekend, lateNight int
		size                       int
	)
	for _, p := range s.Points {
		if p.Observation.Label.IsHighStress() {
			stress++
		}
		size += p.Commit.Size()

		ts := p.Commit.Timestamp
		if wd := ts.Weekday(); wd == time.Saturday || wd == time.Sunday {
			weekend++
		}
		if h := ts.Hour(); h >= lateNightStart || h < lateNightEnd {
			lateNight++
		}
	}

	total := s.Len()
	signal := models.BurnoutSignal{
		AvgSentiment:      s.MeanSentiment(),
		SentimentTrend:    s.Trend(),
		HighStressCommits: stress,
		TotalCommits:      total,
		AvgCommitSize:     float64(size) / float64(total),
		WeekendRatio:      float64(weekend) / float64(total),
		LateNightRatio:    float64(lateNight) / float64(total),
	}

	triggers := Evaluate(signal.AvgSentiment, signal.SentimentTrend, stress, total, signal.AvgCommitSize)
	signal.BurnoutRisk = triggers.Points()
	return signal, triggers, nil
}

// RiskScore recomputes the rubric score for an existing signal
func RiskScore(signal models.BurnoutSignal) int {
	return Evaluate(
		signal.AvgSentiment,
		signal.SentimentTrend,
		signal.HighStressCommits,
		signal.TotalCommits,
		signal.AvgCommitSize,
	).Points()
}
