package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/burnout"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/pipeline"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/sentiment"
)

// StandardFormatter outputs sentiment, authors and burnout zones (default)
type StandardFormatter struct {
	Options Options
}

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	goodColor   = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	badColor    = color.New(color.FgRed, color.Bold)
)

func (f *StandardFormatter) Format(result *pipeline.Result, w io.Writer) error {
	opts := f.Options
	summary := result.Summary
	series := result.Series
	report := result.Report

	// Header
	headerColor.Fprintf(w, "🔍 Commit Sentiment Analysis\n")
	if summary.Source != "" {
		fmt.Fprintf(w, "Source: %s\n", summary.Source)
	}
	if summary.Backend != "" {
		fmt.Fprintf(w, "Classifier: %s\n", summary.Backend)
	}
	fmt.Fprintf(w, "Commits analyzed: %d\n", len(result.Commits))
	if summary.EmptyMessages > 0 || summary.ClassificationFailures > 0 {
		warnColor.Fprintf(w, "Neutral placeholders: %d empty messages, %d classification failures\n",
			summary.EmptyMessages, summary.ClassificationFailures)
	}
	if summary.CacheHits+summary.CacheMisses > 0 {
		fmt.Fprintf(w, "Cache: %d hits, %d misses\n", summary.CacheHits, summary.CacheMisses)
	}
	fmt.Fprintf(w, "\n")

	// Overall sentiment
	headerColor.Fprintf(w, "📈 Overall Sentiment\n")
	buckets := series.BucketCounts()
	total := series.Len()
	for _, b := range []models.Bucket{models.BucketPositive, models.BucketNeutral, models.BucketNegative} {
		fmt.Fprintf(w, "   %-9s %d (%.1f%%)\n", bucketTitle(b)+":", buckets[b], percent(buckets[b], total))
	}
	fmt.Fprintf(w, "   Mean score: %s\n", signed(series.MeanSentiment()))
	fmt.Fprintf(w, "   Trend:      %s\n\n", signed(series.Trend()))

	// Label distribution
	dist := sentiment.Distribution(series)
	headerColor.Fprintf(w, "🎭 Emotions\n")
	for _, label := range sentiment.SortedDistribution(dist) {
		fmt.Fprintf(w, "   %-9s %d\n", label, dist[label])
	}
	fmt.Fprintf(w, "\n")

	// Authors
	if ranked := sentiment.RankByPositivity(result.Authors, opts.TopN, opts.MinCommits); len(ranked) > 0 {
		headerColor.Fprintf(w, "👥 Top Authors by Sentiment\n")
		for _, st := range ranked {
			pos, _ := st.PositivePct()
			fmt.Fprintf(w, "   %s: %.1f%% positive, mean %s (%d commits)\n",
				st.Author, pos, signed(st.MeanSentiment), st.Total)
		}
		fmt.Fprintf(w, "\n")
	}
	if ranked := sentiment.RankByActivity(result.Authors, opts.TopN, opts.MinCommits); len(ranked) > 0 {
		headerColor.Fprintf(w, "🏃 Most Active Authors\n")
		for _, st := range ranked {
			fmt.Fprintf(w, "   %s: %d commits, mean %s ± %.2f\n",
				st.Author, st.Total, signed(st.MeanSentiment), st.StdDev)
		}
		fmt.Fprintf(w, "\n")
	}

	// Burnout
	signal := report.Signal
	headerColor.Fprintf(w, "🔥 Burnout Signals\n")
	severityColor(report.Severity).Fprintf(w, "   Risk: %d/100 (%s)\n", signal.BurnoutRisk, report.Severity)
	for _, trigger := range report.Triggers.Fired() {
		fmt.Fprintf(w, "   - %s\n", trigger)
	}
	fmt.Fprintf(w, "   High-stress commits: %d of %d\n", signal.HighStressCommits, signal.TotalCommits)
	fmt.Fprintf(w, "   Mean commit size: %.1f lines\n", signal.AvgCommitSize)
	fmt.Fprintf(w, "   Weekend commits: %.1f%%, late-night commits: %.1f%%\n",
		signal.WeekendRatio*100, signal.LateNightRatio*100)
	fmt.Fprintf(w, "\n")

	if len(report.Zones) > 0 {
		warnColor.Fprintf(w, "⚠️  Potential Burnout Zones Detected:\n")
		zones := report.Zones
		if opts.MaxZones > 0 && len(zones) > opts.MaxZones {
			zones = zones[:opts.MaxZones]
		}
		for _, z := range zones {
			fmt.Fprintf(w, "   %s: %.1f%% negative\n", z.Timestamp.Format("2006-01-02"), z.NegativeRatio*100)
		}
		if hidden := len(report.Zones) - len(zones); hidden > 0 {
			fmt.Fprintf(w, "   ... and %d more\n", hidden)
		}
		fmt.Fprintf(w, "\n")
	}

	return nil
}

func severityColor(level burnout.SeverityLevel) *color.Color {
	switch level {
	case burnout.SeverityHigh, burnout.SeverityElevated:
		return badColor
	case burnout.SeverityModerate:
		return warnColor
	default:
		return goodColor
	}
}

func bucketTitle(b models.Bucket) string {
	switch b {
	case models.BucketPositive:
		return "Positive"
	case models.BucketNegative:
		return "Negative"
	default:
		return "Neutral"
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func signed(v float64) string {
	return fmt.Sprintf("%+.3f", v)
}
