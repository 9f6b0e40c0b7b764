package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/russross/blackfriday/v2"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/pipeline"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/sentiment"
)

// Report file names inside the output directory
const (
	MarkdownFileName = "report.md"
	HTMLFileName     = "report.html"
)

var isoWeekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// Markdown renders the full analysis as a markdown document
func Markdown(result *pipeline.Result, opts Options) []byte {
	series := result.Series
	report := result.Report
	signal := report.Signal

	var b bytes.Buffer
	fmt.Fprintf(&b, "# Commit Sentiment Report\n\n")
	if result.Summary.Source != "" {
		fmt.Fprintf(&b, "Source: `%s`  \n", result.Summary.Source)
	}
	fmt.Fprintf(&b, "Commits analyzed: %d  \n", series.Len())
	if n := series.Len(); n > 0 {
		first, last := series.Points[0].Commit.Timestamp, series.Points[n-1].Commit.Timestamp
		fmt.Fprintf(&b, "Period: %s to %s\n\n", first.Format("2006-01-02"), last.Format("2006-01-02"))
	}

	fmt.Fprintf(&b, "## Overall sentiment\n\n")
	fmt.Fprintf(&b, "| Bucket | Commits | Share |\n|---|---:|---:|\n")
	buckets := series.BucketCounts()
	for _, bucket := range []models.Bucket{models.BucketPositive, models.BucketNeutral, models.BucketNegative} {
		fmt.Fprintf(&b, "| %s | %d | %.1f%% |\n", bucketTitle(bucket), buckets[bucket], percent(buckets[bucket], series.Len()))
	}
	fmt.Fprintf(&b, "\nMean score **%s**, trend **%s** (window %d).\n\n",
		signed(series.MeanSentiment()), signed(series.Trend()), series.Window)

	fmt.Fprintf(&b, "## Emotion distribution\n\n| Label | Commits |\n|---|---:|\n")
	dist := sentiment.Distribution(series)
	for _, label := range sentiment.SortedDistribution(dist) {
		fmt.Fprintf(&b, "| %s | %d |\n", label, dist[label])
	}
	fmt.Fprintf(&b, "\n")

	fmt.Fprintf(&b, "## Burnout signals\n\n")
	fmt.Fprintf(&b, "Risk score: **%d/100** (%s)\n\n", signal.BurnoutRisk, report.Severity)
	for _, trigger := range report.Triggers.Fired() {
		fmt.Fprintf(&b, "- %s\n", trigger)
	}
	fmt.Fprintf(&b, "- high-stress commits: %d of %d\n", signal.HighStressCommits, signal.TotalCommits)
	fmt.Fprintf(&b, "- mean commit size: %.1f lines\n", signal.AvgCommitSize)
	fmt.Fprintf(&b, "- weekend commits: %.1f%%\n", signal.WeekendRatio*100)
	fmt.Fprintf(&b, "- late-night commits: %.1f%%\n\n", signal.LateNightRatio*100)
	fmt.Fprintf(&b, "_The risk score is a heuristic rubric, not a calibrated measurement._\n\n")

	if len(report.Zones) > 0 {
		fmt.Fprintf(&b, "### Burnout zones\n\n| Date | Negative ratio | First commit |\n|---|---:|---|\n")
		for _, z := range report.Zones {
			fmt.Fprintf(&b, "| %s | %.1f%% | `%s` |\n",
				z.Timestamp.Format("2006-01-02"), z.NegativeRatio*100, series.Points[z.StartIndex].Commit.ID)
		}
		fmt.Fprintf(&b, "\n")
	}

	comparison := sentiment.AuthorComparison(result.Authors, opts.MinCommits)
	if ranked := sentiment.RankByPositivity(result.Authors, opts.TopN, opts.MinCommits); len(ranked) > 0 {
		fmt.Fprintf(&b, "## Authors\n\n| Author | Commits | Positive | Negative | Mean | Std dev |\n|---|---:|---:|---:|---:|---:|\n")
		for _, st := range ranked {
			pos, _ := st.PositivePct()
			neg, _ := st.NegativePct()
			c := comparison[st.Author]
			fmt.Fprintf(&b, "| %s | %d | %.1f%% | %.1f%% | %s | %.3f |\n",
				escapeCell(st.Author), c.Count, pos, neg, signed(c.Mean), c.StdDev)
		}
		fmt.Fprintf(&b, "\n")
	}

	if cells := sentiment.WeeklyHeatmap(series); len(cells) > 0 {
		fmt.Fprintf(&b, "## Weekly heatmap\n\n")
		b.WriteString(heatmapTable(cells))
	}

	return b.Bytes()
}

// heatmapTable lays out mean scores as one row per ISO week
func heatmapTable(cells []sentiment.HeatmapCell) string {
	type week struct{ year, week int }
	var order []week
	rows := make(map[week]map[time.Weekday]float64)
	for _, c := range cells {
		k := week{c.Year, c.Week}
		if _, ok := rows[k]; !ok {
			rows[k] = make(map[time.Weekday]float64)
			order = append(order, k)
		}
		rows[k][c.Weekday] = c.Mean
	}

	var b strings.Builder
	b.WriteString("| Week | Mon | Tue | Wed | Thu | Fri | Sat | Sun |\n|---|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, k := range order {
		fmt.Fprintf(&b, "| %d-W%02d |", k.year, k.week)
		for _, day := range isoWeekdays {
			if v, ok := rows[k][day]; ok {
				fmt.Fprintf(&b, " %s |", signed(v))
			} else {
				b.WriteString(" |")
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

// HTML converts a markdown report into a standalone HTML page
func HTML(markdown []byte) []byte {
	body := blackfriday.Run(markdown, blackfriday.WithExtensions(blackfriday.CommonExtensions))

	var b bytes.Buffer
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Commit Sentiment Report</title>\n")
	b.WriteString("<style>body{font-family:sans-serif;max-width:60em;margin:2em auto}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:.2em .6em}</style>\n")
	b.WriteString("</head>\n<body>\n")
	b.Write(body)
	b.WriteString("</body>\n</html>\n")
	return b.Bytes()
}

// WriteReport writes report.md and report.html into dir
func WriteReport(dir string, result *pipeline.Result, opts Options) (mdPath, htmlPath string, err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("create output directory: %w", err)
	}

	md := Markdown(result, opts)
	mdPath = filepath.Join(dir, MarkdownFileName)
	if err := os.WriteFile(mdPath, md, 0644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", mdPath, err)
	}

	htmlPath = filepath.Join(dir, HTMLFileName)
	if err := os.WriteFile(htmlPath, HTML(md), 0644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", htmlPath, err)
	}
	return mdPath, htmlPath, nil
}
