package output

import (
	"encoding/json"
	"io"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/burnout"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/pipeline"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/sentiment"
)

// JSONFormatter outputs the analysis as a single JSON document
type JSONFormatter struct {
	Options Options
}

// JSONReport is the document written by JSONFormatter
type JSONReport struct {
	Summary         pipeline.Summary              `json:"summary"`
	MeanSentiment   float64                       `json:"mean_sentiment"`
	Trend           float64                       `json:"trend"`
	Buckets         map[models.Bucket]int         `json:"buckets"`
	Distribution    map[models.Label]int          `json:"distribution"`
	Signal          models.BurnoutSignal          `json:"signal"`
	Severity        burnout.SeverityLevel         `json:"severity"`
	Triggers        []string                      `json:"triggers"`
	Zones           []models.BurnoutZone          `json:"zones"`
	TopByPositivity []models.AuthorStats          `json:"top_by_positivity"`
	TopByActivity   []models.AuthorStats          `json:"top_by_activity"`
	Authors         map[string]models.AuthorStats `json:"authors"`
}

// BuildJSONReport assembles the machine-readable view of a result
func BuildJSONReport(result *pipeline.Result, opts Options) JSONReport {
	triggers := result.Report.Triggers.Fired()
	if triggers == nil {
		triggers = []string{}
	}
	zones := result.Report.Zones
	if zones == nil {
		zones = []models.BurnoutZone{}
	}

	return JSONReport{
		Summary:         result.Summary,
		MeanSentiment:   result.Series.MeanSentiment(),
		Trend:           result.Series.Trend(),
		Buckets:         result.Series.BucketCounts(),
		Distribution:    sentiment.Distribution(result.Series),
		Signal:          result.Report.Signal,
		Severity:        result.Report.Severity,
		Triggers:        triggers,
		Zones:           zones,
		TopByPositivity: sentiment.RankByPositivity(result.Authors, opts.TopN, opts.MinCommits),
		TopByActivity:   sentiment.RankByActivity(result.Authors, opts.TopN, opts.MinCommits),
		Authors:         result.Authors,
	}
}

func (f *JSONFormatter) Format(result *pipeline.Result, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildJSONReport(result, f.Options))
}
