package models

import (
	"strings"
	"time"
)

// CommitRecord represents a single extracted commit. Immutable once built by a
// commit source.
type CommitRecord struct {
	ID           string    `json:"id" db:"id"`
	Author       string    `json:"author" db:"author"`
	Email        string    `json:"email,omitempty" db:"email"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
	Message      string    `json:"message" db:"message"`
	Insertions   int       `json:"insertions" db:"insertions"`
	Deletions    int       `json:"deletions" db:"deletions"`
	FilesChanged int       `json:"files_changed,omitempty" db:"-"`
}

// NormalizeText maps invalid UTF-8 to U+FFFD and CRLF to LF so the value
// survives CSV and JSON export unchanged
func NormalizeText(s string) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	for strings.Contains(s, "\r\n") {
		s = strings.ReplaceAll(s, "\r\n", "\n")
	}
	return s
}

// Size returns inserted plus deleted lines
func (c CommitRecord) Size() int {
	return c.Insertions + c.Deletions
}

// Label is a classifier output category
type Label string

// Fine-grained emotion labels
const (
	LabelJoy      Label = "joy"
	LabelOptimism Label = "optimism"
	LabelLove     Label = "love"
	LabelSurprise Label = "surprise"
	LabelNeutral  Label = "neutral"
	LabelFear     Label = "fear"
	LabelSadness  Label = "sadness"
	LabelAnger    Label = "anger"
	LabelDisgust  Label = "disgust"
)

// Coarse polarity labels
const (
	LabelPositive Label = "positive"
	LabelNegative Label = "negative"
)

// EmotionLabels is the closed fine-grained label set in display order
var EmotionLabels = []Label{
	LabelJoy, LabelOptimism, LabelLove, LabelSurprise, LabelNeutral,
	LabelFear, LabelSadness, LabelAnger, LabelDisgust,
}

// NormalizeLabel lower-cases and trims a raw classifier label
func NormalizeLabel(raw string) Label {
	return Label(strings.ToLower(strings.TrimSpace(raw)))
}

// Bucket is the polarity bucket a label belongs to
type Bucket string

const (
	BucketPositive Bucket = "positive"
	BucketNeutral  Bucket = "neutral"
	BucketNegative Bucket = "negative"
)

// Bucket maps a label to its polarity bucket. Unknown labels are neutral.
func (l Label) Bucket() Bucket {
	switch NormalizeLabel(string(l)) {
	case LabelJoy, LabelOptimism, LabelLove, LabelSurprise, LabelPositive:
		return BucketPositive
	case LabelFear, LabelSadness, LabelAnger, LabelDisgust, LabelNegative:
		return BucketNegative
	default:
		return BucketNeutral
	}
}

// IsHighStress reports whether the label is in the negative-stress set
// {anger, sadness, fear} or the coarse negative label.
func (l Label) IsHighStress() bool {
	switch NormalizeLabel(string(l)) {
	case LabelAnger, LabelSadness, LabelFear, LabelNegative:
		return true
	default:
		return false
	}
}

// Placeholder values assigned to empty messages and failed classifications.
// A defined stand-in, not a measurement.
const (
	PlaceholderConfidence = 0.5
	PlaceholderScore      = 0.0
)

// SentimentObservation is the classifier verdict for one commit
type SentimentObservation struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
	Score      float64 `json:"sentiment_score"`

	// Placeholder is set for empty messages and classification failures
	Placeholder bool `json:"placeholder,omitempty"`
}

// NeutralPlaceholder returns the observation used when a message is empty or
// could not be classified
func NeutralPlaceholder() SentimentObservation {
	return SentimentObservation{
		Label:       LabelNeutral,
		Confidence:  PlaceholderConfidence,
		Score:       PlaceholderScore,
		Placeholder: true,
	}
}

// AnalyzedCommit pairs a commit with its observation
type AnalyzedCommit struct {
	Commit      CommitRecord         `json:"commit"`
	Observation SentimentObservation `json:"observation"`
}

// AuthorStats holds per-author polarity counts and score moments
type AuthorStats struct {
	Author        string  `json:"author"`
	Positive      int     `json:"positive"`
	Negative      int     `json:"negative"`
	Neutral       int     `json:"neutral"`
	Total         int     `json:"total"`
	MeanSentiment float64 `json:"mean_sentiment"`
	StdDev        float64 `json:"std_dev"`
}

// PositivePct returns positive/total*100. ok is false when Total is 0.
func (s AuthorStats) PositivePct() (float64, bool) {
	return pct(s.Positive, s.Total)
}

// NegativePct returns negative/total*100. ok is false when Total is 0.
func (s AuthorStats) NegativePct() (float64, bool) {
	return pct(s.Negative, s.Total)
}

// NeutralPct returns neutral/total*100. ok is false when Total is 0.
func (s AuthorStats) NeutralPct() (float64, bool) {
	return pct(s.Neutral, s.Total)
}

func pct(n, total int) (float64, bool) {
	if total == 0 {
		return 0, false
	}
	return float64(n) / float64(total) * 100, true
}

// BurnoutZone is one qualifying sliding window
type BurnoutZone struct {
	Timestamp     time.Time `json:"timestamp"`
	NegativeRatio float64   `json:"negative_ratio"`
	StartIndex    int       `json:"start_index"`
}

// BurnoutSignal summarizes repository-level burnout indicators
type BurnoutSignal struct {
	AvgSentiment      float64 `json:"avg_sentiment"`
	SentimentTrend    float64 `json:"sentiment_trend"`
	HighStressCommits int     `json:"high_stress_commits"`
	TotalCommits      int     `json:"total_commits"`
	AvgCommitSize     float64 `json:"avg_commit_size"`
	WeekendRatio      float64 `json:"weekend_ratio"`
	LateNightRatio    float64 `json:"late_night_ratio"`
	BurnoutRisk       int     `json:"burnout_risk"`
}

// ExportRecord is the flat one-row-per-commit export contract
type ExportRecord struct {
	ID             string    `json:"id" db:"id"`
	Author         string    `json:"author" db:"author"`
	Email          string    `json:"email" db:"email"`
	Timestamp      time.Time `json:"timestamp" db:"timestamp"`
	Message        string    `json:"message" db:"message"`
	Insertions     int       `json:"insertions" db:"insertions"`
	Deletions      int       `json:"deletions" db:"deletions"`
	Label          Label     `json:"label" db:"label"`
	Confidence     float64   `json:"confidence" db:"confidence"`
	SentimentScore float64   `json:"sentiment_score" db:"sentiment_score"`
}

// ExportColumns is the column order shared by every flat export format
var ExportColumns = []string{
	"id", "author", "email", "timestamp", "message",
	"insertions", "deletions", "label", "confidence", "sentiment_score",
}

// ToExport flattens an analyzed commit
func (a AnalyzedCommit) ToExport() ExportRecord {
	return ExportRecord{
		ID:             a.Commit.ID,
		Author:         a.Commit.Author,
		Email:          a.Commit.Email,
		Timestamp:      a.Commit.Timestamp,
		Message:        a.Commit.Message,
		Insertions:     a.Commit.Insertions,
		Deletions:      a.Commit.Deletions,
		Label:          a.Observation.Label,
		Confidence:     a.Observation.Confidence,
		SentimentScore: a.Observation.Score,
	}
}

// FromExport rebuilds an analyzed commit from an export row. The placeholder
// flag is not part of the export contract and is left unset.
func FromExport(r ExportRecord) AnalyzedCommit {
	return AnalyzedCommit{
		Commit: CommitRecord{
			ID:         r.ID,
			Author:     r.Author,
			Email:      r.Email,
			Timestamp:  r.Timestamp,
			Message:    r.Message,
			Insertions: r.Insertions,
			Deletions:  r.Deletions,
		},
		Observation: SentimentObservation{
			Label:      r.Label,
			Confidence: r.Confidence,
			Score:      r.SentimentScore,
		},
	}
}
