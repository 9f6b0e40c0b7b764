package burnout

// Rubric thresholds and points
const (
	MeanSentimentThreshold = -0.2
	TrendThreshold         = -0.3
	StressRatioThreshold   = 0.4
	CommitSizeThreshold    = 500.0

	MeanSentimentPoints = 30
	TrendPoints         = 25
	StressRatioPoints   = 25
	CommitSizePoints    = 20

	MaxRisk = 100
)

// Triggers records which rubric conditions fired
type Triggers struct {
	LowMeanSentiment bool `json:"low_mean_sentiment"`
	FallingTrend     bool `json:"falling_trend"`
	HighStressRatio  bool `json:"high_stress_ratio"`
	LargeCommits     bool `json:"large_commits"`
}

// Evaluate computes the trigger conditions for the given inputs. total must
// be positive.
func Evaluate(meanSentiment, trend float64, stressCount, total int, meanSize float64) Triggers {
	return Triggers{
		LowMeanSentiment: meanSentiment < MeanSentimentThreshold,
		FallingTrend:     trend < TrendThreshold,
		HighStressRatio:  total > 0 && float64(stressCount)/float64(total) > StressRatioThreshold,
		LargeCommits:     meanSize > CommitSizeThreshold,
	}
}

// Points sums the points of the fired triggers, capped at MaxRisk
func (t Triggers) Points() int {
	score := 0
	if t.LowMeanSentiment {
		score += MeanSentimentPoints
	}
	if t.FallingTrend {
		score += TrendPoints
	}
	if t.HighStressRatio {
		score += StressRatioPoints
	}
	if t.LargeCommits {
		score += CommitSizePoints
	}
	if score > MaxRisk {
		score = MaxRisk
	}
	return score
}

// Fired lists the names of the fired triggers in rubric order
func (t Triggers) Fired() []string {
	var out []string
	if t.LowMeanSentiment {
		out = append(out, "mean sentiment below -0.2")
	}
	if t.FallingTrend {
		out = append(out, "trend below -0.3")
	}
	if t.HighStressRatio {
		out = append(out, "high-stress ratio above 40%")
	}
	if t.LargeCommits {
		out = append(out, "mean commit size above 500 lines")
	}
	return out
}

// SeverityLevel buckets a risk score for display
type SeverityLevel string

const (
	SeverityLow      SeverityLevel = "low"
	SeverityModerate SeverityLevel = "moderate"
	SeverityElevated SeverityLevel = "elevated"
	SeverityHigh     SeverityLevel = "high"
)

// Severity maps a score in [0,100] to its display bucket
func Severity(score int) SeverityLevel {
	switch {
	case score >= 75:
		return SeverityHigh
	case score >= 50:
		return SeverityElevated
	case score >= 25:
		return SeverityModerate
	default:
		return SeverityLow
	}
}
