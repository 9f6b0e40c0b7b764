package classifier

import (
	"context"
	"math"

	"github.com/jonreiter/govader"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
)

// VADER compound thresholds
const (
	vaderPositive = 0.05
	vaderNegative = -0.05
)

// Vader is the offline lexicon classifier. It emits the coarse positive,
// negative and neutral labels.
type Vader struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVader creates a VADER classifier
func NewVader() *Vader {
	return &Vader{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *Vader) Name() string { return BackendVader }

func (v *Vader) Close() error { return nil }

// Classify labels text by its compound score. Polar labels carry |compound|
// as confidence; neutral carries 1-|compound|.
func (v *Vader) Classify(ctx context.Context, text string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	scores := v.analyzer.PolarityScores(text)
	return vaderResult(scores.Compound), nil
}

func vaderResult(compound float64) Result {
	abs := math.Abs(compound)
	switch {
	case compound >= vaderPositive:
		return Result{Label: models.LabelPositive, Confidence: abs}
	case compound <= vaderNegative:
		return Result{Label: models.LabelNegative, Confidence: abs}
	default:
		return Result{Label: models.LabelNeutral, Confidence: 1 - abs}
	}
}
