package sentiment

import (
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
)

// ScoreTable maps a classifier label to its base weight in [-1, 1]. The zero
// value scores every label as 0. A ScoreTable is never mutated after
// construction, so it can be shared between goroutines.
type ScoreTable struct {
	weights map[models.Label]float64
}

// NewScoreTable copies weights into a new table. Keys are normalized.
func NewScoreTable(weights map[models.Label]float64) ScoreTable {
	t := ScoreTable{weights: make(map[models.Label]float64, len(weights))}
	for label, w := range weights {
		t.weights[models.NormalizeLabel(string(label))] = w
	}
	return t
}

// DefaultScoreTable returns the emotion weights plus the coarse positive /
// negative labels, which score as +confidence / -confidence.
func DefaultScoreTable() ScoreTable {
	return NewScoreTable(map[models.Label]float64{
		models.LabelJoy:      0.8,
		models.LabelOptimism: 0.6,
		models.LabelLove:     0.7,
		models.LabelSurprise: 0.3,
		models.LabelNeutral:  0.0,
		models.LabelFear:     -0.5,
		models.LabelSadness:  -0.7,
		models.LabelAnger:    -0.9,
		models.LabelDisgust:  -0.8,

		models.LabelPositive: 1.0,
		models.LabelNegative: -1.0,
	})
}

// Weight returns the base weight for a label; unknown labels weigh 0
func (t ScoreTable) Weight(label models.Label) float64 {
	return t.weights[models.NormalizeLabel(string(label))]
}

// Has reports whether the label is known to the table
func (t ScoreTable) Has(label models.Label) bool {
	_, ok := t.weights[models.NormalizeLabel(string(label))]
	return ok
}

// Labels returns the known labels (unordered)
func (t ScoreTable) Labels() []models.Label {
	labels := make([]models.Label, 0, len(t.weights))
	for l := range t.weights {
		labels = append(labels, l)
	}
	return labels
}

// Observe builds the observation for a label and confidence. Confidence is
// clamped to [0, 1] and the score is weight * confidence.
func (t ScoreTable) Observe(label models.Label, confidence float64) models.SentimentObservation {
	label = models.NormalizeLabel(string(label))
	confidence = clamp(confidence, 0, 1)
	return models.SentimentObservation{
		Label:      label,
		Confidence: confidence,
		Score:      t.Weight(label) * confidence,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
