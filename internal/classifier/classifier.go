// Package classifier adapts text-classification backends to a single
// Classify call returning a label and confidence.
package classifier

import (
	"context"
	"fmt"
	"sort"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
)

// Backend names
const (
	BackendVader  = "vader"
	BackendHugot  = "hugot"
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
	BackendHTTP   = "http"
)

// Classifier labels a single piece of text. Implementations must be safe for
// concurrent use.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
	Name() string
	Close() error
}

// Result is a classifier verdict. Single-label backends set Label and
// Confidence; multi-label backends may set only Scores.
type Result struct {
	Label      models.Label             `json:"label"`
	Confidence float64                  `json:"confidence"`
	Scores     map[models.Label]float64 `json:"scores,omitempty"`
}

// Top returns the argmax of Scores. Ties go to the lexicographically
// smallest label. ok is false when Scores is empty.
func (r Result) Top() (models.Label, float64, bool) {
	if len(r.Scores) == 0 {
		return "", 0, false
	}
	labels := make([]models.Label, 0, len(r.Scores))
	for l := range r.Scores {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	best := labels[0]
	for _, l := range labels[1:] {
		if r.Scores[l] > r.Scores[best] {
			best = l
		}
	}
	return best, r.Scores[best], true
}

// Resolve normalizes a verdict: labels are lower-cased and a missing label is
// filled from the score distribution. A verdict with neither is malformed.
func (r Result) Resolve() (Result, error) {
	if len(r.Scores) > 0 {
		scores := make(map[models.Label]float64, len(r.Scores))
		for l, s := range r.Scores {
			scores[models.NormalizeLabel(string(l))] = s
		}
		r.Scores = scores
	}

	r.Label = models.NormalizeLabel(string(r.Label))
	if r.Label == "" {
		label, score, ok := r.Top()
		if !ok {
			return Result{}, fmt.Errorf("classifier returned neither a label nor scores")
		}
		r.Label, r.Confidence = label, score
	}

	if r.Confidence < 0 || r.Confidence > 1 {
		return Result{}, fmt.Errorf("confidence %v outside [0,1]", r.Confidence)
	}
	return r, nil
}
