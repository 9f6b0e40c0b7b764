package classifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
)

var systemPrompt = func() string {
	labels := make([]string, len(models.EmotionLabels))
	for i, l := range models.EmotionLabels {
		labels[i] = string(l)
	}
	return "You classify the emotional tone of a single git commit message. " +
		"Answer with a JSON object {\"label\": string, \"confidence\": number}. " +
		"label must be one of: " + strings.Join(labels, ", ") + ". " +
		"confidence is your probability for that label, between 0 and 1. " +
		"Most commit messages are neutral; only choose another label when the wording clearly expresses it."
}()

type llmVerdict struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// parseVerdict decodes a JSON verdict and rejects labels outside the emotion set
func parseVerdict(raw string) (Result, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var v llmVerdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return Result{}, fmt.Errorf("failed to parse verdict: %w", err)
	}

	label := models.NormalizeLabel(v.Label)
	for _, l := range models.EmotionLabels {
		if l == label {
			return Result{Label: label, Confidence: v.Confidence}, nil
		}
	}
	return Result{}, fmt.Errorf("unknown label %q", v.Label)
}
