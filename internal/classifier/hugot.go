//go:build hugot

package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
)

// Hugot runs a local ONNX text-classification model, for example an export of
// an emotion model such as distilbert-base-uncased-emotion. It uses the ONNX
// Runtime session, which needs cgo, libtokenizers and the onnxruntime shared
// library, so it is only compiled with -tags hugot.
type Hugot struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
	// pipeline runs are serialized; the session is not shared safely across
	// concurrent RunPipeline calls
	mu     sync.Mutex
	logger *slog.Logger
}

// NewHugot loads the model at modelPath
func NewHugot(modelPath string) (*Hugot, error) {
	if modelPath == "" {
		return nil, fmt.Errorf("hugot model path is required")
	}
	logger := slog.Default().With("component", "hugot")

	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize hugot session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "commitSentimentPipeline",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("failed to initialize hugot pipeline: %w", err)
	}

	logger.Info("hugot pipeline ready", "model", modelPath)
	return &Hugot{session: session, pipeline: pipeline, logger: logger}, nil
}

func (h *Hugot) Name() string { return BackendHugot }

// Close releases the ONNX session
func (h *Hugot) Close() error {
	return h.session.Destroy()
}

// Classify runs the model and returns its label distribution
func (h *Hugot) Classify(ctx context.Context, text string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	h.mu.Lock()
	output, err := h.pipeline.RunPipeline([]string{text})
	h.mu.Unlock()
	if err != nil {
		return Result{}, fmt.Errorf("hugot pipeline failed: %w", err)
	}
	if len(output.ClassificationOutputs) == 0 || len(output.ClassificationOutputs[0]) == 0 {
		return Result{}, fmt.Errorf("unexpected output format from hugot")
	}

	scores := make(map[models.Label]float64, len(output.ClassificationOutputs[0]))
	for _, c := range output.ClassificationOutputs[0] {
		scores[models.NormalizeLabel(c.Label)] = float64(c.Score)
	}
	return Result{Scores: scores}, nil
}
