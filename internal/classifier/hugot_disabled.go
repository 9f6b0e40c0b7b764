//go:build !hugot

package classifier

import (
	"context"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/errors"
)

// Hugot is a placeholder in builds without the hugot tag
type Hugot struct{}

// NewHugot reports that the backend is not compiled in
func NewHugot(modelPath string) (*Hugot, error) {
	return nil, errors.ConfigErrorf("classifier backend %q is not compiled into this binary; rebuild with -tags hugot", BackendHugot)
}

func (h *Hugot) Name() string { return BackendHugot }

func (h *Hugot) Close() error { return nil }

func (h *Hugot) Classify(ctx context.Context, text string) (Result, error) {
	return Result{}, errors.ConfigErrorf("classifier backend %q is not compiled into this binary", BackendHugot)
}
