package classifier

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Limited throttles a remote classifier to a fixed request rate shared by
// every worker
type Limited struct {
	inner   Classifier
	limiter *rate.Limiter
}

// NewLimited wraps inner with a limiter of perSecond requests and a burst of 1
func NewLimited(inner Classifier, perSecond float64) *Limited {
	return &Limited{inner: inner, limiter: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

func (l *Limited) Name() string { return l.inner.Name() }

func (l *Limited) Close() error { return l.inner.Close() }

func (l *Limited) Classify(ctx context.Context, text string) (Result, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limiter wait failed: %w", err)
	}
	return l.inner.Classify(ctx, text)
}
