package classifier

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/cache"
)

// Cached memoizes verdicts of another classifier in a cache.Store. Cache
// failures are logged and fall through to the wrapped classifier.
type Cached struct {
	inner  Classifier
	store  cache.Store
	logger *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCached wraps inner with store
func NewCached(inner Classifier, store cache.Store) *Cached {
	return &Cached{
		inner:  inner,
		store:  store,
		logger: slog.Default().With("component", "classifier_cache"),
	}
}

func (c *Cached) Name() string { return c.inner.Name() }

// Close closes both the store and the wrapped classifier
func (c *Cached) Close() error {
	c.logger.Debug("cache stats", "hits", c.hits.Load(), "misses", c.misses.Load())
	storeErr := c.store.Close()
	if err := c.inner.Close(); err != nil {
		return err
	}
	return storeErr
}

// Stats returns hit and miss counts
func (c *Cached) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *Cached) Classify(ctx context.Context, text string) (Result, error) {
	key := cache.Key(c.inner.Name(), text)

	var cached Result
	found, err := c.store.Get(ctx, key, &cached)
	if err != nil {
		c.logger.Warn("cache read failed", "error", err)
	}
	if found {
		c.hits.Add(1)
		return cached, nil
	}
	c.misses.Add(1)

	result, err := c.inner.Classify(ctx, text)
	if err != nil {
		return Result{}, err
	}
	if err := c.store.Set(ctx, key, result); err != nil {
		c.logger.Warn("cache write failed", "error", err)
	}
	return result, nil
}
