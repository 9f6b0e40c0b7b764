package classifier

import (
	"context"
	"fmt"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/cache"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/config"
)

// New builds the configured backend. Remote backends are rate limited and
// any backend is wrapped in the configured verdict cache.
func New(ctx context.Context, cfg *config.Config) (Classifier, error) {
	cc := cfg.Classifier

	var (
		c      Classifier
		remote bool
		err    error
	)
	switch cc.Backend {
	case BackendVader, "":
		c = NewVader()
	case BackendHugot:
		c, err = NewHugot(cc.HugotModelPath)
	case BackendOpenAI:
		c, err = NewOpenAI(cc.OpenAIKey, cc.OpenAIModel, "")
		remote = true
	case BackendGemini:
		c, err = NewGemini(ctx, cc.GeminiKey, cc.GeminiModel)
		remote = true
	case BackendHTTP:
		c = NewHTTP(cc.EndpointURL, cc.EndpointToken, 0)
		remote = true
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", cc.Backend)
	}
	if err != nil {
		return nil, err
	}

	if remote && cc.RateLimit > 0 {
		c = NewLimited(c, cc.RateLimit)
	}

	store, err := openStore(ctx, cfg.Cache)
	if err != nil {
		c.Close()
		return nil, err
	}
	if store != nil {
		c = NewCached(c, store)
	}
	return c, nil
}

func openStore(ctx context.Context, cc config.CacheConfig) (cache.Store, error) {
	switch cc.Type {
	case "", "none":
		return nil, nil
	case "bolt":
		return cache.OpenBolt(cc.Path)
	case "redis":
		return cache.NewRedisStore(ctx, cc.RedisURL, cc.TTL)
	default:
		return nil, fmt.Errorf("unknown cache type %q", cc.Type)
	}
}
