package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/actuallystonmai/video-recommendation-service/internal/logging"
	"github.com/actuallystonmai/video-recommendation-service/internal/metrics"
	"github.com/cespare/xxhash/v2"
)

// VectorStore persists embeddings by key.
type VectorStore interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Put(ctx context.Context, key string, vec []float32) error
}

// CachedProvider serves embeddings from a VectorStore before falling back to
// the wrapped provider. Store errors are logged and never fail Embed.
type CachedProvider struct {
	next      Provider
	store     VectorStore
	namespace string
}

func NewCachedProvider(next Provider, store VectorStore, namespace string) *CachedProvider {
	return &CachedProvider{next: next, store: store, namespace: namespace}
}

func cacheKey(namespace, text string) string {
	return fmt.Sprintf("emb:%s:%016x", namespace, xxhash.Sum64String(text))
}

func (c *CachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrUnavailable
	}
	key := cacheKey(c.namespace, text)

	vec, found, err := c.store.Get(ctx, key)
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("embedding cache get failed")
	}
	if found && len(vec) > 0 {
		metrics.IncEmbedding("cached")
		return vec, nil
	}

	vec, err = c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(ctx, key, vec); err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("embedding cache put failed")
	}
	return vec, nil
}
