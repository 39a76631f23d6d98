package embed

import (
	"context"

	"github.com/hetulpatel/polykalshi/internal/cache"
	"github.com/hetulpatel/polykalshi/internal/hashutil"
	"github.com/hetulpatel/polykalshi/internal/logging"
)

// CachedEmbedder fronts the embedding client with the Redis cache. Lookups go
// by digest of the normalized text; only misses reach the provider.
type CachedEmbedder struct {
	client *Client
	cache  cache.EmbeddingCache
}

func NewCachedEmbedder(client *Client, embCache cache.EmbeddingCache) *CachedEmbedder {
	return &CachedEmbedder{client: client, cache: embCache}
}

// EmbedBatch resolves cached vectors first, embeds the misses, and writes them
// back. Cache write failures degrade to a warning; the vectors are still
// returned.
func (e *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string, progress ProgressFunc) (map[string][]float32, error) {
	unique := dedupe(texts)
	out := make(map[string][]float32, len(unique))
	missing := unique

	if e.cache != nil {
		digests := make([]string, len(unique))
		for i, t := range unique {
			digests[i] = hashutil.TextDigest(t)
		}
		cached, err := e.cache.GetMany(ctx, digests)
		if err != nil {
			logging.Warnf("[embed] cache lookup failed, embedding all %d texts: %v", len(unique), err)
		} else {
			missing = missing[:0:0]
			for i, t := range unique {
				if vec, ok := cached[digests[i]]; ok {
					out[t] = vec
				} else {
					missing = append(missing, t)
				}
			}
		}
	}

	if len(missing) == 0 {
		reportProgress(progress, len(unique), len(unique))
		return out, nil
	}

	fresh, err := e.client.EmbedBatch(ctx, missing, func(done, total int) {
		reportProgress(progress, len(unique)-len(missing)+done, len(unique))
	})
	if err != nil {
		return nil, err
	}

	for text, vec := range fresh {
		out[text] = vec
		if e.cache != nil {
			if err := e.cache.Set(ctx, hashutil.TextDigest(text), vec); err != nil {
				logging.Warnf("[embed] cache write failed: %v", err)
			}
		}
	}
	return out, nil
}
