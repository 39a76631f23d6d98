package workers

import (
	"context"
	"fmt"

	"github.com/hetulpatel/polykalshi/internal/cache"
	"github.com/hetulpatel/polykalshi/internal/embed"
	"github.com/hetulpatel/polykalshi/internal/hashutil"
	"github.com/hetulpatel/polykalshi/internal/market"
)

// Processor warms the shared embedding cache from the quote stream so the
// matcher's vector provider finds most titles pre-computed.
type Processor struct {
	embedClient *embed.Client
	store       cache.EmbeddingCache
}

func NewProcessor(embedClient *embed.Client, store cache.EmbeddingCache) *Processor {
	return &Processor{embedClient: embedClient, store: store}
}

func (p *Processor) Handle(ctx context.Context, snap *market.QuoteSnapshot) error {
	text := snap.Quote.Event
	if text == "" {
		return fmt.Errorf("empty event title for market %s", snap.Quote.MarketID)
	}

	key := hashutil.TextDigest(text)

	_, cached, err := p.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("cache get: %w", err)
	}
	if cached {
		return nil
	}

	vector, err := p.embedClient.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}

	if err := p.store.Set(ctx, key, vector); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
