package embed

import (
	"context"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel = "text-embedding-3-small"
	// chunkSize stays below the provider's per-request input limit.
	chunkSize = 96
)

// ProgressFunc reports fractional embedding progress per completed chunk.
// Long batches take seconds; callers can surface this without blocking the
// embedding loop.
type ProgressFunc func(done, total int)

// Client wraps an OpenAI-compatible embedding API.
type Client struct {
	api   *openai.Client
	model string
}

// Config controls how the embedding client is constructed.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("embed: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	conf := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:   openai.NewClientWithConfig(conf),
		model: cfg.Model,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Embed returns the unit-norm embedding of a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := c.EmbedBatch(ctx, []string{text}, nil)
	if err != nil {
		return nil, err
	}
	vec, ok := out[text]
	if !ok {
		return nil, fmt.Errorf("embed: response missing input text")
	}
	return vec, nil
}

// EmbedBatch embeds texts in provider-sized chunks and returns a text->vector
// map. Vectors are normalized to unit length so cosine similarity reduces to
// a dot product downstream. Duplicate texts are embedded once.
func (c *Client) EmbedBatch(ctx context.Context, texts []string, progress ProgressFunc) (map[string][]float32, error) {
	unique := dedupe(texts)
	out := make(map[string][]float32, len(unique))

	for start := 0; start < len(unique); start += chunkSize {
		end := start + chunkSize
		if end > len(unique) {
			end = len(unique)
		}
		batch := unique[start:end]

		req := openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(c.model),
			Input: batch,
		}
		resp, err := c.api.CreateEmbeddings(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
		}
		if len(resp.Data) != len(batch) {
			return nil, fmt.Errorf("embed batch [%d:%d]: got %d vectors for %d inputs", start, end, len(resp.Data), len(batch))
		}
		for i, item := range resp.Data {
			out[batch[i]] = Normalize(item.Embedding)
		}
		reportProgress(progress, end, len(unique))
	}
	return out, nil
}

// Normalize scales a vector to unit length. Zero vectors pass through
// unchanged so cosine on them stays 0 rather than NaN.
func Normalize(vec []float32) []float32 {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	inv := 1.0 / math.Sqrt(norm)
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) * inv)
	}
	return out
}

func dedupe(texts []string) []string {
	seen := make(map[string]struct{}, len(texts))
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func reportProgress(progress ProgressFunc, done, total int) {
	if progress == nil {
		return
	}
	defer func() {
		recover() // progress is fire-and-forget
	}()
	progress(done, total)
}
