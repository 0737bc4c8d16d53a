package embedding

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/domain/interfaces"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
	"github.com/secmon-lab/foodrec/pkg/utils/logging"
	"github.com/secmon-lab/foodrec/pkg/utils/metrics"
	"github.com/sony/gobreaker/v2"
)

const defaultBatchSize = 100

// Client generates embeddings through an LLM provider, optionally behind a cache and a circuit breaker
type Client struct {
	llm       LLMClient
	cache     Cache
	breaker   *gobreaker.CircuitBreaker[[][]float64]
	batchSize int
	dimension int
}

var _ interfaces.Embedder = &Client{}

// Option is a functional option for client configuration
type Option func(*Client)

// WithCache stores and reuses embeddings through cache
func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithBatchSize sets the maximum number of texts sent in one provider call
func WithBatchSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.batchSize = size
		}
	}
}

// WithCircuitBreaker stops calling the provider after failureThreshold consecutive failures
// and probes it again after timeout
func WithCircuitBreaker(failureThreshold uint32, timeout time.Duration) Option {
	return func(c *Client) {
		c.breaker = gobreaker.NewCircuitBreaker[[][]float64](gobreaker.Settings{
			Name:        "embedding",
			MaxRequests: 1,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.Default().Warn("circuit breaker state changed",
					slog.String("name", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()),
				)
				metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			},
		})
	}
}

// New creates a new embedding client with the provided LLM client
func New(llm LLMClient, opts ...Option) (*Client, error) {
	if llm == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &Client{
		llm:       llm,
		batchSize: defaultBatchSize,
		dimension: model.EmbeddingDimension,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Embed returns the embedding of a single text
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns one embedding per text in input order. Cached vectors are reused and
// the remaining texts are sent to the provider in chunks of the configured batch size.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := c.lookupCache(ctx, texts)

	var missIdx []int
	for i, v := range results {
		if v == nil {
			missIdx = append(missIdx, i)
		}
	}

	for start := 0; start < len(missIdx); start += c.batchSize {
		end := min(start+c.batchSize, len(missIdx))
		chunk := missIdx[start:end]

		input := make([]string, len(chunk))
		for i, idx := range chunk {
			input[i] = texts[idx]
		}

		vectors, err := c.generate(ctx, input)
		if err != nil {
			return nil, err
		}

		for i, idx := range chunk {
			results[idx] = vectors[i]
		}
		c.storeCache(ctx, input, vectors)
	}

	return results, nil
}

func (c *Client) generate(ctx context.Context, input []string) ([][]float32, error) {
	call := func() ([][]float64, error) {
		return c.llm.GenerateEmbedding(ctx, c.dimension, input)
	}

	var raw [][]float64
	var err error
	if c.breaker != nil {
		raw, err = c.breaker.Execute(call)
	} else {
		raw, err = call()
	}
	metrics.ObserveEmbedding(len(input), err)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, goerr.Wrap(ctxErr, "embedding canceled", goerr.V("count", len(input)))
		}
		return nil, goerr.Wrap(errors.Join(ErrProviderFailure, err), "failed to generate embedding", goerr.V("count", len(input)))
	}

	if len(raw) != len(input) {
		return nil, goerr.Wrap(ErrUnexpectedResults, "embedding count mismatch",
			goerr.V("expected", len(input)),
			goerr.V("actual", len(raw)))
	}

	vectors := make([][]float32, len(raw))
	for i, r := range raw {
		if len(r) != c.dimension {
			return nil, goerr.Wrap(model.ErrInvalidEmbedding, "unexpected embedding dimension",
				goerr.V(model.ExpectedDimensionKey, c.dimension),
				goerr.V(model.ActualDimensionKey, len(r)))
		}

		// Convert float64 to float32
		v := make([]float32, len(r))
		for j, f := range r {
			v[j] = float32(f)
		}
		vectors[i] = v
	}

	return vectors, nil
}

// lookupCache never fails; cache errors are logged and treated as misses
func (c *Client) lookupCache(ctx context.Context, texts []string) [][]float32 {
	results := make([][]float32, len(texts))
	if c.cache == nil {
		return results
	}

	cached, err := c.cache.GetMulti(ctx, texts)
	if err != nil {
		logging.From(ctx).Warn("failed to read embedding cache", "error", err)
		return results
	}

	for i, v := range cached {
		if i < len(results) && len(v) == c.dimension {
			results[i] = v
			metrics.EmbeddingCacheHits.Inc()
		} else {
			metrics.EmbeddingCacheMisses.Inc()
		}
	}
	return results
}

func (c *Client) storeCache(ctx context.Context, texts []string, vectors [][]float32) {
	if c.cache == nil {
		return
	}
	if err := c.cache.SetMulti(ctx, texts, vectors); err != nil {
		logging.From(ctx).Warn("failed to write embedding cache", "error", err)
	}
}
