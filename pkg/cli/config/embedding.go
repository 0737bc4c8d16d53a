package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/domain/interfaces"
	"github.com/secmon-lab/foodrec/pkg/service/embedding"
	"github.com/secmon-lab/foodrec/pkg/utils/logging"
	"github.com/secmon-lab/foodrec/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// Embedding holds CLI flags for the embedding provider and its resilience settings
type Embedding struct {
	provider         string
	batchSize        int
	breakerThreshold int
	breakerTimeout   time.Duration

	openai OpenAI
	gemini Gemini
	cache  Cache
}

func (e *Embedding) Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "embedding-provider",
			Usage:       "Embedding provider (openai, gemini or none)",
			Category:    "Embedding",
			Value:       ProviderOpenAI,
			Sources:     cli.EnvVars("FOODREC_EMBEDDING_PROVIDER"),
			Destination: &e.provider,
		},
		&cli.IntFlag{
			Name:        "embedding-batch-size",
			Usage:       "Maximum number of texts per provider call",
			Category:    "Embedding",
			Value:       100,
			Sources:     cli.EnvVars("FOODREC_EMBEDDING_BATCH_SIZE"),
			Destination: &e.batchSize,
		},
		&cli.IntFlag{
			Name:        "embedding-breaker-threshold",
			Usage:       "Consecutive provider failures that open the circuit breaker (0 disables it)",
			Category:    "Embedding",
			Value:       5,
			Sources:     cli.EnvVars("FOODREC_EMBEDDING_BREAKER_THRESHOLD"),
			Destination: &e.breakerThreshold,
		},
		&cli.DurationFlag{
			Name:        "embedding-breaker-timeout",
			Usage:       "Time the circuit breaker stays open before probing the provider again",
			Category:    "Embedding",
			Value:       30 * time.Second,
			Sources:     cli.EnvVars("FOODREC_EMBEDDING_BREAKER_TIMEOUT"),
			Destination: &e.breakerTimeout,
		},
	}
	flags = append(flags, e.openai.Flags()...)
	flags = append(flags, e.gemini.Flags()...)
	flags = append(flags, e.cache.Flags()...)
	return flags
}

func (e Embedding) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("provider", e.provider),
		slog.Int("batch_size", e.batchSize),
		slog.Int("breaker_threshold", e.breakerThreshold),
		slog.Duration("breaker_timeout", e.breakerTimeout),
		slog.Any("cache", e.cache),
	}
	if e.provider == ProviderGemini {
		attrs = append(attrs, slog.Any("gemini", e.gemini))
	}
	return slog.GroupValue(attrs...)
}

func (e *Embedding) llm(ctx context.Context) (embedding.LLMClient, error) {
	switch e.provider {
	case ProviderOpenAI:
		return e.openai.Configure(ctx)
	case ProviderGemini:
		return e.gemini.Configure(ctx)
	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid embedding provider", goerr.V(ValueKey, e.provider))
	}
}

// Configure builds the embedding client. With provider "none" it returns a nil embedder and
// only the popularity fallback can serve recommendations. The returned function releases the cache.
func (e *Embedding) Configure(ctx context.Context) (interfaces.Embedder, func(), error) {
	noop := func() {}
	if e.provider == ProviderNone {
		logging.Default().Warn("Embedding provider is disabled")
		return nil, noop, nil
	}

	llm, err := e.llm(ctx)
	if err != nil {
		return nil, noop, err
	}

	opts := []embedding.Option{embedding.WithBatchSize(e.batchSize)}
	if e.breakerThreshold > 0 {
		opts = append(opts, embedding.WithCircuitBreaker(uint32(e.breakerThreshold), e.breakerTimeout))
	}

	closer := noop
	cache, err := e.cache.Configure(ctx)
	if err != nil {
		return nil, noop, err
	}
	if cache != nil {
		opts = append(opts, embedding.WithCache(cache))
		closer = func() { safe.Close(context.Background(), "embedding cache", cache) }
		logging.Default().Info("Embedding cache enabled", "cache", e.cache)
	}

	client, err := embedding.New(llm, opts...)
	if err != nil {
		closer()
		return nil, noop, goerr.Wrap(err, "failed to create embedding client")
	}

	logging.Default().Info("Embedding provider configured", "provider", e.provider)
	return client, closer, nil
}
