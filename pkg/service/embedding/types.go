package embedding

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// LLMClient is the subset of gollem.LLMClient used to generate embeddings
type LLMClient interface {
	GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error)
}

// Cache stores embeddings keyed by their source text. Lookups return one entry per
// input text with nil for misses.
type Cache interface {
	GetMulti(ctx context.Context, texts []string) ([][]float32, error)
	SetMulti(ctx context.Context, texts []string, vectors [][]float32) error
}

var (
	ErrProviderFailure   = goerr.New("embedding provider failed")
	ErrUnexpectedResults = goerr.New("embedding provider returned unexpected results")
)
