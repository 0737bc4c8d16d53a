package interfaces

import "context"

// Embedder converts text into dense vectors of model.EmbeddingDimension
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, in input order
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
