package embedding_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
	"github.com/secmon-lab/foodrec/pkg/service/embedding"
	"github.com/sony/gobreaker/v2"
)

type mockLLMClient struct {
	mu        sync.Mutex
	calls     [][]string
	err       error
	dimension int
}

func (m *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, append([]string{}, input...))
	if m.err != nil {
		return nil, m.err
	}

	dim := dimension
	if m.dimension > 0 {
		dim = m.dimension
	}

	out := make([][]float64, len(input))
	for i, text := range input {
		v := make([]float64, dim)
		v[0] = float64(len(text))
		out[i] = v
	}
	return out, nil
}

type memoryCache struct {
	entries map[string][]float32
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]float32)}
}

func (c *memoryCache) GetMulti(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = c.entries[t]
	}
	return out, nil
}

func (c *memoryCache) SetMulti(ctx context.Context, texts []string, vectors [][]float32) error {
	for i, t := range texts {
		c.entries[t] = vectors[i]
	}
	return nil
}

func TestNew(t *testing.T) {
	_, err := embedding.New(nil)
	gt.Error(t, err)
}

func TestEmbed(t *testing.T) {
	llm := &mockLLMClient{}
	client, err := embedding.New(llm)
	gt.NoError(t, err).Required()

	v, err := client.Embed(context.Background(), "spicy chicken")
	gt.NoError(t, err).Required()
	gt.A(t, v).Length(model.EmbeddingDimension)
	gt.V(t, v[0]).Equal(float32(len("spicy chicken")))
	gt.A(t, llm.calls).Length(1)
}

func TestEmbedBatch(t *testing.T) {
	t.Run("splits provider calls by batch size and keeps order", func(t *testing.T) {
		llm := &mockLLMClient{}
		client, err := embedding.New(llm, embedding.WithBatchSize(2))
		gt.NoError(t, err).Required()

		texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
		vectors, err := client.EmbedBatch(context.Background(), texts)
		gt.NoError(t, err).Required()
		gt.A(t, vectors).Length(5)
		for i, v := range vectors {
			gt.V(t, v[0]).Equal(float32(len(texts[i])))
		}
		gt.A(t, llm.calls).Length(3)
		gt.A(t, llm.calls[2]).Length(1)
	})

	t.Run("empty input does not call provider", func(t *testing.T) {
		llm := &mockLLMClient{}
		client, err := embedding.New(llm)
		gt.NoError(t, err).Required()

		vectors, err := client.EmbedBatch(context.Background(), nil)
		gt.NoError(t, err).Required()
		gt.A(t, vectors).Length(0)
		gt.A(t, llm.calls).Length(0)
	})

	t.Run("provider failure", func(t *testing.T) {
		llm := &mockLLMClient{err: errors.New("quota exceeded")}
		client, err := embedding.New(llm)
		gt.NoError(t, err).Required()

		_, err = client.Embed(context.Background(), "burger")
		gt.Error(t, err).Is(embedding.ErrProviderFailure)
	})

	t.Run("wrong dimension is rejected", func(t *testing.T) {
		llm := &mockLLMClient{dimension: 3}
		client, err := embedding.New(llm)
		gt.NoError(t, err).Required()

		_, err = client.Embed(context.Background(), "burger")
		gt.Error(t, err).Is(model.ErrInvalidEmbedding)
	})

	t.Run("canceled context", func(t *testing.T) {
		llm := &mockLLMClient{err: errors.New("request aborted")}
		client, err := embedding.New(llm)
		gt.NoError(t, err).Required()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = client.Embed(ctx, "burger")
		gt.Error(t, err).Is(context.Canceled)
	})
}

func TestEmbedBatchWithCache(t *testing.T) {
	llm := &mockLLMClient{}
	cache := newMemoryCache()
	client, err := embedding.New(llm, embedding.WithCache(cache))
	gt.NoError(t, err).Required()

	ctx := context.Background()
	_, err = client.EmbedBatch(ctx, []string{"fries", "shake"})
	gt.NoError(t, err).Required()
	gt.A(t, llm.calls).Length(1)

	vectors, err := client.EmbedBatch(ctx, []string{"shake", "nuggets", "fries"})
	gt.NoError(t, err).Required()
	gt.A(t, vectors).Length(3)
	gt.V(t, vectors[0][0]).Equal(float32(len("shake")))
	gt.V(t, vectors[1][0]).Equal(float32(len("nuggets")))
	gt.V(t, vectors[2][0]).Equal(float32(len("fries")))

	gt.A(t, llm.calls).Length(2)
	gt.A(t, llm.calls[1]).Length(1)
	gt.S(t, llm.calls[1][0]).Equal("nuggets")
}

func TestCircuitBreaker(t *testing.T) {
	llm := &mockLLMClient{err: errors.New("provider down")}
	client, err := embedding.New(llm, embedding.WithCircuitBreaker(2, time.Minute))
	gt.NoError(t, err).Required()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := client.Embed(ctx, "taco")
		gt.Error(t, err).Is(embedding.ErrProviderFailure)
	}

	_, err = client.Embed(ctx, "taco")
	gt.Error(t, err).Is(gobreaker.ErrOpenState)
	gt.Error(t, err).Is(embedding.ErrProviderFailure)
	gt.A(t, llm.calls).Length(2)
}

func TestEmbed_WithRealOpenAI(t *testing.T) {
	apiKey := os.Getenv("TEST_OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("TEST_OPENAI_API_KEY not set")
	}

	ctx := context.Background()
	llmClient, err := openai.New(ctx, apiKey)
	gt.NoError(t, err).Required()

	client, err := embedding.New(llmClient)
	gt.NoError(t, err).Required()

	vectors, err := client.EmbedBatch(ctx, []string{"McDonald's Big Mac", "Starbucks Latte"})
	gt.NoError(t, err).Required()
	gt.A(t, vectors).Length(2)
	gt.A(t, vectors[0]).Length(model.EmbeddingDimension)
}
