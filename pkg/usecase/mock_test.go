package usecase_test

import (
	"context"
	"sync"

	"github.com/secmon-lab/foodrec/pkg/domain/interfaces"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
	"github.com/secmon-lab/foodrec/pkg/repository/memory"
)

// unitVector returns a vector with weights at the given axes
func unitVector(weights map[int]float32) []float32 {
	v := make([]float32, model.EmbeddingDimension)
	for i, w := range weights {
		v[i] = w
	}
	return v
}

// mockEmbedder maps texts to vectors. Unknown texts get axis 0.
type mockEmbedder struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	errs     map[string]error
	batchErr error
	texts    []string
	batches  int
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{
		vectors: make(map[string][]float32),
		errs:    make(map[string]error),
	}
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.texts = append(m.texts, text)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.errs[text]; ok {
		return nil, err
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return unitVector(map[int]float32{0: 1}), nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batches++
	batchErr := m.batchErr
	m.mu.Unlock()

	if batchErr != nil {
		return nil, batchErr
	}

	result := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}

func (m *mockEmbedder) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// spyRepository wraps the memory repository and records similarity searches
type spyRepository struct {
	*memory.Memory
	products *spyProductRepository
	orders   *spyOrderRepository
}

func newSpyRepository() *spyRepository {
	mem := memory.New()
	return &spyRepository{
		Memory:   mem,
		products: &spyProductRepository{ProductRepository: mem.Product()},
		orders:   &spyOrderRepository{OrderRepository: mem.Order()},
	}
}

func (r *spyRepository) Product() interfaces.ProductRepository {
	return r.products
}

func (r *spyRepository) Order() interfaces.OrderRepository {
	return r.orders
}

type spyProductRepository struct {
	interfaces.ProductRepository

	mu        sync.Mutex
	limits    []int
	findErr   error
	recentErr error
	recent    int
}

func (r *spyProductRepository) FindByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*model.ScoredProduct, error) {
	r.mu.Lock()
	r.limits = append(r.limits, limit)
	err := r.findErr
	r.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return r.ProductRepository.FindByEmbedding(ctx, embedding, limit)
}

func (r *spyProductRepository) ListRecent(ctx context.Context, limit int) ([]*model.Product, error) {
	r.mu.Lock()
	r.recent++
	err := r.recentErr
	r.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return r.ProductRepository.ListRecent(ctx, limit)
}

func (r *spyProductRepository) searchLimits() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.limits...)
}

type spyOrderRepository struct {
	interfaces.OrderRepository
	listErr error
}

func (r *spyOrderRepository) ListByUserID(ctx context.Context, userID string) ([]*model.Order, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.OrderRepository.ListByUserID(ctx, userID)
}
