package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
)

type productRepository struct {
	mu       sync.RWMutex
	products map[model.ProductID]*model.Product
}

func newProductRepository() *productRepository {
	return &productRepository{
		products: make(map[model.ProductID]*model.Product),
	}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := r.put(product, time.Now().UTC())
	return created.Copy(), nil
}

func (r *productRepository) CreateBatch(ctx context.Context, products []*model.Product) ([]*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	result := make([]*model.Product, 0, len(products))
	for _, p := range products {
		result = append(result, r.put(p, now).Copy())
	}
	return result, nil
}

// put must be called with the write lock held
func (r *productRepository) put(product *model.Product, now time.Time) *model.Product {
	created := product.Copy()
	if created.ID == "" {
		created.ID = model.NewProductID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now

	r.products[created.ID] = created
	return created
}

func (r *productRepository) Get(ctx context.Context, id model.ProductID) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.products[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "product not found", goerr.V(model.ProductIDKey, id))
	}

	return product.Copy(), nil
}

func (r *productRepository) List(ctx context.Context) ([]*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedByNewest(), nil
}

func (r *productRepository) ListRecent(ctx context.Context, limit int) ([]*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.sortedByNewest()
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// sortedByNewest must be called with the read lock held
func (r *productRepository) sortedByNewest() []*model.Product {
	result := make([]*model.Product, 0, len(r.products))
	for _, p := range r.products {
		result = append(result, p.Copy())
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result
}

func (r *productRepository) FindByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*model.ScoredProduct, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var candidates []*model.ScoredProduct
	for _, p := range r.products {
		if !p.HasEmbedding() {
			continue
		}
		candidates = append(candidates, &model.ScoredProduct{
			Product:    p.Copy(),
			Similarity: cosineSimilarity(embedding, p.Embedding),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Similarity != candidates[j].Similarity {
			return candidates[i].Similarity > candidates[j].Similarity
		}
		return candidates[i].Product.ID < candidates[j].Product.ID
	})

	if limit > len(candidates) {
		limit = len(candidates)
	}
	if limit < 0 {
		limit = 0
	}

	return candidates[:limit], nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	return dot / denom
}
