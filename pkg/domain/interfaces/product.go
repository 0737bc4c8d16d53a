package interfaces

import (
	"context"

	"github.com/secmon-lab/foodrec/pkg/domain/model"
)

// ProductRepository defines the interface for Product data persistence and similarity search
type ProductRepository interface {
	// Create stores a new product. ID and timestamps are assigned when empty.
	Create(ctx context.Context, product *model.Product) (*model.Product, error)

	// CreateBatch stores multiple products
	CreateBatch(ctx context.Context, products []*model.Product) ([]*model.Product, error)

	// Get retrieves a product by ID
	Get(ctx context.Context, id model.ProductID) (*model.Product, error)

	// List retrieves all products, newest first
	List(ctx context.Context) ([]*model.Product, error)

	// ListRecent retrieves up to limit products, newest first
	ListRecent(ctx context.Context, limit int) ([]*model.Product, error)

	// FindByEmbedding returns up to limit products with an embedding, ordered by descending
	// cosine similarity to the given vector. Products without an embedding are never returned.
	FindByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*model.ScoredProduct, error)
}
