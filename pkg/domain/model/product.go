package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// EmbeddingDimension is the dimension of product embedding vectors.
// OpenAI text-embedding-3-small produces 1536 dimensions.
const EmbeddingDimension = 1536

// ProductID is a UUID-based identifier for Product
type ProductID string

// NewProductID generates a new UUID v4 ProductID
func NewProductID() ProductID {
	return ProductID(uuid.New().String())
}

// String returns the string representation of ProductID
func (id ProductID) String() string {
	return string(id)
}

// Product is a menu item offered by a restaurant.
// Embedding is nil until it has been computed; such products are never returned by similarity search.
type Product struct {
	ID             ProductID
	RestaurantName string
	ProductName    string
	Description    string
	Embedding      []float32
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EmbeddingText returns the text used to compute the product embedding
func (p *Product) EmbeddingText() string {
	return p.RestaurantName + " " + p.ProductName + " " + p.Description
}

// HasEmbedding reports whether the product can take part in similarity search
func (p *Product) HasEmbedding() bool {
	return len(p.Embedding) > 0
}

// Validate checks required fields and the embedding dimension
func (p *Product) Validate() error {
	if strings.TrimSpace(p.RestaurantName) == "" {
		return goerr.Wrap(ErrInvalidProduct, "restaurant name is required")
	}
	if strings.TrimSpace(p.ProductName) == "" {
		return goerr.Wrap(ErrInvalidProduct, "product name is required")
	}
	if strings.TrimSpace(p.Description) == "" {
		return goerr.Wrap(ErrInvalidProduct, "description is required",
			goerr.V(ProductNameKey, p.ProductName))
	}
	if len(p.Embedding) > 0 && len(p.Embedding) != EmbeddingDimension {
		return goerr.Wrap(ErrInvalidEmbedding, "unexpected embedding dimension",
			goerr.V(ProductNameKey, p.ProductName),
			goerr.V(ExpectedDimensionKey, EmbeddingDimension),
			goerr.V(ActualDimensionKey, len(p.Embedding)))
	}
	return nil
}

// Copy returns a deep copy of the product
func (p *Product) Copy() *Product {
	copied := *p
	if p.Embedding != nil {
		copied.Embedding = make([]float32, len(p.Embedding))
		copy(copied.Embedding, p.Embedding)
	}
	return &copied
}

// ScoredProduct is a product returned by similarity search.
// Similarity is 1 - cosine distance; higher means closer.
type ScoredProduct struct {
	Product    *Product
	Similarity float64
}
