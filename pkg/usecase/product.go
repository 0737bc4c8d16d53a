package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/domain/interfaces"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
	"github.com/secmon-lab/foodrec/pkg/utils/logging"
)

type ProductUseCase struct {
	repo     interfaces.Repository
	embedder interfaces.Embedder
}

func NewProductUseCase(repo interfaces.Repository, embedder interfaces.Embedder) *ProductUseCase {
	return &ProductUseCase{
		repo:     repo,
		embedder: embedder,
	}
}

// CreateProduct embeds "{restaurant} {product} {description}" and stores the product
func (uc *ProductUseCase) CreateProduct(ctx context.Context, restaurantName, productName, description string) (*model.Product, error) {
	created, err := uc.CreateProducts(ctx, []*model.Product{{
		RestaurantName: restaurantName,
		ProductName:    productName,
		Description:    description,
	}})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

// CreateProducts embeds all products with one batched call and stores them
func (uc *ProductUseCase) CreateProducts(ctx context.Context, products []*model.Product) ([]*model.Product, error) {
	if len(products) == 0 {
		return []*model.Product{}, nil
	}

	for i, p := range products {
		if err := p.Validate(); err != nil {
			return nil, goerr.Wrap(errors.Join(ErrInvalidInput, err), "invalid product", goerr.V("index", i))
		}
	}

	if uc.embedder == nil {
		logging.From(ctx).Warn("embedding provider is not configured, storing products without embedding",
			"count", len(products))
	} else {
		texts := make([]string, len(products))
		for i, p := range products {
			texts[i] = p.EmbeddingText()
		}

		vectors, err := uc.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, goerr.Wrap(errors.Join(ErrEmbeddingUnavailable, err), "failed to embed products",
				goerr.V(CountKey, len(products)))
		}
		if len(vectors) != len(products) {
			return nil, goerr.Wrap(ErrEmbeddingUnavailable, "embedding count mismatch",
				goerr.V("expected", len(products)),
				goerr.V("actual", len(vectors)))
		}

		embedded := make([]*model.Product, len(products))
		for i, p := range products {
			c := p.Copy()
			c.Embedding = vectors[i]
			if err := c.Validate(); err != nil {
				return nil, goerr.Wrap(errors.Join(ErrEmbeddingUnavailable, err), "invalid embedding", goerr.V("index", i))
			}
			embedded[i] = c
		}
		products = embedded
	}

	if len(products) == 1 {
		created, err := uc.repo.Product().Create(ctx, products[0])
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create product")
		}
		logging.From(ctx).Info("created product",
			"product_id", created.ID,
			"restaurant", created.RestaurantName,
			"product", created.ProductName)
		return []*model.Product{created}, nil
	}

	created, err := uc.repo.Product().CreateBatch(ctx, products)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create products", goerr.V(CountKey, len(products)))
	}
	logging.From(ctx).Info("created products", "count", len(created))
	return created, nil
}

func (uc *ProductUseCase) GetProduct(ctx context.Context, id model.ProductID) (*model.Product, error) {
	p, err := uc.repo.Product().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get product", goerr.V(model.ProductIDKey, id))
	}
	return p, nil
}

func (uc *ProductUseCase) ListProducts(ctx context.Context) ([]*model.Product, error) {
	products, err := uc.repo.Product().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list products")
	}
	return products, nil
}
