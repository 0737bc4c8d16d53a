package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pgvector/pgvector-go"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
	"gorm.io/gorm"
)

type productRow struct {
	ID             string           `gorm:"primaryKey;type:uuid"`
	RestaurantName string           `gorm:"size:255;not null;index"`
	ProductName    string           `gorm:"size:255;not null;index"`
	Description    string           `gorm:"type:text;not null"`
	Embedding      *pgvector.Vector `gorm:"type:vector(1536)"`
	CreatedAt      time.Time        `gorm:"not null;index"`
	UpdatedAt      time.Time        `gorm:"not null"`
}

func (productRow) TableName() string {
	return "products"
}

type scoredProductRow struct {
	Product    productRow `gorm:"embedded"`
	Similarity float64
}

func toProductRow(p *model.Product) *productRow {
	row := &productRow{
		ID:             p.ID.String(),
		RestaurantName: p.RestaurantName,
		ProductName:    p.ProductName,
		Description:    p.Description,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if len(p.Embedding) > 0 {
		v := pgvector.NewVector(p.Embedding)
		row.Embedding = &v
	}
	return row
}

func fromProductRow(row *productRow) *model.Product {
	p := &model.Product{
		ID:             model.ProductID(row.ID),
		RestaurantName: row.RestaurantName,
		ProductName:    row.ProductName,
		Description:    row.Description,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if row.Embedding != nil {
		p.Embedding = row.Embedding.Slice()
	}
	return p
}

type productRepository struct {
	db *gorm.DB
}

func prepareProduct(product *model.Product, now time.Time) *model.Product {
	created := product.Copy()
	if created.ID == "" {
		created.ID = model.NewProductID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now
	return created
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	created := prepareProduct(product, time.Now().UTC())

	if err := r.db.WithContext(ctx).Create(toProductRow(created)).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to create product", goerr.V(model.ProductIDKey, created.ID))
	}

	return created, nil
}

func (r *productRepository) CreateBatch(ctx context.Context, products []*model.Product) ([]*model.Product, error) {
	if len(products) == 0 {
		return []*model.Product{}, nil
	}

	now := time.Now().UTC()
	created := make([]*model.Product, 0, len(products))
	rows := make([]*productRow, 0, len(products))
	for _, p := range products {
		c := prepareProduct(p, now)
		created = append(created, c)
		rows = append(rows, toProductRow(c))
	}

	if err := r.db.WithContext(ctx).CreateInBatches(rows, 100).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to create products", goerr.V("count", len(rows)))
	}

	return created, nil
}

func (r *productRepository) Get(ctx context.Context, id model.ProductID) (*model.Product, error) {
	var row productRow
	if err := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, goerr.Wrap(model.ErrNotFound, "product not found", goerr.V(model.ProductIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get product", goerr.V(model.ProductIDKey, id))
	}

	return fromProductRow(&row), nil
}

func (r *productRepository) List(ctx context.Context) ([]*model.Product, error) {
	var rows []*productRow
	if err := r.db.WithContext(ctx).Order("created_at DESC, id ASC").Find(&rows).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list products")
	}
	return fromProductRows(rows), nil
}

func (r *productRepository) ListRecent(ctx context.Context, limit int) ([]*model.Product, error) {
	if limit <= 0 {
		return []*model.Product{}, nil
	}

	var rows []*productRow
	if err := r.db.WithContext(ctx).Order("created_at DESC, id ASC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list recent products", goerr.V("limit", limit))
	}
	return fromProductRows(rows), nil
}

func fromProductRows(rows []*productRow) []*model.Product {
	products := make([]*model.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, fromProductRow(row))
	}
	return products
}

func (r *productRepository) FindByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*model.ScoredProduct, error) {
	if limit <= 0 {
		return []*model.ScoredProduct{}, nil
	}

	query := pgvector.NewVector(embedding)

	var rows []*scoredProductRow
	err := r.db.WithContext(ctx).
		Raw(`SELECT *, 1 - (embedding <=> ?) AS similarity
			FROM products
			WHERE embedding IS NOT NULL
			ORDER BY embedding <=> ?, id
			LIMIT ?`, query, query, limit).
		Scan(&rows).Error
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search products by embedding", goerr.V("limit", limit))
	}

	results := make([]*model.ScoredProduct, 0, len(rows))
	for _, row := range rows {
		results = append(results, &model.ScoredProduct{
			Product:    fromProductRow(&row.Product),
			Similarity: row.Similarity,
		})
	}

	return results, nil
}
