package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// distanceField receives the cosine distance computed by FindNearest
const distanceField = "vector_distance"

// productDoc is the Firestore document representation of model.Product.
// Embedding is stored as firestore.Vector32 so that FindNearest vector search works.
type productDoc struct {
	ID             model.ProductID    `firestore:"ID"`
	RestaurantName string             `firestore:"RestaurantName"`
	ProductName    string             `firestore:"ProductName"`
	Description    string             `firestore:"Description"`
	Embedding      firestore.Vector32 `firestore:"Embedding,omitempty"`
	CreatedAt      time.Time          `firestore:"CreatedAt"`
	UpdatedAt      time.Time          `firestore:"UpdatedAt"`
}

func toProductDoc(p *model.Product) *productDoc {
	doc := &productDoc{
		ID:             p.ID,
		RestaurantName: p.RestaurantName,
		ProductName:    p.ProductName,
		Description:    p.Description,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if len(p.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(p.Embedding)
	}
	return doc
}

func docToProduct(doc *firestore.DocumentSnapshot) (*model.Product, error) {
	var d productDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}

	p := &model.Product{
		ID:             d.ID,
		RestaurantName: d.RestaurantName,
		ProductName:    d.ProductName,
		Description:    d.Description,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	if len(d.Embedding) > 0 {
		p.Embedding = []float32(d.Embedding)
	}
	return p, nil
}

type productRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newProductRepository(client *firestore.Client) *productRepository {
	return &productRepository{
		client: client,
	}
}

func (r *productRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + ProductsCollection)
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

	docRef := r.collection().Doc(created.ID.String())
	if _, err := docRef.Set(ctx, toProductDoc(created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create product", goerr.V(model.ProductIDKey, created.ID))
	}

	return created, nil
}

func (r *productRepository) CreateBatch(ctx context.Context, products []*model.Product) ([]*model.Product, error) {
	if len(products) == 0 {
		return []*model.Product{}, nil
	}

	now := time.Now().UTC()
	bw := r.client.BulkWriter(ctx)

	created := make([]*model.Product, 0, len(products))
	jobs := make([]*firestore.BulkWriterJob, 0, len(products))
	for _, p := range products {
		c := prepareProduct(p, now)
		job, err := bw.Set(r.collection().Doc(c.ID.String()), toProductDoc(c))
		if err != nil {
			bw.End()
			return nil, goerr.Wrap(err, "failed to enqueue product", goerr.V(model.ProductIDKey, c.ID))
		}
		created = append(created, c)
		jobs = append(jobs, job)
	}
	bw.End()

	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return nil, goerr.Wrap(err, "failed to create product", goerr.V(model.ProductIDKey, created[i].ID))
		}
	}

	return created, nil
}

func (r *productRepository) Get(ctx context.Context, id model.ProductID) (*model.Product, error) {
	doc, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "product not found", goerr.V(model.ProductIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get product", goerr.V(model.ProductIDKey, id))
	}

	p, err := docToProduct(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal product", goerr.V(model.ProductIDKey, id))
	}

	return p, nil
}

func (r *productRepository) List(ctx context.Context) ([]*model.Product, error) {
	return r.query(ctx, r.collection().OrderBy("CreatedAt", firestore.Desc))
}

func (r *productRepository) ListRecent(ctx context.Context, limit int) ([]*model.Product, error) {
	if limit <= 0 {
		return []*model.Product{}, nil
	}
	return r.query(ctx, r.collection().OrderBy("CreatedAt", firestore.Desc).Limit(limit))
}

func (r *productRepository) query(ctx context.Context, q firestore.Query) ([]*model.Product, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	products := make([]*model.Product, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate products")
		}

		p, err := docToProduct(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal product")
		}

		products = append(products, p)
	}

	return products, nil
}

func (r *productRepository) FindByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*model.ScoredProduct, error) {
	if limit <= 0 {
		return []*model.ScoredProduct{}, nil
	}

	vq := r.collection().
		FindNearest("Embedding", firestore.Vector32(embedding), limit, firestore.DistanceMeasureCosine,
			&firestore.FindNearestOptions{DistanceResultField: distanceField})

	iter := vq.Documents(ctx)
	defer iter.Stop()

	results := make([]*model.ScoredProduct, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate vector search results")
		}

		p, err := docToProduct(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal product from vector search")
		}

		var similarity float64
		if v, err := doc.DataAt(distanceField); err == nil {
			if distance, ok := v.(float64); ok {
				similarity = 1 - distance
			}
		}

		results = append(results, &model.ScoredProduct{Product: p, Similarity: similarity})
	}

	return results, nil
}
