package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
	"google.golang.org/api/iterator"
)

type orderDoc struct {
	ID             model.OrderID   `firestore:"ID"`
	UserID         string          `firestore:"UserID"`
	RestaurantName string          `firestore:"RestaurantName"`
	ProductName    string          `firestore:"ProductName"`
	ProductID      model.ProductID `firestore:"ProductID,omitempty"`
	Quantity       int             `firestore:"Quantity"`
	Price          float64         `firestore:"Price"`
	CreatedAt      time.Time       `firestore:"CreatedAt"`
}

func toOrderDoc(o *model.Order) *orderDoc {
	return &orderDoc{
		ID:             o.ID,
		UserID:         o.UserID,
		RestaurantName: o.RestaurantName,
		ProductName:    o.ProductName,
		ProductID:      o.ProductID,
		Quantity:       o.Quantity,
		Price:          o.Price,
		CreatedAt:      o.CreatedAt,
	}
}

func docToOrder(doc *firestore.DocumentSnapshot) (*model.Order, error) {
	var d orderDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return &model.Order{
		ID:             d.ID,
		UserID:         d.UserID,
		RestaurantName: d.RestaurantName,
		ProductName:    d.ProductName,
		ProductID:      d.ProductID,
		Quantity:       d.Quantity,
		Price:          d.Price,
		CreatedAt:      d.CreatedAt,
	}, nil
}

type orderRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newOrderRepository(client *firestore.Client) *orderRepository {
	return &orderRepository{
		client: client,
	}
}

func (r *orderRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + OrdersCollection)
}

func prepareOrder(order *model.Order, now time.Time) *model.Order {
	created := *order
	if created.ID == "" {
		created.ID = model.NewOrderID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	return &created
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	created := prepareOrder(order, time.Now().UTC())

	if _, err := r.collection().Doc(string(created.ID)).Create(ctx, toOrderDoc(created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create order",
			goerr.V("orderID", created.ID),
			goerr.V(model.UserIDKey, created.UserID))
	}

	return created, nil
}

func (r *orderRepository) CreateBatch(ctx context.Context, orders []*model.Order) ([]*model.Order, error) {
	if len(orders) == 0 {
		return []*model.Order{}, nil
	}

	now := time.Now().UTC()
	bw := r.client.BulkWriter(ctx)

	created := make([]*model.Order, 0, len(orders))
	jobs := make([]*firestore.BulkWriterJob, 0, len(orders))
	for _, o := range orders {
		c := prepareOrder(o, now)
		job, err := bw.Create(r.collection().Doc(string(c.ID)), toOrderDoc(c))
		if err != nil {
			bw.End()
			return nil, goerr.Wrap(err, "failed to enqueue order", goerr.V("orderID", c.ID))
		}
		created = append(created, c)
		jobs = append(jobs, job)
	}
	bw.End()

	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return nil, goerr.Wrap(err, "failed to create order", goerr.V("orderID", created[i].ID))
		}
	}

	return created, nil
}

func (r *orderRepository) List(ctx context.Context) ([]*model.Order, error) {
	return r.query(ctx, r.collection().OrderBy("CreatedAt", firestore.Desc))
}

func (r *orderRepository) ListByUserID(ctx context.Context, userID string) ([]*model.Order, error) {
	q := r.collection().
		Where("UserID", "==", userID).
		OrderBy("CreatedAt", firestore.Desc)

	orders, err := r.query(ctx, q)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list orders by user", goerr.V(model.UserIDKey, userID))
	}
	return orders, nil
}

func (r *orderRepository) query(ctx context.Context, q firestore.Query) ([]*model.Order, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	orders := make([]*model.Order, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate orders")
		}

		o, err := docToOrder(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal order")
		}

		orders = append(orders, o)
	}

	return orders, nil
}
