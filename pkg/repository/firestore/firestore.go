package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/domain/interfaces"
)

// Collection names before the optional prefix is applied
const (
	ProductsCollection = "products"
	OrdersCollection   = "orders"
	UsersCollection    = "users"
)

type Firestore struct {
	client  *firestore.Client
	product *productRepository
	order   *orderRepository
	user    *userRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prepends prefix to every collection name. Tests use it to isolate runs.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.product.collectionPrefix = prefix
		f.order.collectionPrefix = prefix
		f.user.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:  client,
		product: newProductRepository(client),
		order:   newOrderRepository(client),
		user:    newUserRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Product() interfaces.ProductRepository {
	return f.product
}

func (f *Firestore) Order() interfaces.OrderRepository {
	return f.order
}

func (f *Firestore) User() interfaces.UserRepository {
	return f.user
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
