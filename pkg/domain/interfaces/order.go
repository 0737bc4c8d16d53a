package interfaces

import (
	"context"

	"github.com/secmon-lab/foodrec/pkg/domain/model"
)

// OrderRepository defines the interface for Order data persistence.
// Orders are append-only.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	CreateBatch(ctx context.Context, orders []*model.Order) ([]*model.Order, error)

	// List retrieves all orders, newest first
	List(ctx context.Context) ([]*model.Order, error)

	// ListByUserID retrieves all orders of a user, newest first. Unknown users yield an empty slice.
	ListByUserID(ctx context.Context, userID string) ([]*model.Order, error)
}
