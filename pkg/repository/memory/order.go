package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/secmon-lab/foodrec/pkg/domain/model"
)

type orderRepository struct {
	mu     sync.RWMutex
	orders []*model.Order
	byUser map[string][]*model.Order
}

func newOrderRepository() *orderRepository {
	return &orderRepository{
		byUser: make(map[string][]*model.Order),
	}
}

func copyOrder(o *model.Order) *model.Order {
	copied := *o
	return &copied
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return copyOrder(r.put(order, time.Now().UTC())), nil
}

func (r *orderRepository) CreateBatch(ctx context.Context, orders []*model.Order) ([]*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	result := make([]*model.Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, copyOrder(r.put(o, now)))
	}
	return result, nil
}

// put must be called with the write lock held
func (r *orderRepository) put(order *model.Order, now time.Time) *model.Order {
	created := copyOrder(order)
	if created.ID == "" {
		created.ID = model.NewOrderID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}

	r.orders = append(r.orders, created)
	r.byUser[created.UserID] = append(r.byUser[created.UserID], created)
	return created
}

func (r *orderRepository) List(ctx context.Context) ([]*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return newestFirst(r.orders), nil
}

func (r *orderRepository) ListByUserID(ctx context.Context, userID string) ([]*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return newestFirst(r.byUser[userID]), nil
}

func newestFirst(orders []*model.Order) []*model.Order {
	result := make([]*model.Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, copyOrder(o))
	}

	// Insertion order breaks ties between equal timestamps
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result
}
