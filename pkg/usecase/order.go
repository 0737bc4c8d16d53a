package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/domain/interfaces"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
	"github.com/secmon-lab/foodrec/pkg/utils/logging"
)

// DefaultHistoryLimit is the number of orders returned by GetOrderHistory when no limit is given
const DefaultHistoryLimit = 50

type OrderUseCase struct {
	repo interfaces.Repository
}

func NewOrderUseCase(repo interfaces.Repository) *OrderUseCase {
	return &OrderUseCase{
		repo: repo,
	}
}

// CreateOrder records an order, creating the user on first purchase
func (uc *OrderUseCase) CreateOrder(ctx context.Context, order *model.Order) (*model.Order, error) {
	created, err := uc.CreateOrders(ctx, []*model.Order{order})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

// CreateOrders records multiple orders. Prices are rounded to cents.
// A referenced product must exist.
func (uc *OrderUseCase) CreateOrders(ctx context.Context, orders []*model.Order) ([]*model.Order, error) {
	return uc.createOrders(ctx, orders, true)
}

func (uc *OrderUseCase) createOrders(ctx context.Context, orders []*model.Order, verifyRefs bool) ([]*model.Order, error) {
	if len(orders) == 0 {
		return []*model.Order{}, nil
	}

	prepared := make([]*model.Order, len(orders))
	users := make(map[string]struct{})
	products := make(map[model.ProductID]struct{})
	for i, o := range orders {
		c := *o
		c.Price = model.RoundPrice(c.Price)
		if err := c.Validate(); err != nil {
			return nil, goerr.Wrap(errors.Join(ErrInvalidInput, err), "invalid order", goerr.V("index", i))
		}
		prepared[i] = &c
		users[c.UserID] = struct{}{}
		if verifyRefs && c.ProductID != "" {
			products[c.ProductID] = struct{}{}
		}
	}

	for id := range products {
		if _, err := uc.repo.Product().Get(ctx, id); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return nil, goerr.Wrap(errors.Join(ErrInvalidInput, err), "referenced product does not exist",
					goerr.V(model.ProductIDKey, id))
			}
			return nil, goerr.Wrap(err, "failed to check referenced product", goerr.V(model.ProductIDKey, id))
		}
	}

	for userID := range users {
		if _, err := uc.repo.User().Ensure(ctx, userID); err != nil {
			return nil, goerr.Wrap(err, "failed to ensure user", goerr.V(UserIDKey, userID))
		}
	}

	var created []*model.Order
	var err error
	if len(prepared) == 1 {
		var o *model.Order
		o, err = uc.repo.Order().Create(ctx, prepared[0])
		created = []*model.Order{o}
	} else {
		created, err = uc.repo.Order().CreateBatch(ctx, prepared)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create orders", goerr.V(CountKey, len(prepared)))
	}

	logging.From(ctx).Debug("created orders", "count", len(created), "users", len(users))
	return created, nil
}

func (uc *OrderUseCase) ListOrders(ctx context.Context) ([]*model.Order, error) {
	orders, err := uc.repo.Order().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list orders")
	}
	return orders, nil
}

// ListUserOrders returns all orders of a user, newest first
func (uc *OrderUseCase) ListUserOrders(ctx context.Context, userID string) ([]*model.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "user ID is required")
	}

	orders, err := uc.repo.Order().ListByUserID(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list user orders", goerr.V(UserIDKey, userID))
	}
	return orders, nil
}

// GetOrderHistory returns up to limit of the newest orders of a user. A non-positive limit
// uses DefaultHistoryLimit.
func (uc *OrderUseCase) GetOrderHistory(ctx context.Context, userID string, limit int) ([]*model.Order, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	orders, err := uc.ListUserOrders(ctx, userID)
	if err != nil {
		return nil, err
	}
	return truncate(orders, limit), nil
}

// GetOrderSummaries aggregates the user's orders per product, ordered by descending total quantity
func (uc *OrderUseCase) GetOrderSummaries(ctx context.Context, userID string) ([]*model.OrderSummary, error) {
	orders, err := uc.ListUserOrders(ctx, userID)
	if err != nil {
		return nil, err
	}
	return model.SummarizeOrders(orders), nil
}
