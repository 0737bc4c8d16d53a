package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
)

func runOrderRepositoryTest(t *testing.T, newRepo repositoryFactory) {
	t.Helper()

	t.Run("Create and ListByUserID newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		userID := fmt.Sprintf("user-%d", time.Now().UnixNano())
		base := time.Now().UTC().Truncate(time.Millisecond)
		productID := model.NewProductID()

		first, err := repo.Order().Create(ctx, &model.Order{
			UserID:         userID,
			RestaurantName: "McDonald's",
			ProductName:    "Big Mac",
			ProductID:      productID,
			Quantity:       2,
			Price:          5.99,
			CreatedAt:      base.Add(-time.Hour),
		})
		gt.NoError(t, err).Required()
		gt.S(t, string(first.ID)).NotEqual("")

		second, err := repo.Order().Create(ctx, &model.Order{
			UserID:         userID,
			RestaurantName: "McDonald's",
			ProductName:    "McFlurry",
			Quantity:       1,
			Price:          3.49,
			CreatedAt:      base,
		})
		gt.NoError(t, err).Required()

		orders, err := repo.Order().ListByUserID(ctx, userID)
		gt.NoError(t, err).Required()
		gt.A(t, orders).Length(2)
		gt.V(t, orders[0].ID).Equal(second.ID)
		gt.V(t, orders[1].ID).Equal(first.ID)
		gt.V(t, orders[1].ProductID).Equal(productID)
		gt.V(t, orders[0].ProductID).Equal(model.ProductID(""))
		gt.N(t, orders[1].Quantity).Equal(2)
		gt.B(t, orders[1].Price > 5.98 && orders[1].Price < 6.0).True()
	})

	t.Run("ListByUserID returns empty for unknown user", func(t *testing.T) {
		repo := newRepo(t)
		orders, err := repo.Order().ListByUserID(context.Background(), fmt.Sprintf("nobody-%d", time.Now().UnixNano()))
		gt.NoError(t, err).Required()
		gt.B(t, orders != nil).True()
		gt.A(t, orders).Length(0)
	})

	t.Run("CreateBatch stores all orders", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		userID := fmt.Sprintf("user-%d", time.Now().UnixNano())
		input := make([]*model.Order, 0, 5)
		for i := 0; i < 5; i++ {
			input = append(input, &model.Order{
				UserID:         userID,
				RestaurantName: "Domino's",
				ProductName:    fmt.Sprintf("Pizza %d", i),
				Quantity:       i + 1,
				Price:          9.99,
			})
		}

		created, err := repo.Order().CreateBatch(ctx, input)
		gt.NoError(t, err).Required()
		gt.A(t, created).Length(5)

		orders, err := repo.Order().ListByUserID(ctx, userID)
		gt.NoError(t, err).Required()
		gt.A(t, orders).Length(5)

		all, err := repo.Order().List(ctx)
		gt.NoError(t, err).Required()
		gt.N(t, len(all)).GreaterOrEqual(5)
	})
}

func TestOrderRepository(t *testing.T) {
	forEachBackend(t, runOrderRepositoryTest)
}
