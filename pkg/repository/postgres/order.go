package postgres

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
	"gorm.io/gorm"
)

type orderRow struct {
	ID             string    `gorm:"primaryKey;type:uuid"`
	UserID         string    `gorm:"size:255;not null;index:idx_orders_user_created,priority:1"`
	RestaurantName string    `gorm:"size:255;not null"`
	ProductName    string    `gorm:"size:255;not null"`
	ProductID      *string   `gorm:"type:uuid"`
	Quantity       int       `gorm:"not null"`
	Price          float64   `gorm:"type:numeric(10,2);not null"`
	CreatedAt      time.Time `gorm:"not null;index:idx_orders_user_created,priority:2,sort:desc"`
}

func (orderRow) TableName() string {
	return "orders"
}

func toOrderRow(o *model.Order) *orderRow {
	row := &orderRow{
		ID:             string(o.ID),
		UserID:         o.UserID,
		RestaurantName: o.RestaurantName,
		ProductName:    o.ProductName,
		Quantity:       o.Quantity,
		Price:          o.Price,
		CreatedAt:      o.CreatedAt,
	}
	if o.ProductID != "" {
		id := o.ProductID.String()
		row.ProductID = &id
	}
	return row
}

func fromOrderRow(row *orderRow) *model.Order {
	o := &model.Order{
		ID:             model.OrderID(row.ID),
		UserID:         row.UserID,
		RestaurantName: row.RestaurantName,
		ProductName:    row.ProductName,
		Quantity:       row.Quantity,
		Price:          row.Price,
		CreatedAt:      row.CreatedAt,
	}
	if row.ProductID != nil {
		o.ProductID = model.ProductID(*row.ProductID)
	}
	return o
}

type orderRepository struct {
	db *gorm.DB
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

	if err := r.db.WithContext(ctx).Create(toOrderRow(created)).Error; err != nil {
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
	created := make([]*model.Order, 0, len(orders))
	rows := make([]*orderRow, 0, len(orders))
	for _, o := range orders {
		c := prepareOrder(o, now)
		created = append(created, c)
		rows = append(rows, toOrderRow(c))
	}

	if err := r.db.WithContext(ctx).CreateInBatches(rows, 500).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to create orders", goerr.V("count", len(rows)))
	}

	return created, nil
}

func (r *orderRepository) List(ctx context.Context) ([]*model.Order, error) {
	var rows []*orderRow
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list orders")
	}
	return fromOrderRows(rows), nil
}

func (r *orderRepository) ListByUserID(ctx context.Context, userID string) ([]*model.Order, error) {
	var rows []*orderRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list orders by user", goerr.V(model.UserIDKey, userID))
	}
	return fromOrderRows(rows), nil
}

func fromOrderRows(rows []*orderRow) []*model.Order {
	orders := make([]*model.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, fromOrderRow(row))
	}
	return orders
}
