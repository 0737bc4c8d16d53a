package model

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// OrderID is a UUID-based identifier for Order
type OrderID string

// NewOrderID generates a new UUID v4 OrderID
func NewOrderID() OrderID {
	return OrderID(uuid.New().String())
}

// Order is a single purchase made by a user. Orders are immutable once created.
//
// RestaurantName and ProductName identify the purchased product by name. ProductID is an
// optional explicit reference; orders recorded without it are matched by name only.
type Order struct {
	ID             OrderID
	UserID         string
	RestaurantName string
	ProductName    string
	ProductID      ProductID
	Quantity       int
	Price          float64
	CreatedAt      time.Time
}

// Validate checks the order fields
func (o *Order) Validate() error {
	if strings.TrimSpace(o.UserID) == "" {
		return goerr.Wrap(ErrInvalidOrder, "user ID is required")
	}
	if strings.TrimSpace(o.RestaurantName) == "" {
		return goerr.Wrap(ErrInvalidOrder, "restaurant name is required", goerr.V(UserIDKey, o.UserID))
	}
	if strings.TrimSpace(o.ProductName) == "" {
		return goerr.Wrap(ErrInvalidOrder, "product name is required", goerr.V(UserIDKey, o.UserID))
	}
	if o.Quantity < 1 {
		return goerr.Wrap(ErrInvalidOrder, "quantity must be positive",
			goerr.V(UserIDKey, o.UserID),
			goerr.V(QuantityKey, o.Quantity))
	}
	if o.Price <= 0 || math.IsNaN(o.Price) || math.IsInf(o.Price, 0) {
		return goerr.Wrap(ErrInvalidOrder, "price must be positive",
			goerr.V(UserIDKey, o.UserID),
			goerr.V(PriceKey, o.Price))
	}
	return nil
}

// RoundPrice rounds a price to cents
func RoundPrice(price float64) float64 {
	return math.Round(price*100) / 100
}

// OrderSummary aggregates all orders of one user for a single (product, restaurant) pair.
// It is derived on demand and never persisted.
type OrderSummary struct {
	ProductName    string
	RestaurantName string
	// ProductID is set only when every order in the group referenced the same product
	ProductID     ProductID
	TotalQuantity int
	AveragePrice  float64
	OrderCount    int
}

type summaryKey struct {
	productName    string
	restaurantName string
}

// SummarizeOrders groups orders by (product name, restaurant name), sums quantities and averages
// prices. The result is ordered by descending total quantity; ties are ordered by restaurant name
// and then product name so the output is stable for identical input.
func SummarizeOrders(orders []*Order) []*OrderSummary {
	if len(orders) == 0 {
		return []*OrderSummary{}
	}

	groups := make(map[summaryKey]*OrderSummary)
	priceSums := make(map[summaryKey]float64)
	mixedRefs := make(map[summaryKey]bool)

	for _, o := range orders {
		key := summaryKey{productName: o.ProductName, restaurantName: o.RestaurantName}
		s, ok := groups[key]
		if !ok {
			s = &OrderSummary{
				ProductName:    o.ProductName,
				RestaurantName: o.RestaurantName,
				ProductID:      o.ProductID,
			}
			groups[key] = s
		} else if s.ProductID != o.ProductID {
			mixedRefs[key] = true
		}

		s.TotalQuantity += o.Quantity
		s.OrderCount++
		priceSums[key] += o.Price
	}

	summaries := make([]*OrderSummary, 0, len(groups))
	for key, s := range groups {
		s.AveragePrice = priceSums[key] / float64(s.OrderCount)
		if mixedRefs[key] {
			s.ProductID = ""
		}
		summaries = append(summaries, s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if a.TotalQuantity != b.TotalQuantity {
			return a.TotalQuantity > b.TotalQuantity
		}
		if a.RestaurantName != b.RestaurantName {
			return a.RestaurantName < b.RestaurantName
		}
		return a.ProductName < b.ProductName
	})

	return summaries
}

// PreferenceText builds the free-text description of a purchase history that is embedded for
// history-based recommendation: "{restaurant} {product}" for each summary, in order.
func PreferenceText(summaries []*OrderSummary) string {
	parts := make([]string, 0, len(summaries))
	for _, s := range summaries {
		parts = append(parts, s.RestaurantName+" "+s.ProductName)
	}
	return strings.Join(parts, " ")
}
