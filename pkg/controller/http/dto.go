package http

import (
	"time"

	"github.com/secmon-lab/foodrec/pkg/domain/model"
)

type healthResponse struct {
	Status string `json:"status"`
}

type productRequest struct {
	RestaurantName string `json:"restaurant_name" validate:"required"`
	ProductName    string `json:"product_name" validate:"required"`
	Description    string `json:"description" validate:"required"`
}

type productBulkRequest struct {
	Products []productRequest `json:"products" validate:"required,min=1,dive"`
}

type productResponse struct {
	ID             string    `json:"id"`
	RestaurantName string    `json:"restaurant_name"`
	ProductName    string    `json:"product_name"`
	Description    string    `json:"description"`
	HasEmbedding   bool      `json:"has_embedding"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toProductResponse(p *model.Product) productResponse {
	return productResponse{
		ID:             p.ID.String(),
		RestaurantName: p.RestaurantName,
		ProductName:    p.ProductName,
		Description:    p.Description,
		HasEmbedding:   p.HasEmbedding(),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toProductResponses(products []*model.Product) []productResponse {
	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}
	return resp
}

type orderRequest struct {
	UserID         string  `json:"user_id" validate:"required"`
	RestaurantName string  `json:"restaurant_name" validate:"required"`
	ProductName    string  `json:"product_name" validate:"required"`
	ProductID      string  `json:"product_id,omitempty" validate:"omitempty,uuid"`
	Quantity       int     `json:"quantity" validate:"required,min=1"`
	Price          float64 `json:"price" validate:"required,gt=0"`
}

func (req orderRequest) toModel() *model.Order {
	return &model.Order{
		UserID:         req.UserID,
		RestaurantName: req.RestaurantName,
		ProductName:    req.ProductName,
		ProductID:      model.ProductID(req.ProductID),
		Quantity:       req.Quantity,
		Price:          req.Price,
	}
}

type orderBulkRequest struct {
	Orders []orderRequest `json:"orders" validate:"required,min=1,dive"`
}

type orderResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	RestaurantName string    `json:"restaurant_name"`
	ProductName    string    `json:"product_name"`
	ProductID      string    `json:"product_id,omitempty"`
	Quantity       int       `json:"quantity"`
	Price          float64   `json:"price"`
	CreatedAt      time.Time `json:"created_at"`
}

func toOrderResponses(orders []*model.Order) []orderResponse {
	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = orderResponse{
			ID:             string(o.ID),
			UserID:         o.UserID,
			RestaurantName: o.RestaurantName,
			ProductName:    o.ProductName,
			ProductID:      o.ProductID.String(),
			Quantity:       o.Quantity,
			Price:          o.Price,
			CreatedAt:      o.CreatedAt,
		}
	}
	return resp
}

type orderSummaryResponse struct {
	ProductName    string  `json:"product_name"`
	RestaurantName string  `json:"restaurant_name"`
	ProductID      string  `json:"product_id,omitempty"`
	TotalQuantity  int     `json:"total_quantity"`
	AveragePrice   float64 `json:"average_price"`
	OrderCount     int     `json:"order_count"`
}

func toOrderSummaryResponses(summaries []*model.OrderSummary) []orderSummaryResponse {
	resp := make([]orderSummaryResponse, len(summaries))
	for i, s := range summaries {
		resp[i] = orderSummaryResponse{
			ProductName:    s.ProductName,
			RestaurantName: s.RestaurantName,
			ProductID:      s.ProductID.String(),
			TotalQuantity:  s.TotalQuantity,
			AveragePrice:   model.RoundPrice(s.AveragePrice),
			OrderCount:     s.OrderCount,
		}
	}
	return resp
}

// Limit is a pointer so an explicit zero is rejected instead of replaced by the default
type userRecommendRequest struct {
	Limit *int `json:"limit" validate:"omitempty,min=1"`
}

type preferenceRecommendRequest struct {
	Preference string `json:"preference" validate:"required"`
	Limit      *int   `json:"limit" validate:"omitempty,min=1"`
}

type hybridRecommendRequest struct {
	UserID     string `json:"user_id"`
	Preference string `json:"preference"`
	Limit      *int   `json:"limit" validate:"omitempty,min=1"`
}

type recommendationResponse struct {
	Product productResponse `json:"product"`
	Score   float64         `json:"score"`
	Reason  string          `json:"reason"`
	Source  string          `json:"source"`
}

type recommendationsResponse struct {
	Mode            string                   `json:"mode"`
	Count           int                      `json:"count"`
	Recommendations []recommendationResponse `json:"recommendations"`
}

func toRecommendationsResponse(mode string, recs []*model.Recommendation) recommendationsResponse {
	resp := recommendationsResponse{
		Mode:            mode,
		Count:           len(recs),
		Recommendations: make([]recommendationResponse, len(recs)),
	}
	for i, r := range recs {
		resp.Recommendations[i] = recommendationResponse{
			Product: toProductResponse(r.Product),
			Score:   r.Score,
			Reason:  r.Reason,
			Source:  r.Source.String(),
		}
	}
	return resp
}

type seedResponse struct {
	Products int `json:"products"`
	Orders   int `json:"orders"`
}
