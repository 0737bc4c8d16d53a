package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrInvalidProduct   = goerr.New("invalid product")
	ErrInvalidOrder     = goerr.New("invalid order")
	ErrInvalidEmbedding = goerr.New("invalid embedding")
)

// Context keys for error values
const (
	ProductIDKey         = "product_id"
	ProductNameKey       = "product_name"
	UserIDKey            = "user_id"
	QuantityKey          = "quantity"
	PriceKey             = "price"
	ExpectedDimensionKey = "expected_dimension"
	ActualDimensionKey   = "actual_dimension"
)

// ErrNotFound is returned by repositories when the requested entity does not exist
var ErrNotFound = goerr.New("not found")
