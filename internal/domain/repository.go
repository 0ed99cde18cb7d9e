package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogClient defines the interface for interacting with the grocery catalog API
type CatalogClient interface {
	NearestLocation(ctx context.Context, zipCode string) (*Location, error)
	SearchProducts(ctx context.Context, query ProductQuery) (*ProductsResponse, error)
	ProductDetails(ctx context.Context, productID, locationID string) (*Product, error)
}

// ProductQuery is one page of a product search. Term may be empty.
type ProductQuery struct {
	Term       string
	LocationID string
	Start      int
	Limit      int
}
