package domain

import "errors"

var (
	// ErrProductNotFound is returned when a product cannot be found in the catalog
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrLocationNotFound is returned when no store is near the configured ZIP code
	ErrLocationNotFound = errors.New("no store found near ZIP code")

	// ErrRateLimited is returned when the catalog keeps answering 429
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCatalogAPIFailure is returned when a catalog API request fails
	ErrCatalogAPIFailure = errors.New("catalog API request failed")

	// ErrAuthFailure is returned when no access token could be obtained
	ErrAuthFailure = errors.New("catalog authentication failed")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrEmptyInput is returned when a nutrition table has no rows
	ErrEmptyInput = errors.New("nutrition table is empty")

	// ErrMalformedInput is returned when a nutrition table cannot be decoded
	ErrMalformedInput = errors.New("nutrition table is malformed")
)
