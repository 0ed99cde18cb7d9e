// Package cache provides the memory and redis implementations of domain.CacheRepository.
package cache

import (
	"fmt"
	"io"

	"github.com/caloriecart/backend/internal/domain"
)

// Cache types accepted by New.
const (
	TypeMemory = "memory"
	TypeRedis  = "redis"
)

// KeyPrefix namespaces every key this application writes to redis.
const KeyPrefix = "caloriecart:"

// Repository is a cache that owns resources.
type Repository interface {
	domain.CacheRepository
	io.Closer
}

// New builds the cache selected by kind.
func New(kind, redisURL string) (Repository, error) {
	switch kind {
	case TypeMemory, "":
		return NewMemoryCache(), nil
	case TypeRedis:
		c, err := NewRedisCache(redisURL, KeyPrefix)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", kind)
	}
}
