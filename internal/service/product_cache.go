package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"restaurant-pos/internal/entity"
)

const productsCacheKey = "products:all"

// ProductCache keeps the full product list, ingredients included, in Redis.
// Cache failures are logged and treated as a miss.
type ProductCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewProductCache(rdb redis.Cmdable, ttl time.Duration) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: ttl}
}

func (c *ProductCache) get(ctx context.Context) ([]entity.Product, bool) {
	if c == nil {
		return nil, false
	}
	cached, err := c.rdb.Get(ctx, productsCacheKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Error().Err(err).Msg("Error getting products from cache")
		}
		return nil, false
	}

	var products []entity.Product
	if err := json.Unmarshal([]byte(cached), &products); err != nil {
		logger.Error().Err(err).Msg("Error unmarshalling cached products")
		return nil, false
	}
	return products, true
}

func (c *ProductCache) set(ctx context.Context, products []entity.Product) {
	if c == nil {
		return
	}
	value, err := json.Marshal(products)
	if err != nil {
		logger.Error().Err(err).Msg("Error marshalling products for cache")
		return
	}
	if err := c.rdb.Set(ctx, productsCacheKey, value, c.ttl).Err(); err != nil {
		logger.Error().Err(err).Msg("Error setting products in cache")
	}
}

// invalidate drops the cached list after any catalog write.
func (c *ProductCache) invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, productsCacheKey).Err(); err != nil {
		logger.Error().Err(err).Msg("Error deleting products from cache")
	}
}
