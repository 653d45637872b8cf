package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// IdempotencyGuard remembers request keys in Redis so a retried mutation is
// not applied twice.
type IdempotencyGuard struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewIdempotencyGuard(rdb redis.Cmdable, ttl time.Duration) *IdempotencyGuard {
	return &IdempotencyGuard{rdb: rdb, ttl: ttl}
}

// Claim reserves key for one operation. The returned release must be called
// when the operation fails so the caller can retry with the same key. An
// empty key, or a nil guard, claims nothing.
func (g *IdempotencyGuard) Claim(ctx context.Context, key string) (release func(context.Context), err error) {
	if g == nil || key == "" {
		return func(context.Context) {}, nil
	}

	redisKey := fmt.Sprintf("idempotent-key:%s", key)
	ok, err := g.rdb.SetNX(ctx, redisKey, "exists", g.ttl).Result()
	if err != nil {
		logger.Error().Err(err).Msgf("Error claiming idempotency key %s", key)
		return nil, internalError("Error while checking request key.", err)
	}
	if !ok {
		logger.Warn().Msgf("Idempotency key %s already used", key)
		return nil, conflict("Request was already processed.")
	}

	return func(ctx context.Context) {
		if err := g.rdb.Del(ctx, redisKey).Err(); err != nil {
			logger.Error().Err(err).Msgf("Error releasing idempotency key %s", key)
		}
	}, nil
}
