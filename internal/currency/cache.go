package currency

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/guttosm/freightrates/internal/logger"
	"github.com/guttosm/freightrates/internal/metrics"
	"github.com/redis/go-redis/v9"
)

const ratesCacheKey = "freightrates:exchange_rates:latest"

// RedisCache fronts another RateSource and keeps the last table in Redis for
// ttl. Redis faults degrade to the wrapped source.
type RedisCache struct {
	rdb  *redis.Client
	next RateSource
	ttl  time.Duration
}

func NewRedisCache(rdb *redis.Client, next RateSource, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCache{rdb: rdb, next: next, ttl: ttl}
}

// Rates implements RateSource.
func (c *RedisCache) Rates(ctx context.Context) (RateTable, error) {
	log := logger.Component("currency")

	data, err := c.rdb.Get(ctx, ratesCacheKey).Bytes()
	switch {
	case err == nil:
		var table RateTable
		if jerr := json.Unmarshal(data, &table); jerr == nil && len(table) > 0 {
			metrics.ExchangeRateLookupsTotal.WithLabelValues("cache", "hit").Inc()
			return table, nil
		}
		log.Warn().Msg("discarding undecodable cached rate table")
	case errors.Is(err, redis.Nil):
		metrics.ExchangeRateLookupsTotal.WithLabelValues("cache", "miss").Inc()
	default:
		metrics.ExchangeRateLookupsTotal.WithLabelValues("cache", "error").Inc()
		log.Warn().Err(err).Msg("rate cache read failed, using upstream")
	}

	table, err := c.next.Rates(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(table); err == nil {
		if err := c.rdb.Set(ctx, ratesCacheKey, payload, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Msg("rate cache write failed")
		}
	}
	return table, nil
}
