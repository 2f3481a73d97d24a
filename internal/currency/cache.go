package currency

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	countryKeyPrefix = "currency:country:"
	ratesKey         = "currency:rates:" + BaseCurrency
)

// CachedLocator caches country lookups per address in Redis for ttl.
// Cache failures are logged and the lookup falls through to next.
func CachedLocator(next Locator, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) Locator {
	return &cachedLocator{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

type cachedLocator struct {
	next   Locator
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func (c *cachedLocator) Country(ctx context.Context, ip string) (string, error) {
	if ip == "" {
		return c.next.Country(ctx, ip)
	}

	key := countryKeyPrefix + ip
	country, err := c.rdb.Get(ctx, key).Result()
	if err == nil && IsCountryCode(country) {
		return country, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn("Failed to read cached country", zap.Error(err))
	}

	country, err = c.next.Country(ctx, ip)
	if err != nil {
		return "", err
	}
	if err := c.rdb.Set(ctx, key, country, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to cache country", zap.Error(err))
	}
	return country, nil
}

// CachedRates caches the rate table in Redis for ttl.
func CachedRates(next RateSource, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) RateSource {
	return &cachedRates{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

type cachedRates struct {
	next   RateSource
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func (c *cachedRates) Rates(ctx context.Context) (Rates, error) {
	data, err := c.rdb.Get(ctx, ratesKey).Bytes()
	switch {
	case err == nil:
		var rates Rates
		if err := json.Unmarshal(data, &rates); err == nil && len(rates) > 0 {
			return rates, nil
		}
		c.logger.Warn("Discarding malformed cached rate table")
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Failed to read cached rate table", zap.Error(err))
	}

	rates, err := c.next.Rates(ctx)
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(rates)
	if err == nil {
		err = c.rdb.Set(ctx, ratesKey, data, c.ttl).Err()
	}
	if err != nil {
		c.logger.Warn("Failed to cache rate table", zap.Error(err))
	}
	return rates, nil
}
