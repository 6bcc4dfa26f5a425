package weather

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/gazetteer"
)

const (
	DefaultCacheTTL = 30 * 24 * time.Hour
	cachePrefix     = "weather:"
)

// CachedSummarizer keeps summaries in Redis. Archive data for a past day does
// not change, so hits are served without touching the upstream API. Redis
// errors degrade to a direct call.
type CachedSummarizer struct {
	next   Summarizer
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

var _ Summarizer = (*CachedSummarizer)(nil)

func NewCachedSummarizer(next Summarizer, rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *CachedSummarizer {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSummarizer{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func CacheKey(date time.Time, place string) string {
	return cachePrefix + date.Format("2006-01-02") + ":" + gazetteer.Normalize(place)
}

func (c *CachedSummarizer) Summarize(ctx context.Context, date time.Time, place string) (string, error) {
	key := CacheKey(date, place)

	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("weather cache read failed", zap.String("key", key), zap.Error(err))
	}

	summary, err := c.next.Summarize(ctx, date, place)
	if err != nil {
		return "", err
	}
	if err := c.rdb.Set(ctx, key, summary, c.ttl).Err(); err != nil {
		c.logger.Warn("weather cache write failed", zap.String("key", key), zap.Error(err))
	}
	return summary, nil
}
