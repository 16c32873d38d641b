package cache

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/jeovahfialho/txagg/internal/domain"
)

const (
	keyPrefix  = "txagg:daily:"
	KeyPattern = keyPrefix + "*"
)

// DailyKey is the cache key of the total of date.
func DailyKey(date civil.Date) string {
	return keyPrefix + date.String()
}

// TotalsPublisher mirrors the totals of a run into Redis, one key per date.
// Keys of dates absent from the run are removed.
type TotalsPublisher struct {
	cache *RedisCache
}

func NewTotalsPublisher(c *RedisCache) *TotalsPublisher {
	return &TotalsPublisher{cache: c}
}

func (p *TotalsPublisher) Name() string {
	return "redis"
}

func (p *TotalsPublisher) Publish(ctx context.Context, totals []domain.DailyTotal) error {
	if err := p.cache.DeletePattern(ctx, KeyPattern); err != nil {
		return fmt.Errorf("clearing %s: %w", KeyPattern, err)
	}

	for _, t := range totals {
		if err := p.cache.Set(ctx, DailyKey(t.Date), t); err != nil {
			return err
		}
	}
	return nil
}

