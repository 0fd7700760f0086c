package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wyfcoding/optionselector/internal/selection/domain"
)

// SelectionRedisCache 按标的缓存最近一次选择结果
type SelectionRedisCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewSelectionRedisCache(client redis.UniversalClient) *SelectionRedisCache {
	return &SelectionRedisCache{
		client: client,
		prefix: "selection:latest:",
		ttl:    15 * time.Minute,
	}
}

func (c *SelectionRedisCache) SetLatest(ctx context.Context, record *domain.SelectionRecord) error {
	if record == nil {
		return nil
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal selection record: %w", err)
	}
	return c.client.Set(ctx, c.key(record.Symbol), data, c.ttl).Err()
}

func (c *SelectionRedisCache) GetLatest(ctx context.Context, symbol string) (*domain.SelectionRecord, error) {
	if symbol == "" {
		return nil, nil
	}
	data, err := c.client.Get(ctx, c.key(symbol)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get selection record from redis: %w", err)
	}
	var record domain.SelectionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal selection record: %w", err)
	}
	return &record, nil
}

func (c *SelectionRedisCache) key(symbol string) string {
	return c.prefix + symbol
}
