// Package cache keeps a compressed snapshot of the catalog in Redis so every
// instance serves the same rows without hitting the database on each request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang/snappy"
	"github.com/railzwaylabs/pricecalc/internal/catalog/domain"
	"github.com/railzwaylabs/pricecalc/internal/config"
	"github.com/redis/go-redis/v9"
)

const snapshotKey = "pricecalc:catalog:snapshot:v1"

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New returns a Redis backed cache, or a no-op cache when Redis is disabled.
func New(client *redis.Client, cfg config.Config) domain.Cache {
	if client == nil {
		return noopCache{}
	}
	return NewRedis(client, cfg.Catalog.CacheTTL)
}

func NewRedis(client *redis.Client, ttl time.Duration) domain.Cache {
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context) ([]domain.Item, bool, error) {
	raw, err := c.client.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read catalog snapshot: %w", err)
	}

	decoded, err := snappy.Decode(nil, raw)
	if err != nil {
		return nil, false, fmt.Errorf("decompress catalog snapshot: %w", err)
	}
	var items []domain.Item
	if err := json.Unmarshal(decoded, &items); err != nil {
		return nil, false, fmt.Errorf("decode catalog snapshot: %w", err)
	}
	return items, true, nil
}

func (c *redisCache) Set(ctx context.Context, items []domain.Item) error {
	if items == nil {
		items = []domain.Item{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode catalog snapshot: %w", err)
	}
	return c.client.Set(ctx, snapshotKey, snappy.Encode(nil, payload), c.ttl).Err()
}

func (c *redisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, snapshotKey).Err()
}

type noopCache struct{}

func (noopCache) Get(context.Context) ([]domain.Item, bool, error) { return nil, false, nil }
func (noopCache) Set(context.Context, []domain.Item) error         { return nil }
func (noopCache) Invalidate(context.Context) error                 { return nil }
