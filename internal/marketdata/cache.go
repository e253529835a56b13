package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tmsentinel/market-sentinel/internal/config"
	"github.com/tmsentinel/market-sentinel/internal/models"
)

// Cache stores indicator snapshots in Redis so repeated cycles inside the
// TTL reuse the same market view instead of refetching.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache connects to Redis and verifies the connection.
func NewCache(cfg config.RedisConfig) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{
		rdb: rdb,
		ttl: time.Duration(cfg.TTLSeconds) * time.Second,
	}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

// GetSnapshot returns the cached snapshot for a ticker, or nil on a miss.
func (c *Cache) GetSnapshot(ctx context.Context, ticker string) (*models.IndicatorSnapshot, error) {
	data, err := c.rdb.Get(ctx, snapshotKey(ticker)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached snapshot: %w", err)
	}

	var snap models.IndicatorSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached snapshot: %w", err)
	}
	return &snap, nil
}

// SetSnapshot caches a snapshot with the configured TTL.
func (c *Cache) SetSnapshot(ctx context.Context, snap *models.IndicatorSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return c.rdb.Set(ctx, snapshotKey(snap.Ticker), data, c.ttl).Err()
}

func snapshotKey(ticker string) string {
	return "sentinel:snapshot:" + ticker
}
