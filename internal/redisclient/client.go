package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	productKeyPrefix = "product:"
	scanBatch        = 100
)

// Client caches serialized products in Redis.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient creates a new Redis client and checks the connection
func NewClient(addr, password string, db int, ttl time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewWithRedis(rdb, ttl), nil
}

// NewWithRedis wraps an existing connection.
func NewWithRedis(rdb *redis.Client, ttl time.Duration) *Client {
	return &Client{rdb: rdb, ttl: ttl}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func productKey(id uuid.UUID) string {
	return productKeyPrefix + id.String()
}

// GetProduct returns the cached product, or nil, nil on a miss.
func (c *Client) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	data, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var p models.Product
	if err := json.Unmarshal(data, &p); err != nil {
		// an unreadable entry counts as a miss and is dropped
		c.rdb.Del(ctx, productKey(id))
		return nil, nil
	}
	return &p, nil
}

// SetProduct stores p with the configured TTL.
func (c *Client) SetProduct(ctx context.Context, p *models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}
	return c.rdb.Set(ctx, productKey(p.ID), data, c.ttl).Err()
}

// DeleteProduct evicts one product.
func (c *Client) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return c.rdb.Del(ctx, productKey(id)).Err()
}

// DeleteAllProducts evicts every cached product.
func (c *Client) DeleteAllProducts(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, productKeyPrefix+"*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}

		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del failed: %w", err)
			}
		}

		if next == 0 {
			return nil
		}
		cursor = next
	}
}
