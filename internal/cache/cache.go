// Package cache keeps rendered session views in Redis and drops them when
// a new session is written.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "mockprep:"

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Cache stores JSON views with a TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps an existing client.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, opts Options) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", opts.Addr, err)
	}
	return New(client, opts.TTL), nil
}

// Close closes the client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// A user's list view lives under a generation number. Invalidation moves to
// the next generation, so a fill that read the database before a write can
// only land on a retired key, which then expires.
func listGenKey(userID string) string { return keyPrefix + "sessions-gen:" + userID }

func sessionsKey(userID string, gen int64) string {
	return fmt.Sprintf("%ssessions:%s:%d", keyPrefix, userID, gen)
}

func sessionKey(sessionID string) string { return keyPrefix + "session:" + sessionID }

// listGen returns the user's current list generation, 0 when none is set.
func (c *Cache) listGen(ctx context.Context, userID string) (int64, error) {
	gen, err := c.client.Get(ctx, listGenKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// InvalidateSessions retires the user's session list view.
func (c *Cache) InvalidateSessions(ctx context.Context, userID string) error {
	return c.client.Incr(ctx, listGenKey(userID)).Err()
}

// InvalidateSession drops a session detail view.
func (c *Cache) InvalidateSession(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, sessionKey(sessionID)).Err()
}

// get decodes the cached value at key into v. It reports false on a miss.
func (c *Cache) get(ctx context.Context, key string, v any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
}

// ttlWithJitter spreads expiry by up to 10% so views written together do
// not expire together.
func (c *Cache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitter := time.Duration(rand.Int64N(int64(c.ttl)/10 + 1))
	return c.ttl + jitter
}

// Nop is an invalidator for deployments without Redis.
type Nop struct{}

func (Nop) InvalidateSessions(context.Context, string) error { return nil }

func (Nop) InvalidateSession(context.Context, string) error { return nil }
