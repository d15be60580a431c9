// Package cache provides memo stores for expression service results.
//
// Every operation is a pure function of its request, so a cached result is
// always the result a fresh computation would produce.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/njchilds90/symcalc/internal/service"
)

// ============================================================
// In-process LRU
// ============================================================

// LRU keeps the most recently used results in memory.
type LRU struct {
	entries *lru.Cache[string, service.Result]
}

var _ service.Cache = (*LRU)(nil)

// NewLRU returns a cache holding at most size results.
func NewLRU(size int) (*LRU, error) {
	entries, err := lru.New[string, service.Result](size)
	if err != nil {
		return nil, fmt.Errorf("lru cache: %w", err)
	}
	return &LRU{entries: entries}, nil
}

func (c *LRU) Get(_ context.Context, key string) (service.Result, bool) {
	return c.entries.Get(key)
}

func (c *LRU) Set(_ context.Context, key string, r service.Result) {
	c.entries.Add(key, r)
}

// Len reports the number of cached results.
func (c *LRU) Len() int { return c.entries.Len() }

// ============================================================
// Redis
// ============================================================

const keyPrefix = "symcalc:result:"

// Redis shares results between server instances. Redis failures are
// logged and treated as misses; they never fail a request.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger logrus.FieldLogger
}

var _ service.Cache = (*Redis)(nil)

// NewRedis wraps client. A ttl of zero keeps entries until evicted.
func NewRedis(client *redis.Client, ttl time.Duration, logger logrus.FieldLogger) *Redis {
	return &Redis{client: client, ttl: ttl, logger: logger}
}

// DialRedis connects to addr and pings it.
func DialRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (c *Redis) Get(ctx context.Context, key string) (service.Result, bool) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return service.Result{}, false
	}
	if err != nil {
		c.logger.WithError(err).Warn("redis cache get failed")
		return service.Result{}, false
	}
	var r service.Result
	if err := json.Unmarshal(data, &r); err != nil {
		c.logger.WithError(err).Warn("redis cache entry is corrupt")
		return service.Result{}, false
	}
	return r, true
}

func (c *Redis) Set(ctx context.Context, key string, r service.Result) {
	data, err := json.Marshal(r)
	if err != nil {
		c.logger.WithError(err).Warn("redis cache encode failed")
		return
	}
	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).Warn("redis cache set failed")
	}
}
