package cache

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symcalc/internal/service"
)

func TestLRU_GetSet(t *testing.T) {
	c, err := NewLRU(2)
	require.NoError(t, err)
	ctx := context.Background()

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)

	c.Set(ctx, "a", service.Ok("[2]"))
	r, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, "[2]", r.Value)
}

func TestLRU_Evicts(t *testing.T) {
	c, err := NewLRU(2)
	require.NoError(t, err)
	ctx := context.Background()

	c.Set(ctx, "a", service.Ok("1"))
	c.Set(ctx, "b", service.Ok("2"))
	c.Get(ctx, "a")
	c.Set(ctx, "c", service.Ok("3"))

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(ctx, "b")
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = c.Get(ctx, "a")
	assert.True(t, ok)
}

func TestLRU_RejectsBadSize(t *testing.T) {
	_, err := NewLRU(0)
	assert.Error(t, err)
}

func TestLRU_WithService(t *testing.T) {
	c, err := NewLRU(16)
	require.NoError(t, err)
	s := service.New(service.CAS{}, service.WithCache(c))

	first := s.Solve(context.Background(), "2*x + 3 = 7", "")
	second := s.Solve(context.Background(), "2*x + 3 = 7", "")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.Len())
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// redisClient connects to SYMCALC_TEST_REDIS_ADDR or skips the test.
func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("SYMCALC_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SYMCALC_TEST_REDIS_ADDR not set")
	}
	client, err := DialRedis(context.Background(), addr, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedis_RoundTrip(t *testing.T) {
	client := redisClient(t)
	c := NewRedis(client, time.Minute, quietLogger())
	ctx := context.Background()
	key := service.CacheKey(service.Request{Op: service.OpSolve, Text: "2x+", Variable: "x"})
	t.Cleanup(func() { client.Del(ctx, keyPrefix+key) })

	want := service.Err(service.ParseError, "unexpected end of expression")
	c.Set(ctx, key, want)
	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestRedis_UnreachableIsMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	c := NewRedis(client, time.Minute, quietLogger())

	c.Set(context.Background(), "k", service.Ok("1"))
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestDialRedis_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err := DialRedis(ctx, "127.0.0.1:1", 0)
	assert.Error(t, err)
}
