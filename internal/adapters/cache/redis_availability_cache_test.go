package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testAvailabilityCache(t *testing.T) (*RedisAvailabilityCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisAvailabilityCache(client), mr
}

func TestAvailabilityCacheRoundTrip(t *testing.T) {
	c, _ := testAvailabilityCache(t)
	ctx := context.Background()

	if err := c.PutMany(ctx, map[int64]int64{1: 10, 2: 0, 3: 7}); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := c.GetMany(ctx, []int64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	if got[1] != 10 || got[2] != 0 || got[3] != 7 {
		t.Fatalf("cached values = %v", got)
	}
	if _, ok := got[4]; ok {
		t.Fatal("uncached id must be absent from the result")
	}
}

func TestAvailabilityCacheEntriesExpire(t *testing.T) {
	c, mr := testAvailabilityCache(t)
	ctx := context.Background()

	if err := c.PutMany(ctx, map[int64]int64{1: 10}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if got := mr.TTL("stock:1"); got != availabilityTTL {
		t.Fatalf("ttl = %s, want %s", got, availabilityTTL)
	}

	mr.FastForward(availabilityTTL + time.Second)
	got, err := c.GetMany(ctx, []int64{1})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expired entry still cached: %v", got)
	}
}

func TestAvailabilityCacheSkipsGarbageEntries(t *testing.T) {
	c, mr := testAvailabilityCache(t)
	mr.Set("stock:9", "not-a-number")

	got, err := c.GetMany(context.Background(), []int64{9})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("garbage entry surfaced: %v", got)
	}
}
