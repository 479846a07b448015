package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestCache(t *testing.T) *CacheService {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheServiceWithClient(client, nil)
}

func TestSetGetRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	in := doc{Name: "garden", Count: 3}
	if err := c.Set(ctx, "k", in, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var out doc
	if err := c.Get(ctx, "k", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != in {
		t.Fatalf("round trip = %+v, want %+v", out, in)
	}
}

func TestGetMissLeavesDestUntouched(t *testing.T) {
	c := newTestCache(t)
	var out doc
	if err := c.Get(context.Background(), "absent", &out); err != nil {
		t.Fatalf("get miss: %v", err)
	}
	if out != (doc{}) {
		t.Fatalf("miss mutated dest: %+v", out)
	}
}

func TestDel(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	if err := c.Set(ctx, "k", doc{Name: "x"}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	var out doc
	if err := c.Get(ctx, "k", &out); err != nil {
		t.Fatalf("get after del: %v", err)
	}
	if out.Name != "" {
		t.Fatalf("key survived delete: %+v", out)
	}
}
