package cache

import (
	"context"
	"testing"
	"time"
)

func TestNilCacheIsANoop(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	c.SetJSON(ctx, "treks:list", []string{"a"}, time.Minute)
	var got []string
	if c.GetJSON(ctx, "treks:list", &got) {
		t.Fatalf("nil cache should never hit")
	}
	c.Delete(ctx, "treks:list")
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestOpen_EmptyAddrDisables(t *testing.T) {
	if c := Open(context.Background(), "", "tb:"); c != nil {
		t.Fatalf("expected nil cache")
	}
	if c := New(nil, "tb:"); c != nil {
		t.Fatalf("expected nil cache for nil client")
	}
}
