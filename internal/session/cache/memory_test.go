package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "h1", Entry{UserID: "u-1"}, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	e, ok, err := c.Get(ctx, "h1")
	if err != nil || !ok {
		t.Fatalf("Get = (%v, %v, %v), want hit", e, ok, err)
	}
	if e.UserID != "u-1" {
		t.Errorf("UserID = %q, want %q", e.UserID, "u-1")
	}
}

func TestMemoryCache_Missing(t *testing.T) {
	c := NewMemoryCache()
	if _, ok, err := c.Get(context.Background(), "nope"); ok || err != nil {
		t.Errorf("Get missing = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.nowF = func() time.Time { return now }
	ctx := context.Background()

	_ = c.Set(ctx, "h1", Entry{UserID: "u-1"}, time.Minute)
	if got := c.TTL("h1"); got != time.Minute {
		t.Errorf("TTL = %v, want 1m", got)
	}

	now = now.Add(time.Minute)
	if _, ok, _ := c.Get(ctx, "h1"); ok {
		t.Error("Get should miss once the TTL elapsed")
	}
	if got := c.TTL("h1"); got != 0 {
		t.Errorf("TTL after expiry = %v, want 0", got)
	}
}

func TestMemoryCache_DeleteAndNonPositiveTTL(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	_ = c.Set(ctx, "a", Entry{UserID: "u-1"}, time.Hour)
	_ = c.Set(ctx, "b", Entry{UserID: "u-2"}, time.Hour)

	if err := c.Delete(ctx, "a", "b", "missing"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Error("a should be deleted")
	}

	_ = c.Set(ctx, "c", Entry{UserID: "u-3"}, time.Hour)
	_ = c.Set(ctx, "c", Entry{UserID: "u-3"}, 0)
	if _, ok, _ := c.Get(ctx, "c"); ok {
		t.Error("Set with zero TTL should remove the entry")
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = c.Set(ctx, "shared", Entry{UserID: "u"}, time.Hour)
		}()
		go func() {
			defer wg.Done()
			_, _, _ = c.Get(ctx, "shared")
		}()
	}
	wg.Wait()
	if _, ok, _ := c.Get(ctx, "shared"); !ok {
		t.Error("shared entry should be present")
	}
}
