package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// newClockedCache returns a cache whose clock only moves when advance is called.
func newClockedCache(t *testing.T, defaultTTL time.Duration, maxEntries int) (*MemoryCache, func(time.Duration)) {
	t.Helper()
	c := NewMemoryCache(defaultTTL, maxEntries, 0)
	t.Cleanup(func() { _ = c.Close() })

	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, func(d time.Duration) { now = now.Add(d) }
}

func TestMemoryCache_RevocationExpiresWithTTL(t *testing.T) {
	c, advance := newClockedCache(t, time.Hour, 0)
	ctx := context.Background()

	if err := c.Set(ctx, "revoked:abc", []byte("1"), 15*time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	advance(14 * time.Minute)
	if _, err := c.Get(ctx, "revoked:abc"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	advance(time.Minute)
	if _, err := c.Get(ctx, "revoked:abc"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get at expiry: err = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_DefaultTTL(t *testing.T) {
	ctx := context.Background()

	t.Run("falls back to default", func(t *testing.T) {
		c, advance := newClockedCache(t, time.Minute, 0)
		_ = c.Set(ctx, "k", []byte("v"), 0)
		advance(time.Minute)
		if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("err = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("zero default never expires", func(t *testing.T) {
		c, advance := newClockedCache(t, 0, 0)
		_ = c.Set(ctx, "k", []byte("v"), 0)
		advance(24 * 365 * time.Hour)
		if _, err := c.Get(ctx, "k"); err != nil {
			t.Errorf("Get: %v", err)
		}
	})
}

func TestMemoryCache_ValuesAreCopied(t *testing.T) {
	c, _ := newClockedCache(t, time.Hour, 0)
	ctx := context.Background()

	in := []byte("sitemap")
	_ = c.Set(ctx, "seo:sitemap", in, 0)
	in[0] = 'X'

	out, _ := c.Get(ctx, "seo:sitemap")
	if string(out) != "sitemap" {
		t.Fatalf("stored value changed with caller slice: %q", out)
	}
	out[0] = 'Y'
	again, _ := c.Get(ctx, "seo:sitemap")
	if string(again) != "sitemap" {
		t.Errorf("stored value changed with returned slice: %q", again)
	}
}

func TestMemoryCache_EvictsSoonestExpiry(t *testing.T) {
	c, _ := newClockedCache(t, 0, 3)
	ctx := context.Background()

	_ = c.Set(ctx, "forever", []byte("1"), 0)
	_ = c.Set(ctx, "long", []byte("2"), time.Hour)
	_ = c.Set(ctx, "short", []byte("3"), time.Minute)

	// Overwriting an existing key never evicts.
	_ = c.Set(ctx, "long", []byte("2b"), time.Hour)
	if got := c.Stats(ctx).Items; got != 3 {
		t.Fatalf("items after overwrite = %d, want 3", got)
	}

	_ = c.Set(ctx, "new", []byte("4"), time.Hour)
	if _, err := c.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("soonest-expiring entry should be evicted, err = %v", err)
	}
	for _, k := range []string{"forever", "long", "new"} {
		if _, err := c.Get(ctx, k); err != nil {
			t.Errorf("Get(%q): %v", k, err)
		}
	}
}

func TestMemoryCache_FullCacheSweepsExpiredFirst(t *testing.T) {
	c, advance := newClockedCache(t, 0, 2)
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), time.Minute)
	_ = c.Set(ctx, "b", []byte("2"), time.Hour)
	advance(2 * time.Minute)

	_ = c.Set(ctx, "c", []byte("3"), 2*time.Hour)
	if _, err := c.Get(ctx, "b"); err != nil {
		t.Errorf("live entry evicted while an expired one was present: %v", err)
	}
}

func TestMemoryCache_StatsAndPing(t *testing.T) {
	c, _ := newClockedCache(t, time.Hour, 0)
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_, _ = c.Get(ctx, "a")
	_, _ = c.Get(ctx, "a")
	_, _ = c.Get(ctx, "a")
	_, _ = c.Get(ctx, "missing")

	s := c.Stats(ctx)
	if s.Hits != 3 || s.Misses != 1 || s.Items != 1 {
		t.Errorf("stats = %+v, want 3 hits, 1 miss, 1 item", s)
	}
	if s.HitRate != 75 {
		t.Errorf("hit rate = %v, want 75", s.HitRate)
	}

	if err := c.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
	_ = c.Close()
	if err := c.Ping(ctx); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Ping after Close: err = %v, want ErrCacheClosed", err)
	}
	if err := c.Set(ctx, "a", []byte("1"), 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Set after Close: err = %v, want ErrCacheClosed", err)
	}
	if _, err := c.Get(ctx, "a"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get after Close: err = %v, want ErrCacheClosed", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := NewMemoryCache(time.Minute, 50, time.Millisecond)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				key := fmt.Sprintf("k%d", (g*200+i)%80)
				_ = c.Set(ctx, key, []byte(key), 0)
				_, _ = c.Get(ctx, key)
				if i%10 == 0 {
					_ = c.Delete(ctx, key)
				}
			}
		}()
	}
	wg.Wait()

	if n := c.Stats(ctx).Items; n > 50 {
		t.Errorf("items = %d, exceeds max entries 50", n)
	}
}
