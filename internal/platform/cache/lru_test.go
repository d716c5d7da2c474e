package cache_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ferdiebergado/friendsystem/internal/platform/cache"
)

func TestLRU_GetSet(t *testing.T) {
	t.Parallel()

	c := cache.New[string, []int](2, time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Error("c.Get(\"a\") on empty cache ok = true, want: false")
	}

	c.Set("a", []int{1})
	c.Set("b", []int{2})

	got, ok := c.Get("a")
	if !ok || len(got) != 1 || got[0] != 1 {
		t.Errorf("c.Get(\"a\") = %v, %v, want: [1], true", got, ok)
	}

	// "b" is now the least recently used entry.
	c.Set("c", []int{3})

	if _, ok := c.Get("b"); ok {
		t.Error("c.Get(\"b\") ok = true, want: evicted")
	}
	if got, want := c.Len(), 2; got != want {
		t.Errorf("c.Len() = %d, want: %d", got, want)
	}
}

func TestLRU_Expiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 10, 18, 10, 0, 0, 0, time.UTC)
	c := cache.New[int, string](10, time.Minute)
	c.SetClock(func() time.Time { return now })

	c.Set(1, "steve")

	now = now.Add(59 * time.Second)
	if _, ok := c.Get(1); !ok {
		t.Error("c.Get(1) before ttl ok = false, want: true")
	}

	now = now.Add(time.Second)
	if _, ok := c.Get(1); ok {
		t.Error("c.Get(1) at ttl ok = true, want: false")
	}
	if got := c.Len(); got != 0 {
		t.Errorf("c.Len() = %d, want expired entry removed", got)
	}
}

func TestLRU_NoExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 10, 18, 10, 0, 0, 0, time.UTC)
	c := cache.New[int, string](10, 0)
	c.SetClock(func() time.Time { return now })

	c.Set(1, "alex")
	now = now.Add(24 * time.Hour)

	if _, ok := c.Get(1); !ok {
		t.Error("c.Get(1) with zero ttl ok = false, want: true")
	}
}

func TestLRU_RemoveAndClear(t *testing.T) {
	t.Parallel()

	c := cache.New[string, int](10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	c.Remove("a", "b", "missing")
	if got, want := c.Len(), 1; got != want {
		t.Errorf("c.Len() after Remove = %d, want: %d", got, want)
	}

	c.Clear()
	if got := c.Len(); got != 0 {
		t.Errorf("c.Len() after Clear = %d, want: %d", got, 0)
	}
}

func TestLRU_Concurrent(t *testing.T) {
	t.Parallel()

	c := cache.New[string, int](64, time.Minute)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				key := fmt.Sprintf("%d-%d", i, j%10)
				c.Set(key, j)
				c.Get(key)
				if j%7 == 0 {
					c.Remove(key)
				}
			}
		}()
	}
	wg.Wait()

	if got := c.Len(); got > 64 {
		t.Errorf("c.Len() = %d, want at most %d", got, 64)
	}
}
