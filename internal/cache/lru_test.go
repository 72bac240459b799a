package cache

import (
	"testing"
	"time"
)

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("empty cache should miss")
	}

	c.Set("a", "1")
	if v, found := c.Get("a"); !found || v != "1" {
		t.Errorf("Get(a) = %q/%v, want 1/true", v, found)
	}

	c.Set("a", "2")
	if v, _ := c.Get("a"); v != "2" {
		t.Errorf("Set should overwrite, got %q", v)
	}
	if c.Size() != 1 {
		t.Errorf("Size = %d, want 1", c.Size())
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // touch a so b is the eviction candidate
	c.Set("c", 3)

	if _, found := c.Get("b"); found {
		t.Error("b should have been evicted")
	}
	if _, found := c.Get("a"); !found {
		t.Error("a should have survived")
	}
	if _, found := c.Get("c"); !found {
		t.Error("c should be present")
	}
}

func TestLRUCache_TTL(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)

	if _, found := c.Get("a"); found {
		t.Error("expired entry should miss")
	}

	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)
	if cleaned := c.CleanExpired(); cleaned != 1 {
		t.Errorf("CleanExpired = %d, want 1", cleaned)
	}
	if c.Size() != 0 {
		t.Errorf("Size after cleanup = %d, want 0", c.Size())
	}
}

func TestLRUCache_DeletePrefix(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	c.Set("couple-1|month", 1)
	c.Set("couple-1|year", 2)
	c.Set("couple-2|month", 3)

	c.DeletePrefix("couple-1|")

	if _, found := c.Get("couple-1|month"); found {
		t.Error("couple-1|month should be gone")
	}
	if _, found := c.Get("couple-1|year"); found {
		t.Error("couple-1|year should be gone")
	}
	if _, found := c.Get("couple-2|month"); !found {
		t.Error("couple-2|month should survive")
	}
}

func TestManager_CleansRegisteredCaches(t *testing.T) {
	c := NewLRUCache[int](10, 5*time.Millisecond)
	m := NewManager()
	m.Register(c)
	m.StartCleanup(10 * time.Millisecond)
	defer m.Stop()

	c.Set("a", 1)
	time.Sleep(50 * time.Millisecond)

	if c.Size() != 0 {
		t.Errorf("expired entry not cleaned, size = %d", c.Size())
	}
}
