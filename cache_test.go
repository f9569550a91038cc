package optid

import "testing"

func TestLRUCacheEvicts(t *testing.T) {
	cache, err := NewLRUCache(2)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	cache.Set("a", 1)
	cache.Set("b", 2)
	if _, ok := cache.Get("a"); !ok {
		t.Fatalf("expected a cached")
	}
	cache.Set("c", 3)
	if _, ok := cache.Get("b"); ok {
		t.Fatalf("expected least recently used entry evicted")
	}
	if v, ok := cache.Get("c"); !ok || v != 3 {
		t.Fatalf("expected c cached, got %v", v)
	}

	if _, err := NewLRUCache(0); err == nil {
		t.Fatalf("expected invalid size to fail")
	}
}
