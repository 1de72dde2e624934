package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/lexica-dev/wordbreak/core/trie"
)

func TestLRUCache_BasicOperations(t *testing.T) {
	config := Config{
		MaxSize: 3,
		TTL:     0,
	}
	cache := NewLRUCache[string, int](config)

	// Test Put and Get
	cache.Put("a", 1)
	cache.Put("b", 2)
	cache.Put("c", 3)

	if v, ok := cache.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if v, ok := cache.Get("b"); !ok || v != 2 {
		t.Errorf("Get(b) = %d, %v; want 2, true", v, ok)
	}
	if v, ok := cache.Get("c"); !ok || v != 3 {
		t.Errorf("Get(c) = %d, %v; want 3, true", v, ok)
	}

	// Test non-existent key
	if _, ok := cache.Get("d"); ok {
		t.Error("Get(d) should return false")
	}

	// Test Len
	if len := cache.Len(); len != 3 {
		t.Errorf("Len() = %d; want 3", len)
	}
}

func TestLRUCache_Eviction(t *testing.T) {
	config := Config{
		MaxSize: 2,
		TTL:     0,
	}
	cache := NewLRUCache[string, int](config)

	cache.Put("a", 1)
	cache.Put("b", 2)
	cache.Put("c", 3) // Should evict "a" (least recently used)

	// "a" should be evicted
	if _, ok := cache.Get("a"); ok {
		t.Error("Get(a) should return false after eviction")
	}
	if v, ok := cache.Get("b"); !ok || v != 2 {
		t.Errorf("Get(b) = %d, %v; want 2, true", v, ok)
	}
	if v, ok := cache.Get("c"); !ok || v != 3 {
		t.Errorf("Get(c) = %d, %v; want 3, true", v, ok)
	}

	stats := cache.Stats()
	if stats.Evictions != 1 {
		t.Errorf("Evictions = %d; want 1", stats.Evictions)
	}
}

func TestLRUCache_AccessOrderAffectsEviction(t *testing.T) {
	cache := NewLRUCache[string, int](Config{MaxSize: 2})

	cache.Put("a", 1)
	cache.Put("b", 2)
	cache.Get("a")    // "a" is now most recently used
	cache.Put("c", 3) // should evict "b"

	if _, ok := cache.Get("b"); ok {
		t.Error("Get(b) should return false after eviction")
	}
	if _, ok := cache.Get("a"); !ok {
		t.Error("Get(a) should still hit")
	}
}

func TestLRUCache_TTLExpiry(t *testing.T) {
	cache := NewLRUCache[string, int](Config{MaxSize: 10, TTL: 10 * time.Millisecond})

	cache.Put("a", 1)
	if _, ok := cache.Get("a"); !ok {
		t.Fatal("Get(a) should hit before expiry")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := cache.Get("a"); ok {
		t.Error("Get(a) should miss after expiry")
	}
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	cache := NewLRUCache[string, int](Config{MaxSize: 2})

	cache.Put("a", 1)
	cache.Put("a", 10)

	if v, ok := cache.Get("a"); !ok || v != 10 {
		t.Errorf("Get(a) = %d, %v; want 10, true", v, ok)
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d; want 1", cache.Len())
	}
}

func TestLRUCache_Clear(t *testing.T) {
	cache := NewLRUCache[string, int](Config{MaxSize: 10})

	cache.Put("a", 1)
	cache.Put("b", 2)
	cache.Clear()

	if cache.Len() != 0 {
		t.Errorf("Len() after Clear = %d; want 0", cache.Len())
	}
	if _, ok := cache.Get("a"); ok {
		t.Error("Get(a) should miss after Clear")
	}
}

func TestLRUCache_OnEvict(t *testing.T) {
	var evicted []interface{}
	config := Config{
		MaxSize: 1,
		OnEvict: func(key, value interface{}) {
			evicted = append(evicted, key)
		},
	}
	cache := NewLRUCache[string, int](config)

	cache.Put("a", 1)
	cache.Put("b", 2) // evicts "a"

	if len(evicted) != 1 || evicted[0] != "a" {
		t.Errorf("evicted = %v; want [a]", evicted)
	}
}

func TestLRUCache_Stats(t *testing.T) {
	cache := NewLRUCache[string, int](Config{MaxSize: 2})

	cache.Put("a", 1)
	cache.Get("a") // hit
	cache.Get("x") // miss

	stats := cache.Stats()
	if stats.Hits != 1 {
		t.Errorf("Hits = %d; want 1", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d; want 1", stats.Misses)
	}
	if stats.Size != 1 {
		t.Errorf("Size = %d; want 1", stats.Size)
	}
	if stats.MaxSize != 2 {
		t.Errorf("MaxSize = %d; want 2", stats.MaxSize)
	}
}

func TestLRUCache_Concurrent(t *testing.T) {
	cache := NewLRUCache[int, int](Config{MaxSize: 100})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cache.Put(base*100+j, j)
				cache.Get(base*100 + j)
			}
		}(i)
	}
	wg.Wait()

	if cache.Len() > 100 {
		t.Errorf("Len() = %d; want <= 100", cache.Len())
	}
}

func TestDictionaryCache(t *testing.T) {
	dc := NewDefaultDictionaryCache()

	tr := trie.New()
	tr.Insert("apple")

	dc.Put("fp-1", tr)
	got, ok := dc.Get("fp-1")
	if !ok {
		t.Fatal("Get(fp-1) should hit")
	}
	if !got.Contains("apple") {
		t.Error("cached trie lost its words")
	}

	if _, ok := dc.Get("fp-2"); ok {
		t.Error("Get(fp-2) should miss")
	}

	dc.Remove("fp-1")
	if _, ok := dc.Get("fp-1"); ok {
		t.Error("Get(fp-1) should miss after Remove")
	}

	if dc.Stats().Misses != 2 {
		t.Errorf("Misses = %d; want 2", dc.Stats().Misses)
	}
}
