package cache

import (
	"fmt"
	"sync"
	"testing"
)

func newTestCache(t *testing.T) Cache[string] {
	t.Helper()
	c, err := New[string]()
	if err != nil {
		t.Fatalf("Unexpected error creating cache: %v", err)
	}
	return c
}

func TestBasicOperations(t *testing.T) {
	cache := newTestCache(t)

	if value, exists := cache.Get("key1"); exists {
		t.Errorf("Expected cache miss, got value: %s", value)
	}

	isNew, err := cache.Set("key1", "value1")
	if err != nil {
		t.Fatalf("Unexpected error setting key: %v", err)
	}
	if !isNew {
		t.Error("Expected new entry creation")
	}

	if value, exists := cache.Get("key1"); !exists || value != "value1" {
		t.Errorf("Expected 'value1', got value: %s, exists: %t", value, exists)
	}

	// Overwrite is unconditional
	isNew, err = cache.Set("key1", "value1_updated")
	if err != nil {
		t.Fatalf("Unexpected error updating key: %v", err)
	}
	if isNew {
		t.Error("Expected existing entry update")
	}

	if value, exists := cache.Get("key1"); !exists || value != "value1_updated" {
		t.Errorf("Expected 'value1_updated', got value: %s, exists: %t", value, exists)
	}

	deleted, err := cache.Delete("key1")
	if err != nil {
		t.Fatalf("Unexpected error deleting key: %v", err)
	}
	if !deleted {
		t.Error("Expected successful deletion")
	}

	deleted, err = cache.Delete("key1")
	if err != nil {
		t.Fatalf("Unexpected error deleting non-existent key: %v", err)
	}
	if deleted {
		t.Error("Expected deletion failure for non-existent key")
	}
}

func TestEmptyKeyRejected(t *testing.T) {
	cache := newTestCache(t)

	if _, err := cache.Set("", "value"); err == nil {
		t.Error("Expected error setting empty key")
	}
	if _, err := cache.Delete(""); err == nil {
		t.Error("Expected error deleting empty key")
	}
}

func TestSizeAndKeys(t *testing.T) {
	cache := newTestCache(t)

	if cache.Size() != 0 {
		t.Errorf("Expected size 0, got %d", cache.Size())
	}

	_, _ = cache.Set("users:u1", "alice")
	_, _ = cache.Set("users:u2", "bob")

	if cache.Size() != 2 {
		t.Errorf("Expected size 2, got %d", cache.Size())
	}

	keyMap := make(map[string]bool)
	for _, key := range cache.Keys() {
		keyMap[key] = true
	}
	if !keyMap["users:u1"] || !keyMap["users:u2"] {
		t.Errorf("Expected keys 'users:u1' and 'users:u2', got %v", cache.Keys())
	}

	_, _ = cache.Delete("users:u1")
	if cache.Size() != 1 {
		t.Errorf("Expected size 1, got %d", cache.Size())
	}
}

func TestClear(t *testing.T) {
	cache := newTestCache(t)

	_, _ = cache.Set("key1", "value1")
	_, _ = cache.Set("key2", "value2")

	if err := cache.Clear(); err != nil {
		t.Fatalf("Unexpected error clearing cache: %v", err)
	}

	if cache.Size() != 0 {
		t.Errorf("Expected size 0 after clear, got %d", cache.Size())
	}
	if _, exists := cache.Get("key1"); exists {
		t.Error("Expected cache miss after clear")
	}
}

func TestStatisticsTracking(t *testing.T) {
	cache := newTestCache(t)
	stats := cache.Stats()
	if stats == nil {
		t.Fatal("Expected statistics to always be present")
	}

	cache.Get("missing")
	_, _ = cache.Set("key1", "value1")
	cache.Get("key1")
	cache.Get("key1")

	if stats.Misses() != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses())
	}
	if stats.Hits() != 2 {
		t.Errorf("Expected 2 hits, got %d", stats.Hits())
	}
	if stats.Sets() != 1 {
		t.Errorf("Expected 1 set, got %d", stats.Sets())
	}

	ratio := stats.HitRatio()
	if ratio < 0.66 || ratio > 0.67 {
		t.Errorf("Expected hit ratio ~0.667, got %f", ratio)
	}

	summary := stats.Summary()
	if summary.CurrentSize != 1 || summary.MaxSize != 1 {
		t.Errorf("Unexpected size tracking in summary: %+v", summary)
	}

	stats.Reset()
	if stats.Hits() != 0 || stats.Misses() != 0 {
		t.Error("Expected counters reset to zero")
	}
}

func TestConcurrentAccess(t *testing.T) {
	cache := newTestCache(t)

	const goroutines = 16
	const opsPerGoroutine = 200

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < opsPerGoroutine; i++ {
				key := fmt.Sprintf("key-%d", i%20)
				switch i % 3 {
				case 0:
					_, _ = cache.Set(key, fmt.Sprintf("value-%d-%d", id, i))
				case 1:
					cache.Get(key)
				case 2:
					_, _ = cache.Delete(key)
				}
			}
		}(g)
	}
	wg.Wait()

	// Sanity: store is still consistent
	if cache.Size() < 0 || cache.Size() > 20 {
		t.Errorf("Unexpected cache size after concurrent access: %d", cache.Size())
	}
}

func TestTypedValues(t *testing.T) {
	type doc struct {
		ID    string
		Score float64
	}

	c, err := New[doc]()
	if err != nil {
		t.Fatalf("Unexpected error creating cache: %v", err)
	}

	_, _ = c.Set("trust:metrics", doc{ID: "m1", Score: 0.92})
	value, exists := c.Get("trust:metrics")
	if !exists || value.ID != "m1" || value.Score != 0.92 {
		t.Errorf("Unexpected value: %+v exists: %t", value, exists)
	}
}
