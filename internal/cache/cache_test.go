package cache

import (
	"testing"
	"time"

	"github.com/harrison/tetrad/internal/models"
)

func TestKeyIsPureFunctionOfInputs(t *testing.T) {
	a := Key("func f() {}", "go", models.KindCode)
	b := Key("func f() {}", "go", models.KindCode)
	if a != b {
		t.Fatal("Key must be deterministic for identical inputs")
	}
	if Key("func f() {}", "go", models.KindTests) == a {
		t.Fatal("Key must vary with evaluation kind")
	}
	if Key("func g() {}", "go", models.KindCode) == a {
		t.Fatal("Key must vary with code")
	}
}

func TestCacheInsertAndGet(t *testing.T) {
	c := New(2, time.Hour)
	result := models.EvaluationResult{RequestID: "r1"}

	if _, ok := c.Get("missing"); ok {
		t.Fatal("Get on empty cache should miss")
	}

	c.Insert("k1", result)
	got, ok := c.Get("k1")
	if !ok || got.RequestID != "r1" {
		t.Fatalf("Get after Insert = %+v, %v", got, ok)
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Fatalf("stats = %+v, want 1 hit and 1 miss", stats)
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(2, time.Hour)
	c.Insert("k1", models.EvaluationResult{RequestID: "r1"})
	c.Insert("k2", models.EvaluationResult{RequestID: "r2"})

	// Touch k1 so it becomes most-recently-used, leaving k2 to be evicted.
	c.Get("k1")
	c.Insert("k3", models.EvaluationResult{RequestID: "r3"})

	if _, ok := c.Get("k2"); ok {
		t.Fatal("k2 should have been evicted as least-recently-used")
	}
	if _, ok := c.Get("k1"); !ok {
		t.Fatal("k1 should still be present")
	}
	if _, ok := c.Get("k3"); !ok {
		t.Fatal("k3 should still be present")
	}
}

func TestCacheExpiresByTTL(t *testing.T) {
	c := New(10, time.Millisecond)
	c.Insert("k1", models.EvaluationResult{RequestID: "r1"})
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("k1"); ok {
		t.Fatal("entry should have expired")
	}
}

func TestCacheInvalidateAndClear(t *testing.T) {
	c := New(10, time.Hour)
	c.Insert("k1", models.EvaluationResult{RequestID: "r1"})
	c.Invalidate("k1")
	if _, ok := c.Get("k1"); ok {
		t.Fatal("invalidated entry should be gone")
	}

	c.Insert("k2", models.EvaluationResult{RequestID: "r2"})
	c.Clear()
	if c.Stats().Size != 0 {
		t.Fatal("cleared cache should report zero size")
	}
}
