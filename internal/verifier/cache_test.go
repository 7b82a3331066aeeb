package verifier

import (
	"os"
	"path/filepath"
	"testing"
)

func tempCachePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "verifier_cache.json")
}

func TestCacheStoreAndLookup(t *testing.T) {
	cache, err := OpenCache(tempCachePath(t), nil)
	if err != nil {
		t.Fatalf("OpenCache failed: %v", err)
	}
	defer cache.Close()

	result := Result{
		Label:      LabelMatch,
		Confidence: 0.92,
		Evidence:   []string{"same model number"},
		Tokens:     310,
	}
	if err := cache.Store("abc123", result); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	found, ok := cache.Lookup("abc123")
	if !ok {
		t.Fatal("Lookup failed to find stored entry")
	}
	if found.Label != result.Label {
		t.Errorf("Label mismatch: got %q, want %q", found.Label, result.Label)
	}
	if found.Confidence != result.Confidence {
		t.Errorf("Confidence mismatch: got %v, want %v", found.Confidence, result.Confidence)
	}
}

func TestCacheLookupMiss(t *testing.T) {
	cache, err := OpenCache(tempCachePath(t), nil)
	if err != nil {
		t.Fatalf("OpenCache failed: %v", err)
	}
	defer cache.Close()

	if _, ok := cache.Lookup("nonexistent"); ok {
		t.Error("Lookup should miss for unknown key")
	}
	if _, ok := cache.Lookup(""); ok {
		t.Error("Lookup should miss for empty key")
	}
}

func TestCachePersistsAcrossOpens(t *testing.T) {
	path := tempCachePath(t)

	first, err := OpenCache(path, nil)
	if err != nil {
		t.Fatalf("OpenCache failed: %v", err)
	}
	if err := first.Store("key1", Result{Label: LabelNoMatch, Confidence: 0.8}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second, err := OpenCache(path, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	found, ok := second.Lookup("key1")
	if !ok {
		t.Fatal("entry lost across reopen")
	}
	if found.Label != LabelNoMatch {
		t.Errorf("Label = %q, want %q", found.Label, LabelNoMatch)
	}
}

func TestCacheRejectsConcurrentOpen(t *testing.T) {
	path := tempCachePath(t)

	first, err := OpenCache(path, nil)
	if err != nil {
		t.Fatalf("OpenCache failed: %v", err)
	}
	defer first.Close()

	if _, err := OpenCache(path, nil); err == nil {
		t.Error("second open should fail while the lock is held")
	}
}

func TestCacheClear(t *testing.T) {
	cache, err := OpenCache(tempCachePath(t), nil)
	if err != nil {
		t.Fatalf("OpenCache failed: %v", err)
	}
	defer cache.Close()

	if err := cache.Store("key1", Result{Label: LabelMatch}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if cache.Count() != 0 {
		t.Errorf("Count = %d after Clear, want 0", cache.Count())
	}
}

func TestCacheEmptyPathIsNoop(t *testing.T) {
	cache, err := OpenCache("", nil)
	if err != nil {
		t.Fatalf("OpenCache failed: %v", err)
	}
	defer cache.Close()

	if err := cache.Store("key1", Result{Label: LabelMatch}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if _, ok := cache.Lookup("key1"); ok {
		t.Error("no-op cache should never hit")
	}
}

func TestCacheStoreEmptyKey(t *testing.T) {
	cache, err := OpenCache(tempCachePath(t), nil)
	if err != nil {
		t.Fatalf("OpenCache failed: %v", err)
	}
	defer cache.Close()

	if err := cache.Store("", Result{}); err == nil {
		t.Error("Store should reject an empty key")
	}
}

func TestCacheFileWrittenSynchronously(t *testing.T) {
	path := tempCachePath(t)
	cache, err := OpenCache(path, nil)
	if err != nil {
		t.Fatalf("OpenCache failed: %v", err)
	}
	defer cache.Close()

	if err := cache.Store("key1", Result{Label: LabelMatch}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	// The file must exist with content immediately after Store, not at
	// Close time.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cache file missing after Store: %v", err)
	}
	if len(data) == 0 {
		t.Error("cache file empty after Store")
	}
}
