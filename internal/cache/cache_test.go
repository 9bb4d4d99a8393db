package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/funvibe/jankgo/internal/config"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "compile.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestLookupMissOnEmptyCache(t *testing.T) {
	c := openTestCache(t)
	_, ok, err := c.Lookup("nope")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if ok {
		t.Fatal("expected a miss on an empty cache")
	}
}

func TestStoreThenLookupRoundTrips(t *testing.T) {
	c := openTestCache(t)
	key := Key("var x = 1;", config.DefaultCompilerConfig())
	wasm := []byte{0x00, 0x61, 0x73, 0x6d}
	stats := Stats{CoercionsToAny: 2, DurationMs: 17}
	now := time.Unix(1700000000, 0)

	if err := c.Store(key, wasm, stats, now); err != nil {
		t.Fatalf("Store: %v", err)
	}

	entry, ok, err := c.Lookup(key)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit after Store")
	}
	if string(entry.Wasm) != string(wasm) {
		t.Fatalf("wasm mismatch: got %v, want %v", entry.Wasm, wasm)
	}
	if entry.Stats != stats {
		t.Fatalf("stats mismatch: got %+v, want %+v", entry.Stats, stats)
	}
	if entry.HitCount != 1 {
		t.Fatalf("expected hit count 1 after first Lookup, got %d", entry.HitCount)
	}

	if _, _, err := c.Lookup(key); err != nil {
		t.Fatalf("second Lookup: %v", err)
	}
	entry, _, err = c.Lookup(key)
	if err != nil {
		t.Fatalf("third Lookup: %v", err)
	}
	if entry.HitCount != 3 {
		t.Fatalf("expected hit count 3 after three lookups, got %d", entry.HitCount)
	}
}

func TestKeyChangesWithSourceOrConfig(t *testing.T) {
	cfg := config.DefaultCompilerConfig()
	k1 := Key("var x = 1;", cfg)
	k2 := Key("var x = 2;", cfg)
	if k1 == k2 {
		t.Fatal("expected different keys for different source text")
	}

	cfg2 := cfg
	cfg2.HeapPages = 32
	k3 := Key("var x = 1;", cfg2)
	if k1 == k3 {
		t.Fatal("expected different keys for different heap config")
	}
}

func TestStoreOverwritesAndResetsHitCount(t *testing.T) {
	c := openTestCache(t)
	key := Key("var x = 1;", config.DefaultCompilerConfig())
	now := time.Unix(1700000000, 0)

	if err := c.Store(key, []byte{1}, Stats{CoercionsToAny: 1}, now); err != nil {
		t.Fatalf("first Store: %v", err)
	}
	if _, _, err := c.Lookup(key); err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	if err := c.Store(key, []byte{2}, Stats{CoercionsToAny: 9}, now); err != nil {
		t.Fatalf("second Store: %v", err)
	}
	entry, ok, err := c.Lookup(key)
	if err != nil {
		t.Fatalf("Lookup after overwrite: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit after overwrite")
	}
	if entry.Wasm[0] != 2 {
		t.Fatalf("expected overwritten wasm bytes, got %v", entry.Wasm)
	}
	if entry.HitCount != 1 {
		t.Fatalf("expected hit count reset to 1 after overwrite, got %d", entry.HitCount)
	}
}
