// internal/chunkstore/store_test.go
package chunkstore

import (
	"bytes"
	"math/rand"
	"sync"
	"testing"
)

func TestStoreAdd(t *testing.T) {
	store := NewStore()
	h1 := [32]byte{1}
	h2 := [32]byte{2}

	if store.Add(h1, 100) {
		t.Error("First occurrence reported as duplicate")
	}
	if store.Add(h2, 50) {
		t.Error("Second hash reported as duplicate")
	}
	if !store.Add(h1, 100) {
		t.Error("Repeat not reported as duplicate")
	}

	stats := store.Stats()
	if stats.TotalChunks != 3 || stats.UniqueChunks != 2 || stats.DedupedChunks != 1 {
		t.Errorf("Unexpected chunk counts: %+v", stats)
	}
	if stats.TotalBytes != 250 || stats.BytesSaved != 100 {
		t.Errorf("Unexpected byte counts: %+v", stats)
	}
	if r := stats.SharedRatio(); r != 40 {
		t.Errorf("Expected shared ratio 40, got %f", r)
	}
	if store.Count() != 2 {
		t.Errorf("Expected 2 remembered hashes, got %d", store.Count())
	}
}

func TestStoreLRU(t *testing.T) {
	store := NewStoreWithCapacity(2)
	a, b, c := [32]byte{'a'}, [32]byte{'b'}, [32]byte{'c'}

	store.Add(a, 1)
	store.Add(b, 1)
	store.Add(a, 1) // a is now most recent
	store.Add(c, 1) // evicts b

	if !store.Contains(a) || !store.Contains(c) {
		t.Error("Recently seen hashes must stay")
	}
	if store.Contains(b) {
		t.Error("Least recently seen hash should have been evicted")
	}
	if store.Add(b, 1) {
		t.Error("Evicted hash must count as new")
	}

	stats := store.Stats()
	if stats.Evictions != 2 {
		t.Errorf("Expected 2 evictions, got %d", stats.Evictions)
	}
	if store.Count() != 2 {
		t.Errorf("Expected capacity to hold, got %d", store.Count())
	}
}

func TestStoreConcurrency(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				store.Add([32]byte{byte(i)}, 10)
			}
		}()
	}
	wg.Wait()

	stats := store.Stats()
	if stats.UniqueChunks != 100 || stats.DedupedChunks != 700 {
		t.Errorf("Expected 100 unique and 700 duplicate chunks, got %+v", stats)
	}
}

func TestAnalyze(t *testing.T) {
	block := make([]byte, 256*1024)
	rand.New(rand.NewSource(5)).Read(block)
	data := bytes.Repeat(block, 3)

	stats, err := Analyze(bytes.NewReader(data), 8*1024, 0)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if stats.TotalBytes != uint64(len(data)) {
		t.Errorf("Expected %d bytes, got %d", len(data), stats.TotalBytes)
	}
	if stats.SharedRatio() < 50 {
		t.Errorf("Expected at least half of a thrice repeated block to be shared, got %.1f%%", stats.SharedRatio())
	}

	stats, err = Analyze(bytes.NewReader(block), 8*1024, 0)
	if err != nil {
		t.Fatal(err)
	}
	if stats.DedupedChunks != 0 {
		t.Errorf("Random data should not repeat, got %d duplicates", stats.DedupedChunks)
	}
}

func BenchmarkStoreAdd(b *testing.B) {
	store := NewStoreWithCapacity(1024)
	for i := 0; i < b.N; i++ {
		store.Add([32]byte{byte(i), byte(i >> 8), byte(i >> 16)}, 4096)
	}
}
