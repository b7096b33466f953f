// internal/chunkstore/store.go
package chunkstore

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// Store remembers chunk hashes to measure how much content repeats across
// a stream. It keeps at most maxChunks hashes; the least recently seen are
// forgotten first, after which a repeat of them counts as new content.
type Store struct {
	mu        sync.Mutex
	chunks    map[[32]byte]*list.Element
	lruList   *list.List // front is most recently seen
	maxChunks int        // 0 = unlimited

	totalChunks   atomic.Uint64
	uniqueChunks  atomic.Uint64
	dedupedChunks atomic.Uint64
	totalBytes    atomic.Uint64
	bytesSaved    atomic.Uint64
	evictions     atomic.Uint64
}

// NewStore creates a store with unlimited capacity
func NewStore() *Store {
	return NewStoreWithCapacity(0)
}

// NewStoreWithCapacity creates a store remembering at most maxChunks hashes
// (0 = unlimited)
func NewStoreWithCapacity(maxChunks int) *Store {
	return &Store{
		chunks:    make(map[[32]byte]*list.Element),
		lruList:   list.New(),
		maxChunks: maxChunks,
	}
}

// Add records one chunk occurrence and reports whether its hash was
// already known
func (s *Store) Add(hash [32]byte, size uint64) (duplicate bool) {
	s.totalChunks.Add(1)
	s.totalBytes.Add(size)

	s.mu.Lock()
	defer s.mu.Unlock()

	if node, ok := s.chunks[hash]; ok {
		s.lruList.MoveToFront(node)
		s.dedupedChunks.Add(1)
		s.bytesSaved.Add(size)
		return true
	}

	if s.maxChunks > 0 && len(s.chunks) >= s.maxChunks {
		s.evictLRU()
	}
	s.chunks[hash] = s.lruList.PushFront(hash)
	s.uniqueChunks.Add(1)
	return false
}

// evictLRU must be called with the lock held
func (s *Store) evictLRU() {
	back := s.lruList.Back()
	if back == nil {
		return
	}
	delete(s.chunks, back.Value.([32]byte))
	s.lruList.Remove(back)
	s.evictions.Add(1)
}

// Contains reports whether hash is currently remembered
func (s *Store) Contains(hash [32]byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.chunks[hash]
	return ok
}

// Count returns the number of remembered hashes
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chunks)
}

// Stats returns redundancy statistics
func (s *Store) Stats() Stats {
	return Stats{
		TotalChunks:   s.totalChunks.Load(),
		UniqueChunks:  s.uniqueChunks.Load(),
		DedupedChunks: s.dedupedChunks.Load(),
		TotalBytes:    s.totalBytes.Load(),
		BytesSaved:    s.bytesSaved.Load(),
		Evictions:     s.evictions.Load(),
	}
}

// Stats contains redundancy statistics
type Stats struct {
	TotalChunks   uint64 // Chunks seen
	UniqueChunks  uint64 // Chunks whose hash was new
	DedupedChunks uint64 // Chunks repeating an earlier one
	TotalBytes    uint64 // Bytes seen
	BytesSaved    uint64 // Bytes in repeated chunks
	Evictions     uint64 // Hashes forgotten due to capacity limit
}

// DedupRatio returns the share of repeated chunks as a percentage
func (s Stats) DedupRatio() float64 {
	if s.TotalChunks == 0 {
		return 0
	}
	return float64(s.DedupedChunks) / float64(s.TotalChunks) * 100
}

// SharedRatio returns the share of bytes in repeated chunks as a percentage
func (s Stats) SharedRatio() float64 {
	if s.TotalBytes == 0 {
		return 0
	}
	return float64(s.BytesSaved) / float64(s.TotalBytes) * 100
}
