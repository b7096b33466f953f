// internal/chunkstore/analyze.go
package chunkstore

import (
	"io"

	"github.com/creativeyann17/go-savedelta/internal/chunker"
)

// Default analysis parameters
const (
	DefaultChunkSize = 64 * 1024
	DefaultMaxChunks = 1 << 20
)

// Analyze chunks r and returns how much of it repeats. maxChunks bounds
// memory; 0 means unlimited.
func Analyze(r io.Reader, avgSize uint64, maxChunks int) (Stats, error) {
	if avgSize == 0 {
		avgSize = DefaultChunkSize
	}
	store := NewStoreWithCapacity(maxChunks)
	err := chunker.New(avgSize).SplitWithCallback(r, func(c chunker.Chunk) error {
		store.Add(c.Hash, c.OrigSize)
		return nil
	})
	if err != nil {
		return Stats{}, err
	}
	return store.Stats(), nil
}
