// internal/chunker/chunker.go
package chunker

import (
	"errors"
	"fmt"
	"io"

	"github.com/jotfs/fastcdc-go"
	"github.com/zeebo/blake3"
)

// Chunker splits data into content-defined chunks with FastCDC, so that
// content shared between saves lands in identical chunks even when it
// moved inside the stream
type Chunker struct {
	avgSize uint64
}

// New creates a chunker targeting avgSize bytes per chunk. Chunks range
// from avgSize/4 to avgSize*4; avgSize must be at least 256.
func New(avgSize uint64) *Chunker {
	return &Chunker{
		avgSize: avgSize,
	}
}

// Chunk represents a piece of data with its hash
type Chunk struct {
	Data     []byte
	Hash     [32]byte
	Offset   uint64 // position in the split stream
	OrigSize uint64
}

// Split reads from reader and returns all chunks with their BLAKE3 hashes.
// Chunk data is copied, prefer SplitWithCallback for large streams.
func (c *Chunker) Split(reader io.Reader) ([]Chunk, error) {
	chunks := make([]Chunk, 0, 8)
	err := c.SplitWithCallback(reader, func(chunk Chunk) error {
		data := make([]byte, len(chunk.Data))
		copy(data, chunk.Data)
		chunk.Data = data
		chunks = append(chunks, chunk)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// SplitWithCallback streams chunks to fn one at a time. Chunk.Data is only
// valid during the call. An error from fn stops the split and is returned
// as is.
func (c *Chunker) SplitWithCallback(reader io.Reader, fn func(Chunk) error) error {
	cdc, err := fastcdc.NewChunker(reader, fastcdc.Options{
		MinSize:     int(c.MinSize()),
		AverageSize: int(c.avgSize),
		MaxSize:     int(c.MaxSize()),
	})
	if err != nil {
		return fmt.Errorf("create chunker: %w", err)
	}

	for {
		chunk, err := cdc.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read chunk: %w", err)
		}
		if err := fn(Chunk{
			Data:     chunk.Data,
			Hash:     blake3.Sum256(chunk.Data),
			Offset:   uint64(chunk.Offset),
			OrigSize: uint64(chunk.Length),
		}); err != nil {
			return err
		}
	}
}

// ChunkSize returns the configured average chunk size
func (c *Chunker) ChunkSize() uint64 {
	return c.avgSize
}

// MinSize returns the smallest chunk cut before the end of the stream
func (c *Chunker) MinSize() uint64 {
	return c.avgSize / 4
}

// MaxSize returns the largest chunk the chunker emits
func (c *Chunker) MaxSize() uint64 {
	return c.avgSize * 4
}
