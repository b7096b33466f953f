// internal/chunker/chunker_test.go
package chunker

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/creativeyann17/go-savedelta/internal/ess/esstest"
)

func randomBytes(n int, seed int64) []byte {
	b := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(b)
	return b
}

func TestChunkerReassembly(t *testing.T) {
	c := New(4096)
	if c.ChunkSize() != 4096 || c.MinSize() != 1024 || c.MaxSize() != 16384 {
		t.Fatalf("Unexpected bounds: avg=%d min=%d max=%d", c.ChunkSize(), c.MinSize(), c.MaxSize())
	}

	data := randomBytes(300*1024, 1)
	chunks, err := c.Split(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("Expected several chunks, got %d", len(chunks))
	}

	var reassembled []byte
	for i, chunk := range chunks {
		if chunk.Offset != uint64(len(reassembled)) {
			t.Errorf("Chunk %d: offset %d, expected %d", i, chunk.Offset, len(reassembled))
		}
		if chunk.OrigSize != uint64(len(chunk.Data)) {
			t.Errorf("Chunk %d: OrigSize %d doesn't match len(Data) %d", i, chunk.OrigSize, len(chunk.Data))
		}
		if i < len(chunks)-1 && (chunk.OrigSize < c.MinSize() || chunk.OrigSize > c.MaxSize()) {
			t.Errorf("Chunk %d: size %d outside [%d, %d]", i, chunk.OrigSize, c.MinSize(), c.MaxSize())
		}
		reassembled = append(reassembled, chunk.Data...)
	}
	if !bytes.Equal(reassembled, data) {
		t.Error("Reassembled data doesn't match original")
	}
}

func TestChunkerEmptyAndSmall(t *testing.T) {
	c := New(1024)

	chunks, err := c.Split(bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("Expected 0 chunks for empty data, got %d", len(chunks))
	}

	chunks, err = c.Split(bytes.NewReader([]byte("Small")))
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) != 1 || string(chunks[0].Data) != "Small" {
		t.Errorf("Expected one chunk holding the input, got %+v", chunks)
	}
}

func TestChunkerInvalidSize(t *testing.T) {
	if _, err := New(16).Split(bytes.NewReader([]byte("data"))); err == nil {
		t.Error("Expected error for an average size below the FastCDC minimum")
	}
}

// Two saves of one playthrough differ in a few places; most of their
// chunks must hash the same even though the second save grew at the front.
func TestChunkerSharedContent(t *testing.T) {
	c := New(1024)
	first := esstest.Save{Compression: 0, ShotWidth: 8, ShotHeight: 8, Body: randomBytes(128*1024, 2)}.Bytes()
	second := append([]byte("a few new bytes at the front"), first...)

	seen := make(map[[32]byte]bool)
	if err := c.SplitWithCallback(bytes.NewReader(first), func(ch Chunk) error {
		seen[ch.Hash] = true
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	total, shared := 0, 0
	if err := c.SplitWithCallback(bytes.NewReader(second), func(ch Chunk) error {
		total++
		if seen[ch.Hash] {
			shared++
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	if shared < total/2 {
		t.Errorf("Expected most chunks to be shared after a shift, got %d of %d", shared, total)
	}
}

func TestChunkerDeterministic(t *testing.T) {
	c := New(256)
	data := esstest.Body(20*1024, 9)

	a, err := c.Split(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Split(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != len(b) {
		t.Fatalf("Different number of chunks: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Hash != b[i].Hash || a[i].OrigSize != b[i].OrigSize {
			t.Errorf("Chunk %d differs between runs", i)
		}
	}
}

func TestCallbackError(t *testing.T) {
	c := New(1024)
	data := randomBytes(64*1024, 3)
	target := errors.New("stop")

	processed := 0
	err := c.SplitWithCallback(bytes.NewReader(data), func(Chunk) error {
		processed++
		if processed == 3 {
			return target
		}
		return nil
	})
	if err != target {
		t.Errorf("Expected error %v, got %v", target, err)
	}
	if processed != 3 {
		t.Errorf("Expected to process 3 chunks before error, processed %d", processed)
	}
}

func BenchmarkChunker16MB(b *testing.B) {
	c := New(64 * 1024)
	data := randomBytes(16*1024*1024, 4)

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := c.SplitWithCallback(bytes.NewReader(data), func(Chunk) error { return nil }); err != nil {
			b.Fatal(err)
		}
	}
}
