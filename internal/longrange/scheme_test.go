// internal/longrange/scheme_test.go
package longrange

import (
	"bytes"
	"math/rand"
	"testing"
)

// repetitive returns data whose repeats sit far apart, the shape of a
// sequence of similar saves
func repetitive(blockSize, copies int) []byte {
	rng := rand.New(rand.NewSource(7))
	block := make([]byte, blockSize)
	rng.Read(block)
	var buf bytes.Buffer
	for i := 0; i < copies; i++ {
		block[rng.Intn(blockSize)] ^= 0xFF
		buf.Write(block)
	}
	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	data := repetitive(256*1024, 6)

	for _, scheme := range []Scheme{SchemeZstd, SchemeXZ} {
		t.Run(scheme.String(), func(t *testing.T) {
			cfg := Settings{WindowLog: 22, Level: 3, Threads: 2}
			packed, err := Compress(scheme, data, cfg)
			if err != nil {
				t.Fatalf("Compress failed: %v", err)
			}
			if len(packed) >= len(data)/3 {
				t.Errorf("Expected long-range matches: %d bytes packed to %d", len(data), len(packed))
			}

			window := scheme.Window(cfg.WindowLog, int64(len(data)))
			out, err := Decompress(scheme, packed, window)
			if err != nil {
				t.Fatalf("Decompress failed: %v", err)
			}
			if !bytes.Equal(out, data) {
				t.Error("Round trip mismatch")
			}
		})
	}
}

func TestLevelsProduceSameContent(t *testing.T) {
	data := repetitive(64*1024, 4)
	for _, level := range []int{1, 3, 9, 19} {
		packed, err := Compress(SchemeZstd, data, Settings{Level: level})
		if err != nil {
			t.Fatalf("level %d: %v", level, err)
		}
		out, err := Decompress(SchemeZstd, packed, SchemeZstd.Window(0, int64(len(data))))
		if err != nil {
			t.Fatalf("level %d: %v", level, err)
		}
		if !bytes.Equal(out, data) {
			t.Errorf("level %d: round trip mismatch", level)
		}
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		scheme    Scheme
		requested int
		size      int64
		want      int
	}{
		{SchemeZstd, 0, 0, ZstdMaxWindowLog},
		{SchemeZstd, 0, 200 << 20, 28},
		{SchemeZstd, 0, 1 << 40, ZstdMaxWindowLog},
		{SchemeXZ, 0, 0, XZMaxWindowLog},
		{SchemeXZ, 0, 3 << 30, XZMaxWindowLog},
		{SchemeZstd, 31, 0, ZstdMaxWindowLog},
		{SchemeZstd, 27, 1000, ZstdMinWindowLog},
		{SchemeZstd, 27, 1 << 20, 20},
		{SchemeZstd, 27, 1<<20 + 1, 21},
		{SchemeZstd, 18, 1 << 24, 18},
		{SchemeXZ, 31, 1 << 40, XZMaxWindowLog},
		{SchemeXZ, 5, 0, XZMinWindowLog},
		{SchemeXZ, 27, 1, XZMinWindowLog},
	}
	for _, tt := range tests {
		if got := tt.scheme.Window(tt.requested, tt.size); got != tt.want {
			t.Errorf("%s.Window(%d, %d) = %d, want %d", tt.scheme, tt.requested, tt.size, got, tt.want)
		}
	}
}

func TestReaderRejectsWindow(t *testing.T) {
	if _, err := SchemeZstd.Reader(bytes.NewReader(nil), 40); err == nil {
		t.Error("Expected error for oversized window")
	}
	if _, err := SchemeXZ.Reader(bytes.NewReader(nil), 4); err == nil {
		t.Error("Expected error for undersized window")
	}
}

func TestUnknownScheme(t *testing.T) {
	if _, err := Scheme(9).Writer(&bytes.Buffer{}, Settings{}); err == nil {
		t.Error("Expected error for unknown scheme writer")
	}
	if _, err := ParseScheme("brotli"); err == nil {
		t.Error("Expected error for unknown scheme name")
	}
	if s, err := ParseScheme("XZ"); err != nil || s != SchemeXZ {
		t.Errorf("ParseScheme(XZ) = %v, %v", s, err)
	}
}

func TestDecompressCorrupt(t *testing.T) {
	packed, err := Compress(SchemeZstd, repetitive(4096, 2), Settings{})
	if err != nil {
		t.Fatal(err)
	}
	packed = packed[:len(packed)/2]
	if _, err := Decompress(SchemeZstd, packed, ZstdMaxWindowLog); err == nil {
		t.Error("Expected error for truncated payload")
	}
}
