// internal/longrange/scheme.go
package longrange

import (
	"bytes"
	"fmt"
	"io"
	"math/bits"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Scheme identifies the whole-stream compressor used for an archive payload.
// The value is stored in the container header.
type Scheme byte

const (
	SchemeZstd Scheme = iota + 1
	SchemeXZ
)

// Window bounds per scheme, as log2 of the window size in bytes
const (
	ZstdMinWindowLog = 10
	ZstdMaxWindowLog = 29
	XZMinWindowLog   = 12
	XZMaxWindowLog   = 31

	// DefaultWindowLog asks for the widest window the scheme allows; Window
	// then shrinks it to the stream, so matches reach back across every save
	DefaultWindowLog = 31
	DefaultLevel     = 12
)

// Settings tunes a compressing writer
type Settings struct {
	WindowLog int   // requested window, clamped by Window
	Level     int   // 1..22, zstd only
	Threads   int   // encoder goroutines, zstd only
	SizeHint  int64 // payload size if known, shrinks the window for small inputs
}

// ParseScheme maps a CLI name to a scheme
func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(name) {
	case "", "zstd", "zst":
		return SchemeZstd, nil
	case "xz", "lzma":
		return SchemeXZ, nil
	}
	return 0, fmt.Errorf("unknown compression scheme %q (want zstd or xz)", name)
}

func (s Scheme) String() string {
	switch s {
	case SchemeZstd:
		return "zstd"
	case SchemeXZ:
		return "xz"
	default:
		return fmt.Sprintf("scheme(%#x)", byte(s))
	}
}

// Valid returns a nil error iff s is a known scheme
func (s Scheme) Valid() error {
	switch s {
	case SchemeZstd, SchemeXZ:
		return nil
	}
	return fmt.Errorf("unknown compression scheme %#x", byte(s))
}

func (s Scheme) windowBounds() (lo, hi int) {
	if s == SchemeXZ {
		return XZMinWindowLog, XZMaxWindowLog
	}
	return ZstdMinWindowLog, ZstdMaxWindowLog
}

// Window returns the window log actually used for a payload: the requested
// value limited to the scheme bounds and to the smallest power of two
// covering sizeHint. A non-positive request selects DefaultWindowLog.
func (s Scheme) Window(requested int, sizeHint int64) int {
	if requested <= 0 {
		requested = DefaultWindowLog
	}
	lo, hi := s.windowBounds()
	log := min(requested, hi)
	if sizeHint > 0 {
		log = min(log, bits.Len64(uint64(sizeHint-1)))
	}
	return max(log, lo)
}

// Writer returns a compressing writer. Closing it flushes the stream but
// leaves w open.
func (s Scheme) Writer(w io.Writer, cfg Settings) (io.WriteCloser, error) {
	window := s.Window(cfg.WindowLog, cfg.SizeHint)
	switch s {
	case SchemeZstd:
		level := cfg.Level
		if level <= 0 {
			level = DefaultLevel
		}
		opts := []zstd.EOption{
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
			zstd.WithWindowSize(1 << window),
		}
		if cfg.Threads > 0 {
			opts = append(opts, zstd.WithEncoderConcurrency(cfg.Threads))
		}
		enc, err := zstd.NewWriter(w, opts...)
		if err != nil {
			return nil, fmt.Errorf("create zstd writer: %w", err)
		}
		return enc, nil
	case SchemeXZ:
		xw, err := xz.WriterConfig{DictCap: 1 << window}.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("create xz writer: %w", err)
		}
		return xw, nil
	}
	return nil, s.Valid()
}

// Reader returns a decompressing reader that refuses windows larger than
// 1<<windowLog.
func (s Scheme) Reader(r io.Reader, windowLog int) (io.ReadCloser, error) {
	lo, hi := s.windowBounds()
	if windowLog < lo || windowLog > hi {
		return nil, fmt.Errorf("%s window log %d out of range [%d, %d]", s, windowLog, lo, hi)
	}
	switch s {
	case SchemeZstd:
		dec, err := zstd.NewReader(r, zstd.WithDecoderMaxWindow(1<<windowLog))
		if err != nil {
			return nil, fmt.Errorf("create zstd reader: %w", err)
		}
		return dec.IOReadCloser(), nil
	case SchemeXZ:
		xr, err := xz.ReaderConfig{DictCap: 1 << windowLog}.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("create xz reader: %w", err)
		}
		return io.NopCloser(xr), nil
	}
	return nil, s.Valid()
}

// Compress compresses data in memory
func Compress(s Scheme, data []byte, cfg Settings) ([]byte, error) {
	if cfg.SizeHint == 0 {
		cfg.SizeHint = int64(len(data))
	}
	var buf bytes.Buffer
	w, err := s.Writer(&buf, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("%s compress: %w", s, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%s flush: %w", s, err)
	}
	return buf.Bytes(), nil
}

// Decompress inflates a whole payload produced by Compress
func Decompress(s Scheme, data []byte, windowLog int) ([]byte, error) {
	r, err := s.Reader(bytes.NewReader(data), windowLog)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s decompress: %w", s, err)
	}
	return out, nil
}
