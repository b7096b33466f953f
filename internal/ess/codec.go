// internal/ess/codec.go
package ess

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zlib"
	"github.com/pierrec/lz4/v4"

	"github.com/creativeyann17/go-savedelta/pkg/savedelta"
)

// sizeFieldsLen covers the uncompressed and compressed length fields that
// precede a compressed body
const sizeFieldsLen = 8

// maxExpansion bounds the decompressed size per compressed byte (zlib's
// worst case is above LZ4's)
const maxExpansion = 1032

var hcLevels = [...]lz4.CompressionLevel{
	lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4, lz4.Level5,
	lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

var errIncompressible = errors.New("block not compressible")

type setting struct {
	method Method
	level  int
}

// Writer settings tried in order by Decode. The first entry of each list is
// the game's own default.
var (
	lz4Settings = []setting{
		{MethodLZ4Fast, 0},
		{MethodLZ4HC, 9}, {MethodLZ4HC, 1}, {MethodLZ4HC, 2}, {MethodLZ4HC, 3},
		{MethodLZ4HC, 4}, {MethodLZ4HC, 5}, {MethodLZ4HC, 6}, {MethodLZ4HC, 7}, {MethodLZ4HC, 8},
	}
	zlibSettings = []setting{
		{MethodZlib, 6}, {MethodZlib, 9}, {MethodZlib, 1}, {MethodZlib, 2}, {MethodZlib, 3},
		{MethodZlib, 4}, {MethodZlib, 5}, {MethodZlib, 7}, {MethodZlib, 8},
	}
)

// Codec converts save files between their on-disk form and a raw form with
// the body decompressed
type Codec struct {
	// Exhaustive tries every known writer setting before falling back to
	// verbatim storage; otherwise only the default setting is tried
	Exhaustive bool
}

// Default is the codec used by Decode
var Default = Codec{Exhaustive: true}

// Decode returns the raw form of a save file and the parameters needed to
// rebuild it
func Decode(file []byte) ([]byte, Params, error) {
	return Default.Decode(file)
}

// Encode rebuilds a save file from its raw form
func Encode(raw []byte, p Params) ([]byte, error) {
	return Default.Encode(raw, p)
}

// Decode parses the save, decompresses its body and records the writer
// setting that reproduces the original bytes
func (c Codec) Decode(file []byte) ([]byte, Params, error) {
	h, lay, err := parse(file)
	if err != nil {
		return nil, Params{}, codecError(err)
	}

	params := Params{Version: h.Version, Compression: h.Compression}
	if h.Compression == CompressionNone {
		params.Method = MethodStore
		return file, params, nil
	}

	sizes := file[lay.prefixLen:]
	if len(sizes) < sizeFieldsLen {
		return nil, Params{}, codecError(fmt.Errorf("read body sizes: %w", io.ErrUnexpectedEOF))
	}
	params.RawSize = binary.LittleEndian.Uint32(sizes[0:4])
	params.PackedSize = binary.LittleEndian.Uint32(sizes[4:8])

	packed := sizes[sizeFieldsLen:]
	if uint64(len(packed)) < uint64(params.PackedSize) {
		return nil, Params{}, codecError(fmt.Errorf("body truncated: have %d bytes, header says %d", len(packed), params.PackedSize))
	}
	if uint64(len(packed)) > uint64(params.PackedSize) {
		return nil, Params{}, codecError(fmt.Errorf("%d trailing bytes after compressed body", uint64(len(packed))-uint64(params.PackedSize)))
	}

	if uint64(params.RawSize) > uint64(params.PackedSize)*maxExpansion+64 {
		return nil, Params{}, codecError(fmt.Errorf("implausible body size %d for %d compressed bytes", params.RawSize, params.PackedSize))
	}

	body, err := decompressBody(h.Compression, packed, int(params.RawSize))
	if err != nil {
		return nil, Params{}, codecError(err)
	}

	settings := lz4Settings
	if h.Compression == CompressionZlib {
		settings = zlibSettings
	}
	if !c.Exhaustive {
		settings = settings[:1]
	}

	for _, s := range settings {
		out, err := compressBody(s.method, s.level, body)
		if err != nil || !bytes.Equal(out, packed) {
			continue
		}
		params.Method = s.method
		params.Level = s.level

		raw := make([]byte, lay.prefixLen+len(body))
		copy(raw, file[:lay.prefixLen])
		binary.LittleEndian.PutUint16(raw[lay.compressionAt:], uint16(CompressionNone))
		copy(raw[lay.prefixLen:], body)
		return raw, params, nil
	}

	params.Method = MethodVerbatim
	return file, params, nil
}

// Encode rebuilds the file using only p
func (c Codec) Encode(raw []byte, p Params) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, codecError(err)
	}
	if !p.Expanded() {
		return raw, nil
	}

	h, lay, err := parse(raw)
	if err != nil {
		return nil, codecError(err)
	}
	if lay.compressionAt < 0 {
		return nil, codecError(fmt.Errorf("save version %d has no compression field", h.Version))
	}
	if h.Compression != CompressionNone {
		return nil, codecError(fmt.Errorf("raw form is marked %s", h.Compression))
	}

	body := raw[lay.prefixLen:]
	if uint64(len(body)) > math.MaxUint32 {
		return nil, codecError(fmt.Errorf("body of %d bytes exceeds format limit", len(body)))
	}
	packed, err := compressBody(p.Method, p.Level, body)
	if err != nil {
		return nil, codecError(err)
	}

	out := make([]byte, lay.prefixLen+sizeFieldsLen+len(packed))
	copy(out, raw[:lay.prefixLen])
	binary.LittleEndian.PutUint16(out[lay.compressionAt:], uint16(p.Compression))
	binary.LittleEndian.PutUint32(out[lay.prefixLen:], uint32(len(body)))
	binary.LittleEndian.PutUint32(out[lay.prefixLen+4:], uint32(len(packed)))
	copy(out[lay.prefixLen+sizeFieldsLen:], packed)
	return out, nil
}

func decompressBody(c Compression, packed []byte, rawSize int) ([]byte, error) {
	body := make([]byte, rawSize)

	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(packed, body)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if n != rawSize {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, header says %d", n, rawSize)
		}
		return body, nil

	case CompressionZlib:
		zr, err := zlib.NewReader(bytes.NewReader(packed))
		if err != nil {
			return nil, fmt.Errorf("zlib header: %w", err)
		}
		defer zr.Close()
		if _, err := io.ReadFull(zr, body); err != nil {
			return nil, fmt.Errorf("zlib decompress: %w", err)
		}
		// the adler32 checksum is only checked once the stream reaches EOF
		var extra [1]byte
		n, err := io.ReadFull(zr, extra[:])
		if n != 0 {
			return nil, fmt.Errorf("zlib decompress: more than %d bytes", rawSize)
		}
		if err != io.EOF {
			return nil, fmt.Errorf("zlib decompress: %w", err)
		}
		return body, nil

	default:
		return nil, fmt.Errorf("unsupported compression %s", c)
	}
}

func compressBody(m Method, level int, body []byte) ([]byte, error) {
	switch m {
	case MethodLZ4Fast, MethodLZ4HC:
		dst := make([]byte, lz4.CompressBlockBound(len(body)))
		var n int
		var err error
		if m == MethodLZ4Fast {
			n, err = lz4.CompressBlock(body, dst, nil)
		} else {
			n, err = lz4.CompressBlockHC(body, dst, hcLevels[level-1], nil, nil)
		}
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if n == 0 && len(body) > 0 {
			return nil, errIncompressible
		}
		return dst[:n], nil

	case MethodZlib:
		var buf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&buf, level)
		if err != nil {
			return nil, fmt.Errorf("zlib writer: %w", err)
		}
		if _, err := zw.Write(body); err != nil {
			return nil, fmt.Errorf("zlib compress: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("zlib close: %w", err)
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("method %s does not compress", m)
	}
}

func codecError(err error) error {
	return fmt.Errorf("%w: %w", savedelta.ErrCodecFormat, err)
}
