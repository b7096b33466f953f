// internal/ess/params.go
package ess

import "fmt"

// Compression is the body compression recorded in a save header
type Compression uint16

const (
	CompressionNone Compression = 0
	CompressionZlib Compression = 1
	CompressionLZ4  Compression = 2
)

// Valid reports whether c is a known compression type
func (c Compression) Valid() bool {
	return c <= CompressionLZ4
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZlib:
		return "zlib"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint16(c))
	}
}

// Method is the writer setting that reproduces a file from its raw form
type Method uint8

const (
	// MethodStore: the raw form is the file (uncompressed save)
	MethodStore Method = iota
	// MethodLZ4Fast: LZ4 block, default fast compressor
	MethodLZ4Fast
	// MethodLZ4HC: LZ4 block, high-compression search at Params.Level
	MethodLZ4HC
	// MethodZlib: zlib stream at Params.Level
	MethodZlib
	// MethodVerbatim: no known writer reproduces the file, the raw form is
	// the untouched file
	MethodVerbatim
)

func (m Method) String() string {
	switch m {
	case MethodStore:
		return "store"
	case MethodLZ4Fast:
		return "lz4-fast"
	case MethodLZ4HC:
		return "lz4-hc"
	case MethodZlib:
		return "zlib"
	case MethodVerbatim:
		return "verbatim"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

// Params is everything Encode needs to rebuild a file from its raw form.
// It is captured by Decode and never inferred at encode time.
type Params struct {
	Version     uint32      `cbor:"1,keyasint,omitempty"`
	Compression Compression `cbor:"2,keyasint,omitempty"`
	Method      Method      `cbor:"3,keyasint"`
	Level       int         `cbor:"4,keyasint,omitempty"`
	RawSize     uint32      `cbor:"5,keyasint,omitempty"`
	PackedSize  uint32      `cbor:"6,keyasint,omitempty"`
}

// Passthrough returns parameters for files stored as they are, such as
// script-extender co-saves
func Passthrough() Params {
	return Params{Method: MethodVerbatim}
}

// Expanded reports whether the raw form differs from the file bytes
func (p Params) Expanded() bool {
	switch p.Method {
	case MethodLZ4Fast, MethodLZ4HC, MethodZlib:
		return true
	}
	return false
}

// Validate checks that the combination can be encoded
func (p Params) Validate() error {
	switch p.Method {
	case MethodStore, MethodVerbatim:
		return nil
	case MethodLZ4Fast:
		if p.Compression != CompressionLZ4 {
			return fmt.Errorf("method %s with compression %s", p.Method, p.Compression)
		}
		return nil
	case MethodLZ4HC:
		if p.Compression != CompressionLZ4 {
			return fmt.Errorf("method %s with compression %s", p.Method, p.Compression)
		}
		if p.Level < 1 || p.Level > len(hcLevels) {
			return fmt.Errorf("lz4-hc level %d out of range", p.Level)
		}
		return nil
	case MethodZlib:
		if p.Compression != CompressionZlib {
			return fmt.Errorf("method %s with compression %s", p.Method, p.Compression)
		}
		if p.Level < 1 || p.Level > 9 {
			return fmt.Errorf("zlib level %d out of range", p.Level)
		}
		return nil
	default:
		return fmt.Errorf("unknown method %d", p.Method)
	}
}

func (p Params) String() string {
	switch p.Method {
	case MethodLZ4HC, MethodZlib:
		return fmt.Sprintf("%s/%d", p.Method, p.Level)
	default:
		return p.Method.String()
	}
}
