// internal/format/header.go
package format

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/creativeyann17/go-savedelta/internal/longrange"
	"github.com/creativeyann17/go-savedelta/pkg/savedelta"
)

const (
	// Magic signature of a savedelta archive
	Magic     = "SAVDELTA"
	MagicSize = 8

	// FooterMagic closes an archive after the payload
	FooterMagic = "ENDSVDLT"

	// Version is the only container revision this package reads and writes
	Version = 1

	// HeaderSize is the fixed binary size of Header:
	// magic(8) + version(1) + scheme(1) + windowLog(1) + reserved(1) +
	// primaryCount(4) + sidecarCount(4) + tableLen(4) + rawSize(8) + payloadSize(8)
	HeaderSize = 40

	// payloadSizeAt is the header offset patched once the payload is written
	payloadSizeAt = 32

	// MaxTableLen bounds the boundary table read from untrusted input
	MaxTableLen = 64 << 20

	// MaxFileSize bounds the file size and segment length of one entry.
	// Save bodies carry u32 length fields, so real files stay well below it.
	MaxFileSize = math.MaxInt32
)

// Header is the fixed-size archive prefix
type Header struct {
	Version      uint8
	Scheme       longrange.Scheme
	WindowLog    uint8
	PrimaryCount uint32
	SidecarCount uint32
	TableLen     uint32 // encoded boundary table length
	RawSize      uint64 // decompressed payload length
	PayloadSize  uint64 // compressed payload length
}

// Count returns the number of archived files
func (h *Header) Count() int {
	return int(h.PrimaryCount) + int(h.SidecarCount)
}

// MarshalBinary encodes the header
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	h.EncodeTo(buf)
	return buf, nil
}

// EncodeTo writes the header into buf, which must hold HeaderSize bytes
func (h *Header) EncodeTo(buf []byte) {
	copy(buf[0:8], Magic)
	buf[8] = h.Version
	buf[9] = byte(h.Scheme)
	buf[10] = h.WindowLog
	buf[11] = 0
	binary.LittleEndian.PutUint32(buf[12:16], h.PrimaryCount)
	binary.LittleEndian.PutUint32(buf[16:20], h.SidecarCount)
	binary.LittleEndian.PutUint32(buf[20:24], h.TableLen)
	binary.LittleEndian.PutUint64(buf[24:32], h.RawSize)
	binary.LittleEndian.PutUint64(buf[32:40], h.PayloadSize)
}

// UnmarshalBinary decodes and validates a header
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: header too short: need %d, got %d", savedelta.ErrContainerFormat, HeaderSize, len(data))
	}
	if string(data[0:8]) != Magic {
		return fmt.Errorf("%w: invalid magic: expected %q, got %q", savedelta.ErrContainerFormat, Magic, data[0:8])
	}
	h.Version = data[8]
	h.Scheme = longrange.Scheme(data[9])
	h.WindowLog = data[10]
	h.PrimaryCount = binary.LittleEndian.Uint32(data[12:16])
	h.SidecarCount = binary.LittleEndian.Uint32(data[16:20])
	h.TableLen = binary.LittleEndian.Uint32(data[20:24])
	h.RawSize = binary.LittleEndian.Uint64(data[24:32])
	h.PayloadSize = binary.LittleEndian.Uint64(data[32:40])
	return h.Validate()
}

// Validate checks header fields that do not depend on the table
func (h *Header) Validate() error {
	if h.Version != Version {
		return fmt.Errorf("%w: unsupported version %d (want %d)", savedelta.ErrContainerFormat, h.Version, Version)
	}
	if err := h.Scheme.Valid(); err != nil {
		return fmt.Errorf("%w: %w", savedelta.ErrContainerFormat, err)
	}
	if want := h.Scheme.Window(int(h.WindowLog), 0); want != int(h.WindowLog) {
		return fmt.Errorf("%w: %s window log %d out of range", savedelta.ErrContainerFormat, h.Scheme, h.WindowLog)
	}
	if h.PrimaryCount == 0 {
		return fmt.Errorf("%w: archive holds no primary saves", savedelta.ErrContainerFormat)
	}
	if h.TableLen == 0 || h.TableLen > MaxTableLen {
		return fmt.Errorf("%w: table length %d out of range", savedelta.ErrContainerFormat, h.TableLen)
	}
	return nil
}
