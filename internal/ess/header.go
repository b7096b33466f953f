// internal/ess/header.go
package ess

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"
)

// Magic opens every save file
const Magic = "TESV_SAVEGAME"

// Version 12 is the first format with a compression field and an RGBA
// screenshot; earlier versions store RGB and are never compressed.
const (
	VersionSE      = 12
	minVersion     = 7
	filetimeOffset = 116444736000000000
)

// Header is the decoded fixed part of a save file
type Header struct {
	HeaderSize     uint32
	Version        uint32
	SaveNumber     uint32
	PlayerName     string
	PlayerLevel    uint32
	PlayerLocation string
	GameDate       string
	PlayerRace     string
	PlayerSex      uint16
	PlayerCurExp   float32
	PlayerLvlUpExp float32
	FileTime       uint64
	ShotWidth      uint32
	ShotHeight     uint32
	Compression    Compression
}

// Time converts the Windows FILETIME stored in the header
func (h *Header) Time() time.Time {
	if h.FileTime < filetimeOffset {
		return time.Unix(0, 0).UTC()
	}
	d := h.FileTime - filetimeOffset
	return time.Unix(int64(d/10_000_000), int64(d%10_000_000)*100).UTC()
}

// layout locates the variable-size regions of a save
type layout struct {
	compressionAt int // offset of the u16 compression field, -1 if absent
	prefixLen     int // magic, header and screenshot
}

// ParseHeader decodes the header of a save file
func ParseHeader(data []byte) (*Header, error) {
	h, _, err := parse(data)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func parse(data []byte) (*Header, layout, error) {
	c := &cursor{buf: data}
	var h Header
	lay := layout{compressionAt: -1}

	magic, err := c.bytes(len(Magic))
	if err != nil {
		return nil, lay, fmt.Errorf("read magic: %w", err)
	}
	if string(magic) != Magic {
		return nil, lay, fmt.Errorf("invalid magic: got %q, want %q", magic, Magic)
	}

	fields := []struct {
		name string
		read func() error
	}{
		{"header size", func() (err error) { h.HeaderSize, err = c.u32(); return }},
		{"version", func() (err error) { h.Version, err = c.u32(); return }},
		{"save number", func() (err error) { h.SaveNumber, err = c.u32(); return }},
		{"player name", func() (err error) { h.PlayerName, err = c.wstring(); return }},
		{"player level", func() (err error) { h.PlayerLevel, err = c.u32(); return }},
		{"player location", func() (err error) { h.PlayerLocation, err = c.wstring(); return }},
		{"game date", func() (err error) { h.GameDate, err = c.wstring(); return }},
		{"player race", func() (err error) { h.PlayerRace, err = c.wstring(); return }},
		{"player sex", func() (err error) { h.PlayerSex, err = c.u16(); return }},
		{"player exp", func() (err error) { h.PlayerCurExp, err = c.f32(); return }},
		{"level-up exp", func() (err error) { h.PlayerLvlUpExp, err = c.f32(); return }},
		{"filetime", func() (err error) { h.FileTime, err = c.u64(); return }},
		{"screenshot width", func() (err error) { h.ShotWidth, err = c.u32(); return }},
		{"screenshot height", func() (err error) { h.ShotHeight, err = c.u32(); return }},
	}
	for _, f := range fields {
		if err := f.read(); err != nil {
			return nil, lay, fmt.Errorf("read %s: %w", f.name, err)
		}
		if f.name == "version" && (h.Version < minVersion || (h.Version > 9 && h.Version != VersionSE)) {
			return nil, lay, fmt.Errorf("unsupported save version %d", h.Version)
		}
	}

	pixel := uint64(3)
	if h.Version >= VersionSE {
		lay.compressionAt = c.off
		v, err := c.u16()
		if err != nil {
			return nil, lay, fmt.Errorf("read compression type: %w", err)
		}
		h.Compression = Compression(v)
		if !h.Compression.Valid() {
			return nil, lay, fmt.Errorf("invalid compression type %d", v)
		}
		pixel = 4
	}

	shot := pixel * uint64(h.ShotWidth) * uint64(h.ShotHeight)
	if shot > math.MaxInt32 {
		return nil, lay, fmt.Errorf("screenshot %dx%d too large", h.ShotWidth, h.ShotHeight)
	}
	if _, err := c.bytes(int(shot)); err != nil {
		return nil, lay, fmt.Errorf("read screenshot: %w", err)
	}
	lay.prefixLen = c.off

	return &h, lay, nil
}

// cursor reads little-endian values from a byte slice
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) bytes(n int) ([]byte, error) {
	if n < 0 || len(c.buf)-c.off < n {
		return nil, io.ErrUnexpectedEOF
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *cursor) u16() (uint16, error) {
	b, err := c.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *cursor) u32() (uint32, error) {
	b, err := c.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) u64() (uint64, error) {
	b, err := c.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *cursor) f32() (float32, error) {
	v, err := c.u32()
	return math.Float32frombits(v), err
}

func (c *cursor) wstring() (string, error) {
	n, err := c.u16()
	if err != nil {
		return "", err
	}
	b, err := c.bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
