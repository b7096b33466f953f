// Package esstest builds synthetic save files for tests.
package esstest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/klauspost/compress/zlib"
	"github.com/pierrec/lz4/v4"
)

// Save describes a synthetic save file
type Save struct {
	Version     uint32 // 12 when zero
	SaveNumber  uint32
	PlayerName  string
	Location    string
	FileTime    uint64
	ShotWidth   uint32
	ShotHeight  uint32
	Compression uint16 // 0 none, 1 zlib, 2 lz4
	HCLevel     int    // lz4 HC depth 1-9, 0 uses the fast compressor
	ZlibLevel   int    // 6 when zero
	Body        []byte
	Packed      []byte // used as the compressed body instead of compressing Body
}

// Body returns n bytes of compressible game-state-like content. Saves built
// with the same seed share most of their bytes.
func Body(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i/7) ^ byte(i%13)
		if i%4096 == 0 {
			b[i] = seed
		}
	}
	return b
}

// Bytes serializes the save
func (s Save) Bytes() []byte {
	version := s.Version
	if version == 0 {
		version = 12
	}

	var hdr bytes.Buffer
	w := func(v any) { binary.Write(&hdr, binary.LittleEndian, v) }
	ws := func(v string) {
		w(uint16(len(v)))
		hdr.WriteString(v)
	}
	w(version)
	w(s.SaveNumber)
	ws(s.PlayerName)
	w(uint32(10))
	ws(s.Location)
	ws("000.05.22")
	ws("NordRace")
	w(uint16(0))
	w(math.Float32bits(12.5))
	w(math.Float32bits(300))
	w(s.FileTime)
	w(s.ShotWidth)
	w(s.ShotHeight)
	pixel := 3
	if version >= 12 {
		w(s.Compression)
		pixel = 4
	}

	var out bytes.Buffer
	out.WriteString("TESV_SAVEGAME")
	binary.Write(&out, binary.LittleEndian, uint32(hdr.Len()))
	out.Write(hdr.Bytes())

	shot := make([]byte, pixel*int(s.ShotWidth)*int(s.ShotHeight))
	for i := range shot {
		shot[i] = byte(i * 31)
	}
	out.Write(shot)

	if version < 12 || s.Compression == 0 {
		out.Write(s.Body)
		return out.Bytes()
	}

	packed := s.pack()
	binary.Write(&out, binary.LittleEndian, uint32(len(s.Body)))
	binary.Write(&out, binary.LittleEndian, uint32(len(packed)))
	out.Write(packed)
	return out.Bytes()
}

func (s Save) pack() []byte {
	if s.Packed != nil {
		return s.Packed
	}
	switch s.Compression {
	case 1:
		level := s.ZlibLevel
		if level == 0 {
			level = 6
		}
		var buf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&buf, level)
		if err != nil {
			panic(err)
		}
		zw.Write(s.Body)
		zw.Close()
		return buf.Bytes()
	case 2:
		dst := make([]byte, lz4.CompressBlockBound(len(s.Body)))
		var n int
		var err error
		if s.HCLevel > 0 {
			levels := []lz4.CompressionLevel{lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4, lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9}
			n, err = lz4.CompressBlockHC(s.Body, dst, levels[s.HCLevel-1], nil, nil)
		} else {
			n, err = lz4.CompressBlock(s.Body, dst, nil)
		}
		if err != nil || n == 0 {
			panic(fmt.Sprintf("lz4 compress: n=%d err=%v", n, err))
		}
		return dst[:n]
	default:
		panic(fmt.Sprintf("unknown compression %d", s.Compression))
	}
}

// Name returns the file name the game gives a manual save
func Name(index int, ext string) string {
	return fmt.Sprintf("Save%d_0A1B2C3D_0_507269736F6E6572_Tamriel_000005_20240101120000_%d_1.%s", index, index, ext)
}

// LiteralBlock encodes body as a single LZ4 literal run, a valid block no
// match-finding compressor produces for compressible input
func LiteralBlock(body []byte) []byte {
	n := len(body)
	var out []byte
	if n < 15 {
		out = append(out, byte(n<<4))
	} else {
		out = append(out, 0xF0)
		rest := n - 15
		for rest >= 255 {
			out = append(out, 255)
			rest -= 255
		}
		out = append(out, byte(rest))
	}
	return append(out, body...)
}

// Series returns n consecutive lz4 saves of one playthrough keyed by their
// file name, indices 1..n. Each save differs a little from the previous one.
func Series(n, bodySize int) map[string][]byte {
	files := make(map[string][]byte, n)
	for i := 1; i <= n; i++ {
		body := Body(bodySize, byte(i))
		s := Save{
			SaveNumber:  uint32(i),
			PlayerName:  "Prisoner",
			Location:    "Riverwood",
			FileTime:    133485408000000000 + uint64(i)*600_000_000,
			ShotWidth:   16,
			ShotHeight:  9,
			Compression: 2,
			Body:        body,
		}
		files[Name(i, "ess")] = s.Bytes()
	}
	return files
}
