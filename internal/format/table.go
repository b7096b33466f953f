// internal/format/table.go
package format

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/creativeyann17/go-savedelta/internal/ess"
	"github.com/creativeyann17/go-savedelta/internal/saveset"
	"github.com/creativeyann17/go-savedelta/pkg/savedelta"
)

// Entry locates one file inside the decompressed payload and carries what
// is needed to rebuild it byte for byte
type Entry struct {
	Name     string           `cbor:"1,keyasint"`
	Category saveset.Category `cbor:"2,keyasint"`
	Index    uint64           `cbor:"3,keyasint"`
	Offset   uint64           `cbor:"4,keyasint"` // start of the raw segment
	Length   uint64           `cbor:"5,keyasint"` // raw segment length
	Size     uint64           `cbor:"6,keyasint"` // restored file length
	Hash     [32]byte         `cbor:"7,keyasint"` // BLAKE3 of the restored file
	ModTime  int64            `cbor:"8,keyasint,omitempty"`
	Params   ess.Params       `cbor:"9,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	// deterministic encoding keeps archives of identical input identical
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("format: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		MaxArrayElements: 1 << 20,
	}.DecMode()
	if err != nil {
		panic("format: CBOR decoder initialization failed: " + err.Error())
	}
}

// MarshalTable encodes the boundary table
func MarshalTable(entries []Entry) ([]byte, error) {
	data, err := encMode.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode table: %w", err)
	}
	return data, nil
}

// UnmarshalTable decodes a boundary table and checks it against the header
func UnmarshalTable(data []byte, h *Header) ([]Entry, error) {
	var entries []Entry
	if err := decMode.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: decode table: %w", savedelta.ErrContainerFormat, err)
	}
	if err := ValidateTable(entries, h); err != nil {
		return nil, err
	}
	return entries, nil
}

// ValidateTable checks that entries tile the raw payload exactly, primary
// saves first, each category in strictly ascending index order, with names
// that are unique plain file names
func ValidateTable(entries []Entry, h *Header) error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: "+format, append([]any{savedelta.ErrContainerFormat}, args...)...)
	}

	if len(entries) != h.Count() {
		return fail("table lists %d entries, header declares %d", len(entries), h.Count())
	}

	names := savedelta.NewPathTracker()
	var offset uint64
	for i, e := range entries {
		want := saveset.Primary
		if i >= int(h.PrimaryCount) {
			want = saveset.Sidecar
		}
		if e.Category != want {
			return fail("entry %d %q: expected %s, got %s", i, e.Name, want, e.Category)
		}
		if i > 0 && entries[i-1].Category == e.Category && entries[i-1].Index >= e.Index {
			return fail("entry %d %q: index %d not above %d", i, e.Name, e.Index, entries[i-1].Index)
		}
		if !savedelta.IsPlainName(e.Name) {
			return fail("entry %d: invalid file name %q", i, e.Name)
		}
		if names.CheckDuplicate(e.Name) {
			return fail("entry %d: duplicate file name %q", i, e.Name)
		}
		if e.Length > MaxFileSize || e.Size > MaxFileSize {
			return fail("entry %d %q: %d byte segment for a %d byte file exceeds %d", i, e.Name, e.Length, e.Size, MaxFileSize)
		}
		if e.Offset != offset {
			return fail("entry %d %q: offset %d, expected %d", i, e.Name, e.Offset, offset)
		}
		if err := e.Params.Validate(); err != nil {
			return fail("entry %d %q: %v", i, e.Name, err)
		}
		if !e.Params.Expanded() && e.Length != e.Size {
			return fail("entry %d %q: stored segment of %d bytes for a %d byte file", i, e.Name, e.Length, e.Size)
		}
		if e.Length > h.RawSize-offset {
			return fail("entry %d %q: segment overruns payload", i, e.Name)
		}
		offset += e.Length
	}
	if offset != h.RawSize {
		return fail("segments cover %d bytes, header declares %d", offset, h.RawSize)
	}
	return nil
}
