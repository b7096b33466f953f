// internal/assemble/rebuild.go
package assemble

import (
	"fmt"
	"io"

	"github.com/zeebo/blake3"

	"github.com/creativeyann17/go-savedelta/internal/ess"
	"github.com/creativeyann17/go-savedelta/internal/format"
	"github.com/creativeyann17/go-savedelta/pkg/savedelta"
)

// Rebuild turns one raw segment back into the original file and checks it
// against the size and hash recorded at archival time
func Rebuild(e format.Entry, raw []byte) ([]byte, error) {
	index := int64(e.Index)
	if uint64(len(raw)) != e.Length {
		return nil, savedelta.Fail(savedelta.ErrIntegrity, savedelta.StageEncode, e.Name, index,
			fmt.Errorf("segment is %d bytes, table says %d", len(raw), e.Length))
	}
	file, err := ess.Encode(raw, e.Params)
	if err != nil {
		// the segment came out of a checked archive, so this is damage
		return nil, savedelta.Fail(savedelta.ErrIntegrity, savedelta.StageEncode, e.Name, index, err)
	}
	if uint64(len(file)) != e.Size {
		return nil, savedelta.Fail(savedelta.ErrIntegrity, savedelta.StageEncode, e.Name, index,
			fmt.Errorf("rebuilt %d bytes, expected %d", len(file), e.Size))
	}
	if blake3.Sum256(file) != e.Hash {
		return nil, savedelta.Fail(savedelta.ErrIntegrity, savedelta.StageEncode, e.Name, index,
			fmt.Errorf("content hash mismatch"))
	}
	return file, nil
}

// Split reads the segments of entries from r, in table order, and hands
// each to fn. Fewer bytes than the table covers, or any byte after the last
// segment, is an integrity error.
func Split(r io.Reader, entries []format.Entry, fn func(i int, raw []byte) error) error {
	for i, e := range entries {
		if e.Length > format.MaxFileSize {
			return savedelta.Fail(savedelta.ErrIntegrity, savedelta.StageDecompress, e.Name, int64(e.Index),
				fmt.Errorf("segment of %d bytes exceeds %d", e.Length, format.MaxFileSize))
		}
		raw := make([]byte, e.Length)
		if _, err := io.ReadFull(r, raw); err != nil {
			return savedelta.Fail(savedelta.ErrIntegrity, savedelta.StageDecompress, e.Name, int64(e.Index),
				fmt.Errorf("read segment: %w", err))
		}
		if err := fn(i, raw); err != nil {
			return err
		}
	}

	var extra [1]byte
	n, err := io.ReadFull(r, extra[:])
	if n > 0 {
		return savedelta.Fail(savedelta.ErrIntegrity, savedelta.StageDecompress, "", -1,
			fmt.Errorf("payload longer than the table covers"))
	}
	if err != io.EOF {
		return savedelta.Fail(savedelta.ErrIntegrity, savedelta.StageDecompress, "", -1, err)
	}
	return nil
}
