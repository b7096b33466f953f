// internal/format/writer.go
package format

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/creativeyann17/go-savedelta/pkg/savedelta"
)

// Writer lays out an archive: header, boundary table, payload, footer.
// The compressed payload size is unknown until Close and is patched into
// the header afterwards.
type Writer struct {
	w         io.WriteSeeker
	headerPos int64
	payload   savedelta.CountingWriter
	closed    bool
}

// NewWriter validates the table against h, then writes the header and table.
// h.TableLen and h.PayloadSize are filled in by the writer.
func NewWriter(w io.WriteSeeker, h Header, entries []Entry) (*Writer, error) {
	table, err := MarshalTable(entries)
	if err != nil {
		return nil, err
	}
	h.Version = Version
	h.TableLen = uint32(len(table))
	h.PayloadSize = 0
	if err := h.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateTable(entries, &h); err != nil {
		return nil, err
	}

	headerPos, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("get current position: %w", err)
	}
	header, _ := h.MarshalBinary()
	if _, err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if _, err := w.Write(table); err != nil {
		return nil, fmt.Errorf("write table: %w", err)
	}

	aw := &Writer{w: w, headerPos: headerPos}
	aw.payload.Writer = w
	return aw, nil
}

// Payload returns the writer for the compressed payload
func (aw *Writer) Payload() io.Writer {
	return &aw.payload
}

// PayloadSize returns the compressed bytes written so far
func (aw *Writer) PayloadSize() int64 {
	return aw.payload.Count
}

// Close writes the footer and patches the payload size into the header
func (aw *Writer) Close() error {
	if aw.closed {
		return nil
	}
	aw.closed = true

	if _, err := aw.w.Write([]byte(FooterMagic)); err != nil {
		return fmt.Errorf("write footer: %w", err)
	}

	endPos, err := aw.w.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("get current position: %w", err)
	}
	if _, err := aw.w.Seek(aw.headerPos+payloadSizeAt, io.SeekStart); err != nil {
		return fmt.Errorf("seek to payload size: %w", err)
	}
	if err := binary.Write(aw.w, binary.LittleEndian, uint64(aw.payload.Count)); err != nil {
		return fmt.Errorf("write payload size: %w", err)
	}
	if _, err := aw.w.Seek(endPos, io.SeekStart); err != nil {
		return fmt.Errorf("restore position: %w", err)
	}
	return nil
}
