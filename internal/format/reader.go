// internal/format/reader.go
package format

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/creativeyann17/go-savedelta/pkg/savedelta"
)

// Reader reads an archive sequentially. It never seeks, so it works on
// pipes as well as files.
type Reader struct {
	Header  Header
	Entries []Entry

	r       io.Reader
	payload *io.LimitedReader
}

// NewReader reads and validates the header and boundary table. The reader
// is then positioned at the start of the compressed payload.
func NewReader(r io.Reader) (*Reader, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: read header: %w", savedelta.ErrContainerFormat, err)
	}

	ar := &Reader{r: r}
	if err := ar.Header.UnmarshalBinary(buf); err != nil {
		return nil, err
	}

	table := make([]byte, ar.Header.TableLen)
	if _, err := io.ReadFull(r, table); err != nil {
		return nil, fmt.Errorf("%w: read table: %w", savedelta.ErrContainerFormat, err)
	}
	entries, err := UnmarshalTable(table, &ar.Header)
	if err != nil {
		return nil, err
	}
	ar.Entries = entries
	ar.payload = &io.LimitedReader{R: r, N: int64(ar.Header.PayloadSize)}
	return ar, nil
}

// Payload returns the compressed payload, limited to its declared size
func (ar *Reader) Payload() io.Reader {
	return ar.payload
}

// Finish checks that the payload was consumed entirely and that the footer
// closes the archive with nothing after it
func (ar *Reader) Finish() error {
	if ar.payload.N > 0 {
		return fmt.Errorf("%w: %d compressed bytes after end of stream", savedelta.ErrContainerFormat, ar.payload.N)
	}

	footer := make([]byte, len(FooterMagic))
	if _, err := io.ReadFull(ar.r, footer); err != nil {
		return fmt.Errorf("%w: read footer: %w", savedelta.ErrContainerFormat, err)
	}
	if !bytes.Equal(footer, []byte(FooterMagic)) {
		return fmt.Errorf("%w: invalid footer %q", savedelta.ErrContainerFormat, footer)
	}

	var extra [1]byte
	n, err := io.ReadFull(ar.r, extra[:])
	if n > 0 {
		return fmt.Errorf("%w: trailing data after footer", savedelta.ErrContainerFormat)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read after footer: %w", err)
	}
	return nil
}
