// internal/assemble/assemble.go
package assemble

import (
	"bytes"
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/zeebo/blake3"

	"github.com/creativeyann17/go-savedelta/internal/ess"
	"github.com/creativeyann17/go-savedelta/internal/format"
	"github.com/creativeyann17/go-savedelta/internal/saveset"
	"github.com/creativeyann17/go-savedelta/pkg/savedelta"
)

// Source supplies the bytes of a record
type Source interface {
	ReadFile(rec saveset.Record) ([]byte, error)
}

// DiskSource reads records from their path, retrying a failed read once
type DiskSource struct{}

func (DiskSource) ReadFile(rec saveset.Record) ([]byte, error) {
	return savedelta.ReadFileRetry(rec.Path)
}

// Options configures Build
type Options struct {
	Threads int        // decode workers, runtime.NumCPU() when zero
	Codec   *ess.Codec // ess.Default when nil

	// OnFile is called from worker goroutines once a record is decoded
	OnFile func(rec saveset.Record, entry format.Entry)
}

// Stream is the raw concatenation of an ordered file set together with the
// table that splits it again
type Stream struct {
	Segments [][]byte
	Entries  []format.Entry
	RawSize  uint64
}

// Build reads and decodes every record of set, primary saves first then
// sidecars, and lays out their raw forms back to back. The first failure
// aborts the whole build.
func Build(set *saveset.OrderedFileSet, src Source, opts Options) (*Stream, error) {
	records := set.All()
	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	threads = min(threads, max(len(records), 1))
	codec := ess.Default
	if opts.Codec != nil {
		codec = *opts.Codec
	}

	stream := &Stream{
		Segments: make([][]byte, len(records)),
		Entries:  make([]format.Entry, len(records)),
	}
	errs := make([]error, len(records))
	var failed atomic.Bool

	jobs := make(chan int, len(records))
	for i := range records {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < threads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if failed.Load() {
					continue
				}
				raw, entry, err := decodeRecord(records[i], src, codec)
				if err != nil {
					errs[i] = err
					failed.Store(true)
					continue
				}
				stream.Segments[i] = raw
				stream.Entries[i] = entry
				if opts.OnFile != nil {
					opts.OnFile(records[i], entry)
				}
			}
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var offset uint64
	for i := range stream.Entries {
		stream.Entries[i].Offset = offset
		offset += stream.Entries[i].Length
	}
	stream.RawSize = offset
	return stream, nil
}

func decodeRecord(rec saveset.Record, src Source, codec ess.Codec) ([]byte, format.Entry, error) {
	index := int64(rec.Index)
	file, err := src.ReadFile(rec)
	if err != nil {
		return nil, format.Entry{}, savedelta.Fail(nil, savedelta.StageRead, rec.Name, index, err)
	}

	raw, params := file, ess.Passthrough()
	if rec.Category == saveset.Primary {
		raw, params, err = codec.Decode(file)
		if err != nil {
			return nil, format.Entry{}, savedelta.Fail(savedelta.ErrCodecFormat, savedelta.StageDecode, rec.Name, index, err)
		}
	}

	entry := format.Entry{
		Name:     rec.Name,
		Category: rec.Category,
		Index:    rec.Index,
		Length:   uint64(len(raw)),
		Size:     uint64(len(file)),
		Hash:     blake3.Sum256(file),
		Params:   params,
	}
	if !rec.ModTime.IsZero() {
		entry.ModTime = rec.ModTime.UnixNano()
	}
	return raw, entry, nil
}

// Len returns the number of files in the stream
func (s *Stream) Len() int {
	return len(s.Entries)
}

// Verbatim counts primary saves kept in their compressed form because no
// known writer setting reproduced them
func (s *Stream) Verbatim() int {
	n := 0
	for _, e := range s.Entries {
		if e.Category == saveset.Primary && e.Params.Method == ess.MethodVerbatim {
			n++
		}
	}
	return n
}

// Counts returns the number of primary and sidecar entries
func (s *Stream) Counts() (primary, sidecars uint32) {
	for _, e := range s.Entries {
		if e.Category == saveset.Primary {
			primary++
		} else {
			sidecars++
		}
	}
	return primary, sidecars
}

// WriteTo writes the segments in order
func (s *Stream) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i, seg := range s.Segments {
		n, err := w.Write(seg)
		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("write segment %s: %w", s.Entries[i].Name, err)
		}
	}
	return total, nil
}

// Reader returns the stream as one io.Reader without copying it
func (s *Stream) Reader() io.Reader {
	readers := make([]io.Reader, len(s.Segments))
	for i, seg := range s.Segments {
		readers[i] = bytes.NewReader(seg)
	}
	return io.MultiReader(readers...)
}

// Bytes returns the concatenated stream
func (s *Stream) Bytes() []byte {
	out := make([]byte, 0, s.RawSize)
	for _, seg := range s.Segments {
		out = append(out, seg...)
	}
	return out
}
