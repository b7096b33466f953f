// pkg/compress/compress.go
package compress

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/creativeyann17/go-savedelta/internal/assemble"
	"github.com/creativeyann17/go-savedelta/internal/chunkstore"
	"github.com/creativeyann17/go-savedelta/internal/ess"
	"github.com/creativeyann17/go-savedelta/internal/format"
	"github.com/creativeyann17/go-savedelta/internal/longrange"
	"github.com/creativeyann17/go-savedelta/internal/saveset"
	"github.com/creativeyann17/go-savedelta/pkg/savedelta"
)

// Compress archives the saves found in opts.InputPath into opts.OutputPath.
// The run is all-or-nothing: on any error no archive is left behind and
// the returned Result holds what was learned up to the failure.
func Compress(opts *Options, progressCb ProgressCallback) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result := &Result{}
	err := compress(opts, progressCb, result)
	if err != nil {
		result.Errors = append(result.Errors, err)
	}
	if progressCb != nil {
		progressCb(ProgressEvent{Type: EventComplete})
	}
	return result, err
}

func compress(opts *Options, progressCb ProgressCallback, result *Result) error {
	set, ordered, err := saveset.DiscoverOrdered(opts.InputPath, saveset.DiscoverOptions{IgnoreFile: opts.IgnoreFile})
	if set != nil {
		for _, rec := range set.Excluded {
			result.Excluded = append(result.Excluded, ExcludedFile{Name: rec.Name, Reason: rec.Reason})
		}
	}
	if err != nil {
		return err
	}

	result.FilesTotal = ordered.Len()
	result.PrimaryCount = len(ordered.Primary)
	result.SidecarCount = len(ordered.Sidecars)
	for _, rec := range ordered.All() {
		result.OriginalSize += uint64(rec.Size)
	}

	if progressCb != nil {
		progressCb(ProgressEvent{
			Type:       EventStart,
			Total:      int64(result.FilesTotal),
			TotalBytes: result.OriginalSize,
		})
	}

	stream, err := buildStream(opts, ordered, progressCb, result)
	if err != nil {
		return err
	}

	if opts.Analyze || opts.DryRun {
		stats, err := chunkstore.Analyze(stream.Reader(), opts.ChunkSize, opts.MaxChunks)
		if err != nil {
			return fmt.Errorf("analyze stream: %w", err)
		}
		result.TotalChunks = stats.TotalChunks
		result.UniqueChunks = stats.UniqueChunks
		result.DedupedChunks = stats.DedupedChunks
		result.BytesShared = stats.BytesSaved
		result.Evictions = stats.Evictions
	}

	scheme := opts.scheme()
	settings := longrange.Settings{
		WindowLog: opts.WindowLog,
		Level:     opts.Level,
		Threads:   opts.MaxThreads,
		SizeHint:  int64(stream.RawSize),
	}
	result.Scheme = scheme.String()
	result.WindowLog = scheme.Window(settings.WindowLog, settings.SizeHint)

	primary, sidecars := stream.Counts()
	header := format.Header{
		Scheme:       scheme,
		WindowLog:    uint8(result.WindowLog),
		PrimaryCount: primary,
		SidecarCount: sidecars,
		RawSize:      stream.RawSize,
	}

	if opts.DryRun {
		size, err := estimateSize(stream, header, settings, progressCb)
		if err != nil {
			return err
		}
		result.CompressedSize = size
		return nil
	}

	return writeArchive(opts.OutputPath, stream, header, settings, progressCb, result)
}

// buildStream decodes every save into the raw stream
func buildStream(opts *Options, ordered *saveset.OrderedFileSet, progressCb ProgressCallback, result *Result) (*assemble.Stream, error) {
	var processed atomic.Int64
	buildOpts := assemble.Options{
		Threads: opts.MaxThreads,
		OnFile: func(rec saveset.Record, entry format.Entry) {
			n := processed.Add(1)
			if progressCb != nil {
				progressCb(ProgressEvent{
					Type:         EventFileComplete,
					FilePath:     rec.Name,
					Current:      n,
					Total:        int64(result.FilesTotal),
					CurrentBytes: entry.Length,
					TotalBytes:   entry.Size,
				})
			}
		},
	}
	if opts.FastCodec {
		buildOpts.Codec = &ess.Codec{Exhaustive: false}
	}

	stream, err := assemble.Build(ordered, assemble.DiskSource{}, buildOpts)
	result.FilesProcessed = int(processed.Load())
	if err != nil {
		var se *savedelta.StageError
		if progressCb != nil && errors.As(err, &se) {
			progressCb(ProgressEvent{Type: EventError, FilePath: se.Name})
		}
		return nil, err
	}
	result.RawSize = stream.RawSize
	result.VerbatimSaves = stream.Verbatim()
	return stream, nil
}

// writeArchive streams the payload into a temp file next to outputPath and
// renames it into place once everything is on disk
func writeArchive(outputPath string, stream *assemble.Stream, header format.Header, settings longrange.Settings, progressCb ProgressCallback, result *Result) (err error) {
	tmp, err := savedelta.CreateTemp(outputPath)
	if err != nil {
		return savedelta.Fail(nil, savedelta.StageWrite, outputPath, -1, err)
	}
	defer func() {
		if err != nil {
			tmp.Discard()
		}
	}()

	aw, err := format.NewWriter(tmp, header, stream.Entries)
	if err != nil {
		return savedelta.Fail(savedelta.ErrContainerFormat, savedelta.StageContainer, outputPath, -1, err)
	}
	if err := compressPayload(aw.Payload(), stream, header.Scheme, settings, progressCb); err != nil {
		return err
	}
	if err := aw.Close(); err != nil {
		return savedelta.Fail(nil, savedelta.StageContainer, outputPath, -1, err)
	}

	if err := tmp.Chmod(0644); err != nil {
		return savedelta.Fail(nil, savedelta.StageWrite, outputPath, -1, err)
	}
	size, err := tmp.Seek(0, io.SeekEnd)
	if err != nil {
		return savedelta.Fail(nil, savedelta.StageWrite, outputPath, -1, err)
	}
	if err := tmp.Close(); err != nil {
		return savedelta.Fail(nil, savedelta.StageWrite, outputPath, -1, err)
	}
	if err := tmp.Commit(); err != nil {
		return savedelta.Fail(nil, savedelta.StageWrite, outputPath, -1, err)
	}

	result.CompressedSize = uint64(size)
	return nil
}

// estimateSize compresses the stream into a counter
func estimateSize(stream *assemble.Stream, header format.Header, settings longrange.Settings, progressCb ProgressCallback) (uint64, error) {
	table, err := format.MarshalTable(stream.Entries)
	if err != nil {
		return 0, savedelta.Fail(savedelta.ErrContainerFormat, savedelta.StageContainer, "", -1, err)
	}
	counter := &savedelta.CountingWriter{Writer: io.Discard}
	if err := compressPayload(counter, stream, header.Scheme, settings, progressCb); err != nil {
		return 0, err
	}
	return uint64(format.HeaderSize+len(table)+len(format.FooterMagic)) + uint64(counter.Count), nil
}

// compressPayload runs the raw stream through the long-range compressor in
// one pass
func compressPayload(w io.Writer, stream *assemble.Stream, scheme longrange.Scheme, settings longrange.Settings, progressCb ProgressCallback) error {
	lw, err := scheme.Writer(w, settings)
	if err != nil {
		return savedelta.Fail(nil, savedelta.StageCompress, "", -1, err)
	}

	var written int64
	pw := &savedelta.ProgressWriter{
		Writer: lw,
		OnWrite: func(n int) {
			written += int64(n)
			if progressCb != nil {
				progressCb(ProgressEvent{Type: EventPayload, Current: written, Total: int64(stream.RawSize)})
			}
		},
	}
	if _, err := stream.WriteTo(pw); err != nil {
		lw.Close()
		return savedelta.Fail(nil, savedelta.StageCompress, "", -1, err)
	}
	if err := lw.Close(); err != nil {
		return savedelta.Fail(nil, savedelta.StageCompress, "", -1, err)
	}
	return nil
}
