// pkg/verify/verify.go
package verify

import (
	"fmt"
	"io"
	"os"

	"github.com/creativeyann17/go-savedelta/internal/assemble"
	"github.com/creativeyann17/go-savedelta/internal/ess"
	"github.com/creativeyann17/go-savedelta/internal/format"
	"github.com/creativeyann17/go-savedelta/internal/saveset"
)

// ProgressCallback is called for progress updates during verification
type ProgressCallback func(event ProgressEvent)

// ProgressEvent contains progress information
type ProgressEvent struct {
	Type     EventType
	FilePath string
	Current  int
	Total    int
	Message  string
}

// EventType indicates the type of progress event
type EventType int

const (
	EventStart EventType = iota
	EventFileVerify
	EventComplete
	EventError
)

// Verify verifies an archive and returns comprehensive results
func Verify(opts *Options, progressCb ProgressCallback) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result := &Result{
		ArchivePath: opts.InputPath,
	}

	// Open archive file
	archiveFile, err := os.Open(opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	stat, err := archiveFile.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	result.ArchiveSize = uint64(stat.Size())

	// Read magic to determine format
	magic := make([]byte, format.MagicSize)
	if _, err := io.ReadFull(archiveFile, magic); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("read magic: %w", err))
		return result, ErrTruncatedArchive
	}
	result.Magic = string(magic)

	if _, err := archiveFile.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to start: %w", err)
	}

	switch format.DetectFormat(magic) {
	case format.FormatSaveDelta:
		result.Format = FormatSaveDelta
		return result, verifySaveDelta(archiveFile, opts, progressCb, result)
	case format.FormatZstd:
		result.Format = FormatZstd
	case format.FormatXZ:
		result.Format = FormatXZ
	default:
		result.Format = FormatUnknown
	}
	// bare compressed streams carry no table to check against
	result.Errors = append(result.Errors, ErrInvalidMagic)
	return result, ErrUnsupportedFormat
}

// verifySaveDelta checks a SAVDELTA archive. Header and table problems stop
// verification; everything after that is collected into the result.
func verifySaveDelta(archiveFile *os.File, opts *Options, progressCb ProgressCallback, result *Result) error {
	ar, err := format.NewReader(archiveFile)
	if err != nil {
		result.Errors = append(result.Errors, err)
		return fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}

	h := ar.Header
	result.HeaderValid = true
	result.MetadataValid = true
	result.Version = h.Version
	result.Scheme = h.Scheme.String()
	result.WindowLog = h.WindowLog
	result.FileCount = len(ar.Entries)
	result.PrimaryCount = int(h.PrimaryCount)
	result.SidecarCount = int(h.SidecarCount)
	result.RawSize = h.RawSize
	result.TotalCompSize = h.PayloadSize

	result.Files = make([]FileInfo, len(ar.Entries))
	for i, e := range ar.Entries {
		result.Files[i] = FileInfo{
			Path:         e.Name,
			Category:     e.Category.String(),
			Index:        e.Index,
			OriginalSize: e.Size,
			RawLength:    e.Length,
			Method:       e.Params.String(),
		}
		result.TotalOrigSize += e.Size
		if e.Category == saveset.Primary && e.Params.Method == ess.MethodVerbatim {
			result.VerbatimSaves++
		}
	}

	if progressCb != nil {
		progressCb(ProgressEvent{
			Type:    EventStart,
			Total:   result.FileCount,
			Message: fmt.Sprintf("Verifying %d files", result.FileCount),
		})
	}

	if opts.VerifyData {
		verifyData(ar, progressCb, result)
	} else {
		// Structural check still reads the payload so the footer is found
		// where the header says it is
		if _, err := io.Copy(io.Discard, ar.Payload()); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("skip payload: %w", err))
		}
	}

	if err := ar.Finish(); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("%w: %w", ErrInvalidFooter, err))
	} else {
		result.FooterValid = true
	}

	result.StructureValid = result.HeaderValid && result.MetadataValid

	if progressCb != nil {
		progressCb(ProgressEvent{
			Type:    EventComplete,
			Current: result.FileCount,
			Total:   result.FileCount,
			Message: "Verification complete",
		})
	}

	return nil
}

// verifyData decompresses the payload and rebuilds every file in memory.
// A file that fails its check is recorded and the next one is tried; a
// broken stream ends the pass.
func verifyData(ar *format.Reader, progressCb ProgressCallback, result *Result) {
	result.DataVerified = true

	lr, err := ar.Header.Scheme.Reader(ar.Payload(), int(ar.Header.WindowLog))
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("open payload: %w", err))
		return
	}
	defer lr.Close()

	err = assemble.Split(lr, ar.Entries, func(i int, raw []byte) error {
		info := &result.Files[i]
		if _, err := assemble.Rebuild(ar.Entries[i], raw); err != nil {
			info.Error = err
			result.CorruptFiles++
			result.Errors = append(result.Errors, fmt.Errorf("%w: %w", ErrCorruptData, err))
			if progressCb != nil {
				progressCb(ProgressEvent{Type: EventError, FilePath: info.Path, Message: err.Error()})
			}
		} else {
			info.DataValid = true
			result.FilesVerified++
		}

		if progressCb != nil {
			progressCb(ProgressEvent{
				Type:     EventFileVerify,
				FilePath: info.Path,
				Current:  i + 1,
				Total:    result.FileCount,
			})
		}
		return nil
	})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("%w: %w", ErrCorruptData, err))
		return
	}

	// Drain anything the decoder left so Finish sees the real footer position
	if _, err := io.Copy(io.Discard, ar.Payload()); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("drain payload: %w", err))
	}
}
