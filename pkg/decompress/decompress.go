// pkg/decompress/decompress.go
package decompress

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/creativeyann17/go-savedelta/internal/assemble"
	"github.com/creativeyann17/go-savedelta/internal/format"
	"github.com/creativeyann17/go-savedelta/pkg/savedelta"
)

// Decompress restores every file of the archive at opts.InputPath into
// opts.OutputPath. Files are staged next to their destination and only
// renamed into place once the whole payload checked out. If a rename fails,
// the files this run created are removed again; files replaced under
// Overwrite keep their restored content.
func Decompress(opts *Options, progressCb ProgressCallback) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result := &Result{}
	err := restore(opts, progressCb, result)
	if err != nil {
		result.Errors = append(result.Errors, err)
	}
	if progressCb != nil {
		progressCb(ProgressEvent{Type: EventComplete})
	}
	return result, err
}

func restore(opts *Options, progressCb ProgressCallback, result *Result) error {
	archiveFile, err := os.Open(opts.InputPath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	if info, err := archiveFile.Stat(); err == nil {
		result.CompressedSize = uint64(info.Size())
	}

	ar, err := format.NewReader(archiveFile)
	if err != nil {
		return savedelta.Fail(savedelta.ErrContainerFormat, savedelta.StageContainer, opts.InputPath, -1, err)
	}
	result.FilesTotal = len(ar.Entries)
	result.RawSize = ar.Header.RawSize

	if err := checkDestinations(opts, ar.Entries); err != nil {
		return err
	}
	if err := os.MkdirAll(opts.OutputPath, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if progressCb != nil {
		progressCb(ProgressEvent{
			Type:       EventStart,
			Total:      int64(result.FilesTotal),
			TotalBytes: ar.Header.RawSize,
		})
	}

	staged := make([]*savedelta.TempFile, len(ar.Entries))
	committed := false
	defer func() {
		if !committed {
			for _, tmp := range staged {
				if tmp != nil {
					tmp.Discard()
				}
			}
		}
	}()

	if err := rebuildAll(opts, ar, staged, progressCb); err != nil {
		return err
	}
	if err := ar.Finish(); err != nil {
		return savedelta.Fail(savedelta.ErrContainerFormat, savedelta.StageContainer, opts.InputPath, -1, err)
	}

	if err := commitAll(ar.Entries, staged); err != nil {
		return err
	}
	for _, e := range ar.Entries {
		result.FilesProcessed++
		result.DecompressedSize += e.Size
		result.Files = append(result.Files, e.Name)
	}
	committed = true
	return nil
}

// commitAll renames every staged file into place and restores its mtime.
// On failure the files this run created are removed; replaced files stay.
func commitAll(entries []format.Entry, staged []*savedelta.TempFile) error {
	var placed []string
	rollback := func() {
		for _, path := range placed {
			os.Remove(path)
		}
	}

	for i, tmp := range staged {
		e := entries[i]
		_, statErr := os.Lstat(tmp.FinalPath())
		if err := tmp.Commit(); err != nil {
			rollback()
			return savedelta.Fail(nil, savedelta.StageWrite, e.Name, int64(e.Index), err)
		}
		if os.IsNotExist(statErr) {
			placed = append(placed, tmp.FinalPath())
		}
		if e.ModTime != 0 {
			mtime := time.Unix(0, e.ModTime)
			if err := os.Chtimes(tmp.FinalPath(), mtime, mtime); err != nil {
				rollback()
				return savedelta.Fail(nil, savedelta.StageWrite, e.Name, int64(e.Index), err)
			}
		}
	}
	return nil
}

// checkDestinations refuses to start when a restored name is taken
func checkDestinations(opts *Options, entries []format.Entry) error {
	for _, e := range entries {
		path := filepath.Join(opts.OutputPath, e.Name)
		info, err := os.Lstat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return savedelta.Fail(nil, savedelta.StageWrite, e.Name, int64(e.Index), err)
		}
		if info.IsDir() {
			return savedelta.Fail(nil, savedelta.StageWrite, e.Name, int64(e.Index), fmt.Errorf("%s is a directory", path))
		}
		if !opts.Overwrite {
			return savedelta.Fail(nil, savedelta.StageWrite, e.Name, int64(e.Index), ErrFileExists)
		}
	}
	return nil
}

type segment struct {
	index int
	raw   []byte
}

// rebuildAll decompresses the payload, cuts it into segments and re-encodes
// them on a worker pool. Each rebuilt file goes to its own staged temp file.
func rebuildAll(opts *Options, ar *format.Reader, staged []*savedelta.TempFile, progressCb ProgressCallback) error {
	var read int64
	payload := &savedelta.ProgressReader{
		Reader: ar.Payload(),
		OnRead: func(n int) {
			read += int64(n)
			if progressCb != nil {
				progressCb(ProgressEvent{Type: EventPayload, Current: read, Total: int64(ar.Header.PayloadSize)})
			}
		},
	}
	lr, err := ar.Header.Scheme.Reader(payload, int(ar.Header.WindowLog))
	if err != nil {
		return savedelta.Fail(savedelta.ErrContainerFormat, savedelta.StageDecompress, opts.InputPath, -1, err)
	}
	defer lr.Close()

	var (
		mu       sync.Mutex
		firstErr error
		done     int64
	)
	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	getErr := func() error {
		mu.Lock()
		defer mu.Unlock()
		return firstErr
	}

	jobs := make(chan segment, opts.MaxThreads)
	var wg sync.WaitGroup
	for w := 0; w < opts.MaxThreads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if getErr() != nil {
					continue
				}
				e := ar.Entries[job.index]
				tmp, err := stageFile(filepath.Join(opts.OutputPath, e.Name), e, job.raw)
				if err != nil {
					setErr(err)
					if progressCb != nil {
						progressCb(ProgressEvent{Type: EventError, FilePath: e.Name})
					}
					continue
				}
				staged[job.index] = tmp

				mu.Lock()
				done++
				n := done
				mu.Unlock()
				if progressCb != nil {
					progressCb(ProgressEvent{
						Type:     EventFileComplete,
						FilePath: e.Name,
						Current:  n,
						Total:    int64(len(ar.Entries)),
					})
				}
			}
		}()
	}

	splitErr := assemble.Split(lr, ar.Entries, func(i int, raw []byte) error {
		if err := getErr(); err != nil {
			return err
		}
		jobs <- segment{index: i, raw: raw}
		return nil
	})
	close(jobs)
	wg.Wait()

	if err := getErr(); err != nil {
		return err
	}
	return splitErr
}

// stageFile rebuilds one file and writes it to a temp file beside path
func stageFile(path string, e format.Entry, raw []byte) (*savedelta.TempFile, error) {
	data, err := assemble.Rebuild(e, raw)
	if err != nil {
		return nil, err
	}

	tmp, err := savedelta.CreateTemp(path)
	if err != nil {
		return nil, savedelta.Fail(nil, savedelta.StageWrite, e.Name, int64(e.Index), err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Discard()
		return nil, savedelta.Fail(nil, savedelta.StageWrite, e.Name, int64(e.Index), err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Discard()
		return nil, savedelta.Fail(nil, savedelta.StageWrite, e.Name, int64(e.Index), err)
	}
	if err := tmp.Close(); err != nil {
		tmp.Discard()
		return nil, savedelta.Fail(nil, savedelta.StageWrite, e.Name, int64(e.Index), err)
	}
	return tmp, nil
}
