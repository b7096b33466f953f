// pkg/savedelta/io.go
package savedelta

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ProgressWriter wraps an io.Writer with progress tracking
type ProgressWriter struct {
	Writer  io.Writer
	OnWrite func(n int)
}

func (pw *ProgressWriter) Write(p []byte) (n int, err error) {
	n, err = pw.Writer.Write(p)
	if n > 0 && pw.OnWrite != nil {
		pw.OnWrite(n)
	}
	return n, err
}

// ProgressReader wraps an io.Reader with progress tracking
type ProgressReader struct {
	Reader io.Reader
	OnRead func(n int)
}

func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	n, err = pr.Reader.Read(p)
	if n > 0 && pr.OnRead != nil {
		pr.OnRead(n)
	}
	return n, err
}

// CountingWriter wraps an io.Writer and counts bytes written
type CountingWriter struct {
	Writer io.Writer
	Count  int64
}

func (cw *CountingWriter) Write(p []byte) (n int, err error) {
	n, err = cw.Writer.Write(p)
	cw.Count += int64(n)
	return n, err
}

// PathTracker tracks seen names and detects duplicates
type PathTracker struct {
	seen map[string]bool
}

// NewPathTracker creates a new PathTracker
func NewPathTracker() *PathTracker {
	return &PathTracker{
		seen: make(map[string]bool),
	}
}

// CheckDuplicate returns true if the path was already seen, otherwise marks it as seen
func (pt *PathTracker) CheckDuplicate(path string) bool {
	if pt.seen[path] {
		return true
	}
	pt.seen[path] = true
	return false
}

// retryDelay is the pause before the single retry of a failed read
var retryDelay = 50 * time.Millisecond

// ReadFileRetry reads a whole file, retrying exactly once when the failure
// may be transient. Missing files and permission errors are returned as is.
func ReadFileRetry(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return data, err
	}
	time.Sleep(retryDelay)
	return os.ReadFile(path)
}

// IsPlainName reports whether name is a single path element that cannot
// escape the directory it is joined to
func IsPlainName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return filepath.Base(name) == name && !filepath.IsAbs(name) && filepath.Clean(name) == name &&
		!containsSeparator(name)
}

func containsSeparator(name string) bool {
	for i := 0; i < len(name); i++ {
		if name[i] == '/' || name[i] == '\\' {
			return true
		}
	}
	return false
}
