// pkg/savedelta/atomic.go
package savedelta

import (
	"fmt"
	"os"
	"path/filepath"
)

// TempFile is a file staged next to its final path. Nothing is visible at the
// final path until Commit succeeds; Discard removes the staged file.
type TempFile struct {
	*os.File
	final string
	done  bool
}

// CreateTemp stages a new file in the directory of finalPath
func CreateTemp(finalPath string) (*TempFile, error) {
	dir := filepath.Dir(finalPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(finalPath)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	return &TempFile{File: f, final: finalPath}, nil
}

// FinalPath returns the path the file is renamed to on Commit
func (t *TempFile) FinalPath() string {
	return t.final
}

// Close syncs and closes the staged file without publishing it
func (t *TempFile) Close() error {
	if err := t.File.Sync(); err != nil {
		t.File.Close()
		return fmt.Errorf("sync %s: %w", t.Name(), err)
	}
	return t.File.Close()
}

// Commit renames the closed staged file into place and syncs the parent directory
func (t *TempFile) Commit() error {
	if err := os.Rename(t.Name(), t.final); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	t.done = true

	if dir, err := os.Open(filepath.Dir(t.final)); err == nil {
		dir.Sync()
		dir.Close()
	}
	return nil
}

// Discard closes and removes the staged file unless it was committed.
// Safe to call more than once and after Close.
func (t *TempFile) Discard() {
	if t.done {
		return
	}
	t.File.Close()
	os.Remove(t.Name())
	t.done = true
}
