package decompress_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/creativeyann17/go-savedelta/internal/ess/esstest"
	"github.com/creativeyann17/go-savedelta/internal/format"
	"github.com/creativeyann17/go-savedelta/pkg/compress"
	"github.com/creativeyann17/go-savedelta/pkg/decompress"
	"github.com/creativeyann17/go-savedelta/pkg/savedelta"
)

// buildArchive compresses a small playthrough and returns the archive path
// and the original files
func buildArchive(t *testing.T) (string, map[string][]byte) {
	t.Helper()
	sourceDir := t.TempDir()
	files := esstest.Series(3, 24*1024)
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(sourceDir, name), data, 0644); err != nil {
			t.Fatal(err)
		}
	}

	archivePath := filepath.Join(t.TempDir(), "saves.sdelta")
	if _, err := compress.Compress(&compress.Options{InputPath: sourceDir, OutputPath: archivePath, Quiet: true}, nil); err != nil {
		t.Fatalf("Compression failed: %v", err)
	}
	return archivePath, files
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

func TestOverwriteRefused(t *testing.T) {
	archivePath, files := buildArchive(t)
	destDir := t.TempDir()

	existing := esstest.Name(2, "ess")
	if err := os.WriteFile(filepath.Join(destDir, existing), []byte("keep me"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := decompress.Decompress(&decompress.Options{InputPath: archivePath, OutputPath: destDir}, nil)
	if !errors.Is(err, decompress.ErrFileExists) {
		t.Fatalf("Expected ErrFileExists, got %v", err)
	}

	data, err := os.ReadFile(filepath.Join(destDir, existing))
	if err != nil || string(data) != "keep me" {
		t.Error("Existing file was modified")
	}
	if names := dirEntries(t, destDir); len(names) != 1 {
		t.Errorf("Refused restore must write nothing, found %v", names)
	}

	t.Run("with overwrite", func(t *testing.T) {
		result, err := decompress.Decompress(&decompress.Options{InputPath: archivePath, OutputPath: destDir, Overwrite: true}, nil)
		if err != nil {
			t.Fatalf("Decompression failed: %v", err)
		}
		if !result.Success() {
			t.Errorf("Expected success, got %+v", result)
		}
		data, err := os.ReadFile(filepath.Join(destDir, existing))
		if err != nil || !bytes.Equal(data, files[existing]) {
			t.Error("Existing file was not replaced by the archived save")
		}
	})
}

func TestCorruptPayload(t *testing.T) {
	archivePath, _ := buildArchive(t)
	data, err := os.ReadFile(archivePath)
	if err != nil {
		t.Fatal(err)
	}

	ar, err := format.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	payloadStart := format.HeaderSize + int(ar.Header.TableLen)
	data[payloadStart+int(ar.Header.PayloadSize)/2] ^= 0x55

	corruptPath := filepath.Join(t.TempDir(), "corrupt.sdelta")
	if err := os.WriteFile(corruptPath, data, 0644); err != nil {
		t.Fatal(err)
	}

	destDir := t.TempDir()
	_, err = decompress.Decompress(&decompress.Options{InputPath: corruptPath, OutputPath: destDir}, nil)
	if !errors.Is(err, savedelta.ErrIntegrity) {
		t.Fatalf("Expected ErrIntegrity, got %v", err)
	}
	if names := dirEntries(t, destDir); len(names) != 0 {
		t.Errorf("Failed restore must leave no files, found %v", names)
	}
}

func TestTruncatedArchive(t *testing.T) {
	archivePath, _ := buildArchive(t)
	data, err := os.ReadFile(archivePath)
	if err != nil {
		t.Fatal(err)
	}

	truncated := filepath.Join(t.TempDir(), "truncated.sdelta")
	if err := os.WriteFile(truncated, data[:len(data)-40], 0644); err != nil {
		t.Fatal(err)
	}

	destDir := t.TempDir()
	_, err = decompress.Decompress(&decompress.Options{InputPath: truncated, OutputPath: destDir}, nil)
	if !errors.Is(err, savedelta.ErrIntegrity) && !errors.Is(err, savedelta.ErrContainerFormat) {
		t.Fatalf("Expected ErrIntegrity or ErrContainerFormat, got %v", err)
	}
	if names := dirEntries(t, destDir); len(names) != 0 {
		t.Errorf("Failed restore must leave no files, found %v", names)
	}
}

func TestUnknownVersion(t *testing.T) {
	archivePath, _ := buildArchive(t)
	data, err := os.ReadFile(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	data[8] = format.Version + 1

	path := filepath.Join(t.TempDir(), "future.sdelta")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	_, err = decompress.Decompress(&decompress.Options{InputPath: path, OutputPath: t.TempDir()}, nil)
	if !errors.Is(err, savedelta.ErrContainerFormat) {
		t.Errorf("Expected ErrContainerFormat, got %v", err)
	}
}

func TestNotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves.zip")
	if err := os.WriteFile(path, []byte("PK\x03\x04 not a savedelta archive at all"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := decompress.Decompress(&decompress.Options{InputPath: path, OutputPath: t.TempDir()}, nil)
	if !errors.Is(err, savedelta.ErrContainerFormat) {
		t.Errorf("Expected ErrContainerFormat, got %v", err)
	}
}

func TestProgressEvents(t *testing.T) {
	archivePath, files := buildArchive(t)

	var completed, payload atomic.Int32
	cb := func(ev decompress.ProgressEvent) {
		switch ev.Type {
		case decompress.EventFileComplete:
			completed.Add(1)
		case decompress.EventPayload:
			payload.Add(1)
		}
	}
	if _, err := decompress.Decompress(&decompress.Options{InputPath: archivePath, OutputPath: t.TempDir(), MaxThreads: 1}, cb); err != nil {
		t.Fatal(err)
	}
	if int(completed.Load()) != len(files) {
		t.Errorf("Expected %d file events, got %d", len(files), completed.Load())
	}
	if payload.Load() == 0 {
		t.Error("Expected payload progress events")
	}
}

// blockLastFile returns a callback that puts a directory in the way of the
// last file once every file is staged, so its rename fails
func blockLastFile(t *testing.T, destDir string) decompress.ProgressCallback {
	blocker := filepath.Join(destDir, esstest.Name(3, "ess"))
	return func(ev decompress.ProgressEvent) {
		if ev.Type == decompress.EventFileComplete && ev.Current == ev.Total {
			if err := os.MkdirAll(filepath.Join(blocker, "inside"), 0755); err != nil {
				t.Error(err)
			}
		}
	}
}

func TestCommitFailureRemovesCreatedFiles(t *testing.T) {
	archivePath, _ := buildArchive(t)
	destDir := t.TempDir()

	_, err := decompress.Decompress(&decompress.Options{InputPath: archivePath, OutputPath: destDir}, blockLastFile(t, destDir))
	if err == nil {
		t.Fatal("Expected rename failure")
	}
	names := dirEntries(t, destDir)
	if len(names) != 1 || names[0] != esstest.Name(3, "ess") {
		t.Errorf("Expected only the blocking directory, found %v", names)
	}
}

func TestCommitFailureKeepsReplacedFiles(t *testing.T) {
	archivePath, files := buildArchive(t)
	destDir := t.TempDir()

	replaced := esstest.Name(1, "ess")
	if err := os.WriteFile(filepath.Join(destDir, replaced), []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	opts := &decompress.Options{InputPath: archivePath, OutputPath: destDir, Overwrite: true}
	if _, err := decompress.Decompress(opts, blockLastFile(t, destDir)); err == nil {
		t.Fatal("Expected rename failure")
	}

	got, err := os.ReadFile(filepath.Join(destDir, replaced))
	if err != nil {
		t.Fatalf("Replaced file must stay: %v", err)
	}
	if !bytes.Equal(got, files[replaced]) {
		t.Error("Replaced file should hold the restored content")
	}
	if _, err := os.Stat(filepath.Join(destDir, esstest.Name(2, "ess"))); !os.IsNotExist(err) {
		t.Errorf("Created file should be removed, stat: %v", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	opts := decompress.Options{}
	if err := opts.Validate(); err != decompress.ErrInputRequired {
		t.Errorf("Expected ErrInputRequired, got %v", err)
	}
	opts = decompress.Options{InputPath: "a.sdelta"}
	if err := opts.Validate(); err != nil {
		t.Fatal(err)
	}
	if opts.OutputPath != "." || opts.MaxThreads <= 0 {
		t.Errorf("Unexpected defaults: %+v", opts)
	}
}
