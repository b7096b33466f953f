// pkg/verify/verify_test.go
package verify_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/creativeyann17/go-savedelta/internal/ess/esstest"
	"github.com/creativeyann17/go-savedelta/internal/format"
	"github.com/creativeyann17/go-savedelta/pkg/compress"
	"github.com/creativeyann17/go-savedelta/pkg/verify"
)

func buildArchive(t *testing.T, scheme string) string {
	t.Helper()
	sourceDir := t.TempDir()
	for name, data := range esstest.Series(4, 16*1024) {
		if err := os.WriteFile(filepath.Join(sourceDir, name), data, 0644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}
	}
	cosave := esstest.Name(1, "skse")
	if err := os.WriteFile(filepath.Join(sourceDir, cosave), []byte("co-save data"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	archivePath := filepath.Join(t.TempDir(), "saves.sdelta")
	opts := &compress.Options{
		InputPath:  sourceDir,
		OutputPath: archivePath,
		Scheme:     scheme,
		Quiet:      true,
	}
	if _, err := compress.Compress(opts, nil); err != nil {
		t.Fatalf("Compression failed: %v", err)
	}
	return archivePath
}

func writeCopy(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "copy.sdelta")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	return path
}

func TestVerifyArchive(t *testing.T) {
	for _, scheme := range []string{"zstd", "xz"} {
		t.Run(scheme, func(t *testing.T) {
			archivePath := buildArchive(t, scheme)

			t.Run("StructuralValidation", func(t *testing.T) {
				result, err := verify.Verify(&verify.Options{InputPath: archivePath}, nil)
				if err != nil {
					t.Fatalf("Verification failed: %v", err)
				}
				if result.Format != verify.FormatSaveDelta {
					t.Errorf("Expected format SAVDELTA, got %s", result.Format)
				}
				if result.Scheme != scheme {
					t.Errorf("Expected scheme %s, got %s", scheme, result.Scheme)
				}
				if result.FileCount != 5 {
					t.Errorf("Expected 5 files, got %d", result.FileCount)
				}
				if result.PrimaryCount != 4 || result.SidecarCount != 1 {
					t.Errorf("Expected 4 saves and 1 co-save, got %d and %d", result.PrimaryCount, result.SidecarCount)
				}
				if result.DataVerified {
					t.Error("Data should not be verified in structural mode")
				}
				if !result.IsValid() {
					t.Errorf("Archive should be valid, errors: %v", result.Errors)
				}
			})

			t.Run("DataValidation", func(t *testing.T) {
				result, err := verify.Verify(&verify.Options{InputPath: archivePath, VerifyData: true}, nil)
				if err != nil {
					t.Fatalf("Verification failed: %v", err)
				}
				if !result.DataVerified {
					t.Error("Data should be verified")
				}
				if result.FilesVerified != 5 {
					t.Errorf("Expected 5 files verified, got %d", result.FilesVerified)
				}
				for _, f := range result.Files {
					if !f.DataValid {
						t.Errorf("%s should be valid: %v", f.Path, f.Error)
					}
				}
				if !result.IsValid() {
					t.Errorf("Archive should be valid, errors: %v", result.Errors)
				}
			})
		})
	}
}

func TestVerifyCorruptedPayload(t *testing.T) {
	data, err := os.ReadFile(buildArchive(t, "zstd"))
	if err != nil {
		t.Fatal(err)
	}
	ar, err := format.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	payloadStart := format.HeaderSize + int(ar.Header.TableLen)
	data[payloadStart+int(ar.Header.PayloadSize)/2] ^= 0xFF
	corruptPath := writeCopy(t, data)

	result, err := verify.Verify(&verify.Options{InputPath: corruptPath, VerifyData: true}, nil)
	if err != nil {
		t.Fatalf("Verification should report corruption in the result, got %v", err)
	}
	if result.IsValid() {
		t.Error("Corrupted archive should be invalid")
	}
	found := false
	for _, e := range result.Errors {
		if errors.Is(e, verify.ErrCorruptData) {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected ErrCorruptData among %v", result.Errors)
	}
}

func TestVerifyInvalidArchive(t *testing.T) {
	invalidPath := writeCopy(t, []byte("INVALIDMAGIC"))

	result, err := verify.Verify(&verify.Options{InputPath: invalidPath}, nil)
	if !errors.Is(err, verify.ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
	if result.Format != verify.FormatUnknown {
		t.Errorf("Expected format UNKNOWN, got %s", result.Format)
	}
	if result.IsValid() {
		t.Error("Invalid archive should not be valid")
	}
}

func TestVerifyBadHeader(t *testing.T) {
	data, err := os.ReadFile(buildArchive(t, "zstd"))
	if err != nil {
		t.Fatal(err)
	}
	data[8] = format.Version + 1

	result, err := verify.Verify(&verify.Options{InputPath: writeCopy(t, data)}, nil)
	if !errors.Is(err, verify.ErrInvalidHeader) {
		t.Errorf("Expected ErrInvalidHeader, got %v", err)
	}
	if result.HeaderValid {
		t.Error("Header should be invalid")
	}
}

func TestVerifyTruncatedArchive(t *testing.T) {
	data, err := os.ReadFile(buildArchive(t, "zstd"))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("MissingFooter", func(t *testing.T) {
		result, err := verify.Verify(&verify.Options{InputPath: writeCopy(t, data[:len(data)-4])}, nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if result.FooterValid {
			t.Error("Footer should be invalid")
		}
		if result.IsValid() {
			t.Error("Truncated archive should be invalid")
		}
	})

	t.Run("ShortMagic", func(t *testing.T) {
		_, err := verify.Verify(&verify.Options{InputPath: writeCopy(t, data[:4])}, nil)
		if !errors.Is(err, verify.ErrTruncatedArchive) {
			t.Errorf("Expected ErrTruncatedArchive, got %v", err)
		}
	})
}

func TestVerifyNonExistent(t *testing.T) {
	_, err := verify.Verify(&verify.Options{InputPath: "/nonexistent/saves.sdelta"}, nil)
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestProgressCallbacks(t *testing.T) {
	archivePath := buildArchive(t, "zstd")

	var starts, files, completes int
	cb := func(e verify.ProgressEvent) {
		switch e.Type {
		case verify.EventStart:
			starts++
		case verify.EventFileVerify:
			files++
		case verify.EventComplete:
			completes++
		}
	}
	if _, err := verify.Verify(&verify.Options{InputPath: archivePath, VerifyData: true}, cb); err != nil {
		t.Fatalf("Verification failed: %v", err)
	}
	if starts != 1 || completes != 1 {
		t.Errorf("Expected one start and one complete event, got %d and %d", starts, completes)
	}
	if files != 5 {
		t.Errorf("Expected 5 file events, got %d", files)
	}
}

func TestResultMethods(t *testing.T) {
	t.Run("CompressionRatio", func(t *testing.T) {
		r := &verify.Result{TotalOrigSize: 1000, TotalCompSize: 500}
		if ratio := r.CompressionRatio(); ratio != 50.0 {
			t.Errorf("Expected ratio 50%%, got %.1f%%", ratio)
		}
	})

	t.Run("SpaceSaved", func(t *testing.T) {
		r := &verify.Result{TotalOrigSize: 1000, TotalCompSize: 600}
		if saved := r.SpaceSaved(); saved != 400 {
			t.Errorf("Expected 400 bytes saved, got %d", saved)
		}
		r = &verify.Result{TotalOrigSize: 100, TotalCompSize: 600}
		if saved := r.SpaceSaved(); saved != 0 {
			t.Errorf("Expected 0 bytes saved, got %d", saved)
		}
	})

	t.Run("IsValid", func(t *testing.T) {
		valid := &verify.Result{HeaderValid: true, StructureValid: true, FooterValid: true}
		if !valid.IsValid() {
			t.Error("Result should be valid")
		}
		corrupt := &verify.Result{HeaderValid: true, StructureValid: true, FooterValid: true, CorruptFiles: 1}
		if corrupt.IsValid() {
			t.Error("Result with corrupt files should be invalid")
		}
	})

	t.Run("Summary", func(t *testing.T) {
		r := &verify.Result{
			ArchivePath:    "saves.sdelta",
			Format:         verify.FormatSaveDelta,
			HeaderValid:    true,
			StructureValid: true,
			FooterValid:    true,
			FileCount:      2,
			PrimaryCount:   2,
			Scheme:         "zstd",
			WindowLog:      20,
			TotalOrigSize:  2048,
			TotalCompSize:  512,
		}
		s := r.Summary()
		for _, want := range []string{"[VALID]", "SAVDELTA", "zstd, window 2^20", "2 saves"} {
			if !strings.Contains(s, want) {
				t.Errorf("Summary missing %q:\n%s", want, s)
			}
		}
	})
}

func TestOptionsValidate(t *testing.T) {
	if err := (&verify.Options{}).Validate(); !errors.Is(err, verify.ErrInputRequired) {
		t.Errorf("Expected ErrInputRequired, got %v", err)
	}
	opts := &verify.Options{InputPath: "saves.sdelta", Verbose: true, Quiet: true}
	if err := opts.Validate(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if opts.Verbose {
		t.Error("Quiet should disable Verbose")
	}
}
