// pkg/verify/result.go
package verify

import (
	"fmt"

	"github.com/creativeyann17/go-savedelta/pkg/savedelta"
)

// Format represents the archive format type
type Format string

const (
	FormatSaveDelta Format = "SAVDELTA"
	FormatZstd      Format = "ZSTD"
	FormatXZ        Format = "XZ"
	FormatUnknown   Format = "UNKNOWN"
)

// Result contains comprehensive verification results
type Result struct {
	// Archive metadata
	Format      Format // Archive format
	ArchivePath string // Path to the verified archive
	ArchiveSize uint64 // Total archive file size in bytes

	// Header information
	Magic       string // Raw magic bytes as string
	HeaderValid bool   // Whether header and table passed validation
	Version     uint8  // Container version
	Scheme      string // Long-range compression scheme
	WindowLog   uint8  // Match window, log2 bytes

	// File statistics
	FileCount     int    // Number of files in archive
	PrimaryCount  int    // Number of primary saves
	SidecarCount  int    // Number of co-save files
	VerbatimSaves int    // Saves stored without re-encoding parameters
	TotalOrigSize uint64 // Sum of original file sizes
	TotalCompSize uint64 // Size of the compressed payload
	RawSize       uint64 // Length of the decoded stream

	// Data integrity (only populated when VerifyData=true)
	DataVerified  bool // Whether data verification was performed
	FilesVerified int  // Number of files with verified data
	CorruptFiles  int  // Number of files that failed verification

	// Structural integrity
	StructureValid bool // Overall structure is valid
	FooterValid    bool // Footer marker is valid
	MetadataValid  bool // Boundary table is valid

	// File details (populated during verification)
	Files []FileInfo

	// Errors encountered during verification
	Errors []error
}

// FileInfo contains information about a single file in the archive
type FileInfo struct {
	Path         string // File name as restored
	Category     string // "primary" or "sidecar"
	Index        uint64 // Save index parsed from the name
	OriginalSize uint64 // Size of the file on disk
	RawLength    uint64 // Length of its segment in the decoded stream
	Method       string // Re-encoding parameters
	DataValid    bool   // Data integrity verified (when VerifyData=true)
	Error        error  // Error if verification failed for this file
}

// CompressionRatio returns the compression ratio as a percentage
func (r *Result) CompressionRatio() float64 {
	if r.TotalOrigSize == 0 {
		return 0
	}
	return float64(r.TotalCompSize) / float64(r.TotalOrigSize) * 100
}

// SpaceSaved returns bytes saved by compression
func (r *Result) SpaceSaved() uint64 {
	if r.TotalCompSize >= r.TotalOrigSize {
		return 0
	}
	return r.TotalOrigSize - r.TotalCompSize
}

// SpaceSavedRatio returns percentage of space saved
func (r *Result) SpaceSavedRatio() float64 {
	if r.TotalOrigSize == 0 {
		return 0
	}
	return float64(r.SpaceSaved()) / float64(r.TotalOrigSize) * 100
}

// IsValid returns true if the archive passed all validation checks
func (r *Result) IsValid() bool {
	return r.HeaderValid && r.StructureValid && r.FooterValid &&
		len(r.Errors) == 0 && r.CorruptFiles == 0
}

// Success returns true if verification completed without critical errors
func (r *Result) Success() bool {
	return r.IsValid()
}

// Summary returns a human-readable summary of the verification result
func (r *Result) Summary() string {
	status := "VALID"
	if !r.IsValid() {
		status = "INVALID"
	}

	s := fmt.Sprintf("Archive: %s [%s]\n", r.ArchivePath, status)
	s += fmt.Sprintf("Format:  %s\n", r.Format)
	s += fmt.Sprintf("Size:    %s\n", savedelta.FormatSize(r.ArchiveSize))
	s += fmt.Sprintf("Files:   %d (%d saves, %d co-saves)\n", r.FileCount, r.PrimaryCount, r.SidecarCount)

	if r.HeaderValid {
		s += fmt.Sprintf("Scheme:  %s, window 2^%d\n", r.Scheme, r.WindowLog)
	}
	if r.VerbatimSaves > 0 {
		s += fmt.Sprintf("Verbatim: %d saves\n", r.VerbatimSaves)
	}

	if r.TotalOrigSize > 0 {
		s += fmt.Sprintf("Original:   %s\n", savedelta.FormatSize(r.TotalOrigSize))
		s += fmt.Sprintf("Decoded:    %s\n", savedelta.FormatSize(r.RawSize))
		s += fmt.Sprintf("Compressed: %s (%.1f%% ratio)\n",
			savedelta.FormatSize(r.TotalCompSize), r.CompressionRatio())
		s += fmt.Sprintf("Saved:      %s (%.1f%%)\n",
			savedelta.FormatSize(r.SpaceSaved()), r.SpaceSavedRatio())
	}

	if r.DataVerified {
		s += "\nData Integrity:\n"
		s += fmt.Sprintf("  Files Verified:  %d/%d\n", r.FilesVerified, r.FileCount)
		if r.CorruptFiles > 0 {
			s += fmt.Sprintf("  Corrupt Files:   %d\n", r.CorruptFiles)
		}
	}

	if len(r.Errors) > 0 {
		s += fmt.Sprintf("\nErrors (%d):\n", len(r.Errors))
		for i, err := range r.Errors {
			if i >= 10 {
				s += fmt.Sprintf("  ... and %d more errors\n", len(r.Errors)-10)
				break
			}
			s += fmt.Sprintf("  - %v\n", err)
		}
	}

	return s
}
