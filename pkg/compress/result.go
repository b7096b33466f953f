// pkg/compress/result.go
package compress

// Result contains statistics about the archival run
type Result struct {
	// Number of saves selected for the archive (primary + sidecar)
	FilesTotal int

	// Number of saves decoded into the stream
	FilesProcessed int

	// Primary saves and sidecars in the archive
	PrimaryCount int
	SidecarCount int

	// Files of the directory left out, with the reason
	Excluded []ExcludedFile

	// Primary saves stored verbatim because no known writer setting
	// reproduced them
	VerbatimSaves int

	// Total original size in bytes
	OriginalSize uint64

	// Size of the assembled raw stream
	RawSize uint64

	// Archive size in bytes (estimated on dry run)
	CompressedSize uint64

	// Long-range settings actually used
	Scheme    string
	WindowLog int

	// Redundancy analysis (when Analyze or DryRun)
	TotalChunks   uint64
	UniqueChunks  uint64
	DedupedChunks uint64
	BytesShared   uint64
	Evictions     uint64

	// Fatal errors end the run; this holds the one that did
	Errors []error
}

// ExcludedFile names a file that was not archived
type ExcludedFile struct {
	Name   string
	Reason string
}

// CompressionRatio returns the archive size as a percentage of the original
func (r *Result) CompressionRatio() float64 {
	if r.OriginalSize == 0 {
		return 0
	}
	return float64(r.CompressedSize) / float64(r.OriginalSize) * 100
}

// SharedRatio returns the share of raw stream bytes in repeated chunks
func (r *Result) SharedRatio() float64 {
	if r.RawSize == 0 {
		return 0
	}
	return float64(r.BytesShared) / float64(r.RawSize) * 100
}

// Success returns true if all files were processed without errors
func (r *Result) Success() bool {
	return len(r.Errors) == 0 && r.FilesProcessed == r.FilesTotal
}

// GetFilesTotal returns total files (interface method)
func (r *Result) GetFilesTotal() int { return r.FilesTotal }

// GetFilesProcessed returns processed files (interface method)
func (r *Result) GetFilesProcessed() int { return r.FilesProcessed }

// GetErrors returns errors (interface method)
func (r *Result) GetErrors() []error { return r.Errors }

// GetOriginalSize returns original size (interface method)
func (r *Result) GetOriginalSize() uint64 { return r.OriginalSize }

// GetCompressedSize returns compressed size (interface method)
func (r *Result) GetCompressedSize() uint64 { return r.CompressedSize }
