// pkg/decompress/result.go
package decompress

// Result contains statistics about the restore
type Result struct {
	// Total number of files in archive
	FilesTotal int

	// Number of files written to the output directory
	FilesProcessed int

	// Archive size in bytes
	CompressedSize uint64

	// Size of the decompressed raw stream
	RawSize uint64

	// Total size of the restored files in bytes
	DecompressedSize uint64

	// Restored file names in archive order
	Files []string

	// Fatal errors end the run; this holds the one that did
	Errors []error
}

// Success returns true if all files were processed without errors
func (r *Result) Success() bool {
	return len(r.Errors) == 0 && r.FilesProcessed == r.FilesTotal
}

// GetFilesTotal returns total files (interface method)
func (r *Result) GetFilesTotal() int {
	return r.FilesTotal
}

// GetFilesProcessed returns processed files (interface method)
func (r *Result) GetFilesProcessed() int {
	return r.FilesProcessed
}

// GetErrors returns the error list (interface method)
func (r *Result) GetErrors() []error {
	return r.Errors
}

// GetOriginalSize returns decompressed size (interface method)
func (r *Result) GetOriginalSize() uint64 {
	return r.DecompressedSize
}

// GetCompressedSize returns compressed size (interface method)
func (r *Result) GetCompressedSize() uint64 {
	return r.CompressedSize
}
