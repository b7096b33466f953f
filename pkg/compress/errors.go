// pkg/compress/errors.go
package compress

import "errors"

var (
	// ErrInputRequired is returned when input path is not specified
	ErrInputRequired = errors.New("input path is required")

	// ErrInvalidLevel is returned when compression level is out of range
	ErrInvalidLevel = errors.New("compression level must be between 1 and 22")

	// ErrInvalidScheme is returned for an unknown long-range compressor
	ErrInvalidScheme = errors.New("compression scheme must be zstd or xz")

	// ErrInvalidWindowLog is returned when the window log is out of range
	ErrInvalidWindowLog = errors.New("window log must be between 10 and 31")

	// ErrChunkSizeTooSmall is returned when the analysis chunk size is below 1 KiB
	ErrChunkSizeTooSmall = errors.New("chunk size must be at least 1 KiB")

	// ErrChunkSizeTooLarge is returned when the analysis chunk size exceeds 64 MiB
	ErrChunkSizeTooLarge = errors.New("chunk size must be at most 64 MiB")
)
