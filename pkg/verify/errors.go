// pkg/verify/errors.go
package verify

import "errors"

var (
	// ErrInputRequired is returned when input path is not specified
	ErrInputRequired = errors.New("input path is required")

	// ErrInvalidMagic is returned when archive has invalid magic bytes
	ErrInvalidMagic = errors.New("invalid archive magic bytes")

	// ErrInvalidHeader is returned when the header or boundary table is malformed
	ErrInvalidHeader = errors.New("invalid archive header")

	// ErrInvalidFooter is returned when archive footer is invalid or missing
	ErrInvalidFooter = errors.New("invalid archive footer")

	// ErrCorruptData is returned when a rebuilt save fails its integrity check
	ErrCorruptData = errors.New("data corruption detected")

	// ErrTruncatedArchive is returned when archive appears truncated
	ErrTruncatedArchive = errors.New("archive appears truncated")

	// ErrUnsupportedFormat is returned for unknown archive formats
	ErrUnsupportedFormat = errors.New("unsupported archive format")
)
