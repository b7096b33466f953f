// internal/format/detect.go
package format

// ArchiveFormat represents the detected archive format
type ArchiveFormat int

const (
	FormatUnknown ArchiveFormat = iota
	FormatSaveDelta
	FormatZstd
	FormatXZ
)

// String returns the string representation of the format
func (f ArchiveFormat) String() string {
	switch f {
	case FormatSaveDelta:
		return Magic
	case FormatZstd:
		return "ZSTD"
	case FormatXZ:
		return "XZ"
	default:
		return "UNKNOWN"
	}
}

// DetectFormat detects the archive format from magic bytes.
// Requires at least 8 bytes to detect all formats.
func DetectFormat(magic []byte) ArchiveFormat {
	if len(magic) >= MagicSize && string(magic[:MagicSize]) == Magic {
		return FormatSaveDelta
	}
	if IsZstd(magic) {
		return FormatZstd
	}
	if IsXZ(magic) {
		return FormatXZ
	}
	return FormatUnknown
}

// IsZstd returns true if the magic bytes start a bare zstd frame
func IsZstd(magic []byte) bool {
	return len(magic) >= 4 &&
		magic[0] == 0x28 && magic[1] == 0xB5 && magic[2] == 0x2F && magic[3] == 0xFD
}

// IsXZ returns true if the magic bytes indicate an XZ file
func IsXZ(magic []byte) bool {
	return len(magic) >= 6 &&
		magic[0] == 0xFD && magic[1] == '7' && magic[2] == 'z' &&
		magic[3] == 'X' && magic[4] == 'Z' && magic[5] == 0x00
}
