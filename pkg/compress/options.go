// pkg/compress/options.go
package compress

import (
	"runtime"

	"github.com/creativeyann17/go-savedelta/internal/longrange"
)

// Options configures the archival run
type Options struct {
	// Save directory to archive
	InputPath string

	// Output archive path
	// Default: saves.sdelta
	OutputPath string

	// Maximum number of concurrent codec workers, also handed to the
	// long-range encoder
	// Default: runtime.NumCPU()
	MaxThreads int

	// Long-range compressor: "zstd" or "xz"
	// Default: "zstd"
	Scheme string

	// Compression level (1-22, zstd only). Affects ratio and speed, never
	// the restored bytes.
	// Default: 12
	Level int

	// Long-range window as log2 of bytes. Clamped to the scheme limits and
	// to the assembled stream size.
	// Default: 31, the widest window the scheme allows
	WindowLog int

	// IgnoreFile holds gitignore-style patterns of saves to leave out.
	// Default: .savedeltaignore in InputPath when present
	IgnoreFile string

	// FastCodec only tries the default writer setting when reproducing a
	// save. Saves written differently are kept verbatim.
	FastCodec bool

	// Analyze reports how much content the saves share (FastCDC chunks)
	Analyze bool

	// Average chunk size for Analyze (bytes)
	// Default: 64 KiB
	ChunkSize uint64

	// Maximum chunk hashes kept by Analyze (0 = unlimited)
	// Default: 1M
	MaxChunks int

	// DryRun runs the whole pipeline without writing the archive
	DryRun bool

	// Verbose enables detailed logging
	Verbose bool

	// Quiet suppresses all output except errors
	Quiet bool
}

// DefaultOptions returns options with sensible defaults
func DefaultOptions() *Options {
	return &Options{
		OutputPath: DefaultOutputPath,
		MaxThreads: runtime.NumCPU(),
		Scheme:     longrange.SchemeZstd.String(),
		Level:      longrange.DefaultLevel,
		WindowLog:  longrange.DefaultWindowLog,
		ChunkSize:  defaultChunkSize,
		MaxChunks:  defaultMaxChunks,
	}
}

// DefaultOutputPath is used when no output path is given
const DefaultOutputPath = "saves.sdelta"

const (
	defaultChunkSize = 64 * 1024
	defaultMaxChunks = 1 << 20
	minChunkSize     = 1024
	maxChunkSize     = 64 * 1024 * 1024
)

// Validate fills defaults and checks if options are valid
func (o *Options) Validate() error {
	if o.InputPath == "" {
		return ErrInputRequired
	}
	if o.OutputPath == "" {
		o.OutputPath = DefaultOutputPath
	}
	if o.MaxThreads <= 0 {
		o.MaxThreads = runtime.NumCPU()
	}

	scheme, err := longrange.ParseScheme(o.Scheme)
	if err != nil {
		return ErrInvalidScheme
	}
	o.Scheme = scheme.String()

	if o.Level == 0 {
		o.Level = longrange.DefaultLevel
	}
	if o.Level < 1 || o.Level > 22 {
		return ErrInvalidLevel
	}

	if o.WindowLog == 0 {
		o.WindowLog = longrange.DefaultWindowLog
	}
	if o.WindowLog < longrange.ZstdMinWindowLog || o.WindowLog > longrange.XZMaxWindowLog {
		return ErrInvalidWindowLog
	}

	if o.ChunkSize == 0 {
		o.ChunkSize = defaultChunkSize
	}
	if o.ChunkSize < minChunkSize {
		return ErrChunkSizeTooSmall
	}
	if o.ChunkSize > maxChunkSize {
		return ErrChunkSizeTooLarge
	}
	if o.MaxChunks < 0 {
		o.MaxChunks = 0
	}

	if o.Quiet {
		o.Verbose = false
	}
	return nil
}

func (o *Options) scheme() longrange.Scheme {
	s, _ := longrange.ParseScheme(o.Scheme)
	return s
}
