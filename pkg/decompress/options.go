// pkg/decompress/options.go
package decompress

import (
	"runtime"
)

// Options configures the restore
type Options struct {
	// Input archive path
	InputPath string

	// Output directory path
	// Default: current directory
	OutputPath string

	// Maximum number of concurrent re-encode workers
	// Default: runtime.NumCPU()
	MaxThreads int

	// Verbose enables detailed logging
	Verbose bool

	// Quiet suppresses all output except errors
	Quiet bool

	// Overwrite existing files. Without it the restore refuses to start
	// when any archived name already exists in OutputPath.
	Overwrite bool
}

// DefaultOptions returns options with sensible defaults
func DefaultOptions() *Options {
	return &Options{
		OutputPath: ".",
		MaxThreads: runtime.NumCPU(),
	}
}

// Validate checks if options are valid
func (o *Options) Validate() error {
	if o.InputPath == "" {
		return ErrInputRequired
	}
	if o.OutputPath == "" {
		o.OutputPath = "."
	}
	if o.MaxThreads <= 0 {
		o.MaxThreads = runtime.NumCPU()
	}
	if o.Quiet {
		o.Verbose = false
	}
	return nil
}
