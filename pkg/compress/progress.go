// pkg/compress/progress.go
package compress

import (
	"fmt"
	"strings"

	"github.com/vbauerster/mpb/v8"

	"github.com/creativeyann17/go-savedelta/pkg/savedelta"
)

// ProgressCallback is called for various progress events
type ProgressCallback func(event ProgressEvent)

// ProgressEvent contains progress information
type ProgressEvent = savedelta.ProgressEvent

// EventType indicates the type of progress event
type EventType = savedelta.EventType

const (
	EventStart        = savedelta.EventStart
	EventFileStart    = savedelta.EventFileStart
	EventFileProgress = savedelta.EventFileProgress
	EventFileComplete = savedelta.EventFileComplete
	EventComplete     = savedelta.EventComplete
	EventError        = savedelta.EventError
	EventPayload      = savedelta.EventPayload
)

// ProgressBarCallback creates a progress callback that displays multi-progress bars
// Returns the callback function and the progress container (call Wait() after compression)
func ProgressBarCallback() (ProgressCallback, *mpb.Progress) {
	cb, progress := savedelta.ProgressBarCallback()
	return ProgressCallback(cb), progress
}

// FormatSummary formats a compression result into a human-readable summary string
func FormatSummary(result *Result, opts *Options) string {
	var sb strings.Builder

	isDryRun := opts != nil && opts.DryRun
	sb.WriteString(savedelta.FormatSummary(result, savedelta.OperationCompress, isDryRun))

	fmt.Fprintf(&sb, "  Primary saves:   %d\n", result.PrimaryCount)
	fmt.Fprintf(&sb, "  Co-saves:        %d\n", result.SidecarCount)
	if result.VerbatimSaves > 0 {
		fmt.Fprintf(&sb, "  Kept verbatim:   %d\n", result.VerbatimSaves)
	}
	fmt.Fprintf(&sb, "  Raw stream:      %s\n", savedelta.FormatSize(result.RawSize))
	if result.Scheme != "" {
		fmt.Fprintf(&sb, "  Long range:      %s, window %s\n", result.Scheme, savedelta.FormatSize(1<<result.WindowLog))
	}

	if opts != nil && opts.Verbose && len(result.Excluded) > 0 {
		sb.WriteString("\nExcluded:\n")
		for _, ex := range result.Excluded {
			fmt.Fprintf(&sb, "  %s (%s)\n", ex.Name, ex.Reason)
		}
	} else if len(result.Excluded) > 0 {
		fmt.Fprintf(&sb, "  Excluded files:  %d\n", len(result.Excluded))
	}

	if result.TotalChunks > 0 {
		sb.WriteString("\nRedundancy:\n")
		fmt.Fprintf(&sb, "  Total chunks:    %d\n", result.TotalChunks)
		fmt.Fprintf(&sb, "  Unique chunks:   %d\n", result.UniqueChunks)
		fmt.Fprintf(&sb, "  Repeated chunks: %d\n", result.DedupedChunks)
		fmt.Fprintf(&sb, "  Shared content:  %s (%.1f%%)\n", savedelta.FormatSize(result.BytesShared), result.SharedRatio())
		if result.Evictions > 0 {
			fmt.Fprintf(&sb, "  Evictions:       %d (LRU cache)\n", result.Evictions)
		}
	}

	if isDryRun {
		sb.WriteString("\nDry run complete - no archive written.\n")
	}

	return sb.String()
}

// FormatSize formats bytes into human-readable string
func FormatSize(bytes uint64) string {
	return savedelta.FormatSize(bytes)
}
