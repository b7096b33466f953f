// pkg/decompress/progress.go
package decompress

import (
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
// Returns the callback function and the progress container (call Wait() after decompression)
func ProgressBarCallback() (ProgressCallback, *mpb.Progress) {
	cb, progress := savedelta.ProgressBarCallback()
	return ProgressCallback(cb), progress
}

// FormatSummary formats a decompression result into a human-readable summary string
func FormatSummary(result *Result) string {
	return savedelta.FormatSummary(result, savedelta.OperationDecompress, false)
}

// FormatSize formats bytes into human-readable string
func FormatSize(bytes uint64) string {
	return savedelta.FormatSize(bytes)
}
