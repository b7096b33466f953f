// pkg/savedelta/helpers.go
package savedelta

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// OperationType indicates whether the operation is archival or restoration
type OperationType string

const (
	OperationCompress   OperationType = "compress"
	OperationDecompress OperationType = "decompress"
)

// ProgressEvent is a generic progress event shared by compress and decompress
type ProgressEvent struct {
	Type         EventType
	FilePath     string
	Current      int64
	Total        int64
	CurrentBytes uint64
	TotalBytes   uint64
}

// EventType indicates the type of progress event
type EventType int

const (
	EventStart EventType = iota
	EventFileStart
	EventFileProgress
	EventFileComplete
	EventComplete
	EventError
	// EventPayload reports bytes moved through the long-range stage
	EventPayload
)

// Result is the common view of compress and decompress results
type Result interface {
	GetFilesTotal() int
	GetFilesProcessed() int
	GetErrors() []error
	GetOriginalSize() uint64
	GetCompressedSize() uint64
	Success() bool
}

// ProgressBarCallback creates a progress callback that displays multi-progress bars.
// Returns the callback function and the progress container (call Wait() after the operation)
func ProgressBarCallback() (func(ProgressEvent), *mpb.Progress) {
	progress := mpb.New(
		mpb.WithWidth(60),
		mpb.WithRefreshRate(100),
	)

	var mu sync.Mutex
	var overallBar, payloadBar *mpb.Bar
	var fileBars sync.Map // map[string]*mpb.Bar

	callback := func(event ProgressEvent) {
		switch event.Type {
		case EventStart:
			mu.Lock()
			overallBar = progress.AddBar(event.Total,
				mpb.PrependDecorators(
					decor.Name("Saves", decor.WC{C: decor.DindentRight | decor.DextraSpace}),
					decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.Percentage(decor.WC{W: 5}),
				),
				mpb.BarPriority(1000),
			)
			mu.Unlock()

		case EventFileStart:
			if event.Total == 0 {
				return
			}
			shortName := TruncateLeft(event.FilePath, 30)
			bar := progress.AddBar(event.Total,
				mpb.PrependDecorators(
					decor.Name(shortName, decor.WC{C: decor.DindentRight | decor.DextraSpace, W: 32}),
				),
				mpb.AppendDecorators(
					decor.CountersKibiByte("% .1f / % .1f", decor.WC{W: 18}),
					decor.Percentage(decor.WC{W: 5}),
				),
				mpb.BarRemoveOnComplete(),
			)
			fileBars.Store(event.FilePath, bar)

		case EventFileProgress:
			if bar, ok := fileBars.Load(event.FilePath); ok {
				bar.(*mpb.Bar).SetCurrent(event.Current)
			}

		case EventFileComplete:
			if bar, ok := fileBars.Load(event.FilePath); ok {
				b := bar.(*mpb.Bar)
				if event.Total > 0 {
					b.SetCurrent(event.Total)
				} else {
					b.Abort(true)
				}
				fileBars.Delete(event.FilePath)
			}
			mu.Lock()
			if overallBar != nil {
				overallBar.Increment()
			}
			mu.Unlock()

		case EventPayload:
			mu.Lock()
			if payloadBar == nil && event.Total > 0 {
				payloadBar = progress.AddBar(event.Total,
					mpb.PrependDecorators(
						decor.Name("Stream", decor.WC{C: decor.DindentRight | decor.DextraSpace}),
					),
					mpb.AppendDecorators(
						decor.CountersKibiByte("% .1f / % .1f", decor.WC{W: 18}),
						decor.Percentage(decor.WC{W: 5}),
					),
					mpb.BarPriority(999),
				)
			}
			if payloadBar != nil {
				payloadBar.SetCurrent(event.Current)
			}
			mu.Unlock()

		case EventError:
			if bar, ok := fileBars.Load(event.FilePath); ok {
				bar.(*mpb.Bar).Abort(true)
				fileBars.Delete(event.FilePath)
			}

		case EventComplete:
			mu.Lock()
			if overallBar != nil && !overallBar.Completed() {
				overallBar.Abort(false)
			}
			if payloadBar != nil && !payloadBar.Completed() {
				payloadBar.Abort(false)
			}
			mu.Unlock()
		}
	}

	return callback, progress
}

// FormatSummary formats a result into a human-readable summary string
func FormatSummary(result Result, operation OperationType, isDryRun bool) string {
	var sb strings.Builder

	errors := result.GetErrors()
	if len(errors) > 0 {
		fmt.Fprintf(&sb, "Failed with %d errors:\n", len(errors))
		for _, e := range errors {
			fmt.Fprintf(&sb, "  - %v\n", e)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Summary:\n")
	fmt.Fprintf(&sb, "  Saves processed: %d / %d\n", result.GetFilesProcessed(), result.GetFilesTotal())

	if operation == OperationCompress {
		fmt.Fprintf(&sb, "  Original size:   %s\n", FormatSize(result.GetOriginalSize()))
		if isDryRun {
			fmt.Fprintf(&sb, "  Archive size:    %s (estimated)\n", FormatSize(result.GetCompressedSize()))
		} else {
			fmt.Fprintf(&sb, "  Archive size:    %s\n", FormatSize(result.GetCompressedSize()))
		}
		if result.GetOriginalSize() > 0 {
			ratio := float64(result.GetCompressedSize()) / float64(result.GetOriginalSize()) * 100
			fmt.Fprintf(&sb, "  Ratio:           %.1f%%\n", ratio)
		}
	} else {
		fmt.Fprintf(&sb, "  Archive size:    %s\n", FormatSize(result.GetCompressedSize()))
		fmt.Fprintf(&sb, "  Restored size:   %s\n", FormatSize(result.GetOriginalSize()))
	}

	return sb.String()
}

// FormatSize formats bytes into human-readable string
func FormatSize(bytes uint64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
		TB = 1024 * GB
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.2f TiB", float64(bytes)/float64(TB))
	case bytes >= GB:
		return fmt.Sprintf("%.2f GiB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MiB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KiB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// TruncateLeft truncates a path from the left to fit maxLen, preserving the filename
func TruncateLeft(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}

	filename := filepath.Base(path)
	if len(filename) >= maxLen-3 {
		return "..." + filename[len(filename)-(maxLen-3):]
	}

	return "..." + path[len(path)-(maxLen-3):]
}
