// cmd/savedelta/compress_cmd.go

package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"

	"github.com/creativeyann17/go-savedelta/internal/longrange"
	"github.com/creativeyann17/go-savedelta/pkg/compress"
	"github.com/creativeyann17/go-savedelta/pkg/savedelta"
)

func init() {
	rootCmd.AddCommand(compressCmd())
}

func compressCmd() *cobra.Command {
	var inputPath, outputPath string
	var maxThreads int
	var level int
	var scheme string
	var windowLog int
	var ignoreFile string
	var fastCodec bool
	var analyze bool
	var dryRun bool
	var verbose bool
	var quiet bool

	cmd := &cobra.Command{
		Use:   "compress",
		Short: "Archive a directory of saves",
		Long: `Archive every save of a directory into a single .sdelta file.

Saves are ordered by the index in their name, their internal compression is
undone so unchanged content lines up, and the whole stream is compressed with
a window large enough to reach back across saves.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath != "" && !strings.HasSuffix(outputPath, ".sdelta") {
				outputPath += ".sdelta"
			}

			opts := &compress.Options{
				InputPath:  inputPath,
				OutputPath: outputPath,
				MaxThreads: maxThreads,
				Scheme:     scheme,
				Level:      level,
				WindowLog:  windowLog,
				IgnoreFile: ignoreFile,
				FastCodec:  fastCodec,
				Analyze:    analyze,
				DryRun:     dryRun,
				Verbose:    verbose,
				Quiet:      quiet,
			}

			if err := opts.Validate(); err != nil {
				return err
			}

			log := logger(quiet)

			if level >= 19 {
				log("Note: high compression level (>=19) - this will be slow but can give a better ratio")
			}
			if cmd.Flags().Changed("window-log") {
				warnWindowMemory(log, opts.WindowLog)
			}

			log("Starting compression...")
			log("  Input:       %s", opts.InputPath)
			log("  Output:      %s", opts.OutputPath)
			log("  Max threads: %d", opts.MaxThreads)
			log("  Scheme:      %s (level %d, window up to 2^%d)", opts.Scheme, opts.Level, opts.WindowLog)
			if opts.IgnoreFile != "" {
				log("  Ignore file: %s", opts.IgnoreFile)
			}
			if dryRun {
				log("  Mode:        DRY-RUN (no data written)")
			}
			if verbose {
				log("  Mode:        VERBOSE (detailed output)")
			}
			log("")

			var progressCb compress.ProgressCallback
			var progress *mpb.Progress

			if !quiet && !verbose {
				progressCb, progress = compress.ProgressBarCallback()
			} else if verbose {
				progressCb = func(event compress.ProgressEvent) {
					switch event.Type {
					case compress.EventFileComplete:
						fmt.Printf("  [%d/%d] %s (%s -> %s raw)\n", event.Current, event.Total, event.FilePath,
							savedelta.FormatSize(event.TotalBytes), savedelta.FormatSize(event.CurrentBytes))
					case compress.EventError:
						fmt.Fprintf(os.Stderr, "  Error on %s\n", event.FilePath)
					}
				}
			}

			result, err := compress.Compress(opts, progressCb)

			if progress != nil {
				progress.Wait()
			}

			if err != nil {
				return err
			}

			fmt.Println()
			fmt.Print(compress.FormatSummary(result, opts))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Save directory (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output archive file (default "+compress.DefaultOutputPath+")")
	cmd.Flags().IntVarP(&maxThreads, "threads", "t", runtime.NumCPU(), "Max concurrent threads")
	cmd.Flags().IntVarP(&level, "level", "l", 12, "zstd compression level (1=fastest, 22=max ratio)")
	cmd.Flags().StringVar(&scheme, "scheme", "zstd", "Long-range compression scheme: zstd or xz")
	cmd.Flags().IntVar(&windowLog, "window-log", longrange.DefaultWindowLog,
		"Match window as log2 bytes, capped by the scheme (zstd 29, xz 31) and shrunk to the stream size.\n"+
			"Smaller values use less memory but stop matching saves further apart than the window")
	cmd.Flags().StringVar(&ignoreFile, "ignore-file", "", "File of gitignore-style patterns of saves to leave out")
	cmd.Flags().BoolVar(&fastCodec, "fast-codec", false, "Only try the default writer setting when reproducing saves")
	cmd.Flags().BoolVar(&analyze, "analyze", false, "Report how much content the saves share")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Simulate without writing anything")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show detailed output")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Minimal output (overrides verbose)")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// warnWindowMemory notes when the match window needs more than half of RAM
func warnWindowMemory(log func(string, ...interface{}), windowLog int) {
	total, err := totalMemory()
	if err != nil || total == 0 {
		return
	}
	window := uint64(1) << windowLog
	if window > total/2 {
		log("Warning: window of %s exceeds half of system memory (%s)",
			savedelta.FormatSize(window), savedelta.FormatSize(total))
	}
}
