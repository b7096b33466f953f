// cmd/savedelta/decompress_cmd.go

package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"

	"github.com/creativeyann17/go-savedelta/pkg/decompress"
)

func init() {
	rootCmd.AddCommand(decompressCmd())
}

func decompressCmd() *cobra.Command {
	var inputPath, outputPath string
	var maxThreads int
	var verbose bool
	var quiet bool
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "decompress",
		Short: "Restore the saves of an archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath != "" && !strings.HasSuffix(inputPath, ".sdelta") {
				if _, err := os.Stat(inputPath); os.IsNotExist(err) {
					inputPath += ".sdelta"
				}
			}

			opts := &decompress.Options{
				InputPath:  inputPath,
				OutputPath: outputPath,
				MaxThreads: maxThreads,
				Verbose:    verbose,
				Quiet:      quiet,
				Overwrite:  overwrite,
			}

			if err := opts.Validate(); err != nil {
				return err
			}

			log := logger(quiet)

			log("Starting decompression...")
			log("  Input:       %s", opts.InputPath)
			log("  Output:      %s", opts.OutputPath)
			if overwrite {
				log("  Mode:        OVERWRITE (replacing existing files)")
			}
			log("")

			var progressCb decompress.ProgressCallback
			var progress *mpb.Progress

			if !quiet && !verbose {
				progressCb, progress = decompress.ProgressBarCallback()
			} else if verbose {
				progressCb = func(event decompress.ProgressEvent) {
					if event.Type == decompress.EventFileComplete {
						fmt.Printf("  Restored %s\n", event.FilePath)
					}
				}
			}

			result, err := decompress.Decompress(opts, progressCb)

			if progress != nil {
				progress.Wait()
			}

			if err != nil {
				return err
			}

			fmt.Println()
			fmt.Print(decompress.FormatSummary(result))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input archive file (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", ".", "Output directory")
	cmd.Flags().IntVarP(&maxThreads, "threads", "t", runtime.NumCPU(), "Max concurrent threads")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show detailed output")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Minimal output (overrides verbose)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}
