// cmd/savedelta/verify_cmd.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/creativeyann17/go-savedelta/pkg/verify"
)

func init() {
	rootCmd.AddCommand(verifyCmd())
}

func verifyCmd() *cobra.Command {
	var inputPath string
	var verifyData bool
	var verbose bool
	var quiet bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify archive integrity",
		Long: `Verify the integrity of a SAVDELTA archive.

By default, performs structural validation (header, boundary table, footer).
Use --data to also decompress the payload and rebuild every save in memory,
checking each against its recorded size and hash.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &verify.Options{
				InputPath:  inputPath,
				VerifyData: verifyData,
				Verbose:    verbose,
				Quiet:      quiet,
			}

			if err := opts.Validate(); err != nil {
				return err
			}

			log := logger(quiet)

			log("Verifying archive: %s", inputPath)
			if verifyData {
				log("Mode: Full data integrity check")
			} else {
				log("Mode: Structural validation only")
			}
			log("")

			var progressCb verify.ProgressCallback
			if !quiet && !verbose {
				lastFile := ""
				progressCb = func(event verify.ProgressEvent) {
					switch event.Type {
					case verify.EventStart:
						fmt.Printf("Checking %d files...\n", event.Total)
					case verify.EventFileVerify:
						if event.Current%10 == 0 || event.Current == event.Total {
							fmt.Printf("\r  Progress: %d/%d files", event.Current, event.Total)
						}
						lastFile = event.FilePath
					case verify.EventComplete:
						fmt.Printf("\r  Progress: %d/%d files\n", event.Current, event.Total)
					case verify.EventError:
						fmt.Printf("\n  Error after: %s\n", lastFile)
					}
				}
			} else if verbose {
				progressCb = func(event verify.ProgressEvent) {
					switch event.Type {
					case verify.EventStart:
						fmt.Printf("Starting verification: %s\n", event.Message)
					case verify.EventFileVerify:
						fmt.Printf("  [%d/%d] %s\n", event.Current, event.Total, event.FilePath)
					case verify.EventError:
						fmt.Printf("  %s: %s\n", event.FilePath, event.Message)
					case verify.EventComplete:
						fmt.Printf("Verification complete\n")
					}
				}
			}

			result, err := verify.Verify(opts, progressCb)
			if err != nil && result == nil {
				return err
			}

			fmt.Println()
			fmt.Print(result.Summary())

			if err != nil {
				return err
			}
			if !result.IsValid() {
				return fmt.Errorf("archive verification failed")
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input archive file (required)")
	cmd.Flags().BoolVar(&verifyData, "data", false, "Verify data integrity by rebuilding every save")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show detailed output")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Minimal output (overrides verbose)")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}
