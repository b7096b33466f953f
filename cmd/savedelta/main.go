// cmd/savedelta/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:           "savedelta",
	Short:         "savedelta - long-range archival of game save histories",
	Long:          "savedelta packs a directory of sequential game saves into one archive that stores their shared content once, and restores them byte for byte.",
	Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// logger prints unless quiet is set
func logger(quiet bool) func(format string, args ...interface{}) {
	return func(format string, args ...interface{}) {
		if !quiet {
			fmt.Printf(format+"\n", args...)
		}
	}
}
