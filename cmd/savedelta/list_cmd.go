// cmd/savedelta/list_cmd.go
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/creativeyann17/go-savedelta/internal/format"
	"github.com/creativeyann17/go-savedelta/pkg/savedelta"
)

func init() {
	rootCmd.AddCommand(listCmd())
}

func listCmd() *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the saves stored in an archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(inputPath)
			if err != nil {
				return fmt.Errorf("open archive: %w", err)
			}
			defer f.Close()

			ar, err := format.NewReader(f)
			if err != nil {
				return err
			}
			h := ar.Header

			fmt.Printf("Archive:  %s (version %d)\n", inputPath, h.Version)
			fmt.Printf("Scheme:   %s, window 2^%d\n", h.Scheme, h.WindowLog)
			fmt.Printf("Files:    %d saves, %d co-saves\n", h.PrimaryCount, h.SidecarCount)
			fmt.Printf("Stream:   %s -> %s\n\n", savedelta.FormatSize(h.RawSize), savedelta.FormatSize(h.PayloadSize))

			fmt.Printf("%-8s %-8s %12s %12s %-12s %-19s %s\n", "INDEX", "KIND", "SIZE", "RAW", "METHOD", "MODIFIED", "NAME")
			for _, e := range ar.Entries {
				fmt.Printf("%-8d %-8s %12d %12d %-12s %-19s %s\n",
					e.Index, e.Category, e.Size, e.Length, e.Params,
					time.Unix(0, e.ModTime).Format("2006-01-02 15:04:05"), e.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input archive file (required)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
