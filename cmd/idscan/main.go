// Command idscan runs the identity-document scan service and offers offline
// helpers for inspecting scanner output.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "idscan",
	Short: "Identity-document scan orchestration service",
	Long: `idscan drives a document scanner: it captures passports and identity cards,
extracts and validates their fields, persists each recognized document once,
and publishes scanner status to the presentation layer.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(newServeCmd(), newMRZCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
