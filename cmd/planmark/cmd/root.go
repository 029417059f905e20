// Package cmd implements the planmark command-line tool: offline take-offs
// and measurements on exported designs.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "planmark",
	Short: "Floor-plan markup and electrical take-off tool",
	Long: `Work with exported planmark designs without running the server.

Examples:
  planmark takeoff ground-floor.json            # Quantities for a design
  planmark takeoff --json ground-floor.json     # Same, as JSON
  planmark area --ratio 0.05 0,0 200,0 200,100  # Real area of a polygon
  planmark length --ratio 0.05 0,0 200,0        # Real length of a polyline`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
