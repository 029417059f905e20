package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/planmark/planmark-go/internal/services/persistence"
	"github.com/planmark/planmark-go/internal/services/takeoff"
)

var takeoffJSON bool

var takeoffCmd = &cobra.Command{
	Use:   "takeoff <design.json>",
	Short: "Print the quantity take-off of an exported design",
	Long: `Read a design exported by the server (GET /api/designs/{id}) and print
equipment counts, containment and cable lengths, and zone areas.
Use "-" to read the design from standard input.

Examples:
  planmark takeoff ground-floor.json
  planmark takeoff --json ground-floor.json`,
	Args: cobra.ExactArgs(1),
	RunE: runTakeoff,
}

func init() {
	rootCmd.AddCommand(takeoffCmd)

	takeoffCmd.Flags().BoolVar(&takeoffJSON, "json", false, "print the summary and rows as JSON")
}

func runTakeoff(cmd *cobra.Command, args []string) error {
	snap, err := readSnapshot(cmd, args[0])
	if err != nil {
		return err
	}

	summary := takeoff.Compute(snap.Document)
	rows := summary.Rows()
	out := cmd.OutOrStdout()

	if takeoffJSON {
		if rows == nil {
			rows = []takeoff.Row{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Summary takeoff.Summary `json:"summary"`
			Rows    []takeoff.Row   `json:"rows"`
		}{summary, rows})
	}

	if verbose {
		fmt.Fprintf(out, "Design: %s (%d items)\n", snap.Metadata.Name, snap.Document.ItemCount())
		if snap.Scale.Ratio != nil {
			fmt.Fprintf(out, "Scale:  %.2f px = %.3f (ratio %.6f)\n\n", snap.Scale.PixelDistance, snap.Scale.RealDistance, *snap.Scale.Ratio)
		} else {
			fmt.Fprintf(out, "Scale:  not set\n\n")
		}
	}

	if len(rows) == 0 {
		fmt.Fprintln(out, "No quantities.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tKEY\tCOUNT\tQUANTITY")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.3f\n", r.Kind, r.Key, r.Count, r.Quantity)
	}
	return tw.Flush()
}

func readSnapshot(cmd *cobra.Command, path string) (*persistence.Snapshot, error) {
	var (
		content []byte
		err     error
	)
	if path == "-" {
		content, err = io.ReadAll(cmd.InOrStdin())
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read design: %w", err)
	}
	return persistence.ParseSnapshot(content)
}
