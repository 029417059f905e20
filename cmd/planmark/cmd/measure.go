package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planmark/planmark-go/internal/design"
	"github.com/planmark/planmark-go/pkg/geometry"
)

var (
	ratio       float64
	pitch       float64
	startHeight float64
	endHeight   float64
)

var areaCmd = &cobra.Command{
	Use:   "area <x,y> <x,y> <x,y>...",
	Short: "Measure the area of a polygon drawn in pixels",
	Long: `Print the pixel area of a closed polygon and, with --ratio (real units per
pixel), its real area. --pitch gives the sloped area of a roof face.

Examples:
  planmark area 0,0 200,0 200,100 0,100
  planmark area --ratio 0.05 --pitch 30 0,0 200,0 200,100 0,100`,
	Args: cobra.MinimumNArgs(design.MinPolygonPoints),
	RunE: runArea,
}

var lengthCmd = &cobra.Command{
	Use:   "length <x,y> <x,y>...",
	Short: "Measure the length of a polyline drawn in pixels",
	Long: `Print the pixel length of a polyline and, with --ratio (real units per
pixel), its real length. Vertical rises at each end are added to the real
length the way cable runs are measured.

Examples:
  planmark length 0,0 200,0 200,100
  planmark length --ratio 0.05 --start-height 1.5 --end-height 2 0,0 200,0`,
	Args: cobra.MinimumNArgs(design.MinPolylinePoints),
	RunE: runLength,
}

func init() {
	rootCmd.AddCommand(areaCmd)
	rootCmd.AddCommand(lengthCmd)

	for _, c := range []*cobra.Command{areaCmd, lengthCmd} {
		c.Flags().Float64VarP(&ratio, "ratio", "r", 0, "real units per pixel")
	}
	areaCmd.Flags().Float64Var(&pitch, "pitch", 0, "roof pitch in degrees")
	lengthCmd.Flags().Float64Var(&startHeight, "start-height", 0, "vertical rise at the start")
	lengthCmd.Flags().Float64Var(&endHeight, "end-height", 0, "vertical rise at the end")
}

func runArea(cmd *cobra.Command, args []string) error {
	points, err := parsePoints(args)
	if err != nil {
		return err
	}
	if ratio < 0 {
		return errors.New("ratio must not be negative")
	}
	if pitch < 0 || pitch >= 90 {
		return fmt.Errorf("pitch %v: %w", pitch, design.ErrInvalidPitch)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Pixel area: %.2f px²\n", geometry.PolygonArea(points))
	if ratio > 0 {
		real := geometry.RealArea(points, ratio)
		fmt.Fprintf(out, "Real area:  %.3f\n", real)
		if pitch > 0 {
			fmt.Fprintf(out, "Sloped:     %.3f\n", design.SlopedArea(real, pitch))
		}
	}
	if verbose {
		c := geometry.Centroid(points)
		b := geometry.BoundingBox(points)
		fmt.Fprintf(out, "Centroid:   %.2f,%.2f\n", c.X, c.Y)
		fmt.Fprintf(out, "Bounds:     %.2f,%.2f %.2fx%.2f\n", b.X, b.Y, b.Width, b.Height)
	}
	return nil
}

func runLength(cmd *cobra.Command, args []string) error {
	points, err := parsePoints(args)
	if err != nil {
		return err
	}
	if ratio < 0 {
		return errors.New("ratio must not be negative")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Pixel length: %.2f px\n", geometry.PolylineLength(points))
	if ratio > 0 {
		path := geometry.RealLength(points, ratio)
		fmt.Fprintf(out, "Path length:  %.3f\n", path)
		fmt.Fprintf(out, "Total length: %.3f\n", path+startHeight+endHeight)
	}
	return nil
}

// parsePoints reads "x,y" arguments.
func parsePoints(args []string) ([]geometry.Point, error) {
	points := make([]geometry.Point, 0, len(args))
	for _, arg := range args {
		xs, ys, ok := strings.Cut(arg, ",")
		if !ok {
			return nil, fmt.Errorf("point %q: expected x,y", arg)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", arg, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", arg, err)
		}
		points = append(points, geometry.Pt(x, y))
	}
	return points, nil
}
