package main

import (
	"fmt"

	"github.com/philipparndt/gomeasure/pkg/analysis"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Display general information about a GeoJSON drawing",
	Long:  "Show shape counts, extent, total length and area, and segment statistics.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	filename := args[0]

	a, err := openSession(filename, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	result := analysis.AnalyzeDrawing(a.Draw.GetAll(), nil)
	f := formatter()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Drawing Information")
	fmt.Fprintln(out, "===================")
	fmt.Fprintf(out, "File: %s\n\n", filename)

	fmt.Fprintln(out, "Shapes:")
	fmt.Fprintf(out, "  Lines: %d\n", result.LineCount)
	fmt.Fprintf(out, "  Polygons: %d\n", result.PolygonCount)
	fmt.Fprintf(out, "  Skipped: %d\n\n", result.SkippedCount)

	if result.LineCount+result.PolygonCount > 0 {
		fmt.Fprintln(out, "Extent:")
		fmt.Fprintf(out, "  Min: %s\n", analysis.FormatPoint(result.Bound.Min))
		fmt.Fprintf(out, "  Max: %s\n", analysis.FormatPoint(result.Bound.Max))
		fmt.Fprintf(out, "  Center: %s\n\n", analysis.FormatPoint(result.Bound.Center()))
	}

	fmt.Fprintln(out, "Totals:")
	fmt.Fprintf(out, "  Length: %s\n", formatLength(f, result.TotalLength))
	fmt.Fprintf(out, "  Area: %s\n\n", formatArea(f, result.TotalArea))

	fmt.Fprintln(out, "Segment Lengths:")
	fmt.Fprintf(out, "  Count: %d\n", result.SegmentCount)
	fmt.Fprintf(out, "  Minimum: %s\n", formatLength(f, result.MinSegmentLength))
	fmt.Fprintf(out, "  Maximum: %s\n", formatLength(f, result.MaxSegmentLength))
	fmt.Fprintf(out, "  Average: %s\n", formatLength(f, result.AvgSegmentLength))
	return nil
}
