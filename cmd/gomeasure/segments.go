package main

import (
	"fmt"

	"github.com/philipparndt/gomeasure/pkg/analysis"
	"github.com/philipparndt/gomeasure/pkg/units"
	"github.com/spf13/cobra"
)

var (
	segmentsCount     int
	segmentsLongest   bool
	segmentsShortest  bool
	segmentsMinLength float64
	segmentsMaxLength float64
)

var segmentsCmd = &cobra.Command{
	Use:   "segments [file]",
	Short: "Analyze and measure the line segments of a GeoJSON drawing",
	Long: `Find and measure line segments, including longest, shortest, or segments within
a specific length range. --min and --max are given in the selected length unit.`,
	Args: cobra.ExactArgs(1),
	RunE: runSegments,
}

func init() {
	rootCmd.AddCommand(segmentsCmd)

	segmentsCmd.Flags().IntVarP(&segmentsCount, "count", "n", 10, "Number of segments to display")
	segmentsCmd.Flags().BoolVarP(&segmentsLongest, "longest", "l", false, "Show longest segments")
	segmentsCmd.Flags().BoolVarP(&segmentsShortest, "shortest", "s", false, "Show shortest segments")
	segmentsCmd.Flags().Float64Var(&segmentsMinLength, "min", 0.0, "Minimum segment length filter")
	segmentsCmd.Flags().Float64Var(&segmentsMaxLength, "max", 0.0, "Maximum segment length filter")
}

func runSegments(cmd *cobra.Command, args []string) error {
	a, err := openSession(args[0], nil)
	if err != nil {
		return err
	}
	defer a.Close()

	result := analysis.AnalyzeDrawing(a.Draw.GetAll(), nil)
	f := formatter()
	unit := units.Unit(settings.LengthUnit)

	var segments []analysis.SegmentInfo
	var title string

	switch {
	case segmentsLongest:
		segments = analysis.FindLongestSegments(result, segmentsCount)
		title = fmt.Sprintf("Top %d Longest Segments", len(segments))
	case segmentsShortest:
		segments = analysis.FindShortestSegments(result, segmentsCount)
		title = fmt.Sprintf("Top %d Shortest Segments", len(segments))
	case segmentsMaxLength > 0:
		minMeters, err := units.Convert(segmentsMinLength, unit, units.Meters)
		if err != nil {
			return err
		}
		maxMeters, err := units.Convert(segmentsMaxLength, unit, units.Meters)
		if err != nil {
			return err
		}
		segments = analysis.FindSegmentsByLength(result, minMeters, maxMeters)
		title = fmt.Sprintf("Segments between %s and %s (found %d)",
			formatLength(f, minMeters), formatLength(f, maxMeters), len(segments))
		if len(segments) > segmentsCount {
			segments = segments[:segmentsCount]
		}
	default:
		segments = result.AllSegments
		title = fmt.Sprintf("All Segments (showing first %d of %d)", min(segmentsCount, len(segments)), len(segments))
		if len(segments) > segmentsCount {
			segments = segments[:segmentsCount]
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, title)
	fmt.Fprintln(out, "====================")
	fmt.Fprintf(out, "Total segments in drawing: %d\n", result.SegmentCount)
	fmt.Fprintf(out, "Min segment length: %s\n", formatLength(f, result.MinSegmentLength))
	fmt.Fprintf(out, "Max segment length: %s\n", formatLength(f, result.MaxSegmentLength))
	fmt.Fprintf(out, "Avg segment length: %s\n\n", formatLength(f, result.AvgSegmentLength))

	if len(segments) == 0 {
		fmt.Fprintln(out, "No segments found matching the criteria.")
		return nil
	}

	fmt.Fprintf(out, "%-6s %-26s %-26s %-20s\n", "Index", "Start", "End", "Length")
	fmt.Fprintln(out, "-----------------------------------------------------------------------------------")
	for i, seg := range segments {
		fmt.Fprintf(out, "%-6d %-26s %-26s %-20s\n",
			i+1,
			analysis.FormatPoint(seg.Start),
			analysis.FormatPoint(seg.End),
			formatLength(f, seg.Length))
	}
	return nil
}
