package main

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/philipparndt/gomeasure/pkg/analysis"
	"github.com/philipparndt/gomeasure/pkg/geometry"
	"github.com/spf13/cobra"
)

var (
	point1Lon, point1Lat float64
	point2Lon, point2Lat float64
)

var measureCmd = &cobra.Command{
	Use:   "measure",
	Short: "Measure the distance between two positions",
	Long:  `Measure the geodesic distance between two longitude/latitude positions.`,
	Args:  cobra.NoArgs,
	RunE:  runMeasure,
}

func init() {
	rootCmd.AddCommand(measureCmd)

	measureCmd.Flags().Float64Var(&point1Lon, "lon1", 0.0, "Longitude of the first position")
	measureCmd.Flags().Float64Var(&point1Lat, "lat1", 0.0, "Latitude of the first position")
	measureCmd.Flags().Float64Var(&point2Lon, "lon2", 0.0, "Longitude of the second position")
	measureCmd.Flags().Float64Var(&point2Lat, "lat2", 0.0, "Latitude of the second position")

	for _, name := range []string{"lon1", "lat1", "lon2", "lat2"} {
		_ = measureCmd.MarkFlagRequired(name)
	}
}

func runMeasure(cmd *cobra.Command, _ []string) error {
	p1 := orb.Point{point1Lon, point1Lat}
	p2 := orb.Point{point2Lon, point2Lat}

	distance, err := geometry.Geodesic{}.Length(orb.LineString{p1, p2})
	if err != nil {
		return fmt.Errorf("cannot measure: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Point-to-Point Measurement")
	fmt.Fprintln(out, "==========================")
	fmt.Fprintf(out, "\nPoint 1: %s\n", analysis.FormatPoint(p1))
	fmt.Fprintf(out, "Point 2: %s\n", analysis.FormatPoint(p2))
	fmt.Fprintf(out, "\nDistance: %s\n", formatLength(formatter(), distance))
	return nil
}
