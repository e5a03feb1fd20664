package main

import (
	"fmt"
	"os"

	"github.com/philipparndt/gomeasure/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gomeasure",
	Short: "A command-line tool for measuring drawn map shapes",
	Long: `gomeasure measures the lines and polygons of GeoJSON drawings.
It labels every line segment with its geodesic length and every polygon with
its area, in the units and locale of your choice, and can serve the labels
over HTTP or render them into a PNG snapshot.`,
	Version:           version.GetFullVersion(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
