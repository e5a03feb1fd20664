package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/philipparndt/gomeasure/internal/measurement"
	"github.com/spf13/cobra"
)

var (
	labelsJSON  bool
	labelsPlain bool
)

var labelsCmd = &cobra.Command{
	Use:   "labels [file]",
	Short: "Print the measurement labels of a GeoJSON drawing",
	Long: `Compute one label per line segment and one per polygon. With --json the
labels are printed as a GeoJSON FeatureCollection of points, each carrying a
"measurement" property. With --plain only the label texts are printed, one
per line.`,
	Args: cobra.ExactArgs(1),
	RunE: runLabels,
}

func init() {
	rootCmd.AddCommand(labelsCmd)

	labelsCmd.Flags().BoolVar(&labelsJSON, "json", false, "Print labels as GeoJSON")
	labelsCmd.Flags().BoolVar(&labelsPlain, "plain", false, "Print only the label texts (wins over --json)")
}

func runLabels(cmd *cobra.Command, args []string) error {
	filename := args[0]

	a, err := openSession(filename, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	labels := a.Control.Labels()
	if labelsPlain {
		for _, m := range labels.Measurements() {
			fmt.Fprintln(cmd.OutOrStdout(), m)
		}
		return nil
	}
	if labelsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(labels.FeatureCollection())
	}

	printLabels(cmd.OutOrStdout(), filename, labels)
	return nil
}

func printLabels(w io.Writer, filename string, labels measurement.Collection) {
	fmt.Fprintln(w, "Measurements")
	fmt.Fprintln(w, "============")
	fmt.Fprintf(w, "File: %s\n\n", filename)

	if labels.Len() == 0 {
		fmt.Fprintln(w, "No shapes to measure.")
	}

	current := ""
	for _, l := range labels.Labels {
		if l.FeatureID != current {
			current = l.FeatureID
			fmt.Fprintf(w, "%s %s:\n", shapeKind(l), current)
		}
		if l.Segment >= 0 {
			fmt.Fprintf(w, "  Segment %d: %s\n", l.Segment+1, l.Measurement)
		} else {
			fmt.Fprintf(w, "  Area: %s\n", l.Measurement)
		}
	}

	if len(labels.Skipped) > 0 {
		fmt.Fprintf(w, "\nSkipped %d shape(s):\n", len(labels.Skipped))
		for _, s := range labels.Skipped {
			fmt.Fprintf(w, "  #%d %s: %v\n", s.Index+1, s.FeatureID, s.Err)
		}
	}
}

func shapeKind(l measurement.Label) string {
	if l.Segment >= 0 {
		return "Line"
	}
	return "Polygon"
}
