package measurement

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/philipparndt/gomeasure/pkg/units"
)

// PropertyMeasurement is the feature property the label layer displays
const PropertyMeasurement = "measurement"

// Label is a positioned measurement text
type Label struct {
	Position    orb.Point
	Measurement string     // formatted value and unit symbol, e.g. "12.50 m"
	Kind        units.Kind // length for segments, area for polygons
	Value       float64    // raw value in meters or square meters
	Unit        units.Unit
	FeatureID   string
	Segment     int // segment index within the line, -1 for polygons
}

// Feature returns the label as a GeoJSON point feature
func (l Label) Feature() *geojson.Feature {
	f := geojson.NewFeature(l.Position)
	f.Properties[PropertyMeasurement] = l.Measurement
	f.Properties["kind"] = l.Kind.String()
	f.Properties["unit"] = l.Unit.String()
	f.Properties["value"] = l.Value
	if l.FeatureID != "" {
		f.Properties["featureId"] = l.FeatureID
	}
	if l.Segment >= 0 {
		f.Properties["segment"] = l.Segment
	}
	return f
}

// Skipped records a drawn feature that could not be measured
type Skipped struct {
	FeatureID string
	Index     int
	Err       error
}

// Collection is the result of one measurement pass. It replaces the
// previous pass entirely.
type Collection struct {
	Labels  []Label
	Skipped []Skipped
}

// Len returns the number of labels
func (c Collection) Len() int {
	return len(c.Labels)
}

// FeatureCollection renders the labels as GeoJSON point features
func (c Collection) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, l := range c.Labels {
		fc.Append(l.Feature())
	}
	return fc
}

// Measurements returns the label texts in order
func (c Collection) Measurements() []string {
	out := make([]string, len(c.Labels))
	for i, l := range c.Labels {
		out[i] = l.Measurement
	}
	return out
}
