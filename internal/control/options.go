package control

import (
	"log/slog"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/philipparndt/gomeasure/internal/measurement"
	"github.com/philipparndt/gomeasure/pkg/draw"
	"github.com/philipparndt/gomeasure/pkg/geometry"
	"github.com/philipparndt/gomeasure/pkg/units"
)

// Style configures drawn shapes and labels
type Style = draw.Style

// Callback receives the drawn shapes and the current labels. A returned
// error is logged.
type Callback func(features *geojson.FeatureCollection, labels measurement.Collection) error

// Lang overrides the localized button titles
type Lang struct {
	LengthMeasurementButtonTitle string `yaml:"lengthMeasurementButtonTitle" toml:"lengthMeasurementButtonTitle" json:"lengthMeasurementButtonTitle,omitempty"`
	AreaMeasurementButtonTitle   string `yaml:"areaMeasurementButtonTitle" toml:"areaMeasurementButtonTitle" json:"areaMeasurementButtonTitle,omitempty"`
	ClearMeasurementsButtonTitle string `yaml:"clearMeasurementsButtonTitle" toml:"clearMeasurementsButtonTitle" json:"clearMeasurementsButtonTitle,omitempty"`
}

// Options configures a Control. The zero value is usable.
type Options struct {
	// Title is shown above the buttons when not empty
	Title string
	Style Style
	Lang  Lang
	// UnitsGroupingSeparator replaces locale digit grouping when set
	UnitsGroupingSeparator string
	// Locale is a BCP 47 tag used for number formatting and button titles
	Locale string
	// DebounceWindow defaults to 200ms
	DebounceWindow time.Duration

	DefaultLengthUnit units.Unit
	DefaultAreaUnit   units.Unit

	OnCreate Callback
	OnRender Callback

	Logger   *slog.Logger
	Analyzer geometry.Analyzer
}

func (o Options) selection() units.Selection {
	sel := units.DefaultSelection()
	if o.DefaultLengthUnit != "" {
		sel.Length = o.DefaultLengthUnit
	}
	if o.DefaultAreaUnit != "" {
		sel.Area = o.DefaultAreaUnit
	}
	return sel
}
