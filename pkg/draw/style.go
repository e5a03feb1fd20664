package draw

import (
	"github.com/philipparndt/gomeasure/pkg/maplayer"
)

// Style configures the drawn shapes and their labels. Zero values fall back
// to the defaults.
type Style struct {
	LengthMeasurement LengthStyle `yaml:"lengthMeasurement" toml:"lengthMeasurement" json:"lengthMeasurement"`
	AreaMeasurement   AreaStyle   `yaml:"areaMeasurement" toml:"areaMeasurement" json:"areaMeasurement"`
	Common            CommonStyle `yaml:"common" toml:"common" json:"common"`
	Text              TextStyle   `yaml:"text" toml:"text" json:"text"`
}

// LengthStyle is applied to lines
type LengthStyle struct {
	LineColor string  `yaml:"lineColor" toml:"lineColor" json:"lineColor,omitempty"`
	LineWidth float64 `yaml:"lineWidth" toml:"lineWidth" json:"lineWidth,omitempty"`
}

// AreaStyle is applied to polygons
type AreaStyle struct {
	FillColor        string  `yaml:"fillColor" toml:"fillColor" json:"fillColor,omitempty"`
	FillOutlineColor string  `yaml:"fillOutlineColor" toml:"fillOutlineColor" json:"fillOutlineColor,omitempty"`
	FillOpacity      float64 `yaml:"fillOpacity" toml:"fillOpacity" json:"fillOpacity,omitempty"`
	LineWidth        float64 `yaml:"lineWidth" toml:"lineWidth" json:"lineWidth,omitempty"`
}

// CommonStyle is applied to vertices and midpoints
type CommonStyle struct {
	MidPointRadius     float64 `yaml:"midPointRadius" toml:"midPointRadius" json:"midPointRadius,omitempty"`
	MidPointColor      string  `yaml:"midPointColor" toml:"midPointColor" json:"midPointColor,omitempty"`
	MidPointHaloRadius float64 `yaml:"midPointHaloRadius" toml:"midPointHaloRadius" json:"midPointHaloRadius,omitempty"`
	MidPointHaloColor  string  `yaml:"midPointHaloColor" toml:"midPointHaloColor" json:"midPointHaloColor,omitempty"`
}

// TextStyle is applied to measurement labels
type TextStyle struct {
	Font          string       `yaml:"font" toml:"font" json:"font,omitempty"`
	RadialOffset  float64      `yaml:"radialOffset" toml:"radialOffset" json:"radialOffset,omitempty"`
	LetterSpacing float64      `yaml:"letterSpacing" toml:"letterSpacing" json:"letterSpacing,omitempty"`
	AllowOverlap  bool         `yaml:"allowOverlap" toml:"allowOverlap" json:"allowOverlap,omitempty"`
	Color         string       `yaml:"color" toml:"color" json:"color,omitempty"`
	HaloColor     string       `yaml:"haloColor" toml:"haloColor" json:"haloColor,omitempty"`
	HaloWidth     float64      `yaml:"haloWidth" toml:"haloWidth" json:"haloWidth,omitempty"`
	SizeStops     [][2]float64 `yaml:"sizeStops" toml:"sizeStops" json:"sizeStops,omitempty"`
}

// Default style values
const (
	DefaultColor           = "#D20C0C"
	DefaultStaticColor     = "#000"
	DefaultActiveLineWidth = 2.0
	DefaultStaticLineWidth = 3.0
	DefaultAreaLineWidth   = 2.0
	DefaultFillOpacity     = 0.1
	DefaultMidPointRadius  = 3.0
	DefaultMidPointColor   = "#fbb03b"
	DefaultHaloRadius      = 3.0
	DefaultHaloColor       = "#FFF"
	DefaultFont            = "Klokantech Noto Sans Bold"
	DefaultRadialOffset    = 0.5
	DefaultLetterSpacing   = 0.05
	DefaultTextHaloColor   = "#fff"
	DefaultTextHaloWidth   = 10.0
)

// feature properties the style filters match on
const (
	propertyMode   = "mode"
	propertyMeta   = "meta"
	propertyActive = "active"
	metaFeature    = "feature"
	metaVertex     = "vertex"
	metaMidpoint   = "midpoint"
)

// DefaultSizeStops maps zoom levels to label text sizes
var DefaultSizeStops = [][2]float64{{5, 10}, {10, 12}, {13, 14}, {14, 16}, {18, 18}}

// WithDefaults returns the text style with every unset field filled in
func (t TextStyle) WithDefaults() TextStyle {
	t.Font = str(t.Font, DefaultFont)
	t.RadialOffset = num(t.RadialOffset, DefaultRadialOffset)
	t.LetterSpacing = num(t.LetterSpacing, DefaultLetterSpacing)
	t.Color = str(t.Color, DefaultColor)
	t.HaloColor = str(t.HaloColor, DefaultTextHaloColor)
	t.HaloWidth = num(t.HaloWidth, DefaultTextHaloWidth)
	if len(t.SizeStops) == 0 {
		t.SizeStops = DefaultSizeStops
	}
	return t
}

// Styles builds the style table for drawn shapes. Layer ids carry no
// source suffix and layers carry no source.
func Styles(s Style) []maplayer.Layer {
	notStatic := []any{"!=", propertyMode, string(ModeStatic)}
	isStatic := []any{"==", propertyMode, string(ModeStatic)}
	roundJoins := map[string]any{"line-cap": "round", "line-join": "round"}
	dashes := []any{0.2, 2}

	lineColor := str(s.LengthMeasurement.LineColor, DefaultColor)
	outline := str(s.AreaMeasurement.FillOutlineColor, DefaultColor)
	staticOutline := str(s.AreaMeasurement.FillOutlineColor, DefaultStaticColor)
	opacity := num(s.AreaMeasurement.FillOpacity, DefaultFillOpacity)
	areaWidth := num(s.AreaMeasurement.LineWidth, DefaultAreaLineWidth)
	midRadius := num(s.Common.MidPointRadius, DefaultMidPointRadius)
	midColor := str(s.Common.MidPointColor, DefaultMidPointColor)

	return []maplayer.Layer{
		{
			ID:     "gl-draw-line",
			Type:   maplayer.LayerLine,
			Filter: []any{"all", []any{"==", "$type", "LineString"}, notStatic},
			Layout: roundJoins,
			Paint: map[string]any{
				"line-color":     lineColor,
				"line-dasharray": dashes,
				"line-width":     num(s.LengthMeasurement.LineWidth, DefaultActiveLineWidth),
			},
		},
		{
			ID:     "gl-draw-polygon-fill",
			Type:   maplayer.LayerFill,
			Filter: []any{"all", []any{"==", "$type", "Polygon"}, notStatic},
			Paint: map[string]any{
				"fill-color":         str(s.AreaMeasurement.FillColor, DefaultColor),
				"fill-outline-color": outline,
				"fill-opacity":       opacity,
			},
		},
		{
			ID:     "gl-draw-polygon-midpoint",
			Type:   maplayer.LayerCircle,
			Filter: []any{"all", []any{"==", "$type", "Point"}, []any{"==", propertyMeta, metaMidpoint}},
			Paint: map[string]any{
				"circle-radius": midRadius,
				"circle-color":  midColor,
			},
		},
		{
			ID:     "gl-draw-polygon-stroke-active",
			Type:   maplayer.LayerLine,
			Filter: []any{"all", []any{"==", "$type", "Polygon"}, notStatic},
			Layout: roundJoins,
			Paint: map[string]any{
				"line-color":     outline,
				"line-dasharray": dashes,
				"line-width":     areaWidth,
			},
		},
		{
			ID:     "gl-draw-polygon-and-line-vertex-halo-active",
			Type:   maplayer.LayerCircle,
			Filter: []any{"all", []any{"==", propertyMeta, metaVertex}, []any{"==", "$type", "Point"}, notStatic},
			Paint: map[string]any{
				"circle-radius": num(s.Common.MidPointHaloRadius, DefaultHaloRadius),
				"circle-color":  str(s.Common.MidPointHaloColor, DefaultHaloColor),
			},
		},
		{
			ID:     "gl-draw-polygon-and-line-vertex-active",
			Type:   maplayer.LayerCircle,
			Filter: []any{"all", []any{"==", propertyMeta, metaVertex}, []any{"==", "$type", "Point"}, notStatic},
			Paint: map[string]any{
				"circle-radius": midRadius,
				"circle-color":  midColor,
			},
		},
		{
			ID:     "gl-draw-line-static",
			Type:   maplayer.LayerLine,
			Filter: []any{"all", []any{"==", "$type", "LineString"}, isStatic},
			Layout: roundJoins,
			Paint: map[string]any{
				"line-color": lineColor,
				"line-width": num(s.LengthMeasurement.LineWidth, DefaultStaticLineWidth),
			},
		},
		{
			ID:     "gl-draw-polygon-fill-static",
			Type:   maplayer.LayerFill,
			Filter: []any{"all", []any{"==", "$type", "Polygon"}, isStatic},
			Paint: map[string]any{
				"fill-color":         str(s.AreaMeasurement.FillColor, DefaultStaticColor),
				"fill-outline-color": staticOutline,
				"fill-opacity":       opacity,
			},
		},
		{
			ID:     "gl-draw-polygon-stroke-static",
			Type:   maplayer.LayerLine,
			Filter: []any{"all", []any{"==", "$type", "Polygon"}, isStatic},
			Layout: roundJoins,
			Paint: map[string]any{
				"line-color": staticOutline,
				"line-width": areaWidth,
			},
		},
	}
}

func str(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func num(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
