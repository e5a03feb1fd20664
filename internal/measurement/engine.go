// Package measurement turns drawn geometry into positioned, formatted
// measurement labels.
package measurement

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/philipparndt/gomeasure/internal/logging"
	"github.com/philipparndt/gomeasure/pkg/geometry"
	"github.com/philipparndt/gomeasure/pkg/units"
	"golang.org/x/text/language"
)

// Engine measures polygons by area and lines segment by segment
type Engine struct {
	analyzer  geometry.Analyzer
	formatter *units.Formatter
	logger    *slog.Logger
}

// NewEngine creates an engine. Nil arguments fall back to the geodesic
// analyzer, English formatting and a discarding logger.
func NewEngine(analyzer geometry.Analyzer, formatter *units.Formatter, logger *slog.Logger) *Engine {
	if analyzer == nil {
		analyzer = geometry.Geodesic{}
	}
	if formatter == nil {
		formatter = units.NewFormatter(language.English, "")
	}
	return &Engine{
		analyzer:  analyzer,
		formatter: formatter,
		logger:    logging.OrNop(logger),
	}
}

// Measure computes one label per polygon and one label per line segment,
// in feature order and then segment order. A feature that cannot be
// analyzed is skipped and recorded. A unit conversion failure aborts the
// whole pass.
func (e *Engine) Measure(fc *geojson.FeatureCollection, sel units.Selection) (Collection, error) {
	var result Collection
	if fc == nil {
		return result, nil
	}

	for i, f := range fc.Features {
		if f == nil {
			continue
		}
		id := featureID(f)

		var labels []Label
		var err error
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			labels, err = e.measurePolygon(g, sel.Area)
		case orb.LineString:
			labels, err = e.measureLine(g, sel.Length)
		default:
			err = fmt.Errorf("%T: %w", f.Geometry, geometry.ErrUnsupported)
		}

		if err != nil {
			var ce conversionError
			if errors.As(err, &ce) {
				return Collection{}, ce.err
			}
			e.logger.Warn("skipping feature", "feature", id, "index", i, "error", err)
			result.Skipped = append(result.Skipped, Skipped{FeatureID: id, Index: i, Err: err})
			continue
		}

		for j := range labels {
			labels[j].FeatureID = id
		}
		result.Labels = append(result.Labels, labels...)
	}

	return result, nil
}

func (e *Engine) measurePolygon(p orb.Polygon, unit units.Unit) ([]Label, error) {
	area, err := e.analyzer.Area(p)
	if err != nil {
		return nil, err
	}
	centroid, err := e.analyzer.Centroid(p)
	if err != nil {
		return nil, err
	}
	text, err := e.format(area, units.SquareMeters, unit)
	if err != nil {
		return nil, err
	}

	return []Label{{
		Position:    centroid,
		Measurement: text,
		Kind:        units.KindArea,
		Value:       area,
		Unit:        unit,
		Segment:     -1,
	}}, nil
}

func (e *Engine) measureLine(ls orb.LineString, unit units.Unit) ([]Label, error) {
	segments, err := e.analyzer.Segments(ls)
	if err != nil {
		return nil, err
	}

	labels := make([]Label, 0, len(segments))
	for i, seg := range segments {
		length, err := e.analyzer.Length(seg)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		centroid, err := e.analyzer.Centroid(seg)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		text, err := e.format(length, units.Meters, unit)
		if err != nil {
			return nil, err
		}
		labels = append(labels, Label{
			Position:    centroid,
			Measurement: text,
			Kind:        units.KindLength,
			Value:       length,
			Unit:        unit,
			Segment:     i,
		})
	}
	return labels, nil
}

func (e *Engine) format(value float64, from, to units.Unit) (string, error) {
	s, err := e.formatter.Convert(value, from, to)
	if err != nil {
		return "", conversionError{err}
	}
	return s + " " + to.String(), nil
}

// conversionError marks failures that abort the pass instead of skipping a feature
type conversionError struct{ err error }

func (c conversionError) Error() string { return c.err.Error() }
func (c conversionError) Unwrap() error { return c.err }

func featureID(f *geojson.Feature) string {
	switch id := f.ID.(type) {
	case nil:
		return ""
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}
