package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

var (
	// ErrDegenerate is returned for geometries with too few vertices to measure
	ErrDegenerate = errors.New("degenerate geometry")
	// ErrInvalidCoordinate is returned for non-finite or out of range coordinates
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrUnsupported is returned for geometry types that are not measured
	ErrUnsupported = errors.New("unsupported geometry")
)

// ValidateLineString checks that a line has at least two valid vertices
func ValidateLineString(ls orb.LineString) error {
	if len(ls) < 2 {
		return fmt.Errorf("line with %d vertices: %w", len(ls), ErrDegenerate)
	}
	for i, p := range ls {
		if err := validatePoint(p); err != nil {
			return fmt.Errorf("vertex %d: %w", i, err)
		}
	}
	return nil
}

// ValidatePolygon checks that every ring is closed, has at least four
// positions, and only holds valid coordinates
func ValidatePolygon(p orb.Polygon) error {
	if len(p) == 0 {
		return fmt.Errorf("polygon without rings: %w", ErrDegenerate)
	}
	for r, ring := range p {
		if len(ring) < 4 {
			return fmt.Errorf("ring %d with %d positions: %w", r, len(ring), ErrDegenerate)
		}
		if !ring.Closed() {
			return fmt.Errorf("ring %d is not closed: %w", r, ErrDegenerate)
		}
		for i, pt := range ring {
			if err := validatePoint(pt); err != nil {
				return fmt.Errorf("ring %d vertex %d: %w", r, i, err)
			}
		}
	}
	return nil
}

func validatePoint(p orb.Point) error {
	lon, lat := p.Lon(), p.Lat()
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return fmt.Errorf("(%v, %v): %w", lon, lat, ErrInvalidCoordinate)
	}
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return fmt.Errorf("(%v, %v) out of range: %w", lon, lat, ErrInvalidCoordinate)
	}
	return nil
}
