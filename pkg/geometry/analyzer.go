package geometry

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Analyzer computes measurements of drawn geometries.
// Coordinates are longitude/latitude in degrees, results are in meters and square meters.
type Analyzer interface {
	// Area returns the area of a polygon in square meters
	Area(p orb.Polygon) (float64, error)
	// Length returns the length of a line in meters
	Length(ls orb.LineString) (float64, error)
	// Centroid returns the point labels are anchored to
	Centroid(g orb.Geometry) (orb.Point, error)
	// Segments splits a line into its consecutive two-point segments
	Segments(ls orb.LineString) ([]orb.LineString, error)
}

// MeanEarthRadius is the mean earth radius in meters used for line lengths.
const MeanEarthRadius = 6371008.8

// Geodesic is the default Analyzer. Areas are computed on a sphere of
// orb.EarthRadius, lengths with the haversine formula on MeanEarthRadius.
type Geodesic struct{}

var _ Analyzer = Geodesic{}

// Area returns the spherical area of the polygon, holes subtracted
func (Geodesic) Area(p orb.Polygon) (float64, error) {
	if err := ValidatePolygon(p); err != nil {
		return 0, err
	}
	return geo.Area(p), nil
}

// Length returns the haversine length of the line
func (Geodesic) Length(ls orb.LineString) (float64, error) {
	if err := ValidateLineString(ls); err != nil {
		return 0, err
	}
	// haversine is linear in the radius
	return geo.LengthHaversine(ls) * MeanEarthRadius / orb.EarthRadius, nil
}

// Centroid returns the mean of the geometry's vertices.
// The closing vertex of a polygon ring is not counted twice.
func (Geodesic) Centroid(g orb.Geometry) (orb.Point, error) {
	var pts []orb.Point

	switch g := g.(type) {
	case orb.Point:
		if err := validatePoint(g); err != nil {
			return orb.Point{}, err
		}
		return g, nil
	case orb.LineString:
		if err := ValidateLineString(g); err != nil {
			return orb.Point{}, err
		}
		pts = g
	case orb.Polygon:
		if err := ValidatePolygon(g); err != nil {
			return orb.Point{}, err
		}
		for _, ring := range g {
			pts = append(pts, ring[:len(ring)-1]...)
		}
	case nil:
		return orb.Point{}, fmt.Errorf("centroid of nil geometry: %w", ErrDegenerate)
	default:
		return orb.Point{}, fmt.Errorf("centroid of %s: %w", g.GeoJSONType(), ErrUnsupported)
	}

	var sumX, sumY float64
	for _, p := range pts {
		sumX += p[0]
		sumY += p[1]
	}
	n := float64(len(pts))
	return orb.Point{sumX / n, sumY / n}, nil
}

// Segments returns one two-point line per consecutive vertex pair
func (Geodesic) Segments(ls orb.LineString) ([]orb.LineString, error) {
	if err := ValidateLineString(ls); err != nil {
		return nil, err
	}

	segments := make([]orb.LineString, 0, len(ls)-1)
	for i := 0; i < len(ls)-1; i++ {
		segments = append(segments, orb.LineString{ls[i], ls[i+1]})
	}
	return segments, nil
}
