package geometry

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// metersPerDegree is the length of one degree along the equator on orb's sphere
var metersPerDegree = orb.EarthRadius * math.Pi / 180

// lengthPerDegree is the haversine length of one degree on the mean earth radius
var lengthPerDegree = MeanEarthRadius * math.Pi / 180

func square(side float64) orb.Polygon {
	d := side / metersPerDegree
	return orb.Polygon{orb.Ring{{0, 0}, {d, 0}, {d, d}, {0, d}, {0, 0}}}
}

func TestGeodesicLength(t *testing.T) {
	length, err := Geodesic{}.Length(orb.LineString{{0, 0}, {1, 0}})
	require.NoError(t, err)

	if math.Abs(length-lengthPerDegree) > 1e-6 {
		t.Errorf("Length failed: expected %v, got %v", lengthPerDegree, length)
	}
}

func TestGeodesicLengthHundredthDegree(t *testing.T) {
	length, err := Geodesic{}.Length(orb.LineString{{0, 0}, {0.01, 0}})
	require.NoError(t, err)
	assert.InDelta(t, 1111.95, length, 0.01)
}

func TestGeodesicArea(t *testing.T) {
	area, err := Geodesic{}.Area(square(1000))
	require.NoError(t, err)
	assert.InEpsilon(t, 1_000_000.0, area, 1e-3)
}

func TestGeodesicAreaIgnoresWinding(t *testing.T) {
	p := square(500)
	reversed := orb.Polygon{orb.Ring{p[0][4], p[0][3], p[0][2], p[0][1], p[0][0]}}

	a1, err := Geodesic{}.Area(p)
	require.NoError(t, err)
	a2, err := Geodesic{}.Area(reversed)
	require.NoError(t, err)
	assert.InDelta(t, a1, a2, 1e-6)
}

func TestGeodesicSegments(t *testing.T) {
	ls := orb.LineString{{0, 0}, {1, 0}, {1, 1}, {2, 1}}
	segments, err := Geodesic{}.Segments(ls)
	require.NoError(t, err)
	require.Len(t, segments, 3)

	assert.Equal(t, orb.LineString{{0, 0}, {1, 0}}, segments[0])
	assert.Equal(t, orb.LineString{{1, 1}, {2, 1}}, segments[2])
}

func TestGeodesicSegmentsKeepsZeroLength(t *testing.T) {
	segments, err := Geodesic{}.Segments(orb.LineString{{1, 1}, {1, 1}})
	require.NoError(t, err)
	require.Len(t, segments, 1)

	length, err := Geodesic{}.Length(segments[0])
	require.NoError(t, err)
	assert.Equal(t, 0.0, length)
}

func TestCentroidOfSegmentIsMidpoint(t *testing.T) {
	c, err := Geodesic{}.Centroid(orb.LineString{{0, 0}, {2, 4}})
	require.NoError(t, err)
	assert.Equal(t, orb.Point{1, 2}, c)
}

func TestCentroidOfPolygonSkipsClosingVertex(t *testing.T) {
	p := orb.Polygon{orb.Ring{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}}
	c, err := Geodesic{}.Centroid(p)
	require.NoError(t, err)
	assert.Equal(t, orb.Point{2, 2}, c)
}

func TestCentroidUnsupported(t *testing.T) {
	_, err := Geodesic{}.Centroid(orb.MultiPoint{{0, 0}})
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Geodesic{}.Centroid(nil)
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestValidateLineString(t *testing.T) {
	assert.ErrorIs(t, ValidateLineString(orb.LineString{{0, 0}}), ErrDegenerate)
	assert.ErrorIs(t, ValidateLineString(orb.LineString{{0, 0}, {math.NaN(), 0}}), ErrInvalidCoordinate)
	assert.ErrorIs(t, ValidateLineString(orb.LineString{{0, 0}, {0, 91}}), ErrInvalidCoordinate)
	assert.NoError(t, ValidateLineString(orb.LineString{{-180, -90}, {180, 90}}))
}

func TestValidatePolygon(t *testing.T) {
	assert.ErrorIs(t, ValidatePolygon(orb.Polygon{}), ErrDegenerate)
	assert.ErrorIs(t, ValidatePolygon(orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {0, 0}}}), ErrDegenerate)
	assert.ErrorIs(t, ValidatePolygon(orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}}}), ErrDegenerate)
	assert.ErrorIs(t, ValidatePolygon(orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {math.Inf(1), 1}, {0, 0}}}), ErrInvalidCoordinate)
	assert.NoError(t, ValidatePolygon(square(10)))
}
