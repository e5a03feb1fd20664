package analysis

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/philipparndt/gomeasure/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var metersPerDegree = orb.EarthRadius * math.Pi / 180

var lengthPerDegree = geometry.MeanEarthRadius * math.Pi / 180

func drawing() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	line := geojson.NewFeature(orb.LineString{{0, 0}, {1, 0}, {1, 2}})
	line.ID = "line"
	fc.Append(line)

	d := 1000 / metersPerDegree
	fc.Append(geojson.NewFeature(orb.Polygon{orb.Ring{{0, 0}, {d, 0}, {d, d}, {0, d}, {0, 0}}}))
	fc.Append(geojson.NewFeature(orb.Point{5, 5}))
	fc.Append(geojson.NewFeature(orb.LineString{{0, 0}}))
	return fc
}

func TestAnalyzeDrawing(t *testing.T) {
	result := AnalyzeDrawing(drawing(), nil)

	assert.Equal(t, 1, result.LineCount)
	assert.Equal(t, 1, result.PolygonCount)
	assert.Equal(t, 2, result.SkippedCount)
	require.Equal(t, 2, result.SegmentCount)

	assert.InDelta(t, 3*lengthPerDegree, result.TotalLength, 1e-6)
	assert.InEpsilon(t, 1_000_000.0, result.TotalArea, 1e-3)
	assert.InDelta(t, lengthPerDegree, result.MinSegmentLength, 1e-6)
	assert.InDelta(t, 2*lengthPerDegree, result.MaxSegmentLength, 1e-6)
	assert.InDelta(t, 1.5*lengthPerDegree, result.AvgSegmentLength, 1e-6)

	assert.Equal(t, orb.Point{0, 0}, result.Bound.Min)
	assert.Equal(t, orb.Point{1, 2}, result.Bound.Max)

	seg := result.AllSegments[1]
	assert.Equal(t, "line", seg.FeatureID)
	assert.Equal(t, 1, seg.Index)
	assert.Equal(t, orb.Point{1, 0}, seg.Start)
}

func TestAnalyzeEmpty(t *testing.T) {
	result := AnalyzeDrawing(nil, nil)
	assert.Zero(t, result.SegmentCount)
	assert.Zero(t, result.MinSegmentLength)
	assert.NotNil(t, result.AllSegments)
}

func TestFindSegments(t *testing.T) {
	result := AnalyzeDrawing(drawing(), nil)

	longest := FindLongestSegments(result, 1)
	require.Len(t, longest, 1)
	assert.Equal(t, 1, longest[0].Index)

	shortest := FindShortestSegments(result, 10)
	require.Len(t, shortest, 2)
	assert.Equal(t, 0, shortest[0].Index)

	assert.Empty(t, FindLongestSegments(result, -1))

	inRange := FindSegmentsByLength(result, 0, 1.5*lengthPerDegree)
	require.Len(t, inRange, 1)
	assert.Equal(t, 0, inRange[0].Index)
}

func TestFormatPoint(t *testing.T) {
	assert.Equal(t, "(13.404954, 52.520008)", FormatPoint(orb.Point{13.404954, 52.520008}))
}
