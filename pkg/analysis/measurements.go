package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/philipparndt/gomeasure/pkg/geometry"
	"github.com/samber/lo"
)

// SegmentInfo contains information about one segment of a drawn line
type SegmentInfo struct {
	Start     orb.Point
	End       orb.Point
	Length    float64 // meters
	FeatureID string
	Index     int // segment index within the line
}

// MeasurementResult contains the measurements of a drawing
type MeasurementResult struct {
	Bound            orb.Bound
	LineCount        int
	PolygonCount     int
	SkippedCount     int
	SegmentCount     int
	TotalLength      float64 // meters
	TotalArea        float64 // square meters
	MinSegmentLength float64
	MaxSegmentLength float64
	AvgSegmentLength float64
	AllSegments      []SegmentInfo
}

// AnalyzeDrawing measures every line and polygon of fc. Features the
// analyzer rejects are counted as skipped.
func AnalyzeDrawing(fc *geojson.FeatureCollection, analyzer geometry.Analyzer) *MeasurementResult {
	if analyzer == nil {
		analyzer = geometry.Geodesic{}
	}
	result := &MeasurementResult{
		AllSegments: make([]SegmentInfo, 0),
	}
	if fc == nil || len(fc.Features) == 0 {
		return result
	}

	first := true
	minLength := math.MaxFloat64
	maxLength := 0.0

	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			result.SkippedCount++
			continue
		}

		switch g := f.Geometry.(type) {
		case orb.Polygon:
			area, err := analyzer.Area(g)
			if err != nil {
				result.SkippedCount++
				continue
			}
			result.PolygonCount++
			result.TotalArea += area

		case orb.LineString:
			segments, err := analyzer.Segments(g)
			if err != nil {
				result.SkippedCount++
				continue
			}
			result.LineCount++
			for i, seg := range segments {
				length, err := analyzer.Length(seg)
				if err != nil {
					continue
				}
				result.AllSegments = append(result.AllSegments, SegmentInfo{
					Start:     seg[0],
					End:       seg[1],
					Length:    length,
					FeatureID: featureID(f),
					Index:     i,
				})
				result.TotalLength += length
				minLength = math.Min(minLength, length)
				maxLength = math.Max(maxLength, length)
			}

		default:
			result.SkippedCount++
			continue
		}

		if first {
			result.Bound = f.Geometry.Bound()
			first = false
		} else {
			result.Bound = result.Bound.Union(f.Geometry.Bound())
		}
	}

	result.SegmentCount = len(result.AllSegments)
	if result.SegmentCount > 0 {
		result.MinSegmentLength = minLength
		result.MaxSegmentLength = maxLength
		result.AvgSegmentLength = result.TotalLength / float64(result.SegmentCount)
	}

	return result
}

// FindSegmentsByLength finds all segments within a length range
func FindSegmentsByLength(result *MeasurementResult, minLength, maxLength float64) []SegmentInfo {
	return lo.Filter(result.AllSegments, func(s SegmentInfo, _ int) bool {
		return s.Length >= minLength && s.Length <= maxLength
	})
}

// FindLongestSegments returns the N longest segments
func FindLongestSegments(result *MeasurementResult, count int) []SegmentInfo {
	return sortedSegments(result, count, func(a, b float64) bool { return a > b })
}

// FindShortestSegments returns the N shortest segments
func FindShortestSegments(result *MeasurementResult, count int) []SegmentInfo {
	return sortedSegments(result, count, func(a, b float64) bool { return a < b })
}

func sortedSegments(result *MeasurementResult, count int, less func(a, b float64) bool) []SegmentInfo {
	segments := make([]SegmentInfo, len(result.AllSegments))
	copy(segments, result.AllSegments)

	sort.SliceStable(segments, func(i, j int) bool {
		return less(segments[i].Length, segments[j].Length)
	})

	if count < 0 {
		count = 0
	}
	if count > len(segments) {
		count = len(segments)
	}

	return segments[:count]
}

// FormatPoint formats a position as longitude, latitude
func FormatPoint(p orb.Point) string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Lon(), p.Lat())
}

func featureID(f *geojson.Feature) string {
	if f.ID == nil {
		return ""
	}
	return fmt.Sprint(f.ID)
}
