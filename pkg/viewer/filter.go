package viewer

import (
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// Matches evaluates a layer filter against a feature. Supported
// expressions are "all", "any", "!", "==", "!=", "has" and "!has"; the
// "$type" key resolves to the geometry type. An empty filter matches
// everything.
func Matches(filter []any, f *geojson.Feature) bool {
	if len(filter) == 0 {
		return true
	}
	op, _ := filter[0].(string)

	switch op {
	case "all":
		for _, sub := range filter[1:] {
			expr, ok := sub.([]any)
			if !ok || !Matches(expr, f) {
				return false
			}
		}
		return true
	case "any":
		for _, sub := range filter[1:] {
			if expr, ok := sub.([]any); ok && Matches(expr, f) {
				return true
			}
		}
		return false
	case "!":
		if len(filter) != 2 {
			return false
		}
		expr, ok := filter[1].([]any)
		return ok && !Matches(expr, f)
	case "==", "!=":
		if len(filter) != 3 {
			return false
		}
		key, _ := filter[1].(string)
		v, ok := lookup(f, key)
		equal := ok && fmt.Sprint(v) == fmt.Sprint(filter[2])
		return equal == (op == "==")
	case "has", "!has":
		if len(filter) != 2 {
			return false
		}
		key, _ := filter[1].(string)
		_, ok := lookup(f, key)
		return ok == (op == "has")
	}
	return false
}

func lookup(f *geojson.Feature, key string) (any, bool) {
	if key == "$type" {
		if f.Geometry == nil {
			return nil, false
		}
		return f.Geometry.GeoJSONType(), true
	}
	v, ok := f.Properties[key]
	return v, ok
}
