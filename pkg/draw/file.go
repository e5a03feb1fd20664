package draw

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb/geojson"
)

// LoadFile reads a GeoJSON drawing from disk.
// It accepts a FeatureCollection, a single Feature or a bare geometry.
func LoadFile(filename string) (*geojson.FeatureCollection, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Read(file)
}

// Read parses a GeoJSON drawing from r
func Read(r io.Reader) (*geojson.FeatureCollection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read drawing: %w", err)
	}
	return Parse(data)
}

// Parse decodes a GeoJSON document into a feature collection
func Parse(data []byte) (*geojson.FeatureCollection, error) {
	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("invalid GeoJSON: %w", err)
	}

	switch header.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("invalid feature collection: %w", err)
		}
		return fc, nil

	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("invalid feature: %w", err)
		}
		fc := geojson.NewFeatureCollection()
		fc.Append(f)
		return fc, nil

	case "":
		return nil, fmt.Errorf("invalid GeoJSON: missing type")

	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("invalid geometry: %w", err)
		}
		fc := geojson.NewFeatureCollection()
		fc.Append(geojson.NewFeature(g.Geometry()))
		return fc, nil
	}
}

// WriteFile stores the current drawing as a FeatureCollection
func (d *Draw) WriteFile(filename string) error {
	data, err := d.GetAll().MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode drawing: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
