package draw

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/philipparndt/gomeasure/pkg/maplayer"
)

// LayerID returns the host layer id of a style layer registered for source
func LayerID(styleID, source string) string {
	switch source {
	case SourceHot:
		return styleID + ".hot"
	default:
		return styleID + ".cold"
	}
}

// AddTo registers the internal sources and the style layers on host and
// starts publishing the drawn shapes into them. Existing sources and layers
// are kept.
func (d *Draw) AddTo(host maplayer.Renderer, style Style) error {
	for _, src := range Sources() {
		if _, ok := host.GetSource(src); ok {
			continue
		}
		if err := host.AddSource(src, nil); err != nil {
			return fmt.Errorf("failed to add draw source: %w", err)
		}
	}

	for _, src := range Sources() {
		for _, layer := range Styles(style) {
			layer.ID = LayerID(layer.ID, src)
			layer.Source = src
			if _, ok := host.GetLayer(layer.ID); ok {
				continue
			}
			if err := host.AddLayer(layer); err != nil {
				return fmt.Errorf("failed to add draw layer: %w", err)
			}
		}
	}

	d.mu.Lock()
	d.host = host
	d.mu.Unlock()

	d.publish()
	return nil
}

// RemoveFrom removes the style layers and internal sources from host
func (d *Draw) RemoveFrom(host maplayer.Renderer) error {
	d.mu.Lock()
	if d.host == host {
		d.host = nil
	}
	d.mu.Unlock()

	var errs []error
	for _, src := range Sources() {
		for _, layer := range Styles(Style{}) {
			err := host.RemoveLayer(LayerID(layer.ID, src))
			if err != nil && !errors.Is(err, maplayer.ErrNotFound) {
				errs = append(errs, err)
			}
		}
	}
	for _, src := range Sources() {
		err := host.RemoveSource(src)
		if err != nil && !errors.Is(err, maplayer.ErrNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// publish pushes the current shapes into the host sources. The shape being
// dragged goes to the hot source together with its vertices.
func (d *Draw) publish() {
	d.mu.Lock()
	host := d.host
	if host == nil {
		d.mu.Unlock()
		return
	}
	cold := geojson.NewFeatureCollection()
	hot := geojson.NewFeatureCollection()
	for _, f := range d.features {
		nf := cloneFeature(f)
		nf.Properties[propertyMeta] = metaFeature
		nf.Properties[propertyMode] = string(d.mode)
		if featureID(f) != d.dragging {
			nf.Properties[propertyActive] = "false"
			cold.Append(nf)
			continue
		}
		nf.Properties[propertyActive] = "true"
		hot.Append(nf)
		for _, v := range vertices(f.Geometry) {
			vf := geojson.NewFeature(v)
			vf.Properties[propertyMeta] = metaVertex
			vf.Properties[propertyMode] = string(d.mode)
			vf.Properties["parent"] = featureID(f)
			hot.Append(vf)
		}
	}
	d.mu.Unlock()

	if s, ok := host.GetSource(SourceCold); ok {
		s.SetData(cold)
	}
	if s, ok := host.GetSource(SourceHot); ok {
		s.SetData(hot)
	}
}

func vertices(g orb.Geometry) []orb.Point {
	switch g := g.(type) {
	case orb.LineString:
		return append([]orb.Point(nil), g...)
	case orb.Polygon:
		if len(g) == 0 || len(g[0]) == 0 {
			return nil
		}
		ring := g[0]
		return append([]orb.Point(nil), ring[:len(ring)-1]...)
	}
	return nil
}
