// Package viewer rasterizes the sources and style layers of a host map and
// provides an interactive map widget for drawing measurements.
package viewer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/philipparndt/gomeasure/pkg/maplayer"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Options controls a snapshot
type Options struct {
	Width      int
	Height     int
	Padding    float64
	Background color.Color
	// Camera is used as is when set, otherwise the view fits every feature
	Camera *Camera
}

// DefaultOptions returns an 800x600 white snapshot
func DefaultOptions() Options {
	return Options{
		Width:      800,
		Height:     600,
		Padding:    40,
		Background: color.White,
	}
}

// maximum halo drawn around label text, in pixels
const maxHalo = 2

// Render draws every layer of host, bottom first, into a new image
func Render(host maplayer.Renderer, opts Options) (*image.RGBA, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", opts.Width, opts.Height)
	}
	if opts.Background == nil {
		opts.Background = color.White
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	camera := opts.Camera
	if camera == nil {
		bound, ok := Bound(host)
		if !ok {
			return img, nil
		}
		camera = NewCamera(bound, float64(opts.Width), float64(opts.Height), opts.Padding)
	}

	r := &rasterizer{
		img:    img,
		camera: camera,
		width:  float64(opts.Width),
		height: float64(opts.Height),
	}
	for _, layer := range host.Layers() {
		src, ok := host.GetSource(layer.Source)
		if !ok {
			continue
		}
		if err := r.layer(layer, src.Data()); err != nil {
			return nil, fmt.Errorf("layer %s: %w", layer.ID, err)
		}
	}
	return img, nil
}

// Bound returns the extent of every feature in the host's layer sources
func Bound(host maplayer.Renderer) (orb.Bound, bool) {
	var bound orb.Bound
	found := false
	seen := make(map[string]bool)

	for _, layer := range host.Layers() {
		if seen[layer.Source] {
			continue
		}
		seen[layer.Source] = true

		src, ok := host.GetSource(layer.Source)
		if !ok {
			continue
		}
		for _, f := range src.Data().Features {
			if f == nil || f.Geometry == nil {
				continue
			}
			if !found {
				bound = f.Geometry.Bound()
				found = true
				continue
			}
			bound = bound.Union(f.Geometry.Bound())
		}
	}
	return bound, found
}

// WritePNG encodes img as PNG
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// SavePNG writes img to a PNG file
func SavePNG(filename string, img image.Image) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WritePNG(file, img); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

type rasterizer struct {
	img    *image.RGBA
	camera *Camera
	width  float64
	height float64
}

func (r *rasterizer) project(p orb.Point) (float64, float64) {
	return r.camera.Project(p, r.width, r.height)
}

func (r *rasterizer) layer(layer maplayer.Layer, fc *geojson.FeatureCollection) error {
	if fc == nil {
		return nil
	}
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil || !Matches(layer.Filter, f) {
			continue
		}

		var err error
		switch layer.Type {
		case maplayer.LayerLine:
			err = r.line(layer.Paint, f.Geometry)
		case maplayer.LayerFill:
			err = r.fill(layer.Paint, f.Geometry)
		case maplayer.LayerCircle:
			err = r.circle(layer.Paint, f.Geometry)
		case maplayer.LayerSymbol:
			err = r.symbol(layer, f)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *rasterizer) line(paint map[string]any, g orb.Geometry) error {
	col, err := paintColor(paint, "line-color", color.RGBA{A: 255})
	if err != nil {
		return err
	}
	width := paintNumber(paint, "line-width", 1)

	switch g := g.(type) {
	case orb.LineString:
		r.polyline(g, width, col)
	case orb.Polygon:
		for _, ring := range g {
			r.polyline(orb.LineString(ring), width, col)
		}
	}
	return nil
}

func (r *rasterizer) polyline(ls orb.LineString, width float64, col color.RGBA) {
	for i := 0; i+1 < len(ls); i++ {
		x1, y1 := r.project(ls[i])
		x2, y2 := r.project(ls[i+1])
		drawLine(r.img, round(x1), round(y1), round(x2), round(y2), width, col)
	}
}

func (r *rasterizer) fill(paint map[string]any, g orb.Geometry) error {
	poly, ok := g.(orb.Polygon)
	if !ok {
		return nil
	}
	col, err := paintColor(paint, "fill-color", color.RGBA{A: 255})
	if err != nil {
		return err
	}
	outline, err := paintColor(paint, "fill-outline-color", col)
	if err != nil {
		return err
	}
	opacity := math.Min(1, math.Max(0, paintNumber(paint, "fill-opacity", 1)))

	rings := make([][][2]float64, 0, len(poly))
	for _, ring := range poly {
		pts := make([][2]float64, len(ring))
		for i, p := range ring {
			x, y := r.project(p)
			pts[i] = [2]float64{x, y}
		}
		rings = append(rings, pts)
	}
	fillPolygon(r.img, rings, col, opacity)

	for _, ring := range poly {
		r.polyline(orb.LineString(ring), 1, outline)
	}
	return nil
}

func (r *rasterizer) circle(paint map[string]any, g orb.Geometry) error {
	p, ok := g.(orb.Point)
	if !ok {
		return nil
	}
	col, err := paintColor(paint, "circle-color", color.RGBA{A: 255})
	if err != nil {
		return err
	}
	radius := paintNumber(paint, "circle-radius", 5)

	x, y := r.project(p)
	fillCircle(r.img, round(x), round(y), round(radius), col)
	return nil
}

func (r *rasterizer) symbol(layer maplayer.Layer, f *geojson.Feature) error {
	p, ok := f.Geometry.(orb.Point)
	if !ok {
		return nil
	}
	text := textField(layer.Layout, f)
	if text == "" {
		return nil
	}
	col, err := paintColor(layer.Paint, "text-color", color.RGBA{A: 255})
	if err != nil {
		return err
	}
	halo, err := paintColor(layer.Paint, "text-halo-color", color.RGBA{R: 255, G: 255, B: 255, A: 255})
	if err != nil {
		return err
	}
	haloWidth := int(math.Min(maxHalo, paintNumber(layer.Paint, "text-halo-width", 0)))

	x, y := r.project(p)
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Round()
	metrics := face.Metrics()
	// center the text box on the anchor
	baseline := round(y) + (metrics.Ascent.Round()-metrics.Descent.Round())/2
	left := round(x) - width/2

	d := &font.Drawer{Dst: r.img, Face: face}
	if haloWidth > 0 {
		d.Src = image.NewUniform(halo)
		for dy := -haloWidth; dy <= haloWidth; dy++ {
			for dx := -haloWidth; dx <= haloWidth; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				d.Dot = fixed.P(left+dx, baseline+dy)
				d.DrawString(text)
			}
		}
	}
	d.Src = image.NewUniform(col)
	d.Dot = fixed.P(left, baseline)
	d.DrawString(text)
	return nil
}

// textField evaluates a ["get", property] text field against f
func textField(layout map[string]any, f *geojson.Feature) string {
	switch field := layout["text-field"].(type) {
	case string:
		return field
	case []any:
		if len(field) == 2 && field[0] == "get" {
			if key, ok := field[1].(string); ok {
				return f.Properties.MustString(key, "")
			}
		}
	}
	return ""
}

func paintColor(paint map[string]any, key string, def color.RGBA) (color.RGBA, error) {
	v, ok := paint[key].(string)
	if !ok || v == "" {
		return def, nil
	}
	return ParseHexColor(v)
}

func paintNumber(paint map[string]any, key string, def float64) float64 {
	switch v := paint[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

func round(v float64) int {
	return int(math.Round(v))
}
