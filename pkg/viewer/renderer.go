package viewer

import (
	"fmt"
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/philipparndt/gomeasure/pkg/draw"
	"github.com/philipparndt/gomeasure/pkg/maplayer"
)

// pick radius for vertices, in pixels
const pickRadius = 10

// MapView shows a host map and lets the user draw and edit shapes
type MapView struct {
	widget.BaseWidget
	host    *maplayer.Map
	draw    *draw.Draw
	camera  *Camera
	image   *canvas.Image
	pending orb.LineString
	width   float64
	height  float64
	onError func(error)

	dragStart   *fyne.Position
	dragFeature string
	dragIndex   int
	panning     bool

	off func()
}

// NewMapView creates a map widget for host drawing into d
func NewMapView(host *maplayer.Map, d *draw.Draw) *MapView {
	v := &MapView{
		host:  host,
		draw:  d,
		image: canvas.NewImageFromImage(nil),
	}
	v.image.FillMode = canvas.ImageFillStretch
	v.off = host.OnSourceData(func(string, *geojson.FeatureCollection) {
		fyne.Do(v.Refresh)
	})
	v.ExtendBaseWidget(v)
	return v
}

// SetOnError sets the callback for failed drawing operations
func (v *MapView) SetOnError(callback func(error)) {
	v.onError = callback
}

// FitToFeatures moves the camera so every shape is visible
func (v *MapView) FitToFeatures() {
	v.camera = nil
	v.Refresh()
}

// Close stops observing the host
func (v *MapView) Close() {
	if v.off != nil {
		v.off()
		v.off = nil
	}
}

// CreateRenderer creates the renderer for the widget
func (v *MapView) CreateRenderer() fyne.WidgetRenderer {
	return &mapViewRenderer{view: v}
}

// Render redraws the map into the widget image
func (v *MapView) Render(width, height float64) {
	v.width = width
	v.height = height
	if width < 1 || height < 1 {
		return
	}

	if v.camera == nil {
		bound, ok := Bound(v.host)
		if !ok {
			bound = orb.Bound{Min: orb.Point{-180, -80}, Max: orb.Point{180, 80}}
		}
		v.camera = NewCamera(bound, width, height, 40)
	}

	opts := DefaultOptions()
	opts.Width = int(width)
	opts.Height = int(height)
	opts.Camera = v.camera
	img, err := Render(v.host, opts)
	if err != nil {
		v.fail(err)
		return
	}

	// shape in progress
	col, _ := ParseHexColor(draw.DefaultColor)
	for i := 0; i+1 < len(v.pending); i++ {
		x1, y1 := v.camera.Project(v.pending[i], width, height)
		x2, y2 := v.camera.Project(v.pending[i+1], width, height)
		drawLine(img, round(x1), round(y1), round(x2), round(y2), draw.DefaultActiveLineWidth, col)
	}
	for _, p := range v.pending {
		x, y := v.camera.Project(p, width, height)
		fillCircle(img, round(x), round(y), int(draw.DefaultMidPointRadius), color.RGBA{R: 0xfb, G: 0xb0, B: 0x3b, A: 255})
	}

	v.image.Image = img
	canvas.Refresh(v.image)
}

// Tapped adds a vertex to the shape being drawn
func (v *MapView) Tapped(event *fyne.PointEvent) {
	if v.camera == nil {
		return
	}
	switch v.draw.Mode() {
	case draw.ModeDrawLineString, draw.ModeDrawPolygon:
		p := v.camera.Unproject(float64(event.Position.X), float64(event.Position.Y), v.width, v.height)
		v.pending = append(v.pending, p)
		v.Refresh()
	}
}

// DoubleTapped finishes the shape being drawn
func (v *MapView) DoubleTapped(*fyne.PointEvent) {
	v.Finish()
}

// Finish adds the shape being drawn to the drawing and returns to
// simple_select. Shapes with too few vertices are discarded.
func (v *MapView) Finish() {
	pending := v.pending
	v.pending = nil

	var g orb.Geometry
	switch v.draw.Mode() {
	case draw.ModeDrawLineString:
		if len(pending) >= 2 {
			g = pending
		}
	case draw.ModeDrawPolygon:
		if len(pending) >= 3 {
			ring := append(orb.Ring(pending), pending[0])
			g = orb.Polygon{ring}
		}
	default:
		return
	}

	if g != nil {
		if _, err := v.draw.Add(g); err != nil {
			v.fail(err)
		}
	}
	if err := v.draw.ChangeMode(draw.ModeSimpleSelect); err != nil {
		v.fail(err)
	}
	v.Refresh()
}

// Dragged moves the vertex under the pointer or pans the map
func (v *MapView) Dragged(event *fyne.DragEvent) {
	if v.camera == nil {
		return
	}
	if v.dragStart == nil {
		v.dragStart = &event.Position
		v.dragFeature, v.dragIndex = v.findNearestVertex(float64(event.Position.X), float64(event.Position.Y))
		v.panning = v.dragFeature == ""
	}

	if v.panning {
		v.camera.Pan(float64(event.Dragged.DX), float64(event.Dragged.DY))
		v.Refresh()
		return
	}

	p := v.camera.Unproject(float64(event.Position.X), float64(event.Position.Y), v.width, v.height)
	if err := v.draw.DragVertex(v.dragFeature, v.dragIndex, p); err != nil {
		v.fail(err)
	}
}

// DragEnd handles the end of a drag event
func (v *MapView) DragEnd() {
	if !v.panning && v.dragFeature != "" {
		if err := v.draw.FinishDrag(v.dragFeature); err != nil {
			v.fail(err)
		}
	}
	v.dragStart = nil
	v.dragFeature = ""
	v.panning = false
}

// Scrolled handles scroll events for zooming
func (v *MapView) Scrolled(event *fyne.ScrollEvent) {
	if v.camera == nil {
		return
	}
	v.camera.Zoom(float64(event.Scrolled.DY) * 0.01)
	v.Refresh()
}

// findNearestVertex finds the vertex closest to screen coordinates within
// the pick radius
func (v *MapView) findNearestVertex(screenX, screenY float64) (string, int) {
	id, index := "", -1
	minDist := float64(pickRadius)

	for _, f := range v.draw.GetAll().Features {
		for i, p := range vertices(f.Geometry) {
			x, y := v.camera.Project(p, v.width, v.height)
			dist := math.Hypot(x-screenX, y-screenY)
			if dist < minDist {
				minDist = dist
				id, index = fmt.Sprint(f.ID), i
			}
		}
	}
	return id, index
}

func (v *MapView) fail(err error) {
	if v.onError != nil {
		v.onError(err)
	}
}

func vertices(g orb.Geometry) []orb.Point {
	switch g := g.(type) {
	case orb.LineString:
		return g
	case orb.Polygon:
		if len(g) == 0 || len(g[0]) == 0 {
			return nil
		}
		return g[0][:len(g[0])-1]
	}
	return nil
}

// mapViewRenderer implements fyne.WidgetRenderer
type mapViewRenderer struct {
	view *MapView
}

func (m *mapViewRenderer) Layout(size fyne.Size) {
	m.view.image.Resize(size)
	m.view.Render(float64(size.Width), float64(size.Height))
}

func (m *mapViewRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 400)
}

func (m *mapViewRenderer) Refresh() {
	m.view.Render(m.view.width, m.view.height)
}

func (m *mapViewRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{m.view.image}
}

func (m *mapViewRenderer) Destroy() {
	m.view.Close()
}
