package viewer

import (
	"math"

	"github.com/paulmach/orb"
)

// Camera maps longitude/latitude to screen pixels with an equirectangular
// projection. Longitudes are scaled by the cosine of the center latitude so
// shapes near the view center keep their proportions.
type Camera struct {
	Center orb.Point
	Scale  float64 // pixels per degree of latitude
}

// minScale keeps degenerate bounds (a single point) visible
const minScale = 1e-3

// NewCamera creates a camera showing the whole bound inside a width x
// height viewport with padding pixels on every side
func NewCamera(bound orb.Bound, width, height, padding float64) *Camera {
	c := &Camera{Center: bound.Center()}
	c.Fit(bound, width, height, padding)
	return c
}

// Fit centers the bound and chooses the largest scale that shows it fully
func (c *Camera) Fit(bound orb.Bound, width, height, padding float64) {
	c.Center = bound.Center()

	w := (bound.Max.Lon() - bound.Min.Lon()) * c.lonFactor()
	h := bound.Max.Lat() - bound.Min.Lat()
	availW := math.Max(1, width-2*padding)
	availH := math.Max(1, height-2*padding)

	switch {
	case w <= 0 && h <= 0:
		// a single point: show roughly one kilometer around it
		c.Scale = math.Min(availW, availH) / 0.01
	case w <= 0:
		c.Scale = availH / h
	case h <= 0:
		c.Scale = availW / w
	default:
		c.Scale = math.Min(availW/w, availH/h)
	}
	c.Scale = math.Max(c.Scale, minScale)
}

func (c *Camera) lonFactor() float64 {
	return math.Max(math.Cos(c.Center.Lat()*math.Pi/180), 1e-6)
}

// Project converts a position to screen coordinates, y pointing down
func (c *Camera) Project(p orb.Point, width, height float64) (float64, float64) {
	x := (p.Lon()-c.Center.Lon())*c.lonFactor()*c.Scale + width/2
	y := -(p.Lat()-c.Center.Lat())*c.Scale + height/2
	return x, y
}

// Unproject converts screen coordinates back to a position
func (c *Camera) Unproject(x, y, width, height float64) orb.Point {
	lon := (x-width/2)/(c.Scale*c.lonFactor()) + c.Center.Lon()
	lat := -(y-height/2)/c.Scale + c.Center.Lat()
	return orb.Point{lon, lat}
}

// Zoom scales the view by (1 + delta)
func (c *Camera) Zoom(delta float64) {
	c.Scale *= 1.0 + delta
	if c.Scale < minScale {
		c.Scale = minScale
	}
}

// Pan moves the view by a screen offset in pixels
func (c *Camera) Pan(dx, dy float64) {
	c.Center = orb.Point{
		c.Center.Lon() - dx/(c.Scale*c.lonFactor()),
		c.Center.Lat() + dy/c.Scale,
	}
}
