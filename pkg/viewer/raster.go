package viewer

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"
)

// fillPolygon fills the rings of a polygon with the even-odd rule using a
// scanline algorithm. Pixels are blended with the given opacity.
func fillPolygon(img *image.RGBA, rings [][][2]float64, col color.RGBA, opacity float64) {
	bounds := img.Bounds()

	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, ring := range rings {
		for _, p := range ring {
			minY = math.Min(minY, p[1])
			maxY = math.Max(maxY, p[1])
		}
	}
	if math.IsInf(minY, 0) {
		return
	}

	startY := int(math.Max(0, math.Floor(minY)))
	endY := int(math.Min(float64(bounds.Max.Y-1), math.Ceil(maxY)))

	intersections := make([]float64, 0, 8)
	for y := startY; y <= endY; y++ {
		// sample at the pixel center
		fy := float64(y) + 0.5
		intersections = intersections[:0]

		for _, ring := range rings {
			for i := 0; i+1 < len(ring); i++ {
				x1, y1 := ring[i][0], ring[i][1]
				x2, y2 := ring[i+1][0], ring[i+1][1]
				if y1 == y2 {
					continue
				}
				if (fy >= y1 && fy < y2) || (fy >= y2 && fy < y1) {
					t := (fy - y1) / (y2 - y1)
					intersections = append(intersections, x1+t*(x2-x1))
				}
			}
		}
		sort.Float64s(intersections)

		for i := 0; i+1 < len(intersections); i += 2 {
			xStart := int(math.Max(0, math.Ceil(intersections[i]-0.5)))
			xEnd := int(math.Min(float64(bounds.Max.X-1), math.Floor(intersections[i+1]-0.5)))
			for x := xStart; x <= xEnd; x++ {
				blend(img, x, y, col, opacity)
			}
		}
	}
}

// drawLine draws a line on an image using Bresenham's algorithm. Widths
// above one pixel stamp a disc at every step.
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, width float64, col color.RGBA) {
	radius := int(math.Round(width/2)) - 1

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	var sx, sy int
	if x1 < x2 {
		sx = 1
	} else {
		sx = -1
	}
	if y1 < y2 {
		sy = 1
	} else {
		sy = -1
	}

	err := dx - dy

	for {
		if radius > 0 {
			fillCircle(img, x1, y1, radius, col)
		} else {
			setPixel(img, x1, y1, col)
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// fillCircle draws a filled disc
func fillCircle(img *image.RGBA, cx, cy, radius int, col color.RGBA) {
	r2 := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= r2 {
				setPixel(img, cx+x, cy+y, col)
			}
		}
	}
}

func setPixel(img *image.RGBA, x, y int, col color.RGBA) {
	if (image.Point{x, y}).In(img.Bounds()) {
		img.SetRGBA(x, y, col)
	}
}

// blend composites col over the pixel at (x, y)
func blend(img *image.RGBA, x, y int, col color.RGBA, opacity float64) {
	if !(image.Point{x, y}).In(img.Bounds()) {
		return
	}
	dst := img.RGBAAt(x, y)
	mix := func(s, d uint8) uint8 {
		return uint8(math.Round(float64(s)*opacity + float64(d)*(1-opacity)))
	}
	img.SetRGBA(x, y, color.RGBA{
		R: mix(col.R, dst.R),
		G: mix(col.G, dst.G),
		B: mix(col.B, dst.B),
		A: mix(255, dst.A),
	})
}

// ParseHexColor parses #rgb or #rrggbb style colors
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
