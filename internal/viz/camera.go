package viz

import (
	"math"

	"github.com/san-kum/orbsim/internal/vmath"
)

// Camera looks down the ecliptic z axis at Center. Yaw spins the view about
// z, Tilt then leans it about the screen x axis. Span is the distance in
// metres from the centre to the nearest canvas edge at Zoom 1.
type Camera struct {
	Center    vmath.Vec3
	Span      float64
	Zoom      float64
	Yaw, Tilt float64
}

func NewCamera(span float64) *Camera {
	if span <= 0 {
		span = 1
	}
	return &Camera{Span: span, Zoom: 1}
}

func (c *Camera) Rotate(yaw, tilt float64) {
	c.Yaw += yaw
	c.Tilt = math.Max(-math.Pi/2, math.Min(math.Pi/2, c.Tilt+tilt))
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(1e4, c.Zoom*1.25) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(1e-3, c.Zoom/1.25) }

// Fit sets Span so every point lies inside the view at Zoom 1.
func (c *Camera) Fit(points []vmath.Vec3) {
	far := 0.0
	for _, p := range points {
		if d := p.Sub(c.Center).Len(); d > far && !math.IsInf(d, 0) && !math.IsNaN(d) {
			far = d
		}
	}
	if far > 0 {
		c.Span = far * 1.1
	}
}

// Project maps a world position to dot coordinates on a w x h dot canvas.
// ok is false when the point falls outside it.
func (c *Camera) Project(p vmath.Vec3, w, h int) (x, y int, ok bool) {
	rel := p.Sub(c.Center)
	cy, sy := math.Cos(c.Yaw), math.Sin(c.Yaw)
	rx, ry := rel.X*cy-rel.Y*sy, rel.X*sy+rel.Y*cy
	ct, st := math.Cos(c.Tilt), math.Sin(c.Tilt)
	ry = ry*ct - rel.Z*st

	scale := float64(min(w, h)) / 2 / c.Span * c.Zoom
	fx := float64(w)/2 + rx*scale
	fy := float64(h)/2 - ry*scale
	if math.IsNaN(fx) || math.IsNaN(fy) {
		return 0, 0, false
	}
	x, y = int(math.Floor(fx)), int(math.Floor(fy))
	return x, y, x >= 0 && x < w && y >= 0 && y < h
}
