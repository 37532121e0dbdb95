package analysis

import (
	"github.com/san-kum/orbsim/internal/vmath"
)

// Projection is a body's track in the ecliptic plane relative to a reference.
type Projection struct {
	X, Y     []float64
	Distance []float64
}

// Project subtracts ref from pos point by point and drops the z axis.
// Both tracks must be sampled at the same instants; extra points are
// ignored.
func Project(pos, ref []vmath.Vec3) *Projection {
	n := min(len(pos), len(ref))
	p := &Projection{
		X:        make([]float64, n),
		Y:        make([]float64, n),
		Distance: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		d := pos[i].Sub(ref[i])
		p.X[i] = d.X
		p.Y[i] = d.Y
		p.Distance[i] = d.Len()
	}
	return p
}

// Scaled returns a copy of p with every coordinate divided by unit.
func (p *Projection) Scaled(unit float64) *Projection {
	out := &Projection{
		X:        make([]float64, len(p.X)),
		Y:        make([]float64, len(p.Y)),
		Distance: make([]float64, len(p.Distance)),
	}
	for i := range p.X {
		out.X[i] = p.X[i] / unit
		out.Y[i] = p.Y[i] / unit
		out.Distance[i] = p.Distance[i] / unit
	}
	return out
}
