package physics

import (
	"math"

	"github.com/san-kum/orbsim/internal/component"
	"github.com/san-kum/orbsim/internal/vmath"
)

// Energy returns total kinetic plus gravitational potential energy in J.
// Pairs closer than Epsilon contribute no potential, matching Step.
func (nb *NBody) Energy(bodies []*component.PhysicsBody) float64 {
	ke, pe := 0.0, 0.0
	for i, bi := range bodies {
		ke += 0.5 * bi.Mass * bi.Velocity.LenSq()
		for _, bj := range bodies[i+1:] {
			r2 := bj.Position.Sub(bi.Position).LenSq()
			if r2 < nb.Epsilon {
				continue
			}
			pe -= nb.G * bi.Mass * bj.Mass / math.Sqrt(r2)
		}
	}
	return ke + pe
}

// Momentum returns total linear momentum in kg·m/s.
func Momentum(bodies []*component.PhysicsBody) vmath.Vec3 {
	var p vmath.Vec3
	for _, b := range bodies {
		p = p.Add(b.Velocity.Scale(b.Mass))
	}
	return p
}

// AngularMomentum returns total angular momentum about the origin.
func AngularMomentum(bodies []*component.PhysicsBody) vmath.Vec3 {
	var l vmath.Vec3
	for _, b := range bodies {
		l = l.Add(b.Position.Cross(b.Velocity).Scale(b.Mass))
	}
	return l
}

// CenterOfMass returns the mass-weighted mean position and velocity. It
// returns zero vectors when the total mass is zero.
func CenterOfMass(bodies []*component.PhysicsBody) (pos, vel vmath.Vec3) {
	total := 0.0
	for _, b := range bodies {
		total += b.Mass
		pos = pos.Add(b.Position.Scale(b.Mass))
		vel = vel.Add(b.Velocity.Scale(b.Mass))
	}
	if total == 0 {
		return vmath.Vec3{}, vmath.Vec3{}
	}
	return pos.Scale(1 / total), vel.Scale(1 / total)
}
