// Package component defines the plain data components attached to entities.
// Components carry no behaviour beyond small accessors; systems in
// internal/physics and internal/sim operate on them.
package component

import (
	"math"

	"github.com/san-kum/orbsim/internal/astro"
	"github.com/san-kum/orbsim/internal/ecs"
	"github.com/san-kum/orbsim/internal/vmath"
)

// PhysicsBody is the integrated state of a body. A body with zero mass is a
// test particle: it is accelerated by others but exerts no force.
type PhysicsBody struct {
	Mass     float64 // kg
	Position vmath.Vec3
	Velocity vmath.Vec3
	Force    vmath.Vec3 // net force from the last step, N

	// Frozen bodies are skipped by the integrator. It is set when a step
	// produced a non-finite state.
	Frozen bool
}

func (b *PhysicsBody) IsTestParticle() bool { return b.Mass == 0 }

// Transform holds the local and world matrices of an entity. Entities with a
// non-nil Parent are positioned relative to it and are not integrated.
type Transform struct {
	Local  vmath.Mat4
	World  vmath.Mat4
	Parent ecs.Entity
}

func NewTransform() Transform {
	return Transform{Local: vmath.Identity(), World: vmath.Identity()}
}

// Spin is a fixed rotation about Axis with a constant sidereal Period.
type Spin struct {
	Axis   vmath.Vec3
	Period float64 // s; zero means no rotation
	Epoch  astro.JulianDate
	Phase  float64 // rad at Epoch
}

// Angle returns the rotation angle at t. A Julian date near the present only
// resolves to tens of microseconds; use AngleAt when the seconds since Epoch
// are known.
func (s Spin) Angle(t astro.JulianDate) float64 {
	return s.AngleAt(t.SecondsSince(s.Epoch))
}

// AngleAt returns the rotation angle sec seconds after Epoch.
func (s Spin) AngleAt(sec float64) float64 {
	if s.Period == 0 {
		return s.Phase
	}
	return math.Mod(s.Phase+2*math.Pi*sec/s.Period, 2*math.Pi)
}

// Rotation returns the spin rotation matrix at t.
func (s Spin) Rotation(t astro.JulianDate) vmath.Mat4 {
	return vmath.Rotation(s.Axis, s.Angle(t))
}

// RotationAt returns the spin rotation matrix sec seconds after Epoch.
func (s Spin) RotationAt(sec float64) vmath.Mat4 {
	return vmath.Rotation(s.Axis, s.AngleAt(sec))
}

// Metadata describes a body for display and export.
type Metadata struct {
	Name   string
	Kind   BodyKind
	Radius float64 // m
	Visual string
}

// Light marks an emitting body.
type Light struct {
	Intensity float64
	Color     [3]float64
}
