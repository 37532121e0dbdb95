package orbit

import (
	"math"

	"github.com/san-kum/orbsim/internal/astro"
	"github.com/san-kum/orbsim/internal/ecs"
	"github.com/san-kum/orbsim/internal/vmath"
)

// Elements holds the six classical orbital elements at an epoch, plus the
// body they are referred to.
type Elements struct {
	Reference                ecs.Entity
	Epoch                    astro.JulianDate
	SemiMajorAxis            float64 // m
	Eccentricity             float64 // [0, 1)
	Inclination              float64 // rad
	LongitudeOfAscendingNode float64 // rad
	ArgumentOfPeriapsis      float64 // rad
	MeanAnomaly              float64 // rad, at Epoch
	SiderealPeriod           float64 // s
}

// Validate rejects elements that do not describe a closed orbit. Values are
// never clamped.
func (el Elements) Validate() error {
	switch {
	case !finite(el.SemiMajorAxis) || el.SemiMajorAxis <= 0:
		return invalid("semi_major_axis", el.SemiMajorAxis, "must be positive and finite")
	case !finite(el.Eccentricity) || el.Eccentricity < 0 || el.Eccentricity >= 1:
		return invalid("eccentricity", el.Eccentricity, "must be in [0, 1); open orbits are not supported")
	case !finite(el.SiderealPeriod) || el.SiderealPeriod <= 0:
		return invalid("sidereal_period", el.SiderealPeriod, "must be positive and finite")
	case !finite(el.Inclination):
		return invalid("inclination", el.Inclination, "must be finite")
	case !finite(el.LongitudeOfAscendingNode):
		return invalid("longitude_of_ascending_node", el.LongitudeOfAscendingNode, "must be finite")
	case !finite(el.ArgumentOfPeriapsis):
		return invalid("argument_of_periapsis", el.ArgumentOfPeriapsis, "must be finite")
	case !finite(el.MeanAnomaly):
		return invalid("mean_anomaly", el.MeanAnomaly, "must be finite")
	case !finite(float64(el.Epoch)):
		return invalid("epoch", float64(el.Epoch), "must be finite")
	}
	return nil
}

func invalid(field string, v float64, reason string) error {
	return &ElementsError{Field: field, Value: v, Reason: reason, Wrapped: ErrInvalidElements}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// StateVector is a position and velocity at an epoch in an inertial frame.
type StateVector struct {
	Epoch    astro.JulianDate
	Position vmath.Vec3 // m
	Velocity vmath.Vec3 // m/s
}

func (s StateVector) IsFinite() bool {
	return s.Position.IsFinite() && s.Velocity.IsFinite()
}

// Offset returns s shifted by the reference state o. A state relative to a
// reference body becomes inertial once offset by that body's state.
func (s StateVector) Offset(o StateVector) StateVector {
	return StateVector{
		Epoch:    s.Epoch,
		Position: s.Position.Add(o.Position),
		Velocity: s.Velocity.Add(o.Velocity),
	}
}

// Period returns the two-body orbital period for semi-major axis a and
// gravitational parameter mu.
func Period(a, mu float64) float64 {
	return 2 * math.Pi * math.Sqrt(a*a*a/mu)
}

// VisViva returns orbital speed at distance r on an orbit with semi-major axis a.
func VisViva(r, a, mu float64) float64 {
	return math.Sqrt(mu * (2/r - 1/a))
}

// NormalizeAngle wraps an angle into [0, 2π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
