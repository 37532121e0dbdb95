package orbit

import (
	"log/slog"
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/san-kum/orbsim/internal/astro"
	"github.com/san-kum/orbsim/internal/vmath"
)

// Solution is the result of an elements-to-state conversion.
type Solution struct {
	State            StateVector
	MeanAnomaly      float64 // at the requested epoch
	EccentricAnomaly float64
	TrueAnomaly      float64
	Iterations       int
	// Approximate is set when Kepler's equation did not converge and the
	// mean anomaly was used in place of the eccentric anomaly.
	Approximate bool
}

// Converter turns orbital elements into state vectors and back.
type Converter struct {
	G             float64
	MaxIterations int
	Tolerance     float64

	logger *slog.Logger
	warn   *rate.Sometimes
}

type Option func(*Converter)

func WithGravitationalConstant(g float64) Option {
	return func(c *Converter) { c.G = g }
}

func WithKepler(maxIter int, tol float64) Option {
	return func(c *Converter) {
		c.MaxIterations = maxIter
		c.Tolerance = tol
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		G:             astro.G,
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
		logger:        slog.Default(),
		warn:          &rate.Sometimes{First: 5, Interval: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ElementsToState converts el to a state vector relative to its reference
// body at epoch, with μ = G·referenceMass. The mean anomaly is advanced from
// el.Epoch using the sidereal period.
func (c *Converter) ElementsToState(el Elements, referenceMass float64, epoch astro.JulianDate) (Solution, error) {
	if err := el.Validate(); err != nil {
		return Solution{}, err
	}
	if !finite(referenceMass) || referenceMass <= 0 {
		return Solution{}, invalid("reference_mass", referenceMass, "must be positive and finite")
	}
	if !finite(float64(epoch)) {
		return Solution{}, invalid("epoch", float64(epoch), "requested epoch must be finite")
	}

	mu := c.G * referenceMass
	a, e := el.SemiMajorAxis, el.Eccentricity

	m := el.MeanAnomaly
	if epoch != el.Epoch {
		n := 2 * math.Pi / el.SiderealPeriod
		m += n * epoch.SecondsSince(el.Epoch)
	}
	m = NormalizeAngle(m)

	ecc, iters, ok := SolveKepler(m, e, c.MaxIterations, c.Tolerance)
	if !ok {
		c.warn.Do(func() {
			c.logger.Warn("kepler solver did not converge, using mean anomaly",
				"eccentricity", e,
				"mean_anomaly", m,
				"iterations", iters,
			)
		})
	}

	sinE, cosE := math.Sincos(ecc)
	b := math.Sqrt(1 - e*e)
	r := a * (1 - e*cosE)

	// Perifocal frame: x towards periapsis, z along angular momentum.
	px := a * (cosE - e)
	py := a * b * sinE
	k := math.Sqrt(mu*a) / r
	vx := -k * sinE
	vy := k * b * cosE

	p, q := perifocalBasis(el.ArgumentOfPeriapsis, el.Inclination, el.LongitudeOfAscendingNode)

	return Solution{
		State: StateVector{
			Epoch:    epoch,
			Position: p.Scale(px).Add(q.Scale(py)),
			Velocity: p.Scale(vx).Add(q.Scale(vy)),
		},
		MeanAnomaly:      m,
		EccentricAnomaly: ecc,
		TrueAnomaly:      TrueAnomaly(ecc, e),
		Iterations:       iters,
		Approximate:      !ok,
	}, nil
}

// perifocalBasis returns the inertial directions of the perifocal x and y
// axes under the 3-1-3 rotation Rz(Ω)·Rx(i)·Rz(ω).
func perifocalBasis(w, inc, node float64) (p, q vmath.Vec3) {
	sw, cw := math.Sincos(w)
	si, ci := math.Sincos(inc)
	so, co := math.Sincos(node)

	p = vmath.Vec3{
		X: cw*co - sw*ci*so,
		Y: cw*so + sw*ci*co,
		Z: sw * si,
	}
	q = vmath.Vec3{
		X: -sw*co - cw*ci*so,
		Y: -sw*so + cw*ci*co,
		Z: cw * si,
	}
	return p, q
}

// degenerate thresholds for circular and equatorial orbits
const (
	circularEps   = 1e-11
	equatorialEps = 1e-11
)

// StateToElements recovers elements from a state vector relative to a body
// of referenceMass. It is meant for diagnostics, not the tick loop.
//
// For circular orbits the argument of periapsis is 0 and the mean anomaly
// is measured from the ascending node; for equatorial orbits the node is 0
// and angles are measured from +X.
func (c *Converter) StateToElements(s StateVector, referenceMass float64) (Elements, error) {
	if !finite(referenceMass) || referenceMass <= 0 {
		return Elements{}, invalid("reference_mass", referenceMass, "must be positive and finite")
	}
	if !s.IsFinite() {
		return Elements{}, &ElementsError{Field: "state", Value: math.NaN(), Reason: "non-finite state vector", Wrapped: ErrInvalidElements}
	}
	mu := c.G * referenceMass

	r := s.Position
	v := s.Velocity
	rMag := r.Len()
	if rMag == 0 {
		return Elements{}, &ElementsError{Field: "position", Value: 0, Reason: "zero radius", Wrapped: ErrInvalidElements}
	}

	h := r.Cross(v)
	hMag := h.Len()
	if hMag == 0 {
		return Elements{}, &ElementsError{Field: "angular_momentum", Value: 0, Reason: "radial trajectory", Wrapped: ErrUnboundOrbit}
	}

	energy := v.LenSq()/2 - mu/rMag
	if energy >= 0 {
		return Elements{}, &ElementsError{Field: "specific_energy", Value: energy, Reason: "parabolic or hyperbolic", Wrapped: ErrUnboundOrbit}
	}
	a := -mu / (2 * energy)

	eVec := r.Scale(v.LenSq() - mu/rMag).Sub(v.Scale(r.Dot(v))).Scale(1 / mu)
	e := eVec.Len()
	if e >= 1 {
		return Elements{}, &ElementsError{Field: "eccentricity", Value: e, Reason: "parabolic or hyperbolic", Wrapped: ErrUnboundOrbit}
	}

	inc := math.Acos(clamp(h.Z/hMag, -1, 1))

	// Node vector k × h.
	n := vmath.Vec3{X: -h.Y, Y: h.X}
	nMag := n.Len()
	equatorial := nMag/hMag < equatorialEps
	circular := e < circularEps

	var node, argPeri, nu float64
	switch {
	case !equatorial && !circular:
		node = math.Atan2(n.Y, n.X)
		argPeri = angleBetween(n, eVec, h)
		nu = angleBetween(eVec, r, h)
	case !equatorial && circular:
		node = math.Atan2(n.Y, n.X)
		nu = angleBetween(n, r, h)
	case equatorial && !circular:
		argPeri = math.Atan2(eVec.Y, eVec.X)
		if h.Z < 0 {
			argPeri = -argPeri
		}
		nu = angleBetween(eVec, r, h)
	default:
		nu = math.Atan2(r.Y, r.X)
		if h.Z < 0 {
			nu = -nu
		}
	}

	sinNu, cosNu := math.Sincos(nu)
	ecc := math.Atan2(math.Sqrt(1-e*e)*sinNu, e+cosNu)
	m := ecc - e*math.Sin(ecc)

	return Elements{
		Epoch:                    s.Epoch,
		SemiMajorAxis:            a,
		Eccentricity:             e,
		Inclination:              inc,
		LongitudeOfAscendingNode: NormalizeAngle(node),
		ArgumentOfPeriapsis:      NormalizeAngle(argPeri),
		MeanAnomaly:              NormalizeAngle(m),
		SiderealPeriod:           Period(a, mu),
	}, nil
}

// angleBetween returns the angle from u to w measured about axis, in [0, 2π).
func angleBetween(u, w, axis vmath.Vec3) float64 {
	return NormalizeAngle(math.Atan2(u.Cross(w).Dot(axis.Normalize()), u.Dot(w)))
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

var defaultConverter = NewConverter()

// ElementsToState converts at the elements' own epoch with the default converter.
func ElementsToState(el Elements, referenceMass float64) (Solution, error) {
	return defaultConverter.ElementsToState(el, referenceMass, el.Epoch)
}

// StateToElements inverts with the default converter.
func StateToElements(s StateVector, referenceMass float64) (Elements, error) {
	return defaultConverter.StateToElements(s, referenceMass)
}
