package orbit

import "math"

const (
	DefaultMaxIterations = 30
	DefaultTolerance     = 1e-10 // rad
)

// SolveKepler finds the eccentric anomaly E with M = E - e·sin(E) by
// Newton-Raphson. It never runs more than maxIter iterations. When it fails
// to converge it returns M itself and ok == false.
func SolveKepler(m, e float64, maxIter int, tol float64) (ecc float64, iters int, ok bool) {
	ecc = m
	if e > 0.8 {
		// Seeding at π keeps Newton from overshooting near periapsis on
		// highly eccentric orbits.
		ecc = math.Pi
	}

	for iters = 0; iters <= maxIter; iters++ {
		f := ecc - e*math.Sin(ecc) - m
		if math.Abs(f) <= tol {
			return ecc, iters, true
		}
		if iters == maxIter {
			break
		}
		ecc -= f / (1 - e*math.Cos(ecc))
		if math.IsNaN(ecc) || math.IsInf(ecc, 0) {
			break
		}
	}
	return m, iters, false
}

// TrueAnomaly converts eccentric anomaly to true anomaly.
func TrueAnomaly(ecc, e float64) float64 {
	sinE, cosE := math.Sincos(ecc / 2)
	return 2 * math.Atan2(math.Sqrt(1+e)*sinE, math.Sqrt(1-e)*cosE)
}
