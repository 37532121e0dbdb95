package analysis

import (
	"errors"
	"math"
)

var ErrTooShort = errors.New("analysis: series too short")

// DominantPeriod estimates the strongest periodic component of a uniformly
// sampled series, refining the spectral peak by parabolic interpolation.
// dt is the sample spacing; the result has the same unit.
func DominantPeriod(series []float64, dt float64) (float64, error) {
	if len(series) < 8 || dt <= 0 {
		return 0, ErrTooShort
	}
	ps := PowerSpectrum(series)
	n := len(series)

	peak := 0
	for k := 1; k < len(ps); k++ {
		if ps[k] > ps[peak] || peak == 0 {
			peak = k
		}
	}
	if peak == 0 || ps[peak] == 0 {
		return 0, ErrTooShort
	}

	k := float64(peak)
	if peak > 1 && peak < len(ps)-1 {
		a, b, c := ps[peak-1], ps[peak], ps[peak+1]
		if d := a - 2*b + c; d != 0 {
			k += 0.5 * (a - c) / d
		}
	}
	return float64(n) * dt / k, nil
}

// Apsides returns the smallest and largest value of distances.
func Apsides(distances []float64) (peri, apo float64) {
	peri, apo = math.Inf(1), math.Inf(-1)
	for _, d := range distances {
		peri = math.Min(peri, d)
		apo = math.Max(apo, d)
	}
	return peri, apo
}

// Uniform reports whether times are evenly spaced to within tol of the
// first interval, returning that interval.
func Uniform(times []float64, tol float64) (float64, bool) {
	if len(times) < 2 {
		return 0, false
	}
	dt := times[1] - times[0]
	for i := 2; i < len(times); i++ {
		if math.Abs(times[i]-times[i-1]-dt) > tol*math.Abs(dt) {
			return dt, false
		}
	}
	return dt, dt > 0
}
