// Package astro holds physical constants and the Julian date type the
// simulation uses as its epoch unit.
package astro

// SI units throughout: metres, seconds, kilograms.
const (
	G             = 6.67430e-11    // m³ kg⁻¹ s⁻²
	AU            = 1.495978707e11 // m
	SecondsPerDay = 86400.0
	DaysPerYear   = 365.25
	J2000         = JulianDate(2451545.0) // 2000-01-01 12:00 TT

	SolarMass = 1.98847e30 // kg
	EarthMass = 5.9722e24  // kg
)

// Days converts a duration in days to seconds.
func Days(d float64) float64 {
	return d * SecondsPerDay
}
