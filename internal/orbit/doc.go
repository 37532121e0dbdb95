// Package orbit converts between classical orbital elements and Cartesian
// state vectors for closed two-body orbits.
//
// Elements are seeded once per body at scene construction; the N-body
// integrator takes over from the resulting state vector. All computation is
// float64: planetary separations reach 1e13 m, far past what a float32
// mantissa resolves.
//
// Angles are radians, lengths metres, periods seconds. Positions are
// relative to the reference body, in the frame the elements are referred to
// (nominally J2000 ecliptic).
package orbit
