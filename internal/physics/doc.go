// Package physics integrates gravitational motion of point masses.
//
// [NBody] evaluates Newtonian gravity directly over every unordered pair of
// bodies and advances them with semi-implicit Euler:
//
//	nb := physics.NewNBody()
//	frozen := nb.Step(bodies, 60) // one simulated minute
//
// Test particles (zero mass) are accelerated but exert no force. Bodies
// whose state becomes non-finite are frozen and reported instead of
// propagating NaN into their neighbours.
//
// # Conservation
//
// [NBody.Energy], [Momentum] and [AngularMomentum] are exposed for drift
// monitoring. Semi-implicit Euler keeps energy error bounded for periodic
// orbits, and angular momentum is preserved up to rounding.
package physics
