// Package analysis post-processes sampled trajectories.
//
//   - [DominantPeriod]: strongest period of a sampled series via [PowerSpectrum]
//   - [Apsides]: closest and farthest approach in a distance series
//   - [Project]: a body's track relative to a reference body
//
// # Orbital Periods
//
// Sampling one coordinate of a body relative to its primary recovers the
// orbital period:
//
//	proj := analysis.Project(earth, sun)
//	period, err := analysis.DominantPeriod(proj.X, sampleSpacing)
package analysis
