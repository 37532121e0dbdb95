package scene

import (
	"math"
	"sort"

	"github.com/san-kum/orbsim/internal/astro"
	"github.com/san-kum/orbsim/internal/component"
	"github.com/san-kum/orbsim/internal/vmath"
)

// Presets are built-in scenes. Planetary elements are the J2000 mean
// elements referred to the ecliptic.
var Presets = map[string]func() Description{
	"sun-earth":          sunEarth,
	"inner-solar-system": innerSolarSystem,
	"binary-star":        binaryStar,
	"test-particles":     testParticles,
}

func GetPreset(name string) (Description, bool) {
	fn, ok := Presets[name]
	if !ok {
		return Description{}, false
	}
	return fn(), true
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// earthAxis is tilted 23.44° from the ecliptic pole.
var earthAxis = vmath.Vec3{Y: -math.Sin(deg(23.44)), Z: math.Cos(deg(23.44))}

func sun() Body {
	return Body{
		Name:       "Sun",
		Kind:       component.KindStar,
		Mass:       astro.SolarMass,
		Radius:     6.957e8,
		Brightness: 3.0e27,
		Visual:     "star",
		Spin:       &Spin{Axis: vmath.Vec3{Z: 1}, PeriodDays: 25.38},
	}
}

func earth() Body {
	return Body{
		Name:   "Earth",
		Kind:   component.KindPlanet,
		Mass:   astro.EarthMass,
		Radius: 6.371e6,
		Visual: "earth",
		Spin:   &Spin{Axis: earthAxis, PeriodDays: 0.99726968},
		Orbit: &Orbit{
			Reference:           "Sun",
			SemiMajorAxis:       1.00000261 * astro.AU,
			Eccentricity:        0.01671123,
			ArgumentOfPeriapsis: 102.93768193,
			MeanAnomaly:         357.52688973,
			PeriodDays:          365.256363,
		},
	}
}

func moon() Body {
	return Body{
		Name:   "Moon",
		Kind:   component.KindSatellite,
		Mass:   7.342e22,
		Radius: 1.7374e6,
		Visual: "moon",
		Orbit: &Orbit{
			Reference:           "Earth",
			SemiMajorAxis:       3.84399e8,
			Eccentricity:        0.0549,
			Inclination:         5.145,
			AscendingNode:       125.08,
			ArgumentOfPeriapsis: 318.15,
			MeanAnomaly:         135.27,
			PeriodDays:          27.321661,
		},
	}
}

func sunEarth() Description {
	return Description{
		Name:   "sun-earth",
		Epoch:  float64(astro.J2000),
		Bodies: []Body{sun(), earth(), moon()},
	}
}

func planet(name string, mass, radius, a, e, inc, node, argPeri, meanAnomaly, periodDays float64) Body {
	return Body{
		Name:   name,
		Kind:   component.KindPlanet,
		Mass:   mass,
		Radius: radius,
		Visual: name,
		Orbit: &Orbit{
			Reference:           "Sun",
			SemiMajorAxis:       a * astro.AU,
			Eccentricity:        e,
			Inclination:         inc,
			AscendingNode:       node,
			ArgumentOfPeriapsis: argPeri,
			MeanAnomaly:         meanAnomaly,
			PeriodDays:          periodDays,
		},
	}
}

func innerSolarSystem() Description {
	return Description{
		Name:  "inner-solar-system",
		Epoch: float64(astro.J2000),
		Bodies: []Body{
			sun(),
			planet("Mercury", 3.3011e23, 2.4397e6, 0.38709927, 0.20563593, 7.00497902, 48.33076593, 29.12703035, 174.79252722, 87.969),
			planet("Venus", 4.8675e24, 6.0518e6, 0.72333566, 0.00677672, 3.39467605, 76.67984255, 54.92262463, 50.37663232, 224.701),
			earth(),
			moon(),
			planet("Mars", 6.4171e23, 3.3895e6, 1.52371034, 0.09339410, 1.84969142, 49.55953891, 286.49683150, 19.39019754, 686.980),
		},
	}
}

// binaryStar places two stars on circular orbits about their barycenter at
// the origin.
func binaryStar() Description {
	const (
		m1 = 2 * astro.SolarMass
		m2 = astro.SolarMass
		d  = astro.AU
	)
	v := math.Sqrt(astro.G * (m1 + m2) / d)
	r1, r2 := d*m2/(m1+m2), d*m1/(m1+m2)
	v1, v2 := v*m2/(m1+m2), v*m1/(m1+m2)

	return Description{
		Name:  "binary-star",
		Epoch: float64(astro.J2000),
		Bodies: []Body{
			{
				Name: "Primary", Kind: component.KindStar, Mass: m1, Radius: 1.2e9, Brightness: 4.0e28,
				State: &State{Position: vmath.Vec3{X: -r1}, Velocity: vmath.Vec3{Y: -v1}},
			},
			{
				Name: "Secondary", Kind: component.KindStar, Mass: m2, Radius: 6.957e8, Brightness: 3.0e27,
				State: &State{Position: vmath.Vec3{X: r2}, Velocity: vmath.Vec3{Y: v2}},
			},
		},
	}
}

// testParticles rings the Sun and Jupiter with massless asteroids.
func testParticles() Description {
	bodies := []Body{
		sun(),
		planet("Jupiter", 1.89813e27, 6.9911e7, 5.20288700, 0.04838624, 1.30439695, 100.47390909, 273.86740060, 20.02015180, 4332.589),
	}
	const n = 24
	for i := 0; i < n; i++ {
		bodies = append(bodies, Body{
			Name: "Asteroid-" + string(rune('A'+i)),
			Kind: component.KindAsteroid,
			Orbit: &Orbit{
				Reference:     "Sun",
				SemiMajorAxis: (2.2 + float64(i)*1.0/n) * astro.AU,
				Eccentricity:  0.05 + 0.01*float64(i%5),
				Inclination:   float64(i % 7),
				AscendingNode: float64(i) * 360 / n,
				MeanAnomaly:   float64(i) * 137.5,
			},
		})
	}
	return Description{
		Name:   "test-particles",
		Epoch:  float64(astro.J2000),
		Bodies: bodies,
	}
}
