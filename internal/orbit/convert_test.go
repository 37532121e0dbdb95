package orbit_test

import (
	"errors"
	"io"
	"log/slog"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbsim/internal/astro"
	"github.com/san-kum/orbsim/internal/orbit"
)

func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d < -math.Pi {
		d += 2 * math.Pi
	}
	return math.Abs(d)
}

var _ = Describe("Converter", func() {
	var (
		conv *orbit.Converter
		mu   float64
	)

	BeforeEach(func() {
		conv = orbit.NewConverter(orbit.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
		mu = astro.G * astro.SolarMass
	})

	elementsFor := func(e float64) orbit.Elements {
		return orbit.Elements{
			Epoch:                    astro.J2000,
			SemiMajorAxis:            astro.AU,
			Eccentricity:             e,
			Inclination:              0.3,
			LongitudeOfAscendingNode: 1.0,
			ArgumentOfPeriapsis:      0.5,
			MeanAnomaly:              2.0,
			SiderealPeriod:           orbit.Period(astro.AU, mu),
		}
	}

	Describe("ElementsToState", func() {
		It("places a circular equatorial orbit on the x axis at zero anomaly", func() {
			el := orbit.Elements{
				Epoch:          astro.J2000,
				SemiMajorAxis:  astro.AU,
				SiderealPeriod: orbit.Period(astro.AU, mu),
			}
			sol, err := conv.ElementsToState(el, astro.SolarMass, astro.J2000)
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Approximate).To(BeFalse())
			Expect(sol.State.Position.X).To(BeNumerically("~", astro.AU, 1e-3))
			Expect(math.Abs(sol.State.Position.Y)).To(BeNumerically("<", 1e-3))
			Expect(sol.State.Velocity.Y).To(BeNumerically("~", math.Sqrt(mu/astro.AU), 1e-6))
		})

		It("satisfies vis-viva", func() {
			el := elementsFor(0.4)
			sol, err := conv.ElementsToState(el, astro.SolarMass, el.Epoch)
			Expect(err).NotTo(HaveOccurred())
			r := sol.State.Position.Len()
			v := sol.State.Velocity.Len()
			Expect(v).To(BeNumerically("~", orbit.VisViva(r, el.SemiMajorAxis, mu), v*1e-10))
		})

		It("gives Earth a faster perihelion than aphelion", func() {
			earth := orbit.Elements{
				Epoch:               astro.J2000,
				SemiMajorAxis:       1.00000011 * astro.AU,
				Eccentricity:        0.01671022,
				Inclination:         0.00005 * math.Pi / 180,
				ArgumentOfPeriapsis: 102.94719 * math.Pi / 180,
				SiderealPeriod:      365.256363004 * astro.SecondsPerDay,
			}
			peri, err := conv.ElementsToState(earth, astro.SolarMass, astro.J2000)
			Expect(err).NotTo(HaveOccurred())

			earth.MeanAnomaly = math.Pi
			aph, err := conv.ElementsToState(earth, astro.SolarMass, astro.J2000)
			Expect(err).NotTo(HaveOccurred())

			Expect(peri.State.Velocity.Len()).To(BeNumerically(">", aph.State.Velocity.Len()))
			Expect(peri.State.Position.Len()).To(BeNumerically("<", aph.State.Position.Len()))
		})

		It("propagates the mean anomaly to the requested epoch", func() {
			el := elementsFor(0.2)
			half := el.Epoch.AddSeconds(el.SiderealPeriod / 2)
			sol, err := conv.ElementsToState(el, astro.SolarMass, half)
			Expect(err).NotTo(HaveOccurred())
			Expect(angleDiff(sol.MeanAnomaly, el.MeanAnomaly+math.Pi)).To(BeNumerically("<", 1e-6))
			Expect(sol.State.Epoch).To(Equal(half))

			full, err := conv.ElementsToState(el, astro.SolarMass, el.Epoch.AddSeconds(el.SiderealPeriod))
			Expect(err).NotTo(HaveOccurred())
			start, err := conv.ElementsToState(el, astro.SolarMass, el.Epoch)
			Expect(err).NotTo(HaveOccurred())
			Expect(full.State.Position.Sub(start.State.Position).Len()).To(BeNumerically("<", 100))
		})

		It("flags an approximate solution when Kepler does not converge", func() {
			strict := orbit.NewConverter(
				orbit.WithKepler(1, 1e-15),
				orbit.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
			)
			el := elementsFor(0.99)
			el.MeanAnomaly = 0.1
			sol, err := strict.ElementsToState(el, astro.SolarMass, el.Epoch)
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Approximate).To(BeTrue())
			Expect(sol.EccentricAnomaly).To(Equal(0.1))
			Expect(sol.State.IsFinite()).To(BeTrue())
		})

		DescribeTable("rejects invalid elements",
			func(mutate func(*orbit.Elements), field string) {
				el := elementsFor(0.1)
				mutate(&el)
				_, err := conv.ElementsToState(el, astro.SolarMass, el.Epoch)
				Expect(errors.Is(err, orbit.ErrInvalidElements)).To(BeTrue())
				var ee *orbit.ElementsError
				Expect(errors.As(err, &ee)).To(BeTrue())
				Expect(ee.Field).To(Equal(field))
			},
			Entry("zero semi-major axis", func(el *orbit.Elements) { el.SemiMajorAxis = 0 }, "semi_major_axis"),
			Entry("negative semi-major axis", func(el *orbit.Elements) { el.SemiMajorAxis = -1 }, "semi_major_axis"),
			Entry("parabolic", func(el *orbit.Elements) { el.Eccentricity = 1 }, "eccentricity"),
			Entry("negative eccentricity", func(el *orbit.Elements) { el.Eccentricity = -0.1 }, "eccentricity"),
			Entry("NaN eccentricity", func(el *orbit.Elements) { el.Eccentricity = math.NaN() }, "eccentricity"),
			Entry("zero period", func(el *orbit.Elements) { el.SiderealPeriod = 0 }, "sidereal_period"),
			Entry("infinite inclination", func(el *orbit.Elements) { el.Inclination = math.Inf(1) }, "inclination"),
		)

		It("rejects a non-positive reference mass", func() {
			_, err := conv.ElementsToState(elementsFor(0.1), 0, astro.J2000)
			Expect(err).To(MatchError(orbit.ErrInvalidElements))
		})
	})

	Describe("StateToElements", func() {
		DescribeTable("round-trips elements",
			func(e float64) {
				el := elementsFor(e)
				sol, err := conv.ElementsToState(el, astro.SolarMass, el.Epoch)
				Expect(err).NotTo(HaveOccurred())

				got, err := conv.StateToElements(sol.State, astro.SolarMass)
				Expect(err).NotTo(HaveOccurred())

				Expect(got.SemiMajorAxis).To(BeNumerically("~", el.SemiMajorAxis, el.SemiMajorAxis*1e-8))
				Expect(got.Eccentricity).To(BeNumerically("~", e, 1e-8))
				Expect(got.Inclination).To(BeNumerically("~", el.Inclination, 1e-8))
				Expect(angleDiff(got.LongitudeOfAscendingNode, el.LongitudeOfAscendingNode)).To(BeNumerically("<", 1e-8))
				if e == 0 {
					// Periapsis is undefined; only the argument of latitude survives.
					Expect(angleDiff(got.ArgumentOfPeriapsis+got.MeanAnomaly,
						el.ArgumentOfPeriapsis+el.MeanAnomaly)).To(BeNumerically("<", 1e-7))
					return
				}
				Expect(angleDiff(got.ArgumentOfPeriapsis, el.ArgumentOfPeriapsis)).To(BeNumerically("<", 1e-6))
				Expect(angleDiff(got.MeanAnomaly, el.MeanAnomaly)).To(BeNumerically("<", 1e-6))
				Expect(got.SiderealPeriod).To(BeNumerically("~", el.SiderealPeriod, el.SiderealPeriod*1e-8))
			},
			Entry("circular", 0.0),
			Entry("nearly circular", 0.01),
			Entry("moderate", 0.3),
			Entry("eccentric", 0.6),
			Entry("highly eccentric", 0.9),
		)

		It("reports unbound trajectories", func() {
			el := elementsFor(0.1)
			sol, err := conv.ElementsToState(el, astro.SolarMass, el.Epoch)
			Expect(err).NotTo(HaveOccurred())
			escape := sol.State
			escape.Velocity = escape.Velocity.Scale(2)
			_, err = conv.StateToElements(escape, astro.SolarMass)
			Expect(err).To(MatchError(orbit.ErrUnboundOrbit))
		})
	})
})
