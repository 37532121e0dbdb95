package orbit_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbsim/internal/orbit"
)

var _ = Describe("SolveKepler", func() {
	DescribeTable("satisfies Kepler's equation",
		func(m, e float64) {
			ecc, iters, ok := orbit.SolveKepler(m, e, orbit.DefaultMaxIterations, orbit.DefaultTolerance)
			Expect(ok).To(BeTrue())
			Expect(iters).To(BeNumerically("<=", orbit.DefaultMaxIterations))
			Expect(ecc - e*math.Sin(ecc)).To(BeNumerically("~", m, 1e-9))
		},
		Entry("circular", 1.2, 0.0),
		Entry("earth-like", 0.3, 0.0167),
		Entry("moderate", 4.0, 0.5),
		Entry("eccentric near periapsis", 0.05, 0.9),
		Entry("very eccentric", 3.0, 0.97),
	)

	It("returns the mean anomaly when it cannot converge", func() {
		ecc, iters, ok := orbit.SolveKepler(0.1, 0.99, 1, 1e-15)
		Expect(ok).To(BeFalse())
		Expect(iters).To(Equal(1))
		Expect(ecc).To(Equal(0.1))
	})

	It("is exact for a circular orbit", func() {
		ecc, iters, ok := orbit.SolveKepler(2.5, 0, 30, 1e-10)
		Expect(ok).To(BeTrue())
		Expect(iters).To(Equal(0))
		Expect(ecc).To(Equal(2.5))
	})
})

var _ = Describe("TrueAnomaly", func() {
	It("matches the eccentric anomaly at apsides", func() {
		Expect(orbit.TrueAnomaly(0, 0.5)).To(BeNumerically("~", 0, 1e-12))
		Expect(math.Abs(orbit.TrueAnomaly(math.Pi, 0.5))).To(BeNumerically("~", math.Pi, 1e-12))
	})

	It("leads the eccentric anomaly on the outbound leg", func() {
		Expect(orbit.TrueAnomaly(1, 0.5)).To(BeNumerically(">", 1))
	})
})

var _ = Describe("NormalizeAngle", func() {
	DescribeTable("wraps into [0, 2π)",
		func(in, want float64) {
			Expect(orbit.NormalizeAngle(in)).To(BeNumerically("~", want, 1e-12))
		},
		Entry("in range", 1.0, 1.0),
		Entry("negative", -math.Pi/2, 3*math.Pi/2),
		Entry("multiple turns", 5*math.Pi, math.Pi),
	)
})
