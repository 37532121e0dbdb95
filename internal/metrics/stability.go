package metrics

import (
	"github.com/san-kum/orbsim/internal/physics"
	"github.com/san-kum/orbsim/internal/sim"
)

// Stability is the fraction of ticks in which every free body stayed within
// radius of the barycenter and none was frozen.
type Stability struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewStability(radius float64) *Stability {
	return &Stability{
		name:   "stability",
		radius: radius,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(w *sim.World, r sim.TickReport) {
	s.samples++
	if len(r.Frozen) > 0 {
		s.violations++
		return
	}
	_, bodies := w.FreeBodies()
	center, _ := physics.CenterOfMass(bodies)
	for _, b := range bodies {
		if b.Position.Sub(center).Len() > s.radius {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
