package physics

import (
	"math"
	"sort"

	"github.com/san-kum/orbsim/internal/astro"
	"github.com/san-kum/orbsim/internal/component"
	"github.com/san-kum/orbsim/internal/vmath"
)

// DefaultEpsilon is the squared separation (m²) below which a pair is skipped.
const DefaultEpsilon = 1.0

// NBody integrates mutual gravity between bodies with semi-implicit Euler.
type NBody struct {
	G       float64
	Epsilon float64 // m²

	// MassThreshold enables pruning when positive: pairs in which both
	// bodies are lighter than the threshold are not evaluated.
	MassThreshold float64

	acc   []vmath.Vec3
	order []int
}

func NewNBody() *NBody {
	return &NBody{
		G:       astro.G,
		Epsilon: DefaultEpsilon,
	}
}

// Step advances bodies by dt simulated seconds. All accelerations are taken
// from the positions at entry, then each body's velocity and position are
// updated in that order. Bodies whose new state would not be finite are
// frozen in their previous state; Step returns their indices.
func (nb *NBody) Step(bodies []*component.PhysicsBody, dt float64) []int {
	nb.accumulate(bodies)

	var frozen []int
	for i, b := range bodies {
		if b.Frozen {
			continue
		}
		v := b.Velocity.Add(nb.acc[i].Scale(dt))
		p := b.Position.Add(v.Scale(dt))
		if !v.IsFinite() || !p.IsFinite() {
			b.Frozen = true
			frozen = append(frozen, i)
			continue
		}
		b.Velocity = v
		b.Position = p
	}
	return frozen
}

// Accelerations returns the gravitational acceleration on each body at the
// current positions. It also refreshes each body's Force.
func (nb *NBody) Accelerations(bodies []*component.PhysicsBody) []vmath.Vec3 {
	nb.accumulate(bodies)
	out := make([]vmath.Vec3, len(bodies))
	copy(out, nb.acc)
	return out
}

func (nb *NBody) accumulate(bodies []*component.PhysicsBody) {
	n := len(bodies)
	if cap(nb.acc) < n {
		nb.acc = make([]vmath.Vec3, n)
	}
	nb.acc = nb.acc[:n]
	for i := range nb.acc {
		nb.acc[i] = vmath.Vec3{}
		bodies[i].Force = vmath.Vec3{}
	}

	order := nb.pairOrder(bodies)
	prune := nb.MassThreshold > 0

	for oi, i := range order {
		bi := bodies[i]
		if prune && bi.Mass < nb.MassThreshold {
			// Sorted by mass: every remaining pair is below the threshold.
			break
		}
		for _, j := range order[oi+1:] {
			bj := bodies[j]
			if bi.Mass == 0 && bj.Mass == 0 {
				continue
			}
			d := bj.Position.Sub(bi.Position)
			r2 := d.LenSq()
			if r2 < nb.Epsilon || math.IsNaN(r2) {
				continue
			}
			// G·d/|d|³, shared by both directions of the pair.
			u := d.Scale(nb.G / (r2 * math.Sqrt(r2)))

			nb.acc[i] = nb.acc[i].Add(u.Scale(bj.Mass))
			nb.acc[j] = nb.acc[j].Sub(u.Scale(bi.Mass))

			f := u.Scale(bi.Mass * bj.Mass)
			bi.Force = bi.Force.Add(f)
			bj.Force = bj.Force.Sub(f)
		}
	}
}

func (nb *NBody) pairOrder(bodies []*component.PhysicsBody) []int {
	n := len(bodies)
	if cap(nb.order) < n {
		nb.order = make([]int, n)
	}
	nb.order = nb.order[:n]
	for i := range nb.order {
		nb.order[i] = i
	}
	if nb.MassThreshold > 0 {
		sort.SliceStable(nb.order, func(a, b int) bool {
			return bodies[nb.order[a]].Mass > bodies[nb.order[b]].Mass
		})
	}
	return nb.order
}
