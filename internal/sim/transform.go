package sim

import (
	"github.com/san-kum/orbsim/internal/component"
	"github.com/san-kum/orbsim/internal/ecs"
	"github.com/san-kum/orbsim/internal/vmath"
)

type resolveState uint8

const (
	unresolved resolveState = iota
	visiting
	resolved
)

// propagateTransforms rebuilds local matrices of free bodies from their
// position and spin, then composes world matrices down the parent chain.
// Each world matrix is computed once per tick regardless of depth.
func (w *World) propagateTransforms() {
	w.Transforms.Each(func(e ecs.Entity, tr *component.Transform) {
		if !tr.Parent.IsNil() {
			return
		}
		b, ok := w.Bodies.Get(e)
		if !ok {
			return
		}
		local := vmath.Translation(b.Position)
		if s, ok := w.Spins.Get(e); ok {
			local = local.Mul(s.RotationAt(w.Clock.SecondsSince(s.Epoch)))
		}
		tr.Local = local
	})

	clear(w.resolve)
	w.Transforms.Each(func(e ecs.Entity, tr *component.Transform) {
		w.worldOf(e, tr)
	})
}

// worldOf resolves the world matrix of e. When a parent cycle is found it
// returns the entity that closes it; every entity on the cycle falls back to
// its local matrix.
func (w *World) worldOf(e ecs.Entity, tr *component.Transform) (vmath.Mat4, ecs.Entity) {
	switch w.resolve[e] {
	case resolved:
		return tr.World, ecs.Nil
	case visiting:
		return tr.Local, e
	}
	w.resolve[e] = visiting

	world := tr.Local
	cycle := ecs.Nil
	if !tr.Parent.IsNil() {
		if ptr, ok := w.Transforms.GetMut(tr.Parent); ok {
			var pw vmath.Mat4
			pw, cycle = w.worldOf(tr.Parent, ptr)
			if cycle.IsNil() {
				world = pw.Mul(tr.Local)
			} else {
				w.warn.Do(func() {
					w.logger.Warn("transform parent cycle, using local transform", "entity", e)
				})
				if cycle == e {
					cycle = ecs.Nil
				}
			}
		}
	}

	tr.World = world
	w.resolve[e] = resolved
	return world, cycle
}
