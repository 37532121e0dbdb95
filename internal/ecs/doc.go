// Package ecs provides the generational entity/component storage the
// simulation runs on.
//
// An [Entity] is a (slot index, generation) pair handed out by an
// [EntityStore]. Destroying an entity bumps its slot's generation, so every
// identity that was handed out before the destroy stops resolving, even
// after the slot is recycled for a new entity.
//
// Components live in one of two stores:
//
//   - [DenseStore]: a slot-indexed array, for components most entities carry
//     (transforms, physics bodies).
//   - [SparseStore]: keyed by full identity, for components few entities
//     carry (lights, spin).
//
// Both stores resolve a lookup only if the stored owner matches the
// identity exactly and the entity is still alive.
//
// # Thread Safety
//
// Nothing in this package is synchronised. The simulation accesses stores
// from a single goroutine per tick.
package ecs
