package ecs

import (
	"fmt"
	"math"
)

// Entity is an opaque identity. Two entities are equal iff both fields match.
type Entity struct {
	Index      uint32
	Generation uint32
}

// Nil is the zero Entity. Slot 0 is reserved, so Nil never resolves.
var Nil Entity

func (e Entity) IsNil() bool { return e == Nil }

func (e Entity) String() string {
	return fmt.Sprintf("entity(%d#%d)", e.Index, e.Generation)
}

// Liveness is what component stores need from an entity allocator.
type Liveness interface {
	IsAlive(e Entity) bool
}

type slot struct {
	generation uint32
	alive      bool
}

// EntityStore allocates and recycles entity identities. Slot indices are
// stable while occupied; there is no compaction.
type EntityStore struct {
	slots []slot
	free  []uint32
	live  int
}

func NewEntityStore(capacity int) *EntityStore {
	s := &EntityStore{
		slots: make([]slot, 1, capacity+1),
		free:  make([]uint32, 0, 16),
	}
	// Slot 0 is never handed out.
	s.slots[0] = slot{generation: 0, alive: false}
	return s
}

// Create returns a new live entity, reusing a free slot when one exists.
func (s *EntityStore) Create() Entity {
	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.slots = append(s.slots, slot{generation: 1})
		idx = uint32(len(s.slots) - 1)
	}

	sl := &s.slots[idx]
	sl.alive = true
	s.live++
	return Entity{Index: idx, Generation: sl.generation}
}

// Destroy kills e and recycles its slot. It fails with ErrStaleEntity if e
// is not the slot's current live identity.
func (s *EntityStore) Destroy(e Entity) error {
	if !s.IsAlive(e) {
		return &EntityError{Entity: e, Wrapped: ErrStaleEntity}
	}

	sl := &s.slots[e.Index]
	sl.alive = false
	s.live--

	// A slot at the generation ceiling is retired rather than recycled so
	// that old identities can never alias a wrapped generation.
	if sl.generation == math.MaxUint32 {
		return nil
	}
	sl.generation++
	s.free = append(s.free, e.Index)
	return nil
}

func (s *EntityStore) IsAlive(e Entity) bool {
	if e.Index == 0 || int(e.Index) >= len(s.slots) {
		return false
	}
	sl := s.slots[e.Index]
	return sl.alive && sl.generation == e.Generation
}

// Len returns the number of live entities.
func (s *EntityStore) Len() int { return s.live }

// Cap returns the number of slots ever allocated, including the reserved
// slot 0. Dense stores never need more than this many entries.
func (s *EntityStore) Cap() int { return len(s.slots) }

// Each calls fn for every live entity in slot order.
func (s *EntityStore) Each(fn func(Entity)) {
	for i := 1; i < len(s.slots); i++ {
		sl := s.slots[i]
		if sl.alive {
			fn(Entity{Index: uint32(i), Generation: sl.generation})
		}
	}
}

// Entities returns a snapshot of all live entities in slot order.
func (s *EntityStore) Entities() []Entity {
	out := make([]Entity, 0, s.live)
	s.Each(func(e Entity) { out = append(out, e) })
	return out
}
