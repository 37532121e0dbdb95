package sim

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/san-kum/orbsim/internal/astro"
	"github.com/san-kum/orbsim/internal/component"
	"github.com/san-kum/orbsim/internal/ecs"
	"github.com/san-kum/orbsim/internal/orbit"
	"github.com/san-kum/orbsim/internal/physics"
)

// World owns every entity, component store and system of one simulation.
// It is not safe for concurrent use.
type World struct {
	Entities   *ecs.EntityStore
	Bodies     *ecs.DenseStore[component.PhysicsBody]
	Transforms *ecs.DenseStore[component.Transform]
	Metadata   *ecs.DenseStore[component.Metadata]
	Spins      *ecs.SparseStore[component.Spin]
	Lights     *ecs.SparseStore[component.Light]
	Orbits     *ecs.SparseStore[orbit.Elements]

	Clock      *Clock
	Integrator *physics.NBody

	logger *slog.Logger
	warn   *rate.Sometimes
	stores []ecs.Remover
	ticks  uint64

	// reused between ticks
	owners  []ecs.Entity
	bodies  []*component.PhysicsBody
	resolve map[ecs.Entity]resolveState
}

type Option func(*World)

func WithLogger(l *slog.Logger) Option {
	return func(w *World) { w.logger = l }
}

func WithIntegrator(nb *physics.NBody) Option {
	return func(w *World) { w.Integrator = nb }
}

func WithClock(c *Clock) Option {
	return func(w *World) { w.Clock = c }
}

func NewWorld(capacity int, opts ...Option) *World {
	entities := ecs.NewEntityStore(capacity)
	w := &World{
		Entities:   entities,
		Bodies:     ecs.NewDenseStore[component.PhysicsBody](entities, capacity),
		Transforms: ecs.NewDenseStore[component.Transform](entities, capacity),
		Metadata:   ecs.NewDenseStore[component.Metadata](entities, capacity),
		Spins:      ecs.NewSparseStore[component.Spin](entities),
		Lights:     ecs.NewSparseStore[component.Light](entities),
		Orbits:     ecs.NewSparseStore[orbit.Elements](entities),
		Clock:      NewClock(astro.J2000, 1),
		Integrator: physics.NewNBody(),
		logger:     slog.Default(),
		warn:       &rate.Sometimes{First: 3, Interval: 5 * time.Second},
		resolve:    make(map[ecs.Entity]resolveState),
	}
	w.stores = []ecs.Remover{w.Bodies, w.Transforms, w.Metadata, w.Spins, w.Lights, w.Orbits}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *World) Logger() *slog.Logger { return w.logger }

func (w *World) Spawn() ecs.Entity {
	return w.Entities.Create()
}

// Despawn removes every component of e and destroys it. Children keep their
// Parent reference, which no longer resolves.
func (w *World) Despawn(e ecs.Entity) error {
	if !w.Entities.IsAlive(e) {
		return &ecs.EntityError{Entity: e, Wrapped: ecs.ErrStaleEntity}
	}
	for _, s := range w.stores {
		s.Remove(e)
	}
	return w.Entities.Destroy(e)
}

// Reset destroys every entity and empties every store. Handles issued before
// Reset never resolve again.
func (w *World) Reset() {
	for _, s := range w.stores {
		s.Clear()
	}
	for _, e := range w.Entities.Entities() {
		_ = w.Entities.Destroy(e)
	}
	w.ticks = 0
}

// Tick advances the clock by wall time, integrates every unparented body
// and recomputes world transforms.
func (w *World) Tick(wall time.Duration) TickReport {
	dt := w.Clock.Advance(wall)
	w.ticks++

	r := TickReport{Tick: w.ticks, Dt: dt, Now: w.Clock.Now()}
	if dt != 0 {
		owners, bodies := w.FreeBodies()
		for _, i := range w.Integrator.Step(bodies, dt) {
			r.Frozen = append(r.Frozen, owners[i])
		}
		r.Integrated = len(bodies) - countFrozen(bodies)
		if len(r.Frozen) > 0 {
			w.warn.Do(func() {
				w.logger.Warn("bodies frozen after non-finite state",
					"tick", r.Tick,
					"entities", r.Frozen,
				)
			})
		}
	}
	w.propagateTransforms()
	return r
}

// FreeBodies returns the bodies the integrator moves: every live entity with
// a PhysicsBody and no parent. The pointers stay valid until the next store
// insert; the slices are reused by the next call.
func (w *World) FreeBodies() ([]ecs.Entity, []*component.PhysicsBody) {
	w.owners = w.owners[:0]
	w.bodies = w.bodies[:0]
	w.Bodies.Each(func(e ecs.Entity, b *component.PhysicsBody) {
		if tr, ok := w.Transforms.Get(e); ok && !tr.Parent.IsNil() {
			return
		}
		w.owners = append(w.owners, e)
		w.bodies = append(w.bodies, b)
	})
	return w.owners, w.bodies
}

func countFrozen(bodies []*component.PhysicsBody) int {
	n := 0
	for _, b := range bodies {
		if b.Frozen {
			n++
		}
	}
	return n
}

// StateVector reports the current inertial state of e.
func (w *World) StateVector(e ecs.Entity) (orbit.StateVector, error) {
	b, err := ecs.Lookup[component.PhysicsBody](w.Entities, w.Bodies, e)
	if err != nil {
		return orbit.StateVector{}, notFound(err)
	}
	return orbit.StateVector{
		Epoch:    w.Clock.Now(),
		Position: b.Position,
		Velocity: b.Velocity,
	}, nil
}

// Osculating returns the elements e was seeded from and its current
// osculating elements relative to the same reference body.
func (w *World) Osculating(e ecs.Entity, conv *orbit.Converter) (initial, current orbit.Elements, err error) {
	initial, err = ecs.Lookup[orbit.Elements](w.Entities, w.Orbits, e)
	if err != nil {
		return initial, current, notFound(err)
	}
	s, err := w.StateVector(e)
	if err != nil {
		return initial, current, err
	}
	ref, err := ecs.Lookup[component.PhysicsBody](w.Entities, w.Bodies, initial.Reference)
	if err != nil {
		return initial, current, fmt.Errorf("reference of %s: %w", w.Name(e), notFound(err))
	}
	rel := orbit.StateVector{
		Epoch:    s.Epoch,
		Position: s.Position.Sub(ref.Position),
		Velocity: s.Velocity.Sub(ref.Velocity),
	}
	current, err = conv.StateToElements(rel, ref.Mass)
	if err != nil {
		return initial, current, err
	}
	current.Reference = initial.Reference
	return initial, current, nil
}

// Transform reports the transform of e as of the last tick.
func (w *World) Transform(e ecs.Entity) (component.Transform, error) {
	tr, err := ecs.Lookup[component.Transform](w.Entities, w.Transforms, e)
	if err != nil {
		return component.Transform{}, notFound(err)
	}
	return tr, nil
}

// Energy returns the total energy of the free bodies.
func (w *World) Energy() float64 {
	_, bodies := w.FreeBodies()
	return w.Integrator.Energy(bodies)
}

// Name returns the display name of e, or its handle when it has none.
func (w *World) Name(e ecs.Entity) string {
	if md, ok := w.Metadata.Get(e); ok && md.Name != "" {
		return md.Name
	}
	return e.String()
}

// Find returns the first live entity named name.
func (w *World) Find(name string) (ecs.Entity, bool) {
	found := ecs.Nil
	w.Metadata.Each(func(e ecs.Entity, md *component.Metadata) {
		if found.IsNil() && md.Name == name {
			found = e
		}
	})
	return found, !found.IsNil()
}
