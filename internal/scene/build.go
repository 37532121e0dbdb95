package scene

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/orbsim/internal/astro"
	"github.com/san-kum/orbsim/internal/component"
	"github.com/san-kum/orbsim/internal/ecs"
	"github.com/san-kum/orbsim/internal/orbit"
	"github.com/san-kum/orbsim/internal/sim"
	"github.com/san-kum/orbsim/internal/vmath"
)

// Result maps body names to the entities created for them.
type Result struct {
	Entities map[string]ecs.Entity
	Order    []string // creation order, references before dependents

	// Approximate lists bodies whose Kepler solve did not converge.
	Approximate []string
}

type Option func(*builder)

func WithConverter(c *orbit.Converter) Option {
	return func(b *builder) { b.conv = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(b *builder) { b.logger = l }
}

type builder struct {
	conv   *orbit.Converter
	logger *slog.Logger
}

func newBuilder(w *sim.World, opts []Option) *builder {
	b := &builder{logger: w.Logger()}
	for _, opt := range opts {
		opt(b)
	}
	if b.conv == nil {
		b.conv = orbit.NewConverter(
			orbit.WithGravitationalConstant(w.Integrator.G),
			orbit.WithLogger(b.logger),
		)
	}
	return b
}

type plannedBody struct {
	Body
	index       int
	state       orbit.StateVector
	elements    *orbit.Elements
	approximate bool
}

// Build adds the bodies of d to w as of the scene epoch. Every body is
// validated and converted before any entity is created; if creation fails
// part way, everything created so far is despawned.
func Build(w *sim.World, d Description, opts ...Option) (*Result, error) {
	b := newBuilder(w, opts)
	plan, err := b.plan(d)
	if err != nil {
		return nil, err
	}
	return b.create(w, d, plan)
}

// Replace resets w, restarts its clock at the scene epoch and builds d. An
// invalid description leaves w untouched.
func Replace(w *sim.World, d Description, opts ...Option) (*Result, error) {
	b := newBuilder(w, opts)
	plan, err := b.plan(d)
	if err != nil {
		return nil, err
	}
	w.Reset()
	w.Clock.Reset(d.EpochJD())
	return b.create(w, d, plan)
}

// Validate checks d without touching any world.
func Validate(d Description, opts ...Option) error {
	b := &builder{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	if b.conv == nil {
		b.conv = orbit.NewConverter(orbit.WithLogger(b.logger))
	}
	_, err := b.plan(d)
	return err
}

func (b *builder) plan(d Description) ([]plannedBody, error) {
	if len(d.Bodies) == 0 {
		return nil, fmt.Errorf("%w: no bodies", ErrInvalidScene)
	}
	if math.IsNaN(d.Epoch) || math.IsInf(d.Epoch, 0) {
		return nil, fmt.Errorf("%w: epoch %v", ErrInvalidScene, d.Epoch)
	}

	index := make(map[string]int, len(d.Bodies))
	for i, body := range d.Bodies {
		if body.Name == "" {
			return nil, fmt.Errorf("%w: body %d has no name", ErrInvalidScene, i)
		}
		if _, dup := index[body.Name]; dup {
			return nil, bodyErr(body.Name, "duplicate name")
		}
		index[body.Name] = i
	}

	for _, body := range d.Bodies {
		if err := checkBody(body, d.Bodies, index); err != nil {
			return nil, err
		}
	}

	order, err := dependencyOrder(d.Bodies, index)
	if err != nil {
		return nil, err
	}

	epoch := d.EpochJD()
	plan := make([]plannedBody, len(d.Bodies))
	for _, i := range order {
		body := d.Bodies[i]
		p := plannedBody{Body: body, index: i}

		switch {
		case body.Orbit != nil:
			ref := index[body.Orbit.Reference]
			refMass := d.Bodies[ref].Mass
			el := body.Orbit.Elements(epoch, refMass, b.conv.G)
			sol, err := b.conv.ElementsToState(el, refMass, epoch)
			if err != nil {
				return nil, &BodyError{Body: body.Name, Err: err}
			}
			p.state = sol.State.Offset(plan[ref].state)
			p.elements = &el
			p.approximate = sol.Approximate
		case body.State != nil:
			p.state = orbit.StateVector{
				Epoch:    epoch,
				Position: body.State.Position,
				Velocity: body.State.Velocity,
			}
		default:
			p.state = orbit.StateVector{Epoch: epoch}
		}
		plan[i] = p
	}

	ordered := make([]plannedBody, 0, len(order))
	for _, i := range order {
		ordered = append(ordered, plan[i])
	}
	return ordered, nil
}

func checkBody(body Body, all []Body, index map[string]int) error {
	switch {
	case !finiteNonNegative(body.Mass):
		return bodyErr(body.Name, "mass %v must be finite and non-negative", body.Mass)
	case !finiteNonNegative(body.Radius):
		return bodyErr(body.Name, "radius %v must be finite and non-negative", body.Radius)
	case !finiteNonNegative(body.Brightness):
		return bodyErr(body.Name, "brightness %v must be finite and non-negative", body.Brightness)
	case body.Orbit != nil && body.State != nil:
		return bodyErr(body.Name, "orbit and state are mutually exclusive")
	}

	if body.Spin != nil {
		if !finiteNonNegative(body.Spin.PeriodDays) || !body.Spin.Axis.IsFinite() {
			return bodyErr(body.Name, "spin needs a finite axis and non-negative period")
		}
	}

	if body.Parent != "" {
		if _, ok := index[body.Parent]; !ok {
			return &BodyError{Body: body.Name, Err: fmt.Errorf("%w: parent %q", ErrUnknownBody, body.Parent)}
		}
		if body.Orbit != nil || body.State != nil {
			return bodyErr(body.Name, "a parented body cannot carry an orbit or state")
		}
		if body.Offset != nil && !body.Offset.IsFinite() {
			return bodyErr(body.Name, "offset must be finite")
		}
	}

	if body.State != nil && !(body.State.Position.IsFinite() && body.State.Velocity.IsFinite()) {
		return bodyErr(body.Name, "state must be finite")
	}

	if o := body.Orbit; o != nil {
		ri, ok := index[o.Reference]
		if !ok {
			return &BodyError{Body: body.Name, Err: fmt.Errorf("%w: reference %q", ErrUnknownBody, o.Reference)}
		}
		ref := all[ri]
		switch {
		case ref.Name == body.Name:
			return bodyErr(body.Name, "a body cannot orbit itself")
		case ref.Mass <= 0:
			return bodyErr(body.Name, "reference %q has no mass", ref.Name)
		case ref.Parent != "":
			return bodyErr(body.Name, "reference %q is parented and has no inertial state", ref.Name)
		}
		if !finiteNonNegative(o.PeriodDays) {
			return bodyErr(body.Name, "period %v must be finite and non-negative", o.PeriodDays)
		}
	}
	return nil
}

// dependencyOrder sorts bodies so parents and orbit references precede the
// bodies that need them, keeping file order otherwise.
func dependencyOrder(bodies []Body, index map[string]int) ([]int, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	mark := make([]int, len(bodies))
	order := make([]int, 0, len(bodies))

	var visit func(i int) error
	visit = func(i int) error {
		switch mark[i] {
		case done:
			return nil
		case visiting:
			return &BodyError{Body: bodies[i].Name, Err: ErrCycle}
		}
		mark[i] = visiting
		for _, dep := range dependencies(bodies[i]) {
			if err := visit(index[dep]); err != nil {
				return err
			}
		}
		mark[i] = done
		order = append(order, i)
		return nil
	}

	for i := range bodies {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func dependencies(b Body) []string {
	var deps []string
	if b.Parent != "" {
		deps = append(deps, b.Parent)
	}
	if b.Orbit != nil {
		deps = append(deps, b.Orbit.Reference)
	}
	return deps
}

func (b *builder) create(w *sim.World, d Description, plan []plannedBody) (res *Result, err error) {
	res = &Result{Entities: make(map[string]ecs.Entity, len(plan))}
	created := make([]ecs.Entity, 0, len(plan))
	defer func() {
		if err == nil {
			return
		}
		for _, e := range created {
			_ = w.Despawn(e)
		}
		res = nil
	}()

	epoch := d.EpochJD()
	for _, p := range plan {
		e := w.Spawn()
		created = append(created, e)

		if err := b.insert(w, e, p, res, epoch); err != nil {
			return nil, &BodyError{Body: p.Name, Err: err}
		}

		res.Entities[p.Name] = e
		res.Order = append(res.Order, p.Name)
		if p.approximate {
			res.Approximate = append(res.Approximate, p.Name)
		}
		b.logger.Debug("added body", "scene", d.Name, "body", p.Name, "entity", e, "kind", p.Kind)
	}

	b.logger.Info("scene built",
		"scene", d.Name,
		"bodies", len(plan),
		"epoch", epoch,
		"approximate", len(res.Approximate),
	)
	return res, nil
}

func (b *builder) insert(w *sim.World, e ecs.Entity, p plannedBody, res *Result, epoch astro.JulianDate) error {
	err := w.Metadata.Insert(e, component.Metadata{
		Name:   p.Name,
		Kind:   p.Kind,
		Radius: p.Radius,
		Visual: p.Visual,
	})
	if err != nil {
		return err
	}

	tr := component.NewTransform()
	if p.Parent != "" {
		tr.Parent = res.Entities[p.Parent]
		if p.Offset != nil {
			tr.Local = vmath.Translation(*p.Offset)
		}
	} else {
		err := w.Bodies.Insert(e, component.PhysicsBody{
			Mass:     p.Mass,
			Position: p.state.Position,
			Velocity: p.state.Velocity,
		})
		if err != nil {
			return err
		}
		tr.Local = vmath.Translation(p.state.Position)
		tr.World = tr.Local
	}
	if err := w.Transforms.Insert(e, tr); err != nil {
		return err
	}

	if s := p.Spin; s != nil {
		err := w.Spins.Insert(e, component.Spin{
			Axis:   s.Axis,
			Period: astro.Days(s.PeriodDays),
			Epoch:  epoch,
			Phase:  deg(s.Phase),
		})
		if err != nil {
			return err
		}
	}

	if p.elements != nil {
		el := *p.elements
		el.Reference = res.Entities[p.Orbit.Reference]
		if err := w.Orbits.Insert(e, el); err != nil {
			return err
		}
	}

	if p.Brightness > 0 || p.Kind == component.KindStar {
		err := w.Lights.Insert(e, component.Light{
			Intensity: p.Brightness,
			Color:     [3]float64{1, 1, 1},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func finiteNonNegative(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f >= 0
}
