package experiment

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/orbsim/internal/astro"
	"github.com/san-kum/orbsim/internal/component"
	"github.com/san-kum/orbsim/internal/ecs"
	"github.com/san-kum/orbsim/internal/sim"
	"github.com/san-kum/orbsim/internal/vmath"
)

type Config struct {
	Step           time.Duration // wall time fed to each tick
	Ticks          int
	SampleInterval int // ticks between samples
}

// BodyState is one body's state in a sample.
type BodyState struct {
	Entity   ecs.Entity
	Name     string
	Mass     float64
	Position vmath.Vec3
	Velocity vmath.Vec3
	Frozen   bool
}

type Sample struct {
	Tick    uint64
	Time    astro.JulianDate
	Elapsed float64 // simulated seconds since the start of the run
	Energy  float64
	Bodies  []BodyState
}

type Result struct {
	Samples   []Sample
	Metrics   map[string]float64
	Ticks     int
	Frozen    []ecs.Entity
	Start     astro.JulianDate
	End       astro.JulianDate
	WallTime  time.Duration
	Cancelled bool
}

// TickTimer receives the wall time spent in each tick.
type TickTimer interface {
	RecordTickDuration(d time.Duration)
}

// Experiment drives a world for a fixed number of ticks, sampling body
// states and feeding metrics and observers after every tick.
type Experiment struct {
	world     *sim.World
	cfg       Config
	metrics   []sim.Metric
	observers []sim.Observer
	timer     TickTimer
}

func New(w *sim.World, cfg Config) *Experiment {
	return &Experiment{world: w, cfg: cfg}
}

func (e *Experiment) AddMetric(m sim.Metric)     { e.metrics = append(e.metrics, m) }
func (e *Experiment) AddObserver(o sim.Observer) { e.observers = append(e.observers, o) }
func (e *Experiment) SetTickTimer(t TickTimer)   { e.timer = t }

func (e *Experiment) World() *sim.World { return e.world }

// Run ticks the world cfg.Ticks times. Cancellation is checked between
// ticks; a cancelled run returns its partial result with ctx.Err().
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if err := e.validateConfig(); err != nil {
		return nil, err
	}

	w := e.world
	capHint := e.cfg.Ticks/e.cfg.SampleInterval + 2
	result := &Result{
		Samples: make([]Sample, 0, capHint),
		Metrics: make(map[string]float64),
		Start:   w.Clock.Now(),
	}

	for _, m := range e.metrics {
		m.Reset()
	}

	startElapsed := w.Clock.Elapsed()
	result.Samples = append(result.Samples, e.sample(0, startElapsed))

	started := time.Now()
	var last sim.TickReport
	for i := 1; i <= e.cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			result.Cancelled = true
			e.finish(result, started)
			return result, ctx.Err()
		default:
		}

		t0 := time.Now()
		last = w.Tick(e.cfg.Step)
		if e.timer != nil {
			e.timer.RecordTickDuration(time.Since(t0))
		}
		result.Ticks++
		result.Frozen = append(result.Frozen, last.Frozen...)

		for _, m := range e.metrics {
			m.Observe(w, last)
		}
		for _, o := range e.observers {
			o.OnTick(w, last)
		}

		if i%e.cfg.SampleInterval == 0 || i == e.cfg.Ticks {
			result.Samples = append(result.Samples, e.sample(last.Tick, startElapsed))
		}
	}

	e.finish(result, started)
	return result, nil
}

func (e *Experiment) finish(r *Result, started time.Time) {
	r.End = e.world.Clock.Now()
	r.WallTime = time.Since(started)
	for _, m := range e.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}

func (e *Experiment) validateConfig() error {
	if e.world == nil {
		return fmt.Errorf("experiment: no world")
	}
	if e.cfg.Step <= 0 {
		return fmt.Errorf("experiment: step must be positive, got %v", e.cfg.Step)
	}
	if e.cfg.Ticks <= 0 {
		return fmt.Errorf("experiment: ticks must be positive, got %d", e.cfg.Ticks)
	}
	if e.cfg.SampleInterval <= 0 {
		return fmt.Errorf("experiment: sample interval must be positive, got %d", e.cfg.SampleInterval)
	}
	return nil
}

func (e *Experiment) sample(tick uint64, startElapsed float64) Sample {
	w := e.world
	s := Sample{
		Tick:    tick,
		Time:    w.Clock.Now(),
		Elapsed: w.Clock.Elapsed() - startElapsed,
		Energy:  w.Energy(),
	}
	w.Bodies.Each(func(ent ecs.Entity, b *component.PhysicsBody) {
		s.Bodies = append(s.Bodies, BodyState{
			Entity:   ent,
			Name:     w.Name(ent),
			Mass:     b.Mass,
			Position: b.Position,
			Velocity: b.Velocity,
			Frozen:   b.Frozen,
		})
	})
	return s
}

// RunAll runs independent experiments concurrently, one goroutine each.
// Experiments must not share a world.
func RunAll(ctx context.Context, exps []*Experiment) ([]*Result, error) {
	results := make([]*Result, len(exps))
	g, ctx := errgroup.WithContext(ctx)
	for i, exp := range exps {
		i, exp := i, exp
		g.Go(func() error {
			r, err := exp.Run(ctx)
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
