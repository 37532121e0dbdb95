package sim

import (
	"github.com/san-kum/orbsim/internal/astro"
	"github.com/san-kum/orbsim/internal/ecs"
)

// TickReport summarises one call to World.Tick.
type TickReport struct {
	Tick       uint64
	Dt         float64 // simulated seconds
	Now        astro.JulianDate
	Integrated int          // bodies the integrator moved
	Frozen     []ecs.Entity // bodies frozen during this tick
}

type Observer interface {
	OnTick(w *World, r TickReport)
}

type ObserverFunc func(w *World, r TickReport)

func (f ObserverFunc) OnTick(w *World, r TickReport) { f(w, r) }

// Metric accumulates a scalar over a run.
type Metric interface {
	Name() string
	Observe(w *World, r TickReport)
	Value() float64
	Reset()
}
