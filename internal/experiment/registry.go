package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/orbsim/internal/astro"
	"github.com/san-kum/orbsim/internal/metrics"
	"github.com/san-kum/orbsim/internal/sim"
)

// Registry resolves metric names used on the command line.
type Registry struct {
	metrics map[string]func() sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{metrics: make(map[string]func() sim.Metric)}

	r.metrics["energy"] = func() sim.Metric { return metrics.NewEnergy() }
	r.metrics["energy_drift"] = func() sim.Metric { return metrics.NewEnergyDrift() }
	r.metrics["angular_momentum_drift"] = func() sim.Metric { return metrics.NewAngularMomentumDrift() }
	r.metrics["stability"] = func() sim.Metric { return metrics.NewStability(100 * astro.AU) }

	return r
}

func (r *Registry) GetMetric(name string) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []sim.Metric {
	return []sim.Metric{
		metrics.NewEnergyDrift(),
		metrics.NewAngularMomentumDrift(),
		metrics.NewStability(100 * astro.AU),
	}
}
