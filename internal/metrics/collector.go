package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/orbsim/internal/sim"
)

// Collector exports per-tick simulation metrics to Prometheus.
type Collector struct {
	ticks        prometheus.Counter
	simulated    prometheus.Counter
	frozen       prometheus.Counter
	bodies       prometheus.Gauge
	julianDate   prometheus.Gauge
	energyDrift  prometheus.Gauge
	tickDuration prometheus.Histogram

	gatherer prometheus.Gatherer
}

// NewCollector registers the simulation metrics with reg. A nil reg uses a
// fresh registry.
func NewCollector(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	c := &Collector{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orbsim_ticks_total",
			Help: "Total number of simulation ticks",
		}),
		simulated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orbsim_simulated_seconds_total",
			Help: "Simulated time advanced, in seconds",
		}),
		frozen: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orbsim_frozen_bodies_total",
			Help: "Bodies frozen after a non-finite state",
		}),
		bodies: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orbsim_integrated_bodies",
			Help: "Bodies moved by the integrator in the last tick",
		}),
		julianDate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orbsim_julian_date",
			Help: "Current simulated Julian date",
		}),
		energyDrift: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orbsim_energy_drift_ratio",
			Help: "Relative drift of total energy from the start of the run",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "orbsim_tick_duration_seconds",
			Help:    "Wall time spent in a tick",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		gatherer: reg,
	}
	reg.MustRegister(c.ticks, c.simulated, c.frozen, c.bodies, c.julianDate, c.energyDrift, c.tickDuration)
	return c
}

func (c *Collector) OnTick(w *sim.World, r sim.TickReport) {
	c.ticks.Inc()
	if r.Dt > 0 {
		c.simulated.Add(r.Dt)
	}
	c.frozen.Add(float64(len(r.Frozen)))
	c.bodies.Set(float64(r.Integrated))
	c.julianDate.Set(float64(r.Now))
}

func (c *Collector) RecordTickDuration(d time.Duration) {
	c.tickDuration.Observe(d.Seconds())
}

func (c *Collector) SetEnergyDrift(v float64) {
	c.energyDrift.Set(v)
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
