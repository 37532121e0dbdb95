package experiment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/san-kum/orbsim/internal/scene"
	"github.com/san-kum/orbsim/internal/sim"
)

func presetWorld(t *testing.T, name string) *sim.World {
	t.Helper()
	w := sim.NewWorld(32, sim.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	d, ok := scene.GetPreset(name)
	if !ok {
		t.Fatalf("no preset %q", name)
	}
	if _, err := scene.Replace(w, d); err != nil {
		t.Fatal(err)
	}
	if err := w.Clock.SetScale(3600); err != nil {
		t.Fatal(err)
	}
	return w
}

type countingTimer struct{ n int }

func (c *countingTimer) RecordTickDuration(time.Duration) { c.n++ }

func TestExperimentRun(t *testing.T) {
	w := presetWorld(t, "sun-earth")
	exp := New(w, Config{Step: time.Second, Ticks: 48, SampleInterval: 10})

	reg := NewRegistry()
	for _, m := range reg.DefaultMetrics() {
		exp.AddMetric(m)
	}
	observed := 0
	exp.AddObserver(sim.ObserverFunc(func(*sim.World, sim.TickReport) { observed++ }))
	timer := &countingTimer{}
	exp.SetTickTimer(timer)

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Ticks != 48 || observed != 48 || timer.n != 48 {
		t.Errorf("ticks=%d observed=%d timed=%d, want 48", result.Ticks, observed, timer.n)
	}
	// initial + every 10th tick + final
	if len(result.Samples) != 6 {
		t.Errorf("expected 6 samples, got %d", len(result.Samples))
	}
	last := result.Samples[len(result.Samples)-1]
	if last.Elapsed != 48*3600 {
		t.Errorf("final sample at %v s, want %v", last.Elapsed, 48*3600)
	}
	if len(last.Bodies) != 3 || last.Bodies[0].Name != "Sun" {
		t.Errorf("unexpected sampled bodies %+v", last.Bodies)
	}
	if result.End <= result.Start {
		t.Error("clock did not advance")
	}
	if d := result.Metrics["energy_drift"]; d > 1e-3 {
		t.Errorf("energy drift %g over two days", d)
	}
	if s := result.Metrics["stability"]; s != 1 {
		t.Errorf("stability = %v", s)
	}
}

func TestExperimentCancel(t *testing.T) {
	w := presetWorld(t, "binary-star")
	exp := New(w, Config{Step: time.Second, Ticks: 1000, SampleInterval: 1})

	ctx, cancel := context.WithCancel(context.Background())
	exp.AddObserver(sim.ObserverFunc(func(_ *sim.World, r sim.TickReport) {
		if r.Tick == 5 {
			cancel()
		}
	}))

	result, err := exp.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !result.Cancelled || result.Ticks != 5 {
		t.Errorf("cancelled=%v ticks=%d, want true/5", result.Cancelled, result.Ticks)
	}
}

func TestExperimentValidate(t *testing.T) {
	w := presetWorld(t, "binary-star")
	bad := []Config{
		{Step: 0, Ticks: 1, SampleInterval: 1},
		{Step: time.Second, Ticks: 0, SampleInterval: 1},
		{Step: time.Second, Ticks: 1, SampleInterval: 0},
	}
	for _, cfg := range bad {
		if _, err := New(w, cfg).Run(context.Background()); err == nil {
			t.Errorf("expected error for %+v", cfg)
		}
	}
}

func TestRunAll(t *testing.T) {
	exps := []*Experiment{
		New(presetWorld(t, "sun-earth"), Config{Step: time.Second, Ticks: 10, SampleInterval: 5}),
		New(presetWorld(t, "binary-star"), Config{Step: time.Second, Ticks: 20, SampleInterval: 5}),
	}
	results, err := RunAll(context.Background(), exps)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Ticks != 10 || results[1].Ticks != 20 {
		t.Errorf("ticks = %d, %d", results[0].Ticks, results[1].Ticks)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	for _, name := range r.ListMetrics() {
		m, err := r.GetMetric(name)
		if err != nil {
			t.Fatal(err)
		}
		if m.Name() != name {
			t.Errorf("metric %q reports name %q", name, m.Name())
		}
	}
	if _, err := r.GetMetric("entropy"); err == nil {
		t.Error("expected error for unknown metric")
	}
}
