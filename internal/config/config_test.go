package config

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/orbsim/internal/astro"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scene != "sun-earth" {
		t.Errorf("expected scene sun-earth, got %s", cfg.Scene)
	}
	if cfg.Physics.G != astro.G {
		t.Errorf("expected G %g, got %g", astro.G, cfg.Physics.G)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero step", func(c *Config) { c.Step = 0 }},
		{"negative duration", func(c *Config) { c.DurationDays = -1 }},
		{"negative scale", func(c *Config) { c.Scale = -1 }},
		{"zero sample interval", func(c *Config) { c.SampleInterval = 0 }},
		{"zero G", func(c *Config) { c.Physics.G = 0 }},
		{"negative epsilon", func(c *Config) { c.Physics.Epsilon = -1 }},
		{"zero kepler iterations", func(c *Config) { c.Kepler.MaxIterations = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestTicks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Step = 1
	cfg.Scale = astro.SecondsPerDay
	cfg.DurationDays = 10
	if got := cfg.Ticks(); got != 10 {
		t.Errorf("expected 10 ticks, got %d", got)
	}

	cfg.DurationDays = 10.5
	if got := cfg.Ticks(); got != 11 {
		t.Errorf("expected partial tick rounded up to 11, got %d", got)
	}

	cfg.Scale = 0
	if got := cfg.Ticks(); got != 0 {
		t.Errorf("expected 0 ticks at zero scale, got %d", got)
	}

	if d := cfg.StepDuration(); d != time.Second {
		t.Errorf("expected 1s step, got %v", d)
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := DefaultConfig()
	cfg.Scene = "binary-star"
	cfg.Physics.MassThreshold = 1e20
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Scene != "binary-star" || loaded.Physics.MassThreshold != 1e20 {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
	if loaded.Kepler.MaxIterations != cfg.Kepler.MaxIterations {
		t.Errorf("expected kepler iterations %d, got %d", cfg.Kepler.MaxIterations, loaded.Kepler.MaxIterations)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("day-per-second")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Scale != astro.SecondsPerDay {
		t.Errorf("expected scale %v, got %v", astro.SecondsPerDay, cfg.Scale)
	}
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestApply(t *testing.T) {
	base := DefaultConfig()
	base.Scene = "inner-solar-system"

	cfg, ok := Apply(base, "survey")
	if !ok {
		t.Fatal("survey preset not applied")
	}
	if cfg.Scene != "inner-solar-system" || cfg.Scale != 3600 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if base.Scale == 3600 {
		t.Error("Apply modified its base config")
	}
	if _, ok := Apply(base, "warp"); ok {
		t.Error("unknown preset applied")
	}
	if len(ListPresets()) != len(Presets) {
		t.Error("ListPresets missing entries")
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LogConfig{Level: "debug", Format: "json"}.Logger(&buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("tick", "n", 1)
	if !strings.Contains(buf.String(), `"msg":"tick"`) {
		t.Errorf("expected JSON output, got %q", buf.String())
	}

	if _, err := (LogConfig{Format: "xml"}).Logger(&buf); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for xml format, got %v", err)
	}
}
