package config

import (
	"sort"

	"github.com/san-kum/orbsim/internal/astro"
)

// Presets tune pacing for common runs. Scene and physics are taken from
// the base config.
var Presets = map[string]*Config{
	"realtime": {
		Step: 0.05, Scale: 1, DurationDays: 1.0 / 24, SampleInterval: 20,
	},
	"day-per-second": {
		Step: 0.05, Scale: astro.SecondsPerDay, DurationDays: 30, SampleInterval: 10,
	},
	"year-per-minute": {
		Step: 0.05, Scale: astro.SecondsPerDay * astro.DaysPerYear / 60, DurationDays: astro.DaysPerYear, SampleInterval: 5,
	},
	"survey": {
		Step: 1, Scale: 3600, DurationDays: 10 * astro.DaysPerYear, SampleInterval: 24,
	},
}

func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p
}

// Apply returns a copy of base with the preset's pacing.
func Apply(base *Config, name string) (*Config, bool) {
	p := GetPreset(name)
	if p == nil {
		return base, false
	}
	cfg := *base
	cfg.Step = p.Step
	cfg.Scale = p.Scale
	cfg.DurationDays = p.DurationDays
	cfg.SampleInterval = p.SampleInterval
	return &cfg, true
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
