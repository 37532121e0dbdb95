package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/orbsim/internal/astro"
	"github.com/san-kum/orbsim/internal/orbit"
	"github.com/san-kum/orbsim/internal/physics"
)

const (
	DefaultScene          = "sun-earth"
	DefaultStep           = 0.05 // wall seconds per tick
	DefaultDurationDays   = 365.25
	DefaultScale          = astro.SecondsPerDay * 20 // 1 s wall = 20 days
	DefaultSampleInterval = 10
	DefaultMetricsAddr    = ""
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Scene          string        `yaml:"scene"`
	Step           float64       `yaml:"step"`
	DurationDays   float64       `yaml:"duration_days"`
	Scale          float64       `yaml:"scale"`
	Epoch          float64       `yaml:"epoch,omitempty"`
	SampleInterval int           `yaml:"sample_interval"`
	Physics        PhysicsConfig `yaml:"physics"`
	Kepler         KeplerConfig  `yaml:"kepler"`
	Log            LogConfig     `yaml:"log"`
	MetricsAddr    string        `yaml:"metrics_addr,omitempty"`
}

type PhysicsConfig struct {
	G             float64 `yaml:"g"`
	Epsilon       float64 `yaml:"epsilon"`
	MassThreshold float64 `yaml:"mass_threshold"`
}

type KeplerConfig struct {
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		Scene:          DefaultScene,
		Step:           DefaultStep,
		DurationDays:   DefaultDurationDays,
		Scale:          DefaultScale,
		SampleInterval: DefaultSampleInterval,
		Physics: PhysicsConfig{
			G:       astro.G,
			Epsilon: physics.DefaultEpsilon,
		},
		Kepler: KeplerConfig{
			MaxIterations: orbit.DefaultMaxIterations,
			Tolerance:     orbit.DefaultTolerance,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Step <= 0:
		return fmt.Errorf("%w: step must be positive, got %v", ErrInvalidConfig, c.Step)
	case c.DurationDays <= 0:
		return fmt.Errorf("%w: duration_days must be positive, got %v", ErrInvalidConfig, c.DurationDays)
	case c.Scale < 0:
		return fmt.Errorf("%w: scale must be non-negative, got %v", ErrInvalidConfig, c.Scale)
	case c.SampleInterval <= 0:
		return fmt.Errorf("%w: sample_interval must be positive, got %d", ErrInvalidConfig, c.SampleInterval)
	case c.Physics.G <= 0:
		return fmt.Errorf("%w: physics.g must be positive, got %v", ErrInvalidConfig, c.Physics.G)
	case c.Physics.Epsilon < 0 || c.Physics.MassThreshold < 0:
		return fmt.Errorf("%w: physics.epsilon and physics.mass_threshold must be non-negative", ErrInvalidConfig)
	case c.Kepler.MaxIterations <= 0 || c.Kepler.Tolerance <= 0:
		return fmt.Errorf("%w: kepler limits must be positive", ErrInvalidConfig)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// StepDuration is the wall time fed to each tick.
func (c *Config) StepDuration() time.Duration {
	return time.Duration(c.Step * float64(time.Second))
}

// Ticks is the number of ticks needed to cover the configured duration.
func (c *Config) Ticks() int {
	perTick := c.Step * c.Scale
	if perTick <= 0 {
		return 0
	}
	n := astro.Days(c.DurationDays) / perTick
	if n != float64(int(n)) {
		n++
	}
	return int(n)
}

func (c *Config) Integrator() *physics.NBody {
	nb := physics.NewNBody()
	nb.G = c.Physics.G
	nb.Epsilon = c.Physics.Epsilon
	nb.MassThreshold = c.Physics.MassThreshold
	return nb
}

func (c *Config) Converter(logger *slog.Logger) *orbit.Converter {
	return orbit.NewConverter(
		orbit.WithGravitationalConstant(c.Physics.G),
		orbit.WithKepler(c.Kepler.MaxIterations, c.Kepler.Tolerance),
		orbit.WithLogger(logger),
	)
}

// Logger builds a slog logger writing to w.
func (l LogConfig) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(l.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("%w: log format %q", ErrInvalidConfig, l.Format)
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("%w: log level %q", ErrInvalidConfig, s)
	}
	return level, nil
}
