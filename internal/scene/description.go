// Package scene describes initial conditions for a simulation and builds
// them into a sim.World.
package scene

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/orbsim/internal/astro"
	"github.com/san-kum/orbsim/internal/component"
	"github.com/san-kum/orbsim/internal/ecs"
	"github.com/san-kum/orbsim/internal/orbit"
	"github.com/san-kum/orbsim/internal/vmath"
)

// Description is the on-disk form of a scene. Lengths are metres, masses
// kilograms, angles degrees and periods days.
type Description struct {
	Name   string  `yaml:"name"`
	Epoch  float64 `yaml:"epoch,omitempty"` // JD; zero means J2000
	Bodies []Body  `yaml:"bodies"`
}

type Body struct {
	Name       string             `yaml:"name"`
	Kind       component.BodyKind `yaml:"kind"`
	Mass       float64            `yaml:"mass"`
	Radius     float64            `yaml:"radius,omitempty"`
	Visual     string             `yaml:"visual,omitempty"`
	Brightness float64            `yaml:"brightness,omitempty"`
	Spin       *Spin              `yaml:"spin,omitempty"`

	// A parented body is placed at Offset in its parent's frame and is not
	// integrated.
	Parent string      `yaml:"parent,omitempty"`
	Offset *vmath.Vec3 `yaml:"offset,omitempty"`

	// At most one of Orbit and State seeds a free body; with neither it
	// starts at rest at the origin.
	Orbit *Orbit `yaml:"orbit,omitempty"`
	State *State `yaml:"state,omitempty"`
}

type Spin struct {
	Axis       vmath.Vec3 `yaml:"axis"`
	PeriodDays float64    `yaml:"period_days"`
	Phase      float64    `yaml:"phase,omitempty"` // deg at the scene epoch
}

type Orbit struct {
	Reference           string  `yaml:"reference"`
	Epoch               float64 `yaml:"epoch,omitempty"` // JD; zero means the scene epoch
	SemiMajorAxis       float64 `yaml:"semi_major_axis"`
	Eccentricity        float64 `yaml:"eccentricity"`
	Inclination         float64 `yaml:"inclination"`
	AscendingNode       float64 `yaml:"longitude_of_ascending_node"`
	ArgumentOfPeriapsis float64 `yaml:"argument_of_periapsis"`
	MeanAnomaly         float64 `yaml:"mean_anomaly"`

	// PeriodDays is derived from the reference mass when zero.
	PeriodDays float64 `yaml:"period_days,omitempty"`
}

type State struct {
	Position vmath.Vec3 `yaml:"position"`
	Velocity vmath.Vec3 `yaml:"velocity"`
}

func (d Description) EpochJD() astro.JulianDate {
	if d.Epoch == 0 {
		return astro.J2000
	}
	return astro.JulianDate(d.Epoch)
}

// Elements converts o to radians and seconds. The reference entity is set
// when the body is added to a world.
func (o Orbit) Elements(sceneEpoch astro.JulianDate, referenceMass, g float64) orbit.Elements {
	epoch := sceneEpoch
	if o.Epoch != 0 {
		epoch = astro.JulianDate(o.Epoch)
	}
	period := astro.Days(o.PeriodDays)
	if o.PeriodDays == 0 && referenceMass > 0 && o.SemiMajorAxis > 0 {
		period = orbit.Period(o.SemiMajorAxis, g*referenceMass)
	}
	return orbit.Elements{
		Reference:                ecs.Nil,
		Epoch:                    epoch,
		SemiMajorAxis:            o.SemiMajorAxis,
		Eccentricity:             o.Eccentricity,
		Inclination:              deg(o.Inclination),
		LongitudeOfAscendingNode: deg(o.AscendingNode),
		ArgumentOfPeriapsis:      deg(o.ArgumentOfPeriapsis),
		MeanAnomaly:              deg(o.MeanAnomaly),
		SiderealPeriod:           period,
	}
}

func deg(d float64) float64 { return d * math.Pi / 180 }

func Load(path string) (Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Description{}, err
	}
	return Parse(data)
}

func Parse(data []byte) (Description, error) {
	var d Description
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Description{}, fmt.Errorf("scene: parse: %w", err)
	}
	return d, nil
}

func Save(path string, d Description) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
