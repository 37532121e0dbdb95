package scene

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/orbsim/internal/astro"
	"github.com/san-kum/orbsim/internal/component"
	"github.com/san-kum/orbsim/internal/orbit"
	"github.com/san-kum/orbsim/internal/sim"
	"github.com/san-kum/orbsim/internal/vmath"
)

func quietWorld() *sim.World {
	return sim.NewWorld(32, sim.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestPresetsBuild(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			d, ok := GetPreset(name)
			if !ok {
				t.Fatalf("preset %q missing", name)
			}
			w := quietWorld()
			res, err := Replace(w, d)
			if err != nil {
				t.Fatalf("Replace: %v", err)
			}
			if len(res.Entities) != len(d.Bodies) {
				t.Errorf("created %d entities for %d bodies", len(res.Entities), len(d.Bodies))
			}
			if len(res.Approximate) != 0 {
				t.Errorf("unexpected approximate bodies %v", res.Approximate)
			}
			for i := 0; i < 10; i++ {
				if r := w.Tick(time.Second); len(r.Frozen) != 0 {
					t.Fatalf("tick froze %v", r.Frozen)
				}
			}
		})
	}

	if _, ok := GetPreset("nope"); ok {
		t.Error("unknown preset resolved")
	}
}

func TestSunEarthCompoundsStates(t *testing.T) {
	w := quietWorld()
	d, _ := GetPreset("sun-earth")
	res, err := Replace(w, d)
	if err != nil {
		t.Fatal(err)
	}
	if w.Clock.Now() != astro.J2000 {
		t.Errorf("clock not reset to the scene epoch: %v", w.Clock.Now())
	}

	earth, _ := w.StateVector(res.Entities["Earth"])
	moon, _ := w.StateVector(res.Entities["Moon"])

	if r := earth.Position.Len() / astro.AU; math.Abs(r-1) > 0.02 {
		t.Errorf("Earth at %g AU", r)
	}
	if r := moon.Position.Sub(earth.Position).Len(); r < 3.6e8 || r > 4.1e8 {
		t.Errorf("Moon %g m from Earth", r)
	}
	rel := moon.Velocity.Sub(earth.Velocity).Len()
	if rel < 900 || rel > 1100 {
		t.Errorf("Moon relative speed %g m/s", rel)
	}
}

func TestOrbitsKeepReference(t *testing.T) {
	w := quietWorld()
	d, _ := GetPreset("sun-earth")
	if _, err := Replace(w, d); err != nil {
		t.Fatal(err)
	}
	res, err := Replace(w, d)
	if err != nil {
		t.Fatal(err)
	}
	if w.Orbits.Len() != 2 {
		t.Fatalf("%d orbits after rebuilding, want 2", w.Orbits.Len())
	}
	if w.Orbits.Has(res.Entities["Sun"]) {
		t.Error("Sun has no orbit but one was stored")
	}

	tests := []struct {
		body, ref string
	}{
		{"Earth", "Sun"},
		{"Moon", "Earth"},
	}
	conv := orbit.NewConverter()
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			e := res.Entities[tt.body]
			el, ok := w.Orbits.Get(e)
			if !ok {
				t.Fatalf("no orbit stored for %s", tt.body)
			}
			if el.Reference != res.Entities[tt.ref] || !w.Entities.IsAlive(el.Reference) {
				t.Errorf("reference = %v, want live %s %v", el.Reference, tt.ref, res.Entities[tt.ref])
			}

			initial, current, err := w.Osculating(e, conv)
			if err != nil {
				t.Fatal(err)
			}
			if initial != el {
				t.Errorf("Osculating initial = %+v, want %+v", initial, el)
			}
			if math.Abs(current.SemiMajorAxis/initial.SemiMajorAxis-1) > 1e-6 ||
				math.Abs(current.Eccentricity-initial.Eccentricity) > 1e-6 {
				t.Errorf("osculating a=%g e=%g at epoch, seeded a=%g e=%g",
					current.SemiMajorAxis, current.Eccentricity, initial.SemiMajorAxis, initial.Eccentricity)
			}
		})
	}
}

func TestDependencyOrder(t *testing.T) {
	d := Description{
		Bodies: []Body{
			{Name: "probe", Orbit: &Orbit{Reference: "planet", SemiMajorAxis: 1e7}},
			{Name: "marker", Parent: "probe", Offset: &vmath.Vec3{X: 10}},
			{Name: "planet", Mass: astro.EarthMass},
		},
	}
	w := quietWorld()
	res, err := Build(w, d)
	if err != nil {
		t.Fatal(err)
	}

	pos := map[string]int{}
	for i, name := range res.Order {
		pos[name] = i
	}
	if !(pos["planet"] < pos["probe"] && pos["probe"] < pos["marker"]) {
		t.Errorf("order %v does not respect dependencies", res.Order)
	}

	if w.Bodies.Has(res.Entities["marker"]) {
		t.Error("parented body received a PhysicsBody")
	}
	w.Tick(0)
	probe, _ := w.Transform(res.Entities["probe"])
	marker, _ := w.Transform(res.Entities["marker"])
	want := probe.World.TranslationPart().Add(vmath.Vec3{X: 10})
	if got := marker.World.TranslationPart(); got.Sub(want).Len() > 1e-6 {
		t.Errorf("marker at %+v, want %+v", got, want)
	}

	md, _ := w.Metadata.Get(res.Entities["probe"])
	if md.Name != "probe" || md.Kind != component.KindOther {
		t.Errorf("metadata = %+v", md)
	}
}

func TestBuildRejects(t *testing.T) {
	sunBody := Body{Name: "Sun", Mass: astro.SolarMass}
	orbiting := func(o Orbit) Body {
		if o.SemiMajorAxis == 0 {
			o.SemiMajorAxis = astro.AU
		}
		if o.Reference == "" {
			o.Reference = "Sun"
		}
		return Body{Name: "p", Orbit: &o}
	}

	tests := []struct {
		name   string
		bodies []Body
		target error
	}{
		{"empty", nil, ErrInvalidScene},
		{"unnamed", []Body{{Mass: 1}}, ErrInvalidScene},
		{"duplicate", []Body{sunBody, sunBody}, ErrInvalidScene},
		{"negative mass", []Body{{Name: "x", Mass: -1}}, ErrInvalidScene},
		{"NaN mass", []Body{{Name: "x", Mass: math.NaN()}}, ErrInvalidScene},
		{"unknown reference", []Body{orbiting(Orbit{Reference: "Vulcan"})}, ErrUnknownBody},
		{"unknown parent", []Body{{Name: "x", Parent: "nobody"}}, ErrUnknownBody},
		{"massless reference", []Body{{Name: "Sun"}, orbiting(Orbit{})}, ErrInvalidScene},
		{"orbit and state", []Body{sunBody, {Name: "p", Orbit: &Orbit{Reference: "Sun", SemiMajorAxis: 1}, State: &State{}}}, ErrInvalidScene},
		{"parented with state", []Body{sunBody, {Name: "p", Parent: "Sun", State: &State{}}}, ErrInvalidScene},
		{"parent cycle", []Body{{Name: "a", Parent: "b"}, {Name: "b", Parent: "a"}}, ErrCycle},
		{"open orbit", []Body{sunBody, orbiting(Orbit{Eccentricity: 1})}, orbit.ErrInvalidElements},
		{"negative axis", []Body{sunBody, orbiting(Orbit{SemiMajorAxis: -1})}, orbit.ErrInvalidElements},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := quietWorld()
			res, err := Build(w, Description{Bodies: tt.bodies})
			if err == nil {
				t.Fatalf("Build succeeded with %v", res.Order)
			}
			if !errors.Is(err, tt.target) {
				t.Errorf("err = %v, want %v", err, tt.target)
			}
			if !errors.Is(err, ErrInvalidScene) {
				t.Errorf("err = %v does not match ErrInvalidScene", err)
			}
			if w.Entities.Len() != 0 {
				t.Errorf("failed build left %d entities", w.Entities.Len())
			}
		})
	}
}

func TestReplaceKeepsWorldOnError(t *testing.T) {
	w := quietWorld()
	d, _ := GetPreset("binary-star")
	res, err := Replace(w, d)
	if err != nil {
		t.Fatal(err)
	}
	w.Tick(time.Second)
	before := w.Clock.Now()

	bad := Description{Bodies: []Body{{Name: "x", Mass: -5}}}
	if _, err := Replace(w, bad); err == nil {
		t.Fatal("expected error")
	}
	if w.Entities.Len() != 2 || w.Clock.Now() != before {
		t.Error("invalid Replace modified the world")
	}

	other, _ := GetPreset("sun-earth")
	if _, err := Replace(w, other); err != nil {
		t.Fatal(err)
	}
	for name, e := range res.Entities {
		if w.Entities.IsAlive(e) {
			t.Errorf("%s survived Replace", name)
		}
	}
}

func TestBinaryStarMomentum(t *testing.T) {
	w := quietWorld()
	d, _ := GetPreset("binary-star")
	if _, err := Replace(w, d); err != nil {
		t.Fatal(err)
	}
	_, bodies := w.FreeBodies()
	var p vmath.Vec3
	for _, b := range bodies {
		p = p.Add(b.Velocity.Scale(b.Mass))
	}
	if p.Len() > 1e-6*astro.SolarMass {
		t.Errorf("binary has net momentum %g", p.Len())
	}
	if w.Lights.Len() != 2 {
		t.Errorf("expected both stars to emit, got %d lights", w.Lights.Len())
	}
}

func TestParseAndSave(t *testing.T) {
	doc := `
name: tiny
epoch: 2451545.0
bodies:
  - name: Sun
    kind: star
    mass: 1.98847e30
  - name: Rock
    kind: asteroid
    mass: 0
    spin:
      axis: {x: 0, y: 0, z: 1}
      period_days: 0.5
    orbit:
      reference: Sun
      semi_major_axis: 3.0e11
      eccentricity: 0.1
      inclination: 10
      mean_anomaly: 90
`
	d, err := Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	if d.Bodies[0].Kind != component.KindStar || d.Bodies[1].Kind != component.KindAsteroid {
		t.Errorf("kinds = %v, %v", d.Bodies[0].Kind, d.Bodies[1].Kind)
	}
	el := d.Bodies[1].Orbit.Elements(d.EpochJD(), astro.SolarMass, astro.G)
	if math.Abs(el.Inclination-10*math.Pi/180) > 1e-12 {
		t.Errorf("inclination not converted to radians: %v", el.Inclination)
	}
	if el.SiderealPeriod <= 0 {
		t.Error("period not derived from the reference mass")
	}

	path := filepath.Join(t.TempDir(), "tiny.yaml")
	if err := Save(path, d); err != nil {
		t.Fatal(err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.Name != "tiny" || len(back.Bodies) != 2 || back.Bodies[1].Spin.PeriodDays != 0.5 {
		t.Errorf("round trip lost data: %+v", back)
	}
	if err := Validate(back); err != nil {
		t.Errorf("Validate: %v", err)
	}

	if _, err := Parse([]byte("bodies: [")); err == nil {
		t.Error("expected parse error")
	}
}
