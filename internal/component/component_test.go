package component

import (
	"math"
	"testing"

	"github.com/san-kum/orbsim/internal/astro"
	"github.com/san-kum/orbsim/internal/vmath"
)

func TestSpinAngle(t *testing.T) {
	day := astro.SecondsPerDay
	s := Spin{Axis: vmath.Vec3{Z: 1}, Period: day, Epoch: astro.J2000}

	tests := []struct {
		name string
		at   astro.JulianDate
		want float64
	}{
		{"epoch", astro.J2000, 0},
		{"quarter", astro.J2000 + 0.25, math.Pi / 2},
		{"full turn wraps", astro.J2000 + 1.5, math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Angle(tt.at); math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Angle() = %v, want %v", got, tt.want)
			}
		})
	}

	still := Spin{Axis: vmath.Vec3{Z: 1}, Phase: 0.3}
	if got := still.Angle(astro.J2000 + 10); got != 0.3 {
		t.Errorf("zero period Angle() = %v, want 0.3", got)
	}
}

func TestSpinAngleAt(t *testing.T) {
	s := Spin{Axis: vmath.Vec3{Z: 1}, Period: 4, Epoch: astro.J2000, Phase: math.Pi / 2}

	tests := []struct {
		sec  float64
		want float64
	}{
		{0, math.Pi / 2},
		{1, math.Pi},
		{3, 0},
		{4.5, math.Pi},
	}
	for _, tt := range tests {
		if got := s.AngleAt(tt.sec); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("AngleAt(%v) = %v, want %v", tt.sec, got, tt.want)
		}
	}
}

func TestSpinRotation(t *testing.T) {
	s := Spin{Axis: vmath.Vec3{Z: 1}, Period: 4, Epoch: astro.J2000}
	p := s.RotationAt(1).TransformPoint(vmath.Vec3{X: 1})
	if math.Abs(p.X) > 1e-12 || math.Abs(p.Y-1) > 1e-12 {
		t.Errorf("quarter turn of +X = %+v, want +Y", p)
	}

	// One second is below what a Julian date near J2000 resolves exactly.
	q := s.Rotation(astro.J2000.AddSeconds(1)).TransformPoint(vmath.Vec3{X: 1})
	if math.Abs(q.X) > 1e-4 || math.Abs(q.Y-1) > 1e-4 {
		t.Errorf("quarter turn of +X by date = %+v, want +Y", q)
	}
}

func TestBodyKindText(t *testing.T) {
	for k := KindOther; k <= KindBarycenter; k++ {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got BodyKind
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", b, err)
		}
		if got != k {
			t.Errorf("kind %v round-tripped to %v", k, got)
		}
	}

	if k, err := ParseBodyKind(" Planet "); err != nil || k != KindPlanet {
		t.Errorf("ParseBodyKind(\" Planet \") = %v, %v", k, err)
	}
	if _, err := ParseBodyKind("nebula"); err == nil {
		t.Error("expected error for unknown kind")
	}
	if BodyKind(42).String() != "kind(42)" {
		t.Errorf("unexpected String() for out-of-range kind")
	}
}

func TestNewTransform(t *testing.T) {
	tr := NewTransform()
	if tr.Local != vmath.Identity() || tr.World != vmath.Identity() {
		t.Error("expected identity matrices")
	}
	if !tr.Parent.IsNil() {
		t.Error("expected no parent")
	}
}
