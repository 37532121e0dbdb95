package sim

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/san-kum/orbsim/internal/astro"
)

func TestClockAdvance(t *testing.T) {
	tests := []struct {
		name   string
		scale  float64
		paused bool
		wall   time.Duration
		want   float64
	}{
		{"realtime", 1, false, time.Second, 1},
		{"day per second", astro.SecondsPerDay, false, 500 * time.Millisecond, astro.SecondsPerDay / 2},
		{"paused", 1000, true, time.Second, 0},
		{"zero scale", 0, false, time.Second, 0},
		{"negative wall", 1, false, -time.Second, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClock(astro.J2000, tt.scale)
			if tt.paused {
				c.Pause()
			}
			got := c.Advance(tt.wall)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Advance() = %v, want %v", got, tt.want)
			}
			if math.Abs(c.Elapsed()-tt.want) > 1e-9 {
				t.Errorf("Elapsed() = %v, want %v", c.Elapsed(), tt.want)
			}
		})
	}
}

func TestClockNow(t *testing.T) {
	c := NewClock(astro.J2000, astro.SecondsPerDay)
	for i := 0; i < 10; i++ {
		c.Advance(time.Second)
	}
	if got := c.Now(); math.Abs(float64(got-(astro.J2000+10))) > 1e-9 {
		t.Errorf("Now() = %v, want J2000+10d", got)
	}

	c.Reset(astro.J2000 + 100)
	if c.Now() != astro.J2000+100 || c.Elapsed() != 0 {
		t.Errorf("Reset did not restart at the new epoch: %v, %v", c.Now(), c.Elapsed())
	}
	if c.Scale() != astro.SecondsPerDay {
		t.Error("Reset changed the scale")
	}
}

func TestClockSecondsSince(t *testing.T) {
	c := NewClock(astro.J2000, 1)
	c.Advance(time.Second)

	if got := c.SecondsSince(astro.J2000); got != 1 {
		t.Errorf("SecondsSince(epoch) = %v, want exactly 1", got)
	}
	if got := c.SecondsSince(astro.J2000 - 1); math.Abs(got-(astro.SecondsPerDay+1)) > 1e-3 {
		t.Errorf("SecondsSince(epoch-1d) = %v, want %v", got, astro.SecondsPerDay+1)
	}
}

func TestClockPauseResume(t *testing.T) {
	c := NewClock(astro.J2000, 10)

	if !c.Toggle() || !c.Paused() {
		t.Fatal("Toggle should pause a running clock")
	}
	if dt := c.Advance(time.Second); dt != 0 {
		t.Errorf("paused Advance() = %v", dt)
	}
	c.Resume()
	if dt := c.Advance(time.Second); dt != 10 {
		t.Errorf("resumed Advance() = %v, want 10", dt)
	}
	c.Pause()
	if c.Toggle() {
		t.Error("Toggle should resume a paused clock")
	}
}

func TestClockSetScale(t *testing.T) {
	c := NewClock(astro.J2000, 1)
	for _, bad := range []float64{-1, math.NaN(), math.Inf(1)} {
		if err := c.SetScale(bad); !errors.Is(err, ErrInvalidScale) {
			t.Errorf("SetScale(%v) = %v, want ErrInvalidScale", bad, err)
		}
	}
	if c.Scale() != 1 {
		t.Errorf("rejected scale changed the clock: %v", c.Scale())
	}
	if err := c.SetScale(60); err != nil || c.Scale() != 60 {
		t.Errorf("SetScale(60) = %v, scale %v", err, c.Scale())
	}

	if NewClock(astro.J2000, math.NaN()).Scale() != 1 {
		t.Error("NewClock should fall back to realtime for an invalid scale")
	}
}
