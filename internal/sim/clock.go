package sim

import (
	"math"
	"time"

	"github.com/san-kum/orbsim/internal/astro"
)

// Clock maps wall time onto simulated time. The current date is kept as an
// epoch plus elapsed seconds so that long runs do not accumulate rounding in
// the Julian day count.
type Clock struct {
	epoch   astro.JulianDate
	elapsed float64 // s
	scale   float64
	paused  bool
}

func NewClock(start astro.JulianDate, scale float64) *Clock {
	c := &Clock{epoch: start, scale: 1}
	if finiteNonNegative(scale) {
		c.scale = scale
	}
	return c
}

// Advance moves the clock forward by wall·scale simulated seconds and returns
// that amount. A paused clock does not move and returns 0.
func (c *Clock) Advance(wall time.Duration) float64 {
	if c.paused || wall <= 0 {
		return 0
	}
	dt := wall.Seconds() * c.scale
	c.elapsed += dt
	return dt
}

func (c *Clock) Now() astro.JulianDate { return c.epoch.AddSeconds(c.elapsed) }
func (c *Clock) Epoch() astro.JulianDate { return c.epoch }

// Elapsed returns simulated seconds since the epoch.
func (c *Clock) Elapsed() float64 { return c.elapsed }

// SecondsSince returns simulated seconds from jd to now without rounding the
// current time through a Julian date. It is exact when jd is the epoch.
func (c *Clock) SecondsSince(jd astro.JulianDate) float64 {
	return c.elapsed + c.epoch.SecondsSince(jd)
}

func (c *Clock) Scale() float64 { return c.scale }

func (c *Clock) SetScale(s float64) error {
	if !finiteNonNegative(s) {
		return ErrInvalidScale
	}
	c.scale = s
	return nil
}

func (c *Clock) Pause()       { c.paused = true }
func (c *Clock) Resume()      { c.paused = false }
func (c *Clock) Paused() bool { return c.paused }

// Toggle flips the paused state and reports whether the clock is now paused.
func (c *Clock) Toggle() bool {
	c.paused = !c.paused
	return c.paused
}

// Reset restarts the clock at epoch. Scale and pause state are kept.
func (c *Clock) Reset(epoch astro.JulianDate) {
	c.epoch = epoch
	c.elapsed = 0
}

func finiteNonNegative(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f >= 0
}
