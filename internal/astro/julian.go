package astro

import (
	"fmt"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// JulianDate is a continuous day count. The simulation clock and every
// StateVector epoch are expressed in it.
type JulianDate float64

// FromTime converts a wall-clock instant. No UTC/TT correction is applied.
func FromTime(t time.Time) JulianDate {
	return JulianDate(julian.TimeToJD(t))
}

// FromCalendar converts a Gregorian calendar date with fractional day.
func FromCalendar(year, month int, day float64) JulianDate {
	return JulianDate(julian.CalendarGregorianToJD(year, month, day))
}

func (jd JulianDate) Time() time.Time {
	return julian.JDToTime(float64(jd))
}

// AddSeconds returns jd advanced by s simulated seconds.
func (jd JulianDate) AddSeconds(s float64) JulianDate {
	return jd + JulianDate(s/SecondsPerDay)
}

// SecondsSince returns the elapsed simulated seconds from o to jd.
func (jd JulianDate) SecondsSince(o JulianDate) float64 {
	return float64(jd-o) * SecondsPerDay
}

func (jd JulianDate) String() string {
	return fmt.Sprintf("JD %.6f", float64(jd))
}
