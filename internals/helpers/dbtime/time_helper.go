// file: internals/helpers/dbtime/time_helper.go
package dbtime

import (
	"time"
	_ "time/tzdata"
)

// Clock is injected wherever "now" matters so tests can pin it.
type Clock func() time.Time

func SystemClock() time.Time { return time.Now() }

// LoadLocation falls back to UTC when the zone database lacks name.
func LoadLocation(name string) *time.Location {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.UTC
}

// StartOfDay is 00:00:00 of t's wall-clock day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay is the last representable instant of t's wall-clock day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// PreviousDayEnd is EndOfDay(today - 1 day) in loc.
func PreviousDayEnd(now time.Time, loc *time.Location) time.Time {
	return StartOfDay(now, loc).Add(-time.Nanosecond)
}

// MonthStart is the first day of the calendar month that is offset months away from t.
func MonthStart(t time.Time, offset int, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month()+time.Month(offset), 1, 0, 0, 0, 0, loc)
}

// Later returns the later of a and b.
func Later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
