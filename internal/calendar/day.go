package calendar

import (
	"fmt"
	"time"
)

// Layout is the wire format of a Day.
const Layout = "2006-01-02"

// Day is a calendar date with no time-of-day or zone attached.
// The zero value is not a valid day; use IsZero to detect it.
type Day struct {
	year  int
	month time.Month
	day   int
}

// NewDay builds a Day, normalizing out-of-range values the way time.Date does
// (e.g. February 30 becomes March 2).
func NewDay(year int, month time.Month, day int) Day {
	return FromDate(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// NormalizeToDay returns the calendar day that instant t falls on in loc.
// A nil loc means UTC.
func NormalizeToDay(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	return FromDate(t.In(loc))
}

// FromDate takes the date fields of t as they are, without converting zones.
// Use it for values that already represent a date (e.g. a scanned DATE column).
func FromDate(t time.Time) Day {
	y, m, d := t.Date()
	return Day{year: y, month: m, day: d}
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q: %w", s, err)
	}
	return FromDate(t), nil
}

func (d Day) IsZero() bool { return d == Day{} }

func (d Day) Year() int { return d.year }
func (d Day) Month() time.Month { return d.month }
func (d Day) DayOfMonth() int { return d.day }
func (d Day) Weekday() time.Weekday { return d.Time().Weekday() }

// Time returns midnight UTC of the day.
func (d Day) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// AddDays moves n days forward (or backward when n is negative).
func (d Day) AddDays(n int) Day {
	return FromDate(d.Time().AddDate(0, 0, n))
}

// AddDate mirrors time.Time.AddDate, including its overflow normalization.
func (d Day) AddDate(years, months, days int) Day {
	return FromDate(d.Time().AddDate(years, months, days))
}

// DaysSince returns the number of whole days from other to d.
func (d Day) DaysSince(other Day) int {
	return int(d.Time().Sub(other.Time()) / (24 * time.Hour))
}

func (d Day) Before(other Day) bool { return d.Time().Before(other.Time()) }
func (d Day) After(other Day) bool { return d.Time().After(other.Time()) }

func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(Layout)
}

func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Day) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Day{}
		return nil
	}
	parsed, err := ParseDay(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
