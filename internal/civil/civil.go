// Package civil normalizes instants into timezone-correct calendar
// values. A date key (YYYY-MM-DD in a specific zone) is the unit of
// "same day" comparison everywhere in the analytics core; two instants
// that fall on the same civil day in a zone always produce identical
// keys.
package civil

import (
	"fmt"
	"time"

	"github.com/cadencehq/cadence/internal/domain"
)

// Layouts for canonical keys.
const (
	dateKeyLayout  = "2006-01-02"
	monthKeyLayout = "2006-01"
)

// Zone resolves an IANA timezone identifier. An empty name means the
// caller's local zone. Unknown identifiers yield
// domain.ErrInvalidTimezone; this is the analytics core's only error
// surface.
func Zone(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidTimezone, name)
	}
	return loc, nil
}

// ZoneOf resolves an optional timezone identifier, treating nil as the
// local zone.
func ZoneOf(name *string) (*time.Location, error) {
	if name == nil {
		return time.Local, nil
	}
	return Zone(*name)
}

func in(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc)
}

// DateKey renders the calendar date of t as observed in loc as
// YYYY-MM-DD. A nil loc means the local zone.
func DateKey(t time.Time, loc *time.Location) string {
	return in(t, loc).Format(dateKeyLayout)
}

// MonthKey renders the calendar month of t as observed in loc as
// YYYY-MM.
func MonthKey(t time.Time, loc *time.Location) string {
	return in(t, loc).Format(monthKeyLayout)
}

// Parts holds the calendar components of an instant in a zone.
// Month is 1-12 and Weekday is 0 (Sunday) through 6 (Saturday).
type Parts struct {
	Year    int
	Month   int
	Day     int
	Weekday int
}

// PartsOf extracts the calendar parts of t as observed in loc.
func PartsOf(t time.Time, loc *time.Location) Parts {
	t = in(t, loc)
	y, m, d := t.Date()
	return Parts{
		Year:    y,
		Month:   int(m),
		Day:     d,
		Weekday: int(t.Weekday()),
	}
}

// DaysInMonth returns the number of days in the given month.
// Month is 1-12.
func DaysInMonth(year, month int) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay clamps a target day-of-month to the last valid day of the
// given month, so a habit scheduled on day 31 still fires in 30-day and
// 28/29-day months.
func ClampDay(year, month, day int) int {
	if last := DaysInMonth(year, month); day > last {
		return last
	}
	return day
}

// MonthsBetween returns the absolute number of calendar months between
// two sets of parts, ignoring the day component. The absolute value
// keeps dates before an interval anchor aligned to the same phase.
func MonthsBetween(a, b Parts) int {
	diff := (b.Year-a.Year)*12 + (b.Month - a.Month)
	if diff < 0 {
		diff = -diff
	}
	return diff
}

// ParseDateKey interprets a canonical YYYY-MM-DD key as midnight of
// that civil day in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dateKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed date key %q: %w", key, err)
	}
	return t, nil
}

// DayStart returns local midnight of t's civil day in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DayEnd returns the last represented instant of t's civil day in loc
// (23:59:59.999), matching the notification backend's date-range
// boundary.
func DayEnd(t time.Time, loc *time.Location) time.Time {
	return DayStart(t, loc).AddDate(0, 0, 1).Add(-time.Millisecond)
}
