// Package recurrence decides whether a calendar date is a scheduled
// occurrence of a habit. Each frequency is its own rule type carrying
// only the fields that frequency needs, so there is no positional
// selector indexing outside ForHabit.
package recurrence

import (
	"slices"
	"time"

	"github.com/cadencehq/cadence/internal/civil"
	"github.com/cadencehq/cadence/internal/domain"
)

// Rule answers "is this date a scheduled occurrence?" for one habit.
// Rules never fail: underspecified selectors resolve to documented
// degenerate defaults instead of errors.
type Rule interface {
	Frequency() domain.Frequency

	// ScheduledOn reports whether date, as observed in loc, is a
	// scheduled occurrence. A nil loc means the local zone.
	ScheduledOn(date time.Time, loc *time.Location) bool
}

// DailyRule schedules every date.
type DailyRule struct{}

func (DailyRule) Frequency() domain.Frequency { return domain.FrequencyDaily }

func (DailyRule) ScheduledOn(time.Time, *time.Location) bool { return true }

// WeeklyRule schedules dates whose weekday is in the set. An empty set
// schedules every date; that quirk is load-bearing for habits saved
// without a selector and is pinned by tests.
type WeeklyRule struct {
	Weekdays []int // 0 = Sunday .. 6 = Saturday
}

func (WeeklyRule) Frequency() domain.Frequency { return domain.FrequencyWeekly }

func (r WeeklyRule) ScheduledOn(date time.Time, loc *time.Location) bool {
	if len(r.Weekdays) == 0 {
		return true
	}
	return slices.Contains(r.Weekdays, civil.PartsOf(date, loc).Weekday)
}

// MonthlyRule schedules one date per month: the target day clamped to
// the last valid day of that month. Day 0 means no target was chosen
// and the date's own day is the target, which matches every date.
type MonthlyRule struct {
	Day int
}

func (MonthlyRule) Frequency() domain.Frequency { return domain.FrequencyMonthly }

func (r MonthlyRule) ScheduledOn(date time.Time, loc *time.Location) bool {
	p := civil.PartsOf(date, loc)
	return matchesClampedDay(p, r.Day)
}

// IntervalRule schedules the monthly clamped day, but only in months
// whose calendar distance from the anchor is an exact multiple of
// Months (3 for quarterly, 6 for half-yearly). Distance is absolute, so
// dates before the anchor keep the same phase.
type IntervalRule struct {
	Day    int
	Months int
	Anchor time.Time
}

func (r IntervalRule) Frequency() domain.Frequency {
	if r.Months == 6 {
		return domain.FrequencyHalfYearly
	}
	return domain.FrequencyQuarterly
}

func (r IntervalRule) ScheduledOn(date time.Time, loc *time.Location) bool {
	months := r.Months
	if months <= 0 {
		months = 1
	}
	p := civil.PartsOf(date, loc)
	anchor := civil.PartsOf(r.Anchor, loc)
	if civil.MonthsBetween(anchor, p)%months != 0 {
		return false
	}
	return matchesClampedDay(p, r.Day)
}

// YearlyRule schedules one date per year. A zero Month or Day falls
// back to the evaluation date's own month or day.
type YearlyRule struct {
	Month int // 1-12
	Day   int
}

func (YearlyRule) Frequency() domain.Frequency { return domain.FrequencyYearly }

func (r YearlyRule) ScheduledOn(date time.Time, loc *time.Location) bool {
	p := civil.PartsOf(date, loc)

	month := r.Month
	if month <= 0 {
		month = p.Month
	}
	day := r.Day
	if day <= 0 {
		day = p.Day
	}

	return p.Month == month && p.Day == civil.ClampDay(p.Year, month, day)
}

// matchesClampedDay reports whether the date's day equals the target
// day clamped into the date's month. A non-positive target degenerates
// to the date's own day.
func matchesClampedDay(p civil.Parts, target int) bool {
	if target <= 0 {
		target = p.Day
	}
	return p.Day == civil.ClampDay(p.Year, p.Month, target)
}

// ForHabit converts a habit's persisted (frequency, selector, createdAt)
// triple into a typed rule. Returns nil for an unknown frequency; the
// caller maps that to domain.ErrInvalidFrequency.
func ForHabit(h *domain.Habit) Rule {
	sel := h.ScheduleSelector

	switch h.Frequency {
	case domain.FrequencyDaily:
		return DailyRule{}
	case domain.FrequencyWeekly:
		return WeeklyRule{Weekdays: sel}
	case domain.FrequencyMonthly:
		return MonthlyRule{Day: first(sel)}
	case domain.FrequencyQuarterly:
		return IntervalRule{Day: first(sel), Months: 3, Anchor: h.CreatedAt}
	case domain.FrequencyHalfYearly:
		return IntervalRule{Day: first(sel), Months: 6, Anchor: h.CreatedAt}
	case domain.FrequencyYearly:
		switch {
		case len(sel) >= 2:
			return YearlyRule{Month: sel[0], Day: sel[1]}
		case len(sel) == 1:
			// A single value is the day; the month degenerates to the
			// evaluation date's own month.
			return YearlyRule{Day: sel[0]}
		default:
			return YearlyRule{}
		}
	default:
		return nil
	}
}

func first(sel []int) int {
	if len(sel) == 0 {
		return 0
	}
	return sel[0]
}
