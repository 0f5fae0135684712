package insights

import (
	"fmt"
	"math"
	"time"

	"github.com/cadencehq/cadence/internal/civil"
	"github.com/cadencehq/cadence/internal/domain"
	"github.com/cadencehq/cadence/internal/recurrence"
)

// Consistency is the outcome of a rolling-window check: of the
// scheduled days inside the window, how many were completed.
type Consistency struct {
	Completed   int `json:"completed"`
	Scheduled   int `json:"scheduled"`
	RatePercent int `json:"rate_percent"`
}

// RollingConsistency iterates the windowDays calendar dates ending at
// asOf (inclusive) in the habit's zone, counts scheduled days and
// completed-of-scheduled days, and derives a rounded percentage.
// RatePercent is 0 when nothing was scheduled; a zero or negative
// window is a defined no-op.
func RollingConsistency(h *domain.Habit, windowDays int, asOf time.Time) (Consistency, error) {
	loc, err := civil.ZoneOf(h.Timezone)
	if err != nil {
		return Consistency{}, err
	}
	rule := recurrence.ForHabit(h)
	if rule == nil {
		return Consistency{}, fmt.Errorf("%w: %s", domain.ErrInvalidFrequency, h.Frequency)
	}

	var c Consistency
	day := civil.DayStart(asOf, loc)
	for i := 0; i < windowDays; i++ {
		if rule.ScheduledOn(day, loc) {
			c.Scheduled++
			if h.CompletionDateKeys.Has(civil.DateKey(day, loc)) {
				c.Completed++
			}
		}
		day = day.AddDate(0, 0, -1)
	}

	if c.Scheduled > 0 {
		c.RatePercent = int(math.Round(100 * float64(c.Completed) / float64(c.Scheduled)))
	}
	return c, nil
}

// HabitStreak counts the habit's current completion streak in its own
// zone, capped at maxLookbackDays.
func HabitStreak(h *domain.Habit, maxLookbackDays int, asOf time.Time) (int, error) {
	loc, err := civil.ZoneOf(h.Timezone)
	if err != nil {
		return 0, err
	}
	return StreakFromKeys(h.CompletionDateKeys, maxLookbackDays, asOf, loc), nil
}
