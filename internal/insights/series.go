package insights

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cadencehq/cadence/internal/civil"
	"github.com/cadencehq/cadence/internal/domain"
	"github.com/cadencehq/cadence/internal/recurrence"
)

// Point is one bucket of a trend series. Buckets with no data are still
// emitted with a zero count so charts render without gaps.
type Point struct {
	BucketStart time.Time `json:"bucket_start"`
	Label       string    `json:"label"`
	Count       int       `json:"count"`
}

// Series buckets sizes.
const (
	weeklyDays    = 7
	monthlyMonths = 6
	yearlyYears   = 5
)

type habitEval struct {
	habit *domain.Habit
	loc   *time.Location
	rule  recurrence.Rule
}

func evalSet(habits []*domain.Habit) ([]habitEval, error) {
	evals := make([]habitEval, 0, len(habits))
	for _, h := range habits {
		loc, err := civil.ZoneOf(h.Timezone)
		if err != nil {
			return nil, err
		}
		rule := recurrence.ForHabit(h)
		if rule == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidFrequency, h.Frequency)
		}
		evals = append(evals, habitEval{habit: h, loc: loc, rule: rule})
	}
	return evals, nil
}

// scheduledOnKey reports whether the civil date named by key is a
// scheduled occurrence for the habit, evaluated in the habit's own zone.
func (e habitEval) scheduledOnKey(key string) bool {
	date, err := civil.ParseDateKey(key, e.loc)
	if err != nil {
		return false
	}
	return e.rule.ScheduledOn(date, e.loc)
}

// WeeklySeries builds the 7-day series ending at ref: for each calendar
// date (in loc, the caller's display zone), the count of habits that
// were both scheduled and completed on that date.
func WeeklySeries(habits []*domain.Habit, ref time.Time, loc *time.Location) ([]Point, error) {
	evals, err := evalSet(habits)
	if err != nil {
		return nil, err
	}

	points := make([]Point, 0, weeklyDays)
	day := civil.DayStart(ref, loc).AddDate(0, 0, -(weeklyDays - 1))
	for i := 0; i < weeklyDays; i++ {
		key := civil.DateKey(day, loc)
		pt := Point{BucketStart: day, Label: key}
		for _, e := range evals {
			if e.habit.CompletionDateKeys.Has(key) && e.scheduledOnKey(key) {
				pt.Count++
			}
		}
		points = append(points, pt)
		day = day.AddDate(0, 0, 1)
	}
	return points, nil
}

// MonthlySeries builds the 6-month series ending at ref's month. Each
// completion key is attributed to its month's bucket iff that date was
// a scheduled occurrence.
func MonthlySeries(habits []*domain.Habit, ref time.Time, loc *time.Location) ([]Point, error) {
	evals, err := evalSet(habits)
	if err != nil {
		return nil, err
	}

	if loc == nil {
		loc = time.Local
	}
	refParts := civil.PartsOf(ref, loc)
	points := make([]Point, monthlyMonths)
	index := make(map[string]*Point, monthlyMonths)
	for i := 0; i < monthlyMonths; i++ {
		start := time.Date(refParts.Year, time.Month(refParts.Month), 1, 0, 0, 0, 0, loc).
			AddDate(0, i-(monthlyMonths-1), 0)
		label := civil.MonthKey(start, loc)
		points[i] = Point{BucketStart: start, Label: label}
		index[label] = &points[i]
	}

	for _, e := range evals {
		for key := range e.habit.CompletionDateKeys {
			if len(key) < 7 {
				continue
			}
			pt, ok := index[key[:7]]
			if !ok {
				continue
			}
			if e.scheduledOnKey(key) {
				pt.Count++
			}
		}
	}
	return points, nil
}

// YearlySeries builds the 5-year series ending at ref's year, with the
// same scheduled-completion attribution rule as the monthly series.
func YearlySeries(habits []*domain.Habit, ref time.Time, loc *time.Location) ([]Point, error) {
	evals, err := evalSet(habits)
	if err != nil {
		return nil, err
	}

	if loc == nil {
		loc = time.Local
	}
	refYear := civil.PartsOf(ref, loc).Year
	points := make([]Point, yearlyYears)
	index := make(map[string]*Point, yearlyYears)
	for i := 0; i < yearlyYears; i++ {
		year := refYear - (yearlyYears - 1) + i
		label := strconv.Itoa(year)
		points[i] = Point{
			BucketStart: time.Date(year, time.January, 1, 0, 0, 0, 0, loc),
			Label:       label,
		}
		index[label] = &points[i]
	}

	for _, e := range evals {
		for key := range e.habit.CompletionDateKeys {
			if len(key) < 4 {
				continue
			}
			pt, ok := index[key[:4]]
			if !ok {
				continue
			}
			if e.scheduledOnKey(key) {
				pt.Count++
			}
		}
	}
	return points, nil
}
