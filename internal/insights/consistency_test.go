package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadencehq/cadence/internal/domain"
	"github.com/cadencehq/cadence/internal/ptr"
)

func dailyHabit(keys ...string) *domain.Habit {
	return &domain.Habit{
		ID:                 "h1",
		Title:              "stretch",
		Frequency:          domain.FrequencyDaily,
		Timezone:           ptr.To("UTC"),
		CompletionDateKeys: domain.NewDateKeySet(keys...),
		SkippedDateKeys:    domain.NewDateKeySet(),
		CreatedAt:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRollingConsistencyDailyWindow(t *testing.T) {
	h := dailyHabit("2024-06-01", "2024-06-02", "2024-06-04", "2024-06-06", "2024-06-07")
	asOf := time.Date(2024, 6, 7, 18, 0, 0, 0, time.UTC)

	c, err := RollingConsistency(h, 7, asOf)
	require.NoError(t, err)

	assert.Equal(t, 7, c.Scheduled)
	assert.Equal(t, 5, c.Completed)
	assert.Equal(t, 71, c.RatePercent) // round(100*5/7)
}

func TestRollingConsistencyCountsOnlyScheduledDays(t *testing.T) {
	// Monday-only habit; completions on a Monday and a Tuesday. Only the
	// Monday is scheduled, so the Tuesday completion is invisible.
	h := &domain.Habit{
		ID:               "h1",
		Title:            "weekly review",
		Frequency:        domain.FrequencyWeekly,
		ScheduleSelector: []int{1},
		Timezone:         ptr.To("UTC"),
		CompletionDateKeys: domain.NewDateKeySet(
			"2024-06-03", // Monday
			"2024-06-04", // Tuesday
		),
		SkippedDateKeys: domain.NewDateKeySet(),
	}
	asOf := time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC) // Sunday

	c, err := RollingConsistency(h, 7, asOf)
	require.NoError(t, err)

	assert.Equal(t, 1, c.Scheduled)
	assert.Equal(t, 1, c.Completed)
	assert.Equal(t, 100, c.RatePercent)
}

func TestRollingConsistencyZeroScheduled(t *testing.T) {
	// Monday-only habit over a three-day window that holds no Monday.
	h := &domain.Habit{
		ID:                 "h1",
		Title:              "weekly review",
		Frequency:          domain.FrequencyWeekly,
		ScheduleSelector:   []int{1},
		Timezone:           ptr.To("UTC"),
		CompletionDateKeys: domain.NewDateKeySet(),
		SkippedDateKeys:    domain.NewDateKeySet(),
	}
	asOf := time.Date(2024, 6, 6, 12, 0, 0, 0, time.UTC) // Thursday; window Tue–Thu

	c, err := RollingConsistency(h, 3, asOf)
	require.NoError(t, err)

	assert.Equal(t, 0, c.Scheduled)
	assert.Equal(t, 0, c.Completed)
	assert.Equal(t, 0, c.RatePercent)
}

func TestRollingConsistencyZeroWindow(t *testing.T) {
	h := dailyHabit("2024-06-01")
	c, err := RollingConsistency(h, 0, time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, Consistency{}, c)
}

func TestRollingConsistencyBounds(t *testing.T) {
	// Rate stays within 0..100 across a spread of completion densities.
	asOf := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	for density := 0; density <= 30; density += 3 {
		h := dailyHabit()
		for i := 0; i < density; i++ {
			h.CompletionDateKeys.Add(asOf.AddDate(0, 0, -i).Format("2006-01-02"))
		}
		c, err := RollingConsistency(h, 30, asOf)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, c.RatePercent, 0)
		assert.LessOrEqual(t, c.RatePercent, 100)
		assert.LessOrEqual(t, c.Completed, c.Scheduled)
	}
}

func TestRollingConsistencyInvalidTimezone(t *testing.T) {
	h := dailyHabit()
	h.Timezone = ptr.To("Not/AZone")

	_, err := RollingConsistency(h, 7, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidTimezone)
}

func TestHabitStreak(t *testing.T) {
	h := dailyHabit("2024-06-05", "2024-06-06", "2024-06-07")
	got, err := HabitStreak(h, 30, time.Date(2024, 6, 7, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}
