package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadencehq/cadence/internal/domain"
	"github.com/cadencehq/cadence/internal/ptr"
)

func TestWeeklySeriesCountsScheduledCompletions(t *testing.T) {
	h := dailyHabit("2024-06-05", "2024-06-07", "2024-06-01") // 06-01 outside window
	ref := time.Date(2024, 6, 7, 15, 0, 0, 0, time.UTC)

	points, err := WeeklySeries([]*domain.Habit{h}, ref, time.UTC)
	require.NoError(t, err)
	require.Len(t, points, 7)

	assert.Equal(t, "2024-06-01", points[0].Label)
	assert.Equal(t, "2024-06-07", points[6].Label)

	byLabel := map[string]int{}
	for _, p := range points {
		byLabel[p.Label] = p.Count
	}
	assert.Equal(t, 1, byLabel["2024-06-01"])
	assert.Equal(t, 0, byLabel["2024-06-02"])
	assert.Equal(t, 1, byLabel["2024-06-05"])
	assert.Equal(t, 1, byLabel["2024-06-07"])
}

func TestWeeklySeriesEmptyBucketsPresent(t *testing.T) {
	ref := time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC)
	points, err := WeeklySeries(nil, ref, time.UTC)
	require.NoError(t, err)
	require.Len(t, points, 7)
	for _, p := range points {
		assert.Zero(t, p.Count)
	}
}

func TestMonthlySeriesAttribution(t *testing.T) {
	// Monthly habit on the 15th; the completion on the 16th was not a
	// scheduled occurrence and must not be attributed.
	h := &domain.Habit{
		ID:               "h1",
		Title:            "pay rent",
		Frequency:        domain.FrequencyMonthly,
		ScheduleSelector: []int{15},
		Timezone:         ptr.To("UTC"),
		CompletionDateKeys: domain.NewDateKeySet(
			"2024-03-15",
			"2024-04-15",
			"2024-04-16",
			"2023-11-15", // outside the six-month window
		),
		SkippedDateKeys: domain.NewDateKeySet(),
	}
	ref := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)

	points, err := MonthlySeries([]*domain.Habit{h}, ref, time.UTC)
	require.NoError(t, err)
	require.Len(t, points, 6)

	assert.Equal(t, "2024-01", points[0].Label)
	assert.Equal(t, "2024-06", points[5].Label)

	byLabel := map[string]int{}
	for _, p := range points {
		byLabel[p.Label] = p.Count
	}
	assert.Equal(t, 1, byLabel["2024-03"])
	assert.Equal(t, 1, byLabel["2024-04"]) // the 16th is dropped
	assert.Equal(t, 0, byLabel["2024-05"])
}

func TestYearlySeriesWindow(t *testing.T) {
	h := dailyHabit("2020-03-01", "2022-07-09", "2024-01-01", "2019-12-31")
	ref := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	points, err := YearlySeries([]*domain.Habit{h}, ref, time.UTC)
	require.NoError(t, err)
	require.Len(t, points, 5)

	assert.Equal(t, "2020", points[0].Label)
	assert.Equal(t, "2024", points[4].Label)

	byLabel := map[string]int{}
	for _, p := range points {
		byLabel[p.Label] = p.Count
	}
	assert.Equal(t, 1, byLabel["2020"])
	assert.Equal(t, 0, byLabel["2021"])
	assert.Equal(t, 1, byLabel["2022"])
	assert.Equal(t, 1, byLabel["2024"])
}

func TestSeriesInvalidTimezonePropagates(t *testing.T) {
	h := dailyHabit()
	h.Timezone = ptr.To("Nope/Nowhere")
	ref := time.Now()

	_, err := WeeklySeries([]*domain.Habit{h}, ref, time.UTC)
	assert.ErrorIs(t, err, domain.ErrInvalidTimezone)

	_, err = MonthlySeries([]*domain.Habit{h}, ref, time.UTC)
	assert.ErrorIs(t, err, domain.ErrInvalidTimezone)

	_, err = YearlySeries([]*domain.Habit{h}, ref, time.UTC)
	assert.ErrorIs(t, err, domain.ErrInvalidTimezone)
}
