package habit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadencehq/cadence/internal/domain"
	"github.com/cadencehq/cadence/internal/ptr"
)

// fakeRepo is an in-memory Repository with optimistic version bumps.
type fakeRepo struct {
	habits map[string]*domain.Habit
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{habits: make(map[string]*domain.Habit)}
}

func (f *fakeRepo) CreateHabit(ctx context.Context, h *domain.Habit) (*domain.Habit, error) {
	h.Version = 1
	f.habits[h.ID] = h
	return h, nil
}

func (f *fakeRepo) FindHabitByID(ctx context.Context, id string) (*domain.Habit, error) {
	h, ok := f.habits[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	return h, nil
}

func (f *fakeRepo) FindHabitsByUser(ctx context.Context, userID string, includeArchived bool) ([]*domain.Habit, error) {
	var out []*domain.Habit
	for _, h := range f.habits {
		if h.UserID != userID {
			continue
		}
		if h.Archived() && !includeArchived {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

func (f *fakeRepo) UpdateHabit(ctx context.Context, h *domain.Habit) (*domain.Habit, error) {
	stored, ok := f.habits[h.ID]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	if stored.Version != h.Version {
		return nil, domain.ErrVersionConflict
	}
	h.Version++
	f.habits[h.ID] = h
	return h, nil
}

func (f *fakeRepo) DeleteHabit(ctx context.Context, id string) error {
	if _, ok := f.habits[id]; !ok {
		return domain.ErrHabitNotFound
	}
	delete(f.habits, id)
	return nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, Config{}), repo
}

func createDaily(t *testing.T, svc *Service, title string) *domain.Habit {
	t.Helper()
	h, err := svc.CreateHabit(context.Background(), CreateParams{
		UserID:    "u1",
		Title:     title,
		Frequency: "daily",
		Timezone:  ptr.To("UTC"),
	})
	require.NoError(t, err)
	return h
}

func TestCreateHabit_Valid(t *testing.T) {
	svc, _ := newTestService()

	h, err := svc.CreateHabit(context.Background(), CreateParams{
		UserID:           "u1",
		Title:            "  Morning run  ",
		Frequency:        "WEEKLY",
		ScheduleSelector: []int{1, 3, 5},
		Timezone:         ptr.To("Asia/Tokyo"),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, h.ID)
	assert.Equal(t, "Morning run", h.Title)
	assert.Equal(t, domain.FrequencyWeekly, h.Frequency)
	assert.Equal(t, domain.HabitTypePositive, h.HabitType)
	assert.NotNil(t, h.CompletionDateKeys)
	assert.NotNil(t, h.SkippedDateKeys)
	assert.Equal(t, 1, h.Version)
}

func TestCreateHabit_InvalidTimezone(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.CreateHabit(context.Background(), CreateParams{
		UserID:    "u1",
		Title:     "Meditate",
		Frequency: "daily",
		Timezone:  ptr.To("Neverland/Second_Star"),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidTimezone))
	assert.Empty(t, repo.habits, "invalid habit must not be persisted")
}

func TestCreateHabit_InvalidFrequency(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateHabit(context.Background(), CreateParams{
		UserID:    "u1",
		Title:     "Meditate",
		Frequency: "fortnightly",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidFrequency))
}

func TestCreateHabit_NegativeGrace(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateHabit(context.Background(), CreateParams{
		UserID:             "u1",
		Title:              "Meditate",
		Frequency:          "daily",
		GraceMissesPerWeek: -1,
	})

	require.Error(t, err)
}

func TestToggleCompletion_OnOff(t *testing.T) {
	svc, _ := newTestService()
	h := createDaily(t, svc, "Run")

	updated, completed, err := svc.ToggleCompletion(context.Background(), h.ID, "2024-06-10")
	require.NoError(t, err)
	assert.True(t, completed)
	assert.True(t, updated.CompletionDateKeys.Has("2024-06-10"))

	updated, completed, err = svc.ToggleCompletion(context.Background(), h.ID, "2024-06-10")
	require.NoError(t, err)
	assert.False(t, completed)
	assert.False(t, updated.CompletionDateKeys.Has("2024-06-10"))
}

func TestToggleCompletion_EvictsSkip(t *testing.T) {
	svc, _ := newTestService()
	h := createDaily(t, svc, "Run")

	_, _, err := svc.ToggleSkip(context.Background(), h.ID, "2024-06-10")
	require.NoError(t, err)

	updated, completed, err := svc.ToggleCompletion(context.Background(), h.ID, "2024-06-10")
	require.NoError(t, err)
	assert.True(t, completed)
	assert.True(t, updated.CompletionDateKeys.Has("2024-06-10"))
	assert.False(t, updated.SkippedDateKeys.Has("2024-06-10"))
	assert.NoError(t, updated.Validate())
}

func TestToggleCompletion_InvalidDateKey(t *testing.T) {
	svc, _ := newTestService()
	h := createDaily(t, svc, "Run")

	_, _, err := svc.ToggleCompletion(context.Background(), h.ID, "June 10, 2024")
	require.Error(t, err)
}

func TestToggleCompletion_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, _, err := svc.ToggleCompletion(context.Background(), "missing", "2024-06-10")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrHabitNotFound))
}

func TestUpdateHabit_EtagMismatch(t *testing.T) {
	svc, _ := newTestService()
	h := createDaily(t, svc, "Run")

	_, err := svc.UpdateHabit(context.Background(), UpdateParams{
		ID:    h.ID,
		Etag:  "99",
		Title: ptr.To("Jog"),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrVersionConflict))
}

func TestUpdateHabit_ClearTimezone(t *testing.T) {
	svc, _ := newTestService()
	h := createDaily(t, svc, "Run")
	require.NotNil(t, h.Timezone)

	updated, err := svc.UpdateHabit(context.Background(), UpdateParams{
		ID:            h.ID,
		ClearTimezone: true,
	})

	require.NoError(t, err)
	assert.Nil(t, updated.Timezone)
}

func TestArchiveHabit_DropsFromDefaultListing(t *testing.T) {
	svc, _ := newTestService()
	h := createDaily(t, svc, "Run")
	createDaily(t, svc, "Read")

	_, err := svc.ArchiveHabit(context.Background(), h.ID)
	require.NoError(t, err)

	active, err := svc.ListHabits(context.Background(), "u1", false)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := svc.ListHabits(context.Background(), "u1", true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStats_MilestoneFiresOnce(t *testing.T) {
	svc, _ := newTestService()
	h := createDaily(t, svc, "Run")

	// 20 completions lands exactly on the fourth milestone.
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		_, _, err := svc.ToggleCompletion(context.Background(), h.ID, day.AddDate(0, 0, i).Format("2006-01-02"))
		require.NoError(t, err)
	}
	asOf := day.AddDate(0, 0, 19).Add(12 * time.Hour)

	stats, err := svc.Stats(context.Background(), h.ID, asOf)
	require.NoError(t, err)
	assert.Equal(t, 20, stats.Streak)
	assert.Equal(t, 4, stats.Milestone.Level)
	assert.Equal(t, 20, stats.Milestone.CurrentMilestone)
	assert.Equal(t, 35, stats.Milestone.NextMilestone)
	assert.True(t, stats.LeveledUp)

	// The raised level was persisted, so a second read does not re-fire.
	stats, err = svc.Stats(context.Background(), h.ID, asOf)
	require.NoError(t, err)
	assert.False(t, stats.LeveledUp)
}

func TestStats_ConsistencyWindows(t *testing.T) {
	svc, _ := newTestService()
	h := createDaily(t, svc, "Run")

	// Complete 5 of the last 7 days.
	asOf := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	for _, key := range []string{"2024-06-10", "2024-06-09", "2024-06-08", "2024-06-06", "2024-06-05"} {
		_, _, err := svc.ToggleCompletion(context.Background(), h.ID, key)
		require.NoError(t, err)
	}

	stats, err := svc.Stats(context.Background(), h.ID, asOf)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Weekly.Scheduled)
	assert.Equal(t, 5, stats.Weekly.Completed)
	assert.Equal(t, 71, stats.Weekly.RatePercent)
	assert.Equal(t, 30, stats.Monthly.Scheduled)
}

func TestTrends_CountsAcrossHabits(t *testing.T) {
	svc, _ := newTestService()
	a := createDaily(t, svc, "Run")
	b := createDaily(t, svc, "Read")

	_, _, err := svc.ToggleCompletion(context.Background(), a.ID, "2024-06-10")
	require.NoError(t, err)
	_, _, err = svc.ToggleCompletion(context.Background(), b.ID, "2024-06-10")
	require.NoError(t, err)

	ref := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	trends, err := svc.Trends(context.Background(), "u1", ref, "UTC")
	require.NoError(t, err)

	require.Len(t, trends.Weekly, 7)
	last := trends.Weekly[6]
	assert.Equal(t, 2, last.Count)
	require.Len(t, trends.Monthly, 6)
	require.Len(t, trends.Yearly, 5)
}

func TestTrends_InvalidFrameZone(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Trends(context.Background(), "u1", time.Now(), "Atlantis/Sunken")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidTimezone))
}

func TestTriggerChain(t *testing.T) {
	svc, _ := newTestService()
	anchor := createDaily(t, svc, "Wake up")

	chained, err := svc.CreateHabit(context.Background(), CreateParams{
		UserID:              "u1",
		Title:               "Stretch",
		Frequency:           "daily",
		TriggerAfterHabitID: ptr.To(anchor.ID),
	})
	require.NoError(t, err)

	target, err := svc.TriggerChain(context.Background(), chained.ID)
	require.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, anchor.ID, target.ID)

	// No chain configured.
	target, err = svc.TriggerChain(context.Background(), anchor.ID)
	require.NoError(t, err)
	assert.Nil(t, target)

	// Dangling reference degrades to nil without error.
	dangling, err := svc.CreateHabit(context.Background(), CreateParams{
		UserID:              "u1",
		Title:               "Journal",
		Frequency:           "daily",
		TriggerAfterHabitID: ptr.To("gone"),
	})
	require.NoError(t, err)
	target, err = svc.TriggerChain(context.Background(), dangling.ID)
	require.NoError(t, err)
	assert.Nil(t, target)
}
