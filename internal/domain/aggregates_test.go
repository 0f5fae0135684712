package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validHabit() *Habit {
	return &Habit{
		ID:                 "h1",
		UserID:             "u1",
		Title:              "Morning run",
		Frequency:          FrequencyDaily,
		CompletionDateKeys: NewDateKeySet(),
		SkippedDateKeys:    NewDateKeySet(),
		HabitType:          HabitTypePositive,
		CreatedAt:          time.Now().UTC(),
	}
}

func TestDateKeySet_AddHasRemove(t *testing.T) {
	s := NewDateKeySet()

	assert.True(t, s.Add("2024-06-10"))
	assert.False(t, s.Add("2024-06-10"), "second add of the same key must be a no-op")
	assert.True(t, s.Has("2024-06-10"))

	assert.True(t, s.Remove("2024-06-10"))
	assert.False(t, s.Remove("2024-06-10"))
	assert.False(t, s.Has("2024-06-10"))
}

func TestDateKeySet_KeysSorted(t *testing.T) {
	s := NewDateKeySet("2024-06-10", "2023-12-31", "2024-01-01")

	assert.Equal(t, []string{"2023-12-31", "2024-01-01", "2024-06-10"}, s.Keys())
}

func TestDateKeySet_MarshalSortedArray(t *testing.T) {
	s := NewDateKeySet("2024-06-10", "2024-01-01")

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["2024-01-01","2024-06-10"]`, string(data))
}

func TestDateKeySet_UnmarshalDropsDuplicates(t *testing.T) {
	var s DateKeySet
	require.NoError(t, json.Unmarshal([]byte(`["2024-06-10","2024-06-10","2024-06-11"]`), &s))

	assert.Len(t, s, 2)
	assert.True(t, s.Has("2024-06-10"))
	assert.True(t, s.Has("2024-06-11"))
}

func TestHabit_MarkCompletedEvictsSkip(t *testing.T) {
	h := validHabit()
	h.MarkSkipped("2024-06-10")

	changed := h.MarkCompleted("2024-06-10")

	assert.True(t, changed)
	assert.True(t, h.CompletionDateKeys.Has("2024-06-10"))
	assert.False(t, h.SkippedDateKeys.Has("2024-06-10"))
}

func TestHabit_MarkSkippedEvictsCompletion(t *testing.T) {
	h := validHabit()
	h.MarkCompleted("2024-06-10")

	changed := h.MarkSkipped("2024-06-10")

	assert.True(t, changed)
	assert.True(t, h.SkippedDateKeys.Has("2024-06-10"))
	assert.False(t, h.CompletionDateKeys.Has("2024-06-10"))
}

func TestHabit_ClearDay(t *testing.T) {
	h := validHabit()
	h.MarkCompleted("2024-06-10")
	h.MarkSkipped("2024-06-11")

	h.ClearDay("2024-06-10")
	h.ClearDay("2024-06-11")

	assert.Empty(t, h.CompletionDateKeys)
	assert.Empty(t, h.SkippedDateKeys)
}

func TestHabit_ValidateDisjointSets(t *testing.T) {
	h := validHabit()
	// Corrupt the sets directly, bypassing the Mark methods.
	h.CompletionDateKeys.Add("2024-06-10")
	h.SkippedDateKeys.Add("2024-06-10")

	require.Error(t, h.Validate())
}

func TestHabit_ValidateValid(t *testing.T) {
	h := validHabit()
	h.MarkCompleted("2024-06-09")
	h.MarkSkipped("2024-06-10")

	assert.NoError(t, h.Validate())
}

func TestHabit_Etag(t *testing.T) {
	h := validHabit()
	h.Version = 7

	assert.Equal(t, "7", h.Etag())
}

func TestTodo_SetStatusCompletedSetsTimestamp(t *testing.T) {
	now := time.Now().UTC()
	todo := &Todo{ID: "t1", Title: "Buy milk", Status: TodoStatusPending, Priority: PriorityMedium}

	require.NoError(t, todo.SetStatus(TodoStatusCompleted, now))

	require.NotNil(t, todo.CompletedAt)
	assert.Equal(t, now, *todo.CompletedAt)
	assert.NoError(t, todo.Validate())
}

func TestTodo_SetStatusBackToPendingClearsTimestamp(t *testing.T) {
	now := time.Now().UTC()
	todo := &Todo{ID: "t1", Title: "Buy milk", Status: TodoStatusPending, Priority: PriorityMedium}
	require.NoError(t, todo.SetStatus(TodoStatusCompleted, now))

	require.NoError(t, todo.SetStatus(TodoStatusPending, now))

	assert.Nil(t, todo.CompletedAt)
	assert.NoError(t, todo.Validate())
}

func TestTodo_SetStatusInvalid(t *testing.T) {
	todo := &Todo{ID: "t1", Title: "Buy milk", Status: TodoStatusPending, Priority: PriorityMedium}

	require.Error(t, todo.SetStatus(TodoStatus("done"), time.Now()))
}

func TestTodo_ValidateCompletionInvariant(t *testing.T) {
	now := time.Now().UTC()

	completedWithoutTime := &Todo{ID: "t1", Title: "a", Status: TodoStatusCompleted, Priority: PriorityLow}
	require.Error(t, completedWithoutTime.Validate())

	pendingWithTime := &Todo{ID: "t2", Title: "b", Status: TodoStatusPending, Priority: PriorityLow, CompletedAt: &now}
	require.Error(t, pendingWithTime.Validate())
}
