package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadencehq/cadence/internal/ptr"
)

func TestNewTitle_Valid(t *testing.T) {
	title, err := NewTitle("Morning run")

	require.NoError(t, err)
	assert.Equal(t, "Morning run", title.String())
}

func TestNewTitle_TrimsWhitespace(t *testing.T) {
	title, err := NewTitle("  Morning run  ")

	require.NoError(t, err)
	assert.Equal(t, "Morning run", title.String())
}

func TestNewTitle_Empty(t *testing.T) {
	_, err := NewTitle("   ")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTitleRequired))
}

func TestNewTitle_TooLong(t *testing.T) {
	_, err := NewTitle(strings.Repeat("a", 256))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTitleTooLong))
}

func TestNewTitle_MaxLength(t *testing.T) {
	title, err := NewTitle(strings.Repeat("a", 255))

	require.NoError(t, err)
	assert.Len(t, title.String(), 255)
}

func TestNewFrequency_AllValid(t *testing.T) {
	for _, s := range []string{"daily", "weekly", "monthly", "quarterly", "half_yearly", "yearly"} {
		freq, err := NewFrequency(s)
		require.NoError(t, err, s)
		assert.Equal(t, Frequency(s), freq)
	}
}

func TestNewFrequency_CaseInsensitive(t *testing.T) {
	freq, err := NewFrequency("WEEKLY")

	require.NoError(t, err)
	assert.Equal(t, FrequencyWeekly, freq)
}

func TestNewFrequency_Invalid(t *testing.T) {
	_, err := NewFrequency("fortnightly")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidFrequency))
}

func TestNewTodoStatus_Invalid(t *testing.T) {
	_, err := NewTodoStatus("done")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTodoStatus))
}

func TestNewPriority_EmptyDefaultsToMedium(t *testing.T) {
	p, err := NewPriority("")

	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, p)
}

func TestNewPriority_Invalid(t *testing.T) {
	_, err := NewPriority("urgent")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPriority))
}

func TestPriority_WeightOrdering(t *testing.T) {
	assert.Less(t, PriorityHigh.Weight(), PriorityMedium.Weight())
	assert.Less(t, PriorityMedium.Weight(), PriorityLow.Weight())
}

func TestNewHabitType_EmptyDefaultsToPositive(t *testing.T) {
	ht, err := NewHabitType("")

	require.NoError(t, err)
	assert.Equal(t, HabitTypePositive, ht)
}

func TestNewHabitType_Invalid(t *testing.T) {
	_, err := NewHabitType("negative")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidHabitType))
}

func TestValidateTimezone_NilAndEmptyAreValid(t *testing.T) {
	assert.NoError(t, ValidateTimezone(nil))
	assert.NoError(t, ValidateTimezone(ptr.To("")))
}

func TestValidateTimezone_Valid(t *testing.T) {
	assert.NoError(t, ValidateTimezone(ptr.To("Asia/Tokyo")))
}

func TestValidateTimezone_Invalid(t *testing.T) {
	err := ValidateTimezone(ptr.To("Mars/Olympus"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTimezone))
}
