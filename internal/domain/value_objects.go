package domain

import (
	"fmt"
	"strings"
	"time"
)

// Title is a validated title value object (1-255 characters).
type Title struct {
	value string
}

// NewTitle creates a new Title, validating the input.
func NewTitle(s string) (Title, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return Title{}, ErrTitleRequired
	}

	if len(s) > 255 {
		return Title{}, ErrTitleTooLong
	}

	return Title{value: s}, nil
}

// String returns the title value.
func (t Title) String() string {
	return t.value
}

// NewFrequency validates and creates a Frequency.
func NewFrequency(s string) (Frequency, error) {
	freq := Frequency(strings.ToLower(s))

	switch freq {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly,
		FrequencyQuarterly, FrequencyHalfYearly, FrequencyYearly:
		return freq, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidFrequency, s)
	}
}

// NewTodoStatus validates and creates a TodoStatus.
func NewTodoStatus(s string) (TodoStatus, error) {
	status := TodoStatus(strings.ToLower(s))

	switch status {
	case TodoStatusPending, TodoStatusCompleted, TodoStatusSkipped:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidTodoStatus, s)
	}
}

// NewPriority validates and creates a Priority.
// An empty string defaults to medium.
func NewPriority(s string) (Priority, error) {
	if s == "" {
		return PriorityMedium, nil
	}

	priority := Priority(strings.ToLower(s))

	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return priority, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidPriority, s)
	}
}

// NewHabitType validates and creates a HabitType.
// An empty string defaults to positive.
func NewHabitType(s string) (HabitType, error) {
	if s == "" {
		return HabitTypePositive, nil
	}

	ht := HabitType(strings.ToLower(s))

	switch ht {
	case HabitTypePositive, HabitTypeAvoid:
		return ht, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidHabitType, s)
	}
}

// ValidateTimezone checks that a timezone identifier resolves against
// the IANA database. Nil and empty mean "caller's local zone" and are
// always valid. This is the create/edit-time checkpoint that keeps
// ErrInvalidTimezone out of evaluation paths.
func ValidateTimezone(name *string) error {
	if name == nil || *name == "" {
		return nil
	}
	if _, err := time.LoadLocation(*name); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimezone, *name)
	}
	return nil
}
