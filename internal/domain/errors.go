package domain

import "errors"

// Domain errors returned by the engine, services, and repository implementations.

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrHabitNotFound indicates the specified habit does not exist.
	ErrHabitNotFound = errors.New("habit not found")

	// ErrTodoNotFound indicates the specified todo does not exist.
	ErrTodoNotFound = errors.New("todo not found")

	// ErrInvalidID indicates the provided ID format is invalid.
	ErrInvalidID = errors.New("invalid ID format")

	// ErrVersionConflict indicates a concurrent update raced this one.
	ErrVersionConflict = errors.New("version conflict")

	// ErrTitleRequired indicates a missing title.
	ErrTitleRequired = errors.New("title is required")

	// ErrTitleTooLong indicates a title over the 255 character limit.
	ErrTitleTooLong = errors.New("title too long")

	// ErrInvalidFrequency indicates an unknown habit frequency.
	ErrInvalidFrequency = errors.New("invalid frequency")

	// ErrInvalidTodoStatus indicates an unknown todo status.
	ErrInvalidTodoStatus = errors.New("invalid todo status")

	// ErrInvalidPriority indicates an unknown priority level.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrInvalidHabitType indicates an unknown habit type.
	ErrInvalidHabitType = errors.New("invalid habit type")

	// ErrInvalidTimezone indicates an unrecognized IANA timezone identifier.
	// It is the only error the analytics core can surface; callers are
	// expected to validate timezones when a habit is created or edited so
	// evaluation never fails.
	ErrInvalidTimezone = errors.New("invalid timezone")
)
