package domain

// Frequency represents how often a habit recurs.
// Value object - immutable string enum, closed set.
type Frequency string

const (
	FrequencyDaily      Frequency = "daily"
	FrequencyWeekly     Frequency = "weekly"
	FrequencyMonthly    Frequency = "monthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencyHalfYearly Frequency = "half_yearly"
	FrequencyYearly     Frequency = "yearly"
)

// TodoStatus represents the current state of a todo.
// Three-valued on purpose: a skipped todo is neither pending nor completed.
type TodoStatus string

const (
	TodoStatusPending   TodoStatus = "pending"
	TodoStatusCompleted TodoStatus = "completed"
	TodoStatusSkipped   TodoStatus = "skipped"
)

// Priority represents the priority level of a todo.
// Value object - immutable string enum.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Weight returns the sort weight of a priority. High sorts first under
// ascending order, so high carries the smallest weight.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// HabitType distinguishes habits the user wants to build from habits
// the user wants to avoid. Carried through unchanged by the analytics
// core; consumed by callers.
type HabitType string

const (
	HabitTypePositive HabitType = "positive"
	HabitTypeAvoid    HabitType = "avoid"
)
