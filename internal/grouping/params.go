package grouping

import (
	"fmt"
	"time"

	"github.com/cadencehq/cadence/internal/domain"
)

// Filter sentinels. FilterAll disables a dimension; TagUncategorized
// matches todos with an empty tag set.
const (
	FilterAll        = "all"
	TagUncategorized = "uncategorized"
)

// DatePreset selects the date predicate applied during filtering.
type DatePreset string

const (
	PresetAll       DatePreset = "all"
	PresetToday     DatePreset = "today"
	PresetTomorrow  DatePreset = "tomorrow"
	PresetWeek      DatePreset = "week"      // today through today+6
	PresetSpillover DatePreset = "spillover" // scheduled strictly before today
	PresetUpcoming  DatePreset = "upcoming"  // scheduled strictly after today
	PresetCustom    DatePreset = "custom"    // a single chosen calendar day
)

// NewDatePreset validates a preset string; empty means all.
func NewDatePreset(s string) (DatePreset, error) {
	if s == "" {
		return PresetAll, nil
	}
	p := DatePreset(s)
	switch p {
	case PresetAll, PresetToday, PresetTomorrow, PresetWeek, PresetSpillover, PresetUpcoming, PresetCustom:
		return p, nil
	default:
		return "", fmt.Errorf("invalid date preset: %s", s)
	}
}

// SortKey selects which instant or attribute orders items.
type SortKey string

const (
	SortScheduled SortKey = "scheduled"
	SortCompleted SortKey = "completed"
	SortPriority  SortKey = "priority"
	SortCreated   SortKey = "created"
	SortManual    SortKey = "manual" // stable, preserves filter output order
)

// NewSortKey validates a sort key string; empty means scheduled.
func NewSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortScheduled, nil
	}
	k := SortKey(s)
	switch k {
	case SortScheduled, SortCompleted, SortPriority, SortCreated, SortManual:
		return k, nil
	default:
		return "", fmt.Errorf("invalid sort key: %s", s)
	}
}

// SortDir is the sort direction multiplier: +1 ascending, -1 descending.
type SortDir int

const (
	Ascending  SortDir = 1
	Descending SortDir = -1
)

// NewSortDir validates a direction string; empty means ascending.
func NewSortDir(s string) (SortDir, error) {
	switch s {
	case "", "asc":
		return Ascending, nil
	case "desc":
		return Descending, nil
	default:
		return 0, fmt.Errorf("invalid sort direction: %s", s)
	}
}

// Params is the filter/sort configuration for one grouped view. The
// zero value, passed through normalized, means "everything, grouped by
// schedule, ascending".
type Params struct {
	Status    string     // FilterAll or a domain.TodoStatus value
	Priority  string     // FilterAll or a domain.Priority value
	Preset    DatePreset
	CustomDay *time.Time // the chosen day when Preset == PresetCustom
	Tag       string     // FilterAll, TagUncategorized, or a context tag

	SortKey SortKey
	SortDir SortDir
}

func (p Params) normalized() Params {
	if p.Status == "" {
		p.Status = FilterAll
	}
	if p.Priority == "" {
		p.Priority = FilterAll
	}
	if p.Preset == "" {
		p.Preset = PresetAll
	}
	if p.Tag == "" {
		p.Tag = FilterAll
	}
	if p.SortKey == "" {
		p.SortKey = SortScheduled
	}
	if p.SortDir == 0 {
		p.SortDir = Ascending
	}
	return p
}

func (p Params) matchesStatus(t *domain.Todo) bool {
	return p.Status == FilterAll || string(t.Status) == p.Status
}

func (p Params) matchesPriority(t *domain.Todo) bool {
	return p.Priority == FilterAll || string(t.Priority) == p.Priority
}

func (p Params) matchesTag(t *domain.Todo) bool {
	switch p.Tag {
	case FilterAll:
		return true
	case TagUncategorized:
		return len(t.ContextTags) == 0
	default:
		for _, tag := range t.ContextTags {
			if tag == p.Tag {
				return true
			}
		}
		return false
	}
}
