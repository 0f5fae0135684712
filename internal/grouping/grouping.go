// Package grouping turns a flat todo collection into date-bucketed,
// filterable, sortable sections. The four-stage pipeline (filter,
// bucket, order buckets, order items) is deterministic and is re-run
// end to end on every control change; there is no incremental update.
package grouping

import (
	"sort"
	"time"

	"github.com/cadencehq/cadence/internal/civil"
	"github.com/cadencehq/cadence/internal/domain"
)

// Section ranks. Overdue sorts after Later by rank but carries the
// highest urgency; the rank ordering is the product's, not a mistake.
const (
	rankToday       = 0
	rankTomorrow    = 1
	rankLater       = 2
	rankOverdue     = 3
	rankUnscheduled = 4
)

// Labels for the undated bucket.
const (
	titleUnscheduled      = "Unscheduled"
	titleNoCompletionDate = "No completion date"
)

const laterDateFormat = "Jan 2, 2006"

// Section is one labeled bucket of the grouped view.
type Section struct {
	Title string `json:"title"`
	Rank  int    `json:"rank"`

	// Anchor is the bucket's midnight instant; zero for the undated bucket.
	Anchor time.Time      `json:"anchor"`
	Items  []*domain.Todo `json:"items"`
}

// Group runs the pipeline over a snapshot: filter by params, bucket by
// civil date relative to now (in loc), order buckets by rank then
// anchor, order items by the chosen sort key. Every todo passing the
// filter appears in exactly one section.
func Group(todos []*domain.Todo, params Params, now time.Time, loc *time.Location) []Section {
	p := params.normalized()

	filtered := filter(todos, p, now, loc)
	sections := bucket(filtered, p, now, loc)
	orderSections(sections, p)
	for i := range sections {
		orderItems(sections[i].Items, p)
	}
	return sections
}

// DueToday returns the pending todos scheduled inside today's civil day
// (local midnight through 23:59:59.999). The notification backend calls
// this instead of re-deriving the day boundary.
func DueToday(todos []*domain.Todo, now time.Time, loc *time.Location) []*domain.Todo {
	start := civil.DayStart(now, loc)
	end := civil.DayEnd(now, loc)

	var due []*domain.Todo
	for _, t := range todos {
		if t.Status != domain.TodoStatusPending || t.ScheduledAt == nil {
			continue
		}
		if inRange(*t.ScheduledAt, start, end) {
			due = append(due, t)
		}
	}
	return due
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// === Stage 1: filter ===

func filter(todos []*domain.Todo, p Params, now time.Time, loc *time.Location) []*domain.Todo {
	todayStart := civil.DayStart(now, loc)
	todayEnd := civil.DayEnd(now, loc)

	var out []*domain.Todo
	for _, t := range todos {
		if !p.matchesStatus(t) || !p.matchesPriority(t) || !p.matchesTag(t) {
			continue
		}
		if !matchesPreset(t, p, todayStart, todayEnd, loc) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesPreset(t *domain.Todo, p Params, todayStart, todayEnd time.Time, loc *time.Location) bool {
	if p.Preset == PresetAll {
		return true
	}
	// Every dated preset is a range predicate; unscheduled todos can
	// never satisfy one.
	if t.ScheduledAt == nil {
		return false
	}
	at := *t.ScheduledAt

	switch p.Preset {
	case PresetToday:
		return inRange(at, todayStart, todayEnd)
	case PresetTomorrow:
		return inRange(at, todayStart.AddDate(0, 0, 1), civil.DayEnd(todayStart.AddDate(0, 0, 1), loc))
	case PresetWeek:
		return inRange(at, todayStart, civil.DayEnd(todayStart.AddDate(0, 0, 6), loc))
	case PresetSpillover:
		return at.Before(todayStart)
	case PresetUpcoming:
		return at.After(todayEnd)
	case PresetCustom:
		if p.CustomDay == nil {
			return true
		}
		return inRange(at, civil.DayStart(*p.CustomDay, loc), civil.DayEnd(*p.CustomDay, loc))
	default:
		return true
	}
}

// === Stage 2: bucket ===

// activeDate is the instant a todo is bucketed by: the completion
// instant when sorting by completion, the scheduled instant otherwise.
func activeDate(t *domain.Todo, p Params) *time.Time {
	if p.SortKey == SortCompleted {
		return t.CompletedAt
	}
	return t.ScheduledAt
}

func bucket(todos []*domain.Todo, p Params, now time.Time, loc *time.Location) []Section {
	todayStart := civil.DayStart(now, loc)
	tomorrowStart := todayStart.AddDate(0, 0, 1)
	dayAfterStart := todayStart.AddDate(0, 0, 2)

	undatedTitle := titleUnscheduled
	if p.SortKey == SortCompleted {
		undatedTitle = titleNoCompletionDate
	}

	byKey := make(map[string]*Section)
	var keys []string
	var undated *Section

	for _, t := range todos {
		at := activeDate(t, p)
		if at == nil {
			if undated == nil {
				undated = &Section{Title: undatedTitle, Rank: rankUnscheduled}
			}
			undated.Items = append(undated.Items, t)
			continue
		}

		anchor := civil.DayStart(*at, loc)
		key := civil.DateKey(*at, loc)
		sec, ok := byKey[key]
		if !ok {
			sec = &Section{Rank: rankFor(anchor, todayStart, tomorrowStart, dayAfterStart), Anchor: anchor}
			sec.Title = titleFor(sec.Rank, anchor)
			byKey[key] = sec
			keys = append(keys, key)
		}
		sec.Items = append(sec.Items, t)
	}

	// Assemble in first-seen key order; ordering is stage 3's job.
	sections := make([]Section, 0, len(keys)+1)
	for _, k := range keys {
		sections = append(sections, *byKey[k])
	}
	if undated != nil {
		// Alphabetical title order is the undated bucket's stable tie-break.
		sort.SliceStable(undated.Items, func(i, j int) bool {
			return undated.Items[i].Title < undated.Items[j].Title
		})
		sections = append(sections, *undated)
	}
	return sections
}

func rankFor(anchor, todayStart, tomorrowStart, dayAfterStart time.Time) int {
	switch {
	case anchor.Before(todayStart):
		return rankOverdue
	case anchor.Before(tomorrowStart):
		return rankToday
	case anchor.Before(dayAfterStart):
		return rankTomorrow
	default:
		return rankLater
	}
}

func titleFor(rank int, anchor time.Time) string {
	switch rank {
	case rankToday:
		return "Today"
	case rankTomorrow:
		return "Tomorrow"
	case rankLater:
		return "Later · " + anchor.Format(laterDateFormat)
	default: // overdue: the formatted date itself
		return anchor.Format(laterDateFormat)
	}
}

// === Stage 3: order buckets ===

func orderSections(sections []Section, p Params) {
	dir := int(p.SortDir)
	sort.SliceStable(sections, func(i, j int) bool {
		a, b := sections[i], sections[j]
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		return a.Anchor.UnixMilli()*int64(dir) < b.Anchor.UnixMilli()*int64(dir)
	})
}

// === Stage 4: order items ===

func orderItems(items []*domain.Todo, p Params) {
	if p.SortKey == SortManual {
		return
	}
	dir := int(p.SortDir)
	sort.SliceStable(items, func(i, j int) bool {
		c := compareItems(items[i], items[j], p.SortKey)
		return c*dir < 0
	})
}

func compareItems(a, b *domain.Todo, key SortKey) int {
	switch key {
	case SortScheduled:
		return compareInstants(a.ScheduledAt, b.ScheduledAt)
	case SortCompleted:
		return compareInstants(a.CompletedAt, b.CompletedAt)
	case SortPriority:
		return a.Priority.Weight() - b.Priority.Weight()
	case SortCreated:
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return 0
	}
}

// compareInstants orders non-nil before nil so todos missing the sort
// instant collect at one end instead of interleaving.
func compareInstants(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}
