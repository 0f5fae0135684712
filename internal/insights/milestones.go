package insights

// milestones is the fixed ascending ladder of total-completion
// thresholds. Level is the count of thresholds reached.
var milestones = []int{1, 5, 10, 20, 35, 50, 75, 100, 150, 200, 300, 500}

// Progress describes where a habit stands on the milestone ladder.
type Progress struct {
	Level             int     `json:"level"`
	CurrentMilestone  int     `json:"current_milestone"`  // highest threshold reached, 0 if none
	NextMilestone     int     `json:"next_milestone"`     // 0 when past the final threshold
	ProgressToNext    float64 `json:"progress_to_next"`   // 0..1 within the current span
	CompletionsNeeded int     `json:"completions_needed"` // completions remaining to next, 0 at the top
}

// MilestoneFor reports milestone progress for a completion total.
// Level is non-decreasing in total and level(0) == 0.
func MilestoneFor(totalCompletions int) Progress {
	var p Progress
	for _, m := range milestones {
		if totalCompletions >= m {
			p.Level++
			p.CurrentMilestone = m
		} else {
			p.NextMilestone = m
			break
		}
	}

	if p.NextMilestone == 0 {
		// Past the final threshold.
		p.ProgressToNext = 1
		return p
	}

	p.CompletionsNeeded = p.NextMilestone - totalCompletions
	span := p.NextMilestone - p.CurrentMilestone
	p.ProgressToNext = float64(totalCompletions-p.CurrentMilestone) / float64(span)
	return p
}

// LeveledUp reports whether the total's milestone level is strictly
// greater than the last level the user was notified about. The caller
// owns persisting the raised level; this is only the comparison.
func LeveledUp(totalCompletions, lastNotifiedLevel int) bool {
	return MilestoneFor(totalCompletions).Level > lastNotifiedLevel
}
