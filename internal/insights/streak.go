// Package insights derives analytics from raw completion history:
// streaks, rolling consistency windows, milestone levels, and
// multi-resolution trend series. Every function takes its reference
// instant as a parameter and performs no I/O, so results are fully
// determined by the snapshot passed in.
package insights

import (
	"time"

	"github.com/cadencehq/cadence/internal/civil"
	"github.com/cadencehq/cadence/internal/domain"
)

// StreakFromKeys counts consecutive calendar days walking backward from
// asOf (inclusive) for which a completion key exists, stopping at the
// first gap or after maxLookbackDays.
func StreakFromKeys(keys domain.DateKeySet, maxLookbackDays int, asOf time.Time, loc *time.Location) int {
	streak := 0
	day := civil.DayStart(asOf, loc)
	for i := 0; i < maxLookbackDays; i++ {
		if !keys.Has(civil.DateKey(day, loc)) {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// StreakFromInstants runs the same backward walk over completion
// instants (todo CompletedAt values), collapsing instants on the same
// civil day into one.
func StreakFromInstants(instants []time.Time, maxLookbackDays int, asOf time.Time, loc *time.Location) int {
	keys := make(domain.DateKeySet, len(instants))
	for _, t := range instants {
		keys.Add(civil.DateKey(t, loc))
	}
	return StreakFromKeys(keys, maxLookbackDays, asOf, loc)
}
