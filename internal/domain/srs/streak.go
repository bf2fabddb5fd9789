package srs

import "github.com/hanxue/hanxue-api/internal/domain"

// advanceStreak counts today as a study day.
//
// A repeat call for the same day changes nothing and reports false. Studying
// the day after lastStudyDate extends the streak; any larger gap, or no prior
// date, restarts it at 1. A lastStudyDate after today (clock moved back) is
// treated as a gap.
func advanceStreak(prior domain.StreakState, today domain.Date) (domain.StreakState, bool) {
	if prior.StudiedOn(today) {
		return prior, false
	}

	next := prior
	if prior.LastStudyDate != nil && prior.LastStudyDate.AddDays(1).Equal(today) {
		next.CurrentStreak++
	} else {
		next.CurrentStreak = 1
	}

	next.TotalStudyDays++
	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}
	day := today
	next.LastStudyDate = &day

	return next, true
}
