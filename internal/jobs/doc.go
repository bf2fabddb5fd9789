// Package jobs runs periodic maintenance on a gocron scheduler.
//
// The only job today is the streak sweep: once a day, in the study time zone,
// users whose last study day is before yesterday have their current streak
// reset to zero so listings do not show a streak that has already lapsed.
// Longest streak, total study days and XP are not touched.
package jobs
