// Package recurrence holds the pure date arithmetic behind recurring workouts.
package recurrence

import (
	"time"

	"alcyxob/workout-scheduler/internal/domain"
)

// weekdayScanLimit bounds the day-by-day search for the next matching weekday.
const weekdayScanLimit = 14

// Advance returns the next candidate date after date for the given recurrence.
// It never mutates its input and always returns a date strictly after it.
//
// For weekly rules with a weekday filter the interval is not applied: the next
// matching weekday is returned even when interval > 1.
func Advance(date time.Time, rt domain.RecurrenceType, interval int, daysOfWeek []time.Weekday) time.Time {
	if interval < 1 {
		interval = 1
	}

	switch rt {
	case domain.RecurrenceDaily:
		return date.AddDate(0, 0, interval)
	case domain.RecurrenceWeekly:
		if len(daysOfWeek) > 0 {
			if next, ok := NextMatchingWeekday(date, daysOfWeek); ok {
				return next
			}
		}
		return date.AddDate(0, 0, 7*interval)
	case domain.RecurrenceMonthly:
		return AddMonthsClamped(date, interval)
	default:
		// Unknown types are rejected before reaching here; step a day so loops terminate.
		return date.AddDate(0, 0, 1)
	}
}

// NextMatchingWeekday scans forward one day at a time, up to two weeks, for the
// first date after date whose weekday is in days.
func NextMatchingWeekday(date time.Time, days []time.Weekday) (time.Time, bool) {
	for i := 1; i <= weekdayScanLimit; i++ {
		candidate := date.AddDate(0, 0, i)
		if containsWeekday(days, candidate.Weekday()) {
			return candidate, true
		}
	}
	return time.Time{}, false
}

// AlignToWeekdays returns date itself when its weekday is in days, otherwise the
// next matching weekday. An empty filter leaves date unchanged.
func AlignToWeekdays(date time.Time, days []time.Weekday) time.Time {
	if len(days) == 0 || containsWeekday(days, date.Weekday()) {
		return date
	}
	if next, ok := NextMatchingWeekday(date, days); ok {
		return next
	}
	return date
}

// AddMonthsClamped adds months to date, keeping the time of day and clamping the
// day of month to the last day of the target month (Jan 31 + 1 -> Feb 28/29).
func AddMonthsClamped(date time.Time, months int) time.Time {
	y, m, d := date.Date()
	hh, mm, ss := date.Clock()

	firstOfTarget := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, date.Location())
	if last := daysInMonth(firstOfTarget.Year(), firstOfTarget.Month(), date.Location()); d > last {
		d = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, hh, mm, ss, date.Nanosecond(), date.Location())
}

func daysInMonth(year int, month time.Month, loc *time.Location) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

func containsWeekday(days []time.Weekday, wd time.Weekday) bool {
	for _, d := range days {
		if d == wd {
			return true
		}
	}
	return false
}
