package recurrence

import (
	"errors"
	"fmt"
	"time"

	"alcyxob/workout-scheduler/internal/domain"
)

var (
	ErrInvalidType      = errors.New("recurrence type must be one of daily, weekly, monthly")
	ErrInvalidInterval  = errors.New("recurrence interval must be at least 1")
	ErrInvalidWeekday   = errors.New("daysOfWeek values must be between 0 (Sunday) and 6 (Saturday)")
	ErrEndBeforeStart   = errors.New("recurrence end date is before its start date")
	ErrMissingStartDate = errors.New("recurrence start date is required")
)

// Validate checks the rule invariants. A zero interval is normalised to 1 first.
func Validate(rule *domain.RecurrenceRule) error {
	if !rule.RecurrenceType.IsValid() {
		return fmt.Errorf("%w: got %q", ErrInvalidType, rule.RecurrenceType)
	}
	if rule.Interval == 0 {
		rule.Interval = 1
	}
	if rule.Interval < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidInterval, rule.Interval)
	}
	for _, d := range rule.DaysOfWeek {
		if d < 0 || d > 6 {
			return fmt.Errorf("%w: got %d", ErrInvalidWeekday, d)
		}
	}
	if rule.StartDate.IsZero() {
		return ErrMissingStartDate
	}
	if rule.EndDate != nil && domain.StartOfDay(*rule.EndDate).Before(domain.StartOfDay(rule.StartDate)) {
		return ErrEndBeforeStart
	}
	return nil
}

// EffectiveWeekdays returns the weekday filter the stepper should honour; it is
// only meaningful for weekly rules.
func EffectiveWeekdays(rule *domain.RecurrenceRule) []time.Weekday {
	if rule.RecurrenceType != domain.RecurrenceWeekly {
		return nil
	}
	return rule.Weekdays()
}
