package service

import (
	"errors"
	"fmt"
)

// --- Error Definitions ---
// Handlers map these with errors.Is; details are attached with %w.
var (
	ErrUnauthorized    = errors.New("unauthorized: no resolved user identity")
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")

	ErrTemplateNotFound        = fmt.Errorf("workout template %w", ErrNotFound)
	ErrWorkoutNotFound         = fmt.Errorf("assigned workout %w", ErrNotFound)
	ErrRecurrenceNotFound      = fmt.Errorf("recurrence rule %w", ErrNotFound)
	ErrInvalidStatusTransition = fmt.Errorf("%w: invalid status transition", ErrConflict)
	ErrRecurrenceInactive      = fmt.Errorf("%w: recurrence rule is inactive", ErrConflict)
	ErrDuplicateOccurrence     = fmt.Errorf("%w: an occurrence of this rule already exists on that day", ErrConflict)
)

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
