package service

import (
	"alcyxob/workout-scheduler/internal/domain"
	"alcyxob/workout-scheduler/internal/recurrence"
	"alcyxob/workout-scheduler/internal/repository"
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultGenerationCap = 12
	DefaultHorizonDays   = 90
)

// GenerateResult tells the caller what one generator invocation did.
// Created is accurate even when Generate returns an error.
type GenerateResult struct {
	Created    int `json:"created"`
	Existing   int `json:"existing"`   // already materialised, found by the pre-check
	Duplicates int `json:"duplicates"` // lost a race against a concurrent invocation
}

// Generator expands a RecurrenceRule into AssignedWorkouts up to a horizon.
type Generator struct {
	workouts    repository.AssignedWorkoutRepository
	now         func() time.Time
	defaultCap  int
	horizonDays int
}

// NewGenerator creates a Generator. Non-positive cap/horizon fall back to the defaults.
func NewGenerator(workouts repository.AssignedWorkoutRepository, now func() time.Time, defaultCap, horizonDays int) *Generator {
	if now == nil {
		now = time.Now
	}
	if defaultCap <= 0 {
		defaultCap = DefaultGenerationCap
	}
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	return &Generator{
		workouts:    workouts,
		now:         now,
		defaultCap:  defaultCap,
		horizonDays: horizonDays,
	}
}

// DefaultCap is used when Generate is called with maxNew <= 0.
func (g *Generator) DefaultCap() int {
	return g.defaultCap
}

// Generate materialises at most maxNew new occurrences of rule. Candidates before
// today are skipped without counting against maxNew, and so are days the rule
// already has an occurrence on. New rows are written in a single batch after
// the loop; if anything fails before that, nothing is written.
func (g *Generator) Generate(ctx context.Context, rule *domain.RecurrenceRule, maxNew int) (GenerateResult, error) {
	var result GenerateResult
	if !rule.IsActive {
		return result, ErrRecurrenceInactive
	}
	if maxNew <= 0 {
		maxNew = g.defaultCap
	}

	today := domain.StartOfDay(g.now())
	horizon := today.AddDate(0, 0, g.horizonDays)
	if rule.EndDate != nil {
		horizon = domain.StartOfDay(*rule.EndDate)
	}

	weekdays := recurrence.EffectiveWeekdays(rule)
	current := recurrence.AlignToWeekdays(rule.StartDate.UTC(), weekdays)

	logger := log.WithFields(log.Fields{
		"rule_id": rule.ID.Hex(),
		"user_id": rule.UserID.Hex(),
	})

	staged := make([]*domain.AssignedWorkout, 0, maxNew)
	for ; !domain.StartOfDay(current).After(horizon) && len(staged) < maxNew; current = recurrence.Advance(current, rule.RecurrenceType, rule.Interval, weekdays) {
		if domain.StartOfDay(current).Before(today) {
			continue
		}

		day := domain.DayKey(current)
		exists, err := g.workouts.ExistsForDay(ctx, rule.UserID, rule.TemplateID, day, rule.ID)
		if err != nil {
			return result, fmt.Errorf("check existing occurrence on %s: %w", day, err)
		}
		if exists {
			result.Existing++
			continue
		}

		ruleID := rule.ID
		staged = append(staged, &domain.AssignedWorkout{
			UserID:       rule.UserID,
			TemplateID:   rule.TemplateID,
			ScheduledAt:  current,
			Status:       domain.StatusPending,
			RecurrenceID: &ruleID,
		})
	}

	inserted, err := g.workouts.CreateMany(ctx, staged)
	result.Created = len(inserted.Inserted)
	result.Duplicates = inserted.Duplicates
	if err != nil {
		logger.WithField("created", result.Created).Errorf("generate occurrences: %s", err)
		return result, fmt.Errorf("persist %d staged occurrences (%d written): %w", len(staged), result.Created, err)
	}

	logger.WithFields(log.Fields{
		"created":    result.Created,
		"existing":   result.Existing,
		"duplicates": result.Duplicates,
	}).Debug("occurrences generated")
	return result, nil
}
