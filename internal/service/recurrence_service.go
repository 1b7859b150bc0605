package service

import (
	"alcyxob/workout-scheduler/internal/domain"
	"alcyxob/workout-scheduler/internal/repository"
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecurrenceService manages rules after they were created by ScheduleWorkout.
type RecurrenceService interface {
	ListRecurrences(ctx context.Context, userID primitive.ObjectID, activeOnly bool) ([]domain.RecurrenceRule, error)
	DeactivateRecurrence(ctx context.Context, userID, ruleID primitive.ObjectID) (*domain.RecurrenceRule, error)
	RefreshRecurrence(ctx context.Context, userID, ruleID primitive.ObjectID, maxNew int) (*GenerateResult, error)
}

type recurrenceService struct {
	rules     repository.RecurrenceRuleRepository
	generator *Generator
}

func NewRecurrenceService(rules repository.RecurrenceRuleRepository, generator *Generator) RecurrenceService {
	return &recurrenceService{
		rules:     rules,
		generator: generator,
	}
}

func (s *recurrenceService) ListRecurrences(ctx context.Context, userID primitive.ObjectID, activeOnly bool) ([]domain.RecurrenceRule, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrUnauthorized
	}
	return s.rules.ListByUser(ctx, userID, activeOnly)
}

// DeactivateRecurrence stops future generation. Occurrences already
// materialised stay where they are.
func (s *recurrenceService) DeactivateRecurrence(ctx context.Context, userID, ruleID primitive.ObjectID) (*domain.RecurrenceRule, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrUnauthorized
	}
	rule, err := s.rules.Deactivate(ctx, userID, ruleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecurrenceNotFound
		}
		return nil, err
	}
	log.WithFields(log.Fields{"rule_id": ruleID.Hex(), "user_id": userID.Hex()}).Info("recurrence deactivated")
	return rule, nil
}

// RefreshRecurrence re-runs the generator for one rule to extend its window.
func (s *recurrenceService) RefreshRecurrence(ctx context.Context, userID, ruleID primitive.ObjectID, maxNew int) (*GenerateResult, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrUnauthorized
	}
	if maxNew < 0 {
		return nil, invalidArgument("cap must not be negative")
	}
	rule, err := s.rules.GetByID(ctx, userID, ruleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecurrenceNotFound
		}
		return nil, err
	}
	result, err := s.generator.Generate(ctx, rule, maxNew)
	if err != nil {
		return &result, err
	}
	return &result, nil
}
