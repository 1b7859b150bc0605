package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecurrenceType selects the unit a RecurrenceRule advances by.
type RecurrenceType string

const (
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
)

func (rt RecurrenceType) String() string {
	return string(rt)
}

func (rt RecurrenceType) IsValid() bool {
	switch rt {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	default:
		return false
	}
}

// RecurrenceRule is the durable record of a repeating schedule. The engine only
// ever flips IsActive; deactivation is the soft-delete path.
type RecurrenceRule struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	TemplateID     primitive.ObjectID `bson:"templateId" json:"templateId"`
	RecurrenceType RecurrenceType     `bson:"recurrenceType" json:"recurrenceType"`
	Interval       int                `bson:"interval" json:"interval"`
	StartDate      time.Time          `bson:"startDate" json:"startDate"`                 // inclusive, carries the time of day of every occurrence
	EndDate        *time.Time         `bson:"endDate,omitempty" json:"endDate,omitempty"` // inclusive
	DaysOfWeek     []int              `bson:"daysOfWeek,omitempty" json:"daysOfWeek,omitempty"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Weekdays converts DaysOfWeek (Sunday=0) to time.Weekday values.
func (r *RecurrenceRule) Weekdays() []time.Weekday {
	if len(r.DaysOfWeek) == 0 {
		return nil
	}
	days := make([]time.Weekday, 0, len(r.DaysOfWeek))
	for _, d := range r.DaysOfWeek {
		days = append(days, time.Weekday(d))
	}
	return days
}
