package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CalendarExport stores metadata about an exported .ics file.
// The file itself resides in S3.
type CalendarExport struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	ObjectKey   string             `bson:"objectKey" json:"-"`           // key in the S3 bucket, internal use
	RangeStart  string             `bson:"rangeStart" json:"rangeStart"` // YYYY-MM-DD
	RangeEnd    string             `bson:"rangeEnd" json:"rangeEnd"`
	Events      int                `bson:"events" json:"events"`
	ContentType string             `bson:"contentType" json:"contentType"`
	Size        int64              `bson:"size" json:"size"`             // bytes
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
