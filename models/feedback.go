package models

import (
	"time"

	"github.com/google/uuid"
)

// FeedbackRating is a user's verdict on a generation.
type FeedbackRating string

const (
	FeedbackPositive FeedbackRating = "positive"
	FeedbackNegative FeedbackRating = "negative"
)

// IsValid reports whether r is a known rating
func (r FeedbackRating) IsValid() bool {
	return r == FeedbackPositive || r == FeedbackNegative
}

// Feedback is a rating left on a generation. GenerationID is the auditId
// returned by the generation endpoints.
type Feedback struct {
	ID           uuid.UUID      `json:"id" db:"id"`
	OrgID        uuid.UUID      `json:"org_id" db:"org_id"`
	UserID       uuid.UUID      `json:"user_id" db:"user_id"`
	GenerationID uuid.UUID      `json:"generation_id" db:"generation_id"`
	Rating       FeedbackRating `json:"rating" db:"rating"`
	Comment      *string        `json:"comment" db:"comment"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Feedback model
func (Feedback) TableName() string {
	return "ai_feedback"
}

// NewFeedback creates a feedback row. A blank comment is stored as NULL.
func NewFeedback(orgID, userID, generationID uuid.UUID, rating FeedbackRating, comment string) *Feedback {
	f := &Feedback{
		ID:           uuid.New(),
		OrgID:        orgID,
		UserID:       userID,
		GenerationID: generationID,
		Rating:       rating,
		CreatedAt:    time.Now().UTC(),
	}
	if comment != "" {
		f.Comment = &comment
	}
	return f
}
