package model

import (
	"time"

	"github.com/google/uuid"
)

// Registration is the enrollment edge between a student and a course.
// (CourseID, UserID) is the upsert key; registrations are create-only.
type Registration struct {
	CourseID  uuid.UUID `json:"course_id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
