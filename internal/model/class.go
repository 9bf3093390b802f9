package model

import (
	"time"

	"github.com/google/uuid"
)

// Class is one session of a course. (CourseID, Part) is the natural key.
// SubmissionClosed flips false→true once, on export, and never reverts.
type Class struct {
	ID               uuid.UUID `json:"id"`
	CourseID         uuid.UUID `json:"course_id"`
	Part             int       `json:"part"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	SubmissionClosed bool      `json:"submission_closed"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ClassWithSubmission is a class annotated with whether the requesting
// student has already submitted the assignment.
type ClassWithSubmission struct {
	Class
	Submitted bool `json:"submitted"`
}
