package model

import (
	"time"

	"github.com/google/uuid"
)

// Submission is one student's assignment upload for a class.
// (UserID, ClassID) is unique; resubmission replaces the file reference.
// Score stays nil until the teacher records grades after export.
type Submission struct {
	UserID    uuid.UUID `json:"user_id"`
	ClassID   uuid.UUID `json:"class_id"`
	FileName  string    `json:"file_name"`
	FileRef   string    `json:"-"`
	Score     *int      `json:"score,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubmissionExport pairs a stored file with its submitter for archiving.
type SubmissionExport struct {
	UserID   uuid.UUID
	UserCode string
	FileName string
	FileRef  string
}

// ClassScore is one class row inside a student's grade report.
type ClassScore struct {
	ClassID    uuid.UUID `json:"class_id"`
	Part       int       `json:"part"`
	Title      string    `json:"title"`
	Score      *int      `json:"score"`
	Submitters int       `json:"submitters"`
}
