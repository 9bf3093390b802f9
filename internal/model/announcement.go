package model

import (
	"time"

	"github.com/google/uuid"
)

// Announcement is a per-course notice. The ID doubles as the natural key
// so clients can retry creation idempotently.
type Announcement struct {
	ID        uuid.UUID `json:"id"`
	CourseID  uuid.UUID `json:"course_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ContentEquals reports whether the caller-supplied fields of other match.
func (a *Announcement) ContentEquals(other *Announcement) bool {
	return a.CourseID == other.CourseID &&
		a.Title == other.Title &&
		a.Message == other.Message
}

// AnnouncementListItem is one row of a user's announcement feed.
type AnnouncementListItem struct {
	ID         uuid.UUID `json:"id"`
	CourseID   uuid.UUID `json:"course_id"`
	CourseName string    `json:"course_name"`
	Title      string    `json:"title"`
	Unread     bool      `json:"unread"`
	CreatedAt  time.Time `json:"created_at"`
}

// AnnouncementDetail is the full announcement joined with the reader's
// unread marker. Unread reflects the state before mark-read mutates it.
type AnnouncementDetail struct {
	ID         uuid.UUID `json:"id"`
	CourseID   uuid.UUID `json:"course_id"`
	CourseName string    `json:"course_name"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Unread     bool      `json:"unread"`
	CreatedAt  time.Time `json:"created_at"`
}

// AnnouncementEvent is the payload published to the live feed channel
// after an announcement commits.
type AnnouncementEvent struct {
	ID         uuid.UUID `json:"id"`
	CourseID   uuid.UUID `json:"course_id"`
	CourseName string    `json:"course_name"`
	Title      string    `json:"title"`
}
