package model

import (
	"time"

	"github.com/google/uuid"
)

// CourseType enumerates course categories.
type CourseType string

const (
	CourseTypeLiberalArts   CourseType = "liberal-arts"
	CourseTypeMajorSubjects CourseType = "major-subjects"
)

// CourseStatus enumerates the course lifecycle. Transitions are driven by
// admin action only and move forward: registration → in-progress → closed.
type CourseStatus string

const (
	CourseStatusRegistration CourseStatus = "registration"
	CourseStatusInProgress   CourseStatus = "in-progress"
	CourseStatusClosed       CourseStatus = "closed"
)

// DayOfWeek enumerates teaching days. Weekends hold no classes.
type DayOfWeek string

const (
	DayMonday    DayOfWeek = "monday"
	DayTuesday   DayOfWeek = "tuesday"
	DayWednesday DayOfWeek = "wednesday"
	DayThursday  DayOfWeek = "thursday"
	DayFriday    DayOfWeek = "friday"
)

// Course represents a published course. Code is the natural key used to
// detect duplicate creation attempts.
type Course struct {
	ID          uuid.UUID    `json:"id"`
	Code        string       `json:"code"`
	Type        CourseType   `json:"type"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Credit      int          `json:"credit"`
	Period      int          `json:"period"`
	DayOfWeek   DayOfWeek    `json:"day_of_week"`
	TeacherID   uuid.UUID    `json:"teacher_id"`
	Keywords    string       `json:"keywords"`
	Status      CourseStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// ContentEquals reports whether the caller-supplied fields of other match
// this course. Identity columns and timestamps are excluded.
func (c *Course) ContentEquals(other *Course) bool {
	return c.Code == other.Code &&
		c.Type == other.Type &&
		c.Name == other.Name &&
		c.Description == other.Description &&
		c.Credit == other.Credit &&
		c.Period == other.Period &&
		c.DayOfWeek == other.DayOfWeek &&
		c.TeacherID == other.TeacherID &&
		c.Keywords == other.Keywords
}

// CourseDetail is a course joined with its teacher's display name.
type CourseDetail struct {
	Course
	TeacherName string `json:"teacher"`
}
