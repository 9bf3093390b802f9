package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/classum/campus-backend/internal/database"
	"github.com/classum/campus-backend/internal/model"
)

// RegistrationError is the batch validation outcome: every offending
// course across all three checks, reported together. A single offending
// entry blocks the entire batch; there is no partial success.
type RegistrationError struct {
	CourseNotFound   []uuid.UUID `json:"course_not_found,omitempty"`
	NotRegistrable   []uuid.UUID `json:"not_registrable_status,omitempty"`
	ScheduleConflict []uuid.UUID `json:"schedule_conflict,omitempty"`
}

func (e *RegistrationError) Error() string {
	return "course registration validation failed"
}

func (e *RegistrationError) hasErrors() bool {
	return len(e.CourseNotFound) > 0 || len(e.NotRegistrable) > 0 || len(e.ScheduleConflict) > 0
}

// RegistrationService validates and commits batch course registration.
type RegistrationService struct {
	db            database.Conn
	courses       CourseStore
	registrations RegistrationStore
	log           zerolog.Logger
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(db database.Conn, courses CourseStore, registrations RegistrationStore, log zerolog.Logger) *RegistrationService {
	return &RegistrationService{
		db:            db,
		courses:       courses,
		registrations: registrations,
		log:           log.With().Str("component", "registration_service").Logger(),
	}
}

// Register validates the whole batch inside one transaction and either
// commits a registration per new course or rolls back and returns a
// *RegistrationError carrying every offending course.
//
// Courses are read under shared locks so their status cannot move while
// the batch validates. The schedule-conflict scan reads the student's
// other courses without locking them; two concurrent batches for the
// same student can therefore both pass and double-book — the uniqueness
// key only guards duplicate edges, not overlapping timetables.
func (s *RegistrationService) Register(ctx context.Context, userID uuid.UUID, courseIDs []uuid.UUID) error {
	// Ascending id order keeps error lists reproducible and gives every
	// concurrent batch the same lock acquisition order.
	ids := slices.Clone(courseIDs)
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return strings.Compare(a.String(), b.String())
	})
	ids = slices.Compact(ids)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		regErr     RegistrationError
		newlyAdded []model.Course
	)
	for _, id := range ids {
		course, err := s.courses.GetByIDForShare(ctx, tx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			regErr.CourseNotFound = append(regErr.CourseNotFound, id)
			continue
		}
		if err != nil {
			return fmt.Errorf("lock course %s: %w", id, err)
		}
		if course.Status != model.CourseStatusRegistration {
			regErr.NotRegistrable = append(regErr.NotRegistrable, id)
			continue
		}

		registered, err := s.registrations.Exists(ctx, tx, userID, id)
		if err != nil {
			return fmt.Errorf("check registration: %w", err)
		}
		if registered {
			continue // idempotent no-op
		}
		newlyAdded = append(newlyAdded, *course)
	}

	alreadyRegistered, err := s.registrations.ListOpenCoursesByUser(ctx, tx, userID)
	if err != nil {
		return fmt.Errorf("list registered courses: %w", err)
	}

	for _, c := range newlyAdded {
		if overlapsAny(c, alreadyRegistered) || overlapsAny(c, newlyAdded) {
			regErr.ScheduleConflict = append(regErr.ScheduleConflict, c.ID)
		}
	}

	if regErr.hasErrors() {
		return &regErr
	}

	for _, c := range newlyAdded {
		if err := s.registrations.Upsert(ctx, tx, userID, c.ID); err != nil {
			return fmt.Errorf("register course %s: %w", c.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Int("added", len(newlyAdded)).
		Msg("Courses registered")
	return nil
}

// overlapsAny reports whether course shares a (period, day) slot with any
// other course in the set.
func overlapsAny(course model.Course, others []model.Course) bool {
	for _, o := range others {
		if o.ID == course.ID {
			continue
		}
		if o.Period == course.Period && o.DayOfWeek == course.DayOfWeek {
			return true
		}
	}
	return false
}

// ListCourseIDs lists the ids of every course the student is registered
// to, regardless of status. The live announcement feed subscribes to
// these.
func (s *RegistrationService) ListCourseIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.registrations.ListCourseIDsByUser(ctx, s.db, userID)
}

// ListOpenForStudent lists the student's registered, not-yet-closed
// courses for GET /api/users/me/courses.
func (s *RegistrationService) ListOpenForStudent(ctx context.Context, userID uuid.UUID) ([]model.Course, error) {
	courses, err := s.registrations.ListOpenCoursesByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []model.Course{}
	}
	return courses, nil
}
