package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/classum/campus-backend/internal/database"
	"github.com/classum/campus-backend/internal/model"
	"github.com/classum/campus-backend/internal/repository"
)

// Domain Errors
var (
	ErrCourseNotFound = errors.New("course not found")
	ErrCourseConflict = errors.New("a different course with this code already exists")
)

// CourseService handles the course catalog: idempotent creation keyed by
// course code, lifecycle transitions, and search.
type CourseService struct {
	db      database.Conn
	courses CourseStore
	log     zerolog.Logger
}

// NewCourseService creates a new CourseService.
func NewCourseService(db database.Conn, courses CourseStore, log zerolog.Logger) *CourseService {
	return &CourseService{
		db:      db,
		courses: courses,
		log:     log.With().Str("component", "course_service").Logger(),
	}
}

// Create inserts a course under its code. A retry carrying identical
// fields resolves to the existing course's id; a retry with any field
// changed fails with ErrCourseConflict.
func (s *CourseService) Create(ctx context.Context, c *model.Course) (uuid.UUID, error) {
	c.ID = uuid.New()
	c.Status = model.CourseStatusRegistration

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = s.courses.Create(ctx, tx, c)
	if err == nil {
		if err := tx.Commit(ctx); err != nil {
			return uuid.Nil, fmt.Errorf("commit: %w", err)
		}
		s.log.Info().Str("course_id", c.ID.String()).Str("code", c.Code).Msg("Course created")
		return c.ID, nil
	}
	if !errors.Is(err, repository.ErrDuplicateKey) {
		return uuid.Nil, fmt.Errorf("insert course: %w", err)
	}

	// The failed insert poisons the transaction; end it before comparing
	// against whatever is currently committed under that code.
	_ = tx.Rollback(ctx)

	existing, err := s.courses.GetByCode(ctx, s.db, c.Code)
	if err != nil {
		return uuid.Nil, fmt.Errorf("reread course %s: %w", c.Code, err)
	}
	if existing.ContentEquals(c) {
		return existing.ID, nil
	}
	return uuid.Nil, fmt.Errorf("course code %s: %w", c.Code, ErrCourseConflict)
}

// GetDetail retrieves a course with its teacher's name.
func (s *CourseService) GetDetail(ctx context.Context, id uuid.UUID) (*model.CourseDetail, error) {
	d, err := s.courses.GetDetail(ctx, s.db, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCourseNotFound
	}
	return d, err
}

// SetStatus moves a course to the given lifecycle status. Transitions are
// admin-driven and expected to move forward only; ordering is not
// enforced here or by the store.
func (s *CourseService) SetStatus(ctx context.Context, id uuid.UUID, status model.CourseStatus) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	affected, err := s.courses.UpdateStatus(ctx, tx, id, status)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if affected == 0 {
		return ErrCourseNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.log.Info().Str("course_id", id.String()).Str("status", string(status)).Msg("Course status changed")
	return nil
}

// Search lists courses matching the filter with offset pagination. It
// fetches one row beyond the page so the caller can emit a next link.
func (s *CourseService) Search(ctx context.Context, f repository.CourseFilter, page, limit int) ([]model.CourseDetail, bool, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	courses, err := s.courses.Search(ctx, s.db, f, limit+1, (page-1)*limit)
	if err != nil {
		return nil, false, err
	}
	hasNext := len(courses) > limit
	if hasNext {
		courses = courses[:limit]
	}
	if courses == nil {
		courses = []model.CourseDetail{}
	}
	return courses, hasNext, nil
}
