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
	ErrClassNotFound = errors.New("class not found")
	ErrClassConflict = errors.New("a different class with this part already exists")
)

// ClassService handles per-course class creation and listing.
type ClassService struct {
	db      database.Conn
	courses CourseStore
	classes ClassStore
	log     zerolog.Logger
}

// NewClassService creates a new ClassService.
func NewClassService(db database.Conn, courses CourseStore, classes ClassStore, log zerolog.Logger) *ClassService {
	return &ClassService{
		db:      db,
		courses: courses,
		classes: classes,
		log:     log.With().Str("component", "class_service").Logger(),
	}
}

// Create inserts a class under its (course, part) key, idempotently the
// same way courses are: identical retries resolve to the existing id,
// divergent ones fail with ErrClassConflict.
func (s *ClassService) Create(ctx context.Context, c *model.Class) (uuid.UUID, error) {
	c.ID = uuid.New()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Shared lock freezes the course row while the class is added.
	if _, err := s.courses.GetByIDForShare(ctx, tx, c.CourseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrCourseNotFound
		}
		return uuid.Nil, fmt.Errorf("lock course: %w", err)
	}

	err = s.classes.Create(ctx, tx, c)
	if err == nil {
		if err := tx.Commit(ctx); err != nil {
			return uuid.Nil, fmt.Errorf("commit: %w", err)
		}
		s.log.Info().Str("class_id", c.ID.String()).Int("part", c.Part).Msg("Class created")
		return c.ID, nil
	}
	if !errors.Is(err, repository.ErrDuplicateKey) {
		return uuid.Nil, fmt.Errorf("insert class: %w", err)
	}

	_ = tx.Rollback(ctx)

	existing, err := s.classes.GetByCourseAndPart(ctx, s.db, c.CourseID, c.Part)
	if err != nil {
		return uuid.Nil, fmt.Errorf("reread class: %w", err)
	}
	if existing.Title == c.Title && existing.Description == c.Description {
		return existing.ID, nil
	}
	return uuid.Nil, fmt.Errorf("course %s part %d: %w", c.CourseID, c.Part, ErrClassConflict)
}

// ListByCourse lists a course's classes, latest part first, annotated
// with the calling student's submission state.
func (s *ClassService) ListByCourse(ctx context.Context, courseID, userID uuid.UUID) ([]model.ClassWithSubmission, error) {
	if _, err := s.courses.GetByID(ctx, s.db, courseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	classes, err := s.classes.ListByCourse(ctx, s.db, courseID, userID)
	if err != nil {
		return nil, err
	}
	if classes == nil {
		classes = []model.ClassWithSubmission{}
	}
	return classes, nil
}
