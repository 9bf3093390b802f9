package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classum/campus-backend/internal/config"
	"github.com/classum/campus-backend/internal/database"
	"github.com/classum/campus-backend/internal/model"
	"github.com/classum/campus-backend/internal/repository"
)

// Domain Errors
var (
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrAnnouncementConflict = errors.New("a different announcement with this id already exists")
)

// AnnouncementService publishes announcements and fans each one out to a
// per-recipient unread marker in the same transaction.
type AnnouncementService struct {
	db            database.Conn
	courses       CourseStore
	registrations RegistrationStore
	announcements AnnouncementStore
	rdb           *redis.Client
	log           zerolog.Logger
}

// NewAnnouncementService creates a new AnnouncementService. rdb may be
// nil, which disables the live feed publish.
func NewAnnouncementService(
	db database.Conn,
	courses CourseStore,
	registrations RegistrationStore,
	announcements AnnouncementStore,
	rdb *redis.Client,
	log zerolog.Logger,
) *AnnouncementService {
	return &AnnouncementService{
		db:            db,
		courses:       courses,
		registrations: registrations,
		announcements: announcements,
		rdb:           rdb,
		log:           log.With().Str("component", "announcement_service").Logger(),
	}
}

// Create inserts the announcement and one unread row per currently
// registered student, atomically. A retry with identical content returns
// without re-running fan-out so recipients are never notified twice;
// divergent content fails with ErrAnnouncementConflict. The returned bool
// reports whether a new announcement was actually created.
func (s *AnnouncementService) Create(ctx context.Context, a *model.Announcement) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Plain read, no lock: courses are never deleted.
	course, err := s.courses.GetByID(ctx, tx, a.CourseID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrCourseNotFound
	}
	if err != nil {
		return false, fmt.Errorf("read course: %w", err)
	}

	err = s.announcements.Create(ctx, tx, a)
	if errors.Is(err, repository.ErrDuplicateKey) {
		_ = tx.Rollback(ctx)

		existing, err := s.announcements.GetByID(ctx, s.db, a.ID)
		if err != nil {
			return false, fmt.Errorf("reread announcement: %w", err)
		}
		if existing.ContentEquals(a) {
			return false, nil
		}
		return false, fmt.Errorf("announcement %s: %w", a.ID, ErrAnnouncementConflict)
	}
	if err != nil {
		return false, fmt.Errorf("insert announcement: %w", err)
	}

	userIDs, err := s.registrations.ListUserIDsByCourse(ctx, tx, a.CourseID)
	if err != nil {
		return false, fmt.Errorf("list recipients: %w", err)
	}
	if err := s.announcements.InsertUnread(ctx, tx, a.ID, userIDs); err != nil {
		return false, fmt.Errorf("fan out: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}

	s.log.Info().
		Str("announcement_id", a.ID.String()).
		Str("course_id", a.CourseID.String()).
		Int("recipients", len(userIDs)).
		Msg("Announcement published")

	s.publish(ctx, a, course.Name)
	return true, nil
}

// publish pushes the committed announcement onto the course's live feed
// channel. The unread rows are the source of truth; a lost publish only
// delays discovery until the next list poll.
func (s *AnnouncementService) publish(ctx context.Context, a *model.Announcement, courseName string) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(model.AnnouncementEvent{
		ID:         a.ID,
		CourseID:   a.CourseID,
		CourseName: courseName,
		Title:      a.Title,
	})
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.AnnouncementChannel(a.CourseID.String()), payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("announcement_id", a.ID.String()).Msg("Live feed publish failed")
	}
}

// List returns a page of the user's announcement feed, newest first,
// plus the user's total unread count and whether another page exists.
func (s *AnnouncementService) List(ctx context.Context, userID uuid.UUID, courseID *uuid.UUID, page, limit int) ([]model.AnnouncementListItem, int, bool, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	items, err := s.announcements.ListByUser(ctx, s.db, userID, courseID, limit+1, (page-1)*limit)
	if err != nil {
		return nil, 0, false, err
	}
	hasNext := len(items) > limit
	if hasNext {
		items = items[:limit]
	}
	if items == nil {
		items = []model.AnnouncementListItem{}
	}

	unread, err := s.announcements.CountUnread(ctx, s.db, userID)
	if err != nil {
		return nil, 0, false, err
	}
	return items, unread, hasNext, nil
}

// MarkRead fetches the caller's view of the announcement and flips their
// unread marker. An announcement that doesn't exist and one the caller
// was never a delivery target of are the same NotFound here. Re-marking
// is a no-op; the returned detail reflects the pre-mutation state.
func (s *AnnouncementService) MarkRead(ctx context.Context, id, userID uuid.UUID) (*model.AnnouncementDetail, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	detail, err := s.announcements.GetDetailForUser(ctx, tx, id, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAnnouncementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read announcement: %w", err)
	}

	// Unreachable while registrations are create-only; kept so a future
	// unregister feature cannot leak other courses' announcements.
	registered, err := s.registrations.Exists(ctx, tx, userID, detail.CourseID)
	if err != nil {
		return nil, fmt.Errorf("check registration: %w", err)
	}
	if !registered {
		return nil, ErrAnnouncementNotFound
	}

	if err := s.announcements.MarkRead(ctx, tx, id, userID); err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return detail, nil
}
