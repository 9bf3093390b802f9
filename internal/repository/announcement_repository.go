package repository

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/classum/campus-backend/internal/database"
	"github.com/classum/campus-backend/internal/model"
)

// AnnouncementRepository handles announcements and their per-recipient
// unread markers.
type AnnouncementRepository struct{}

// NewAnnouncementRepository creates a new AnnouncementRepository.
func NewAnnouncementRepository() *AnnouncementRepository {
	return &AnnouncementRepository{}
}

// Create inserts a new announcement. An id collision surfaces as
// ErrDuplicateKey.
func (r *AnnouncementRepository) Create(ctx context.Context, db database.DBTX, a *model.Announcement) error {
	err := db.QueryRow(ctx,
		`INSERT INTO announcements (id, course_id, title, message)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		a.ID, a.CourseID, a.Title, a.Message,
	).Scan(&a.CreatedAt)
	return mapDuplicateKey(err)
}

// GetByID retrieves an announcement without locking.
func (r *AnnouncementRepository) GetByID(ctx context.Context, db database.DBTX, id uuid.UUID) (*model.Announcement, error) {
	a := &model.Announcement{}
	err := db.QueryRow(ctx,
		`SELECT id, course_id, title, message, created_at FROM announcements WHERE id = $1`, id,
	).Scan(&a.ID, &a.CourseID, &a.Title, &a.Message, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// InsertUnread creates one unread delivery row per user, in the caller's
// transaction, so fan-out is never partially visible.
func (r *AnnouncementRepository) InsertUnread(ctx context.Context, db database.DBTX, announcementID uuid.UUID, userIDs []uuid.UUID) error {
	for _, userID := range userIDs {
		if _, err := db.Exec(ctx,
			`INSERT INTO unread_announcements (announcement_id, user_id) VALUES ($1, $2)`,
			announcementID, userID); err != nil {
			return err
		}
	}
	return nil
}

// ListByUser lists a user's announcement feed, newest first, each row
// carrying the unread flag from the delivery marker.
func (r *AnnouncementRepository) ListByUser(ctx context.Context, db database.DBTX, userID uuid.UUID, courseID *uuid.UUID, limit, offset int) ([]model.AnnouncementListItem, error) {
	query := `SELECT a.id, a.course_id, c.name, a.title, NOT ua.is_deleted, a.created_at
	          FROM announcements a
	          JOIN courses c ON c.id = a.course_id
	          JOIN unread_announcements ua ON ua.announcement_id = a.id AND ua.user_id = $1`
	args := []any{userID}
	if courseID != nil {
		query += ` WHERE a.course_id = $2`
		args = append(args, *courseID)
	}
	query += ` ORDER BY a.created_at DESC, a.id DESC LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.AnnouncementListItem
	for rows.Next() {
		var it model.AnnouncementListItem
		if err := rows.Scan(&it.ID, &it.CourseID, &it.CourseName, &it.Title, &it.Unread, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// CountUnread counts a user's undelivered announcements.
func (r *AnnouncementRepository) CountUnread(ctx context.Context, db database.DBTX, userID uuid.UUID) (int, error) {
	var n int
	err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM unread_announcements WHERE user_id = $1 AND is_deleted = FALSE`,
		userID,
	).Scan(&n)
	return n, err
}

// GetDetailForUser fetches an announcement joined to the caller's unread
// marker. No row means the announcement is missing or the user was never
// a fan-out target; the two cases are indistinguishable here.
func (r *AnnouncementRepository) GetDetailForUser(ctx context.Context, db database.DBTX, id, userID uuid.UUID) (*model.AnnouncementDetail, error) {
	d := &model.AnnouncementDetail{}
	err := db.QueryRow(ctx,
		`SELECT a.id, a.course_id, c.name, a.title, a.message, NOT ua.is_deleted, a.created_at
		 FROM announcements a
		 JOIN courses c ON c.id = a.course_id
		 JOIN unread_announcements ua ON ua.announcement_id = a.id AND ua.user_id = $2
		 WHERE a.id = $1`,
		id, userID,
	).Scan(&d.ID, &d.CourseID, &d.CourseName, &d.Title, &d.Message, &d.Unread, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// MarkRead flips the user's delivery marker to read. Re-marking an
// already-read announcement affects zero rows and is not an error.
func (r *AnnouncementRepository) MarkRead(ctx context.Context, db database.DBTX, id, userID uuid.UUID) error {
	_, err := db.Exec(ctx,
		`UPDATE unread_announcements SET is_deleted = TRUE
		 WHERE announcement_id = $1 AND user_id = $2 AND is_deleted = FALSE`,
		id, userID)
	return err
}
