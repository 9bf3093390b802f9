package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/classum/campus-backend/internal/database"
	"github.com/classum/campus-backend/internal/model"
)

// RegistrationRepository handles the student↔course enrollment edges.
type RegistrationRepository struct{}

// NewRegistrationRepository creates a new RegistrationRepository.
func NewRegistrationRepository() *RegistrationRepository {
	return &RegistrationRepository{}
}

// Exists reports whether the user is registered to the course.
func (r *RegistrationRepository) Exists(ctx context.Context, db database.DBTX, userID, courseID uuid.UUID) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM registrations WHERE user_id = $1 AND course_id = $2)`,
		userID, courseID,
	).Scan(&exists)
	return exists, err
}

// Upsert creates the enrollment edge if absent. The (course, user) primary
// key, not the caller's locks, is the actual duplicate-registration guard.
func (r *RegistrationRepository) Upsert(ctx context.Context, db database.DBTX, userID, courseID uuid.UUID) error {
	_, err := db.Exec(ctx,
		`INSERT INTO registrations (course_id, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT (course_id, user_id) DO NOTHING`,
		courseID, userID)
	return err
}

// ListOpenCoursesByUser lists the user's registered courses that are not
// yet closed. This is the set scanned for schedule conflicts.
func (r *RegistrationRepository) ListOpenCoursesByUser(ctx context.Context, db database.DBTX, userID uuid.UUID) ([]model.Course, error) {
	return r.listCoursesByUser(ctx, db, userID, true)
}

// ListCoursesByUser lists every course the user is registered to,
// regardless of status.
func (r *RegistrationRepository) ListCoursesByUser(ctx context.Context, db database.DBTX, userID uuid.UUID) ([]model.Course, error) {
	return r.listCoursesByUser(ctx, db, userID, false)
}

func (r *RegistrationRepository) listCoursesByUser(ctx context.Context, db database.DBTX, userID uuid.UUID, openOnly bool) ([]model.Course, error) {
	query := `SELECT c.id, c.code, c.type, c.name, c.description, c.credit, c.period, c.day_of_week,
	                 c.teacher_id, c.keywords, c.status, c.created_at, c.updated_at
	          FROM registrations r
	          JOIN courses c ON c.id = r.course_id
	          WHERE r.user_id = $1`
	if openOnly {
		query += ` AND c.status <> 'closed'`
	}
	query += ` ORDER BY c.code`

	rows, err := db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.Code, &c.Type, &c.Name, &c.Description, &c.Credit,
			&c.Period, &c.DayOfWeek, &c.TeacherID, &c.Keywords, &c.Status,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// ListUserIDsByCourse lists every user registered to the course. Used for
// announcement fan-out inside the creating transaction.
func (r *RegistrationRepository) ListUserIDsByCourse(ctx context.Context, db database.DBTX, courseID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := db.Query(ctx,
		`SELECT user_id FROM registrations WHERE course_id = $1`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListCourseIDsByUser lists the ids of courses the user is registered to.
func (r *RegistrationRepository) ListCourseIDsByUser(ctx context.Context, db database.DBTX, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := db.Query(ctx,
		`SELECT course_id FROM registrations WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
