package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/classum/campus-backend/internal/database"
	"github.com/classum/campus-backend/internal/model"
)

// ClassRepository handles class data access.
type ClassRepository struct{}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository() *ClassRepository {
	return &ClassRepository{}
}

const classColumns = `id, course_id, part, title, description, submission_closed, created_at, updated_at`

func scanClass(row interface{ Scan(dest ...any) error }) (*model.Class, error) {
	c := &model.Class{}
	err := row.Scan(&c.ID, &c.CourseID, &c.Part, &c.Title, &c.Description,
		&c.SubmissionClosed, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new class. A (course, part) collision surfaces as
// ErrDuplicateKey.
func (r *ClassRepository) Create(ctx context.Context, db database.DBTX, c *model.Class) error {
	err := db.QueryRow(ctx,
		`INSERT INTO classes (id, course_id, part, title, description)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING submission_closed, created_at, updated_at`,
		c.ID, c.CourseID, c.Part, c.Title, c.Description,
	).Scan(&c.SubmissionClosed, &c.CreatedAt, &c.UpdatedAt)
	return mapDuplicateKey(err)
}

// GetByCourseAndPart retrieves a class by its natural key without locking.
func (r *ClassRepository) GetByCourseAndPart(ctx context.Context, db database.DBTX, courseID uuid.UUID, part int) (*model.Class, error) {
	return scanClass(db.QueryRow(ctx,
		`SELECT `+classColumns+` FROM classes WHERE course_id = $1 AND part = $2`,
		courseID, part))
}

// GetByIDForShare retrieves a class under a shared row lock, freezing
// submission_closed for the caller's transaction.
func (r *ClassRepository) GetByIDForShare(ctx context.Context, db database.DBTX, id uuid.UUID) (*model.Class, error) {
	return scanClass(db.QueryRow(ctx,
		`SELECT `+classColumns+` FROM classes WHERE id = $1 FOR SHARE`, id))
}

// GetByIDForUpdate retrieves a class under an exclusive row lock, for
// the close-and-export path which serializes against all readers.
func (r *ClassRepository) GetByIDForUpdate(ctx context.Context, db database.DBTX, id uuid.UUID) (*model.Class, error) {
	return scanClass(db.QueryRow(ctx,
		`SELECT `+classColumns+` FROM classes WHERE id = $1 FOR UPDATE`, id))
}

// ListByCourse lists a course's classes, latest part first, each annotated
// with whether the given user has a submission.
func (r *ClassRepository) ListByCourse(ctx context.Context, db database.DBTX, courseID, userID uuid.UUID) ([]model.ClassWithSubmission, error) {
	rows, err := db.Query(ctx,
		`SELECT c.id, c.course_id, c.part, c.title, c.description, c.submission_closed,
		        c.created_at, c.updated_at,
		        s.user_id IS NOT NULL AS submitted
		 FROM classes c
		 LEFT JOIN submissions s ON s.class_id = c.id AND s.user_id = $2
		 WHERE c.course_id = $1
		 ORDER BY c.part DESC`,
		courseID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []model.ClassWithSubmission
	for rows.Next() {
		var c model.ClassWithSubmission
		if err := rows.Scan(&c.ID, &c.CourseID, &c.Part, &c.Title, &c.Description,
			&c.SubmissionClosed, &c.CreatedAt, &c.UpdatedAt, &c.Submitted); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// CloseSubmissions flips submission_closed to true. Re-closing an already
// closed class is a no-op, not an error.
func (r *ClassRepository) CloseSubmissions(ctx context.Context, db database.DBTX, id uuid.UUID) error {
	_, err := db.Exec(ctx,
		`UPDATE classes SET submission_closed = TRUE, updated_at = CURRENT_TIMESTAMP WHERE id = $1`,
		id,
	)
	return err
}
