package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/classum/campus-backend/internal/database"
	"github.com/classum/campus-backend/internal/model"
)

// CourseRepository handles course data access.
type CourseRepository struct{}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository() *CourseRepository {
	return &CourseRepository{}
}

const courseColumns = `id, code, type, name, description, credit, period, day_of_week, teacher_id, keywords, status, created_at, updated_at`

func scanCourse(row interface{ Scan(dest ...any) error }) (*model.Course, error) {
	c := &model.Course{}
	err := row.Scan(&c.ID, &c.Code, &c.Type, &c.Name, &c.Description, &c.Credit,
		&c.Period, &c.DayOfWeek, &c.TeacherID, &c.Keywords, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new course. A code collision surfaces as ErrDuplicateKey.
func (r *CourseRepository) Create(ctx context.Context, db database.DBTX, c *model.Course) error {
	err := db.QueryRow(ctx,
		`INSERT INTO courses (id, code, type, name, description, credit, period, day_of_week, teacher_id, keywords, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at, updated_at`,
		c.ID, c.Code, c.Type, c.Name, c.Description, c.Credit,
		c.Period, c.DayOfWeek, c.TeacherID, c.Keywords, c.Status,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return mapDuplicateKey(err)
}

// GetByID retrieves a course without locking.
func (r *CourseRepository) GetByID(ctx context.Context, db database.DBTX, id uuid.UUID) (*model.Course, error) {
	return scanCourse(db.QueryRow(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
}

// GetByCode retrieves a course by its natural key without locking.
func (r *CourseRepository) GetByCode(ctx context.Context, db database.DBTX, code string) (*model.Course, error) {
	return scanCourse(db.QueryRow(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE code = $1`, code))
}

// GetByIDForShare retrieves a course under a shared row lock, freezing its
// status for the duration of the caller's transaction.
func (r *CourseRepository) GetByIDForShare(ctx context.Context, db database.DBTX, id uuid.UUID) (*model.Course, error) {
	return scanCourse(db.QueryRow(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = $1 FOR SHARE`, id))
}

// GetDetail retrieves a course joined with its teacher's name.
func (r *CourseRepository) GetDetail(ctx context.Context, db database.DBTX, id uuid.UUID) (*model.CourseDetail, error) {
	d := &model.CourseDetail{}
	err := db.QueryRow(ctx,
		`SELECT c.id, c.code, c.type, c.name, c.description, c.credit, c.period, c.day_of_week,
		        c.teacher_id, c.keywords, c.status, c.created_at, c.updated_at, u.name
		 FROM courses c
		 JOIN users u ON u.id = c.teacher_id
		 WHERE c.id = $1`, id,
	).Scan(&d.ID, &d.Code, &d.Type, &d.Name, &d.Description, &d.Credit, &d.Period,
		&d.DayOfWeek, &d.TeacherID, &d.Keywords, &d.Status, &d.CreatedAt, &d.UpdatedAt, &d.TeacherName)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Exists reports whether a course row exists. Courses are never deleted,
// so an unlocked existence check is stable for the transaction.
func (r *CourseRepository) Exists(ctx context.Context, db database.DBTX, id uuid.UUID) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM courses WHERE id = $1)`, id,
	).Scan(&exists)
	return exists, err
}

// UpdateStatus sets a course's lifecycle status. Returns the number of
// rows affected so callers can distinguish a missing course.
func (r *CourseRepository) UpdateStatus(ctx context.Context, db database.DBTX, id uuid.UUID, status model.CourseStatus) (int64, error) {
	tag, err := db.Exec(ctx,
		`UPDATE courses SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CourseFilter narrows a course search. Zero values mean "no filter".
type CourseFilter struct {
	Type      model.CourseType
	Credit    int
	Teacher   string
	Period    int
	DayOfWeek model.DayOfWeek
	Keywords  string
	Status    model.CourseStatus
}

// Search lists courses matching the filter, ordered by code, with
// offset pagination.
func (r *CourseRepository) Search(ctx context.Context, db database.DBTX, f CourseFilter, limit, offset int) ([]model.CourseDetail, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Type != "" {
		conds = append(conds, `c.type = `+arg(f.Type))
	}
	if f.Credit > 0 {
		conds = append(conds, `c.credit = `+arg(f.Credit))
	}
	if f.Teacher != "" {
		conds = append(conds, `u.name = `+arg(f.Teacher))
	}
	if f.Period > 0 {
		conds = append(conds, `c.period = `+arg(f.Period))
	}
	if f.DayOfWeek != "" {
		conds = append(conds, `c.day_of_week = `+arg(f.DayOfWeek))
	}
	if f.Status != "" {
		conds = append(conds, `c.status = `+arg(f.Status))
	}
	for _, kw := range strings.Fields(f.Keywords) {
		conds = append(conds, `(c.name ILIKE `+arg("%"+kw+"%")+` OR c.keywords ILIKE `+arg("%"+kw+"%")+`)`)
	}

	query := `SELECT c.id, c.code, c.type, c.name, c.description, c.credit, c.period, c.day_of_week,
	                 c.teacher_id, c.keywords, c.status, c.created_at, c.updated_at, u.name
	          FROM courses c
	          JOIN users u ON u.id = c.teacher_id`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY c.code LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.CourseDetail
	for rows.Next() {
		var d model.CourseDetail
		if err := rows.Scan(&d.ID, &d.Code, &d.Type, &d.Name, &d.Description, &d.Credit,
			&d.Period, &d.DayOfWeek, &d.TeacherID, &d.Keywords, &d.Status,
			&d.CreatedAt, &d.UpdatedAt, &d.TeacherName); err != nil {
			return nil, err
		}
		courses = append(courses, d)
	}
	return courses, rows.Err()
}
