package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/classum/campus-backend/internal/database"
	"github.com/classum/campus-backend/internal/model"
)

// GradeRepository is the read model behind grade reports: per-class
// scores, per-course cohort totals, and campus-wide GPAs.
type GradeRepository struct{}

// NewGradeRepository creates a new GradeRepository.
func NewGradeRepository() *GradeRepository {
	return &GradeRepository{}
}

// ClassScores lists a course's classes, latest part first, with the given
// student's score (nil when ungraded or not submitted) and the number of
// students who submitted.
func (r *GradeRepository) ClassScores(ctx context.Context, db database.DBTX, courseID, userID uuid.UUID) ([]model.ClassScore, error) {
	rows, err := db.Query(ctx,
		`SELECT c.id, c.part, c.title, s.score,
		        (SELECT COUNT(*) FROM submissions sub WHERE sub.class_id = c.id) AS submitters
		 FROM classes c
		 LEFT JOIN submissions s ON s.class_id = c.id AND s.user_id = $2
		 WHERE c.course_id = $1
		 ORDER BY c.part DESC`,
		courseID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []model.ClassScore
	for rows.Next() {
		var cs model.ClassScore
		if err := rows.Scan(&cs.ClassID, &cs.Part, &cs.Title, &cs.Score, &cs.Submitters); err != nil {
			return nil, err
		}
		scores = append(scores, cs)
	}
	return scores, rows.Err()
}

// CourseTotals returns, for every student registered to the course, the
// sum of their graded scores across its classes. Students with no graded
// submission contribute zero.
func (r *GradeRepository) CourseTotals(ctx context.Context, db database.DBTX, courseID uuid.UUID) ([]int, error) {
	rows, err := db.Query(ctx,
		`SELECT COALESCE(SUM(s.score), 0)
		 FROM registrations r
		 LEFT JOIN classes c ON c.course_id = r.course_id
		 LEFT JOIN submissions s ON s.class_id = c.id AND s.user_id = r.user_id
		 WHERE r.course_id = $1
		 GROUP BY r.user_id`,
		courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []int
	for rows.Next() {
		var t int
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// GPAs returns the credit-weighted GPA of every student registered to at
// least one closed course: Σ(total_score·credit) / 100 / Σcredit.
func (r *GradeRepository) GPAs(ctx context.Context, db database.DBTX) ([]float64, error) {
	rows, err := db.Query(ctx,
		`WITH course_totals AS (
		     SELECT r.user_id, c.id AS course_id, c.credit,
		            COALESCE(SUM(s.score), 0) AS total_score
		     FROM registrations r
		     JOIN courses c ON c.id = r.course_id AND c.status = 'closed'
		     LEFT JOIN classes cl ON cl.course_id = c.id
		     LEFT JOIN submissions s ON s.class_id = cl.id AND s.user_id = r.user_id
		     GROUP BY r.user_id, c.id, c.credit
		 )
		 SELECT SUM(total_score * credit)::float8 / 100 / SUM(credit)
		 FROM course_totals
		 GROUP BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gpas []float64
	for rows.Next() {
		var g float64
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		gpas = append(gpas, g)
	}
	return gpas, rows.Err()
}
