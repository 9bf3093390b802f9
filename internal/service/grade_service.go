package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/classum/campus-backend/internal/database"
	"github.com/classum/campus-backend/internal/model"
)

// GradeService builds grade reports: per-class scores, per-course totals
// with cohort statistics, and a credit-weighted GPA normalized against
// every student who has finished at least one course.
type GradeService struct {
	db            database.Conn
	registrations RegistrationStore
	grades        GradeStore
	log           zerolog.Logger
}

// NewGradeService creates a new GradeService.
func NewGradeService(db database.Conn, registrations RegistrationStore, grades GradeStore, log zerolog.Logger) *GradeService {
	return &GradeService{
		db:            db,
		registrations: registrations,
		grades:        grades,
		log:           log.With().Str("component", "grade_service").Logger(),
	}
}

// Report assembles the student's full grade report in one transaction so
// every rollup reads the same snapshot.
func (s *GradeService) Report(ctx context.Context, userID uuid.UUID) (*model.GradeReport, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	courses, err := s.registrations.ListCoursesByUser(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	results := make([]model.CourseResult, 0, len(courses))
	var (
		gpaPoints  float64
		gpaCredits int
	)
	for _, course := range courses {
		classScores, err := s.grades.ClassScores(ctx, tx, course.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("class scores for %s: %w", course.ID, err)
		}
		if classScores == nil {
			classScores = []model.ClassScore{}
		}

		totalScore := 0
		for _, cs := range classScores {
			if cs.Score != nil {
				totalScore += *cs.Score
			}
		}

		totals, err := s.grades.CourseTotals(ctx, tx, course.ID)
		if err != nil {
			return nil, fmt.Errorf("course totals for %s: %w", course.ID, err)
		}
		cohort := toFloats(totals)

		results = append(results, model.CourseResult{
			CourseID:    course.ID,
			Code:        course.Code,
			Name:        course.Name,
			TotalScore:  totalScore,
			TotalTScore: tScore(float64(totalScore), cohort),
			TotalAvg:    average(cohort),
			TotalMax:    int(maxOf(cohort)),
			TotalMin:    int(minOf(cohort)),
			ClassScores: classScores,
		})

		if course.Status == model.CourseStatusClosed {
			gpaPoints += float64(totalScore) * float64(course.Credit)
			gpaCredits += course.Credit
		}
	}

	var gpa float64
	if gpaCredits > 0 {
		gpa = gpaPoints / 100 / float64(gpaCredits)
	}

	gpas, err := s.grades.GPAs(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("cohort gpas: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &model.GradeReport{
		Summary: model.CohortStats{
			Score:  gpa,
			TScore: tScore(gpa, gpas),
			Avg:    average(gpas),
			Max:    maxOf(gpas),
			Min:    minOf(gpas),
		},
		CourseResults: results,
	}, nil
}
