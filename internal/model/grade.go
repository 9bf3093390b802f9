package model

import (
	"github.com/google/uuid"
)

// CohortStats are the cohort-normalized statistics attached to a score:
// the student's own value, its T-score, and the cohort average/max/min.
type CohortStats struct {
	Score  float64 `json:"score"`
	TScore float64 `json:"t_score"`
	Avg    float64 `json:"avg"`
	Max    float64 `json:"max"`
	Min    float64 `json:"min"`
}

// CourseResult is the per-course section of a grade report.
type CourseResult struct {
	CourseID    uuid.UUID    `json:"course_id"`
	Code        string       `json:"code"`
	Name        string       `json:"name"`
	TotalScore  int          `json:"total_score"`
	TotalTScore float64      `json:"total_score_t_score"`
	TotalAvg    float64      `json:"total_score_avg"`
	TotalMax    int          `json:"total_score_max"`
	TotalMin    int          `json:"total_score_min"`
	ClassScores []ClassScore `json:"class_scores"`
}

// GradeReport is the full /me/grades payload: GPA with cohort statistics
// plus one CourseResult per registered course.
type GradeReport struct {
	Summary       CohortStats    `json:"summary"`
	CourseResults []CourseResult `json:"courses"`
}
