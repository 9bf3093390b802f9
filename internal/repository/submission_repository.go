package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/classum/campus-backend/internal/database"
	"github.com/classum/campus-backend/internal/model"
)

// SubmissionRepository handles assignment submissions and scores.
type SubmissionRepository struct{}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository() *SubmissionRepository {
	return &SubmissionRepository{}
}

// Upsert inserts a submission or, on the (user, class) key, replaces the
// file reference. Resubmission is last-write-wins with no versioning.
func (r *SubmissionRepository) Upsert(ctx context.Context, db database.DBTX, s *model.Submission) error {
	_, err := db.Exec(ctx,
		`INSERT INTO submissions (user_id, class_id, file_name, file_ref)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, class_id)
		 DO UPDATE SET file_name = EXCLUDED.file_name,
		               file_ref = EXCLUDED.file_ref,
		               updated_at = CURRENT_TIMESTAMP`,
		s.UserID, s.ClassID, s.FileName, s.FileRef)
	return err
}

// ListForExport gathers a class's submissions with submitter codes, in
// code order, for archive building.
func (r *SubmissionRepository) ListForExport(ctx context.Context, db database.DBTX, classID uuid.UUID) ([]model.SubmissionExport, error) {
	rows, err := db.Query(ctx,
		`SELECT s.user_id, u.code, s.file_name, s.file_ref
		 FROM submissions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.class_id = $1
		 ORDER BY u.code`,
		classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exports []model.SubmissionExport
	for rows.Next() {
		var e model.SubmissionExport
		if err := rows.Scan(&e.UserID, &e.UserCode, &e.FileName, &e.FileRef); err != nil {
			return nil, err
		}
		exports = append(exports, e)
	}
	return exports, rows.Err()
}

// UpdateScoreByUserCode records a score for the submission matching
// (user code, class). A code with no matching submission affects zero
// rows, which is not an error.
func (r *SubmissionRepository) UpdateScoreByUserCode(ctx context.Context, db database.DBTX, classID uuid.UUID, userCode string, score int) (int64, error) {
	tag, err := db.Exec(ctx,
		`UPDATE submissions s
		 SET score = $1, updated_at = CURRENT_TIMESTAMP
		 FROM users u
		 WHERE u.id = s.user_id AND u.code = $2 AND s.class_id = $3`,
		score, userCode, classID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
