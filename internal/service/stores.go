package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/classum/campus-backend/internal/database"
	"github.com/classum/campus-backend/internal/model"
	"github.com/classum/campus-backend/internal/repository"
	"github.com/classum/campus-backend/internal/storage"
)

// One store interface per aggregate. The pgx repositories satisfy these;
// tests substitute one in-memory fake per interface. Every method takes a
// database.DBTX so it runs on the pool or inside the caller's transaction.

// UserStore is the directory collaborator.
type UserStore interface {
	GetByID(ctx context.Context, db database.DBTX, id uuid.UUID) (*model.User, error)
	GetByCode(ctx context.Context, db database.DBTX, code string) (*model.User, error)
	UpdateName(ctx context.Context, db database.DBTX, id uuid.UUID, name string) error
}

// CourseStore persists courses.
type CourseStore interface {
	Create(ctx context.Context, db database.DBTX, c *model.Course) error
	GetByID(ctx context.Context, db database.DBTX, id uuid.UUID) (*model.Course, error)
	GetByCode(ctx context.Context, db database.DBTX, code string) (*model.Course, error)
	GetByIDForShare(ctx context.Context, db database.DBTX, id uuid.UUID) (*model.Course, error)
	GetDetail(ctx context.Context, db database.DBTX, id uuid.UUID) (*model.CourseDetail, error)
	UpdateStatus(ctx context.Context, db database.DBTX, id uuid.UUID, status model.CourseStatus) (int64, error)
	Search(ctx context.Context, db database.DBTX, f repository.CourseFilter, limit, offset int) ([]model.CourseDetail, error)
}

// ClassStore persists classes.
type ClassStore interface {
	Create(ctx context.Context, db database.DBTX, c *model.Class) error
	GetByCourseAndPart(ctx context.Context, db database.DBTX, courseID uuid.UUID, part int) (*model.Class, error)
	GetByIDForShare(ctx context.Context, db database.DBTX, id uuid.UUID) (*model.Class, error)
	GetByIDForUpdate(ctx context.Context, db database.DBTX, id uuid.UUID) (*model.Class, error)
	ListByCourse(ctx context.Context, db database.DBTX, courseID, userID uuid.UUID) ([]model.ClassWithSubmission, error)
	CloseSubmissions(ctx context.Context, db database.DBTX, id uuid.UUID) error
}

// RegistrationStore persists enrollment edges.
type RegistrationStore interface {
	Exists(ctx context.Context, db database.DBTX, userID, courseID uuid.UUID) (bool, error)
	Upsert(ctx context.Context, db database.DBTX, userID, courseID uuid.UUID) error
	ListOpenCoursesByUser(ctx context.Context, db database.DBTX, userID uuid.UUID) ([]model.Course, error)
	ListCoursesByUser(ctx context.Context, db database.DBTX, userID uuid.UUID) ([]model.Course, error)
	ListUserIDsByCourse(ctx context.Context, db database.DBTX, courseID uuid.UUID) ([]uuid.UUID, error)
	ListCourseIDsByUser(ctx context.Context, db database.DBTX, userID uuid.UUID) ([]uuid.UUID, error)
}

// SubmissionStore persists assignment submissions and scores.
type SubmissionStore interface {
	Upsert(ctx context.Context, db database.DBTX, s *model.Submission) error
	ListForExport(ctx context.Context, db database.DBTX, classID uuid.UUID) ([]model.SubmissionExport, error)
	UpdateScoreByUserCode(ctx context.Context, db database.DBTX, classID uuid.UUID, userCode string, score int) (int64, error)
}

// AnnouncementStore persists announcements and unread delivery markers.
type AnnouncementStore interface {
	Create(ctx context.Context, db database.DBTX, a *model.Announcement) error
	GetByID(ctx context.Context, db database.DBTX, id uuid.UUID) (*model.Announcement, error)
	InsertUnread(ctx context.Context, db database.DBTX, announcementID uuid.UUID, userIDs []uuid.UUID) error
	ListByUser(ctx context.Context, db database.DBTX, userID uuid.UUID, courseID *uuid.UUID, limit, offset int) ([]model.AnnouncementListItem, error)
	CountUnread(ctx context.Context, db database.DBTX, userID uuid.UUID) (int, error)
	GetDetailForUser(ctx context.Context, db database.DBTX, id, userID uuid.UUID) (*model.AnnouncementDetail, error)
	MarkRead(ctx context.Context, db database.DBTX, id, userID uuid.UUID) error
}

// GradeStore is the grade report read model.
type GradeStore interface {
	ClassScores(ctx context.Context, db database.DBTX, courseID, userID uuid.UUID) ([]model.ClassScore, error)
	CourseTotals(ctx context.Context, db database.DBTX, courseID uuid.UUID) ([]int, error)
	GPAs(ctx context.Context, db database.DBTX) ([]float64, error)
}

// SubmissionStorage is the external file collaborator.
type SubmissionStorage interface {
	SubmissionRef(classID, userID uuid.UUID) string
	Store(ctx context.Context, ref string, data []byte) error
	BuildArchive(ctx context.Context, classID uuid.UUID, entries []storage.Entry) (string, error)
}
