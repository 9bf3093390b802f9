package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classum/campus-backend/internal/model"
)

type submissionFixture struct {
	svc           *SubmissionService
	conn          *fakeConn
	courses       *fakeCourseStore
	classes       *fakeClassStore
	registrations *fakeRegistrationStore
	submissions   *fakeSubmissionStore
	storage       *fakeStorage
	course        *model.Course
	class         *model.Class
}

func setupSubmissionService() *submissionFixture {
	conn := &fakeConn{}
	courses := newFakeCourseStore()
	classes := newFakeClassStore()
	registrations := newFakeRegistrationStore(courses)
	submissions := newFakeSubmissionStore()
	store := newFakeStorage()
	svc := NewSubmissionService(conn, courses, classes, registrations, submissions, store, zerolog.Nop())

	c := newCourseFixture()
	c.Status = model.CourseStatusInProgress
	course := courses.add(*c)
	class := classes.add(model.Class{CourseID: course.ID, Part: 1, Title: "Week 1"})

	return &submissionFixture{
		svc:           svc,
		conn:          conn,
		courses:       courses,
		classes:       classes,
		registrations: registrations,
		submissions:   submissions,
		storage:       store,
		course:        course,
		class:         class,
	}
}

func TestSubmissionService_Submit(t *testing.T) {
	f := setupSubmissionService()
	student := uuid.New()

	err := f.svc.Submit(context.Background(), student, f.course.ID, f.class.ID, "report.pdf", []byte("data"))
	require.NoError(t, err)
	require.True(t, f.conn.lastTx.committed)

	row := f.submissions.rows[subKey{student, f.class.ID}]
	require.NotNil(t, row)
	assert.Equal(t, "report.pdf", row.FileName)
	assert.Equal(t, []byte("data"), f.storage.files[row.FileRef])
}

func TestSubmissionService_Submit_RegisteredStudentRejected(t *testing.T) {
	f := setupSubmissionService()
	student := uuid.New()
	f.registrations.edges[edge{student, f.course.ID}] = true

	err := f.svc.Submit(context.Background(), student, f.course.ID, f.class.ID, "report.pdf", []byte("data"))
	require.ErrorIs(t, err, ErrCourseNotTaken)
}

func TestSubmissionService_Submit_CourseNotInProgress(t *testing.T) {
	f := setupSubmissionService()
	f.course.Status = model.CourseStatusRegistration

	err := f.svc.Submit(context.Background(), uuid.New(), f.course.ID, f.class.ID, "report.pdf", []byte("data"))
	require.ErrorIs(t, err, ErrCourseNotInProgress)
}

func TestSubmissionService_Submit_ClosedClassRejected(t *testing.T) {
	f := setupSubmissionService()
	f.class.SubmissionClosed = true
	f.classes.classes[f.class.ID] = f.class

	err := f.svc.Submit(context.Background(), uuid.New(), f.course.ID, f.class.ID, "report.pdf", []byte("data"))
	require.ErrorIs(t, err, ErrSubmissionClosed)
}

func TestSubmissionService_Submit_ClassFromOtherCourseIsNotFound(t *testing.T) {
	f := setupSubmissionService()
	other := newCourseFixture()
	other.Code = "CS999"
	other.Status = model.CourseStatusInProgress
	otherCourse := f.courses.add(*other)
	otherClass := f.classes.add(model.Class{CourseID: otherCourse.ID, Part: 1})

	err := f.svc.Submit(context.Background(), uuid.New(), f.course.ID, otherClass.ID, "report.pdf", []byte("data"))
	require.ErrorIs(t, err, ErrClassNotFound)
}

func TestSubmissionService_Submit_ResubmissionReplacesFile(t *testing.T) {
	f := setupSubmissionService()
	student := uuid.New()

	require.NoError(t, f.svc.Submit(context.Background(), student, f.course.ID, f.class.ID, "v1.pdf", []byte("first")))
	require.NoError(t, f.svc.Submit(context.Background(), student, f.course.ID, f.class.ID, "v2.pdf", []byte("second")))

	require.Len(t, f.submissions.rows, 1)
	row := f.submissions.rows[subKey{student, f.class.ID}]
	assert.Equal(t, "v2.pdf", row.FileName)
	assert.Equal(t, []byte("second"), f.storage.files[row.FileRef])
}

func TestSubmissionService_Submit_StorageFailureAbortsCommit(t *testing.T) {
	f := setupSubmissionService()
	f.storage.storeErr = errors.New("disk full")

	err := f.svc.Submit(context.Background(), uuid.New(), f.course.ID, f.class.ID, "report.pdf", []byte("data"))
	require.ErrorIs(t, err, ErrStorageFailure)
	assert.False(t, f.conn.lastTx.committed)
}

func TestSubmissionService_CloseAndExport(t *testing.T) {
	f := setupSubmissionService()
	student := uuid.New()
	f.submissions.userCodes["S001"] = student
	require.NoError(t, f.svc.Submit(context.Background(), student, f.course.ID, f.class.ID, "report.pdf", []byte("data")))

	path, err := f.svc.CloseAndExport(context.Background(), f.class.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, path)
	assert.True(t, f.classes.classes[f.class.ID].SubmissionClosed)
	require.Len(t, f.storage.archived, 1)
	assert.Equal(t, "S001", f.storage.archived[0].UserCode)

	// Re-exporting an already closed class regenerates the archive.
	again, err := f.svc.CloseAndExport(context.Background(), f.class.ID)
	require.NoError(t, err)
	assert.Equal(t, path, again)
}

func TestSubmissionService_CloseAndExport_ClassNotFound(t *testing.T) {
	f := setupSubmissionService()
	_, err := f.svc.CloseAndExport(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrClassNotFound)
}

func TestSubmissionService_RecordScores(t *testing.T) {
	f := setupSubmissionService()
	student := uuid.New()
	f.submissions.userCodes["S001"] = student
	require.NoError(t, f.svc.Submit(context.Background(), student, f.course.ID, f.class.ID, "report.pdf", []byte("data")))
	_, err := f.svc.CloseAndExport(context.Background(), f.class.ID)
	require.NoError(t, err)

	err = f.svc.RecordScores(context.Background(), f.class.ID, []ScoreEntry{
		{UserCode: "S001", Score: 85},
		{UserCode: "NOBODY", Score: 10}, // unknown codes are silently skipped
	})
	require.NoError(t, err)

	row := f.submissions.rows[subKey{student, f.class.ID}]
	require.NotNil(t, row.Score)
	assert.Equal(t, 85, *row.Score)
}

func TestSubmissionService_RecordScores_OpenClassRejected(t *testing.T) {
	f := setupSubmissionService()

	err := f.svc.RecordScores(context.Background(), f.class.ID, []ScoreEntry{{UserCode: "S001", Score: 85}})
	require.ErrorIs(t, err, ErrClassNotClosed)
}
