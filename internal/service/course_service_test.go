package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classum/campus-backend/internal/model"
	"github.com/classum/campus-backend/internal/repository"
)

var courseFixtureTeacherID = uuid.New()

func newCourseFixture() *model.Course {
	return &model.Course{
		Code:        "CS101",
		Type:        model.CourseTypeMajorSubjects,
		Name:        "Algorithms",
		Description: "Sorting and searching.",
		Credit:      2,
		Period:      1,
		DayOfWeek:   model.DayMonday,
		TeacherID:   courseFixtureTeacherID,
		Keywords:    "algorithms sorting",
	}
}

func setupCourseService() (*CourseService, *fakeConn, *fakeCourseStore) {
	conn := &fakeConn{}
	courses := newFakeCourseStore()
	svc := NewCourseService(conn, courses, zerolog.Nop())
	return svc, conn, courses
}

func TestCourseService_Create(t *testing.T) {
	svc, conn, courses := setupCourseService()

	id, err := svc.Create(context.Background(), newCourseFixture())
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)
	require.True(t, conn.lastTx.committed)

	created, err := courses.GetByID(context.Background(), conn, id)
	require.NoError(t, err)
	assert.Equal(t, model.CourseStatusRegistration, created.Status)
}

func TestCourseService_Create_RetryIdenticalReturnsExistingID(t *testing.T) {
	svc, _, _ := setupCourseService()

	first, err := svc.Create(context.Background(), newCourseFixture())
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), newCourseFixture())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCourseService_Create_DivergentRetryConflicts(t *testing.T) {
	svc, _, courses := setupCourseService()

	_, err := svc.Create(context.Background(), newCourseFixture())
	require.NoError(t, err)

	diverged := newCourseFixture()
	diverged.Name = "Advanced Algorithms"
	_, err = svc.Create(context.Background(), diverged)
	require.ErrorIs(t, err, ErrCourseConflict)

	// The original row is untouched.
	existing, err := courses.GetByCode(context.Background(), nil, "CS101")
	require.NoError(t, err)
	assert.Equal(t, "Algorithms", existing.Name)
}

func TestCourseService_SetStatus(t *testing.T) {
	svc, conn, courses := setupCourseService()
	c := courses.add(*newCourseFixture())

	require.NoError(t, svc.SetStatus(context.Background(), c.ID, model.CourseStatusInProgress))
	require.True(t, conn.lastTx.committed)
	assert.Equal(t, model.CourseStatusInProgress, courses.courses[c.ID].Status)
}

func TestCourseService_SetStatus_NotFound(t *testing.T) {
	svc, _, _ := setupCourseService()
	err := svc.SetStatus(context.Background(), uuid.New(), model.CourseStatusClosed)
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseService_GetDetail_NotFound(t *testing.T) {
	svc, _, _ := setupCourseService()
	_, err := svc.GetDetail(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseService_Search_Pagination(t *testing.T) {
	svc, _, courses := setupCourseService()
	for _, code := range []string{"CS101", "CS102", "CS103"} {
		c := newCourseFixture()
		c.Code = code
		courses.add(*c)
	}

	page1, hasNext, err := svc.Search(context.Background(), repository.CourseFilter{}, 1, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.True(t, hasNext)

	page2, hasNext, err := svc.Search(context.Background(), repository.CourseFilter{}, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.False(t, hasNext)
	assert.Equal(t, "CS103", page2[0].Code)
}
