package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classum/campus-backend/internal/model"
)

func setupClassService() (*ClassService, *fakeCourseStore, *fakeClassStore) {
	conn := &fakeConn{}
	courses := newFakeCourseStore()
	classes := newFakeClassStore()
	svc := NewClassService(conn, courses, classes, zerolog.Nop())
	return svc, courses, classes
}

func TestClassService_Create(t *testing.T) {
	svc, courses, _ := setupClassService()
	course := courses.add(*newCourseFixture())

	id, err := svc.Create(context.Background(), &model.Class{
		CourseID:    course.ID,
		Part:        1,
		Title:       "Week 1",
		Description: "Introduction.",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
}

func TestClassService_Create_CourseNotFound(t *testing.T) {
	svc, _, _ := setupClassService()

	_, err := svc.Create(context.Background(), &model.Class{
		CourseID:    uuid.New(),
		Part:        1,
		Title:       "Week 1",
		Description: "Introduction.",
	})
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestClassService_Create_RetryIdenticalReturnsExistingID(t *testing.T) {
	svc, courses, _ := setupClassService()
	course := courses.add(*newCourseFixture())

	class := model.Class{CourseID: course.ID, Part: 2, Title: "Week 2", Description: "Recursion."}
	first, err := svc.Create(context.Background(), &class)
	require.NoError(t, err)

	retry := class
	second, err := svc.Create(context.Background(), &retry)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestClassService_Create_DivergentRetryConflicts(t *testing.T) {
	svc, courses, _ := setupClassService()
	course := courses.add(*newCourseFixture())

	_, err := svc.Create(context.Background(), &model.Class{
		CourseID: course.ID, Part: 3, Title: "Week 3", Description: "Graphs.",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &model.Class{
		CourseID: course.ID, Part: 3, Title: "Week 3 revised", Description: "Graphs.",
	})
	require.ErrorIs(t, err, ErrClassConflict)
}

func TestClassService_ListByCourse(t *testing.T) {
	svc, courses, classes := setupClassService()
	course := courses.add(*newCourseFixture())
	classes.add(model.Class{CourseID: course.ID, Part: 1, Title: "Week 1"})
	classes.add(model.Class{CourseID: course.ID, Part: 2, Title: "Week 2"})

	out, err := svc.ListByCourse(context.Background(), course.ID, uuid.New())
	require.NoError(t, err)
	require.Len(t, out, 2)
	// Latest part first.
	assert.Equal(t, 2, out[0].Part)
	assert.Equal(t, 1, out[1].Part)
}

func TestClassService_ListByCourse_CourseNotFound(t *testing.T) {
	svc, _, _ := setupClassService()
	_, err := svc.ListByCourse(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, ErrCourseNotFound)
}
