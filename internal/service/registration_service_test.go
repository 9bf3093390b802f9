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

func setupRegistrationService() (*RegistrationService, *fakeCourseStore, *fakeRegistrationStore) {
	conn := &fakeConn{}
	courses := newFakeCourseStore()
	registrations := newFakeRegistrationStore(courses)
	svc := NewRegistrationService(conn, courses, registrations, zerolog.Nop())
	return svc, courses, registrations
}

func registrableCourse(courses *fakeCourseStore, code string, period int, day model.DayOfWeek) *model.Course {
	c := newCourseFixture()
	c.Code = code
	c.Period = period
	c.DayOfWeek = day
	return courses.add(*c)
}

func TestRegistrationService_Register(t *testing.T) {
	svc, courses, registrations := setupRegistrationService()
	a := registrableCourse(courses, "CS101", 1, model.DayMonday)
	b := registrableCourse(courses, "CS102", 2, model.DayMonday)
	student := uuid.New()

	err := svc.Register(context.Background(), student, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.True(t, registrations.edges[edge{student, a.ID}])
	assert.True(t, registrations.edges[edge{student, b.ID}])
}

func TestRegistrationService_Register_Idempotent(t *testing.T) {
	svc, courses, _ := setupRegistrationService()
	a := registrableCourse(courses, "CS101", 1, model.DayMonday)
	student := uuid.New()

	require.NoError(t, svc.Register(context.Background(), student, []uuid.UUID{a.ID}))
	// Re-registering the same course is a silent no-op, not a conflict.
	require.NoError(t, svc.Register(context.Background(), student, []uuid.UUID{a.ID}))
}

func TestRegistrationService_Register_BatchRejectionReportsAllReasons(t *testing.T) {
	svc, courses, registrations := setupRegistrationService()
	student := uuid.New()

	missing := uuid.New()
	inProgress := registrableCourse(courses, "CS201", 3, model.DayTuesday)
	inProgress.Status = model.CourseStatusInProgress
	courses.courses[inProgress.ID] = inProgress

	taken := registrableCourse(courses, "CS202", 4, model.DayWednesday)
	require.NoError(t, svc.Register(context.Background(), student, []uuid.UUID{taken.ID}))
	clashing := registrableCourse(courses, "CS203", 4, model.DayWednesday)

	valid := registrableCourse(courses, "CS204", 5, model.DayFriday)

	err := svc.Register(context.Background(), student,
		[]uuid.UUID{missing, inProgress.ID, clashing.ID, valid.ID})

	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, []uuid.UUID{missing}, regErr.CourseNotFound)
	assert.Equal(t, []uuid.UUID{inProgress.ID}, regErr.NotRegistrable)
	assert.Equal(t, []uuid.UUID{clashing.ID}, regErr.ScheduleConflict)

	// One offending entry blocks the whole batch: the valid course must
	// not have been registered either.
	assert.False(t, registrations.edges[edge{student, valid.ID}])
}

func TestRegistrationService_Register_ConflictWithinBatch(t *testing.T) {
	svc, courses, _ := setupRegistrationService()
	student := uuid.New()
	a := registrableCourse(courses, "CS101", 2, model.DayThursday)
	b := registrableCourse(courses, "CS102", 2, model.DayThursday)

	err := svc.Register(context.Background(), student, []uuid.UUID{a.ID, b.ID})

	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Len(t, regErr.ScheduleConflict, 2)
}

func TestRegistrationService_Register_ClosedCourseFreesItsSlot(t *testing.T) {
	svc, courses, _ := setupRegistrationService()
	student := uuid.New()

	old := registrableCourse(courses, "CS101", 1, model.DayMonday)
	require.NoError(t, svc.Register(context.Background(), student, []uuid.UUID{old.ID}))
	old.Status = model.CourseStatusClosed
	courses.courses[old.ID] = old

	// A finished course no longer occupies its timetable slot.
	replacement := registrableCourse(courses, "CS102", 1, model.DayMonday)
	require.NoError(t, svc.Register(context.Background(), student, []uuid.UUID{replacement.ID}))
}

func TestRegistrationService_Register_DuplicateIDsInBatch(t *testing.T) {
	svc, courses, _ := setupRegistrationService()
	student := uuid.New()
	a := registrableCourse(courses, "CS101", 1, model.DayMonday)

	// The same id twice must not trip the in-batch conflict scan.
	err := svc.Register(context.Background(), student, []uuid.UUID{a.ID, a.ID})
	require.NoError(t, err)
}
