package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/classum/campus-backend/internal/database"
	"github.com/classum/campus-backend/internal/model"
	"github.com/classum/campus-backend/internal/repository"
	"github.com/classum/campus-backend/internal/storage"
)

// ── Fake database.Conn / database.Tx ──
//
// The stores below are in-memory maps, so the Conn never sees SQL. It only
// exists to let services begin transactions and to let tests assert whether
// the last one committed.

type fakeConn struct {
	lastTx   *fakeTx
	beginErr error
}

func (c *fakeConn) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (c *fakeConn) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("fakeConn: no SQL here")
}

func (c *fakeConn) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func (c *fakeConn) Begin(context.Context) (database.Tx, error) {
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	c.lastTx = &fakeTx{}
	return c.lastTx, nil
}

type fakeTx struct {
	fakeConn
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

// ── Fake CourseStore ──

type fakeCourseStore struct {
	courses      map[uuid.UUID]*model.Course
	teacherNames map[uuid.UUID]string
}

func newFakeCourseStore() *fakeCourseStore {
	return &fakeCourseStore{
		courses:      make(map[uuid.UUID]*model.Course),
		teacherNames: make(map[uuid.UUID]string),
	}
}

func (f *fakeCourseStore) add(c model.Course) *model.Course {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = model.CourseStatusRegistration
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	f.courses[c.ID] = &c
	return &c
}

func (f *fakeCourseStore) Create(_ context.Context, _ database.DBTX, c *model.Course) error {
	for _, existing := range f.courses {
		if existing.Code == c.Code {
			return repository.ErrDuplicateKey
		}
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	f.courses[c.ID] = &cp
	return nil
}

func (f *fakeCourseStore) GetByID(_ context.Context, _ database.DBTX, id uuid.UUID) (*model.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCourseStore) GetByCode(_ context.Context, _ database.DBTX, code string) (*model.Course, error) {
	for _, c := range f.courses {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCourseStore) GetByIDForShare(ctx context.Context, db database.DBTX, id uuid.UUID) (*model.Course, error) {
	return f.GetByID(ctx, db, id)
}

func (f *fakeCourseStore) GetDetail(_ context.Context, _ database.DBTX, id uuid.UUID) (*model.CourseDetail, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &model.CourseDetail{Course: *c, TeacherName: f.teacherNames[c.TeacherID]}, nil
}

func (f *fakeCourseStore) UpdateStatus(_ context.Context, _ database.DBTX, id uuid.UUID, status model.CourseStatus) (int64, error) {
	c, ok := f.courses[id]
	if !ok {
		return 0, nil
	}
	c.Status = status
	return 1, nil
}

func (f *fakeCourseStore) Search(_ context.Context, _ database.DBTX, _ repository.CourseFilter, limit, offset int) ([]model.CourseDetail, error) {
	all := make([]model.CourseDetail, 0, len(f.courses))
	for _, c := range f.courses {
		all = append(all, model.CourseDetail{Course: *c, TeacherName: f.teacherNames[c.TeacherID]})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// ── Fake ClassStore ──

type fakeClassStore struct {
	classes map[uuid.UUID]*model.Class
}

func newFakeClassStore() *fakeClassStore {
	return &fakeClassStore{classes: make(map[uuid.UUID]*model.Class)}
}

func (f *fakeClassStore) add(c model.Class) *model.Class {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.classes[c.ID] = &c
	return &c
}

func (f *fakeClassStore) Create(_ context.Context, _ database.DBTX, c *model.Class) error {
	for _, existing := range f.classes {
		if existing.CourseID == c.CourseID && existing.Part == c.Part {
			return repository.ErrDuplicateKey
		}
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	f.classes[c.ID] = &cp
	return nil
}

func (f *fakeClassStore) GetByCourseAndPart(_ context.Context, _ database.DBTX, courseID uuid.UUID, part int) (*model.Class, error) {
	for _, c := range f.classes {
		if c.CourseID == courseID && c.Part == part {
			cp := *c
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeClassStore) GetByIDForShare(_ context.Context, _ database.DBTX, id uuid.UUID) (*model.Class, error) {
	c, ok := f.classes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClassStore) GetByIDForUpdate(ctx context.Context, db database.DBTX, id uuid.UUID) (*model.Class, error) {
	return f.GetByIDForShare(ctx, db, id)
}

func (f *fakeClassStore) ListByCourse(_ context.Context, _ database.DBTX, courseID, _ uuid.UUID) ([]model.ClassWithSubmission, error) {
	var out []model.ClassWithSubmission
	for _, c := range f.classes {
		if c.CourseID == courseID {
			out = append(out, model.ClassWithSubmission{Class: *c})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Part > out[j].Part })
	return out, nil
}

func (f *fakeClassStore) CloseSubmissions(_ context.Context, _ database.DBTX, id uuid.UUID) error {
	if c, ok := f.classes[id]; ok {
		c.SubmissionClosed = true
	}
	return nil
}

// ── Fake RegistrationStore ──

type edge struct{ userID, courseID uuid.UUID }

type fakeRegistrationStore struct {
	edges   map[edge]bool
	courses *fakeCourseStore
}

func newFakeRegistrationStore(courses *fakeCourseStore) *fakeRegistrationStore {
	return &fakeRegistrationStore{edges: make(map[edge]bool), courses: courses}
}

func (f *fakeRegistrationStore) Exists(_ context.Context, _ database.DBTX, userID, courseID uuid.UUID) (bool, error) {
	return f.edges[edge{userID, courseID}], nil
}

func (f *fakeRegistrationStore) Upsert(_ context.Context, _ database.DBTX, userID, courseID uuid.UUID) error {
	f.edges[edge{userID, courseID}] = true
	return nil
}

func (f *fakeRegistrationStore) ListOpenCoursesByUser(_ context.Context, _ database.DBTX, userID uuid.UUID) ([]model.Course, error) {
	var out []model.Course
	for e := range f.edges {
		if e.userID != userID {
			continue
		}
		if c, ok := f.courses.courses[e.courseID]; ok && c.Status != model.CourseStatusClosed {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeRegistrationStore) ListCoursesByUser(_ context.Context, _ database.DBTX, userID uuid.UUID) ([]model.Course, error) {
	var out []model.Course
	for e := range f.edges {
		if e.userID != userID {
			continue
		}
		if c, ok := f.courses.courses[e.courseID]; ok {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (f *fakeRegistrationStore) ListUserIDsByCourse(_ context.Context, _ database.DBTX, courseID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for e := range f.edges {
		if e.courseID == courseID {
			out = append(out, e.userID)
		}
	}
	return out, nil
}

func (f *fakeRegistrationStore) ListCourseIDsByUser(_ context.Context, _ database.DBTX, userID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for e := range f.edges {
		if e.userID == userID {
			out = append(out, e.courseID)
		}
	}
	return out, nil
}

// ── Fake SubmissionStore ──

type subKey struct{ userID, classID uuid.UUID }

type fakeSubmissionStore struct {
	rows      map[subKey]*model.Submission
	userCodes map[string]uuid.UUID
}

func newFakeSubmissionStore() *fakeSubmissionStore {
	return &fakeSubmissionStore{
		rows:      make(map[subKey]*model.Submission),
		userCodes: make(map[string]uuid.UUID),
	}
}

func (f *fakeSubmissionStore) Upsert(_ context.Context, _ database.DBTX, s *model.Submission) error {
	k := subKey{s.UserID, s.ClassID}
	if existing, ok := f.rows[k]; ok {
		existing.FileName = s.FileName
		existing.FileRef = s.FileRef
		existing.UpdatedAt = time.Now()
		return nil
	}
	cp := *s
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.rows[k] = &cp
	return nil
}

func (f *fakeSubmissionStore) ListForExport(_ context.Context, _ database.DBTX, classID uuid.UUID) ([]model.SubmissionExport, error) {
	var out []model.SubmissionExport
	for k, s := range f.rows {
		if k.classID != classID {
			continue
		}
		code := ""
		for c, id := range f.userCodes {
			if id == k.userID {
				code = c
			}
		}
		out = append(out, model.SubmissionExport{
			UserID:   k.userID,
			UserCode: code,
			FileName: s.FileName,
			FileRef:  s.FileRef,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserCode < out[j].UserCode })
	return out, nil
}

func (f *fakeSubmissionStore) UpdateScoreByUserCode(_ context.Context, _ database.DBTX, classID uuid.UUID, userCode string, score int) (int64, error) {
	userID, ok := f.userCodes[userCode]
	if !ok {
		return 0, nil
	}
	s, ok := f.rows[subKey{userID, classID}]
	if !ok {
		return 0, nil
	}
	s.Score = &score
	return 1, nil
}

// ── Fake AnnouncementStore ──

type unreadKey struct{ announcementID, userID uuid.UUID }

type fakeAnnouncementStore struct {
	announcements map[uuid.UUID]*model.Announcement
	unread        map[unreadKey]bool // true while unread
	courses       *fakeCourseStore
}

func newFakeAnnouncementStore(courses *fakeCourseStore) *fakeAnnouncementStore {
	return &fakeAnnouncementStore{
		announcements: make(map[uuid.UUID]*model.Announcement),
		unread:        make(map[unreadKey]bool),
		courses:       courses,
	}
}

func (f *fakeAnnouncementStore) Create(_ context.Context, _ database.DBTX, a *model.Announcement) error {
	if _, ok := f.announcements[a.ID]; ok {
		return repository.ErrDuplicateKey
	}
	a.CreatedAt = time.Now()
	cp := *a
	f.announcements[a.ID] = &cp
	return nil
}

func (f *fakeAnnouncementStore) GetByID(_ context.Context, _ database.DBTX, id uuid.UUID) (*model.Announcement, error) {
	a, ok := f.announcements[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAnnouncementStore) InsertUnread(_ context.Context, _ database.DBTX, announcementID uuid.UUID, userIDs []uuid.UUID) error {
	for _, u := range userIDs {
		f.unread[unreadKey{announcementID, u}] = true
	}
	return nil
}

func (f *fakeAnnouncementStore) ListByUser(_ context.Context, _ database.DBTX, userID uuid.UUID, courseID *uuid.UUID, limit, offset int) ([]model.AnnouncementListItem, error) {
	var out []model.AnnouncementListItem
	for k, isUnread := range f.unread {
		if k.userID != userID {
			continue
		}
		a := f.announcements[k.announcementID]
		if courseID != nil && a.CourseID != *courseID {
			continue
		}
		name := ""
		if c, ok := f.courses.courses[a.CourseID]; ok {
			name = c.Name
		}
		out = append(out, model.AnnouncementListItem{
			ID:         a.ID,
			CourseID:   a.CourseID,
			CourseName: name,
			Title:      a.Title,
			Unread:     isUnread,
			CreatedAt:  a.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAnnouncementStore) CountUnread(_ context.Context, _ database.DBTX, userID uuid.UUID) (int, error) {
	n := 0
	for k, isUnread := range f.unread {
		if k.userID == userID && isUnread {
			n++
		}
	}
	return n, nil
}

func (f *fakeAnnouncementStore) GetDetailForUser(_ context.Context, _ database.DBTX, id, userID uuid.UUID) (*model.AnnouncementDetail, error) {
	isUnread, delivered := f.unread[unreadKey{id, userID}]
	if !delivered {
		return nil, pgx.ErrNoRows
	}
	a := f.announcements[id]
	name := ""
	if c, ok := f.courses.courses[a.CourseID]; ok {
		name = c.Name
	}
	return &model.AnnouncementDetail{
		ID:         a.ID,
		CourseID:   a.CourseID,
		CourseName: name,
		Title:      a.Title,
		Message:    a.Message,
		Unread:     isUnread,
		CreatedAt:  a.CreatedAt,
	}, nil
}

func (f *fakeAnnouncementStore) MarkRead(_ context.Context, _ database.DBTX, id, userID uuid.UUID) error {
	k := unreadKey{id, userID}
	if _, delivered := f.unread[k]; delivered {
		f.unread[k] = false
	}
	return nil
}

// ── Fake GradeStore ──

type fakeGradeStore struct {
	classScores  map[uuid.UUID][]model.ClassScore
	courseTotals map[uuid.UUID][]int
	gpas         []float64
}

func newFakeGradeStore() *fakeGradeStore {
	return &fakeGradeStore{
		classScores:  make(map[uuid.UUID][]model.ClassScore),
		courseTotals: make(map[uuid.UUID][]int),
	}
}

func (f *fakeGradeStore) ClassScores(_ context.Context, _ database.DBTX, courseID, _ uuid.UUID) ([]model.ClassScore, error) {
	return f.classScores[courseID], nil
}

func (f *fakeGradeStore) CourseTotals(_ context.Context, _ database.DBTX, courseID uuid.UUID) ([]int, error) {
	return f.courseTotals[courseID], nil
}

func (f *fakeGradeStore) GPAs(_ context.Context, _ database.DBTX) ([]float64, error) {
	return f.gpas, nil
}

// ── Fake SubmissionStorage ──

type fakeStorage struct {
	files      map[string][]byte
	storeErr   error
	archiveErr error
	archived   []storage.Entry
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: make(map[string][]byte)}
}

func (f *fakeStorage) SubmissionRef(classID, userID uuid.UUID) string {
	return "submissions/" + classID.String() + "/" + userID.String()
}

func (f *fakeStorage) Store(_ context.Context, ref string, data []byte) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	f.files[ref] = data
	return nil
}

func (f *fakeStorage) BuildArchive(_ context.Context, classID uuid.UUID, entries []storage.Entry) (string, error) {
	if f.archiveErr != nil {
		return "", f.archiveErr
	}
	f.archived = entries
	return "exports/" + classID.String() + ".zip", nil
}
