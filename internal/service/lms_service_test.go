package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgcampos/campus-portal-api/internal/models"
	appErrors "github.com/mgcampos/campus-portal-api/pkg/errors"
)

type mockModuleRepo struct {
	byID map[string]*models.CourseModule
}

func (m *mockModuleRepo) List(ctx context.Context, subjectID, facultyID string, includeUnpublished bool) ([]models.CourseModule, error) {
	var out []models.CourseModule
	for _, mod := range m.byID {
		if !includeUnpublished && !mod.Published {
			continue
		}
		if facultyID != "" && mod.FacultyID != facultyID {
			continue
		}
		out = append(out, *mod)
	}
	return out, nil
}

func (m *mockModuleRepo) FindByID(ctx context.Context, id string) (*models.CourseModule, error) {
	mod, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *mod
	return &copied, nil
}

func (m *mockModuleRepo) Create(ctx context.Context, module *models.CourseModule) error {
	module.ID = "mod-new"
	m.byID[module.ID] = module
	return nil
}

func (m *mockModuleRepo) Update(ctx context.Context, module *models.CourseModule) error {
	m.byID[module.ID] = module
	return nil
}

func (m *mockModuleRepo) Delete(ctx context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

type mockLessonRepo struct {
	byID map[string]*models.Lesson
}

func (m *mockLessonRepo) ListByModule(ctx context.Context, moduleID string) ([]models.Lesson, error) {
	var out []models.Lesson
	for _, l := range m.byID {
		if l.ModuleID == moduleID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *mockLessonRepo) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	l, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *l
	return &copied, nil
}

func (m *mockLessonRepo) Create(ctx context.Context, lesson *models.Lesson) error {
	lesson.ID = "lesson-new"
	m.byID[lesson.ID] = lesson
	return nil
}

func (m *mockLessonRepo) Update(ctx context.Context, lesson *models.Lesson) error {
	m.byID[lesson.ID] = lesson
	return nil
}

func (m *mockLessonRepo) Delete(ctx context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

type mockSubmissionRepo struct {
	byID       map[string]*models.Submission
	byKey      map[string]*models.Submission
	upserted   *models.Submission
	upsertNote *models.Notification
	gradeNote  *models.Notification
	gradedID   string
}

func (m *mockSubmissionRepo) List(ctx context.Context, filter models.SubmissionFilter) ([]models.SubmissionDetail, int, error) {
	var out []models.SubmissionDetail
	for _, s := range m.byID {
		if filter.StudentID != "" && s.StudentID != filter.StudentID {
			continue
		}
		out = append(out, models.SubmissionDetail{Submission: *s})
	}
	return out, len(out), nil
}

func (m *mockSubmissionRepo) Find(ctx context.Context, lessonID, studentID string) (*models.Submission, error) {
	s, ok := m.byKey[lessonID+"/"+studentID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (m *mockSubmissionRepo) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	s, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *s
	return &copied, nil
}

func (m *mockSubmissionRepo) Upsert(ctx context.Context, submission *models.Submission, notif *models.Notification) error {
	submission.ID = "sub-new"
	m.upserted = submission
	m.upsertNote = notif
	return nil
}

func (m *mockSubmissionRepo) Grade(ctx context.Context, id string, scoreVal float64, feedback *string, gradedBy string, notif *models.Notification) error {
	m.gradedID = id
	m.gradeNote = notif
	if s, ok := m.byID[id]; ok {
		s.Status = models.SubmissionGraded
		s.Score = &scoreVal
		s.GradedBy = &gradedBy
	}
	return nil
}

func newLMSFixture() (*LMSService, *mockModuleRepo, *mockLessonRepo, *mockSubmissionRepo) {
	due := time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC)
	modules := &mockModuleRepo{byID: map[string]*models.CourseModule{
		"mod-1": {ID: "mod-1", SubjectID: "subj-1", FacultyID: "faculty-1", Title: "Algebra", Published: true},
		"mod-2": {ID: "mod-2", SubjectID: "subj-1", FacultyID: "faculty-2", Title: "Drafts", Published: false},
	}}
	lessons := &mockLessonRepo{byID: map[string]*models.Lesson{
		"lesson-1": {ID: "lesson-1", ModuleID: "mod-1", Title: "Quadratics", DueDate: &due},
		"lesson-2": {ID: "lesson-2", ModuleID: "mod-2", Title: "Hidden"},
	}}
	submissions := &mockSubmissionRepo{byID: map[string]*models.Submission{}, byKey: map[string]*models.Submission{}}
	svc := NewLMSService(modules, lessons, submissions, nil, &mockAuditWriter{}, nil, nil, LMSConfig{})
	return svc, modules, lessons, submissions
}

func text(s string) *string { return &s }

func TestSubmitOnTimeFirstSubmission(t *testing.T) {
	svc, _, _, submissions := newLMSFixture()
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }

	sub, err := svc.Submit(context.Background(), "lesson-1", "student-1", SubmitRequest{SubmissionText: text("answer")}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionSubmitted, sub.Status)
	require.NotNil(t, submissions.upsertNote)
	assert.Equal(t, "faculty-1", submissions.upsertNote.UserID)
	assert.Equal(t, models.NotificationTypeLMS, submissions.upsertNote.Type)
}

func TestSubmitPastDueIsLateEvenOnResubmit(t *testing.T) {
	svc, _, _, submissions := newLMSFixture()
	svc.now = func() time.Time { return time.Date(2026, 3, 16, 0, 1, 0, 0, time.UTC) }
	submissions.byKey["lesson-1/student-1"] = &models.Submission{ID: "sub-1", LessonID: "lesson-1", StudentID: "student-1"}

	sub, err := svc.Submit(context.Background(), "lesson-1", "student-1", SubmitRequest{SubmissionText: text("late answer")}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionLate, sub.Status)
}

func TestSubmitOnTimeResubmission(t *testing.T) {
	svc, _, _, submissions := newLMSFixture()
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	submissions.byKey["lesson-1/student-1"] = &models.Submission{ID: "sub-1", LessonID: "lesson-1", StudentID: "student-1"}

	sub, err := svc.Submit(context.Background(), "lesson-1", "student-1", SubmitRequest{SubmissionText: text("revised")}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionResubmitted, sub.Status)
}

func TestSubmitRequiresContent(t *testing.T) {
	svc, _, _, _ := newLMSFixture()

	_, err := svc.Submit(context.Background(), "lesson-1", "student-1", SubmitRequest{}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}

func TestSubmitToUnpublishedModuleNotFound(t *testing.T) {
	svc, _, _, _ := newLMSFixture()

	_, err := svc.Submit(context.Background(), "lesson-2", "student-1", SubmitRequest{SubmissionText: text("x")}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}

func TestGradeSubmissionNotifiesStudent(t *testing.T) {
	svc, _, _, submissions := newLMSFixture()
	submissions.byID["sub-1"] = &models.Submission{ID: "sub-1", LessonID: "lesson-1", StudentID: "student-1", Status: models.SubmissionSubmitted}

	graded, err := svc.GradeSubmission(context.Background(), "sub-1", "faculty-1", GradeSubmissionRequest{Score: 92, Feedback: text("good work")}, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionGraded, graded.Status)
	require.NotNil(t, submissions.gradeNote)
	assert.Equal(t, "student-1", submissions.gradeNote.UserID)
}

func TestGradeSubmissionRejectsNonOwner(t *testing.T) {
	svc, _, _, submissions := newLMSFixture()
	submissions.byID["sub-1"] = &models.Submission{ID: "sub-1", LessonID: "lesson-1", StudentID: "student-1"}

	_, err := svc.GradeSubmission(context.Background(), "sub-1", "faculty-2", GradeSubmissionRequest{Score: 80}, RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Status, appErrors.FromError(err).Status)
}

func TestListModulesStudentOnlySeesPublished(t *testing.T) {
	svc, _, _, _ := newLMSFixture()

	modules, err := svc.ListModules(context.Background(), "", models.Principal{UserID: "student-1", Role: models.RoleStudent})
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Equal(t, "mod-1", modules[0].ID)
}

func TestUpdateModuleRejectsNonOwner(t *testing.T) {
	svc, _, _, _ := newLMSFixture()

	_, err := svc.UpdateModule(context.Background(), "mod-1", "faculty-2", CourseModuleRequest{
		SubjectID: "9f4a2f64-24f1-4e5e-a9c8-2b7d1a3c5e01", Title: "Hijack",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Status, appErrors.FromError(err).Status)
}

func TestListSubmissionsScopesStudentToOwn(t *testing.T) {
	svc, _, _, submissions := newLMSFixture()
	submissions.byID["sub-1"] = &models.Submission{ID: "sub-1", LessonID: "lesson-1", StudentID: "student-1"}
	submissions.byID["sub-2"] = &models.Submission{ID: "sub-2", LessonID: "lesson-1", StudentID: "student-2"}

	items, total, err := svc.ListSubmissions(context.Background(), models.SubmissionFilter{}, models.Principal{UserID: "student-1", Role: models.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "student-1", items[0].StudentID)
}
