package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgcampos/campus-portal-api/internal/models"
	appErrors "github.com/mgcampos/campus-portal-api/pkg/errors"
)

type mockGradeRepo struct {
	saved *models.Grade
	notif *models.Notification
	rows  []models.GradeReportRow
}

func (m *mockGradeRepo) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error) {
	if m.saved == nil {
		return nil, nil
	}
	return []models.Grade{*m.saved}, nil
}

func (m *mockGradeRepo) Upsert(ctx context.Context, grade *models.Grade, notif *models.Notification) error {
	m.saved = grade
	m.notif = notif
	return nil
}

func (m *mockGradeRepo) ReportCardRows(ctx context.Context, studentID, schoolYear, semester string) ([]models.GradeReportRow, error) {
	return m.rows, nil
}

func score(v float64) *float64 { return &v }

func validEncodeRequest() EncodeGradeRequest {
	return EncodeGradeRequest{
		StudentID:  "9f4a2f64-24f1-4e5e-a9c8-2b7d1a3c5e01",
		SubjectID:  "9f4a2f64-24f1-4e5e-a9c8-2b7d1a3c5e02",
		SectionID:  "9f4a2f64-24f1-4e5e-a9c8-2b7d1a3c5e03",
		SchoolYear: "2026-2027",
		Semester:   "1st",
	}
}

func TestEncodeComputesFinalAndNotifies(t *testing.T) {
	repo := &mockGradeRepo{}
	svc := NewGradeService(repo, &mockAuditWriter{}, nil, nil)

	req := validEncodeRequest()
	req.Prelim = score(70)
	req.Midterm = score(80)
	grade, err := svc.Encode(context.Background(), "faculty-1", req, RequestMeta{})
	require.NoError(t, err)
	require.NotNil(t, grade.FinalGrade)
	assert.Equal(t, 75.0, *grade.FinalGrade)
	assert.Equal(t, models.RemarksPassed, grade.Remarks)
	assert.Equal(t, "faculty-1", grade.FacultyID)
	require.NotNil(t, repo.notif)
	assert.Equal(t, req.StudentID, repo.notif.UserID)
	assert.Equal(t, models.NotificationTypeGrade, repo.notif.Type)
}

func TestEncodeWithoutComponentsIsIncomplete(t *testing.T) {
	repo := &mockGradeRepo{}
	svc := NewGradeService(repo, &mockAuditWriter{}, nil, nil)

	grade, err := svc.Encode(context.Background(), "faculty-1", validEncodeRequest(), RequestMeta{})
	require.NoError(t, err)
	assert.Nil(t, grade.FinalGrade)
	assert.Equal(t, models.RemarksIncomplete, grade.Remarks)
}

func TestEncodeEverySaveNotifies(t *testing.T) {
	repo := &mockGradeRepo{}
	svc := NewGradeService(repo, &mockAuditWriter{}, nil, nil)

	req := validEncodeRequest()
	req.Prelim = score(88)
	_, err := svc.Encode(context.Background(), "faculty-1", req, RequestMeta{})
	require.NoError(t, err)
	first := repo.notif

	req.Midterm = score(90)
	_, err = svc.Encode(context.Background(), "faculty-1", req, RequestMeta{})
	require.NoError(t, err)
	assert.NotNil(t, first)
	assert.NotNil(t, repo.notif)
}

func TestEncodeRejectsOutOfRangeScore(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, &mockAuditWriter{}, nil, nil)

	req := validEncodeRequest()
	req.Prelim = score(101)
	_, err := svc.Encode(context.Background(), "faculty-1", req, RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}

func TestEncodeWritesAuditRow(t *testing.T) {
	audits := &mockAuditWriter{}
	svc := NewGradeService(&mockGradeRepo{}, audits, nil, nil)

	req := validEncodeRequest()
	req.Finals = score(92)
	_, err := svc.Encode(context.Background(), "faculty-1", req, RequestMeta{IP: "10.0.0.1"})
	require.NoError(t, err)
	require.Len(t, audits.entries, 1)
	assert.Equal(t, models.AuditActionGradeEncode, audits.entries[0].Action)
	assert.Equal(t, "10.0.0.1", audits.entries[0].IPAddress)
}
