package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgcampos/campus-portal-api/internal/models"
	appErrors "github.com/mgcampos/campus-portal-api/pkg/errors"
)

type mockAttendanceRepo struct {
	upserted []models.Attendance
	bulk     [][]models.Attendance
}

func (m *mockAttendanceRepo) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, int, error) {
	return nil, 0, nil
}

func (m *mockAttendanceRepo) Upsert(ctx context.Context, record *models.Attendance) error {
	m.upserted = append(m.upserted, *record)
	return nil
}

func (m *mockAttendanceRepo) BulkUpsert(ctx context.Context, records []models.Attendance) error {
	m.bulk = append(m.bulk, records)
	return nil
}

func (m *mockAttendanceRepo) SectionSheet(ctx context.Context, subjectID, sectionID string, date time.Time) ([]models.AttendanceSheetRow, error) {
	return nil, nil
}

func validMarkRequest() MarkAttendanceRequest {
	return MarkAttendanceRequest{
		SubjectID: "9f4a2f64-24f1-4e5e-a9c8-2b7d1a3c5e01",
		SectionID: "9f4a2f64-24f1-4e5e-a9c8-2b7d1a3c5e02",
		StudentID: "9f4a2f64-24f1-4e5e-a9c8-2b7d1a3c5e03",
		Date:      "2026-08-31",
		Status:    string(models.AttendancePresent),
	}
}

func TestMarkRecordsAttendanceAndAudit(t *testing.T) {
	repo := &mockAttendanceRepo{}
	audits := &mockAuditWriter{}
	svc := NewAttendanceService(repo, audits, nil, nil)

	record, err := svc.Mark(context.Background(), "faculty-1", validMarkRequest(), RequestMeta{IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, models.AttendancePresent, record.Status)
	assert.Equal(t, "faculty-1", record.RecordedBy)
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), repo.upserted[0].AttendanceDate)
	require.Len(t, audits.entries, 1)
	assert.Equal(t, models.AuditActionAttendanceMark, audits.entries[0].Action)
}

func TestMarkRejectsUnknownStatus(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, &mockAuditWriter{}, nil, nil)

	req := validMarkRequest()
	req.Status = "sleeping"
	_, err := svc.Mark(context.Background(), "faculty-1", req, RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
	assert.Empty(t, repo.upserted)
}

func TestMarkSheetUpsertsWholeSection(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, &mockAuditWriter{}, nil, nil)

	req := MarkSheetRequest{
		SubjectID: "9f4a2f64-24f1-4e5e-a9c8-2b7d1a3c5e01",
		SectionID: "9f4a2f64-24f1-4e5e-a9c8-2b7d1a3c5e02",
		Date:      "2026-08-31",
		Entries: []MarkSheetItem{
			{StudentID: "9f4a2f64-24f1-4e5e-a9c8-2b7d1a3c5e03", Status: string(models.AttendancePresent)},
			{StudentID: "9f4a2f64-24f1-4e5e-a9c8-2b7d1a3c5e04", Status: string(models.AttendanceAbsent)},
		},
	}
	count, err := svc.MarkSheet(context.Background(), "faculty-1", req, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, repo.bulk, 1)
	require.Len(t, repo.bulk[0], 2)
	assert.Equal(t, models.AttendanceAbsent, repo.bulk[0][1].Status)
}

func TestMarkSheetRejectsAnyInvalidEntry(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, &mockAuditWriter{}, nil, nil)

	req := MarkSheetRequest{
		SubjectID: "9f4a2f64-24f1-4e5e-a9c8-2b7d1a3c5e01",
		SectionID: "9f4a2f64-24f1-4e5e-a9c8-2b7d1a3c5e02",
		Date:      "2026-08-31",
		Entries: []MarkSheetItem{
			{StudentID: "9f4a2f64-24f1-4e5e-a9c8-2b7d1a3c5e03", Status: "unknown"},
		},
	}
	_, err := svc.MarkSheet(context.Background(), "faculty-1", req, RequestMeta{})
	require.Error(t, err)
	assert.Empty(t, repo.bulk)
}

func TestMarkSheetRequiresEntries(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, &mockAuditWriter{}, nil, nil)

	req := MarkSheetRequest{
		SubjectID: "9f4a2f64-24f1-4e5e-a9c8-2b7d1a3c5e01",
		SectionID: "9f4a2f64-24f1-4e5e-a9c8-2b7d1a3c5e02",
		Date:      "2026-08-31",
	}
	_, err := svc.MarkSheet(context.Background(), "faculty-1", req, RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}
