package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mgcampos/campus-portal-api/internal/models"
	appErrors "github.com/mgcampos/campus-portal-api/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, int, error)
	Upsert(ctx context.Context, record *models.Attendance) error
	BulkUpsert(ctx context.Context, records []models.Attendance) error
	SectionSheet(ctx context.Context, subjectID, sectionID string, date time.Time) ([]models.AttendanceSheetRow, error)
}

// MarkAttendanceRequest records one student's mark for one meeting.
type MarkAttendanceRequest struct {
	SubjectID string  `json:"subject_id" form:"subject_id" validate:"required,uuid4"`
	SectionID string  `json:"section_id" form:"section_id" validate:"required,uuid4"`
	StudentID string  `json:"student_id" form:"student_id" validate:"required,uuid4"`
	Date      string  `json:"date" form:"date" validate:"required,datetime=2006-01-02"`
	Status    string  `json:"status" form:"status" validate:"required"`
	Remarks   *string `json:"remarks" form:"remarks" validate:"omitempty,max=255"`
}

// MarkSheetRequest records a whole section sheet in one call.
type MarkSheetRequest struct {
	SubjectID string          `json:"subject_id" form:"subject_id" validate:"required,uuid4"`
	SectionID string          `json:"section_id" form:"section_id" validate:"required,uuid4"`
	Date      string          `json:"date" form:"date" validate:"required,datetime=2006-01-02"`
	Entries   []MarkSheetItem `json:"entries" form:"entries" validate:"required,min=1,dive"`
}

// MarkSheetItem is one student line inside a sheet submission.
type MarkSheetItem struct {
	StudentID string  `json:"student_id" form:"student_id" validate:"required,uuid4"`
	Status    string  `json:"status" form:"status" validate:"required"`
	Remarks   *string `json:"remarks" form:"remarks" validate:"omitempty,max=255"`
}

// AttendanceService records daily attendance marks. Marks are last-write-wins
// per (subject, section, student, date).
type AttendanceService struct {
	attendance attendanceRepository
	audits     auditWriter
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAttendanceService constructs an AttendanceService instance.
func NewAttendanceService(attendance attendanceRepository, audits auditWriter, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{attendance: attendance, audits: audits, validator: validate, logger: logger}
}

// Mark records a single attendance entry.
func (s *AttendanceService) Mark(ctx context.Context, recordedBy string, req MarkAttendanceRequest, meta RequestMeta) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	status := models.AttendanceStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be present, absent, late, or excused")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD")
	}

	record := &models.Attendance{
		SubjectID:      req.SubjectID,
		SectionID:      req.SectionID,
		StudentID:      req.StudentID,
		AttendanceDate: date,
		Status:         status,
		Remarks:        req.Remarks,
		RecordedBy:     recordedBy,
	}
	if err := s.attendance.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}

	writeAudit(ctx, s.audits, s.logger, &recordedBy, models.AuditActionAttendanceMark, "attendance",
		fmt.Sprintf("attendance %s for student %s on %s", status, req.StudentID, req.Date), meta)
	return record, nil
}

// MarkSheet records a full section sheet atomically.
func (s *AttendanceService) MarkSheet(ctx context.Context, recordedBy string, req MarkSheetRequest, meta RequestMeta) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance sheet payload")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD")
	}

	records := make([]models.Attendance, 0, len(req.Entries))
	for _, entry := range req.Entries {
		status := models.AttendanceStatus(entry.Status)
		if !status.Valid() {
			return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid status %q for student %s", entry.Status, entry.StudentID))
		}
		records = append(records, models.Attendance{
			SubjectID:      req.SubjectID,
			SectionID:      req.SectionID,
			StudentID:      entry.StudentID,
			AttendanceDate: date,
			Status:         status,
			Remarks:        entry.Remarks,
			RecordedBy:     recordedBy,
		})
	}

	if err := s.attendance.BulkUpsert(ctx, records); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance sheet")
	}

	writeAudit(ctx, s.audits, s.logger, &recordedBy, models.AuditActionAttendanceMark, "attendance",
		fmt.Sprintf("attendance sheet of %d entries for section %s on %s", len(records), req.SectionID, req.Date), meta)
	return len(records), nil
}

// List returns attendance records matching the filter.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, int, error) {
	items, total, err := s.attendance.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return items, total, nil
}

// SectionSheet returns the per-student marks for one section meeting.
func (s *AttendanceService) SectionSheet(ctx context.Context, subjectID, sectionID string, date time.Time) ([]models.AttendanceSheetRow, error) {
	rows, err := s.attendance.SectionSheet(ctx, subjectID, sectionID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section sheet")
	}
	return rows, nil
}
