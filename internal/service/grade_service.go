package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mgcampos/campus-portal-api/internal/models"
	appErrors "github.com/mgcampos/campus-portal-api/pkg/errors"
)

type gradeRepository interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error)
	Upsert(ctx context.Context, grade *models.Grade, notif *models.Notification) error
	ReportCardRows(ctx context.Context, studentID, schoolYear, semester string) ([]models.GradeReportRow, error)
}

// EncodeGradeRequest is the faculty grade entry payload. Component scores
// are optional; absent components leave the final grade incomplete.
type EncodeGradeRequest struct {
	StudentID  string   `json:"student_id" form:"student_id" validate:"required,uuid4"`
	SubjectID  string   `json:"subject_id" form:"subject_id" validate:"required,uuid4"`
	SectionID  string   `json:"section_id" form:"section_id" validate:"required,uuid4"`
	SchoolYear string   `json:"school_year" form:"school_year" validate:"required"`
	Semester   string   `json:"semester" form:"semester" validate:"required,oneof=1st 2nd summer"`
	Prelim     *float64 `json:"prelim" form:"prelim" validate:"omitempty,gte=0,lte=100"`
	Midterm    *float64 `json:"midterm" form:"midterm" validate:"omitempty,gte=0,lte=100"`
	Finals     *float64 `json:"finals" form:"finals" validate:"omitempty,gte=0,lte=100"`
}

// GradeService encodes component scores and derives final grades.
type GradeService struct {
	grades    gradeRepository
	audits    auditWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs a GradeService instance.
func NewGradeService(grades gradeRepository, audits auditWriter, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{grades: grades, audits: audits, validator: validate, logger: logger}
}

// Encode upserts the component scores for one student-subject-term. The
// final grade and remarks are always recomputed server side and the student
// is notified in the same transaction as the write.
func (s *GradeService) Encode(ctx context.Context, facultyID string, req EncodeGradeRequest, meta RequestMeta) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	grade := &models.Grade{
		StudentID:  req.StudentID,
		SubjectID:  req.SubjectID,
		FacultyID:  facultyID,
		SectionID:  req.SectionID,
		SchoolYear: req.SchoolYear,
		Semester:   req.Semester,
		Prelim:     req.Prelim,
		Midterm:    req.Midterm,
		Finals:     req.Finals,
	}
	grade.Recalculate()

	notif := &models.Notification{
		UserID:  req.StudentID,
		Title:   "Grades updated",
		Message: fmt.Sprintf("Your grades for %s %s semester have been updated.", req.SchoolYear, req.Semester),
		Type:    models.NotificationTypeGrade,
	}
	if err := s.grades.Upsert(ctx, grade, notif); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save grade")
	}

	writeAudit(ctx, s.audits, s.logger, &facultyID, models.AuditActionGradeEncode, "grades",
		fmt.Sprintf("grade encoded for student %s subject %s", req.StudentID, req.SubjectID), meta)
	return grade, nil
}

// List returns grades matching the filter. Students are restricted to their
// own rows by the caller fixing filter.StudentID.
func (s *GradeService) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error) {
	grades, err := s.grades.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// ReportRows returns a student's per-subject grade lines for a term.
func (s *GradeService) ReportRows(ctx context.Context, studentID, schoolYear, semester string) ([]models.GradeReportRow, error) {
	rows, err := s.grades.ReportCardRows(ctx, studentID, schoolYear, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report rows")
	}
	return rows, nil
}
