package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mgcampos/campus-portal-api/internal/models"
	appErrors "github.com/mgcampos/campus-portal-api/pkg/errors"
	"github.com/mgcampos/campus-portal-api/pkg/export"
)

type reportRowSource interface {
	ReportCardRows(ctx context.Context, studentID, schoolYear, semester string) ([]models.GradeReportRow, error)
}

type sheetSource interface {
	SectionSheet(ctx context.Context, subjectID, sectionID string, date time.Time) ([]models.AttendanceSheetRow, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// ExportConfig carries institution branding for rendered documents.
type ExportConfig struct {
	SchoolName string
}

// ExportService renders downloadable documents from domain data.
type ExportService struct {
	grades     reportRowSource
	attendance sheetSource
	users      userFinder
	pdf        *export.ReportCardExporter
	csv        *export.CSVExporter
	logger     *zap.Logger
	config     ExportConfig
}

// NewExportService constructs an ExportService instance.
func NewExportService(grades reportRowSource, attendance sheetSource, users userFinder, logger *zap.Logger, config ExportConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		grades:     grades,
		attendance: attendance,
		users:      users,
		pdf:        export.NewReportCardExporter(),
		csv:        export.NewCSVExporter(),
		logger:     logger,
		config:     config,
	}
}

// ReportCardPDF renders a student's term report card.
func (s *ExportService) ReportCardPDF(ctx context.Context, studentID, schoolYear, semester string) ([]byte, error) {
	student, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	rows, err := s.grades.ReportCardRows(ctx, studentID, schoolYear, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no grades recorded for this term")
	}

	card := export.ReportCard{
		SchoolName:  s.config.SchoolName,
		StudentName: student.FullName(),
		SchoolYear:  schoolYear,
		Semester:    semester,
	}
	for _, row := range rows {
		card.Rows = append(card.Rows, export.ReportCardRow{
			SubjectCode: row.SubjectCode,
			SubjectName: row.SubjectName,
			Prelim:      formatScore(row.Prelim),
			Midterm:     formatScore(row.Midterm),
			Finals:      formatScore(row.Finals),
			FinalGrade:  formatScore(row.FinalGrade),
			Remarks:     string(row.Remarks),
		})
	}

	data, err := s.pdf.Render(card)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report card")
	}
	return data, nil
}

// AttendanceSheetCSV renders one section meeting as a CSV download.
func (s *ExportService) AttendanceSheetCSV(ctx context.Context, subjectID, sectionID string, date time.Time) ([]byte, error) {
	rows, err := s.attendance.SectionSheet(ctx, subjectID, sectionID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section sheet")
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no attendance recorded for this date")
	}

	sheet := export.Sheet{
		Columns: []string{"Student", "Status", "Remarks"},
	}
	for _, row := range rows {
		remarks := ""
		if row.Remarks != nil {
			remarks = *row.Remarks
		}
		sheet.Rows = append(sheet.Rows, map[string]string{
			"Student": row.StudentName,
			"Status":  string(row.Status),
			"Remarks": remarks,
		})
	}

	data, err := s.csv.Render(sheet)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return data, nil
}

func formatScore(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
