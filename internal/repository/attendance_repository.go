package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mgcampos/campus-portal-api/internal/models"
)

// AttendanceRepository handles persistence of attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `id, subject_id, section_id, student_id, attendance_date, status, remarks, recorded_by, created_at, updated_at`

const attendanceUpsert = `INSERT INTO attendance (id, subject_id, section_id, student_id, attendance_date, status, remarks, recorded_by, created_at, updated_at)
        VALUES (:id, :subject_id, :section_id, :student_id, :attendance_date, :status, :remarks, :recorded_by, :created_at, :updated_at)
        ON CONFLICT (subject_id, section_id, student_id, attendance_date)
        DO UPDATE SET status = EXCLUDED.status, remarks = EXCLUDED.remarks, recorded_by = EXCLUDED.recorded_by, updated_at = EXCLUDED.updated_at`

// List returns attendance records filtered by the provided criteria.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, int, error) {
	var conditions []string
	var args []interface{}

	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.SectionID != "" {
		conditions = append(conditions, fmt.Sprintf("section_id = $%d", len(args)+1))
		args = append(args, filter.SectionID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("attendance_date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("attendance_date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}

	query := fmt.Sprintf(`SELECT %s FROM attendance%s ORDER BY attendance_date DESC LIMIT %d OFFSET %d`,
		attendanceColumns, clause, size, (page-1)*size)
	var records []models.Attendance
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM attendance%s", clause), args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return records, total, nil
}

// Upsert writes a single attendance mark, last write wins.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.Attendance) error {
	prepare(record)
	if _, err := r.db.NamedExecContext(ctx, attendanceUpsert, record); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// BulkUpsert writes a whole section sheet in one transaction.
func (r *AttendanceRepository) BulkUpsert(ctx context.Context, records []models.Attendance) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance sheet: %w", err)
	}
	for i := range records {
		prepare(&records[i])
		if _, err := tx.NamedExecContext(ctx, attendanceUpsert, &records[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("upsert attendance row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance sheet: %w", err)
	}
	return nil
}

// SectionSheet returns the marks for a section on one date, joined with
// student names for export.
func (r *AttendanceRepository) SectionSheet(ctx context.Context, subjectID, sectionID string, date time.Time) ([]models.AttendanceSheetRow, error) {
	const query = `SELECT a.student_id, s.first_name || ' ' || s.last_name AS student_name, a.status, a.remarks
        FROM attendance a
        JOIN users s ON s.id = a.student_id
        WHERE a.subject_id = $1 AND a.section_id = $2 AND a.attendance_date = $3
        ORDER BY s.last_name, s.first_name`
	var rows []models.AttendanceSheetRow
	if err := r.db.SelectContext(ctx, &rows, query, subjectID, sectionID, date); err != nil {
		return nil, fmt.Errorf("section sheet: %w", err)
	}
	return rows, nil
}

func prepare(record *models.Attendance) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
}
