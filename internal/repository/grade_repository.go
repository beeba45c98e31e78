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

// GradeRepository handles persistence of grade rows.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

const gradeColumns = `id, student_id, subject_id, faculty_id, section_id, school_year, semester, prelim, midterm, finals, final_grade, remarks, created_at, updated_at`

// List returns grade rows filtered by the provided criteria.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error) {
	var conditions []string
	var args []interface{}

	add := func(column, value string) {
		if value != "" {
			conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)+1))
			args = append(args, value)
		}
	}
	add("student_id", filter.StudentID)
	add("subject_id", filter.SubjectID)
	add("faculty_id", filter.FacultyID)
	add("section_id", filter.SectionID)
	add("school_year", filter.SchoolYear)
	add("semester", filter.Semester)

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s FROM grades%s ORDER BY updated_at DESC`, gradeColumns, clause)
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// Upsert writes all score columns and the derived remarks atomically, keyed
// by (student_id, subject_id, faculty_id, school_year, semester), and
// inserts the student notification in the same transaction. Every save
// notifies, not just changes.
func (r *GradeRepository) Upsert(ctx context.Context, grade *models.Grade, notif *models.Notification) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = now
	}
	grade.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin grade upsert: %w", err)
	}
	const query = `INSERT INTO grades (id, student_id, subject_id, faculty_id, section_id, school_year, semester, prelim, midterm, finals, final_grade, remarks, created_at, updated_at)
        VALUES (:id, :student_id, :subject_id, :faculty_id, :section_id, :school_year, :semester, :prelim, :midterm, :finals, :final_grade, :remarks, :created_at, :updated_at)
        ON CONFLICT (student_id, subject_id, faculty_id, school_year, semester)
        DO UPDATE SET section_id = EXCLUDED.section_id, prelim = EXCLUDED.prelim, midterm = EXCLUDED.midterm,
            finals = EXCLUDED.finals, final_grade = EXCLUDED.final_grade, remarks = EXCLUDED.remarks, updated_at = EXCLUDED.updated_at`
	if _, err := tx.NamedExecContext(ctx, query, grade); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("upsert grade: %w", err)
	}
	if err := insertNotification(ctx, tx, notif); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit grade upsert: %w", err)
	}
	return nil
}

// ReportCardRows returns the subject lines for a student's term report card.
func (r *GradeRepository) ReportCardRows(ctx context.Context, studentID, schoolYear, semester string) ([]models.GradeReportRow, error) {
	const query = `SELECT sub.code AS subject_code, sub.name AS subject_name,
        g.prelim, g.midterm, g.finals, g.final_grade, g.remarks
        FROM grades g
        JOIN subjects sub ON sub.id = g.subject_id
        WHERE g.student_id = $1 AND g.school_year = $2 AND g.semester = $3
        ORDER BY sub.code`
	var rows []models.GradeReportRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID, schoolYear, semester); err != nil {
		return nil, fmt.Errorf("report card rows: %w", err)
	}
	return rows, nil
}
