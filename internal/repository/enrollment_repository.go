package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mgcampos/campus-portal-api/internal/models"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns enrollments filtered by the provided criteria.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	base := `FROM enrollments e
JOIN users s ON s.id = e.student_id`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.SchoolYear != "" {
		conditions = append(conditions, fmt.Sprintf("e.school_year = $%d", len(args)+1))
		args = append(args, filter.SchoolYear)
	}
	if filter.Semester != "" {
		conditions = append(conditions, fmt.Sprintf("e.semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"created_at":   "e.created_at",
		"student_name": "s.last_name",
		"status":       "e.status",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "e.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT e.id, e.student_id, e.program_id, e.section_id, e.school_year, e.semester,
        e.status, e.remarks, e.reviewed_by, e.reviewed_at, e.created_at, e.updated_at,
        s.first_name || ' ' || s.last_name AS student_name, s.email AS student_email
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base+clause, orderBy, order, size, offset)

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base+clause), args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// FindDetailByID returns an enrollment joined with its owning student. The
// join guarantees the record resolves to an existing student.
func (r *EnrollmentRepository) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.program_id, e.section_id, e.school_year, e.semester,
        e.status, e.remarks, e.reviewed_by, e.reviewed_at, e.created_at, e.updated_at,
        s.first_name || ' ' || s.last_name AS student_name, s.email AS student_email
        FROM enrollments e
        JOIN users s ON s.id = e.student_id
        WHERE e.id = $1`
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsForTerm checks the one-enrollment-per-term uniqueness invariant.
func (r *EnrollmentRepository) ExistsForTerm(ctx context.Context, studentID, schoolYear, semester string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE student_id = $1 AND school_year = $2 AND semester = $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, schoolYear, semester); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment for term: %w", err)
	}
	return true, nil
}

// Create persists a pending enrollment and fans out the provided
// notifications inside one transaction.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment, notifications []models.Notification) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = now
	}
	enrollment.UpdatedAt = now
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusPending
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enrollment create: %w", err)
	}
	const query = `INSERT INTO enrollments (id, student_id, program_id, section_id, school_year, semester, status, remarks, created_at, updated_at)
        VALUES (:id, :student_id, :program_id, :section_id, :school_year, :semester, :status, :remarks, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, enrollment); err != nil {
		tx.Rollback() //nolint:errcheck
		if isUniqueViolation(err) {
			return fmt.Errorf("create enrollment: %w", ErrDuplicate)
		}
		return fmt.Errorf("create enrollment: %w", err)
	}
	for i := range notifications {
		if err := insertNotification(ctx, tx, &notifications[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit enrollment create: %w", err)
	}
	return nil
}

// Decide applies a terminal review status and writes the owner notification
// in the same transaction; both commit or both roll back.
func (r *EnrollmentRepository) Decide(ctx context.Context, id string, status models.EnrollmentStatus, remarks *string, reviewedBy string, notif *models.Notification) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enrollment decision: %w", err)
	}
	const query = `UPDATE enrollments
        SET status = $2, remarks = $3, reviewed_by = $4, reviewed_at = $5, updated_at = $5
        WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, id, status, remarks, reviewedBy, time.Now().UTC()); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("update enrollment status: %w", err)
	}
	if err := insertNotification(ctx, tx, notif); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit enrollment decision: %w", err)
	}
	return nil
}
