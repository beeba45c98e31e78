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

// SubmissionRepository handles persistence of LMS submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

const submissionColumns = `id, lesson_id, student_id, submission_text, attachment_path, status, score, feedback, graded_by, graded_at, submitted_at, updated_at`

// List returns submissions filtered by the provided criteria.
func (r *SubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.SubmissionDetail, int, error) {
	base := `FROM submissions sub
JOIN lessons l ON l.id = sub.lesson_id
JOIN users s ON s.id = sub.student_id`
	var conditions []string
	var args []interface{}

	if filter.LessonID != "" {
		conditions = append(conditions, fmt.Sprintf("sub.lesson_id = $%d", len(args)+1))
		args = append(args, filter.LessonID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("sub.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("sub.status = $%d", len(args)+1))
		args = append(args, filter.Status)
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
	if size <= 0 || size > 100 {
		size = 20
	}

	query := fmt.Sprintf(`SELECT sub.id, sub.lesson_id, sub.student_id, sub.submission_text, sub.attachment_path,
        sub.status, sub.score, sub.feedback, sub.graded_by, sub.graded_at, sub.submitted_at, sub.updated_at,
        l.title AS lesson_title, s.first_name || ' ' || s.last_name AS student_name
        %s ORDER BY sub.submitted_at DESC LIMIT %d OFFSET %d`, base+clause, size, (page-1)*size)

	var submissions []models.SubmissionDetail
	if err := r.db.SelectContext(ctx, &submissions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base+clause), args...); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}
	return submissions, total, nil
}

// Find returns the submission of a student for a lesson, if any.
func (r *SubmissionRepository) Find(ctx context.Context, lessonID, studentID string) (*models.Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM submissions WHERE lesson_id = $1 AND student_id = $2`, submissionColumns)
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, lessonID, studentID); err != nil {
		return nil, err
	}
	return &submission, nil
}

// FindByID returns a submission by its ID.
func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM submissions WHERE id = $1`, submissionColumns)
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, id); err != nil {
		return nil, err
	}
	return &submission, nil
}

// Upsert writes a (re)submission keyed by (lesson_id, student_id). A repeat
// submission clears any prior score, feedback, and grader so the work must
// be graded again. The faculty notification joins the same transaction.
func (r *SubmissionRepository) Upsert(ctx context.Context, submission *models.Submission, notif *models.Notification) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = now
	}
	submission.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin submission upsert: %w", err)
	}
	const query = `INSERT INTO submissions (id, lesson_id, student_id, submission_text, attachment_path, status, score, feedback, graded_by, graded_at, submitted_at, updated_at)
        VALUES (:id, :lesson_id, :student_id, :submission_text, :attachment_path, :status, NULL, NULL, NULL, NULL, :submitted_at, :updated_at)
        ON CONFLICT (lesson_id, student_id)
        DO UPDATE SET submission_text = EXCLUDED.submission_text, attachment_path = EXCLUDED.attachment_path,
            status = EXCLUDED.status, score = NULL, feedback = NULL, graded_by = NULL, graded_at = NULL,
            submitted_at = EXCLUDED.submitted_at, updated_at = EXCLUDED.updated_at`
	if _, err := tx.NamedExecContext(ctx, query, submission); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("upsert submission: %w", err)
	}
	if err := insertNotification(ctx, tx, notif); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit submission upsert: %w", err)
	}
	return nil
}

// Grade finalises a submission and writes the student notification in the
// same transaction.
func (r *SubmissionRepository) Grade(ctx context.Context, id string, score float64, feedback *string, gradedBy string, notif *models.Notification) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin submission grading: %w", err)
	}
	const query = `UPDATE submissions
        SET score = $2, feedback = $3, status = $4, graded_by = $5, graded_at = $6, updated_at = $6
        WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, id, score, feedback, models.SubmissionGraded, gradedBy, time.Now().UTC()); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("grade submission: %w", err)
	}
	if err := insertNotification(ctx, tx, notif); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit submission grading: %w", err)
	}
	return nil
}
