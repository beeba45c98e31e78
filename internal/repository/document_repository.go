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

// DocumentRepository handles persistence of student documents.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, student_id, doc_type, display_name, file_path, status, remarks, verified_by, verified_at, created_at, updated_at`

// List returns documents filtered by the provided criteria.
func (r *DocumentRepository) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error) {
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.DocType != "" {
		conditions = append(conditions, fmt.Sprintf("doc_type = $%d", len(args)+1))
		args = append(args, filter.DocType)
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

	query := fmt.Sprintf(`SELECT %s FROM documents%s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		documentColumns, clause, size, (page-1)*size)
	var documents []models.Document
	if err := r.db.SelectContext(ctx, &documents, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM documents%s", clause), args...); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}
	return documents, total, nil
}

// FindByID returns a document by its ID.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE id = $1`, documentColumns)
	var document models.Document
	if err := r.db.GetContext(ctx, &document, query, id); err != nil {
		return nil, err
	}
	return &document, nil
}

// Create persists a new document record.
func (r *DocumentRepository) Create(ctx context.Context, document *models.Document) error {
	if document.ID == "" {
		document.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if document.CreatedAt.IsZero() {
		document.CreatedAt = now
	}
	document.UpdatedAt = now
	if document.Status == "" {
		document.Status = models.DocumentStatusPending
	}
	const query = `INSERT INTO documents (id, student_id, doc_type, display_name, file_path, status, remarks, created_at, updated_at)
        VALUES (:id, :student_id, :doc_type, :display_name, :file_path, :status, :remarks, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, document); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// Verify applies the review status and writes the owner notification in the
// same transaction. Re-verification overwrites verified_at and remarks
// (last-write-wins) and still emits exactly one notification.
func (r *DocumentRepository) Verify(ctx context.Context, id string, status models.DocumentStatus, remarks *string, verifiedBy string, notif *models.Notification) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin document verification: %w", err)
	}
	const query = `UPDATE documents
        SET status = $2, remarks = $3, verified_by = $4, verified_at = $5, updated_at = $5
        WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, id, status, remarks, verifiedBy, time.Now().UTC()); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("update document status: %w", err)
	}
	if err := insertNotification(ctx, tx, notif); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit document verification: %w", err)
	}
	return nil
}
