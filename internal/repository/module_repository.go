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

// ModuleRepository handles persistence of LMS course modules.
type ModuleRepository struct {
	db *sqlx.DB
}

// NewModuleRepository constructs the repository.
func NewModuleRepository(db *sqlx.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

const moduleColumns = `id, subject_id, faculty_id, title, description, published, created_at, updated_at`

// List returns modules, optionally scoped to a subject or owning faculty.
// Unpublished modules are hidden unless includeUnpublished is set.
func (r *ModuleRepository) List(ctx context.Context, subjectID, facultyID string, includeUnpublished bool) ([]models.CourseModule, error) {
	var conditions []string
	var args []interface{}

	if subjectID != "" {
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)+1))
		args = append(args, subjectID)
	}
	if facultyID != "" {
		conditions = append(conditions, fmt.Sprintf("faculty_id = $%d", len(args)+1))
		args = append(args, facultyID)
	}
	if !includeUnpublished {
		conditions = append(conditions, "published = TRUE")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}
	query := fmt.Sprintf(`SELECT %s FROM course_modules%s ORDER BY created_at DESC`, moduleColumns, clause)
	var modules []models.CourseModule
	if err := r.db.SelectContext(ctx, &modules, query, args...); err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return modules, nil
}

// FindByID returns a module by its ID.
func (r *ModuleRepository) FindByID(ctx context.Context, id string) (*models.CourseModule, error) {
	query := fmt.Sprintf(`SELECT %s FROM course_modules WHERE id = $1`, moduleColumns)
	var module models.CourseModule
	if err := r.db.GetContext(ctx, &module, query, id); err != nil {
		return nil, err
	}
	return &module, nil
}

// Create persists a new module.
func (r *ModuleRepository) Create(ctx context.Context, module *models.CourseModule) error {
	if module.ID == "" {
		module.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if module.CreatedAt.IsZero() {
		module.CreatedAt = now
	}
	module.UpdatedAt = now
	const query = `INSERT INTO course_modules (id, subject_id, faculty_id, title, description, published, created_at, updated_at)
        VALUES (:id, :subject_id, :faculty_id, :title, :description, :published, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, module); err != nil {
		return fmt.Errorf("create module: %w", err)
	}
	return nil
}

// Update overwrites mutable module fields.
func (r *ModuleRepository) Update(ctx context.Context, module *models.CourseModule) error {
	module.UpdatedAt = time.Now().UTC()
	const query = `UPDATE course_modules SET title = :title, description = :description, published = :published, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, module); err != nil {
		return fmt.Errorf("update module: %w", err)
	}
	return nil
}

// Delete removes a module and cascades to its lessons.
func (r *ModuleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM course_modules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete module: %w", err)
	}
	return nil
}
