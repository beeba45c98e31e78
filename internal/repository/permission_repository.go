package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mgcampos/campus-portal-api/internal/models"
)

// PermissionRepository reads role permission grants. The policy lookup is
// side-effect free; callers cache the result on the session.
type PermissionRepository struct {
	db *sqlx.DB
}

// NewPermissionRepository constructs the repository.
func NewPermissionRepository(db *sqlx.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// KeysForRole returns every permission key granted to a role.
func (r *PermissionRepository) KeysForRole(ctx context.Context, role models.UserRole) ([]string, error) {
	const query = `SELECT permission_key FROM role_permissions WHERE role = $1`
	var keys []string
	if err := r.db.SelectContext(ctx, &keys, query, role); err != nil {
		return nil, fmt.Errorf("load role permissions: %w", err)
	}
	return keys, nil
}
