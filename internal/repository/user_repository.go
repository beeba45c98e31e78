package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mgcampos/campus-portal-api/internal/models"
)

// UserRepository handles persistence of users and their OTP codes.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, role, status, is_verified, last_login, created_at, updated_at`

// FindByEmail returns a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID returns a user by its ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create persists a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	const query = `INSERT INTO users (id, email, password_hash, first_name, last_name, role, status, is_verified, created_at, updated_at)
        VALUES (:id, :email, :password_hash, :first_name, :last_name, :role, :status, :is_verified, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Activate marks a user verified and active after OTP confirmation.
func (r *UserRepository) Activate(ctx context.Context, id string) error {
	const query = `UPDATE users SET status = $2, is_verified = TRUE, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.UserStatusActive, time.Now().UTC()); err != nil {
		return fmt.Errorf("activate user: %w", err)
	}
	return nil
}

// UpdateLastLogin stamps the last successful login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE users SET last_login = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// ListActiveIDsByRole returns the IDs of active users holding the role.
// Used to fan notifications out to reviewers.
func (r *UserRepository) ListActiveIDsByRole(ctx context.Context, role models.UserRole) ([]string, error) {
	const query = `SELECT id FROM users WHERE role = $1 AND status = $2 AND is_verified = TRUE`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, role, models.UserStatusActive); err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	return ids, nil
}

// CreateOTP persists a new one-time code hash for a user.
func (r *UserRepository) CreateOTP(ctx context.Context, otp *models.OTP) error {
	if otp.ID == "" {
		otp.ID = uuid.NewString()
	}
	if otp.CreatedAt.IsZero() {
		otp.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO user_otps (id, user_id, code_hash, expires_at, consumed_at, created_at)
        VALUES (:id, :user_id, :code_hash, :expires_at, :consumed_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, otp); err != nil {
		return fmt.Errorf("create otp: %w", err)
	}
	return nil
}

// FindPendingOTP returns the most recent unconsumed, unexpired code for a user.
func (r *UserRepository) FindPendingOTP(ctx context.Context, userID string) (*models.OTP, error) {
	const query = `SELECT id, user_id, code_hash, expires_at, consumed_at, created_at
        FROM user_otps
        WHERE user_id = $1 AND consumed_at IS NULL AND expires_at > $2
        ORDER BY created_at DESC LIMIT 1`
	var otp models.OTP
	if err := r.db.GetContext(ctx, &otp, query, userID, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &otp, nil
}

// ConsumeOTP marks a code as used.
func (r *UserRepository) ConsumeOTP(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE user_otps SET consumed_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts); err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	return nil
}
