package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mgcampos/campus-portal-api/internal/models"
	appErrors "github.com/mgcampos/campus-portal-api/pkg/errors"
	"github.com/mgcampos/campus-portal-api/pkg/mail"
	"github.com/mgcampos/campus-portal-api/pkg/session"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Activate(ctx context.Context, id string) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	CreateOTP(ctx context.Context, otp *models.OTP) error
	FindPendingOTP(ctx context.Context, userID string) (*models.OTP, error)
	ConsumeOTP(ctx context.Context, id string, ts time.Time) error
}

type sessionStore interface {
	Create(ctx context.Context, principal models.Principal) (*session.Session, error)
	Destroy(ctx context.Context, id string) error
}

type notificationWriter interface {
	Create(ctx context.Context, n *models.Notification) error
}

type auditWriter interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

type mailEnqueuer interface {
	Enqueue(msg mail.Message) error
}

// RequestMeta carries client metadata into audit rows.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// RegisterRequest describes the registration payload.
type RegisterRequest struct {
	Email     string `json:"email" form:"email" validate:"required,email"`
	Password  string `json:"password" form:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" form:"first_name" validate:"required"`
	LastName  string `json:"last_name" form:"last_name" validate:"required"`
	Role      string `json:"role" form:"role" validate:"required,oneof=student faculty"`
}

// VerifyOTPRequest describes the OTP confirmation payload.
type VerifyOTPRequest struct {
	Email string `json:"email" form:"email" validate:"required,email"`
	Code  string `json:"code" form:"code" validate:"required,len=6,numeric"`
}

// LoginRequest describes the login payload.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginResult bundles the fresh session and the authenticated user.
type LoginResult struct {
	Session *session.Session
	User    *models.User
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	OTPTTL time.Duration
}

// AuthService provides registration, verification, and session flows.
type AuthService struct {
	users         authUserRepository
	sessions      sessionStore
	notifications notificationWriter
	audits        auditWriter
	mailer        mailEnqueuer
	validator     *validator.Validate
	logger        *zap.Logger
	config        AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, sessions sessionStore, notifications notificationWriter, audits auditWriter, mailer mailEnqueuer, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.OTPTTL <= 0 {
		config.OTPTTL = 10 * time.Minute
	}
	return &AuthService{
		users:         users,
		sessions:      sessions,
		notifications: notifications,
		audits:        audits,
		mailer:        mailer,
		validator:     validate,
		logger:        logger,
		config:        config,
	}
}

// Register creates a pending account and emails a one-time code.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest, meta RequestMeta) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.UserRole(req.Role),
		Status:       models.UserStatusPending,
		IsVerified:   false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
	}

	if err := s.issueOTP(ctx, user); err != nil {
		return nil, err
	}

	s.audit(ctx, &user.ID, models.AuditActionRegister, "auth", "account registered", meta)
	return user, nil
}

// VerifyOTP confirms the emailed code and activates the account.
func (s *AuthService) VerifyOTP(ctx context.Context, req VerifyOTPRequest, meta RequestMeta) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid verification payload")
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}
	if user.IsVerified {
		return appErrors.Clone(appErrors.ErrConflict, "account already verified")
	}

	otp, err := s.users.FindPendingOTP(ctx, user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "code expired or not issued")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load verification code")
	}
	if bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(req.Code)) != nil {
		return appErrors.Clone(appErrors.ErrValidation, "incorrect verification code")
	}

	now := time.Now().UTC()
	if err := s.users.ConsumeOTP(ctx, otp.ID, now); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to consume code")
	}
	if err := s.users.Activate(ctx, user.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate account")
	}

	if err := s.notifications.Create(ctx, &models.Notification{
		UserID:  user.ID,
		Title:   "Welcome to the portal",
		Message: "Your account has been verified. You can now log in.",
		Type:    models.NotificationTypeAccount,
	}); err != nil {
		s.logger.Warn("failed to write welcome notification", zap.Error(err))
	}

	s.audit(ctx, &user.ID, models.AuditActionVerifyOTP, "auth", "account verified", meta)
	return nil
}

// Login authenticates credentials and issues a fresh session. Any session
// ID the client presented is destroyed first so a pre-login identifier can
// never survive authentication.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, presentedSessionID string, meta RequestMeta) (*LoginResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}
	if !user.IsVerified {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "account is not yet verified")
	}
	if user.Status != models.UserStatusActive {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "account is not active")
	}

	if presentedSessionID != "" {
		if err := s.sessions.Destroy(ctx, presentedSessionID); err != nil {
			s.logger.Warn("failed to destroy presented session", zap.Error(err))
		}
	}

	sess, err := s.sessions.Create(ctx, models.PrincipalOf(user))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}

	s.audit(ctx, &user.ID, models.AuditActionLogin, "auth", "logged in", meta)
	return &LoginResult{Session: sess, User: user}, nil
}

// Logout destroys the session.
func (s *AuthService) Logout(ctx context.Context, sessionID, userID string, meta RequestMeta) error {
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to destroy session")
	}
	s.audit(ctx, &userID, models.AuditActionLogout, "auth", "logged out", meta)
	return nil
}

// ResendOTP issues a new code for an unverified account.
func (s *AuthService) ResendOTP(ctx context.Context, email string, meta RequestMeta) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}
	if user.IsVerified {
		return appErrors.Clone(appErrors.ErrConflict, "account already verified")
	}
	return s.issueOTP(ctx, user)
}

func (s *AuthService) issueOTP(ctx context.Context, user *models.User) error {
	code, err := generateOTPCode()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate code")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash code")
	}
	otp := &models.OTP{
		UserID:    user.ID,
		CodeHash:  string(hash),
		ExpiresAt: time.Now().UTC().Add(s.config.OTPTTL),
	}
	if err := s.users.CreateOTP(ctx, otp); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store code")
	}

	if s.mailer != nil {
		msg := mail.Message{
			ToName:  user.FullName(),
			ToEmail: user.Email,
			Subject: "Your verification code",
			Body:    fmt.Sprintf("Your one-time verification code is %s. It expires in %d minutes.", code, int(s.config.OTPTTL.Minutes())),
		}
		if err := s.mailer.Enqueue(msg); err != nil {
			s.logger.Warn("failed to enqueue otp email", zap.Error(err))
		}
	}
	return nil
}

func (s *AuthService) audit(ctx context.Context, userID *string, action, module, description string, meta RequestMeta) {
	writeAudit(ctx, s.audits, s.logger, userID, action, module, description, meta)
}

func generateOTPCode() (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint64(buf[:]) % 1000000
	return fmt.Sprintf("%06d", n), nil
}
