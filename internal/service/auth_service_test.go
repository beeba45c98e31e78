package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mgcampos/campus-portal-api/internal/models"
	appErrors "github.com/mgcampos/campus-portal-api/pkg/errors"
	"github.com/mgcampos/campus-portal-api/pkg/mail"
	"github.com/mgcampos/campus-portal-api/pkg/session"
)

type mockUserRepo struct {
	byEmail   map[string]*models.User
	byID      map[string]*models.User
	otps      map[string]*models.OTP
	activated []string
	lastLogin []string
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = "user-" + user.Email
	if m.byEmail == nil {
		m.byEmail = map[string]*models.User{}
	}
	m.byEmail[user.Email] = user
	return nil
}

func (m *mockUserRepo) Activate(ctx context.Context, id string) error {
	m.activated = append(m.activated, id)
	return nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLogin = append(m.lastLogin, id)
	return nil
}

func (m *mockUserRepo) CreateOTP(ctx context.Context, otp *models.OTP) error {
	if m.otps == nil {
		m.otps = map[string]*models.OTP{}
	}
	otp.ID = "otp-" + otp.UserID
	m.otps[otp.UserID] = otp
	return nil
}

func (m *mockUserRepo) FindPendingOTP(ctx context.Context, userID string) (*models.OTP, error) {
	otp, ok := m.otps[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return otp, nil
}

func (m *mockUserRepo) ConsumeOTP(ctx context.Context, id string, ts time.Time) error {
	return nil
}

type mockSessionStore struct {
	created   []models.Principal
	destroyed []string
}

func (m *mockSessionStore) Create(ctx context.Context, principal models.Principal) (*session.Session, error) {
	m.created = append(m.created, principal)
	return &session.Session{ID: "sess-new", Principal: principal, CreatedAt: time.Now().UTC()}, nil
}

func (m *mockSessionStore) Destroy(ctx context.Context, id string) error {
	m.destroyed = append(m.destroyed, id)
	return nil
}

type mockNotificationWriter struct {
	notes []models.Notification
}

func (m *mockNotificationWriter) Create(ctx context.Context, n *models.Notification) error {
	m.notes = append(m.notes, *n)
	return nil
}

type mockMailEnqueuer struct {
	sent []mail.Message
}

func (m *mockMailEnqueuer) Enqueue(msg mail.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

func hashOf(t *testing.T, raw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newAuthService(users *mockUserRepo, sessions *mockSessionStore) (*AuthService, *mockMailEnqueuer, *mockAuditWriter) {
	mailer := &mockMailEnqueuer{}
	audits := &mockAuditWriter{}
	svc := NewAuthService(users, sessions, &mockNotificationWriter{}, audits, mailer, nil, nil, AuthConfig{OTPTTL: 10 * time.Minute})
	return svc, mailer, audits
}

func TestRegisterCreatesPendingAccountAndEmailsCode(t *testing.T) {
	users := &mockUserRepo{byEmail: map[string]*models.User{}}
	svc, mailer, audits := newAuthService(users, &mockSessionStore{})

	user, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "ana@example.com",
		Password:  "sup3rsecret",
		FirstName: "Ana",
		LastName:  "Reyes",
		Role:      "student",
	}, RequestMeta{IP: "127.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusPending, user.Status)
	assert.False(t, user.IsVerified)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ana@example.com", mailer.sent[0].ToEmail)
	require.Len(t, audits.entries, 1)
	assert.Equal(t, models.AuditActionRegister, audits.entries[0].Action)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	users := &mockUserRepo{byEmail: map[string]*models.User{
		"ana@example.com": {ID: "user-1", Email: "ana@example.com"},
	}}
	svc, _, _ := newAuthService(users, &mockSessionStore{})

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email: "ana@example.com", Password: "sup3rsecret",
		FirstName: "Ana", LastName: "Reyes", Role: "student",
	}, RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Status, appErrors.FromError(err).Status)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc, _, _ := newAuthService(&mockUserRepo{byEmail: map[string]*models.User{}}, &mockSessionStore{})

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email: "x@example.com", Password: "sup3rsecret",
		FirstName: "X", LastName: "Y", Role: "admin",
	}, RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}

func TestVerifyOTPActivatesAccount(t *testing.T) {
	users := &mockUserRepo{
		byEmail: map[string]*models.User{
			"ana@example.com": {ID: "user-1", Email: "ana@example.com"},
		},
		otps: map[string]*models.OTP{
			"user-1": {ID: "otp-1", UserID: "user-1", CodeHash: hashOf(t, "123456"), ExpiresAt: time.Now().Add(time.Minute)},
		},
	}
	svc, _, _ := newAuthService(users, &mockSessionStore{})

	err := svc.VerifyOTP(context.Background(), VerifyOTPRequest{Email: "ana@example.com", Code: "123456"}, RequestMeta{})
	require.NoError(t, err)
	assert.Contains(t, users.activated, "user-1")
}

func TestVerifyOTPRejectsWrongCode(t *testing.T) {
	users := &mockUserRepo{
		byEmail: map[string]*models.User{
			"ana@example.com": {ID: "user-1", Email: "ana@example.com"},
		},
		otps: map[string]*models.OTP{
			"user-1": {ID: "otp-1", UserID: "user-1", CodeHash: hashOf(t, "123456"), ExpiresAt: time.Now().Add(time.Minute)},
		},
	}
	svc, _, _ := newAuthService(users, &mockSessionStore{})

	err := svc.VerifyOTP(context.Background(), VerifyOTPRequest{Email: "ana@example.com", Code: "654321"}, RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
	assert.Empty(t, users.activated)
}

func TestLoginIssuesFreshSessionAndDestroysPresented(t *testing.T) {
	users := &mockUserRepo{byEmail: map[string]*models.User{
		"ana@example.com": {
			ID: "user-1", Email: "ana@example.com",
			PasswordHash: hashOf(t, "sup3rsecret"),
			Status:       models.UserStatusActive, IsVerified: true,
			Role: models.RoleStudent,
		},
	}}
	sessions := &mockSessionStore{}
	svc, _, audits := newAuthService(users, sessions)

	result, err := svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "sup3rsecret"}, "sess-old", RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "sess-new", result.Session.ID)
	assert.Contains(t, sessions.destroyed, "sess-old")
	assert.Contains(t, users.lastLogin, "user-1")
	require.Len(t, audits.entries, 1)
	assert.Equal(t, models.AuditActionLogin, audits.entries[0].Action)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	users := &mockUserRepo{byEmail: map[string]*models.User{
		"ana@example.com": {
			ID: "user-1", Email: "ana@example.com",
			PasswordHash: hashOf(t, "sup3rsecret"),
			Status:       models.UserStatusActive, IsVerified: true,
		},
	}}
	svc, _, _ := newAuthService(users, &mockSessionStore{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "wrong"}, "", RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownEmailSameErrorAsBadPassword(t *testing.T) {
	svc, _, _ := newAuthService(&mockUserRepo{byEmail: map[string]*models.User{}}, &mockSessionStore{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever1"}, "", RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginBlocksUnverifiedAccount(t *testing.T) {
	users := &mockUserRepo{byEmail: map[string]*models.User{
		"ana@example.com": {
			ID: "user-1", Email: "ana@example.com",
			PasswordHash: hashOf(t, "sup3rsecret"),
			Status:       models.UserStatusPending, IsVerified: false,
		},
	}}
	svc, _, _ := newAuthService(users, &mockSessionStore{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "sup3rsecret"}, "", RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Status, appErrors.FromError(err).Status)
}

func TestLoginBlocksDisabledAccount(t *testing.T) {
	users := &mockUserRepo{byEmail: map[string]*models.User{
		"ana@example.com": {
			ID: "user-1", Email: "ana@example.com",
			PasswordHash: hashOf(t, "sup3rsecret"),
			Status:       models.UserStatusDisabled, IsVerified: true,
		},
	}}
	svc, _, _ := newAuthService(users, &mockSessionStore{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "sup3rsecret"}, "", RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Status, appErrors.FromError(err).Status)
}

func TestLogoutDestroysSession(t *testing.T) {
	sessions := &mockSessionStore{}
	svc, _, audits := newAuthService(&mockUserRepo{}, sessions)

	err := svc.Logout(context.Background(), "sess-1", "user-1", RequestMeta{})
	require.NoError(t, err)
	assert.Contains(t, sessions.destroyed, "sess-1")
	require.Len(t, audits.entries, 1)
	assert.Equal(t, models.AuditActionLogout, audits.entries[0].Action)
}
