package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mgcampos/campus-portal-api/internal/models"
	"github.com/mgcampos/campus-portal-api/internal/repository"
	appErrors "github.com/mgcampos/campus-portal-api/pkg/errors"
)

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	ExistsForTerm(ctx context.Context, studentID, schoolYear, semester string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment, notifications []models.Notification) error
	Decide(ctx context.Context, id string, status models.EnrollmentStatus, remarks *string, reviewedBy string, notif *models.Notification) error
}

type roleLister interface {
	ListActiveIDsByRole(ctx context.Context, role models.UserRole) ([]string, error)
}

// ApplyEnrollmentRequest is the student application payload.
type ApplyEnrollmentRequest struct {
	ProgramID  string `json:"program_id" form:"program_id" validate:"required,uuid4"`
	SectionID  string `json:"section_id" form:"section_id" validate:"required,uuid4"`
	SchoolYear string `json:"school_year" form:"school_year" validate:"required"`
	Semester   string `json:"semester" form:"semester" validate:"required,oneof=1st 2nd summer"`
}

// DecideEnrollmentRequest is the reviewer decision payload.
type DecideEnrollmentRequest struct {
	Action  string  `json:"action" form:"action" validate:"required"`
	Remarks *string `json:"remarks" form:"remarks" validate:"omitempty,max=500"`
}

// EnrollmentService manages term applications and their review.
type EnrollmentService struct {
	enrollments enrollmentRepository
	users       roleLister
	audits      auditWriter
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService instance.
func NewEnrollmentService(enrollments enrollmentRepository, users roleLister, audits auditWriter, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		enrollments: enrollments,
		users:       users,
		audits:      audits,
		validator:   validate,
		logger:      logger,
	}
}

// Apply files a pending enrollment for the student and notifies every
// active admin that a new application needs review.
func (s *EnrollmentService) Apply(ctx context.Context, studentID string, req ApplyEnrollmentRequest, meta RequestMeta) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	exists, err := s.enrollments.ExistsForTerm(ctx, studentID, req.SchoolYear, req.Semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an enrollment already exists for this term")
	}

	enrollment := &models.Enrollment{
		StudentID:  studentID,
		ProgramID:  req.ProgramID,
		SectionID:  req.SectionID,
		SchoolYear: req.SchoolYear,
		Semester:   req.Semester,
		Status:     models.EnrollmentStatusPending,
	}

	adminIDs, err := s.users.ListActiveIDsByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve reviewers")
	}
	notifications := make([]models.Notification, 0, len(adminIDs))
	for _, id := range adminIDs {
		notifications = append(notifications, models.Notification{
			UserID:  id,
			Title:   "New enrollment application",
			Message: fmt.Sprintf("A new enrollment for %s %s semester is awaiting review.", req.SchoolYear, req.Semester),
			Type:    models.NotificationTypeEnrollment,
		})
	}

	if err := s.enrollments.Create(ctx, enrollment, notifications); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "an enrollment already exists for this term")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	return enrollment, nil
}

// List returns enrollments matching the filter.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	items, total, err := s.enrollments.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return items, total, nil
}

// Get loads a single enrollment. Students may only read their own.
func (s *EnrollmentService) Get(ctx context.Context, id string, principal models.Principal) (*models.EnrollmentDetail, error) {
	detail, err := s.enrollments.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if principal.Role == models.RoleStudent && detail.StudentID != principal.UserID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	return detail, nil
}

// Decide applies an approve or reject decision to a pending enrollment.
// The status write and the student notification commit in one transaction.
func (s *EnrollmentService) Decide(ctx context.Context, id string, reviewerID string, req DecideEnrollmentRequest, meta RequestMeta) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}
	action, ok := models.ParseDecisionAction(req.Action)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "action must be approve or reject")
	}

	detail, err := s.enrollments.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if detail.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment has already been decided")
	}

	status := models.EnrollmentStatusApproved
	verdict := "approved"
	if action == models.ActionReject {
		status = models.EnrollmentStatusRejected
		verdict = "rejected"
	}

	notif := &models.Notification{
		UserID:  detail.StudentID,
		Title:   "Enrollment " + verdict,
		Message: fmt.Sprintf("Your enrollment for %s %s semester has been %s.", detail.SchoolYear, detail.Semester, verdict),
		Type:    models.NotificationTypeEnrollment,
	}
	if err := s.enrollments.Decide(ctx, id, status, req.Remarks, reviewerID, notif); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record decision")
	}

	s.audit(ctx, reviewerID, models.AuditActionEnrollDecision, "enrollment", fmt.Sprintf("enrollment %s %s", id, verdict), meta)

	updated, err := s.enrollments.FindDetailByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload enrollment")
	}
	return updated, nil
}

func (s *EnrollmentService) audit(ctx context.Context, userID string, action, module, description string, meta RequestMeta) {
	writeAudit(ctx, s.audits, s.logger, &userID, action, module, description, meta)
}
