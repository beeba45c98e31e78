package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mgcampos/campus-portal-api/internal/models"
	appErrors "github.com/mgcampos/campus-portal-api/pkg/errors"
	"github.com/mgcampos/campus-portal-api/pkg/storage"
)

type documentRepository interface {
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error)
	FindByID(ctx context.Context, id string) (*models.Document, error)
	Create(ctx context.Context, document *models.Document) error
	Verify(ctx context.Context, id string, status models.DocumentStatus, remarks *string, verifiedBy string, notif *models.Notification) error
}

type urlSigner interface {
	Generate(relPath string) (string, time.Time, error)
	Parse(token string) (string, error)
}

// UploadDocumentRequest carries the metadata fields of a document upload.
type UploadDocumentRequest struct {
	DocType     string `form:"doc_type" json:"doc_type" validate:"required,max=64"`
	DisplayName string `form:"display_name" json:"display_name" validate:"required,max=255"`
}

// VerifyDocumentRequest is the registrar review payload.
type VerifyDocumentRequest struct {
	Action  string  `json:"action" form:"action" validate:"required"`
	Remarks *string `json:"remarks" form:"remarks" validate:"omitempty,max=500"`
}

// DocumentConfig defines upload constraints for the document module.
type DocumentConfig struct {
	MaxFileSize int64
}

// DocumentService manages uploaded credentials and their verification.
type DocumentService struct {
	documents documentRepository
	files     *storage.LocalStorage
	signer    urlSigner
	audits    auditWriter
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    DocumentConfig
}

// NewDocumentService constructs a DocumentService instance.
func NewDocumentService(documents documentRepository, files *storage.LocalStorage, signer urlSigner, audits auditWriter, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config DocumentConfig) *DocumentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = 10 << 20
	}
	return &DocumentService{
		documents: documents,
		files:     files,
		signer:    signer,
		audits:    audits,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    config,
	}
}

// Upload stores the file on disk first and then records the row. If the
// database insert fails the stored file is removed so no orphan remains.
func (s *DocumentService) Upload(ctx context.Context, studentID string, req UploadDocumentRequest, fh *multipart.FileHeader) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document payload")
	}
	if fh == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a file is required")
	}

	rel, err := storage.SaveUpload(s.files, fh, storage.UploadKindDocument, "documents/"+studentID, s.config.MaxFileSize)
	if err != nil {
		var tooLarge *storage.ErrFileTooLarge
		var badExt *storage.ErrBadExtension
		if errors.As(err, &tooLarge) || errors.As(err, &badExt) {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}

	document := &models.Document{
		StudentID:   studentID,
		DocType:     req.DocType,
		DisplayName: req.DisplayName,
		FilePath:    rel,
		Status:      models.DocumentStatusPending,
	}
	if err := s.documents.Create(ctx, document); err != nil {
		if delErr := s.files.Delete(rel); delErr != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("path", rel), zap.Error(delErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record document")
	}
	s.metrics.RecordUpload(fh.Size)
	return document, nil
}

// List returns documents matching the filter.
func (s *DocumentService) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error) {
	items, total, err := s.documents.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return items, total, nil
}

// Get loads a single document. Students may only read their own.
func (s *DocumentService) Get(ctx context.Context, id string, principal models.Principal) (*models.Document, error) {
	document, err := s.documents.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	if principal.Role == models.RoleStudent && document.StudentID != principal.UserID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
	}
	return document, nil
}

// DownloadURL issues a short-lived signed token for the document file.
func (s *DocumentService) DownloadURL(ctx context.Context, id string, principal models.Principal) (string, time.Time, error) {
	document, err := s.Get(ctx, id, principal)
	if err != nil {
		return "", time.Time{}, err
	}
	token, expires, err := s.signer.Generate(document.FilePath)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download")
	}
	return token, expires, nil
}

// ResolveDownload validates a signed token and opens the underlying file.
func (s *DocumentService) ResolveDownload(token string) (string, error) {
	rel, err := s.signer.Parse(token)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrForbidden, "download link is invalid or expired")
	}
	return s.files.Path(rel), nil
}

// Verify applies a verify or reject review to a document and notifies the
// student in the same transaction. The operation is last-write-wins; a
// document may be re-reviewed.
func (s *DocumentService) Verify(ctx context.Context, id string, reviewerID string, req VerifyDocumentRequest, meta RequestMeta) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}
	action, ok := models.ParseVerifyAction(req.Action)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "action must be verify or reject")
	}

	document, err := s.documents.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}

	status := models.DocumentStatusVerified
	verdict := "verified"
	if action == models.ActionReject {
		status = models.DocumentStatusRejected
		verdict = "rejected"
	}

	notif := &models.Notification{
		UserID:  document.StudentID,
		Title:   "Document " + verdict,
		Message: fmt.Sprintf("Your document %q has been %s.", document.DisplayName, verdict),
		Type:    models.NotificationTypeDocument,
	}
	if err := s.documents.Verify(ctx, id, status, req.Remarks, reviewerID, notif); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record review")
	}

	writeAudit(ctx, s.audits, s.logger, &reviewerID, models.AuditActionDocumentDecision, "documents", fmt.Sprintf("document %s %s", id, verdict), meta)

	updated, err := s.documents.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload document")
	}
	return updated, nil
}
