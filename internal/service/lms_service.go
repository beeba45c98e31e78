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

type moduleRepository interface {
	List(ctx context.Context, subjectID, facultyID string, includeUnpublished bool) ([]models.CourseModule, error)
	FindByID(ctx context.Context, id string) (*models.CourseModule, error)
	Create(ctx context.Context, module *models.CourseModule) error
	Update(ctx context.Context, module *models.CourseModule) error
	Delete(ctx context.Context, id string) error
}

type lessonRepository interface {
	ListByModule(ctx context.Context, moduleID string) ([]models.Lesson, error)
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id string) error
}

type submissionRepository interface {
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.SubmissionDetail, int, error)
	Find(ctx context.Context, lessonID, studentID string) (*models.Submission, error)
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	Upsert(ctx context.Context, submission *models.Submission, notif *models.Notification) error
	Grade(ctx context.Context, id string, score float64, feedback *string, gradedBy string, notif *models.Notification) error
}

// CourseModuleRequest is the faculty module create/update payload.
type CourseModuleRequest struct {
	SubjectID   string  `json:"subject_id" form:"subject_id" validate:"required,uuid4"`
	Title       string  `json:"title" form:"title" validate:"required,max=255"`
	Description *string `json:"description" form:"description" validate:"omitempty,max=2000"`
	Published   bool    `json:"published" form:"published"`
}

// LessonRequest is the faculty lesson create/update payload.
type LessonRequest struct {
	Title   string     `form:"title" json:"title" validate:"required,max=255"`
	Content *string    `form:"content" json:"content" validate:"omitempty"`
	DueDate *time.Time `form:"due_date" json:"due_date" validate:"omitempty"`
}

// SubmitRequest is the student lesson submission payload.
type SubmitRequest struct {
	SubmissionText *string `form:"submission_text" json:"submission_text" validate:"omitempty"`
}

// GradeSubmissionRequest is the faculty grading payload.
type GradeSubmissionRequest struct {
	Score    float64 `json:"score" form:"score" validate:"gte=0,lte=100"`
	Feedback *string `json:"feedback" form:"feedback" validate:"omitempty,max=2000"`
}

// LMSConfig defines upload constraints for LMS attachments.
type LMSConfig struct {
	MaxFileSize int64
}

// LMSService manages course modules, lessons, and student submissions.
type LMSService struct {
	modules     moduleRepository
	lessons     lessonRepository
	submissions submissionRepository
	files       *storage.LocalStorage
	audits      auditWriter
	validator   *validator.Validate
	logger      *zap.Logger
	config      LMSConfig
	now         func() time.Time
}

// NewLMSService constructs an LMSService instance.
func NewLMSService(modules moduleRepository, lessons lessonRepository, submissions submissionRepository, files *storage.LocalStorage, audits auditWriter, validate *validator.Validate, logger *zap.Logger, config LMSConfig) *LMSService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = 10 << 20
	}
	return &LMSService{
		modules:     modules,
		lessons:     lessons,
		submissions: submissions,
		files:       files,
		audits:      audits,
		validator:   validate,
		logger:      logger,
		config:      config,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ListModules returns modules visible to the principal. Students only see
// published content; faculty see their own unpublished drafts as well.
func (s *LMSService) ListModules(ctx context.Context, subjectID string, principal models.Principal) ([]models.CourseModule, error) {
	facultyID := ""
	includeUnpublished := false
	switch principal.Role {
	case models.RoleFaculty:
		facultyID = principal.UserID
		includeUnpublished = true
	case models.RoleAdmin:
		includeUnpublished = true
	}
	modules, err := s.modules.List(ctx, subjectID, facultyID, includeUnpublished)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list modules")
	}
	return modules, nil
}

// CreateModule creates a module owned by the calling faculty member.
func (s *LMSService) CreateModule(ctx context.Context, facultyID string, req CourseModuleRequest) (*models.CourseModule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid module payload")
	}
	module := &models.CourseModule{
		SubjectID:   req.SubjectID,
		FacultyID:   facultyID,
		Title:       req.Title,
		Description: req.Description,
		Published:   req.Published,
	}
	if err := s.modules.Create(ctx, module); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create module")
	}
	return module, nil
}

// UpdateModule applies changes to a module the faculty member owns.
func (s *LMSService) UpdateModule(ctx context.Context, id, facultyID string, req CourseModuleRequest) (*models.CourseModule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid module payload")
	}
	module, err := s.ownedModule(ctx, id, facultyID)
	if err != nil {
		return nil, err
	}
	module.SubjectID = req.SubjectID
	module.Title = req.Title
	module.Description = req.Description
	module.Published = req.Published
	if err := s.modules.Update(ctx, module); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update module")
	}
	return module, nil
}

// DeleteModule removes a module the faculty member owns.
func (s *LMSService) DeleteModule(ctx context.Context, id, facultyID string) error {
	if _, err := s.ownedModule(ctx, id, facultyID); err != nil {
		return err
	}
	if err := s.modules.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete module")
	}
	return nil
}

// ListLessons returns the lessons of a module the principal may see.
func (s *LMSService) ListLessons(ctx context.Context, moduleID string, principal models.Principal) ([]models.Lesson, error) {
	module, err := s.modules.FindByID(ctx, moduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}
	if !module.Published && principal.Role == models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
	}
	lessons, err := s.lessons.ListByModule(ctx, moduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}
	return lessons, nil
}

// CreateLesson adds a lesson to a module the faculty member owns. An
// optional attachment is stored first; the row insert failing removes it.
func (s *LMSService) CreateLesson(ctx context.Context, moduleID, facultyID string, req LessonRequest, fh *multipart.FileHeader) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}
	if _, err := s.ownedModule(ctx, moduleID, facultyID); err != nil {
		return nil, err
	}

	lesson := &models.Lesson{
		ModuleID: moduleID,
		Title:    req.Title,
		Content:  req.Content,
		DueDate:  req.DueDate,
	}
	if fh != nil {
		rel, err := s.saveAttachment(fh, "lessons/"+moduleID)
		if err != nil {
			return nil, err
		}
		lesson.AttachmentPath = &rel
	}
	if err := s.lessons.Create(ctx, lesson); err != nil {
		s.discardAttachment(lesson.AttachmentPath)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lesson")
	}
	return lesson, nil
}

// UpdateLesson applies changes to a lesson in a module the faculty owns.
func (s *LMSService) UpdateLesson(ctx context.Context, id, facultyID string, req LessonRequest, fh *multipart.FileHeader) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}
	lesson, err := s.ownedLesson(ctx, id, facultyID)
	if err != nil {
		return nil, err
	}

	lesson.Title = req.Title
	lesson.Content = req.Content
	lesson.DueDate = req.DueDate
	if fh != nil {
		rel, err := s.saveAttachment(fh, "lessons/"+lesson.ModuleID)
		if err != nil {
			return nil, err
		}
		old := lesson.AttachmentPath
		lesson.AttachmentPath = &rel
		if err := s.lessons.Update(ctx, lesson); err != nil {
			s.discardAttachment(&rel)
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lesson")
		}
		s.discardAttachment(old)
		return lesson, nil
	}
	if err := s.lessons.Update(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lesson")
	}
	return lesson, nil
}

// DeleteLesson removes a lesson from a module the faculty owns.
func (s *LMSService) DeleteLesson(ctx context.Context, id, facultyID string) error {
	lesson, err := s.ownedLesson(ctx, id, facultyID)
	if err != nil {
		return err
	}
	if err := s.lessons.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lesson")
	}
	s.discardAttachment(lesson.AttachmentPath)
	return nil
}

// Submit records a student's answer to a lesson. Resubmission replaces the
// prior answer; past-due submissions are tagged late regardless. The owning
// faculty member is notified in the same transaction.
func (s *LMSService) Submit(ctx context.Context, lessonID, studentID string, req SubmitRequest, fh *multipart.FileHeader) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}
	if (req.SubmissionText == nil || *req.SubmissionText == "") && fh == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a submission needs text or an attachment")
	}

	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}
	module, err := s.modules.FindByID(ctx, lesson.ModuleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}
	if !module.Published {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
	}

	hadPrior := true
	if _, err := s.submissions.Find(ctx, lessonID, studentID); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check prior submission")
		}
		hadPrior = false
	}

	submission := &models.Submission{
		LessonID:       lessonID,
		StudentID:      studentID,
		SubmissionText: req.SubmissionText,
		Status:         models.ClassifySubmission(s.now(), lesson.DueDate, hadPrior),
	}
	if fh != nil {
		rel, err := s.saveAttachment(fh, "submissions/"+lessonID)
		if err != nil {
			return nil, err
		}
		submission.AttachmentPath = &rel
	}

	notif := &models.Notification{
		UserID:  module.FacultyID,
		Title:   "New submission",
		Message: fmt.Sprintf("A student submitted work for lesson %q.", lesson.Title),
		Type:    models.NotificationTypeLMS,
	}
	if err := s.submissions.Upsert(ctx, submission, notif); err != nil {
		s.discardAttachment(submission.AttachmentPath)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save submission")
	}
	return submission, nil
}

// ListSubmissions returns submissions for a lesson in a module the caller
// owns, or a student's own submissions when filter.StudentID is fixed.
func (s *LMSService) ListSubmissions(ctx context.Context, filter models.SubmissionFilter, principal models.Principal) ([]models.SubmissionDetail, int, error) {
	if principal.Role == models.RoleStudent {
		filter.StudentID = principal.UserID
	} else if filter.LessonID != "" && principal.Role == models.RoleFaculty {
		if _, err := s.ownedLesson(ctx, filter.LessonID, principal.UserID); err != nil {
			return nil, 0, err
		}
	}
	items, total, err := s.submissions.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return items, total, nil
}

// GradeSubmission scores a submission on a lesson the faculty member owns
// and notifies the student in the same transaction.
func (s *LMSService) GradeSubmission(ctx context.Context, id, facultyID string, req GradeSubmissionRequest, meta RequestMeta) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grading payload")
	}

	submission, err := s.submissions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	lesson, err := s.ownedLesson(ctx, submission.LessonID, facultyID)
	if err != nil {
		return nil, err
	}

	notif := &models.Notification{
		UserID:  submission.StudentID,
		Title:   "Submission graded",
		Message: fmt.Sprintf("Your submission for %q has been graded.", lesson.Title),
		Type:    models.NotificationTypeLMS,
	}
	if err := s.submissions.Grade(ctx, id, req.Score, req.Feedback, facultyID, notif); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to grade submission")
	}

	writeAudit(ctx, s.audits, s.logger, &facultyID, models.AuditActionSubmissionGrade, "lms",
		fmt.Sprintf("submission %s graded %.2f", id, req.Score), meta)

	updated, err := s.submissions.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload submission")
	}
	return updated, nil
}

func (s *LMSService) ownedModule(ctx context.Context, id, facultyID string) (*models.CourseModule, error) {
	module, err := s.modules.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}
	if module.FacultyID != facultyID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "module belongs to another faculty member")
	}
	return module, nil
}

func (s *LMSService) ownedLesson(ctx context.Context, id, facultyID string) (*models.Lesson, error) {
	lesson, err := s.lessons.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}
	if _, err := s.ownedModule(ctx, lesson.ModuleID, facultyID); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *LMSService) saveAttachment(fh *multipart.FileHeader, subdir string) (string, error) {
	rel, err := storage.SaveUpload(s.files, fh, storage.UploadKindAttachment, subdir, s.config.MaxFileSize)
	if err != nil {
		var tooLarge *storage.ErrFileTooLarge
		var badExt *storage.ErrBadExtension
		if errors.As(err, &tooLarge) || errors.As(err, &badExt) {
			return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attachment")
	}
	return rel, nil
}

func (s *LMSService) discardAttachment(rel *string) {
	if rel == nil || *rel == "" {
		return
	}
	if err := s.files.Delete(*rel); err != nil {
		s.logger.Warn("failed to remove attachment", zap.String("path", *rel), zap.Error(err))
	}
}
