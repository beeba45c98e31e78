package handler

import (
	"mime/multipart"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mgcampos/campus-portal-api/internal/models"
	"github.com/mgcampos/campus-portal-api/internal/service"
	appErrors "github.com/mgcampos/campus-portal-api/pkg/errors"
	"github.com/mgcampos/campus-portal-api/pkg/response"
)

// LMSHandler exposes course module, lesson, and submission endpoints.
type LMSHandler struct {
	lms *service.LMSService
}

// NewLMSHandler constructs LMSHandler.
func NewLMSHandler(lms *service.LMSService) *LMSHandler {
	return &LMSHandler{lms: lms}
}

// ListModules godoc
// @Summary List course modules visible to the caller
// @Tags LMS
// @Produce json
// @Param subject_id query string false "Filter by subject"
// @Success 200 {object} response.Envelope
// @Router /lms/modules [get]
func (h *LMSHandler) ListModules(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	modules, err := h.lms.ListModules(c.Request.Context(), c.Query("subject_id"), p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "ok", modules)
}

// CreateModule godoc
// @Summary Create a course module
// @Tags LMS
// @Accept json
// @Produce json
// @Param payload body service.CourseModuleRequest true "Module payload"
// @Success 201 {object} response.Envelope
// @Router /lms/modules [post]
func (h *LMSHandler) CreateModule(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req service.CourseModuleRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	module, err := h.lms.CreateModule(c.Request.Context(), p.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "module created", module)
}

// UpdateModule godoc
// @Summary Update a course module the caller owns
// @Tags LMS
// @Accept json
// @Produce json
// @Param id path string true "Module ID"
// @Param payload body service.CourseModuleRequest true "Module payload"
// @Success 200 {object} response.Envelope
// @Router /lms/modules/{id} [put]
func (h *LMSHandler) UpdateModule(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req service.CourseModuleRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	module, err := h.lms.UpdateModule(c.Request.Context(), c.Param("id"), p.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "module updated", module)
}

// DeleteModule godoc
// @Summary Delete a course module the caller owns
// @Tags LMS
// @Produce json
// @Param id path string true "Module ID"
// @Success 200 {object} response.Envelope
// @Router /lms/modules/{id} [delete]
func (h *LMSHandler) DeleteModule(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.lms.DeleteModule(c.Request.Context(), c.Param("id"), p.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "module deleted", nil)
}

// ListLessons godoc
// @Summary List lessons of a module
// @Tags LMS
// @Produce json
// @Param id path string true "Module ID"
// @Success 200 {object} response.Envelope
// @Router /lms/modules/{id}/lessons [get]
func (h *LMSHandler) ListLessons(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	lessons, err := h.lms.ListLessons(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "ok", lessons)
}

// CreateLesson godoc
// @Summary Add a lesson to a module the caller owns
// @Tags LMS
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Module ID"
// @Param title formData string true "Lesson title"
// @Param content formData string false "Lesson content"
// @Param attachment_file formData file false "Attachment"
// @Success 201 {object} response.Envelope
// @Router /lms/modules/{id}/lessons [post]
func (h *LMSHandler) CreateLesson(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req service.LessonRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload"))
		return
	}
	lesson, err := h.lms.CreateLesson(c.Request.Context(), c.Param("id"), p.UserID, req, optionalFile(c, "attachment_file"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "lesson created", lesson)
}

// UpdateLesson godoc
// @Summary Update a lesson in a module the caller owns
// @Tags LMS
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Router /lms/lessons/{id} [put]
func (h *LMSHandler) UpdateLesson(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req service.LessonRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload"))
		return
	}
	lesson, err := h.lms.UpdateLesson(c.Request.Context(), c.Param("id"), p.UserID, req, optionalFile(c, "attachment_file"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "lesson updated", lesson)
}

// DeleteLesson godoc
// @Summary Delete a lesson in a module the caller owns
// @Tags LMS
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Router /lms/lessons/{id} [delete]
func (h *LMSHandler) DeleteLesson(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.lms.DeleteLesson(c.Request.Context(), c.Param("id"), p.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "lesson deleted", nil)
}

// Submit godoc
// @Summary Submit or resubmit work for a lesson
// @Tags LMS
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Lesson ID"
// @Param submission_text formData string false "Answer text"
// @Param attachment_file formData file false "Attachment"
// @Success 201 {object} response.Envelope
// @Router /lms/lessons/{id}/submissions [post]
func (h *LMSHandler) Submit(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req service.SubmitRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload"))
		return
	}
	submission, err := h.lms.Submit(c.Request.Context(), c.Param("id"), p.UserID, req, optionalFile(c, "attachment_file"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "submission received", submission)
}

// ListSubmissions godoc
// @Summary List submissions
// @Tags LMS
// @Produce json
// @Param lesson_id query string false "Filter by lesson"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /lms/submissions [get]
func (h *LMSHandler) ListSubmissions(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var filter models.SubmissionFilter
	filter.LessonID = c.Query("lesson_id")
	filter.Status = models.SubmissionStatus(c.Query("status"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	items, total, err := h.lms.ListSubmissions(c.Request.Context(), filter, p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total})
}

// GradeSubmission godoc
// @Summary Score a submission on a lesson the caller owns
// @Tags LMS
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body service.GradeSubmissionRequest true "Grading payload"
// @Success 200 {object} response.Envelope
// @Router /lms/submissions/{id}/grade [post]
func (h *LMSHandler) GradeSubmission(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req service.GradeSubmissionRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	submission, err := h.lms.GradeSubmission(c.Request.Context(), c.Param("id"), p.UserID, req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "submission graded", submission)
}

// optionalFile returns the uploaded file header or nil when absent.
func optionalFile(c *gin.Context, field string) *multipart.FileHeader {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return fh
}
