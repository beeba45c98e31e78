package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mgcampos/campus-portal-api/internal/models"
	"github.com/mgcampos/campus-portal-api/internal/service"
	"github.com/mgcampos/campus-portal-api/pkg/response"
)

// EnrollmentHandler exposes enrollment application and review endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Apply godoc
// @Summary File an enrollment application for a term
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.ApplyEnrollmentRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Apply(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req service.ApplyEnrollmentRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	enrollment, err := h.enrollments.Apply(c.Request.Context(), p.UserID, req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "enrollment application submitted", enrollment)
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Param school_year query string false "Filter by school year"
// @Param semester query string false "Filter by semester"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var filter models.EnrollmentFilter
	filter.SchoolYear = c.Query("school_year")
	filter.Semester = c.Query("semester")
	filter.Status = models.EnrollmentStatus(c.Query("status"))
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	// Students only ever see their own applications.
	if p.Role == models.RoleStudent {
		filter.StudentID = p.UserID
	} else {
		filter.StudentID = c.Query("student_id")
	}

	items, total, err := h.enrollments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total})
}

// Get godoc
// @Summary Load one enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	enrollment, err := h.enrollments.Get(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "ok", enrollment)
}

// Decide godoc
// @Summary Approve or reject a pending enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body service.DecideEnrollmentRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/decision [post]
func (h *EnrollmentHandler) Decide(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req service.DecideEnrollmentRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	enrollment, err := h.enrollments.Decide(c.Request.Context(), c.Param("id"), p.UserID, req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "decision recorded", enrollment)
}
