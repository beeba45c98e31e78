package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mgcampos/campus-portal-api/internal/models"
	"github.com/mgcampos/campus-portal-api/internal/service"
	appErrors "github.com/mgcampos/campus-portal-api/pkg/errors"
	"github.com/mgcampos/campus-portal-api/pkg/response"
)

// AttendanceHandler exposes attendance recording and viewing endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Mark godoc
// @Summary Record one attendance entry
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.MarkAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req service.MarkAttendanceRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	record, err := h.attendance.Mark(c.Request.Context(), p.UserID, req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "attendance recorded", record)
}

// MarkSheet godoc
// @Summary Record a full section sheet for one date
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.MarkSheetRequest true "Sheet payload"
// @Success 200 {object} response.Envelope
// @Router /attendance/sheet [post]
func (h *AttendanceHandler) MarkSheet(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req service.MarkSheetRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	count, err := h.attendance.MarkSheet(c.Request.Context(), p.UserID, req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "attendance sheet recorded", gin.H{"recorded": count})
}

// Sheet godoc
// @Summary View the per-student marks for one section meeting
// @Tags Attendance
// @Produce json
// @Param subject_id query string true "Subject"
// @Param section_id query string true "Section"
// @Param date query string true "Date YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /attendance/sheet [get]
func (h *AttendanceHandler) Sheet(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD"))
		return
	}
	rows, err := h.attendance.SectionSheet(c.Request.Context(), c.Query("subject_id"), c.Query("section_id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "section sheet", rows)
}

// List godoc
// @Summary List attendance records
// @Tags Attendance
// @Produce json
// @Param subject_id query string false "Filter by subject"
// @Param section_id query string false "Filter by section"
// @Param from query string false "Start date YYYY-MM-DD"
// @Param to query string false "End date YYYY-MM-DD"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var filter models.AttendanceFilter
	filter.SubjectID = c.Query("subject_id")
	filter.SectionID = c.Query("section_id")
	if from, err := time.Parse("2006-01-02", c.Query("from")); err == nil {
		filter.DateFrom = &from
	}
	if to, err := time.Parse("2006-01-02", c.Query("to")); err == nil {
		filter.DateTo = &to
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}
	if p.Role == models.RoleStudent {
		filter.StudentID = p.UserID
	} else {
		filter.StudentID = c.Query("student_id")
	}

	items, total, err := h.attendance.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total})
}
