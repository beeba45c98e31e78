package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/mgcampos/campus-portal-api/internal/models"
	"github.com/mgcampos/campus-portal-api/internal/service"
	"github.com/mgcampos/campus-portal-api/pkg/response"
)

// GradeHandler exposes grade encoding and viewing endpoints.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// Encode godoc
// @Summary Encode component grades for a student
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.EncodeGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Encode(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req service.EncodeGradeRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	grade, err := h.grades.Encode(c.Request.Context(), p.UserID, req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "grade saved", grade)
}

// List godoc
// @Summary List grades
// @Tags Grades
// @Produce json
// @Param subject_id query string false "Filter by subject"
// @Param section_id query string false "Filter by section"
// @Param school_year query string false "Filter by school year"
// @Param semester query string false "Filter by semester"
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var filter models.GradeFilter
	filter.SubjectID = c.Query("subject_id")
	filter.SectionID = c.Query("section_id")
	filter.SchoolYear = c.Query("school_year")
	filter.Semester = c.Query("semester")
	switch p.Role {
	case models.RoleStudent:
		filter.StudentID = p.UserID
	case models.RoleFaculty:
		filter.StudentID = c.Query("student_id")
		filter.FacultyID = p.UserID
	default:
		filter.StudentID = c.Query("student_id")
		filter.FacultyID = c.Query("faculty_id")
	}

	grades, err := h.grades.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "ok", grades)
}

// Report godoc
// @Summary A student's per-subject grade lines for one term
// @Tags Grades
// @Produce json
// @Param school_year query string true "School year"
// @Param semester query string true "Semester"
// @Success 200 {object} response.Envelope
// @Router /grades/report [get]
func (h *GradeHandler) Report(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	studentID := p.UserID
	if p.Role != models.RoleStudent {
		studentID = c.Query("student_id")
	}
	rows, err := h.grades.ReportRows(c.Request.Context(), studentID, c.Query("school_year"), c.Query("semester"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "ok", rows)
}
