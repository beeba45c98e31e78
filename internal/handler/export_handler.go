package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mgcampos/campus-portal-api/internal/models"
	"github.com/mgcampos/campus-portal-api/internal/service"
	appErrors "github.com/mgcampos/campus-portal-api/pkg/errors"
	"github.com/mgcampos/campus-portal-api/pkg/response"
)

// ExportHandler exposes document exports (report card PDF, attendance CSV).
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// ReportCard godoc
// @Summary Download a student term report card as PDF
// @Tags Exports
// @Produce application/pdf
// @Param school_year query string true "School year"
// @Param semester query string true "Semester"
// @Param student_id query string false "Student (staff only)"
// @Success 200 {file} binary
// @Router /exports/report-card [get]
func (h *ExportHandler) ReportCard(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	studentID := p.UserID
	if p.Role != models.RoleStudent {
		studentID = c.Query("student_id")
		if studentID == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student_id is required"))
			return
		}
	}

	data, err := h.exports.ReportCardPDF(c.Request.Context(), studentID, c.Query("school_year"), c.Query("semester"))
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("report-card-%s.pdf", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// AttendanceSheet godoc
// @Summary Download one section meeting as CSV
// @Tags Exports
// @Produce text/csv
// @Param subject_id query string true "Subject"
// @Param section_id query string true "Section"
// @Param date query string true "Date YYYY-MM-DD"
// @Success 200 {file} binary
// @Router /exports/attendance-sheet [get]
func (h *ExportHandler) AttendanceSheet(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD"))
		return
	}
	data, err := h.exports.AttendanceSheetCSV(c.Request.Context(), c.Query("subject_id"), c.Query("section_id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("attendance-%s.csv", date.Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}
