package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mgcampos/campus-portal-api/internal/models"
	"github.com/mgcampos/campus-portal-api/internal/service"
	"github.com/mgcampos/campus-portal-api/pkg/response"
)

// AuditHandler exposes the admin audit trail view.
type AuditHandler struct {
	audits *service.AuditService
}

// NewAuditHandler constructs AuditHandler.
func NewAuditHandler(audits *service.AuditService) *AuditHandler {
	return &AuditHandler{audits: audits}
}

// List godoc
// @Summary List audit log entries
// @Tags Audit
// @Produce json
// @Param user_id query string false "Filter by actor"
// @Param action query string false "Filter by action"
// @Param module query string false "Filter by module"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	var filter models.AuditFilter
	filter.UserID = c.Query("user_id")
	filter.Action = c.Query("action")
	filter.Module = c.Query("module")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}

	items, total, err := h.audits.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total})
}
