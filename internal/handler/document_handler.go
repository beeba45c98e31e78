package handler

import (
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mgcampos/campus-portal-api/internal/models"
	"github.com/mgcampos/campus-portal-api/internal/service"
	appErrors "github.com/mgcampos/campus-portal-api/pkg/errors"
	"github.com/mgcampos/campus-portal-api/pkg/response"
)

// DocumentHandler exposes document upload, download, and review endpoints.
type DocumentHandler struct {
	documents *service.DocumentService
}

// NewDocumentHandler constructs DocumentHandler.
func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Upload godoc
// @Summary Upload a credential document
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param doc_type formData string true "Document type"
// @Param display_name formData string true "Display name"
// @Param document_file formData file true "Document file"
// @Success 201 {object} response.Envelope
// @Router /documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req service.UploadDocumentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document payload"))
		return
	}
	fh, err := c.FormFile("document_file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "a file is required"))
		return
	}
	document, err := h.documents.Upload(c.Request.Context(), p.UserID, req, fh)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "document uploaded", document)
}

// List godoc
// @Summary List documents
// @Tags Documents
// @Produce json
// @Param status query string false "Filter by status"
// @Param doc_type query string false "Filter by type"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var filter models.DocumentFilter
	filter.Status = models.DocumentStatus(c.Query("status"))
	filter.DocType = c.Query("doc_type")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	if p.Role == models.RoleStudent {
		filter.StudentID = p.UserID
	} else {
		filter.StudentID = c.Query("student_id")
	}

	items, total, err := h.documents.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total})
}

// Get godoc
// @Summary Load one document
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	document, err := h.documents.Get(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "ok", document)
}

// DownloadURL godoc
// @Summary Issue a short-lived signed download link
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/download-url [get]
func (h *DocumentHandler) DownloadURL(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	token, expires, err := h.documents.DownloadURL(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "ok", gin.H{
		"url":        "/api/v1/downloads?token=" + token,
		"expires_at": expires.Format(time.RFC3339),
	})
}

// Download godoc
// @Summary Stream a file referenced by a signed token
// @Tags Documents
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /downloads [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	path, err := h.documents.ResolveDownload(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

// Verify godoc
// @Summary Verify or reject a document
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body service.VerifyDocumentRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/verify [post]
func (h *DocumentHandler) Verify(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req service.VerifyDocumentRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	document, err := h.documents.Verify(c.Request.Context(), c.Param("id"), p.UserID, req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "review recorded", document)
}
