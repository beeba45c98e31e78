package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/mgcampos/campus-portal-api/pkg/errors"
)

// bindBody decodes the request body into out. JSON bodies are preferred;
// form-encoded bodies are accepted so plain browser forms keep working.
func bindBody(c *gin.Context, out interface{}) error {
	contentType := c.ContentType()
	if strings.Contains(contentType, "json") || contentType == "" {
		if err := c.ShouldBindJSON(out); err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body")
		}
		return nil
	}
	if err := c.ShouldBind(out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body")
	}
	return nil
}
