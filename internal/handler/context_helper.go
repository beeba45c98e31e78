package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/mgcampos/campus-portal-api/internal/middleware"
	"github.com/mgcampos/campus-portal-api/internal/models"
	"github.com/mgcampos/campus-portal-api/internal/service"
	appErrors "github.com/mgcampos/campus-portal-api/pkg/errors"
	"github.com/mgcampos/campus-portal-api/pkg/response"
)

// principal pulls the authenticated principal or aborts with 401. Routes
// behind RequireAuth always have one; the guard here covers miswiring.
func principal(c *gin.Context) (models.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthenticated, "login required"))
		c.Abort()
	}
	return p, ok
}

// requestMeta captures client metadata for audit rows.
func requestMeta(c *gin.Context) service.RequestMeta {
	return service.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
