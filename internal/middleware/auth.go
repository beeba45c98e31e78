package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mgcampos/campus-portal-api/internal/models"
	appErrors "github.com/mgcampos/campus-portal-api/pkg/errors"
	"github.com/mgcampos/campus-portal-api/pkg/response"
	"github.com/mgcampos/campus-portal-api/pkg/session"
)

const (
	ctxKeySession   = "auth.session"
	ctxKeyPrincipal = "auth.principal"
)

type sessionReader interface {
	Get(ctx context.Context, id string) (*session.Session, error)
	SavePermissions(ctx context.Context, id string, keys []string) error
	Destroy(ctx context.Context, id string) error
}

type accountReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type permissionReader interface {
	KeysForRole(ctx context.Context, role models.UserRole) ([]string, error)
}

type sessionMetrics interface {
	RecordSessionLookup(outcome string)
}

// AuthConfig carries the pieces the session gate needs.
type AuthConfig struct {
	CookieName string
	LoginURL   string
}

// AuthGuard resolves the session cookie into a request principal and
// enforces role and permission requirements on routes.
type AuthGuard struct {
	sessions    sessionReader
	users       accountReader
	permissions permissionReader
	metrics     sessionMetrics
	logger      *zap.Logger
	config      AuthConfig
}

// NewAuthGuard constructs the middleware set.
func NewAuthGuard(sessions sessionReader, users accountReader, permissions permissionReader, metrics sessionMetrics, logger *zap.Logger, config AuthConfig) *AuthGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.CookieName == "" {
		config.CookieName = "portal_session"
	}
	if config.LoginURL == "" {
		config.LoginURL = "/login"
	}
	return &AuthGuard{
		sessions:    sessions,
		users:       users,
		permissions: permissions,
		metrics:     metrics,
		logger:      logger,
		config:      config,
	}
}

// RequireAuth blocks requests without a live session. The account row is
// re-read on every request so a disabled account loses access immediately,
// not at session expiry.
func (g *AuthGuard) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(g.config.CookieName)
		if err != nil || cookie == "" {
			g.reject(c, appErrors.Clone(appErrors.ErrUnauthenticated, "login required"))
			return
		}

		sess, err := g.sessions.Get(c.Request.Context(), cookie)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				g.record("miss")
				g.clearCookie(c)
				g.reject(c, appErrors.Clone(appErrors.ErrSessionExpired, "session expired, please log in again"))
				return
			}
			g.record("error")
			g.logger.Error("session lookup failed", zap.Error(err))
			g.reject(c, appErrors.Clone(appErrors.ErrInternal, "unable to resolve session"))
			return
		}
		g.record("hit")

		user, err := g.users.FindByID(c.Request.Context(), sess.Principal.UserID)
		if err != nil || user.Status != models.UserStatusActive || !user.IsVerified {
			if destroyErr := g.sessions.Destroy(c.Request.Context(), sess.ID); destroyErr != nil {
				g.logger.Warn("failed to destroy stale session", zap.Error(destroyErr))
			}
			g.clearCookie(c)
			g.reject(c, appErrors.Clone(appErrors.ErrSessionExpired, "session expired, please log in again"))
			return
		}

		c.Set(ctxKeySession, sess)
		c.Set(ctxKeyPrincipal, sess.Principal)
		c.Next()
	}
}

// RequireRoles blocks principals whose role is not in the allow list.
// Must run after RequireAuth.
func (g *AuthGuard) RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			g.reject(c, appErrors.Clone(appErrors.ErrUnauthenticated, "login required"))
			return
		}
		if _, ok := allowed[principal.Role]; !ok {
			g.reject(c, appErrors.Clone(appErrors.ErrForbidden, "your role cannot access this resource"))
			return
		}
		c.Next()
	}
}

// RequirePermission blocks principals lacking the permission key. The role's
// key set is loaded once per session and cached on the session record.
func (g *AuthGuard) RequirePermission(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := SessionFrom(c)
		if !ok {
			g.reject(c, appErrors.Clone(appErrors.ErrUnauthenticated, "login required"))
			return
		}

		if !sess.PermsLoaded {
			keys, err := g.permissions.KeysForRole(c.Request.Context(), sess.Principal.Role)
			if err != nil {
				g.logger.Error("failed to load role permissions", zap.Error(err))
				g.reject(c, appErrors.Clone(appErrors.ErrInternal, "unable to resolve permissions"))
				return
			}
			if err := g.sessions.SavePermissions(c.Request.Context(), sess.ID, keys); err != nil {
				g.logger.Warn("failed to cache session permissions", zap.Error(err))
			}
			sess.Permissions = keys
			sess.PermsLoaded = true
			c.Set(ctxKeySession, sess)
		}

		if !sess.PermissionSet().Has(key) {
			g.reject(c, appErrors.Clone(appErrors.ErrPermissionDenied, "you lack permission for this action"))
			return
		}
		c.Next()
	}
}

// reject answers API clients with the structured error and browser
// navigations with a redirect to the login page.
func (g *AuthGuard) reject(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if !response.WantsJSON(c) && (appErr.Status == http.StatusUnauthorized || appErr.Status == http.StatusForbidden) {
		c.Redirect(http.StatusFound, g.config.LoginURL)
		c.Abort()
		return
	}
	response.Error(c, err)
	c.Abort()
}

func (g *AuthGuard) clearCookie(c *gin.Context) {
	c.SetCookie(g.config.CookieName, "", -1, "/", "", false, true)
}

func (g *AuthGuard) record(outcome string) {
	if g.metrics != nil {
		g.metrics.RecordSessionLookup(outcome)
	}
}

// SetPrincipal stores the principal on the context the way RequireAuth
// does, letting handlers be mounted without a live session store.
func SetPrincipal(c *gin.Context, p models.Principal) {
	c.Set(ctxKeyPrincipal, p)
}

// PrincipalFrom extracts the authenticated principal set by RequireAuth.
func PrincipalFrom(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(ctxKeyPrincipal)
	if !ok {
		return models.Principal{}, false
	}
	principal, ok := v.(models.Principal)
	return principal, ok
}

// SessionFrom extracts the live session set by RequireAuth.
func SessionFrom(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(ctxKeySession)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok
}
