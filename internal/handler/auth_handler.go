package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mgcampos/campus-portal-api/internal/middleware"
	"github.com/mgcampos/campus-portal-api/internal/service"
	"github.com/mgcampos/campus-portal-api/pkg/response"
)

// CookieConfig controls how the session cookie is issued.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler exposes registration, verification, and session endpoints.
type AuthHandler struct {
	auth   *service.AuthService
	cookie CookieConfig
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *service.AuthService, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "portal_session"
	}
	return &AuthHandler{auth: auth, cookie: cookie}
}

// Register godoc
// @Summary Register a new account
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body service.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	user, err := h.auth.Register(c.Request.Context(), req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "account created, check your email for the verification code", user)
}

// VerifyOTP godoc
// @Summary Verify the emailed one-time code
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body service.VerifyOTPRequest true "Verification payload"
// @Success 200 {object} response.Envelope
// @Router /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req service.VerifyOTPRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.auth.VerifyOTP(c.Request.Context(), req, requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "account verified, you can now log in", nil)
}

// ResendOTP godoc
// @Summary Resend the verification code
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/resend-otp [post]
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" form:"email"`
	}
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.auth.ResendOTP(c.Request.Context(), req.Email, requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "a new verification code has been sent", nil)
}

// Login godoc
// @Summary Log in and receive a session cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body service.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	presented, _ := c.Cookie(h.cookie.Name)
	result, err := h.auth.Login(c.Request.Context(), req, presented, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, result.Session.ID)
	response.OK(c, "logged in", result.User)
}

// Logout godoc
// @Summary Log out and destroy the session
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	sess, _ := middleware.SessionFrom(c)
	sessionID := ""
	if sess != nil {
		sessionID = sess.ID
	}
	if err := h.auth.Logout(c.Request.Context(), sessionID, p.UserID, requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	response.OK(c, "logged out", nil)
}

// setSessionCookie issues the session cookie without a Max-Age so the
// browser treats it as a session cookie; the store's idle TTL bounds
// the server-side record.
func (h *AuthHandler) setSessionCookie(c *gin.Context, sessionID string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, sessionID, 0, "/", "", h.cookie.Secure, true)
}

// Me godoc
// @Summary Return the authenticated principal
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	response.OK(c, "ok", p)
}
