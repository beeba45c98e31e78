package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mgcampos/campus-portal-api/internal/middleware"
	"github.com/mgcampos/campus-portal-api/internal/models"
	"github.com/mgcampos/campus-portal-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth          *AuthHandler
	Enrollments   *EnrollmentHandler
	Documents     *DocumentHandler
	Grades        *GradeHandler
	Attendance    *AttendanceHandler
	LMS           *LMSHandler
	Notifications *NotificationHandler
	Audits        *AuditHandler
	Exports       *ExportHandler
}

// RegisterRoutes mounts the versioned API surface. Role middleware narrows
// each group; permission middleware guards the individual privileged
// operations inside it.
func RegisterRoutes(r *gin.Engine, h Handlers, guard *middleware.AuthGuard, metrics *service.MetricsService) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/verify-otp", h.Auth.VerifyOTP)
		auth.POST("/resend-otp", h.Auth.ResendOTP)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", guard.RequireAuth(), h.Auth.Logout)
		auth.GET("/me", guard.RequireAuth(), h.Auth.Me)
	}

	// Signed token downloads carry their own authorization.
	v1.GET("/downloads", h.Documents.Download)

	authed := v1.Group("")
	authed.Use(guard.RequireAuth())

	enrollments := authed.Group("/enrollments")
	{
		enrollments.POST("", guard.RequireRoles(models.RoleStudent), h.Enrollments.Apply)
		enrollments.GET("", h.Enrollments.List)
		enrollments.GET("/:id", h.Enrollments.Get)
		enrollments.POST("/:id/decision",
			guard.RequireRoles(models.RoleAdmin),
			guard.RequirePermission(models.PermApproveEnrollment),
			h.Enrollments.Decide)
	}

	documents := authed.Group("/documents")
	{
		documents.POST("", guard.RequireRoles(models.RoleStudent), h.Documents.Upload)
		documents.GET("", h.Documents.List)
		documents.GET("/:id", h.Documents.Get)
		documents.GET("/:id/download-url", h.Documents.DownloadURL)
		documents.POST("/:id/verify",
			guard.RequireRoles(models.RoleAdmin),
			guard.RequirePermission(models.PermVerifyDocuments),
			h.Documents.Verify)
	}

	grades := authed.Group("/grades")
	{
		grades.POST("",
			guard.RequireRoles(models.RoleFaculty),
			guard.RequirePermission(models.PermEncodeGrades),
			h.Grades.Encode)
		grades.GET("", h.Grades.List)
		grades.GET("/report", h.Grades.Report)
	}

	attendance := authed.Group("/attendance")
	{
		attendance.POST("",
			guard.RequireRoles(models.RoleFaculty, models.RoleAdmin),
			guard.RequirePermission(models.PermRecordAttendance),
			h.Attendance.Mark)
		attendance.POST("/sheet",
			guard.RequireRoles(models.RoleFaculty, models.RoleAdmin),
			guard.RequirePermission(models.PermRecordAttendance),
			h.Attendance.MarkSheet)
		attendance.GET("", h.Attendance.List)
		attendance.GET("/sheet",
			guard.RequireRoles(models.RoleFaculty, models.RoleAdmin),
			h.Attendance.Sheet)
	}

	lms := authed.Group("/lms")
	{
		lms.GET("/modules", h.LMS.ListModules)
		lms.POST("/modules",
			guard.RequireRoles(models.RoleFaculty),
			guard.RequirePermission(models.PermManageLMS),
			h.LMS.CreateModule)
		lms.PUT("/modules/:id",
			guard.RequireRoles(models.RoleFaculty),
			guard.RequirePermission(models.PermManageLMS),
			h.LMS.UpdateModule)
		lms.DELETE("/modules/:id",
			guard.RequireRoles(models.RoleFaculty),
			guard.RequirePermission(models.PermManageLMS),
			h.LMS.DeleteModule)
		lms.GET("/modules/:id/lessons", h.LMS.ListLessons)
		lms.POST("/modules/:id/lessons",
			guard.RequireRoles(models.RoleFaculty),
			guard.RequirePermission(models.PermManageLMS),
			h.LMS.CreateLesson)
		lms.PUT("/lessons/:id",
			guard.RequireRoles(models.RoleFaculty),
			guard.RequirePermission(models.PermManageLMS),
			h.LMS.UpdateLesson)
		lms.DELETE("/lessons/:id",
			guard.RequireRoles(models.RoleFaculty),
			guard.RequirePermission(models.PermManageLMS),
			h.LMS.DeleteLesson)
		lms.POST("/lessons/:id/submissions", guard.RequireRoles(models.RoleStudent), h.LMS.Submit)
		lms.GET("/submissions", h.LMS.ListSubmissions)
		lms.POST("/submissions/:id/grade",
			guard.RequireRoles(models.RoleFaculty),
			guard.RequirePermission(models.PermGradeSubmissions),
			h.LMS.GradeSubmission)
	}

	notifications := authed.Group("/notifications")
	{
		notifications.GET("", h.Notifications.List)
		notifications.GET("/unread-count", h.Notifications.UnreadCount)
		notifications.POST("/:id/read", h.Notifications.MarkRead)
		notifications.POST("/read-all", h.Notifications.MarkAllRead)
	}

	authed.GET("/audit-logs",
		guard.RequireRoles(models.RoleAdmin),
		guard.RequirePermission(models.PermViewAuditLog),
		h.Audits.List)

	exports := authed.Group("/exports")
	{
		exports.GET("/report-card", h.Exports.ReportCard)
		exports.GET("/attendance-sheet",
			guard.RequireRoles(models.RoleFaculty, models.RoleAdmin),
			guard.RequirePermission(models.PermExportReports),
			h.Exports.AttendanceSheet)
	}
}
