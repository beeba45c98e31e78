package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/mgcampos/campus-portal-api/api/swagger"
	"github.com/mgcampos/campus-portal-api/internal/handler"
	"github.com/mgcampos/campus-portal-api/internal/middleware"
	"github.com/mgcampos/campus-portal-api/internal/repository"
	"github.com/mgcampos/campus-portal-api/internal/service"
	"github.com/mgcampos/campus-portal-api/pkg/cache"
	"github.com/mgcampos/campus-portal-api/pkg/config"
	"github.com/mgcampos/campus-portal-api/pkg/database"
	"github.com/mgcampos/campus-portal-api/pkg/logger"
	"github.com/mgcampos/campus-portal-api/pkg/mail"
	corsmiddleware "github.com/mgcampos/campus-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/mgcampos/campus-portal-api/pkg/middleware/requestid"
	"github.com/mgcampos/campus-portal-api/pkg/session"
	"github.com/mgcampos/campus-portal-api/pkg/storage"
)

// @title Campus Portal API
// @version 1.0.0
// @description Role-based school portal: enrollment, documents, grades, attendance, LMS
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	files, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}

	validate := validator.New()
	sessions := session.NewStore(redisClient, cfg.Session.IdleTTL)
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	var mailer mail.Mailer
	if cfg.Mail.Enabled && cfg.Mail.SendgridAPIKey != "" {
		mailer = mail.NewSendgridMailer(cfg.Mail.SendgridAPIKey, cfg.Mail.FromName, cfg.Mail.FromEmail)
	} else {
		mailer = mail.NewLogMailer(logr)
	}
	dispatcher := service.NewMailDispatcher(mailer, cfg.Mail.Workers, metrics, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	// Repositories
	users := repository.NewUserRepository(db)
	permissions := repository.NewPermissionRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	documents := repository.NewDocumentRepository(db)
	grades := repository.NewGradeRepository(db)
	attendance := repository.NewAttendanceRepository(db)
	modules := repository.NewModuleRepository(db)
	lessons := repository.NewLessonRepository(db)
	submissions := repository.NewSubmissionRepository(db)
	notifications := repository.NewNotificationRepository(db)
	audits := repository.NewAuditRepository(db)

	// Services
	authService := service.NewAuthService(users, sessions, notifications, audits, dispatcher, validate, logr, service.AuthConfig{OTPTTL: cfg.Session.OTPTTL})
	enrollmentService := service.NewEnrollmentService(enrollments, users, audits, validate, logr)
	documentService := service.NewDocumentService(documents, files, signer, audits, metrics, validate, logr, service.DocumentConfig{MaxFileSize: cfg.Uploads.MaxFileSize})
	gradeService := service.NewGradeService(grades, audits, validate, logr)
	attendanceService := service.NewAttendanceService(attendance, audits, validate, logr)
	lmsService := service.NewLMSService(modules, lessons, submissions, files, audits, validate, logr, service.LMSConfig{MaxFileSize: cfg.Uploads.MaxFileSize})
	notificationService := service.NewNotificationService(notifications, logr)
	auditService := service.NewAuditService(audits, logr)
	exportService := service.NewExportService(grades, attendance, users, logr, service.ExportConfig{SchoolName: "Campus Portal"})

	guard := middleware.NewAuthGuard(sessions, users, permissions, metrics, logr, middleware.AuthConfig{
		CookieName: cfg.Session.CookieName,
		LoginURL:   cfg.LoginURL,
	})

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metrics != nil {
		r.Use(middleware.Metrics(metrics))
	}

	cookie := handler.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Env == config.EnvProduction,
	}
	handler.RegisterRoutes(r, handler.Handlers{
		Auth:          handler.NewAuthHandler(authService, cookie),
		Enrollments:   handler.NewEnrollmentHandler(enrollmentService),
		Documents:     handler.NewDocumentHandler(documentService),
		Grades:        handler.NewGradeHandler(gradeService),
		Attendance:    handler.NewAttendanceHandler(attendanceService),
		LMS:           handler.NewLMSHandler(lmsService),
		Notifications: handler.NewNotificationHandler(notificationService),
		Audits:        handler.NewAuditHandler(auditService),
		Exports:       handler.NewExportHandler(exportService),
	}, guard, metrics)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
