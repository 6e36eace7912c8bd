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

	_ "github.com/orono-schools/tst-bank-api/api/swagger"
	"github.com/orono-schools/tst-bank-api/internal/handler"
	"github.com/orono-schools/tst-bank-api/internal/middleware"
	"github.com/orono-schools/tst-bank-api/internal/models"
	"github.com/orono-schools/tst-bank-api/internal/repository"
	"github.com/orono-schools/tst-bank-api/internal/service"
	"github.com/orono-schools/tst-bank-api/pkg/cache"
	"github.com/orono-schools/tst-bank-api/pkg/config"
	"github.com/orono-schools/tst-bank-api/pkg/database"
	"github.com/orono-schools/tst-bank-api/pkg/logger"
	"github.com/orono-schools/tst-bank-api/pkg/mail"
	corsmiddleware "github.com/orono-schools/tst-bank-api/pkg/middleware/cors"
	reqidmiddleware "github.com/orono-schools/tst-bank-api/pkg/middleware/requestid"
	"github.com/orono-schools/tst-bank-api/pkg/signing"
)

// @title TST Bank API
// @version 1.0.0
// @description Teacher sub time bank: earned and used hour ledger, approvals, availability schedule.
// @BasePath /api/v1
// @schemes http https

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
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	} else {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Dashboard.CacheTTL, logr, true)
		defer cacheRepo.Close()
	}

	staffRepo := repository.NewStaffRepository(db)
	earnedRepo := repository.NewEarnedRepository(db)
	usedRepo := repository.NewUsedRepository(db)
	archiveRepo := repository.NewArchiveRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	coverageRepo := repository.NewCoverageRepository(db)

	validate := validator.New()

	var mailer mail.Mailer = mail.NopMailer{}
	if cfg.Notifications.Enabled {
		mailer = mail.NewSMTPMailer(cfg.Notifications)
	}
	notifications := service.NewNotificationService(mailer, cfg.Notifications, logr)
	notifications.Start(ctx)
	defer notifications.Stop()

	authService := service.NewAuthService(staffRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "tst-bank-api",
	})
	directoryService := service.NewDirectoryService(staffRepo, cfg.Buildings, cacheService, cfg.Directory.CacheTTL, logr)
	balanceService := service.NewBalanceService(staffRepo, earnedRepo, usedRepo, logr)
	approvalService := service.NewApprovalService(earnedRepo, usedRepo, archiveRepo, notifications, cacheService, validate, logr)
	submissionService := service.NewSubmissionService(earnedRepo, usedRepo, staffRepo, cfg.Buildings, cacheService, validate, logr)
	scheduleService := service.NewScheduleService(availabilityRepo, earnedRepo, staffRepo, logr)
	batchService := service.NewBatchService(approvalService, logr)
	dashboardService := service.NewDashboardService(earnedRepo, usedRepo, cacheService, cfg.Dashboard, logr)
	reportService := service.NewReportService(earnedRepo, usedRepo, balanceService, notifications, logr)
	linkSigner := signing.NewLinkSigner(cfg.Coverage.LinkSecret, cfg.Coverage.LinkTTL)
	coverageService := service.NewCoverageService(coverageRepo, staffRepo, submissionService, notifications, linkSigner, cfg.Buildings, cfg.Notifications.PortalURL, validate, logr)

	authHandler := handler.NewAuthHandler(authService)
	staffHandler := handler.NewStaffHandler(directoryService, balanceService)
	earnedHandler := handler.NewEarnedHandler(submissionService, approvalService, directoryService)
	usedHandler := handler.NewUsedHandler(submissionService, approvalService, directoryService)
	batchHandler := handler.NewBatchHandler(batchService)
	scheduleHandler := handler.NewScheduleHandler(scheduleService, directoryService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, directoryService)
	reportHandler := handler.NewReportHandler(reportService, directoryService)
	coverageHandler := handler.NewCoverageHandler(coverageService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authService), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authService), authHandler.Me)
	}

	// Signed-link coverage responses come from email clients without a session.
	api.GET("/coverage/respond", coverageHandler.Respond)

	selfOrAdmin := middleware.RBAC("SELF", string(models.RoleAdmin), string(models.RoleSuperAdmin))

	authed := api.Group("", middleware.JWT(authService))
	{
		authed.GET("/staff", staffHandler.List)
		authed.GET("/staff/balances", staffHandler.Balances)
		authed.GET("/staff/:email", selfOrAdmin, staffHandler.Get)
		authed.GET("/staff/:email/balance", selfOrAdmin, staffHandler.Balance)

		authed.POST("/earned", earnedHandler.Submit)
		authed.GET("/earned", earnedHandler.List)
		authed.GET("/earned/:id", earnedHandler.Get)

		authed.POST("/used", usedHandler.Submit)
		authed.GET("/used", usedHandler.List)
		authed.GET("/used/:id", usedHandler.Get)

		authed.GET("/schedule", scheduleHandler.ReadCell)
		authed.GET("/schedule/months", scheduleHandler.Months)

		authed.GET("/reports/history/:email", selfOrAdmin, reportHandler.History)
		authed.GET("/reports/history/:email/export", selfOrAdmin, reportHandler.ExportHistory)
	}

	admin := api.Group("", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))
	{
		admin.PUT("/staff/carry-over", staffHandler.UpdateCarryOver)

		admin.POST("/earned/:id/approve", earnedHandler.Approve)
		admin.POST("/earned/:id/deny", earnedHandler.Deny)
		admin.POST("/earned/:id/revert", earnedHandler.Revert)
		admin.PUT("/earned/:id", earnedHandler.Edit)
		admin.DELETE("/earned/:id", earnedHandler.Delete)

		admin.POST("/used/:id/approve", usedHandler.Approve)
		admin.POST("/used/:id/revert", usedHandler.Revert)
		admin.DELETE("/used/:id", usedHandler.Delete)

		admin.POST("/batch/earned/approve", batchHandler.ApproveEarned)
		admin.POST("/batch/earned/deny", batchHandler.DenyEarned)
		admin.POST("/batch/earned/delete", batchHandler.DeleteEarned)
		admin.POST("/batch/used/approve", batchHandler.ApproveUsed)
		admin.POST("/batch/used/delete", batchHandler.DeleteUsed)

		admin.PUT("/schedule", scheduleHandler.WriteCell)

		admin.GET("/dashboard", dashboardHandler.Counts)
		admin.GET("/metrics/summary", metricsHandler.Snapshot)

		admin.GET("/reports/balances/export", reportHandler.ExportBalances)
		admin.POST("/reports/status", reportHandler.SendStatusEmails)
		admin.POST("/reports/status/:email", reportHandler.SendStatusEmail)

		admin.POST("/coverage", coverageHandler.Create)
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
