package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/timetable-admin-api/api/swagger"
	"github.com/noah-isme/timetable-admin-api/internal/handler"
	"github.com/noah-isme/timetable-admin-api/internal/middleware"
	"github.com/noah-isme/timetable-admin-api/internal/repository"
	"github.com/noah-isme/timetable-admin-api/internal/service"
	"github.com/noah-isme/timetable-admin-api/pkg/cache"
	"github.com/noah-isme/timetable-admin-api/pkg/config"
	"github.com/noah-isme/timetable-admin-api/pkg/database"
	"github.com/noah-isme/timetable-admin-api/pkg/export"
	"github.com/noah-isme/timetable-admin-api/pkg/genai"
	"github.com/noah-isme/timetable-admin-api/pkg/jobs"
	"github.com/noah-isme/timetable-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/timetable-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/timetable-admin-api/pkg/middleware/requestid"
	"github.com/noah-isme/timetable-admin-api/pkg/storage"
)

// @title Timetable Admin API
// @version 1.0.0
// @description School timetable dashboard backend
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

	uploads, err := storage.NewLocalStorage(cfg.Imports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare upload storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Imports.SignedURLSecret, cfg.Imports.SignedURLTTL)

	entityRepo := repository.NewEntityRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	sessionRepo := repository.NewSessionRepository(redisClient, cfg.Imports.SessionTTL)

	csvExporter := export.NewCSVExporter()
	pdfExporter := export.NewPDFExporter()
	aiClient := genai.NewClient(cfg.AI, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(cfg.Admin, logr)
	settingsSvc := service.NewSettingsService(settingsRepo, cacheRepo, logr)
	entitySvc := service.NewEntityService(entityRepo, cacheRepo, nil, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, entityRepo, settingsSvc, cacheRepo, cfg.Grid.CacheTTL, nil, logr)
	studentSvc := service.NewStudentService(studentRepo, entityRepo, nil, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, entityRepo, csvExporter, pdfExporter, nil, logr)
	assistantSvc := service.NewAssistantService(aiClient, settingsSvc, entityRepo, scheduleRepo, metricsSvc, logr)
	dashboardSvc := service.NewDashboardService(entityRepo, studentRepo, scheduleRepo, settingsSvc, cacheRepo, cfg.Dashboard.CacheTTL, logr)
	importSvc := service.NewImportService(sessionRepo, entityRepo, scheduleRepo, aiClient, uploads, cacheRepo, metricsSvc, cfg.Imports, logr)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	extractionQueue := jobs.NewQueue(service.JobTypeExtraction, importSvc.HandleExtraction, jobs.QueueConfig{
		Workers:    cfg.Jobs.WorkerConcurrency,
		BufferSize: cfg.Jobs.QueueBuffer,
		MaxRetries: cfg.Jobs.WorkerRetries,
		Logger:     logr,
	})
	extractionQueue.Start(rootCtx)
	defer extractionQueue.Stop()
	importSvc.SetQueue(extractionQueue)

	go cleanupUploads(rootCtx, uploads, cfg.Imports.SessionTTL, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(authSvc)
	entityHandler := handler.NewEntityHandler(entitySvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, csvExporter, pdfExporter)
	studentHandler := handler.NewStudentHandler(studentSvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	importHandler := handler.NewImportHandler(importSvc, uploads, signer)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, assistantSvc)

	api := r.Group(cfg.APIPrefix)
	admin := api.Group("", middleware.Admin(authSvc))

	api.POST("/auth/login", authHandler.Login)

	api.GET("/entities", entityHandler.List)
	api.GET("/entities/:id", entityHandler.Get)
	admin.POST("/entities", entityHandler.Create)
	admin.PUT("/entities/:id", entityHandler.Update)
	admin.DELETE("/entities/:id", entityHandler.Delete)

	api.GET("/entities/:id/timetable", scheduleHandler.Grid)
	admin.PUT("/entities/:id/timetable/cells", scheduleHandler.SetCell)
	admin.DELETE("/entities/:id/timetable/cells/:day/:period", scheduleHandler.ClearCell)
	if cfg.Exports.Enabled {
		api.GET("/entities/:id/timetable/export", scheduleHandler.Export)
	}

	api.GET("/students", studentHandler.List)
	admin.POST("/students", studentHandler.Create)
	admin.POST("/students/bulk", studentHandler.BulkAdd)
	admin.DELETE("/students/:id", studentHandler.Delete)

	api.GET("/settings", settingsHandler.Get)
	admin.PUT("/settings", settingsHandler.Update)

	if cfg.Imports.Enabled {
		api.GET("/imports/session", importHandler.Get)
		api.GET("/imports/source", importHandler.DownloadSource)
		admin.POST("/imports/text", importHandler.StartText)
		admin.POST("/imports/document", importHandler.StartDocument)
		admin.POST("/imports/finalize", importHandler.Finalize)
		admin.DELETE("/imports/session", importHandler.Cancel)
	}

	api.GET("/attendance", attendanceHandler.Sheet)
	admin.POST("/attendance", attendanceHandler.Mark)
	api.GET("/attendance/:class_id/summary", attendanceHandler.Summary)
	if cfg.Exports.Enabled {
		api.GET("/attendance/:class_id/export", attendanceHandler.Export)
	}

	if cfg.Dashboard.Enabled {
		api.GET("/dashboard/summary", dashboardHandler.Summary)
		api.POST("/dashboard/assistant", dashboardHandler.Ask)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

// cleanupUploads periodically removes stored import sources older than the
// session TTL. Finalize and cancel delete their own files; this catches the
// ones left behind by expired sessions.
func cleanupUploads(ctx context.Context, uploads *storage.LocalStorage, ttl time.Duration, logr *zap.Logger) {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := uploads.CleanupOlderThan(ttl)
			if err != nil {
				logr.Warn("upload cleanup failed", zap.Error(err))
				continue
			}
			if len(deleted) > 0 {
				logr.Info("removed expired import sources", zap.Int("count", len(deleted)))
			}
		}
	}
}
