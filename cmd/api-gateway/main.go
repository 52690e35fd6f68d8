package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/thilinahansana/university-scheduler-console/api/swagger"
	"github.com/thilinahansana/university-scheduler-console/internal/handler"
	"github.com/thilinahansana/university-scheduler-console/internal/middleware"
	"github.com/thilinahansana/university-scheduler-console/internal/models"
	"github.com/thilinahansana/university-scheduler-console/internal/repository"
	"github.com/thilinahansana/university-scheduler-console/internal/service"
	"github.com/thilinahansana/university-scheduler-console/internal/upstream"
	"github.com/thilinahansana/university-scheduler-console/pkg/cache"
	"github.com/thilinahansana/university-scheduler-console/pkg/config"
	"github.com/thilinahansana/university-scheduler-console/pkg/database"
	"github.com/thilinahansana/university-scheduler-console/pkg/jobs"
	"github.com/thilinahansana/university-scheduler-console/pkg/logger"
	corsmiddleware "github.com/thilinahansana/university-scheduler-console/pkg/middleware/cors"
	reqidmiddleware "github.com/thilinahansana/university-scheduler-console/pkg/middleware/requestid"
	"github.com/thilinahansana/university-scheduler-console/pkg/storage"
)

// @title Timetable Console API
// @version 1.0.0
// @description Grid projection, eligibility and editing console over the timetable generation backend.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type snapshotSource interface {
	Snapshot(ctx context.Context, scope string) (*models.TimetableSnapshot, error)
}

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, snapshot cache disabled and export jobs kept in memory", zap.Error(err))
		redisClient = nil
	}

	backend := upstream.New(upstream.Config{
		BaseURL:      cfg.Backend.BaseURL,
		Timeout:      cfg.Backend.Timeout,
		ServiceToken: cfg.Backend.ServiceToken,
		Logger:       logr.Named("upstream"),
	})

	var (
		source snapshotSource = backend
		db     *sqlx.DB
	)
	if cfg.Backend.Source == config.SourcePostgres {
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect timetable replica", zap.Error(err))
		}
		source = repository.NewSnapshotRepository(db)
		logr.Info("timetable snapshots read from postgres replica", zap.String("db", cfg.Database.Name))
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()
	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: time.Hour,
		Issuer:            "timetable-console",
	})

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Projection.CacheTTL, logr, cfg.Projection.CacheEnabled && redisClient != nil)

	var snapshotSvc *service.SnapshotService
	refreshQueue := jobs.NewQueue("snapshot-refresh", func(ctx context.Context, job jobs.Job) error {
		return snapshotSvc.HandleRefresh(ctx, job)
	}, jobs.QueueConfig{Workers: 1, BufferSize: 8, MaxRetries: 2, RetryDelay: 5 * time.Second, Logger: logr})
	snapshotSvc = service.NewSnapshotService(source, cacheSvc, refreshQueue, metricsSvc, cfg.Projection.CacheTTL, logr)
	refreshQueue.Start(ctx)
	defer refreshQueue.Stop()
	snapshotSvc.StartPeriodicRefresh(ctx, cfg.Projection.RefreshInterval)

	projectionSvc := service.NewProjectionService(snapshotSvc, backend, backend, service.ProjectionConfig{
		DefaultSpecialization: cfg.Projection.DefaultSpecialization,
		WeekdaysOnly:          cfg.Projection.WeekdaysOnly,
	}, metricsSvc, logr)
	editSvc := service.NewEditService(backend, snapshotSvc, validate, logr)
	changeSvc := service.NewChangeRequestService(backend, projectionSvc, editSvc, snapshotSvc, service.ChangeRequestConfig{
		Enabled: cfg.ChangeRequests.Enabled,
	}, validate, logr)

	timetableHandler := handler.NewTimetableHandler(projectionSvc, editSvc, changeSvc)
	changeHandler := handler.NewChangeRequestHandler(changeSvc)

	var exportHandler *handler.ExportHandler
	if cfg.Exports.Enabled {
		files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Fatal("failed to prepare export storage", zap.Error(err))
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exporter := service.NewExportService(projectionSvc, files, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		}, logr, service.ExportRenderers{})
		jobStore := repository.NewExportJobRepository(redisClient, cfg.Exports.SignedURLTTL)
		worker := service.NewExportWorker(jobStore, exporter, metricsSvc, cfg.Exports.WorkerRetries, logr)

		var exportJobs *service.ExportJobService
		exportQueue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			RetryDelay: 2 * time.Second,
			Logger:     logr,
			OnFailure: func(ctx context.Context, job jobs.Job, err error) {
				exportJobs.MarkFailed(ctx, job, err)
			},
		})
		exportJobs = service.NewExportJobService(jobStore, projectionSvc, exportQueue, exporter, metricsSvc, validate, logr, service.ExportJobConfig{
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
			MaxRetries:      cfg.Exports.WorkerRetries,
		})
		exportQueue.Start(ctx)
		defer exportQueue.Stop()
		exportJobs.StartCleanup(ctx)
		exportHandler = handler.NewExportHandler(exportJobs)
	}

	checks := map[string]handler.ReadinessCheck{"backend": backend.Ping}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	if db != nil {
		checks["postgres"] = db.PingContext
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	admin := middleware.RequireRoles(models.RoleAdmin)
	faculty := middleware.RequireRoles(models.RoleFaculty)
	student := middleware.RequireRoles(models.RoleStudent)
	personal := middleware.RequireRoles(models.RoleStudent, models.RoleFaculty)

	api := r.Group(cfg.APIPrefix)
	if exportHandler != nil {
		api.GET("/exports/download/:token", exportHandler.Download)
	}

	secured := api.Group("", middleware.JWT(authSvc), middleware.WithResponseMeta())
	secured.GET("/timetables/grids", admin, timetableHandler.AdminGrids)
	secured.GET("/timetables/available-spaces", admin, timetableHandler.AvailableSpaces)
	secured.GET("/timetables/:timetableId/cells/:period/:day/:index", admin, timetableHandler.SelectCell)
	secured.PATCH("/timetables/:timetableId/activities/:sessionId", admin, timetableHandler.EditActivity)

	secured.GET("/me/timetable", personal, timetableHandler.MyTimetable)
	secured.GET("/me/timetable/agenda", faculty, timetableHandler.Agenda)
	secured.GET("/me/timetable/explain/:sessionId", student, timetableHandler.Explain)
	secured.POST("/me/timetable/cells/:period/:day/change-request", faculty, timetableHandler.RequestCellChange)

	secured.POST("/change-requests", faculty, changeHandler.Create)
	secured.GET("/change-requests", middleware.RequireRoles(models.RoleFaculty, models.RoleAdmin), changeHandler.List)
	secured.PUT("/change-requests/:id", admin, changeHandler.Review)

	if exportHandler != nil {
		secured.POST("/exports", exportHandler.Create)
		secured.GET("/exports/:id", exportHandler.Status)
	}
	secured.GET("/metrics/summary", admin, metricsHandler.Summary)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "source", cfg.Backend.Source)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logr.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}
	stop()

	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}
