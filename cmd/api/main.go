package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/receptia/scheduling-api/api/swagger"
	"github.com/receptia/scheduling-api/internal/handler"
	"github.com/receptia/scheduling-api/internal/middleware"
	"github.com/receptia/scheduling-api/internal/repository"
	"github.com/receptia/scheduling-api/internal/service"
	"github.com/receptia/scheduling-api/pkg/cache"
	"github.com/receptia/scheduling-api/pkg/config"
	"github.com/receptia/scheduling-api/pkg/database"
	"github.com/receptia/scheduling-api/pkg/logger"
	corsmiddleware "github.com/receptia/scheduling-api/pkg/middleware/cors"
	reqidmiddleware "github.com/receptia/scheduling-api/pkg/middleware/requestid"
)

// @title Receptia Scheduling API
// @version 0.1.0
// @description Appointment scheduling, conflict detection and availability
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
	defer db.Close()

	validate := validator.New()
	metrics := service.NewMetricsService()

	var cacheRepo *repository.CacheRepository
	cacheEnabled := false
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, availability grids uncached", "error", err)
	} else {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		cacheEnabled = true
		defer cacheRepo.Close() //nolint:errcheck
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Scheduling.GridCacheTTL, logr, cacheEnabled)

	apptRepo := repository.NewAppointmentRepository(db)

	conflictSvc := service.NewConflictService(apptRepo, metrics, logr)
	calendarSvc := service.NewCalendarSyncService(cfg.CalendarSync, logr)
	apptSvc := service.NewAppointmentService(apptRepo, conflictSvc, calendarSvc, cacheSvc, metrics, cfg.Scheduling.DefaultDurationMinutes, validate, logr)
	availabilitySvc := service.NewAvailabilityService(apptRepo, cacheSvc, cfg.Scheduling, logr)
	rescheduleSvc := service.NewRescheduleService(apptRepo, conflictSvc, calendarSvc, cacheSvc, cfg.Scheduling, validate, logr)
	batchSvc := service.NewBatchService(apptRepo, cacheSvc, metrics, validate, logr)
	tokenSvc := service.NewTokenService(cfg.JWT)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calendarSvc.Start(ctx)
	defer calendarSvc.Stop()

	apptHandler := handler.NewAppointmentHandler(apptSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	rescheduleHandler := handler.NewRescheduleHandler(rescheduleSvc)
	batchHandler := handler.NewBatchHandler(batchSvc)
	metricsHandler := handler.NewMetricsHandler(metrics)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokenSvc))
	{
		api.GET("/appointments", apptHandler.List)
		api.POST("/appointments", apptHandler.Create)
		api.GET("/appointments/:id", apptHandler.Get)
		api.PUT("/appointments/:id", apptHandler.Update)
		api.DELETE("/appointments/:id", apptHandler.Delete)
		api.POST("/appointments/:id/duplicate", apptHandler.Duplicate)

		api.GET("/appointments/:id/reschedule-options", rescheduleHandler.Options)
		api.POST("/appointments/:id/reschedule", rescheduleHandler.Apply)

		api.POST("/batch/appointments/status", batchHandler.ApplyStatus)
		api.POST("/batch/appointments/delete", batchHandler.Delete)

		api.GET("/availability", availabilityHandler.DayGrid)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
