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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-enrollment-api/api/swagger"
	"github.com/noah-isme/course-enrollment-api/internal/handler"
	internalmiddleware "github.com/noah-isme/course-enrollment-api/internal/middleware"
	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/internal/repository"
	"github.com/noah-isme/course-enrollment-api/internal/service"
	"github.com/noah-isme/course-enrollment-api/pkg/cache"
	"github.com/noah-isme/course-enrollment-api/pkg/config"
	"github.com/noah-isme/course-enrollment-api/pkg/database"
	"github.com/noah-isme/course-enrollment-api/pkg/events"
	"github.com/noah-isme/course-enrollment-api/pkg/jobs"
	"github.com/noah-isme/course-enrollment-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-enrollment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-enrollment-api/pkg/middleware/requestid"
)

// @title Course Enrollment API
// @version 1.0.0
// @description Seat and waitlist admission for course sections
// @BasePath /
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	sectionRepo := repository.NewSectionRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	catalogRepo := repository.NewCatalogRepository(db, cfg.Enrollment.DefaultWaitlist)
	cacheRepo := newCatalogCache(ctx, cfg, logr)
	defer cacheRepo.Close() //nolint:errcheck

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Catalog.CacheTTL, logr, cfg.Catalog.CacheEnabled)
	catalogSvc := service.NewCatalogService(catalogRepo, cacheSvc, logr)
	eligibilitySvc := service.NewEligibilityService(sectionRepo, registrationRepo, cfg.Enrollment.DefaultWaitlist, metricsSvc, logr)
	registrationSvc := service.NewRegistrationService(database.NewTxRunner(db), sectionRepo, registrationRepo, cfg.Enrollment.DefaultWaitlist, validate, metricsSvc, logr)
	waitlistSvc := service.NewWaitlistService(registrationRepo, nil, nil, logr)
	tokenSvc := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: "course-enrollment-api"})

	eventSvc, shutdownEvents := startEvents(ctx, cfg.Events, logr)
	defer shutdownEvents()

	enrollmentSvc := service.NewEnrollmentService(eligibilitySvc, registrationSvc, catalogSvc, eventSvc, validate, logr)

	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, eligibilitySvc)
	waitlistHandler := handler.NewWaitlistHandler(waitlistSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, sectionRepo)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/db_liveness", metricsHandler.DBLiveness)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	staff := internalmiddleware.RequireRoles(models.RoleInstructor, models.RoleRegistrar)
	api := r.Group(cfg.APIPrefix, internalmiddleware.JWT(tokenSvc))
	api.GET("/classes", catalogHandler.List)
	api.POST("/enrollments", internalmiddleware.RequireRoles(models.RoleStudent), enrollmentHandler.Create)

	sections := api.Group("/sections/:courseCode/:sectionNumber")
	sections.GET("/eligibility", enrollmentHandler.Eligibility)
	sections.GET("/waitlist/position", waitlistHandler.Position)
	sections.GET("/waitlist", staff, waitlistHandler.List)
	sections.GET("/waitlist/export", staff, waitlistHandler.Export)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// startEvents wires the registration event queue when enabled. The returned
// func drains the queue and closes the broker connection.
func startEvents(ctx context.Context, cfg config.EventsConfig, logr *zap.Logger) (*service.EventService, func()) {
	if !cfg.Enabled {
		return service.NewEventService(nil, logr), func() {}
	}

	publisher, err := events.Dial(cfg.RabbitMQURL, cfg.Queue, logr)
	if err != nil {
		logr.Warn("rabbitmq unavailable, registration events disabled", zap.Error(err))
		return service.NewEventService(nil, logr), func() {}
	}

	queue := jobs.NewQueue("registration-events", service.NewRegistrationEventHandler(publisher, logr), jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logr,
	})
	queue.Start(context.WithoutCancel(ctx))

	return service.NewEventService(queue, logr), func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := queue.Stop(drainCtx); err != nil {
			logr.Warn("registration events not fully drained", zap.Error(err))
		}
		if err := publisher.Close(); err != nil {
			logr.Warn("failed to close rabbitmq publisher", zap.Error(err))
		}
	}
}

type catalogCache interface {
	service.CacheRepository
	Close() error
}

// newCatalogCache prefers Redis and falls back to process memory when Redis
// cannot be reached, so a single replica still benefits from caching.
func newCatalogCache(ctx context.Context, cfg *config.Config, logr *zap.Logger) catalogCache {
	if !cfg.Catalog.CacheEnabled {
		return repository.NewCacheRepository(nil, "")
	}
	client, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, using in-memory catalog cache", zap.Error(err))
		return repository.NewMemoryCacheRepository(cfg.Catalog.CacheTTL)
	}
	return repository.NewCacheRepository(client, "course-enrollment")
}
