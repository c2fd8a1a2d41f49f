package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/vistari-app/vistari-api/api/swagger"
	"github.com/vistari-app/vistari-api/internal/handler"
	"github.com/vistari-app/vistari-api/internal/middleware"
	"github.com/vistari-app/vistari-api/internal/repository"
	"github.com/vistari-app/vistari-api/internal/service"
	"github.com/vistari-app/vistari-api/pkg/cache"
	"github.com/vistari-app/vistari-api/pkg/config"
	"github.com/vistari-app/vistari-api/pkg/database"
	"github.com/vistari-app/vistari-api/pkg/emailcheck"
	"github.com/vistari-app/vistari-api/pkg/jobs"
	"github.com/vistari-app/vistari-api/pkg/logger"
	corsmiddleware "github.com/vistari-app/vistari-api/pkg/middleware/cors"
	reqidmiddleware "github.com/vistari-app/vistari-api/pkg/middleware/requestid"
	"github.com/vistari-app/vistari-api/pkg/timegrid"
)

// @title Vistari API
// @version 1.0.0
// @description Revision planning backend
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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	eventRepo := repository.NewEventRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Calendar.CacheTTL, logr, cfg.Calendar.CacheEnabled)

	referralSvc := service.NewReferralService(referralRepo, logr, service.ReferralConfig{
		RewardThreshold: cfg.Referrals.RewardThreshold,
		CodePrefix:      cfg.Referrals.CodePrefix,
	})

	verifier := emailcheck.NewVerifier(cfg.EmailCheck.URL, cfg.EmailCheck.Timeout, logr)
	authSvc := service.NewAuthService(userRepo, referralSvc, verifier, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})

	grid := timegrid.Grid{
		StartHour:     cfg.Calendar.GridStartHour,
		EndHour:       cfg.Calendar.GridEndHour,
		HourHeight:    cfg.Calendar.GridHourHeight,
		MinItemHeight: cfg.Calendar.GridMinItemHeight,
	}

	timetableSvc := service.NewTimetableService(timetableRepo, validate, logr, metricsSvc, cfg.Calendar.DefaultSessionDuration)
	eventSvc := service.NewEventService(eventRepo, validate, logr)
	calendarSvc := service.NewCalendarService(timetableRepo, eventRepo, cacheSvc, metricsSvc, validate, logr, grid, cfg.Calendar.CacheTTL)
	exportSvc := service.NewExportService(calendarSvc, logr, cfg.Exports.StorageDir, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exportSvc.StartWorkers(ctx)
	defer exportSvc.StopWorkers()

	if cfg.Maintenance.Enabled {
		maintenanceSvc := service.NewMaintenanceService(userRepo, exportSvc, logr, service.MaintenanceConfig{
			CronSpec:     cfg.Maintenance.CronSpec,
			ExportMaxAge: cfg.Maintenance.ExportMaxAge,
		})
		if err := maintenanceSvc.Start(ctx); err != nil {
			logr.Sugar().Fatalw("failed to start maintenance", "error", err)
		}
		defer maintenanceSvc.Stop()
	}

	authHandler := handler.NewAuthHandler(authSvc)
	referralHandler := handler.NewReferralHandler(referralSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	eventHandler := handler.NewEventHandler(eventSvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/forgot-password", authHandler.ForgotPassword)

			authed := auth.Group("", middleware.JWT(authSvc))
			{
				authed.POST("/logout", authHandler.Logout)
				authed.POST("/change-password", authHandler.ChangePassword)
				authed.GET("/me", authHandler.Me)
			}
		}

		protected := api.Group("", middleware.JWT(authSvc))
		{
			protected.GET("/referrals/me", referralHandler.Summary)

			protected.GET("/timetables", timetableHandler.List)
			protected.POST("/timetables", timetableHandler.Create)
			protected.GET("/timetables/:id", timetableHandler.Get)
			protected.PUT("/timetables/:id/schedule", timetableHandler.ReplaceSchedule)
			protected.DELETE("/timetables/:id", timetableHandler.Delete)

			protected.GET("/events", eventHandler.List)
			protected.POST("/events", eventHandler.Create)
			protected.PUT("/events/:id", eventHandler.Update)
			protected.DELETE("/events/:id", eventHandler.Delete)

			protected.GET("/calendar/week", calendarHandler.Week)
			protected.POST("/calendar/move", calendarHandler.Move)
			protected.GET("/calendar/week/export", calendarHandler.ExportWeek)
		}
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
	if err := srv.Shutdown(context.Background()); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
