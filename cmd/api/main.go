package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/reportit-app/reportit-api/api/swagger"
	"github.com/reportit-app/reportit-api/internal/handler"
	"github.com/reportit-app/reportit-api/internal/middleware"
	"github.com/reportit-app/reportit-api/internal/models"
	"github.com/reportit-app/reportit-api/internal/repository"
	"github.com/reportit-app/reportit-api/internal/service"
	"github.com/reportit-app/reportit-api/pkg/cache"
	"github.com/reportit-app/reportit-api/pkg/config"
	"github.com/reportit-app/reportit-api/pkg/database"
	"github.com/reportit-app/reportit-api/pkg/logger"
	corsmiddleware "github.com/reportit-app/reportit-api/pkg/middleware/cors"
	reqidmiddleware "github.com/reportit-app/reportit-api/pkg/middleware/requestid"
	"github.com/reportit-app/reportit-api/pkg/storage"
)

// @title ReportIt API
// @version 1.0.0
// @description Municipal issue reporting service
// @BasePath /api
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

	var (
		authStore   repository.AuthStore
		reportStore repository.ReportStore
	)

	switch cfg.Store {
	case config.StoreMemory:
		mem := repository.NewMemoryStore()
		authStore = mem
		reportStore = mem
		logr.Sugar().Warnw("using in-memory store, data will not survive restarts")
	default:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to database", "error", err)
		}
		defer db.Close() //nolint:errcheck

		authStore = repository.NewUserRepository(db)
		reportStore = repository.NewReportRepository(db)
	}

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}

		cacheRepo := repository.NewCacheRepository(client, logr)
		defer cacheRepo.Close() //nolint:errcheck

		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.ReportListTTL, logr, true)
	}

	uploads, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare upload directory", "error", err)
	}

	validate := validator.New()

	badgeSvc := service.NewBadgeService(authStore, metricsSvc, logr)
	reportSvc := service.NewReportService(reportStore, badgeSvc, cacheSvc, validate, logr)
	authSvc := service.NewAuthService(authStore, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "reportit-api",
	})
	userSvc := service.NewUserService(authStore, logr)
	exportSvc := service.NewExportService(reportStore, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	reportHandler := handler.NewReportHandler(reportSvc, uploads, cfg.Uploads.PublicPath, cfg.Uploads.MaxFileSizeBytes)
	userHandler := handler.NewUserHandler(userSvc)
	badgeHandler := handler.NewBadgeHandler(badgeSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.Static(cfg.Uploads.PublicPath, uploads.Dir())

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	reports := api.Group("/reports", middleware.JWT(authSvc))
	{
		reports.POST("", reportHandler.Create)
		reports.GET("", reportHandler.List)
		reports.GET("/user", reportHandler.ListMine)
		reports.GET("/export", middleware.RequireRoles(models.RoleAdmin), exportHandler.Export)
		reports.GET("/:id", reportHandler.Get)
		reports.PATCH("/:id/status", middleware.RequireRoles(models.RoleAdmin), reportHandler.UpdateStatus)
		reports.PATCH("/:id/assign", middleware.RequireRoles(models.RoleAdmin), reportHandler.Assign)
		reports.GET("/:id/updates", reportHandler.ListUpdates)
		reports.POST("/:id/updates", reportHandler.AddUpdate)
		reports.POST("/:id/photos", reportHandler.UploadPhoto)
	}

	users := api.Group("/users", middleware.JWT(authSvc))
	{
		users.GET("/me", userHandler.Profile)
		users.GET("", middleware.RequireRoles(models.RoleAdmin), userHandler.List)
	}

	api.GET("/badges", badgeHandler.List)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "store", cfg.Store)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
