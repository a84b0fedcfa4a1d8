package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/tedxecu/registration-api/api/swagger"
	"github.com/tedxecu/registration-api/internal/handler"
	"github.com/tedxecu/registration-api/internal/middleware"
	"github.com/tedxecu/registration-api/internal/models"
	"github.com/tedxecu/registration-api/internal/repository"
	"github.com/tedxecu/registration-api/internal/service"
	"github.com/tedxecu/registration-api/pkg/cache"
	"github.com/tedxecu/registration-api/pkg/config"
	"github.com/tedxecu/registration-api/pkg/database"
	"github.com/tedxecu/registration-api/pkg/email"
	"github.com/tedxecu/registration-api/pkg/jobs"
	"github.com/tedxecu/registration-api/pkg/logger"
	corsmiddleware "github.com/tedxecu/registration-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tedxecu/registration-api/pkg/middleware/requestid"
	"github.com/tedxecu/registration-api/pkg/storage"
)

// @title TEDxECU Registration API
// @version 1.0.0
// @description Event registration intake, payment review, and ticketing
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The cache is an optimization, not a dependency.
		logr.Sugar().Warnw("redis unavailable, admin listing cache disabled", "error", err)
		redisClient = nil
	}

	proofStore, err := storage.NewProofStore(cfg.Proofs.StorageDir, cfg.Proofs.PublicBaseURL)
	if err != nil {
		logr.Sugar().Fatalw("failed to init proof storage", "error", err)
	}
	proofSigner := storage.NewSignedURLSigner(cfg.Proofs.SignedURLSecret, cfg.Proofs.SignedURLTTL)

	mailClient := email.NewClient(email.Config{
		APIURL:  cfg.Email.APIURL,
		APIKey:  cfg.Email.APIKey,
		From:    cfg.Email.From,
		Timeout: cfg.Email.Timeout,
	}, nil)
	if !mailClient.Configured() {
		logr.Warn("email API key missing, confirmation and ticket emails disabled")
	}

	event := models.EventInfo{
		Name:  cfg.Event.Name,
		Date:  cfg.Event.Date,
		Time:  cfg.Event.Time,
		Venue: cfg.Event.Venue,
		Seat:  cfg.Event.Seat,
	}

	validate := validator.New()

	registrationRepo := repository.NewRegistrationRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsService := service.NewMetricsService()

	// The queue handler closes over the review service, which itself holds
	// the queue for dispatch, so the service variable is bound after the
	// queue is built.
	var reviewService *service.ReviewService
	ticketQueue := jobs.NewQueue("ticket-emails", func(ctx context.Context, job jobs.Job) error {
		id, ok := job.Payload.(string)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", job.Payload)
		}
		return reviewService.DeliverTicket(ctx, id)
	}, jobs.QueueConfig{
		Workers:    2,
		MaxRetries: cfg.Email.Retries,
		RetryDelay: 5 * time.Second,
		Logger:     logr,
	})

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	if err := authService.Bootstrap(context.Background(), cfg.AdminSeed.Email, cfg.AdminSeed.Password, cfg.AdminSeed.FullName); err != nil {
		logr.Sugar().Fatalw("admin bootstrap failed", "error", err)
	}

	registrationService := service.NewRegistrationService(registrationRepo, proofStore, mailClient, cacheRepo, validate, logr, service.RegistrationConfig{
		AllowedMIMEs:     cfg.Proofs.AllowedMIMEs,
		MaxFileSizeBytes: cfg.Proofs.MaxFileSizeBytes,
		Event:            event,
	})
	reviewService = service.NewReviewService(registrationRepo, mailClient, ticketQueue, cacheRepo, metricsService, validate, logr, service.ReviewConfig{
		Event:      event,
		AsyncEmail: cfg.Email.Async,
	})
	adminService := service.NewAdminService(registrationRepo, cacheRepo, proofStore, proofSigner, mailClient, validate, logr, service.AdminConfig{
		CacheEnabled:     cfg.AdminCache.Enabled && redisClient != nil,
		CacheTTL:         cfg.AdminCache.TTL,
		DeleteBatchSize:  cfg.Bulk.DeleteBatchSize,
		InsertBatchSize:  cfg.Bulk.InsertBatchSize,
		InterBatchDelay:  cfg.Bulk.InterBatchDelay,
		TestDataDefault:  cfg.Bulk.TestDataDefault,
		ConfirmationText: cfg.Bulk.ConfirmationText,
		ProofURLBase:     cfg.PublicURL,
	})
	ticketService := service.NewTicketService(registrationRepo, logr, event)

	if cfg.Email.Async {
		ticketQueue.Start(context.Background())
		defer ticketQueue.Stop()
	}

	authHandler := handler.NewAuthHandler(authService)
	registrationHandler := handler.NewRegistrationHandler(registrationService, metricsService, cfg.Proofs.MaxFileSizeBytes+1<<20)
	ticketHandler := handler.NewTicketHandler(ticketService)
	proofHandler := handler.NewProofHandler(proofStore, proofSigner, logr)
	adminHandler := handler.NewAdminHandler(adminService, reviewService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.Static("/files/payment-proofs", proofStore.Dir())

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/registrations", registrationHandler.Submit)
		api.POST("/registrations/check", registrationHandler.Check)
		api.GET("/tickets/:ticketId", ticketHandler.Show)
		api.GET("/proofs/:token", proofHandler.Download)
		api.POST("/auth/login", authHandler.Login)

		authed := api.Group("", middleware.JWT(authService))
		{
			authed.GET("/auth/me", authHandler.Me)

			admin := authed.Group("/admin")
			{
				admin.GET("/registrations", adminHandler.List)
				admin.POST("/registrations/bulk-delete", adminHandler.BulkDelete)
				admin.GET("/registrations/:id", adminHandler.Get)
				admin.PATCH("/registrations/:id/status", adminHandler.UpdateStatus)
				admin.POST("/registrations/:id/ticket", adminHandler.SendTicket)
				admin.GET("/registrations/:id/proof-link", adminHandler.ProofLink)
				admin.DELETE("/registrations/:id", adminHandler.Delete)
				admin.POST("/test-data", adminHandler.GenerateTestData)
				admin.GET("/export", adminHandler.Export)
				admin.GET("/email-health", adminHandler.EmailHealth)
			}
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
