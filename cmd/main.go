package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/crowdfund/crowdfund-gobackend/internal/config"
	"github.com/crowdfund/crowdfund-gobackend/internal/db"
	"github.com/crowdfund/crowdfund-gobackend/internal/events"
	"github.com/crowdfund/crowdfund-gobackend/internal/handlers"
	"github.com/crowdfund/crowdfund-gobackend/internal/logger"
	"github.com/crowdfund/crowdfund-gobackend/internal/middleware"
	"github.com/crowdfund/crowdfund-gobackend/internal/models"
	"github.com/crowdfund/crowdfund-gobackend/internal/repository"
	"github.com/crowdfund/crowdfund-gobackend/internal/services"
)

func main() {
	// Load .env
	dotEnvErr := config.LoadDotEnv(".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zapLog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zapLog.Sync() }()
	if dotEnvErr != nil {
		zapLog.Warn("Error loading .env", zap.Error(dotEnvErr))
	}

	// Connect to MongoDB
	client, err := db.Connect(context.Background(), cfg.MongoURI)
	if err != nil {
		zapLog.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := db.Disconnect(client); err != nil {
			zapLog.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	zapLog.Info("Successfully connected to MongoDB", zap.String("database", cfg.MongoDatabase))

	database := client.Database(cfg.MongoDatabase)
	if err := db.EnsureIndexes(context.Background(), database); err != nil {
		zapLog.Warn("Failed to create indexes", zap.Error(err))
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.EventsEnabled() {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.DonationTopic, zapLog)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			zapLog.Error("Error closing event publisher", zap.Error(err))
		}
	}()

	// Initialize repositories, services and handlers
	campaignRepo := repository.NewCampaignRepository(database)
	statusRepo := repository.NewStatusRepository(database)
	categoryRepo := repository.NewCategoryRepository(database)
	donationRepo := repository.NewDonationRepository(database)
	paymentDetailsRepo := repository.NewPaymentDetailsRepository(database)

	userService := services.NewUserService(database, zapLog)
	adminService := services.NewAdminService(database, zapLog)
	tokenService := services.NewTokenService(cfg.JWTSecret)
	campaignService := services.NewCampaignService(campaignRepo, statusRepo, categoryRepo, userService, zapLog)
	paymentDetailsService := services.NewPaymentDetailsService(paymentDetailsRepo)
	donationService := services.NewDonationService(
		donationRepo,
		campaignRepo,
		statusRepo,
		paymentDetailsService,
		userService,
		publisher,
		zapLog,
	)

	authorizer := middleware.NewAuthorizer(tokenService, map[string]middleware.AccountChecker{
		models.RoleUser:  userService,
		models.RoleAdmin: adminService,
	}, zapLog)

	// Set up router
	router := mux.NewRouter()
	handlers.RegisterRoutes(router, handlers.Handlers{
		Admins:    handlers.NewAdminHandler(adminService, tokenService, zapLog),
		Users:     handlers.NewUserHandler(userService, tokenService, zapLog),
		Campaigns: handlers.NewCampaignHandler(campaignService, zapLog),
		Donations: handlers.NewDonationHandler(donationService, zapLog),
		Payments:  handlers.NewPaymentDetailsHandler(paymentDetailsService, zapLog),
	}, authorizer.Authorize)

	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		zapLog.Fatal("Invalid TRUSTED_PROXIES", zap.Error(err))
	}
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst, 5*time.Minute, proxies)
	router.Use(middleware.RequestID, middleware.AccessLog(zapLog), limiter.Middleware)

	// Start server
	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      middleware.CORS(cfg.CORSAllowedOrigins)(router),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLog.Info("Server running", zap.String("port", cfg.Port), zap.Bool("events", cfg.EventsEnabled()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zapLog.Error("Server forced to shut down", zap.Error(err))
	}
}
