package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	httpapi "volunhub-backend/internal/api/http"
	"volunhub-backend/internal/config"
	"volunhub-backend/internal/logger"
	"volunhub-backend/internal/repository/postgres"
	"volunhub-backend/internal/security"
	"volunhub-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting VolunHub Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTTL(), cfg.RefreshTTL())
	authMiddleware := httpapi.NewAuthMiddleware(tokenManager)

	// Initialize notification channels. Both are optional; a missing
	// credential disables the channel and in-app notifications still work.
	var emailSender service.EmailSender
	if cfg.Email.SendGridAPIKey != "" {
		emailSender = service.NewSendGridSender(cfg.Email.SendGridAPIKey, cfg.Email.FromAddress, cfg.Email.FromName)
		logger.Info("Email channel enabled", "from", cfg.Email.FromAddress)
	} else {
		logger.Info("Email channel disabled")
	}

	var pushSender service.PushSender
	if cfg.Push.CredentialsFile != "" {
		pushSender, err = service.NewFCMSender(context.Background(), cfg.Push.CredentialsFile)
		if err != nil {
			logger.Error("Failed to initialize push channel", "error", err)
			log.Fatalf("Failed to initialize push channel: %v", err)
		}
		logger.Info("Push channel enabled")
	} else {
		logger.Info("Push channel disabled")
	}

	notifier := service.NewNotifier(store.NotificationRepository, store.UserRepository, emailSender, pushSender)

	// Initialize Services
	authSvc := service.NewAuthService(store.UserRepository, tokenManager)
	eventSvc := service.NewEventService(
		store.EventRepository,
		store.CategoryRepository,
		store.UserRepository,
		store.RegistrationRepository,
		store.NotificationRepository,
		notifier,
		time.Now,
	)
	regSvc := service.NewRegistrationService(
		store.RegistrationRepository,
		store.EventRepository,
		store.UserRepository,
		notifier,
		cfg.CancelCutoff(),
		time.Now,
	)
	postSvc := service.NewPostService(store.PostRepository, store.EventRepository, time.Now)
	noteSvc := service.NewNotificationService(store.NotificationRepository)
	adminSvc := service.NewAdminService(store.UserRepository, store.CategoryRepository, notifier)

	// Initialize HTTP handlers and router
	handlers := httpapi.Handlers{
		Auth:         httpapi.NewAuthHandler(authSvc),
		Event:        httpapi.NewEventHandler(eventSvc, regSvc),
		Post:         httpapi.NewPostHandler(postSvc),
		Notification: httpapi.NewNotificationHandler(noteSvc),
		Admin:        httpapi.NewAdminHandler(adminSvc),
	}
	router := httpapi.NewRouter(handlers, authMiddleware)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
