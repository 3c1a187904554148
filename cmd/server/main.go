package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	api "flexicredit-backend/internal/api/http"
	"flexicredit-backend/internal/config"
	"flexicredit-backend/internal/logger"
	"flexicredit-backend/internal/repository/postgres"
	"flexicredit-backend/internal/security"
	"flexicredit-backend/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting FlexiCredit API server...", "log_level", cfg.Log.Level)

	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)

	emailService := service.NewEmailService(
		cfg.SendGrid.APIKey,
		cfg.SendGrid.FromEmail,
		cfg.SendGrid.FromName,
	)
	accountService := service.NewAccountService(
		store.AccountRepository,
		store.LedgerRepository,
		cfg.Billing.SignupBonus,
	)
	ledgerService := service.NewLedgerService(store.LedgerRepository)
	campaignService := service.NewCampaignService(
		store.CampaignRepository,
		store.LedgerRepository,
		store.AccountRepository,
		store.NotificationRepository,
		emailService,
	)
	deductionService := service.NewDeductionService(
		store.DeductionRepository,
		store.AccountRepository,
		store.NotificationRepository,
	)
	notificationService := service.NewNotificationService(store.NotificationRepository)

	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	handler := api.NewAPI(
		accountService,
		ledgerService,
		campaignService,
		deductionService,
		notificationService,
		tokenManager,
	)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	logger.Info("Server stopped")
}
