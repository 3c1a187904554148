package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"flexicredit-backend/internal/config"
	"flexicredit-backend/internal/jobs"
	"flexicredit-backend/internal/lock"
	"flexicredit-backend/internal/logger"
	"flexicredit-backend/internal/repository/postgres"
	"flexicredit-backend/internal/scheduler"
	"flexicredit-backend/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit ('charge-campaigns', 'charge-deductions', 'all')")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting FlexiCredit billing runner...", "log_level", cfg.Log.Level)

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

	var lockFactory jobs.LockFactory
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		expiration := time.Duration(cfg.Billing.RunLockSeconds) * time.Second
		lockFactory = func(jobName string) *lock.RunLock {
			return lock.NewRunLock(client, "billing:lock:"+jobName, uuid.NewString(), expiration)
		}
		logger.Info("Run lock enabled", "redis_addr", cfg.Redis.Addr)
	} else {
		logger.Info("Run lock disabled, no Redis configured")
	}

	jobRunner := jobs.NewJobRunner(jobs.Repos{
		Accounts:      store.AccountRepository,
		Ledger:        store.LedgerRepository,
		Campaigns:     store.CampaignRepository,
		Deductions:    store.DeductionRepository,
		Notifications: store.NotificationRepository,
	}, emailService, cfg, lockFactory)

	if *runOnce != "" {
		runSingleJob(jobRunner, *runOnce)
		return
	}

	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sched.Stop()
}

func runSingleJob(jobRunner *jobs.JobRunner, name string) {
	switch name {
	case "charge-campaigns":
		jobRunner.ChargeDueCampaigns()
	case "charge-deductions":
		jobRunner.ChargeDueDeductions()
	case "all":
		jobRunner.RunAllDailyJobs()
	default:
		log.Fatalf("Unknown job: %s", name)
	}
}
