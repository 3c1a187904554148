package jobs

import (
	"context"
	"time"

	"flexicredit-backend/internal/config"
	"flexicredit-backend/internal/lock"
	"flexicredit-backend/internal/logger"
	"flexicredit-backend/internal/repository"
	"flexicredit-backend/internal/service"
)

// Repos holds all repository dependencies needed by jobs
type Repos struct {
	Accounts      repository.AccountRepository
	Ledger        repository.LedgerRepository
	Campaigns     repository.CampaignRepository
	Deductions    repository.DeductionRepository
	Notifications repository.NotificationRepository
}

// LockFactory builds the per-job run lock. Nil when Redis is not
// configured; jobs then rely on ledger idempotency keys alone.
type LockFactory func(jobName string) *lock.RunLock

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	repos   Repos
	email   service.EmailService
	config  *config.Config
	lockFor LockFactory
	now     func() time.Time
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(repos Repos, email service.EmailService, cfg *config.Config, lockFor LockFactory) *JobRunner {
	return &JobRunner{
		repos:   repos,
		email:   email,
		config:  cfg,
		lockFor: lockFor,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Config returns the runner's configuration
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery and, when a lock
// factory is present, single-instance exclusion per job.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	if jr.lockFor != nil {
		l := jr.lockFor(jobName)
		ctx := context.Background()
		ok, err := l.TryAcquire(ctx)
		if err != nil {
			// Idempotency keys make a duplicate run harmless, so a lock
			// outage degrades to running without exclusion.
			logger.Warn("Run lock unavailable, proceeding without it", "job", jobName, "error", err)
		} else if !ok {
			logger.Info("Skipping job, another instance holds the run lock", "job", jobName)
			return
		} else {
			defer func() {
				if err := l.Release(ctx); err != nil {
					logger.Warn("Failed to release run lock", "job", jobName, "error", err)
				}
			}()
		}
	}

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllDailyJobs runs all daily jobs (for manual execution)
func (jr *JobRunner) RunAllDailyJobs() {
	jr.ChargeDueCampaigns()
	jr.ChargeDueDeductions()
}
