package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flexicredit-backend/internal/billing"
	"flexicredit-backend/internal/domain"
	"flexicredit-backend/internal/logger"
)

// ChargeDueCampaigns bills every active participation whose billing date
// has arrived. Each row is an independent unit of work: one failure is
// logged and the scan continues.
func (jr *JobRunner) ChargeDueCampaigns() {
	jr.runWithRecovery("ChargeDueCampaigns", func() {
		ctx := context.Background()
		today := jr.now()

		due, err := jr.repos.Campaigns.ListDue(ctx, today)
		if err != nil {
			logger.Error("Failed to list due participations", "error", err)
			return
		}

		charged, paused, failed := 0, 0, 0
		for i := range due {
			p := &due[i]
			outcome, err := jr.chargeParticipation(ctx, p, today)
			if err != nil {
				failed++
				logger.Error("Failed to process participation",
					"participation_id", p.ID, "account_id", p.AccountID, "error", err)
				continue
			}
			switch outcome {
			case outcomeCharged:
				charged++
			case outcomePaused:
				paused++
			}
		}

		logger.Info("Campaign billing run completed",
			"due", len(due), "charged", charged, "paused_insufficient_funds", paused, "failed", failed)
	})
}

type chargeOutcome int

const (
	outcomeCharged chargeOutcome = iota
	outcomePaused
	outcomeCompleted
)

func (jr *JobRunner) chargeParticipation(ctx context.Context, p *domain.CampaignParticipation, today time.Time) (chargeOutcome, error) {
	if p.EndDate != nil && !today.Before(*p.EndDate) {
		if err := jr.repos.Campaigns.UpdateStatus(ctx, p.ID, domain.BillingStatusCompleted); err != nil {
			return 0, err
		}
		logger.Info("Campaign completed", "participation_id", p.ID, "account_id", p.AccountID)
		return outcomeCompleted, nil
	}

	// The key covers participation + billing period, so a second run the
	// same day (or a crash between charge and advance) replays as a no-op.
	key := fmt.Sprintf("campaign:%d:%s", p.ID, billing.PeriodKey(p.NextBillingDate))
	_, applied, err := jr.repos.Ledger.Append(ctx, domain.AppendRequest{
		AccountID:      p.AccountID,
		Amount:         -p.MonthlyCost,
		Category:       domain.CategoryCampaign,
		Description:    fmt.Sprintf("%s campaign monthly charge", p.CampaignType),
		IdempotencyKey: key,
	})

	var ife *domain.InsufficientFundsError
	if errors.As(err, &ife) {
		// Billing date stays put so the charge is retried once the
		// account tops up and resumes.
		if uerr := jr.repos.Campaigns.UpdateStatus(ctx, p.ID, domain.BillingStatusPausedInsufficientFunds); uerr != nil {
			return 0, uerr
		}
		jr.notifyInsufficientFunds(ctx, p, ife.Balance)
		return outcomePaused, nil
	}
	if err != nil {
		return 0, err
	}

	next := billing.NextBillingDate(p.NextBillingDate)
	if err := jr.repos.Campaigns.AdvanceBilling(ctx, p.ID, domain.BillingStatusActive, next); err != nil {
		return 0, err
	}
	if applied {
		jr.maybeWarnLowBalance(ctx, p.AccountID)
	}
	return outcomeCharged, nil
}

// ChargeDueDeductions applies admin-imposed recurring fees. These bypass
// the balance floor and always advance by one month, so a re-run the same
// day cannot charge twice.
func (jr *JobRunner) ChargeDueDeductions() {
	jr.runWithRecovery("ChargeDueDeductions", func() {
		ctx := context.Background()
		today := jr.now()

		due, err := jr.repos.Deductions.ListDue(ctx, today)
		if err != nil {
			logger.Error("Failed to list due deductions", "error", err)
			return
		}

		charged, failed := 0, 0
		for i := range due {
			d := &due[i]
			if err := jr.chargeDeduction(ctx, d); err != nil {
				failed++
				logger.Error("Failed to process deduction",
					"deduction_id", d.ID, "account_id", d.AccountID, "error", err)
				continue
			}
			charged++
		}

		logger.Info("Deduction billing run completed",
			"due", len(due), "charged", charged, "failed", failed)
	})
}

func (jr *JobRunner) chargeDeduction(ctx context.Context, d *domain.RecurringDeduction) error {
	key := fmt.Sprintf("deduction:%d:%s", d.ID, billing.PeriodKey(d.NextBillingDate))
	_, _, err := jr.repos.Ledger.Append(ctx, domain.AppendRequest{
		AccountID:      d.AccountID,
		Amount:         -d.Amount,
		Category:       domain.CategorySystem,
		Description:    d.Reason,
		IdempotencyKey: key,
		BypassFloor:    true,
	})
	if err != nil {
		return err
	}

	next := billing.NextMonthOnDay(d.NextBillingDate, d.DayOfMonth)
	if err := jr.repos.Deductions.AdvanceBilling(ctx, d.ID, next); err != nil {
		return err
	}

	jr.notifyDeduction(ctx, d)
	return nil
}

func (jr *JobRunner) notifyInsufficientFunds(ctx context.Context, p *domain.CampaignParticipation, balance int64) {
	note := &domain.Notification{
		AccountID: p.AccountID,
		Title:     "Campaign paused: insufficient funds",
		Message: fmt.Sprintf("Your %s campaign could not be billed (%d credits needed, balance %d). Top up and resume to continue.",
			p.CampaignType, p.MonthlyCost, balance),
		Attributes: map[string]string{
			"participation_id": fmt.Sprintf("%d", p.ID),
			"campaign_type":    string(p.CampaignType),
		},
	}
	if err := jr.repos.Notifications.Create(ctx, note); err != nil {
		logger.Error("Failed to record notification", "account_id", p.AccountID, "error", err)
	}

	account, err := jr.repos.Accounts.GetByID(ctx, p.AccountID)
	if err != nil {
		logger.Error("Failed to load account for email", "account_id", p.AccountID, "error", err)
		return
	}
	if err := jr.email.SendInsufficientFundsNotice(ctx, account.Email, account.Name, p.CampaignType, balance); err != nil {
		logger.Error("Failed to send insufficient funds email", "account_id", p.AccountID, "error", err)
	}
}

func (jr *JobRunner) notifyDeduction(ctx context.Context, d *domain.RecurringDeduction) {
	account, err := jr.repos.Accounts.GetByID(ctx, d.AccountID)
	if err != nil {
		logger.Error("Failed to load account for email", "account_id", d.AccountID, "error", err)
		return
	}
	if err := jr.email.SendDeductionNotice(ctx, account.Email, account.Name, d.Amount, d.Reason); err != nil {
		logger.Error("Failed to send deduction email", "account_id", d.AccountID, "error", err)
	}
}

func (jr *JobRunner) maybeWarnLowBalance(ctx context.Context, accountID int64) {
	threshold := jr.config.Billing.LowBalanceThreshold
	balance, err := jr.repos.Ledger.GetBalance(ctx, accountID)
	if err != nil {
		logger.Error("Failed to read balance for low-balance check", "account_id", accountID, "error", err)
		return
	}
	if balance >= threshold {
		return
	}

	note := &domain.Notification{
		AccountID: accountID,
		Title:     "Low flexi-credit balance",
		Message:   fmt.Sprintf("Your balance is down to %d credits. Top up to keep campaigns running.", balance),
	}
	if err := jr.repos.Notifications.Create(ctx, note); err != nil {
		logger.Error("Failed to record notification", "account_id", accountID, "error", err)
	}
	account, err := jr.repos.Accounts.GetByID(ctx, accountID)
	if err != nil {
		logger.Error("Failed to load account for email", "account_id", accountID, "error", err)
		return
	}
	if err := jr.email.SendLowBalanceWarning(ctx, account.Email, account.Name, balance, threshold); err != nil {
		logger.Error("Failed to send low balance email", "account_id", accountID, "error", err)
	}
}
