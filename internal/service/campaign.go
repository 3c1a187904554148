package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flexicredit-backend/internal/billing"
	"flexicredit-backend/internal/domain"
	"flexicredit-backend/internal/logger"
	"flexicredit-backend/internal/repository"
)

// ErrNotOwner is returned when a caller acts on a participation held by
// a different account.
var ErrNotOwner = errors.New("participation does not belong to this account")

type campaignService struct {
	campaignRepo repository.CampaignRepository
	ledgerRepo   repository.LedgerRepository
	accountRepo  repository.AccountRepository
	noteRepo     repository.NotificationRepository
	emailSvc     EmailService
	now          func() time.Time
}

func NewCampaignService(
	campaignRepo repository.CampaignRepository,
	ledgerRepo repository.LedgerRepository,
	accountRepo repository.AccountRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
) CampaignService {
	return &campaignService{
		campaignRepo: campaignRepo,
		ledgerRepo:   ledgerRepo,
		accountRepo:  accountRepo,
		noteRepo:     noteRepo,
		emailSvc:     emailSvc,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *campaignService) Launch(ctx context.Context, input LaunchInput) (*domain.CampaignParticipation, error) {
	if !input.CampaignType.Valid() {
		return nil, fmt.Errorf("unknown campaign type %q", input.CampaignType)
	}
	if input.MonthlyCost <= 0 {
		return nil, errors.New("monthly cost must be positive")
	}

	engaged, err := s.campaignRepo.HasEngaged(ctx, input.AccountID, input.CampaignType)
	if err != nil {
		return nil, err
	}
	if engaged {
		// The occupied slot may be this request's own committed first
		// attempt; a retry replays it instead of conflicting.
		if p := s.replayedLaunch(ctx, input); p != nil {
			return p, nil
		}
		return nil, domain.ErrDuplicateActiveCampaign
	}

	today := s.now()
	firstCharge := input.MonthlyCost
	next := billing.NextBillingDate(today)
	if input.ProrateFirstMonth {
		firstCharge, next = billing.ProrateFirstMonth(input.MonthlyCost, today)
	}

	p := &domain.CampaignParticipation{
		AccountID:       input.AccountID,
		CampaignType:    input.CampaignType,
		ConsultantName:  input.ConsultantName,
		MonthlyCost:     input.MonthlyCost,
		BillingStatus:   domain.BillingStatusActive,
		NextBillingDate: next,
		EndDate:         input.EndDate,
	}
	charge := domain.AppendRequest{
		AccountID:      input.AccountID,
		Amount:         -firstCharge,
		Category:       domain.CategoryCampaign,
		Description:    fmt.Sprintf("%s campaign launch", input.CampaignType),
		IdempotencyKey: input.IdempotencyKey,
	}

	// All-or-nothing: no participation row survives a rejected charge.
	if _, err := s.campaignRepo.CreateWithCharge(ctx, p, charge); err != nil {
		return nil, err
	}

	logger.Info("Campaign launched",
		"participation_id", p.ID, "account_id", p.AccountID,
		"campaign_type", p.CampaignType, "first_charge", firstCharge)
	s.notifyStatus(ctx, p, "Campaign launched",
		fmt.Sprintf("Your %s campaign is live. %d credits were charged for the first cycle.", p.CampaignType, firstCharge))
	return p, nil
}

func (s *campaignService) Pause(ctx context.Context, accountID, participationID int64) (*domain.CampaignParticipation, error) {
	p, err := s.getOwned(ctx, accountID, participationID)
	if err != nil {
		return nil, err
	}
	// Pausing anything not active is a harmless no-op; a double-click on
	// the pause button should not surface an error.
	if p.BillingStatus != domain.BillingStatusActive {
		return p, nil
	}
	if err := s.campaignRepo.UpdateStatus(ctx, p.ID, domain.BillingStatusPaused); err != nil {
		return nil, err
	}
	p.BillingStatus = domain.BillingStatusPaused
	s.notifyStatus(ctx, p, "Campaign paused",
		fmt.Sprintf("Your %s campaign is paused. No further charges until you resume.", p.CampaignType))
	return p, nil
}

func (s *campaignService) Resume(ctx context.Context, accountID, participationID int64) (*domain.CampaignParticipation, error) {
	p, err := s.getOwned(ctx, accountID, participationID)
	if err != nil {
		return nil, err
	}
	if p.BillingStatus == domain.BillingStatusActive {
		return p, nil
	}
	if err := domain.ValidateTransition(p.BillingStatus, domain.BillingStatusActive); err != nil {
		return nil, err
	}

	// A charge that fell due while paused is collected before the status
	// flips. The period-based key matches the evaluator's, so resuming on
	// the same day an evaluator run already billed is a no-op replay.
	if billing.Due(p.NextBillingDate, s.now()) {
		_, _, err := s.ledgerRepo.Append(ctx, domain.AppendRequest{
			AccountID:      p.AccountID,
			Amount:         -p.MonthlyCost,
			Category:       domain.CategoryCampaign,
			Description:    fmt.Sprintf("%s campaign monthly charge", p.CampaignType),
			IdempotencyKey: chargeKey(p),
		})
		if err != nil {
			return nil, err
		}
		next := billing.NextBillingDate(p.NextBillingDate)
		if err := s.campaignRepo.AdvanceBilling(ctx, p.ID, domain.BillingStatusActive, next); err != nil {
			return nil, err
		}
		p.NextBillingDate = next
	} else {
		if err := s.campaignRepo.UpdateStatus(ctx, p.ID, domain.BillingStatusActive); err != nil {
			return nil, err
		}
	}
	p.BillingStatus = domain.BillingStatusActive
	s.notifyStatus(ctx, p, "Campaign resumed",
		fmt.Sprintf("Your %s campaign is active again.", p.CampaignType))
	return p, nil
}

func (s *campaignService) ChangeTier(ctx context.Context, accountID, participationID, newCost int64, idempotencyKey string) (*domain.CampaignParticipation, error) {
	if newCost <= 0 {
		return nil, errors.New("monthly cost must be positive")
	}
	p, err := s.getOwned(ctx, accountID, participationID)
	if err != nil {
		return nil, err
	}
	if p.BillingStatus.Terminal() {
		return nil, fmt.Errorf("%w: cannot change tier of a %s campaign", domain.ErrInvalidTransition, p.BillingStatus)
	}

	oldCost := p.MonthlyCost
	switch domain.ClassifyTierChange(oldCost, newCost) {
	case domain.TierChangeNone:
		return p, nil

	case domain.TierChangeDowngrade:
		// Deferred: the lower cost applies from the next cycle onward,
		// nothing is charged or refunded now.
		if err := s.campaignRepo.SetTierCost(ctx, p.ID, newCost); err != nil {
			return nil, err
		}

	case domain.TierChangeUpgrade:
		delta := newCost - oldCost
		charge := domain.AppendRequest{
			AccountID:      p.AccountID,
			Amount:         -delta,
			Category:       domain.CategoryCampaign,
			Description:    fmt.Sprintf("%s campaign tier upgrade (%d -> %d)", p.CampaignType, oldCost, newCost),
			IdempotencyKey: idempotencyKey,
		}
		if _, err := s.campaignRepo.ChangeTierWithCharge(ctx, p.ID, newCost, charge); err != nil {
			return nil, err
		}
	}

	p.MonthlyCost = newCost
	logger.Info("Campaign tier changed",
		"participation_id", p.ID, "old_cost", oldCost, "new_cost", newCost)
	s.notifyTierChange(ctx, p, oldCost, newCost)
	return p, nil
}

func (s *campaignService) Stop(ctx context.Context, accountID, participationID int64) (*domain.CampaignParticipation, error) {
	p, err := s.getOwned(ctx, accountID, participationID)
	if err != nil {
		return nil, err
	}
	target := domain.BillingStatusStopped
	if p.EndDate != nil && !s.now().Before(*p.EndDate) {
		target = domain.BillingStatusCompleted
	}
	if err := domain.ValidateTransition(p.BillingStatus, target); err != nil {
		return nil, err
	}
	if err := s.campaignRepo.UpdateStatus(ctx, p.ID, target); err != nil {
		return nil, err
	}
	p.BillingStatus = target
	s.notifyStatus(ctx, p, "Campaign ended",
		fmt.Sprintf("Your %s campaign has ended. Launch a new one any time.", p.CampaignType))
	return p, nil
}

func (s *campaignService) ListCampaigns(ctx context.Context, accountID int64) ([]domain.CampaignParticipation, error) {
	return s.campaignRepo.ListByAccount(ctx, accountID)
}

func (s *campaignService) RecordPerformance(ctx context.Context, participationID, leads, conversions, revenue int64) error {
	return s.campaignRepo.RecordPerformance(ctx, participationID, leads, conversions, revenue)
}

// replayedLaunch resolves a retried launch: when the request's idempotency
// key already wrote this account's launch charge, the engaged participation
// it created is returned so the retry is a no-op success.
func (s *campaignService) replayedLaunch(ctx context.Context, input LaunchInput) *domain.CampaignParticipation {
	if input.IdempotencyKey == "" {
		return nil
	}
	entry, err := s.ledgerRepo.FindByIdempotencyKey(ctx, input.IdempotencyKey)
	if err != nil {
		if !errors.Is(err, domain.ErrLedgerEntryNotFound) {
			logger.Error("Failed to look up launch idempotency key",
				"account_id", input.AccountID, "error", err)
		}
		return nil
	}
	if entry.AccountID != input.AccountID || entry.Category != domain.CategoryCampaign {
		return nil
	}

	list, err := s.campaignRepo.ListByAccount(ctx, input.AccountID)
	if err != nil {
		logger.Error("Failed to list participations for launch replay",
			"account_id", input.AccountID, "error", err)
		return nil
	}
	for i := range list {
		p := &list[i]
		if p.CampaignType == input.CampaignType && p.BillingStatus.Engaged() {
			return p
		}
	}
	return nil
}

func (s *campaignService) getOwned(ctx context.Context, accountID, participationID int64) (*domain.CampaignParticipation, error) {
	p, err := s.campaignRepo.GetByID(ctx, participationID)
	if err != nil {
		return nil, err
	}
	if p.AccountID != accountID {
		return nil, ErrNotOwner
	}
	return p, nil
}

// chargeKey identifies one participation's charge for one billing period.
func chargeKey(p *domain.CampaignParticipation) string {
	return fmt.Sprintf("campaign:%d:%s", p.ID, billing.PeriodKey(p.NextBillingDate))
}

// notifyStatus records an in-app notification and emails the account.
// Delivery failures are logged, never propagated: the ledger mutation has
// already committed.
func (s *campaignService) notifyStatus(ctx context.Context, p *domain.CampaignParticipation, title, message string) {
	note := &domain.Notification{
		AccountID: p.AccountID,
		Title:     title,
		Message:   message,
		Attributes: map[string]string{
			"participation_id": fmt.Sprintf("%d", p.ID),
			"campaign_type":    string(p.CampaignType),
			"billing_status":   string(p.BillingStatus),
		},
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.Error("Failed to record notification", "account_id", p.AccountID, "error", err)
	}
	account, err := s.accountRepo.GetByID(ctx, p.AccountID)
	if err != nil {
		logger.Error("Failed to load account for email", "account_id", p.AccountID, "error", err)
		return
	}
	if err := s.emailSvc.SendCampaignStatusNotice(ctx, account.Email, account.Name, p.CampaignType, p.BillingStatus); err != nil {
		logger.Error("Failed to send campaign status email", "account_id", p.AccountID, "error", err)
	}
}

func (s *campaignService) notifyTierChange(ctx context.Context, p *domain.CampaignParticipation, oldCost, newCost int64) {
	note := &domain.Notification{
		AccountID: p.AccountID,
		Title:     "Campaign tier changed",
		Message:   fmt.Sprintf("Your %s campaign tier changed from %d to %d credits/month.", p.CampaignType, oldCost, newCost),
		Attributes: map[string]string{
			"participation_id": fmt.Sprintf("%d", p.ID),
			"campaign_type":    string(p.CampaignType),
		},
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.Error("Failed to record notification", "account_id", p.AccountID, "error", err)
	}
	account, err := s.accountRepo.GetByID(ctx, p.AccountID)
	if err != nil {
		logger.Error("Failed to load account for email", "account_id", p.AccountID, "error", err)
		return
	}
	if err := s.emailSvc.SendTierChangeNotice(ctx, account.Email, account.Name, p.CampaignType, oldCost, newCost); err != nil {
		logger.Error("Failed to send tier change email", "account_id", p.AccountID, "error", err)
	}
}
