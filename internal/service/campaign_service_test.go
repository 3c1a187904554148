package service

import (
	"context"
	"testing"
	"time"

	"flexicredit-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type campaignMocks struct {
	campaigns *mockCampaignRepo
	ledger    *mockLedgerRepo
	accounts  *mockAccountRepo
	notes     *mockNotificationRepo
	email     *mockEmailService
}

func newCampaignServiceForTest(now time.Time) (*campaignService, *campaignMocks) {
	m := &campaignMocks{
		campaigns: new(mockCampaignRepo),
		ledger:    new(mockLedgerRepo),
		accounts:  new(mockAccountRepo),
		notes:     new(mockNotificationRepo),
		email:     new(mockEmailService),
	}
	svc := &campaignService{
		campaignRepo: m.campaigns,
		ledgerRepo:   m.ledger,
		accountRepo:  m.accounts,
		noteRepo:     m.notes,
		emailSvc:     m.email,
		now:          func() time.Time { return now },
	}
	return svc, m
}

// expectNotifications wires the side channels every status change touches.
func (m *campaignMocks) expectNotifications() {
	m.notes.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.accounts.On("GetByID", mock.Anything, mock.Anything).
		Return(&domain.Account{ID: 1, Email: "user@example.com", Name: "User"}, nil)
	m.email.On("SendCampaignStatusNotice", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.email.On("SendTierChangeNotice", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
}

func activeParticipation(next time.Time) *domain.CampaignParticipation {
	return &domain.CampaignParticipation{
		ID:              9,
		AccountID:       1,
		CampaignType:    domain.CampaignFacebookAds,
		MonthlyCost:     1000,
		BillingStatus:   domain.BillingStatusActive,
		NextBillingDate: next,
	}
}

func TestLaunch_DuplicateEngagedCampaignRejected(t *testing.T) {
	svc, m := newCampaignServiceForTest(time.Date(2026, time.April, 16, 12, 0, 0, 0, time.UTC))
	m.campaigns.On("HasEngaged", mock.Anything, int64(1), domain.CampaignFacebookAds).Return(true, nil)

	_, err := svc.Launch(context.Background(), LaunchInput{
		AccountID:    1,
		CampaignType: domain.CampaignFacebookAds,
		MonthlyCost:  1000,
	})

	assert.ErrorIs(t, err, domain.ErrDuplicateActiveCampaign)
	m.campaigns.AssertNotCalled(t, "CreateWithCharge", mock.Anything, mock.Anything, mock.Anything)
}

func TestLaunch_RetryReplaysCommittedFirstAttempt(t *testing.T) {
	svc, m := newCampaignServiceForTest(time.Date(2026, time.April, 16, 12, 0, 0, 0, time.UTC))

	// The first attempt committed; the network retry carries the same key
	// and gets the existing participation back, not a conflict.
	existing := activeParticipation(time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC))
	m.campaigns.On("HasEngaged", mock.Anything, int64(1), domain.CampaignFacebookAds).Return(true, nil)
	m.ledger.On("FindByIdempotencyKey", mock.Anything, "launch-abc").
		Return(&domain.LedgerEntry{ID: 100, AccountID: 1, Amount: -1000, Category: domain.CategoryCampaign, IdempotencyKey: "launch-abc"}, nil)
	m.campaigns.On("ListByAccount", mock.Anything, int64(1)).
		Return([]domain.CampaignParticipation{*existing}, nil)

	p, err := svc.Launch(context.Background(), LaunchInput{
		AccountID:      1,
		CampaignType:   domain.CampaignFacebookAds,
		MonthlyCost:    1000,
		IdempotencyKey: "launch-abc",
	})

	require.NoError(t, err)
	assert.Equal(t, existing.ID, p.ID)
	m.campaigns.AssertNotCalled(t, "CreateWithCharge", mock.Anything, mock.Anything, mock.Anything)
}

func TestLaunch_UnrelatedKeyStillConflicts(t *testing.T) {
	svc, m := newCampaignServiceForTest(time.Date(2026, time.April, 16, 12, 0, 0, 0, time.UTC))

	// The slot is held by someone else's launch; a fresh key proves this
	// request never committed, so it conflicts.
	m.campaigns.On("HasEngaged", mock.Anything, int64(1), domain.CampaignFacebookAds).Return(true, nil)
	m.ledger.On("FindByIdempotencyKey", mock.Anything, "launch-new").
		Return(nil, domain.ErrLedgerEntryNotFound)

	_, err := svc.Launch(context.Background(), LaunchInput{
		AccountID:      1,
		CampaignType:   domain.CampaignFacebookAds,
		MonthlyCost:    1000,
		IdempotencyKey: "launch-new",
	})

	assert.ErrorIs(t, err, domain.ErrDuplicateActiveCampaign)
}

func TestLaunch_ProratedFirstCharge(t *testing.T) {
	// April 16th: 15 of 30 days remain, so half of 1000.
	svc, m := newCampaignServiceForTest(time.Date(2026, time.April, 16, 12, 0, 0, 0, time.UTC))
	m.expectNotifications()
	m.campaigns.On("HasEngaged", mock.Anything, int64(1), domain.CampaignFacebookAds).Return(false, nil)
	m.campaigns.On("CreateWithCharge", mock.Anything,
		mock.MatchedBy(func(p *domain.CampaignParticipation) bool {
			return p.MonthlyCost == 1000 &&
				p.NextBillingDate.Equal(time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC))
		}),
		mock.MatchedBy(func(charge domain.AppendRequest) bool {
			return charge.Amount == -500 && charge.Category == domain.CategoryCampaign
		}),
	).Return(&domain.LedgerEntry{ID: 100}, nil)

	p, err := svc.Launch(context.Background(), LaunchInput{
		AccountID:         1,
		CampaignType:      domain.CampaignFacebookAds,
		MonthlyCost:       1000,
		ProrateFirstMonth: true,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.BillingStatusActive, p.BillingStatus)
	m.campaigns.AssertExpectations(t)
}

func TestLaunch_FullFirstCharge(t *testing.T) {
	svc, m := newCampaignServiceForTest(time.Date(2026, time.April, 16, 12, 0, 0, 0, time.UTC))
	m.expectNotifications()
	m.campaigns.On("HasEngaged", mock.Anything, int64(1), domain.CampaignColdCalling).Return(false, nil)
	m.campaigns.On("CreateWithCharge", mock.Anything, mock.Anything,
		mock.MatchedBy(func(charge domain.AppendRequest) bool {
			return charge.Amount == -1000
		}),
	).Return(&domain.LedgerEntry{ID: 100}, nil)

	_, err := svc.Launch(context.Background(), LaunchInput{
		AccountID:    1,
		CampaignType: domain.CampaignColdCalling,
		MonthlyCost:  1000,
	})

	require.NoError(t, err)
	m.campaigns.AssertExpectations(t)
}

func TestPause_IdempotentWhenNotActive(t *testing.T) {
	svc, m := newCampaignServiceForTest(time.Date(2026, time.April, 16, 0, 0, 0, 0, time.UTC))
	p := activeParticipation(time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC))
	p.BillingStatus = domain.BillingStatusPaused
	m.campaigns.On("GetByID", mock.Anything, int64(9)).Return(p, nil)

	got, err := svc.Pause(context.Background(), 1, 9)

	require.NoError(t, err)
	assert.Equal(t, domain.BillingStatusPaused, got.BillingStatus)
	m.campaigns.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestPause_RejectsForeignParticipation(t *testing.T) {
	svc, m := newCampaignServiceForTest(time.Date(2026, time.April, 16, 0, 0, 0, 0, time.UTC))
	p := activeParticipation(time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC))
	m.campaigns.On("GetByID", mock.Anything, int64(9)).Return(p, nil)

	_, err := svc.Pause(context.Background(), 2, 9)

	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestResume_ChargesWhenBillingFellDue(t *testing.T) {
	now := time.Date(2026, time.April, 16, 12, 0, 0, 0, time.UTC)
	svc, m := newCampaignServiceForTest(now)
	m.expectNotifications()

	p := activeParticipation(time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC))
	p.BillingStatus = domain.BillingStatusPausedInsufficientFunds
	m.campaigns.On("GetByID", mock.Anything, int64(9)).Return(p, nil)
	m.ledger.On("Append", mock.Anything, mock.MatchedBy(func(req domain.AppendRequest) bool {
		return req.Amount == -1000 && req.IdempotencyKey == "campaign:9:2026-04"
	})).Return(&domain.LedgerEntry{ID: 100}, true, nil)
	m.campaigns.On("AdvanceBilling", mock.Anything, int64(9), domain.BillingStatusActive,
		time.Date(2026, time.May, 10, 0, 0, 0, 0, time.UTC)).Return(nil)

	got, err := svc.Resume(context.Background(), 1, 9)

	require.NoError(t, err)
	assert.Equal(t, domain.BillingStatusActive, got.BillingStatus)
	assert.Equal(t, time.Date(2026, time.May, 10, 0, 0, 0, 0, time.UTC), got.NextBillingDate)
	m.ledger.AssertExpectations(t)
	m.campaigns.AssertExpectations(t)
}

func TestResume_NoChargeBeforeBillingDate(t *testing.T) {
	now := time.Date(2026, time.April, 16, 12, 0, 0, 0, time.UTC)
	svc, m := newCampaignServiceForTest(now)
	m.expectNotifications()

	p := activeParticipation(time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC))
	p.BillingStatus = domain.BillingStatusPaused
	m.campaigns.On("GetByID", mock.Anything, int64(9)).Return(p, nil)
	m.campaigns.On("UpdateStatus", mock.Anything, int64(9), domain.BillingStatusActive).Return(nil)

	got, err := svc.Resume(context.Background(), 1, 9)

	require.NoError(t, err)
	assert.Equal(t, domain.BillingStatusActive, got.BillingStatus)
	m.ledger.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestResume_TerminalRejected(t *testing.T) {
	svc, m := newCampaignServiceForTest(time.Date(2026, time.April, 16, 0, 0, 0, 0, time.UTC))
	p := activeParticipation(time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC))
	p.BillingStatus = domain.BillingStatusStopped
	m.campaigns.On("GetByID", mock.Anything, int64(9)).Return(p, nil)

	_, err := svc.Resume(context.Background(), 1, 9)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestChangeTier_UpgradeChargesDelta(t *testing.T) {
	svc, m := newCampaignServiceForTest(time.Date(2026, time.April, 16, 0, 0, 0, 0, time.UTC))
	m.expectNotifications()

	p := activeParticipation(time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC))
	m.campaigns.On("GetByID", mock.Anything, int64(9)).Return(p, nil)
	m.campaigns.On("ChangeTierWithCharge", mock.Anything, int64(9), int64(1500),
		mock.MatchedBy(func(charge domain.AppendRequest) bool {
			return charge.Amount == -500 && charge.IdempotencyKey == "tier-xyz"
		}),
	).Return(&domain.LedgerEntry{ID: 101}, nil)

	got, err := svc.ChangeTier(context.Background(), 1, 9, 1500, "tier-xyz")

	require.NoError(t, err)
	assert.Equal(t, int64(1500), got.MonthlyCost)
	m.campaigns.AssertExpectations(t)
}

func TestChangeTier_DowngradeDeferred(t *testing.T) {
	svc, m := newCampaignServiceForTest(time.Date(2026, time.April, 16, 0, 0, 0, 0, time.UTC))
	m.expectNotifications()

	p := activeParticipation(time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC))
	m.campaigns.On("GetByID", mock.Anything, int64(9)).Return(p, nil)
	m.campaigns.On("SetTierCost", mock.Anything, int64(9), int64(600)).Return(nil)

	got, err := svc.ChangeTier(context.Background(), 1, 9, 600, "tier-xyz")

	require.NoError(t, err)
	assert.Equal(t, int64(600), got.MonthlyCost)
	m.campaigns.AssertNotCalled(t, "ChangeTierWithCharge", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChangeTier_SameCostIsNoOp(t *testing.T) {
	svc, m := newCampaignServiceForTest(time.Date(2026, time.April, 16, 0, 0, 0, 0, time.UTC))
	p := activeParticipation(time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC))
	m.campaigns.On("GetByID", mock.Anything, int64(9)).Return(p, nil)

	got, err := svc.ChangeTier(context.Background(), 1, 9, 1000, "tier-xyz")

	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.MonthlyCost)
	m.campaigns.AssertNotCalled(t, "SetTierCost", mock.Anything, mock.Anything, mock.Anything)
	m.campaigns.AssertNotCalled(t, "ChangeTierWithCharge", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChangeTier_TerminalRejected(t *testing.T) {
	svc, m := newCampaignServiceForTest(time.Date(2026, time.April, 16, 0, 0, 0, 0, time.UTC))
	p := activeParticipation(time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC))
	p.BillingStatus = domain.BillingStatusCompleted
	m.campaigns.On("GetByID", mock.Anything, int64(9)).Return(p, nil)

	_, err := svc.ChangeTier(context.Background(), 1, 9, 1500, "tier-xyz")

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestStop_CompletesWhenEndDatePassed(t *testing.T) {
	now := time.Date(2026, time.April, 16, 12, 0, 0, 0, time.UTC)
	svc, m := newCampaignServiceForTest(now)
	m.expectNotifications()

	end := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	p := activeParticipation(time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC))
	p.EndDate = &end
	m.campaigns.On("GetByID", mock.Anything, int64(9)).Return(p, nil)
	m.campaigns.On("UpdateStatus", mock.Anything, int64(9), domain.BillingStatusCompleted).Return(nil)

	got, err := svc.Stop(context.Background(), 1, 9)

	require.NoError(t, err)
	assert.Equal(t, domain.BillingStatusCompleted, got.BillingStatus)
}

func TestStop_AlreadyStoppedRejected(t *testing.T) {
	svc, m := newCampaignServiceForTest(time.Date(2026, time.April, 16, 0, 0, 0, 0, time.UTC))
	p := activeParticipation(time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC))
	p.BillingStatus = domain.BillingStatusStopped
	m.campaigns.On("GetByID", mock.Anything, int64(9)).Return(p, nil)

	_, err := svc.Stop(context.Background(), 1, 9)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
