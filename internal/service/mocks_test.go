package service

import (
	"context"
	"time"

	"flexicredit-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

type mockAccountRepo struct {
	mock.Mock
}

func (m *mockAccountRepo) Create(ctx context.Context, account *domain.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *mockAccountRepo) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *mockAccountRepo) GetByExternalID(ctx context.Context, externalID string) (*domain.Account, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *mockAccountRepo) Archive(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockLedgerRepo struct {
	mock.Mock
}

func (m *mockLedgerRepo) Append(ctx context.Context, req domain.AppendRequest) (*domain.LedgerEntry, bool, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Bool(1), args.Error(2)
}

func (m *mockLedgerRepo) GetBalance(ctx context.Context, accountID int64) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLedgerRepo) FindByIdempotencyKey(ctx context.Context, key string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *mockLedgerRepo) ListEntries(ctx context.Context, accountID int64, filter domain.HistoryFilter, page, pageSize int64) ([]domain.LedgerEntry, int64, error) {
	args := m.Called(ctx, accountID, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Get(1).(int64), args.Error(2)
}

type mockCampaignRepo struct {
	mock.Mock
}

func (m *mockCampaignRepo) CreateWithCharge(ctx context.Context, p *domain.CampaignParticipation, charge domain.AppendRequest) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, p, charge)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *mockCampaignRepo) GetByID(ctx context.Context, id int64) (*domain.CampaignParticipation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CampaignParticipation), args.Error(1)
}

func (m *mockCampaignRepo) HasEngaged(ctx context.Context, accountID int64, campaignType domain.CampaignType) (bool, error) {
	args := m.Called(ctx, accountID, campaignType)
	return args.Bool(0), args.Error(1)
}

func (m *mockCampaignRepo) ListByAccount(ctx context.Context, accountID int64) ([]domain.CampaignParticipation, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CampaignParticipation), args.Error(1)
}

func (m *mockCampaignRepo) ListDue(ctx context.Context, asOf time.Time) ([]domain.CampaignParticipation, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CampaignParticipation), args.Error(1)
}

func (m *mockCampaignRepo) UpdateStatus(ctx context.Context, id int64, status domain.BillingStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockCampaignRepo) AdvanceBilling(ctx context.Context, id int64, status domain.BillingStatus, next time.Time) error {
	return m.Called(ctx, id, status, next).Error(0)
}

func (m *mockCampaignRepo) SetTierCost(ctx context.Context, id int64, cost int64) error {
	return m.Called(ctx, id, cost).Error(0)
}

func (m *mockCampaignRepo) ChangeTierWithCharge(ctx context.Context, id int64, cost int64, charge domain.AppendRequest) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, id, cost, charge)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *mockCampaignRepo) RecordPerformance(ctx context.Context, id int64, leads, conversions, revenue int64) error {
	return m.Called(ctx, id, leads, conversions, revenue).Error(0)
}

type mockDeductionRepo struct {
	mock.Mock
}

func (m *mockDeductionRepo) Create(ctx context.Context, d *domain.RecurringDeduction) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDeductionRepo) GetByID(ctx context.Context, id int64) (*domain.RecurringDeduction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringDeduction), args.Error(1)
}

func (m *mockDeductionRepo) ListDue(ctx context.Context, asOf time.Time) ([]domain.RecurringDeduction, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecurringDeduction), args.Error(1)
}

func (m *mockDeductionRepo) AdvanceBilling(ctx context.Context, id int64, next time.Time) error {
	return m.Called(ctx, id, next).Error(0)
}

func (m *mockDeductionRepo) Cancel(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	return m.Called(ctx, note).Error(0)
}

func (m *mockNotificationRepo) List(ctx context.Context, accountID int64, page, pageSize int64) ([]domain.Notification, int64, error) {
	args := m.Called(ctx, accountID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *mockNotificationRepo) MarkAsRead(ctx context.Context, id, accountID int64) error {
	return m.Called(ctx, id, accountID).Error(0)
}

type mockEmailService struct {
	mock.Mock
}

func (m *mockEmailService) SendInsufficientFundsNotice(ctx context.Context, email, name string, campaignType domain.CampaignType, balance int64) error {
	return m.Called(ctx, email, name, campaignType, balance).Error(0)
}

func (m *mockEmailService) SendCampaignStatusNotice(ctx context.Context, email, name string, campaignType domain.CampaignType, status domain.BillingStatus) error {
	return m.Called(ctx, email, name, campaignType, status).Error(0)
}

func (m *mockEmailService) SendTierChangeNotice(ctx context.Context, email, name string, campaignType domain.CampaignType, oldCost, newCost int64) error {
	return m.Called(ctx, email, name, campaignType, oldCost, newCost).Error(0)
}

func (m *mockEmailService) SendDeductionNotice(ctx context.Context, email, name string, amount int64, reason string) error {
	return m.Called(ctx, email, name, amount, reason).Error(0)
}

func (m *mockEmailService) SendLowBalanceWarning(ctx context.Context, email, name string, balance, threshold int64) error {
	return m.Called(ctx, email, name, balance, threshold).Error(0)
}
