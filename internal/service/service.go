package service

import (
	"context"
	"time"

	"flexicredit-backend/internal/domain"
)

type AccountService interface {
	// EnsureAccount resolves the caller's account from the auth provider
	// identity, creating it (with the signup bonus, if configured) on
	// first touch.
	EnsureAccount(ctx context.Context, externalID, email, name string) (*domain.Account, error)
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)
	ArchiveAccount(ctx context.Context, id int64) error
}

type LedgerService interface {
	Append(ctx context.Context, req domain.AppendRequest) (*domain.LedgerEntry, error)
	GetBalance(ctx context.Context, accountID int64) (int64, error)
	GetHistory(ctx context.Context, accountID int64, filter domain.HistoryFilter, page, pageSize int64) ([]domain.LedgerEntry, int64, error)
	// RecordTopUp appends an already-verified payment-processor credit.
	// The payment event ID is the idempotency key, so webhook redelivery
	// cannot double-credit.
	RecordTopUp(ctx context.Context, accountID, amount int64, paymentEventID string) (*domain.LedgerEntry, error)
	// AdminAdjust is the audited back-office path. Debits may bypass the
	// balance floor only through the explicit flag.
	AdminAdjust(ctx context.Context, accountID, amount int64, description, idempotencyKey string, bypassFloor bool) (*domain.LedgerEntry, error)
}

type LaunchInput struct {
	AccountID         int64
	CampaignType      domain.CampaignType
	ConsultantName    string
	MonthlyCost       int64
	ProrateFirstMonth bool
	EndDate           *time.Time
	IdempotencyKey    string
}

type CampaignService interface {
	Launch(ctx context.Context, input LaunchInput) (*domain.CampaignParticipation, error)
	Pause(ctx context.Context, accountID, participationID int64) (*domain.CampaignParticipation, error)
	Resume(ctx context.Context, accountID, participationID int64) (*domain.CampaignParticipation, error)
	ChangeTier(ctx context.Context, accountID, participationID, newCost int64, idempotencyKey string) (*domain.CampaignParticipation, error)
	Stop(ctx context.Context, accountID, participationID int64) (*domain.CampaignParticipation, error)
	ListCampaigns(ctx context.Context, accountID int64) ([]domain.CampaignParticipation, error)
	RecordPerformance(ctx context.Context, participationID, leads, conversions, revenue int64) error
}

type DeductionService interface {
	CreateDeduction(ctx context.Context, accountID, amount int64, reason string, dayOfMonth int) (*domain.RecurringDeduction, error)
	CancelDeduction(ctx context.Context, id int64) error
}

type NotificationService interface {
	GetNotifications(ctx context.Context, accountID int64, page, pageSize int64) ([]domain.Notification, int64, error)
	MarkAsRead(ctx context.Context, accountID, notificationID int64) error
}

type EmailService interface {
	SendInsufficientFundsNotice(ctx context.Context, email, name string, campaignType domain.CampaignType, balance int64) error
	SendCampaignStatusNotice(ctx context.Context, email, name string, campaignType domain.CampaignType, status domain.BillingStatus) error
	SendTierChangeNotice(ctx context.Context, email, name string, campaignType domain.CampaignType, oldCost, newCost int64) error
	SendDeductionNotice(ctx context.Context, email, name string, amount int64, reason string) error
	SendLowBalanceWarning(ctx context.Context, email, name string, balance, threshold int64) error
}
