package repository

import (
	"context"
	"time"

	"flexicredit-backend/internal/domain"
)

type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.Account, error)
	Archive(ctx context.Context, id int64) error
}

type LedgerRepository interface {
	// Append writes one ledger entry and moves the denormalized account
	// balance in a single transaction. The boolean is false when the
	// idempotency key matched a previously applied entry, in which case
	// the prior entry is returned and nothing was written.
	Append(ctx context.Context, req domain.AppendRequest) (*domain.LedgerEntry, bool, error)
	GetBalance(ctx context.Context, accountID int64) (int64, error)
	ListEntries(ctx context.Context, accountID int64, filter domain.HistoryFilter, page, pageSize int64) ([]domain.LedgerEntry, int64, error)
	// FindByIdempotencyKey returns the entry a key previously wrote, or
	// ErrLedgerEntryNotFound.
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.LedgerEntry, error)
}

type CampaignRepository interface {
	// CreateWithCharge inserts the participation and appends its first
	// charge in one transaction; neither persists without the other.
	CreateWithCharge(ctx context.Context, p *domain.CampaignParticipation, charge domain.AppendRequest) (*domain.LedgerEntry, error)
	GetByID(ctx context.Context, id int64) (*domain.CampaignParticipation, error)
	HasEngaged(ctx context.Context, accountID int64, campaignType domain.CampaignType) (bool, error)
	ListByAccount(ctx context.Context, accountID int64) ([]domain.CampaignParticipation, error)
	ListDue(ctx context.Context, asOf time.Time) ([]domain.CampaignParticipation, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BillingStatus) error
	AdvanceBilling(ctx context.Context, id int64, status domain.BillingStatus, next time.Time) error
	SetTierCost(ctx context.Context, id int64, cost int64) error
	// ChangeTierWithCharge updates the tier cost and appends the upgrade
	// delta charge in one transaction.
	ChangeTierWithCharge(ctx context.Context, id int64, cost int64, charge domain.AppendRequest) (*domain.LedgerEntry, error)
	RecordPerformance(ctx context.Context, id int64, leads, conversions, revenue int64) error
}

type DeductionRepository interface {
	Create(ctx context.Context, d *domain.RecurringDeduction) error
	GetByID(ctx context.Context, id int64) (*domain.RecurringDeduction, error)
	ListDue(ctx context.Context, asOf time.Time) ([]domain.RecurringDeduction, error)
	AdvanceBilling(ctx context.Context, id int64, next time.Time) error
	Cancel(ctx context.Context, id int64) error
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, accountID int64, page, pageSize int64) ([]domain.Notification, int64, error)
	MarkAsRead(ctx context.Context, id, accountID int64) error
}
