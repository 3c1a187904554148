package service

import (
	"context"
	"errors"
	"fmt"

	"flexicredit-backend/internal/domain"
	"flexicredit-backend/internal/logger"
	"flexicredit-backend/internal/repository"
)

var (
	errZeroAmount         = errors.New("amount must be a non-zero integer")
	errUnknownCategory    = errors.New("unknown ledger category")
	errMissingDescription = errors.New("admin-initiated entries require a description")
	errMissingEventID     = errors.New("payment event id is required")
)

type ledgerService struct {
	ledgerRepo repository.LedgerRepository
}

func NewLedgerService(ledgerRepo repository.LedgerRepository) LedgerService {
	return &ledgerService{ledgerRepo: ledgerRepo}
}

func (s *ledgerService) Append(ctx context.Context, req domain.AppendRequest) (*domain.LedgerEntry, error) {
	if req.Amount == 0 {
		return nil, errZeroAmount
	}
	if !req.Category.Valid() {
		return nil, fmt.Errorf("%w: %q", errUnknownCategory, req.Category)
	}
	if req.Category.AdminInitiated() && req.Description == "" {
		return nil, errMissingDescription
	}
	if req.BypassFloor && !req.Category.AdminInitiated() {
		return nil, fmt.Errorf("category %s may not bypass the balance floor", req.Category)
	}

	entry, applied, err := s.ledgerRepo.Append(ctx, req)
	if err != nil {
		return nil, err
	}
	if !applied {
		logger.Info("Duplicate ledger append replayed as no-op",
			"account_id", req.AccountID, "idempotency_key", req.IdempotencyKey, "entry_id", entry.ID)
	}
	return entry, nil
}

func (s *ledgerService) GetBalance(ctx context.Context, accountID int64) (int64, error) {
	return s.ledgerRepo.GetBalance(ctx, accountID)
}

func (s *ledgerService) GetHistory(ctx context.Context, accountID int64, filter domain.HistoryFilter, page, pageSize int64) ([]domain.LedgerEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.ledgerRepo.ListEntries(ctx, accountID, filter, page, pageSize)
}

func (s *ledgerService) RecordTopUp(ctx context.Context, accountID, amount int64, paymentEventID string) (*domain.LedgerEntry, error) {
	if amount <= 0 {
		return nil, errZeroAmount
	}
	if paymentEventID == "" {
		return nil, errMissingEventID
	}
	return s.Append(ctx, domain.AppendRequest{
		AccountID:      accountID,
		Amount:         amount,
		Category:       domain.CategoryPurchase,
		Description:    "Flexi-credit purchase",
		IdempotencyKey: fmt.Sprintf("payment:%s", paymentEventID),
	})
}

func (s *ledgerService) AdminAdjust(ctx context.Context, accountID, amount int64, description, idempotencyKey string, bypassFloor bool) (*domain.LedgerEntry, error) {
	entry, err := s.Append(ctx, domain.AppendRequest{
		AccountID:      accountID,
		Amount:         amount,
		Category:       domain.CategoryAdminCredit,
		Description:    description,
		IdempotencyKey: idempotencyKey,
		BypassFloor:    bypassFloor && amount < 0,
	})
	if err != nil {
		return nil, err
	}
	if bypassFloor && amount < 0 {
		logger.Warn("Admin debit bypassed balance floor",
			"account_id", accountID, "amount", amount, "description", description)
	}
	return entry, nil
}
