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

type deductionService struct {
	deductionRepo repository.DeductionRepository
	accountRepo   repository.AccountRepository
	noteRepo      repository.NotificationRepository
	now           func() time.Time
}

func NewDeductionService(
	deductionRepo repository.DeductionRepository,
	accountRepo repository.AccountRepository,
	noteRepo repository.NotificationRepository,
) DeductionService {
	return &deductionService{
		deductionRepo: deductionRepo,
		accountRepo:   accountRepo,
		noteRepo:      noteRepo,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *deductionService) CreateDeduction(ctx context.Context, accountID, amount int64, reason string, dayOfMonth int) (*domain.RecurringDeduction, error) {
	if amount <= 0 {
		return nil, errors.New("deduction amount must be positive")
	}
	if reason == "" {
		return nil, errors.New("deduction reason is required")
	}
	if dayOfMonth < 1 || dayOfMonth > 31 {
		return nil, errors.New("day of month must be between 1 and 31")
	}
	if _, err := s.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	d := &domain.RecurringDeduction{
		AccountID:       accountID,
		Amount:          amount,
		Reason:          reason,
		DayOfMonth:      dayOfMonth,
		NextBillingDate: billing.FirstOccurrence(dayOfMonth, s.now()),
	}
	if err := s.deductionRepo.Create(ctx, d); err != nil {
		return nil, err
	}

	logger.Info("Recurring deduction created",
		"deduction_id", d.ID, "account_id", accountID, "amount", amount, "day_of_month", dayOfMonth)
	note := &domain.Notification{
		AccountID: accountID,
		Title:     "Recurring deduction scheduled",
		Message:   reason,
		Attributes: map[string]string{
			"deduction_id": fmt.Sprintf("%d", d.ID),
		},
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.Error("Failed to record notification", "account_id", accountID, "error", err)
	}
	return d, nil
}

func (s *deductionService) CancelDeduction(ctx context.Context, id int64) error {
	if err := s.deductionRepo.Cancel(ctx, id); err != nil {
		return err
	}
	logger.Info("Recurring deduction cancelled", "deduction_id", id)
	return nil
}
