package service

import (
	"context"
	"errors"
	"fmt"

	"flexicredit-backend/internal/domain"
	"flexicredit-backend/internal/logger"
	"flexicredit-backend/internal/repository"
)

type accountService struct {
	accountRepo repository.AccountRepository
	ledgerRepo  repository.LedgerRepository
	signupBonus int64
}

func NewAccountService(accountRepo repository.AccountRepository, ledgerRepo repository.LedgerRepository, signupBonus int64) AccountService {
	return &accountService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		signupBonus: signupBonus,
	}
}

func (s *accountService) EnsureAccount(ctx context.Context, externalID, email, name string) (*domain.Account, error) {
	account, err := s.accountRepo.GetByExternalID(ctx, externalID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	account = &domain.Account{ExternalID: externalID, Email: email, Name: name}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}
	logger.Info("Account created", "account_id", account.ID, "external_id", externalID)

	if s.signupBonus > 0 {
		// Keyed on the external identity so a raced double-signup cannot
		// grant the bonus twice.
		_, _, err := s.ledgerRepo.Append(ctx, domain.AppendRequest{
			AccountID:      account.ID,
			Amount:         s.signupBonus,
			Category:       domain.CategorySystem,
			Description:    "Signup bonus",
			IdempotencyKey: fmt.Sprintf("signup-bonus:%s", externalID),
		})
		if err != nil {
			logger.Error("Failed to grant signup bonus", "account_id", account.ID, "error", err)
		} else {
			account.Balance += s.signupBonus
		}
	}
	return account, nil
}

func (s *accountService) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	return s.accountRepo.GetByID(ctx, id)
}

func (s *accountService) ArchiveAccount(ctx context.Context, id int64) error {
	return s.accountRepo.Archive(ctx, id)
}
