package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"flexicredit-backend/internal/domain"
	"flexicredit-backend/internal/repository"
)

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO accounts (external_id, email, name, balance, status, created_on, updated_on)
		 VALUES ($1, $2, $3, 0, $4, NOW(), NOW()) RETURNING id, balance, created_on, updated_on`,
		account.ExternalID, account.Email, account.Name, domain.AccountStatusActive,
	).Scan(&account.ID, &account.Balance, &account.CreatedOn, &account.UpdatedOn)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	account.Status = domain.AccountStatusActive
	return nil
}

const selectAccountColumns = `SELECT id, external_id, COALESCE(email, ''), COALESCE(name, ''), balance, status, created_on, updated_on FROM accounts`

func (r *accountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx, selectAccountColumns+` WHERE id = $1`, id))
}

func (r *accountRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx, selectAccountColumns+` WHERE external_id = $1`, externalID))
}

// Archive soft-archives an account. Accounts are never deleted: the ledger
// history must remain attributable.
func (r *accountRepository) Archive(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET status = $1, updated_on = NOW() WHERE id = $2`,
		domain.AccountStatusArchived, id,
	)
	if err != nil {
		return fmt.Errorf("archive account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.ExternalID, &a.Email, &a.Name, &a.Balance, &a.Status, &a.CreatedOn, &a.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
