package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"flexicredit-backend/internal/domain"
	"flexicredit-backend/internal/repository"

	"github.com/lib/pq"
)

type ledgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Append(ctx context.Context, req domain.AppendRequest) (*domain.LedgerEntry, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin ledger append: %w", err)
	}

	entry, applied, err := appendEntryTx(ctx, tx, req)
	if err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err) && req.IdempotencyKey != "" {
			// Lost a race on the idempotency key; the first writer won,
			// so surface its entry as a no-op success.
			prior, ferr := r.FindByIdempotencyKey(ctx, req.IdempotencyKey)
			if ferr != nil {
				return nil, false, ferr
			}
			if merr := checkReplayMatches(prior, req); merr != nil {
				return nil, false, merr
			}
			return prior, false, nil
		}
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit ledger append: %w", err)
	}
	return entry, applied, nil
}

// appendEntryTx is the single writer for account balances. It locks the
// account row, replays idempotency-key duplicates as no-ops, enforces the
// balance floor, and writes the entry plus the balance update as one unit.
// Shared with the campaign repository so launch and tier-change charges
// join the same transaction as their row mutations.
func appendEntryTx(ctx context.Context, tx *sql.Tx, req domain.AppendRequest) (*domain.LedgerEntry, bool, error) {
	var balance int64
	err := tx.QueryRowContext(ctx,
		`SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`,
		req.AccountID,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("lock account %d: %w", req.AccountID, err)
	}

	if req.IdempotencyKey != "" {
		prior, err := scanEntry(tx.QueryRowContext(ctx,
			selectEntryColumns+` FROM ledger_entries WHERE idempotency_key = $1`,
			req.IdempotencyKey,
		))
		if err == nil {
			if merr := checkReplayMatches(prior, req); merr != nil {
				return nil, false, merr
			}
			return prior, false, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, false, fmt.Errorf("check idempotency key: %w", err)
		}
	}

	if req.Amount < 0 && !req.BypassFloor && balance+req.Amount < domain.MinimumBalance {
		return nil, false, &domain.InsufficientFundsError{
			Balance: balance,
			Amount:  req.Amount,
			Floor:   domain.MinimumBalance,
		}
	}

	entry := &domain.LedgerEntry{
		AccountID:      req.AccountID,
		Amount:         req.Amount,
		Category:       req.Category,
		Description:    req.Description,
		IdempotencyKey: req.IdempotencyKey,
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO ledger_entries (account_id, amount, category, description, idempotency_key, created_on)
		 VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id, created_on`,
		req.AccountID, req.Amount, req.Category, req.Description, nullString(req.IdempotencyKey),
	).Scan(&entry.ID, &entry.CreatedOn)
	if err != nil {
		return nil, false, fmt.Errorf("insert ledger entry: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = balance + $1, updated_on = NOW() WHERE id = $2`,
		req.Amount, req.AccountID,
	); err != nil {
		return nil, false, fmt.Errorf("update balance: %w", err)
	}

	return entry, true, nil
}

func (r *ledgerRepository) GetBalance(ctx context.Context, accountID int64) (int64, error) {
	var balance int64
	err := r.db.QueryRowContext(ctx,
		`SELECT balance FROM accounts WHERE id = $1`, accountID,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrAccountNotFound
	}
	return balance, err
}

func (r *ledgerRepository) ListEntries(ctx context.Context, accountID int64, filter domain.HistoryFilter, page, pageSize int64) ([]domain.LedgerEntry, int64, error) {
	where := `WHERE account_id = $1`
	args := []any{accountID}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		where += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where += fmt.Sprintf(` AND created_on >= $%d`, len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where += fmt.Sprintf(` AND created_on <= $%d`, len(args))
	}

	var count int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM ledger_entries `+where, args...,
	).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	offset := (page - 1) * pageSize
	args = append(args, pageSize, offset)
	query := fmt.Sprintf(
		selectEntryColumns+` FROM ledger_entries %s ORDER BY created_on DESC, id DESC LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args),
	)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, *entry)
	}
	return entries, count, rows.Err()
}

func (r *ledgerRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.LedgerEntry, error) {
	entry, err := scanEntry(r.db.QueryRowContext(ctx,
		selectEntryColumns+` FROM ledger_entries WHERE idempotency_key = $1`, key,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrLedgerEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// checkReplayMatches guards the no-op replay contract: a key only replays
// the request that originally wrote it.
func checkReplayMatches(prior *domain.LedgerEntry, req domain.AppendRequest) error {
	if prior.Amount != req.Amount || prior.Category != req.Category {
		return fmt.Errorf("%w: key %q holds amount %d category %s, request has amount %d category %s",
			domain.ErrIdempotencyMismatch, req.IdempotencyKey,
			prior.Amount, prior.Category, req.Amount, req.Category)
	}
	return nil
}

const selectEntryColumns = `SELECT id, account_id, amount, category, COALESCE(description, ''), COALESCE(idempotency_key, ''), created_on`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	err := row.Scan(&entry.ID, &entry.AccountID, &entry.Amount, &entry.Category,
		&entry.Description, &entry.IdempotencyKey, &entry.CreatedOn)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
