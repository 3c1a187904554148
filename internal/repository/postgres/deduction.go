package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"flexicredit-backend/internal/domain"
	"flexicredit-backend/internal/repository"
)

type deductionRepository struct {
	db *sql.DB
}

func NewDeductionRepository(db *sql.DB) repository.DeductionRepository {
	return &deductionRepository{db: db}
}

func (r *deductionRepository) Create(ctx context.Context, d *domain.RecurringDeduction) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO recurring_deductions (account_id, amount, reason, day_of_month, next_billing_date, status, created_on)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW()) RETURNING id, created_on`,
		d.AccountID, d.Amount, d.Reason, d.DayOfMonth, d.NextBillingDate, domain.DeductionStatusActive,
	).Scan(&d.ID, &d.CreatedOn)
	if err != nil {
		return fmt.Errorf("create recurring deduction: %w", err)
	}
	d.Status = domain.DeductionStatusActive
	return nil
}

const selectDeductionColumns = `SELECT id, account_id, amount, COALESCE(reason, ''), day_of_month, next_billing_date, status, created_on
	FROM recurring_deductions`

func (r *deductionRepository) GetByID(ctx context.Context, id int64) (*domain.RecurringDeduction, error) {
	var d domain.RecurringDeduction
	err := r.db.QueryRowContext(ctx, selectDeductionColumns+` WHERE id = $1`, id).
		Scan(&d.ID, &d.AccountID, &d.Amount, &d.Reason, &d.DayOfMonth, &d.NextBillingDate, &d.Status, &d.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDeductionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deductionRepository) ListDue(ctx context.Context, asOf time.Time) ([]domain.RecurringDeduction, error) {
	rows, err := r.db.QueryContext(ctx,
		selectDeductionColumns+` WHERE status = $1 AND next_billing_date <= $2 ORDER BY next_billing_date, id`,
		domain.DeductionStatusActive, asOf)
	if err != nil {
		return nil, fmt.Errorf("list due deductions: %w", err)
	}
	defer rows.Close()

	var out []domain.RecurringDeduction
	for rows.Next() {
		var d domain.RecurringDeduction
		if err := rows.Scan(&d.ID, &d.AccountID, &d.Amount, &d.Reason, &d.DayOfMonth,
			&d.NextBillingDate, &d.Status, &d.CreatedOn); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *deductionRepository) AdvanceBilling(ctx context.Context, id int64, next time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_deductions SET next_billing_date = $1 WHERE id = $2`, next, id)
	if err != nil {
		return fmt.Errorf("advance deduction billing date: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrDeductionNotFound
	}
	return nil
}

func (r *deductionRepository) Cancel(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_deductions SET status = $1 WHERE id = $2`,
		domain.DeductionStatusCancelled, id)
	if err != nil {
		return fmt.Errorf("cancel recurring deduction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrDeductionNotFound
	}
	return nil
}
