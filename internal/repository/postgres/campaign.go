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

type campaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) repository.CampaignRepository {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) CreateWithCharge(ctx context.Context, p *domain.CampaignParticipation, charge domain.AppendRequest) (*domain.LedgerEntry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin campaign launch: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO campaign_participations
		   (account_id, campaign_type, consultant_name, monthly_cost, billing_status, next_billing_date, end_date, created_on, updated_on)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW()) RETURNING id, created_on, updated_on`,
		p.AccountID, p.CampaignType, p.ConsultantName, p.MonthlyCost, p.BillingStatus, p.NextBillingDate, p.EndDate,
	).Scan(&p.ID, &p.CreatedOn, &p.UpdatedOn)
	if isUniqueViolation(err) {
		// The engaged-slot index caught a concurrent launch that the
		// pre-insert check could not see.
		return nil, domain.ErrDuplicateActiveCampaign
	}
	if err != nil {
		return nil, fmt.Errorf("insert campaign participation: %w", err)
	}

	// The first charge and the participation row commit or roll back
	// together; a participation must never exist without its charge.
	entry, _, err := appendEntryTx(ctx, tx, charge)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit campaign launch: %w", err)
	}
	return entry, nil
}

const selectParticipationColumns = `SELECT id, account_id, campaign_type, COALESCE(consultant_name, ''), monthly_cost,
	billing_status, next_billing_date, end_date, leads, conversions, revenue, created_on, updated_on
	FROM campaign_participations`

func (r *campaignRepository) GetByID(ctx context.Context, id int64) (*domain.CampaignParticipation, error) {
	return scanParticipation(r.db.QueryRowContext(ctx, selectParticipationColumns+` WHERE id = $1`, id))
}

func (r *campaignRepository) HasEngaged(ctx context.Context, accountID int64, campaignType domain.CampaignType) (bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM campaign_participations
		 WHERE account_id = $1 AND campaign_type = $2 AND billing_status IN ($3, $4, $5)`,
		accountID, campaignType,
		domain.BillingStatusActive, domain.BillingStatusPaused, domain.BillingStatusPausedInsufficientFunds,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check engaged participation: %w", err)
	}
	return count > 0, nil
}

func (r *campaignRepository) ListByAccount(ctx context.Context, accountID int64) ([]domain.CampaignParticipation, error) {
	rows, err := r.db.QueryContext(ctx,
		selectParticipationColumns+` WHERE account_id = $1 ORDER BY created_on DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	defer rows.Close()
	return collectParticipations(rows)
}

func (r *campaignRepository) ListDue(ctx context.Context, asOf time.Time) ([]domain.CampaignParticipation, error) {
	rows, err := r.db.QueryContext(ctx,
		selectParticipationColumns+` WHERE billing_status = $1 AND next_billing_date <= $2 ORDER BY next_billing_date, id`,
		domain.BillingStatusActive, asOf)
	if err != nil {
		return nil, fmt.Errorf("list due participations: %w", err)
	}
	defer rows.Close()
	return collectParticipations(rows)
}

func (r *campaignRepository) UpdateStatus(ctx context.Context, id int64, status domain.BillingStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE campaign_participations SET billing_status = $1, updated_on = NOW() WHERE id = $2`,
		status, id)
	if err != nil {
		return fmt.Errorf("update billing status: %w", err)
	}
	return checkParticipationFound(res)
}

func (r *campaignRepository) AdvanceBilling(ctx context.Context, id int64, status domain.BillingStatus, next time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE campaign_participations SET billing_status = $1, next_billing_date = $2, updated_on = NOW() WHERE id = $3`,
		status, next, id)
	if err != nil {
		return fmt.Errorf("advance billing date: %w", err)
	}
	return checkParticipationFound(res)
}

func (r *campaignRepository) SetTierCost(ctx context.Context, id int64, cost int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE campaign_participations SET monthly_cost = $1, updated_on = NOW() WHERE id = $2`,
		cost, id)
	if err != nil {
		return fmt.Errorf("set tier cost: %w", err)
	}
	return checkParticipationFound(res)
}

func (r *campaignRepository) ChangeTierWithCharge(ctx context.Context, id int64, cost int64, charge domain.AppendRequest) (*domain.LedgerEntry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tier change: %w", err)
	}
	defer tx.Rollback()

	// Charge first: the upgrade delta re-validates affordability under the
	// account row lock, so a stale funds check cannot slip through.
	entry, _, err := appendEntryTx(ctx, tx, charge)
	if err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE campaign_participations SET monthly_cost = $1, updated_on = NOW() WHERE id = $2`,
		cost, id)
	if err != nil {
		return nil, fmt.Errorf("set tier cost: %w", err)
	}
	if err := checkParticipationFound(res); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tier change: %w", err)
	}
	return entry, nil
}

func (r *campaignRepository) RecordPerformance(ctx context.Context, id int64, leads, conversions, revenue int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE campaign_participations
		 SET leads = leads + $1, conversions = conversions + $2, revenue = revenue + $3, updated_on = NOW()
		 WHERE id = $4`,
		leads, conversions, revenue, id)
	if err != nil {
		return fmt.Errorf("record performance: %w", err)
	}
	return checkParticipationFound(res)
}

func checkParticipationFound(res sql.Result) error {
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrParticipationNotFound
	}
	return nil
}

func scanParticipation(row rowScanner) (*domain.CampaignParticipation, error) {
	var p domain.CampaignParticipation
	err := row.Scan(&p.ID, &p.AccountID, &p.CampaignType, &p.ConsultantName, &p.MonthlyCost,
		&p.BillingStatus, &p.NextBillingDate, &p.EndDate, &p.Leads, &p.Conversions, &p.Revenue,
		&p.CreatedOn, &p.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrParticipationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectParticipations(rows *sql.Rows) ([]domain.CampaignParticipation, error) {
	var out []domain.CampaignParticipation
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
