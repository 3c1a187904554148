package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotFound       = errors.New("account not found")
	ErrParticipationNotFound = errors.New("campaign participation not found")
	ErrDeductionNotFound     = errors.New("recurring deduction not found")
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrLedgerEntryNotFound   = errors.New("ledger entry not found")

	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrDuplicateActiveCampaign = errors.New("an active subscription for this campaign type already exists")
	ErrInvalidTransition       = errors.New("invalid billing status transition")

	// ErrIdempotencyMismatch means a key was retried with a different
	// amount or category than the entry it originally wrote. That is a
	// caller bug, never replayed as a no-op.
	ErrIdempotencyMismatch = errors.New("idempotency key reused with different parameters")
)

// InsufficientFundsError carries the figures the user needs to self-correct.
type InsufficientFundsError struct {
	Balance int64
	Amount  int64
	Floor   int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf(
		"debit of %d would bring your balance to %d, minimum allowed is %d",
		-e.Amount, e.Balance+e.Amount, e.Floor,
	)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// InvalidTransitionError reports a rejected billing state change.
type InvalidTransitionError struct {
	From BillingStatus
	To   BillingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move billing status from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }
