package domain

import "time"

type LedgerCategory string

const (
	CategoryPurchase     LedgerCategory = "PURCHASE"
	CategoryRefund       LedgerCategory = "REFUND"
	CategoryAdminCredit  LedgerCategory = "ADMIN_CREDIT"
	CategorySubscription LedgerCategory = "SUBSCRIPTION"
	CategoryCampaign     LedgerCategory = "CAMPAIGN"
	CategoryBooking      LedgerCategory = "BOOKING"
	CategorySystem       LedgerCategory = "SYSTEM"
)

// Valid reports whether c is one of the closed set of categories. The
// category is decided by the caller at append time, never inferred later.
func (c LedgerCategory) Valid() bool {
	switch c {
	case CategoryPurchase, CategoryRefund, CategoryAdminCredit,
		CategorySubscription, CategoryCampaign, CategoryBooking, CategorySystem:
		return true
	}
	return false
}

// AdminInitiated categories require a description so the audit trail can
// explain the adjustment.
func (c LedgerCategory) AdminInitiated() bool {
	return c == CategoryAdminCredit || c == CategorySystem
}

// LedgerEntry is an immutable record of a single credit or debit. Entries
// are never updated or deleted; corrections are new offsetting entries.
type LedgerEntry struct {
	ID             int64          `json:"id"`
	AccountID      int64          `json:"account_id"`
	Amount         int64          `json:"amount"` // positive for credit, negative for debit
	Category       LedgerCategory `json:"category"`
	Description    string         `json:"description"`
	IdempotencyKey string         `json:"idempotency_key,omitempty"`
	CreatedOn      time.Time      `json:"created_on"`
}

// AppendRequest carries one ledger append. The idempotency key identifies
// the logical event: a retry with the same key is a no-op success that
// returns the previously written entry.
type AppendRequest struct {
	AccountID      int64
	Amount         int64
	Category       LedgerCategory
	Description    string
	IdempotencyKey string

	// BypassFloor lets an admin-forced debit push the balance below
	// MinimumBalance. It is a distinct, audited path, never the default.
	BypassFloor bool
}

// HistoryFilter narrows ledger history reads. Nil fields mean "no filter".
type HistoryFilter struct {
	Category *LedgerCategory
	From     *time.Time
	To       *time.Time
}
