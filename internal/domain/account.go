package domain

import "time"

// MinimumBalance is the floor a non-bypassing debit may not cross. The
// negative allowance covers booking fees that land between billing cycles.
const MinimumBalance int64 = -2000

type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "ACTIVE"
	AccountStatusArchived AccountStatus = "ARCHIVED"
)

// Account holds the denormalized flexi-credit balance. The balance column
// is a cache of the ledger sum and only ever moves together with a ledger
// entry, inside the same transaction.
type Account struct {
	ID         int64         `json:"id"`
	ExternalID string        `json:"external_id"`
	Email      string        `json:"email"`
	Name       string        `json:"name"`
	Balance    int64         `json:"balance"`
	Status     AccountStatus `json:"status"`
	CreatedOn  time.Time     `json:"created_on"`
	UpdatedOn  time.Time     `json:"updated_on"`
}
