package domain

import "time"

type DeductionStatus string

const (
	DeductionStatusActive    DeductionStatus = "ACTIVE"
	DeductionStatusCancelled DeductionStatus = "CANCELLED"
)

// RecurringDeduction is an admin-imposed monthly fee outside any campaign.
// Once a run processes it, next_billing_date advances by exactly one
// calendar month so a re-run the same day cannot charge twice.
type RecurringDeduction struct {
	ID              int64           `json:"id"`
	AccountID       int64           `json:"account_id"`
	Amount          int64           `json:"amount"` // stored positive, applied as a debit
	Reason          string          `json:"reason"`
	DayOfMonth      int             `json:"day_of_month"`
	NextBillingDate time.Time       `json:"next_billing_date"`
	Status          DeductionStatus `json:"status"`
	CreatedOn       time.Time       `json:"created_on"`
}
