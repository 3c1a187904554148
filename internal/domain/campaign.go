package domain

import "time"

type CampaignType string

const (
	CampaignFacebookAds CampaignType = "FACEBOOK_ADS"
	CampaignColdCalling CampaignType = "COLD_CALLING"
	CampaignVASupport   CampaignType = "VA_SUPPORT"
)

func (t CampaignType) Valid() bool {
	switch t {
	case CampaignFacebookAds, CampaignColdCalling, CampaignVASupport:
		return true
	}
	return false
}

type BillingStatus string

const (
	BillingStatusActive                  BillingStatus = "ACTIVE"
	BillingStatusPaused                  BillingStatus = "PAUSED"
	BillingStatusPausedInsufficientFunds BillingStatus = "PAUSED_INSUFFICIENT_FUNDS"
	BillingStatusStopped                 BillingStatus = "STOPPED"
	BillingStatusCompleted               BillingStatus = "COMPLETED"
)

// Terminal statuses are never reused; re-subscribing creates a fresh
// participation.
func (s BillingStatus) Terminal() bool {
	return s == BillingStatusStopped || s == BillingStatusCompleted
}

// Engaged reports whether the participation still occupies its campaign
// type slot: an account may hold at most one engaged participation per type.
func (s BillingStatus) Engaged() bool {
	return s == BillingStatusActive || s == BillingStatusPaused || s == BillingStatusPausedInsufficientFunds
}

// CampaignParticipation is one account's subscription to a recurring
// lead-generation offering. It never holds balance itself; all money
// movement goes through ledger entries.
type CampaignParticipation struct {
	ID              int64         `json:"id"`
	AccountID       int64         `json:"account_id"`
	CampaignType    CampaignType  `json:"campaign_type"`
	ConsultantName  string        `json:"consultant_name"`
	MonthlyCost     int64         `json:"monthly_cost"`
	BillingStatus   BillingStatus `json:"billing_status"`
	NextBillingDate time.Time     `json:"next_billing_date"`
	EndDate         *time.Time    `json:"end_date,omitempty"`

	// Performance counters are informational only.
	Leads       int64 `json:"leads"`
	Conversions int64 `json:"conversions"`
	Revenue     int64 `json:"revenue"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// ValidateTransition checks a billing status change against the state
// machine. Transitions out of a terminal state are rejected.
func ValidateTransition(from, to BillingStatus) error {
	if from.Terminal() {
		return &InvalidTransitionError{From: from, To: to}
	}
	switch to {
	case BillingStatusActive:
		if from == BillingStatusPaused || from == BillingStatusPausedInsufficientFunds || from == BillingStatusActive {
			return nil
		}
	case BillingStatusPaused:
		if from == BillingStatusActive || from == BillingStatusPaused {
			return nil
		}
	case BillingStatusPausedInsufficientFunds:
		if from == BillingStatusActive {
			return nil
		}
	case BillingStatusStopped, BillingStatusCompleted:
		return nil // any non-terminal state may be ended
	}
	return &InvalidTransitionError{From: from, To: to}
}
