package http

import (
	"net/http"
)

type paymentWebhookRequest struct {
	EventID   string `json:"event_id"`
	AccountID int64  `json:"account_id"`
	Amount    int64  `json:"amount"`
}

// handlePaymentWebhook credits an already-verified payment-processor
// event. The event ID is the idempotency key: redelivery of the same
// event returns 200 without a second credit.
func (a *API) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	var req paymentWebhookRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.EventID == "" {
		respondBadRequest(w, "event_id is required")
		return
	}
	if req.AccountID < 1 {
		respondBadRequest(w, "account_id is required")
		return
	}
	if req.Amount <= 0 {
		respondBadRequest(w, "amount must be positive")
		return
	}

	entry, err := a.ledger.RecordTopUp(r.Context(), req.AccountID, req.Amount, req.EventID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}
