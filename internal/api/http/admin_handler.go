package http

import (
	"net/http"
)

type adminAdjustRequest struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	BypassFloor bool   `json:"bypass_floor"`
}

func (a *API) handleAdminAdjust(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req adminAdjustRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Amount == 0 {
		respondBadRequest(w, "amount must be a non-zero integer")
		return
	}
	if req.Description == "" {
		respondBadRequest(w, "description is required for admin adjustments")
		return
	}

	entry, err := a.ledger.AdminAdjust(r.Context(), accountID, req.Amount, req.Description, idempotencyKey(r), req.BypassFloor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

func (a *API) handleAdminHistory(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(w, r)
	if !ok {
		return
	}
	filter, page, pageSize, ok := parseHistoryQuery(w, r)
	if !ok {
		return
	}

	entries, total, err := a.ledger.GetHistory(r.Context(), accountID, filter, page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"total":   total,
		"page":    page,
	})
}

func (a *API) handleArchiveAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := a.accounts.ArchiveAccount(r.Context(), accountID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type createDeductionRequest struct {
	AccountID  int64  `json:"account_id"`
	Amount     int64  `json:"amount"`
	Reason     string `json:"reason"`
	DayOfMonth int    `json:"day_of_month"`
}

func (a *API) handleCreateDeduction(w http.ResponseWriter, r *http.Request) {
	var req createDeductionRequest
	if !decodeBody(w, r, &req) {
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
	if req.DayOfMonth < 1 || req.DayOfMonth > 31 {
		respondBadRequest(w, "day_of_month must be between 1 and 31")
		return
	}

	d, err := a.deductions.CreateDeduction(r.Context(), req.AccountID, req.Amount, req.Reason, req.DayOfMonth)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, d)
}

func (a *API) handleCancelDeduction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := a.deductions.CancelDeduction(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
