package http

import (
	"net/http"
	"strconv"
	"time"

	"flexicredit-backend/internal/domain"
)

func (a *API) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r)
	balance, err := a.ledger.GetBalance(r.Context(), account.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"account_id":      account.ID,
		"balance":         balance,
		"minimum_balance": domain.MinimumBalance,
	})
}

func (a *API) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r)
	filter, page, pageSize, ok := parseHistoryQuery(w, r)
	if !ok {
		return
	}

	entries, total, err := a.ledger.GetHistory(r.Context(), account.ID, filter, page, pageSize)
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

func parseHistoryQuery(w http.ResponseWriter, r *http.Request) (domain.HistoryFilter, int64, int64, bool) {
	var filter domain.HistoryFilter
	q := r.URL.Query()

	if raw := q.Get("category"); raw != "" {
		category := domain.LedgerCategory(raw)
		if !category.Valid() {
			respondBadRequest(w, "unknown category: "+raw)
			return filter, 0, 0, false
		}
		filter.Category = &category
	}
	for name, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		if raw := q.Get(name); raw != "" {
			t, err := time.Parse("2006-01-02", raw)
			if err != nil {
				respondBadRequest(w, name+" must be formatted yyyy-mm-dd")
				return filter, 0, 0, false
			}
			if name == "to" {
				t = t.AddDate(0, 0, 1).Add(-time.Second) // inclusive end of day
			}
			*dst = &t
		}
	}

	page := parseInt64(q.Get("page"), 1)
	pageSize := parseInt64(q.Get("page_size"), 20)
	return filter, page, pageSize, true
}

func parseInt64(raw string, fallback int64) int64 {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
