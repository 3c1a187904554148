package http

import (
	"net/http"
)

func (a *API) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r)
	q := r.URL.Query()
	page := parseInt64(q.Get("page"), 1)
	pageSize := parseInt64(q.Get("page_size"), 20)

	notes, total, err := a.notifications.GetNotifications(r.Context(), account.ID, page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"notifications": notes,
		"total":         total,
		"page":          page,
	})
}

func (a *API) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r)
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := a.notifications.MarkAsRead(r.Context(), account.ID, id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
