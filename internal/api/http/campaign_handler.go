package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"flexicredit-backend/internal/domain"
	"flexicredit-backend/internal/service"
)

type launchCampaignRequest struct {
	CampaignType      string `json:"campaign_type"`
	ConsultantName    string `json:"consultant_name"`
	MonthlyCost       int64  `json:"monthly_cost"`
	ProrateFirstMonth bool   `json:"prorate_first_month"`
	EndDate           string `json:"end_date,omitempty"` // yyyy-mm-dd
}

func (a *API) handleLaunchCampaign(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r)
	var req launchCampaignRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.MonthlyCost <= 0 {
		respondBadRequest(w, "monthly_cost must be positive")
		return
	}
	campaignType := domain.CampaignType(req.CampaignType)
	if !campaignType.Valid() {
		respondBadRequest(w, "unknown campaign_type: "+req.CampaignType)
		return
	}

	var endDate *time.Time
	if req.EndDate != "" {
		t, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			respondBadRequest(w, "end_date must be formatted yyyy-mm-dd")
			return
		}
		endDate = &t
	}

	p, err := a.campaigns.Launch(r.Context(), service.LaunchInput{
		AccountID:         account.ID,
		CampaignType:      campaignType,
		ConsultantName:    req.ConsultantName,
		MonthlyCost:       req.MonthlyCost,
		ProrateFirstMonth: req.ProrateFirstMonth,
		EndDate:           endDate,
		IdempotencyKey:    idempotencyKey(r),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (a *API) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r)
	campaigns, err := a.campaigns.ListCampaigns(r.Context(), account.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"campaigns": campaigns})
}

func (a *API) handlePauseCampaign(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, a.campaigns.Pause)
}

func (a *API) handleResumeCampaign(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, a.campaigns.Resume)
}

func (a *API) handleStopCampaign(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, a.campaigns.Stop)
}

func (a *API) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, accountID, participationID int64) (*domain.CampaignParticipation, error)) {
	account := accountFrom(r)
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := op(r.Context(), account.ID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

type changeTierRequest struct {
	MonthlyCost int64 `json:"monthly_cost"`
}

func (a *API) handleChangeTier(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r)
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req changeTierRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.MonthlyCost <= 0 {
		respondBadRequest(w, "monthly_cost must be positive")
		return
	}

	p, err := a.campaigns.ChangeTier(r.Context(), account.ID, id, req.MonthlyCost, idempotencyKey(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

type recordPerformanceRequest struct {
	Leads       int64 `json:"leads"`
	Conversions int64 `json:"conversions"`
	Revenue     int64 `json:"revenue"`
}

func (a *API) handleRecordPerformance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req recordPerformanceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := a.campaigns.RecordPerformance(r.Context(), id, req.Leads, req.Conversions, req.Revenue); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id < 1 {
		respondBadRequest(w, "invalid id")
		return 0, false
	}
	return id, true
}
