package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"flexicredit-backend/internal/security"
	"flexicredit-backend/internal/service"
)

// API bundles the handlers for the credit ledger and campaign billing
// surface.
type API struct {
	accounts      service.AccountService
	ledger        service.LedgerService
	campaigns     service.CampaignService
	deductions    service.DeductionService
	notifications service.NotificationService
	tokens        security.TokenManager
}

func NewAPI(
	accounts service.AccountService,
	ledger service.LedgerService,
	campaigns service.CampaignService,
	deductions service.DeductionService,
	notifications service.NotificationService,
	tokens security.TokenManager,
) *API {
	return &API{
		accounts:      accounts,
		ledger:        ledger,
		campaigns:     campaigns,
		deductions:    deductions,
		notifications: notifications,
		tokens:        tokens,
	}
}

func (a *API) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	// Payment-processor events arrive pre-verified from the platform's
	// webhook gateway, outside user auth.
	r.HandleFunc("/webhooks/payment", a.handlePaymentWebhook).Methods(http.MethodPost)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(mux.MiddlewareFunc(authMiddleware(a.tokens, a.accounts)))

	api.HandleFunc("/ledger/balance", a.handleGetBalance).Methods(http.MethodGet)
	api.HandleFunc("/ledger/history", a.handleGetHistory).Methods(http.MethodGet)

	api.HandleFunc("/campaigns", a.handleListCampaigns).Methods(http.MethodGet)
	api.HandleFunc("/campaigns", a.handleLaunchCampaign).Methods(http.MethodPost)
	api.HandleFunc("/campaigns/{id:[0-9]+}/pause", a.handlePauseCampaign).Methods(http.MethodPost)
	api.HandleFunc("/campaigns/{id:[0-9]+}/resume", a.handleResumeCampaign).Methods(http.MethodPost)
	api.HandleFunc("/campaigns/{id:[0-9]+}/stop", a.handleStopCampaign).Methods(http.MethodPost)
	api.HandleFunc("/campaigns/{id:[0-9]+}/tier", a.handleChangeTier).Methods(http.MethodPut)

	api.HandleFunc("/notifications", a.handleListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id:[0-9]+}/read", a.handleMarkNotificationRead).Methods(http.MethodPost)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(mux.MiddlewareFunc(requireAdmin))
	admin.HandleFunc("/accounts/{id:[0-9]+}/adjust", a.handleAdminAdjust).Methods(http.MethodPost)
	admin.HandleFunc("/accounts/{id:[0-9]+}/history", a.handleAdminHistory).Methods(http.MethodGet)
	admin.HandleFunc("/accounts/{id:[0-9]+}/archive", a.handleArchiveAccount).Methods(http.MethodPost)
	admin.HandleFunc("/deductions", a.handleCreateDeduction).Methods(http.MethodPost)
	admin.HandleFunc("/deductions/{id:[0-9]+}", a.handleCancelDeduction).Methods(http.MethodDelete)
	admin.HandleFunc("/campaigns/{id:[0-9]+}/performance", a.handleRecordPerformance).Methods(http.MethodPost)

	return r
}
