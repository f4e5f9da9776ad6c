package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/crowdfund/crowdfund-gobackend/internal/models"
)

// Handlers groups the route handlers of the API.
type Handlers struct {
	Admins    *AdminHandler
	Users     *UserHandler
	Campaigns *CampaignHandler
	Donations *DonationHandler
	Payments  *PaymentDetailsHandler
}

// Authorize returns middleware admitting the given roles.
type Authorize func(roles ...string) func(http.Handler) http.Handler

// RegisterRoutes mounts the API under /api on r.
func RegisterRoutes(r *mux.Router, h Handlers, authorize Authorize) {
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	admin := authorize(models.RoleAdmin)
	user := authorize(models.RoleUser)
	anyRole := authorize(models.RoleUser, models.RoleAdmin)
	guard := func(mw func(http.Handler) http.Handler, f http.HandlerFunc) http.Handler {
		return mw(f)
	}

	// admin
	api.Handle("/admin", guard(admin, h.Admins.GetAdmins)).Methods(http.MethodGet)
	api.Handle("/admin", guard(admin, h.Admins.AddAdmin)).Methods(http.MethodPost)
	api.HandleFunc("/admin/login", h.Admins.Login).Methods(http.MethodPost)
	api.Handle("/admin/{id}", guard(admin, h.Admins.GetAdmin)).Methods(http.MethodGet)
	api.Handle("/admin/{id}", guard(admin, h.Admins.UpdateAdmin)).Methods(http.MethodPut)

	// users
	api.Handle("/users", guard(admin, h.Users.GetUsers)).Methods(http.MethodGet)
	api.HandleFunc("/users", h.Users.Register).Methods(http.MethodPost)
	api.Handle("/users/{id}", guard(anyRole, h.Users.GetUser)).Methods(http.MethodGet)
	api.Handle("/users/{id}", guard(anyRole, h.Users.UpdateUser)).Methods(http.MethodPut)
	api.Handle("/users/{id}", guard(admin, h.Users.DeleteUser)).Methods(http.MethodDelete)
	api.HandleFunc("/user/login", h.Users.Login).Methods(http.MethodPost)
	api.HandleFunc("/user/register", h.Users.Register).Methods(http.MethodPost)

	// lookups
	api.HandleFunc("/campaign-categories", h.Campaigns.GetCategories).Methods(http.MethodGet)
	api.HandleFunc("/campaign-statuses", h.Campaigns.GetStatuses).Methods(http.MethodGet)

	// campaigns
	api.HandleFunc("/campaigns", h.Campaigns.GetCampaigns).Methods(http.MethodGet)
	api.Handle("/campaigns", guard(user, h.Campaigns.CreateCampaign)).Methods(http.MethodPost)
	api.Handle("/campaigns-by-users", guard(admin, h.Campaigns.GetCampaignsByUsers)).Methods(http.MethodGet)
	api.HandleFunc("/campaigns/{id}", h.Campaigns.GetCampaign).Methods(http.MethodGet)
	api.Handle("/campaigns/{id}", guard(anyRole, h.Campaigns.UpdateCampaign)).Methods(http.MethodPut)
	api.Handle("/campaigns/{id}", guard(user, h.Campaigns.DeleteCampaign)).Methods(http.MethodDelete)
	api.HandleFunc("/user/{id}/campaigns", h.Campaigns.GetUserCampaigns).Methods(http.MethodGet)

	// donations
	api.HandleFunc("/campaigns/{id}/donations", h.Donations.GetCampaignDonations).Methods(http.MethodGet)
	api.HandleFunc("/campaigns/{id}/donation", h.Donations.CreateDonation).Methods(http.MethodPost)
	api.Handle("/campaigns/{id}/donation/{donation_id}", guard(user, h.Campaigns.GetCampaign)).Methods(http.MethodGet)
	api.Handle("/user/donations/{user_id}", guard(user, h.Donations.GetUserDonations)).Methods(http.MethodGet)
	api.Handle("/user/donations/{donation_id}/cancel", guard(user, h.Donations.CancelDonation)).Methods(http.MethodPut)
	api.Handle("/donations", guard(admin, h.Donations.GetDonations)).Methods(http.MethodGet)
	api.Handle("/donations/{id}", guard(admin, h.Donations.GetDonation)).Methods(http.MethodGet)
	api.Handle("/donations/{id}", guard(admin, h.Donations.DeleteDonation)).Methods(http.MethodDelete)

	// payment details
	api.Handle("/user/payment-details/{user_id}", guard(user, h.Payments.GetUserPaymentDetails)).Methods(http.MethodGet)
}
