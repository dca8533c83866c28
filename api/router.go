package api

import (
	"github.com/gorilla/mux"

	"github.com/karlisv/fplbrief/portal"
	"github.com/karlisv/fplbrief/session"
)

// NewRouter creates and configures a new router with all application
// endpoints. Handlers stay thin: they check the session cookie, load the
// session, call the portal client and translate the result.
func NewRouter(client *portal.Client, store *session.Store) *mux.Router {
	h := &Handlers{Client: client, Store: store}

	r := mux.NewRouter()
	r.Use(RequestID)

	// Login handshake endpoints
	r.HandleFunc("/api/login/init", h.LoginInit).Methods("POST")
	r.HandleFunc("/api/login/captcha", h.Captcha).Methods("GET")
	r.HandleFunc("/api/login", h.Login).Methods("POST")
	r.HandleFunc("/api/logout", h.Logout).Methods("POST")

	// Everything below requires an authenticated session
	auth := r.PathPrefix("/api").Subrouter()
	auth.Use(h.RequireSession)

	// Flight plan endpoints
	auth.HandleFunc("/fpl", h.ListFlightPlans).Methods("GET")
	auth.HandleFunc("/fpl", h.SubmitFlightPlan).Methods("POST")
	auth.HandleFunc("/fpl/archive", h.ListArchive).Methods("GET")
	auth.HandleFunc("/fpl/validate", h.ValidateFlightPlan).Methods("POST")
	auth.HandleFunc("/fpl/{id}/messages", h.ListMessages).Methods("GET")
	auth.HandleFunc("/fpl/{id}/delay", h.DelayFlightPlan).Methods("POST")
	auth.HandleFunc("/fpl/{id}/cancel", h.CancelFlightPlan).Methods("POST")

	// Template endpoints
	auth.HandleFunc("/templates", h.ListTemplates).Methods("GET")
	auth.HandleFunc("/templates", h.SaveTemplate).Methods("POST")
	auth.HandleFunc("/templates/{id}", h.GetTemplate).Methods("GET")
	auth.HandleFunc("/templates/{id}", h.DeleteTemplate).Methods("DELETE")

	return r
}
