package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/karlisv/fplbrief/fpl"
	"github.com/karlisv/fplbrief/portal"
	"github.com/karlisv/fplbrief/session"
)

// Handlers holds the collaborators every route needs.
type Handlers struct {
	Client *portal.Client
	Store  *session.Store
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// portalError translates a portal failure into a transport response. An
// expired remote session discards the stored session and tells the
// caller to re-authenticate; everything else is a gateway failure.
func (h *Handlers) portalError(w http.ResponseWriter, sessionID string, err error) {
	if errors.Is(err, portal.ErrSessionExpired) {
		h.Store.Delete(sessionID)
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "session expired", SessionExpired: true})
		return
	}
	slog.Error("portal call failed", "err", err)
	writeJSON(w, http.StatusBadGateway, errorResponse{Error: "briefing portal unavailable"})
}

func setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// LoginInit starts a fresh login handshake against the portal and hands
// the browser a pending session id.
func (h *Handlers) LoginInit(w http.ResponseWriter, r *http.Request) {
	pending, err := h.Client.LoginInit(r.Context())
	if err != nil {
		slog.Error("login init failed", "err", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "briefing portal unavailable"})
		return
	}
	id, err := h.Store.CreatePending(pending.Cookies, pending.Token)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not create session"})
		return
	}
	setSessionCookie(w, id)
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// Captcha relays the portal's captcha image for the pending login.
func (h *Handlers) Captcha(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "no login in progress"})
		return
	}
	pending, ok := h.Store.GetPending(cookie.Value)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "login attempt expired"})
		return
	}
	img, contentType, err := h.Client.FetchCaptcha(r.Context(), &portal.PendingLogin{Cookies: pending.Cookies, Token: pending.Token})
	if err != nil {
		slog.Error("captcha fetch failed", "err", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "briefing portal unavailable"})
		return
	}
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Write(img)
}

// Login completes the handshake with the user's credentials and captcha
// answer and promotes the pending login to an active session.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "no login in progress"})
		return
	}
	pending, ok := h.Store.GetPending(cookie.Value)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "login attempt expired"})
		return
	}

	result, err := h.Client.SubmitLogin(r.Context(), &portal.PendingLogin{Cookies: pending.Cookies, Token: pending.Token},
		req.Username, req.Password, req.Captcha)
	switch {
	case err == nil:
	case errors.Is(err, portal.ErrInvalidCredentials):
		// Captcha answers are single-use; the caller must run the whole
		// handshake again for a fresh one.
		h.Store.Delete(cookie.Value)
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials or captcha"})
		return
	case errors.Is(err, portal.ErrLoginRedirect), errors.Is(err, portal.ErrSessionExtract):
		h.Store.Delete(cookie.Value)
		slog.Error("login handshake failed", "err", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "login failed"})
		return
	default:
		slog.Error("login submit failed", "err", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "briefing portal unavailable"})
		return
	}

	h.Store.Activate(cookie.Value, result.Cookies, result.Token, result.Handle)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Logout discards the stored session.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		h.Store.Delete(cookie.Value)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func credentials(sess *session.Session) portal.Credentials {
	return portal.Credentials{Cookies: sess.Cookies, Token: sess.Token, Handle: sess.Handle}
}

// ListFlightPlans returns the current flight plans with their permitted
// actions resolved.
func (h *Handlers) ListFlightPlans(w http.ResponseWriter, r *http.Request) {
	id, sess := sessionFrom(r)
	plans, err := h.Client.GetFPLList(r.Context(), credentials(sess))
	if err != nil {
		h.portalError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, flightPlanViews(plans))
}

// ListArchive returns archived flight plans for a date range given as
// from/to query parameters (YYYY-MM-DD, defaulting to the last week).
func (h *Handlers) ListArchive(w http.ResponseWriter, r *http.Request) {
	id, sess := sessionFrom(r)
	to := time.Now()
	from := to.AddDate(0, 0, -7)
	if v := r.URL.Query().Get("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			from = t
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			to = t
		}
	}
	plans, err := h.Client.GetFPLArchive(r.Context(), credentials(sess), from, to)
	if err != nil {
		h.portalError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, flightPlanViews(plans))
}

func flightPlanViews(plans []fpl.FlightPlan) []FlightPlanView {
	views := make([]FlightPlanView, 0, len(plans))
	for _, plan := range plans {
		views = append(views, FlightPlanView{
			FlightPlan:  plan,
			Permissions: fpl.Permitted(plan.Actions, plan.Status),
		})
	}
	return views
}

// ListMessages returns the portal's processing messages for one plan.
func (h *Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	id, sess := sessionFrom(r)
	fplID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid flight plan id"})
		return
	}
	messages, err := h.Client.GetFlMsgList(r.Context(), credentials(sess), fplID)
	if err != nil {
		h.portalError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// ValidateFlightPlan relays a validity check to the portal.
func (h *Handlers) ValidateFlightPlan(w http.ResponseWriter, r *http.Request) {
	id, sess := sessionFrom(r)
	var req FlightPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	result, err := h.Client.CheckFplValidity(r.Context(), credentials(sess), req.resolve())
	if err != nil {
		h.portalError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SubmitFlightPlan files a flight plan with the portal.
func (h *Handlers) SubmitFlightPlan(w http.ResponseWriter, r *http.Request) {
	id, sess := sessionFrom(r)
	var req FlightPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	result, err := h.Client.SendFplToCaro(r.Context(), credentials(sess), req.resolve())
	if err != nil {
		h.portalError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DelayFlightPlan sends a DLA message for the plan.
func (h *Handlers) DelayFlightPlan(w http.ResponseWriter, r *http.Request) {
	id, sess := sessionFrom(r)
	fplID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid flight plan id"})
		return
	}
	var req delayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewDepartureTime == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "new_departure_time is required"})
		return
	}
	result, err := h.Client.SendDLA(r.Context(), credentials(sess), fplID, req.NewDepartureTime)
	if err != nil {
		h.portalError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CancelFlightPlan sends a CNL message for the plan.
func (h *Handlers) CancelFlightPlan(w http.ResponseWriter, r *http.Request) {
	id, sess := sessionFrom(r)
	fplID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid flight plan id"})
		return
	}
	result, err := h.Client.SendCNL(r.Context(), credentials(sess), fplID)
	if err != nil {
		h.portalError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListTemplates returns the stored flight-plan templates.
func (h *Handlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	id, sess := sessionFrom(r)
	templates, err := h.Client.GetFlTplList(r.Context(), credentials(sess))
	if err != nil {
		h.portalError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

// GetTemplate returns one template with its item 18/19 strings decoded
// for the structured editor.
func (h *Handlers) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, sess := sessionFrom(r)
	tplID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid template id"})
		return
	}
	tpl, err := h.Client.GetFlTpl(r.Context(), credentials(sess), tplID)
	if err != nil {
		h.portalError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, TemplateView{
		Template:    *tpl,
		Field18Data: fpl.DecodeField18(tpl.Plan.Field18),
		Field19Data: fpl.DecodeField19(tpl.Plan.Field19),
	})
}

// SaveTemplate stores the posted flight-plan form data as a template.
func (h *Handlers) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	id, sess := sessionFrom(r)
	var req saveTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}
	result, err := h.Client.SaveFlTpl(r.Context(), credentials(sess), req.Name, req.resolve())
	if err != nil {
		h.portalError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DeleteTemplate removes a stored template.
func (h *Handlers) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, sess := sessionFrom(r)
	tplID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid template id"})
		return
	}
	result, err := h.Client.DeleteFlTpl(r.Context(), credentials(sess), tplID)
	if err != nil {
		h.portalError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
