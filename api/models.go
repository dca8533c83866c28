package api

import (
	"github.com/karlisv/fplbrief/fpl"
	"github.com/karlisv/fplbrief/portal"
)

// Login request/response types
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Captcha  string `json:"captcha"`
}

type errorResponse struct {
	Error          string `json:"error"`
	SessionExpired bool   `json:"session_expired,omitempty"`
}

// FlightPlanView is a portal flight plan together with the
// state-changing operations it currently permits.
type FlightPlanView struct {
	fpl.FlightPlan
	Permissions fpl.Permissions `json:"permissions"`
}

// FlightPlanRequest is the submit/validate payload. When the structured
// item 18/19 blocks are present they are encoded server-side and replace
// the plain Field18/Field19 strings.
type FlightPlanRequest struct {
	fpl.FplData
	Field18Data *fpl.Field18 `json:"field18_data,omitempty"`
	Field19Data *fpl.Field19 `json:"field19_data,omitempty"`
}

// resolve folds the structured item blocks into the wire form.
func (r *FlightPlanRequest) resolve() fpl.FplData {
	plan := r.FplData
	if r.Field18Data != nil {
		plan.Field18 = fpl.EncodeField18(*r.Field18Data)
	}
	if r.Field19Data != nil {
		plan.Field19 = fpl.EncodeField19(*r.Field19Data)
	}
	return plan
}

// TemplateView is a stored template with its item 18/19 strings decoded
// for the structured form editor.
type TemplateView struct {
	portal.Template
	Field18Data fpl.Field18 `json:"field18_data"`
	Field19Data fpl.Field19 `json:"field19_data"`
}

type saveTemplateRequest struct {
	Name string `json:"name"`
	FlightPlanRequest
}

type delayRequest struct {
	NewDepartureTime string `json:"new_departure_time"`
}
