package portal

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/karlisv/fplbrief/fpl"
)

// Message is a processing message the portal holds for a flight plan
// (ACK, MAN, REJ and operator notes).
type Message struct {
	Time string `json:"time"`
	Type string `json:"type"`
	Body string `json:"body"`
}

// FieldError is a single field-level validation finding.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of a remote flight-plan validity check.
// When the portal reports failure without any extractable detail, Raw
// keeps the response body for operator diagnosis; the portal does not
// reliably say why an operation failed.
type ValidationResult struct {
	Valid       bool         `json:"valid"`
	FieldErrors []FieldError `json:"field_errors,omitempty"`
	General     []string     `json:"general,omitempty"`
	Raw         string       `json:"raw,omitempty"`
}

// SubmitResult is the outcome of a state-changing portal operation.
type SubmitResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Raw     string `json:"raw,omitempty"`
}

// GetFPLList returns the current flight plans for the session.
func (c *Client) GetFPLList(ctx context.Context, creds Credentials) ([]fpl.FlightPlan, error) {
	body, err := c.call(ctx, creds, "GetFPLListRequest", "", true)
	if err != nil {
		return nil, err
	}
	return parseFlightPlans(body), nil
}

// GetFPLArchive returns archived flight plans in the given date range.
func (c *Client) GetFPLArchive(ctx context.Context, creds Credentials, from, to time.Time) ([]fpl.FlightPlan, error) {
	inner := elem("DateFrom", from.Format("2006-01-02")) + elem("DateTo", to.Format("2006-01-02"))
	body, err := c.call(ctx, creds, "GetFPLArchiveRequest", inner, true)
	if err != nil {
		return nil, err
	}
	return parseFlightPlans(body), nil
}

func parseFlightPlans(body string) []fpl.FlightPlan {
	var plans []fpl.FlightPlan
	for _, block := range tagBlocks(body, "FlightPlan") {
		plans = append(plans, fpl.FlightPlan{
			ID:            intValue(block, "ID"),
			AircraftID:    tagValue(block, "AircraftIdentification"),
			FlightRules:   tagValue(block, "FlightRules"),
			FlightType:    tagValue(block, "TypeOfFlight"),
			Departure:     tagValue(block, "DepartureAerodrome"),
			DepartureTime: tagValue(block, "TimeOfDeparture"),
			Destination:   tagValue(block, "DestinationAerodrome"),
			TotalEET:      tagValue(block, "TotalEET"),
			Status:        tagValue(block, "Status"),
			Actions:       intValue(block, "Actions"),
		})
	}
	return plans
}

// GetFlMsgList returns the processing messages for one flight plan.
func (c *Client) GetFlMsgList(ctx context.Context, creds Credentials, fplID int) ([]Message, error) {
	body, err := c.call(ctx, creds, "GetFlMsgListRequest", elem("FPLID", fmt.Sprintf("%d", fplID)), true)
	if err != nil {
		return nil, err
	}
	var messages []Message
	for _, block := range tagBlocks(body, "Message") {
		messages = append(messages, Message{
			Time: tagValue(block, "Timestamp"),
			Type: tagValue(block, "MessageType"),
			Body: tagValue(block, "MessageText"),
		})
	}
	return messages, nil
}

// Validation errors come back as bare strings in the portal's
// "<fieldcode> <message>" convention, e.g. "F7 Invalid Aircraft
// Identification". FAddinfo codes cover the item 18/19 sub-fields.
var fieldCodePattern = regexp.MustCompile(`^(FAddinfo[A-Za-z0-9]*|F\d+[A-Za-z]?)\s+(.*)$`)

// parseFieldError splits one validation error string into field code and
// message. Strings without a leading field code are filed under the
// catch-all "General" field.
func parseFieldError(s string) FieldError {
	if m := fieldCodePattern.FindStringSubmatch(s); m != nil {
		return FieldError{Field: m[1], Message: m[2]}
	}
	return FieldError{Field: "General", Message: s}
}

// CheckFplValidity asks the portal to validate a flight plan without
// filing it. Flight-plan semantics are entirely the portal's business;
// this side only relays what it says.
func (c *Client) CheckFplValidity(ctx context.Context, creds Credentials, plan fpl.FplData) (*ValidationResult, error) {
	body, err := c.call(ctx, creds, "CheckFplValidityRequest", fplRequestBody(plan), false)
	if err != nil {
		return nil, err
	}
	res := &ValidationResult{Valid: boolValue(body, "IsValid")}
	for _, raw := range tagBlocks(body, "Error") {
		fe := parseFieldError(strings.TrimSpace(xmlUnescape(raw)))
		if fe.Field == "General" {
			res.General = append(res.General, fe.Message)
		} else {
			res.FieldErrors = append(res.FieldErrors, fe)
		}
	}
	if !res.Valid && len(res.FieldErrors) == 0 && len(res.General) == 0 {
		res.Raw = body
	}
	return res, nil
}

// SendFplToCaro files the flight plan with the portal.
func (c *Client) SendFplToCaro(ctx context.Context, creds Credentials, plan fpl.FplData) (*SubmitResult, error) {
	body, err := c.call(ctx, creds, "SendFplToCaroRequest", fplRequestBody(plan), false)
	if err != nil {
		return nil, err
	}
	return parseSubmitResult(body), nil
}

// SendDLA files a delay for the flight plan, moving its departure time.
func (c *Client) SendDLA(ctx context.Context, creds Credentials, fplID int, newTime string) (*SubmitResult, error) {
	inner := elem("FPLID", fmt.Sprintf("%d", fplID)) + elem("NewTimeOfDeparture", newTime)
	body, err := c.call(ctx, creds, "SendDLARequest", inner, false)
	if err != nil {
		return nil, err
	}
	return parseSubmitResult(body), nil
}

// SendCNL cancels the flight plan.
func (c *Client) SendCNL(ctx context.Context, creds Credentials, fplID int) (*SubmitResult, error) {
	body, err := c.call(ctx, creds, "SendCNLRequest", elem("FPLID", fmt.Sprintf("%d", fplID)), false)
	if err != nil {
		return nil, err
	}
	return parseSubmitResult(body), nil
}

func parseSubmitResult(body string) *SubmitResult {
	res := &SubmitResult{OK: boolValue(body, "Success")}
	if !res.OK {
		res.Message = tagValue(body, "ErrorMessage")
		if res.Message == "" {
			res.Raw = body
		}
	}
	return res
}

// fplRequestBody renders the flight-plan form fields as request elements.
// Free text (route, items 18 and 19) gets escaped like everything else.
func fplRequestBody(plan fpl.FplData) string {
	var b strings.Builder
	fields := []struct {
		name  string
		value string
	}{
		{"AircraftIdentification", plan.AircraftID},
		{"FlightRules", plan.FlightRules},
		{"TypeOfFlight", plan.FlightType},
		{"Number", plan.Number},
		{"TypeOfAircraft", plan.AircraftType},
		{"WakeTurbulenceCat", plan.WakeTurbulence},
		{"Equipment", plan.Equipment},
		{"DepartureAerodrome", plan.Departure},
		{"TimeOfDeparture", plan.DepartureTime},
		{"CruisingSpeed", plan.Speed},
		{"FlightLevel", plan.Level},
		{"Route", plan.Route},
		{"DestinationAerodrome", plan.Destination},
		{"TotalEET", plan.TotalEET},
		{"AlternateAerodrome", plan.Alternate},
		{"SecondAlternateAerodrome", plan.SecondAlternate},
		{"OtherInformation", plan.Field18},
		{"SupplementaryInformation", plan.Field19},
	}
	for _, f := range fields {
		b.WriteString(elem(f.name, f.value))
	}
	return b.String()
}
