package fpl

// FlightPlan is a plan as reported by the briefing portal.
type FlightPlan struct {
	ID            int    `json:"id"`
	AircraftID    string `json:"aircraft_id"`
	FlightRules   string `json:"flight_rules"`
	FlightType    string `json:"flight_type"`
	Departure     string `json:"departure"`
	DepartureTime string `json:"departure_time"`
	Destination   string `json:"destination"`
	TotalEET      string `json:"total_eet"`
	Status        string `json:"status"`
	Actions       int    `json:"actions"`
}

// FplData carries the flight-plan form fields transmitted to the portal.
// Field18 and Field19 hold the already-encoded item strings; the codecs
// in this package produce them from structured form data.
type FplData struct {
	AircraftID      string `json:"aircraft_id"`
	FlightRules     string `json:"flight_rules"`
	FlightType      string `json:"flight_type"`
	Number          string `json:"number,omitempty"`
	AircraftType    string `json:"aircraft_type"`
	WakeTurbulence  string `json:"wake_turbulence"`
	Equipment       string `json:"equipment"`
	Departure       string `json:"departure"`
	DepartureTime   string `json:"departure_time"`
	Speed           string `json:"speed"`
	Level           string `json:"level"`
	Route           string `json:"route"`
	Destination     string `json:"destination"`
	TotalEET        string `json:"total_eet"`
	Alternate       string `json:"alternate,omitempty"`
	SecondAlternate string `json:"second_alternate,omitempty"`
	Field18         string `json:"field18,omitempty"`
	Field19         string `json:"field19,omitempty"`
}
