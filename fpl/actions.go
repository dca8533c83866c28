package fpl

import "strings"

// Action bits reported by the portal alongside every flight plan. The
// bitmask only means something together with the plan's status code, so
// it is never interpreted outside Permitted.
const (
	ActionDelay  = 1 << 0 // delay and cancel
	ActionChange = 1 << 1
	ActionLocked = 1 << 2 // plan is being processed, nothing permitted
	ActionDepart = 1 << 3
	ActionArrive = 1 << 4 // arrival report only
)

// Permissions lists the state-changing operations the portal currently
// allows for a plan.
type Permissions struct {
	Delay  bool `json:"delay"`
	Cancel bool `json:"cancel"`
	Change bool `json:"change"`
	Depart bool `json:"depart"`
	Arrive bool `json:"arrive"`
}

// StatusAccepted reports whether a portal status code counts as an
// accepted plan. Only accepted plans can be acted on at all.
func StatusAccepted(status string) bool {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "ACK", "ACC", "ACCEPTED":
		return true
	}
	return false
}

// Permitted interprets the action bitmask in combination with the status
// code. A non-accepted status or the locked bit blocks everything; the
// arrive bit makes the arrival report the only available action.
func Permitted(actions int, status string) Permissions {
	var p Permissions
	if !StatusAccepted(status) {
		return p
	}
	if actions&ActionLocked != 0 {
		return p
	}
	if actions&ActionArrive != 0 {
		p.Arrive = true
		return p
	}
	if actions&ActionDelay != 0 {
		p.Delay = true
		p.Cancel = true
	}
	if actions&ActionChange != 0 {
		p.Change = true
	}
	if actions&ActionDepart != 0 {
		p.Depart = true
	}
	return p
}
