package fpl

import (
	"log/slog"
	"regexp"
	"strings"
)

// Field19 holds the structured sub-fields of ICAO flight-plan item 19
// ("Supplementary Information").
type Field19 struct {
	Endurance string `json:"endurance,omitempty"` // E, hours and minutes as HHMM
	Persons   string `json:"persons,omitempty"`   // P, persons on board

	RadioUHF  bool `json:"radio_uhf,omitempty"` // R group
	RadioVHF  bool `json:"radio_vhf,omitempty"`
	RadioELBA bool `json:"radio_elba,omitempty"`

	SurvivalPolar    bool `json:"survival_polar,omitempty"` // S group
	SurvivalDesert   bool `json:"survival_desert,omitempty"`
	SurvivalMaritime bool `json:"survival_maritime,omitempty"`
	SurvivalJungle   bool `json:"survival_jungle,omitempty"`

	JacketLight bool `json:"jacket_light,omitempty"` // J group
	JacketFluor bool `json:"jacket_fluor,omitempty"`
	JacketUHF   bool `json:"jacket_uhf,omitempty"`
	JacketVHF   bool `json:"jacket_vhf,omitempty"`

	Dinghies       bool   `json:"dinghies,omitempty"` // D block present
	DinghyCount    string `json:"dinghy_count,omitempty"`
	DinghyCapacity string `json:"dinghy_capacity,omitempty"`
	DinghyCover    bool   `json:"dinghy_cover,omitempty"`
	DinghyColour   string `json:"dinghy_colour,omitempty"`

	AircraftColour string `json:"aircraft_colour,omitempty"` // A
	Remarks        string `json:"remarks,omitempty"`         // N
	PilotInCommand string `json:"pilot_in_command,omitempty"` // C
}

// EncodeField19 renders item 19 as backslash-delimited tokens in the
// portal's fixed order E P R S J D A N C. Boolean groups compress to a
// single letter-set value. The dinghy cover flag is emitted as its own
// C\C token directly after the dinghy token; the trailing C token carries
// the pilot in command.
func EncodeField19(f Field19) string {
	var tokens []string
	if f.Endurance != "" {
		tokens = append(tokens, `E\`+f.Endurance)
	}
	if f.Persons != "" {
		tokens = append(tokens, `P\`+f.Persons)
	}
	if r := letterSet([]bool{f.RadioUHF, f.RadioVHF, f.RadioELBA}, "UVE"); r != "" {
		tokens = append(tokens, `R\`+r)
	}
	if s := letterSet([]bool{f.SurvivalPolar, f.SurvivalDesert, f.SurvivalMaritime, f.SurvivalJungle}, "PDMJ"); s != "" {
		tokens = append(tokens, `S\`+s)
	}
	if j := letterSet([]bool{f.JacketLight, f.JacketFluor, f.JacketUHF, f.JacketVHF}, "LFUV"); j != "" {
		tokens = append(tokens, `J\`+j)
	}
	if f.Dinghies {
		var parts []string
		for _, p := range []string{f.DinghyCount, f.DinghyCapacity, f.DinghyColour} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		tokens = append(tokens, `D\`+strings.Join(parts, " "))
		if f.DinghyCover {
			tokens = append(tokens, `C\C`)
		}
	}
	if f.AircraftColour != "" {
		tokens = append(tokens, `A\`+f.AircraftColour)
	}
	if f.Remarks != "" {
		tokens = append(tokens, `N\`+f.Remarks)
	}
	if f.PilotInCommand != "" {
		tokens = append(tokens, `C\`+f.PilotInCommand)
	}
	return strings.Join(tokens, " ")
}

// letterSet builds a combined letter-set value: letters[i] is included
// when flags[i] is set, in the declared order.
func letterSet(flags []bool, letters string) string {
	var b strings.Builder
	for i, set := range flags {
		if set {
			b.WriteByte(letters[i])
		}
	}
	return b.String()
}

// field19Boundary matches the start of a LETTER\ token, at the start of
// the string or after whitespace. As in item 18, a value runs until the
// next boundary so multi-word values survive the round trip.
var field19Boundary = regexp.MustCompile(`(^|\s)([A-Z])\\`)

type f19Token struct {
	code  byte
	value string
}

// DecodeField19 parses an item 19 string back into structured sub-fields.
//
// The C code is overloaded by the external format: it means "dinghy
// cover" when the token directly follows the dinghy token and carries
// the literal value C, and "pilot in command" everywhere else. That
// order-dependent reading is a property of the portal's grammar and is
// preserved here on purpose.
func DecodeField19(s string) Field19 {
	var f Field19
	s = strings.TrimSpace(s)
	if s == "" {
		return f
	}

	var tokens []f19Token
	bounds := field19Boundary.FindAllStringSubmatchIndex(s, -1)
	for i, b := range bounds {
		valStart := b[5] + 1 // past the backslash
		valEnd := len(s)
		if i+1 < len(bounds) {
			valEnd = bounds[i+1][0]
		}
		tokens = append(tokens, f19Token{
			code:  s[b[4]],
			value: strings.TrimSpace(s[valStart:valEnd]),
		})
	}

	dinghyIdx := -1
	for i, t := range tokens {
		if t.code == 'D' {
			dinghyIdx = i
			break
		}
	}

	for i, t := range tokens {
		switch t.code {
		case 'E':
			f.Endurance = t.value
		case 'P':
			f.Persons = t.value
		case 'R':
			for _, ch := range t.value {
				switch ch {
				case 'U':
					f.RadioUHF = true
				case 'V':
					f.RadioVHF = true
				case 'E':
					f.RadioELBA = true
				}
			}
		case 'S':
			for _, ch := range t.value {
				switch ch {
				case 'P':
					f.SurvivalPolar = true
				case 'D':
					f.SurvivalDesert = true
				case 'M':
					f.SurvivalMaritime = true
				case 'J':
					f.SurvivalJungle = true
				}
			}
		case 'J':
			for _, ch := range t.value {
				switch ch {
				case 'L':
					f.JacketLight = true
				case 'F':
					f.JacketFluor = true
				case 'U':
					f.JacketUHF = true
				case 'V':
					f.JacketVHF = true
				}
			}
		case 'D':
			f.Dinghies = true
			fields := strings.Fields(t.value)
			if len(fields) > 0 {
				f.DinghyCount = fields[0]
			}
			if len(fields) > 1 {
				f.DinghyCapacity = fields[1]
			}
			if len(fields) > 2 {
				f.DinghyColour = strings.Join(fields[2:], " ")
			}
		case 'A':
			f.AircraftColour = t.value
		case 'N':
			f.Remarks = t.value
		case 'C':
			// The encoder always writes the cover flag as the literal
			// value C directly after the dinghy token; anything else in
			// that position is still the pilot in command.
			if dinghyIdx >= 0 && i == dinghyIdx+1 {
				if t.value == "C" {
					slog.Debug("item 19 C token after dinghy read as cover flag")
					f.DinghyCover = true
					continue
				}
				slog.Debug("item 19 C token after dinghy read as pilot in command", "value", t.value)
			}
			f.PilotInCommand = t.value
		}
	}
	return f
}
