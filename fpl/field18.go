package fpl

import (
	"fmt"
	"regexp"
	"strings"
)

// Field18 holds the structured sub-fields of ICAO flight-plan item 18
// ("Other Information"). Absent sub-fields are zero values and produce no
// token when encoding.
type Field18 struct {
	STS          []string    `json:"sts,omitempty"`           // special handling, one code per entry
	PBN          []string    `json:"pbn,omitempty"`           // performance based navigation, max 8 codes
	EURProtected bool        `json:"eur_protected,omitempty"` // EUR/PROTECTED marker
	PER          string      `json:"per,omitempty"`           // performance category, single letter
	RFP          string      `json:"rfp,omitempty"`           // replacement flight plan, e.g. "Q2"
	Indicators   []Indicator `json:"indicators,omitempty"`    // other CODE/value pairs, insertion order
	StayInfo     []string    `json:"stay_info,omitempty"`     // STAYINFO1..STAYINFO9 reasons
}

// Indicator is a generic CODE/value pair for indicators the structured
// editor does not model explicitly (DEP, DEST, EET, RMK, DOF, ...).
type Indicator struct {
	Code  string `json:"code"`
	Value string `json:"value"`
}

const (
	maxPBNCodes  = 8
	maxStayInfos = 9
)

// EncodeField18 renders the sub-fields as a single space-joined string of
// CODE/value tokens in the portal's expected order.
func EncodeField18(f Field18) string {
	var tokens []string
	for _, sts := range f.STS {
		tokens = append(tokens, "STS/"+sts)
	}
	if len(f.PBN) > 0 {
		pbn := f.PBN
		if len(pbn) > maxPBNCodes {
			pbn = pbn[:maxPBNCodes]
		}
		tokens = append(tokens, "PBN/"+strings.Join(pbn, ""))
	}
	if f.EURProtected {
		tokens = append(tokens, "EUR/PROTECTED")
	}
	if f.PER != "" {
		tokens = append(tokens, "PER/"+f.PER)
	}
	if f.RFP != "" {
		tokens = append(tokens, "RFP/"+f.RFP)
	}
	for _, ind := range f.Indicators {
		tokens = append(tokens, ind.Code+"/"+ind.Value)
	}
	for i, reason := range f.StayInfo {
		if i >= maxStayInfos {
			break
		}
		if reason == "" {
			continue
		}
		tokens = append(tokens, fmt.Sprintf("STAYINFO%d/%s", i+1, reason))
	}
	return strings.Join(tokens, " ")
}

// field18Boundary matches the start of a CODE/ token, at the start of the
// string or after whitespace. Values may themselves contain spaces
// (multi-word remarks), so decoding scans for the next boundary instead
// of splitting on whitespace.
var field18Boundary = regexp.MustCompile(`(^|\s)([A-Z][A-Z0-9]{1,9})/`)

var stayInfoCode = regexp.MustCompile(`^STAYINFO([1-9])$`)

// DecodeField18 parses an item 18 string back into structured sub-fields.
// Codes the struct does not model explicitly are kept verbatim as generic
// indicators, so decode followed by encode is lossless.
func DecodeField18(s string) Field18 {
	var f Field18
	s = strings.TrimSpace(s)
	if s == "" {
		return f
	}
	bounds := field18Boundary.FindAllStringSubmatchIndex(s, -1)
	for i, b := range bounds {
		code := s[b[4]:b[5]]
		valStart := b[5] + 1 // past the slash
		valEnd := len(s)
		if i+1 < len(bounds) {
			valEnd = bounds[i+1][0]
		}
		val := strings.TrimSpace(s[valStart:valEnd])
		switch {
		case code == "STS":
			f.STS = append(f.STS, val)
		case code == "PBN":
			f.PBN = splitPBN(val)
		case code == "EUR" && strings.EqualFold(val, "PROTECTED"):
			f.EURProtected = true
		case code == "PER":
			f.PER = val
		case code == "RFP":
			f.RFP = val
		case stayInfoCode.MatchString(code):
			n := int(code[len(code)-1] - '0')
			for len(f.StayInfo) < n {
				f.StayInfo = append(f.StayInfo, "")
			}
			f.StayInfo[n-1] = val
		default:
			f.Indicators = append(f.Indicators, Indicator{Code: code, Value: val})
		}
	}
	return f
}

// splitPBN splits the concatenated PBN value ("B2D2") back into its
// two-character codes.
func splitPBN(v string) []string {
	var codes []string
	for i := 0; i+1 < len(v) && len(codes) < maxPBNCodes; i += 2 {
		codes = append(codes, v[i:i+2])
	}
	return codes
}
