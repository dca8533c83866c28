package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Portal endpoints and protocol constants. The portal offers no
// structured API for login, so the handshake scrapes these pages.
const (
	loginPath   = "/login.aspx"
	captchaPath = "/captcha.ashx"
	landingPath = "/briefing.aspx"
	soapPath    = "/ws/fplservice.asmx"

	sessionCookieName = "ASP.NET_SessionId"
	tokenHeader       = "X-Request-Token"
	soapNamespace     = "http://briefing.ans.lv/ws/fpl"
)

// Client talks to the briefing portal. A single instance is shared by
// all callers; it holds no per-session state, so concurrent requests for
// different sessions do not block each other.
type Client struct {
	base *url.URL

	// httpc follows redirects; noRedirect is used wherever the handshake
	// must observe Location headers itself.
	httpc      *http.Client
	noRedirect *http.Client
}

// Credentials carries everything a portal call needs from an
// authenticated session.
type Credentials struct {
	Cookies string
	Token   string
	Handle  string // remote session handle issued at login
}

// NewClient builds a portal client for the given base URL. Every
// outbound call is bounded by timeout; the portal itself enforces none.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid portal base URL %q: %v", baseURL, err)
	}
	return &Client{
		base: base,
		httpc: &http.Client{
			Timeout: timeout,
		},
		noRedirect: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + path
}

// sessionExpiredPhrases are matched case-insensitively against response
// bodies before any structural parsing. The portal reports an expired
// session in several wordings, and sometimes answers a SOAP call with
// its HTML login page instead of XML.
var sessionExpiredPhrases = []string{
	"session expired",
	"session is invalid",
	"invalid session",
	"not authorized",
	"unauthorized",
	"login required",
	"please log in",
}

// looksExpired classifies a response body as an expired-session artifact.
// This runs before field extraction: an expired response usually has none
// of the expected tags and would otherwise parse to empty values, masking
// the real failure.
func looksExpired(body string) bool {
	lower := strings.ToLower(body)
	if strings.Contains(lower, "<!doctype html") || strings.Contains(lower, "<html") {
		return true
	}
	for _, phrase := range sessionExpiredPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// elem renders one namespaced element with an escaped text value.
func elem(name, value string) string {
	return "<fpl:" + name + ">" + xmlEscape(value) + "</fpl:" + name + ">"
}

// buildEnvelope wraps an operation's request element and inner fields in
// the portal's SOAP envelope. Every operation carries the remote session
// handle as its first element.
func buildEnvelope(op, handle, inner string) string {
	return `<?xml version="1.0" encoding="utf-8"?>` +
		`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/" xmlns:fpl="` + soapNamespace + `">` +
		`<soap:Body><fpl:` + op + `>` +
		elem("SessionID", handle) +
		inner +
		`</fpl:` + op + `></soap:Body></soap:Envelope>`
}

// call posts a SOAP operation and returns the raw response body after the
// session-expiry check. Idempotent read operations are retried once on
// transport failure; state-changing operations never are.
func (c *Client) call(ctx context.Context, creds Credentials, op, inner string, idempotent bool) (string, error) {
	envelope := buildEnvelope(op, creds.Handle, inner)
	body, err := c.post(ctx, creds, envelope)
	if err != nil && idempotent {
		body, err = c.post(ctx, creds, envelope)
	}
	if err != nil {
		return "", &TransportError{Op: op, Err: err}
	}
	if looksExpired(body) {
		return "", ErrSessionExpired
	}
	return body, nil
}

func (c *Client) post(ctx context.Context, creds Credentials, envelope string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(soapPath), strings.NewReader(envelope))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("Cookie", creds.Cookies)
	req.Header.Set(tokenHeader, creds.Token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return "", fmt.Errorf("portal returned status %d", resp.StatusCode)
	}
	return string(body), nil
}
