package portal

import (
	"errors"
	"fmt"
)

// Handshake and session failures. Each handshake step has its own
// sentinel so callers can tell a retryable captcha miss from a broken
// portal page.
var (
	// ErrNoSessionCookie means the login page did not set the portal's
	// session-establishing cookie.
	ErrNoSessionCookie = errors.New("login page did not set a session cookie")
	// ErrNoToken means the request token was not found in the login page.
	ErrNoToken = errors.New("request token not found in login page")
	// ErrInvalidCredentials means the portal rejected the user name,
	// password or captcha answer.
	ErrInvalidCredentials = errors.New("invalid user name, password or captcha")
	// ErrLoginRedirect means the portal bounced the authenticated landing
	// request back to the login page.
	ErrLoginRedirect = errors.New("portal redirected back to the login page")
	// ErrSessionExtract means the session token and handle could not be
	// scraped from the landing page.
	ErrSessionExtract = errors.New("session data not found in landing page")
	// ErrSessionExpired means the portal no longer recognizes the remote
	// session; the caller must re-authenticate.
	ErrSessionExpired = errors.New("portal session expired")
)

// TransportError wraps a failed HTTP exchange with the portal: a network
// error or a 5xx answer.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("portal: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
