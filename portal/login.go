package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// The login handshake is three strictly ordered steps: init fetches the
// login page for cookies and a request token, the captcha image is
// fetched with those cookies, and the credential post is followed by a
// second landing-page fetch that yields the real session data. The
// portal delivers "logged in" and "session data" through two unrelated
// documents, so both requests are unavoidable.

// PendingLogin is the output of the init step: everything needed to
// fetch a captcha and submit credentials.
type PendingLogin struct {
	Cookies string
	Token   string
}

// LoginResult is the output of a completed handshake.
type LoginResult struct {
	Cookies string
	Token   string
	Handle  string
}

var (
	// The login page sets the request token in an inline script call.
	reqTokenPattern = regexp.MustCompile(`setReqToken\(\s*['"]([^'"]+)['"]`)
	// The landing page constructs its session object with the fresh
	// token and the remote session handle as string literals.
	portalSessionPattern = regexp.MustCompile(`new\s+PortalSession\(\s*['"]([^'"]+)['"]\s*,\s*['"]([^'"]+)['"]`)
)

// The login response marks a rejected credential post with an inline
// error element rather than a status code.
const loginErrorMarker = `id="loginError"`

// LoginInit fetches the login page without following redirects, collects
// its cookies and scrapes the embedded request token.
func (c *Client) LoginInit(ctx context.Context) (*PendingLogin, error) {
	body, resp, err := c.get(ctx, c.endpoint(loginPath), "")
	if err != nil {
		return nil, &TransportError{Op: "login init", Err: err}
	}
	cookies := mergeCookies("", resp.Header.Values("Set-Cookie"))
	if cookieValue(cookies, sessionCookieName) == "" {
		return nil, ErrNoSessionCookie
	}
	m := reqTokenPattern.FindStringSubmatch(body)
	if m == nil {
		return nil, ErrNoToken
	}
	return &PendingLogin{Cookies: cookies, Token: m[1]}, nil
}

// FetchCaptcha returns the captcha image for a pending login along with
// its content type. The bytes pass through untouched.
func (c *Client) FetchCaptcha(ctx context.Context, pending *PendingLogin) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(captchaPath), nil)
	if err != nil {
		return nil, "", &TransportError{Op: "captcha", Err: err}
	}
	req.Header.Set("Cookie", pending.Cookies)
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, "", &TransportError{Op: "captcha", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", &TransportError{Op: "captcha", Err: fmt.Errorf("portal returned status %d", resp.StatusCode)}
	}
	img, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &TransportError{Op: "captcha", Err: err}
	}
	return img, resp.Header.Get("Content-Type"), nil
}

// SubmitLogin posts the credentials and captcha answer, then fetches the
// authenticated landing page for the fresh token and remote session
// handle the login response itself does not carry.
func (c *Client) SubmitLogin(ctx context.Context, pending *PendingLogin, username, password, captcha string) (*LoginResult, error) {
	form := url.Values{
		"userName": {username},
		"password": {password},
		"lang":     {"en"},
		"captcha":  {captcha},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(loginPath), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &TransportError{Op: "login submit", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cookie", pending.Cookies)
	req.Header.Set(tokenHeader, pending.Token)

	resp, err := c.noRedirect.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "login submit", Err: err}
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, &TransportError{Op: "login submit", Err: err}
	}
	cookies := mergeCookies(pending.Cookies, resp.Header.Values("Set-Cookie"))
	if strings.Contains(string(body), loginErrorMarker) {
		return nil, ErrInvalidCredentials
	}

	// The login response only says "no error". The session token and
	// handle live in the landing page.
	landing, landingResp, err := c.get(ctx, c.endpoint(landingPath), cookies)
	if err != nil {
		return nil, &TransportError{Op: "landing page", Err: err}
	}
	cookies = mergeCookies(cookies, landingResp.Header.Values("Set-Cookie"))

	if isRedirect(landingResp.StatusCode) {
		location := landingResp.Header.Get("Location")
		if strings.Contains(location, loginPath) {
			return nil, ErrLoginRedirect
		}
		target, err := landingResp.Request.URL.Parse(location)
		if err != nil {
			return nil, &TransportError{Op: "landing redirect", Err: err}
		}
		landing, landingResp, err = c.get(ctx, target.String(), cookies)
		if err != nil {
			return nil, &TransportError{Op: "landing redirect", Err: err}
		}
		cookies = mergeCookies(cookies, landingResp.Header.Values("Set-Cookie"))
	}

	m := portalSessionPattern.FindStringSubmatch(landing)
	if m == nil {
		return nil, ErrSessionExtract
	}
	return &LoginResult{Cookies: cookies, Token: m[1], Handle: m[2]}, nil
}

// get issues a GET without following redirects, optionally with a Cookie
// header, and returns the body alongside the response for header access.
func (c *Client) get(ctx context.Context, rawURL, cookies string) (string, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", nil, err
	}
	if cookies != "" {
		req.Header.Set("Cookie", cookies)
	}
	resp, err := c.noRedirect.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, err
	}
	return string(body), resp, nil
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther, http.StatusTemporaryRedirect:
		return true
	}
	return false
}
