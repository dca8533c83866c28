package portal

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePortal scripts the portal's login pages: the login form with its
// inline token script, the captcha image, the credential post and the
// landing page chain.
type fakePortal struct {
	password string
	// set when the credential post succeeded
	authed bool
}

func (p *fakePortal) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+loginPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "ASP.NET_SessionId=sid42; path=/; HttpOnly")
		w.Header().Add("Set-Cookie", "lang=en; path=/")
		w.Write([]byte(`<html><script>setReqToken('tok-1');</script></html>`))
	})
	mux.HandleFunc("GET "+captchaPath, func(w http.ResponseWriter, r *http.Request) {
		if cookieValue(r.Header.Get("Cookie"), sessionCookieName) == "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("PNGBYTES"))
	})
	mux.HandleFunc("POST "+loginPath, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("password") != p.password || r.Header.Get(tokenHeader) == "" {
			w.Write([]byte(`<html><span id="loginError">wrong</span></html>`))
			return
		}
		p.authed = true
		w.Header().Add("Set-Cookie", "auth=granted; path=/")
		w.Write([]byte(`<html>ok</html>`))
	})
	mux.HandleFunc("GET "+landingPath, func(w http.ResponseWriter, r *http.Request) {
		if cookieValue(r.Header.Get("Cookie"), "auth") == "" {
			http.Redirect(w, r, loginPath, http.StatusFound)
			return
		}
		// The portal bounces once more before the real landing page.
		w.Header().Add("Set-Cookie", "hop=1; path=/")
		http.Redirect(w, r, "/briefing-main.aspx", http.StatusFound)
	})
	mux.HandleFunc("GET /briefing-main.aspx", func(w http.ResponseWriter, r *http.Request) {
		if cookieValue(r.Header.Get("Cookie"), "hop") == "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(`<html><script>var s = new PortalSession('tok-2', 'handle-9');</script></html>`))
	})
	return mux
}

func TestLoginHandshake(t *testing.T) {
	portal := &fakePortal{password: "secret"}
	client, _ := newTestClient(t, portal.handler())
	ctx := context.Background()

	pending, err := client.LoginInit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", pending.Token)
	assert.Equal(t, "sid42", cookieValue(pending.Cookies, sessionCookieName))
	assert.Equal(t, "en", cookieValue(pending.Cookies, "lang"))

	img, contentType, err := client.FetchCaptcha(ctx, pending)
	require.NoError(t, err)
	assert.Equal(t, []byte("PNGBYTES"), img)
	assert.Equal(t, "image/png", contentType)

	result, err := client.SubmitLogin(ctx, pending, "user", "secret", "1234")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", result.Token)
	assert.Equal(t, "handle-9", result.Handle)
	// Cookies picked up along the whole chain survive the merge.
	assert.Equal(t, "sid42", cookieValue(result.Cookies, sessionCookieName))
	assert.Equal(t, "granted", cookieValue(result.Cookies, "auth"))
	assert.Equal(t, "1", cookieValue(result.Cookies, "hop"))
	assert.True(t, portal.authed)
}

func TestFetchCaptchaRejectedStatus(t *testing.T) {
	portal := &fakePortal{password: "secret"}
	client, _ := newTestClient(t, portal.handler())

	// Without the session cookie the portal answers 403; the bytes of
	// that page must not be relayed as a captcha image.
	_, _, err := client.FetchCaptcha(context.Background(), &PendingLogin{Token: "tok-1"})
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "captcha", terr.Op)
}

func TestLoginInitMissingSessionCookie(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><script>setReqToken('tok-1');</script></html>`))
	}))
	_, err := client.LoginInit(context.Background())
	assert.ErrorIs(t, err, ErrNoSessionCookie)
}

func TestLoginInitMissingToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "ASP.NET_SessionId=sid42; path=/")
		w.Write([]byte(`<html>no script here</html>`))
	}))
	_, err := client.LoginInit(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestSubmitLoginInvalidCredentials(t *testing.T) {
	portal := &fakePortal{password: "secret"}
	client, _ := newTestClient(t, portal.handler())
	ctx := context.Background()

	pending, err := client.LoginInit(ctx)
	require.NoError(t, err)
	_, err = client.SubmitLogin(ctx, pending, "user", "wrong", "1234")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSubmitLoginRedirectBackToLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+loginPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "ASP.NET_SessionId=sid42; path=/")
		w.Write([]byte(`<script>setReqToken('tok-1');</script>`))
	})
	mux.HandleFunc("POST "+loginPath, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`ok`))
	})
	mux.HandleFunc("GET "+landingPath, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, loginPath+"?expired=1", http.StatusFound)
	})
	client, _ := newTestClient(t, mux)
	ctx := context.Background()

	pending, err := client.LoginInit(ctx)
	require.NoError(t, err)
	_, err = client.SubmitLogin(ctx, pending, "user", "pw", "1234")
	assert.ErrorIs(t, err, ErrLoginRedirect)
}

func TestSubmitLoginUnextractableSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+loginPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "ASP.NET_SessionId=sid42; path=/")
		w.Write([]byte(`<script>setReqToken('tok-1');</script>`))
	})
	mux.HandleFunc("POST "+loginPath, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`ok`))
	})
	mux.HandleFunc("GET "+landingPath, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>nothing useful</html>`))
	})
	client, _ := newTestClient(t, mux)
	ctx := context.Background()

	pending, err := client.LoginInit(ctx)
	require.NoError(t, err)
	_, err = client.SubmitLogin(ctx, pending, "user", "pw", "1234")
	assert.ErrorIs(t, err, ErrSessionExtract)
}
