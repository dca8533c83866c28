package portal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func cookieSet(merged string) map[string]string {
	set := make(map[string]string)
	for _, pair := range strings.Split(merged, "; ") {
		if name, value, ok := strings.Cut(pair, "="); ok {
			set[name] = value
		}
	}
	return set
}

func TestMergeCookies(t *testing.T) {
	merged := mergeCookies("a=1; b=2", []string{"b=3; Path=/", "c=4"})
	assert.Equal(t, map[string]string{"a": "1", "b": "3", "c": "4"}, cookieSet(merged))
}

func TestMergeCookiesKeepsEveryName(t *testing.T) {
	merged := mergeCookies("", []string{"ASP.NET_SessionId=abc123; path=/; HttpOnly"})
	merged = mergeCookies(merged, []string{"auth=tok; path=/"})
	set := cookieSet(merged)
	assert.Equal(t, "abc123", set["ASP.NET_SessionId"])
	assert.Equal(t, "tok", set["auth"])
	assert.Len(t, set, 2)
}

func TestSplitSetCookieAttributeCommas(t *testing.T) {
	// The Expires date contains a comma that must not start a new cookie.
	header := "a=1; Expires=Thu, 01 Jan 2026 00:00:00 GMT; Path=/, b=2; Path=/"
	cookies := splitSetCookie(header)
	assert.Len(t, cookies, 2)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(cookies[0]), "a=1"))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(cookies[1]), "b=2"))
}

func TestSplitSetCookieSingle(t *testing.T) {
	cookies := splitSetCookie("token=x,y,z; Path=/")
	assert.Len(t, cookies, 1)
}

func TestCookieValue(t *testing.T) {
	merged := "a=1; ASP.NET_SessionId=abc; b=2"
	assert.Equal(t, "abc", cookieValue(merged, "ASP.NET_SessionId"))
	assert.Equal(t, "", cookieValue(merged, "missing"))
}
