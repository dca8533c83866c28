package portal

import "strings"

// The portal issues cookies across redirects and expects every one of
// them back verbatim, so cookie state is carried around as a plain
// Cookie header string instead of a per-URL jar.

// mergeCookies folds newly observed Set-Cookie headers into an existing
// Cookie header string. Every name present in either input survives and
// the most recently observed value wins.
func mergeCookies(existing string, setCookies []string) string {
	var names []string
	values := make(map[string]string)
	add := func(name, value string) {
		if name == "" {
			return
		}
		if _, seen := values[name]; !seen {
			names = append(names, name)
		}
		values[name] = value
	}

	for _, pair := range strings.Split(existing, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if ok {
			add(name, value)
		}
	}
	for _, header := range setCookies {
		for _, cookie := range splitSetCookie(header) {
			// Only the leading name=value pair matters; Path, Expires
			// and friends are attributes.
			first, _, _ := strings.Cut(cookie, ";")
			name, value, ok := strings.Cut(strings.TrimSpace(first), "=")
			if ok {
				add(name, value)
			}
		}
	}

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+values[name])
	}
	return strings.Join(pairs, "; ")
}

// splitSetCookie splits a raw Set-Cookie header that may carry several
// cookies separated by commas. A comma starts a new cookie only when a
// name=value pair follows it; commas inside attribute values such as
// Expires dates do not.
func splitSetCookie(header string) []string {
	var cookies []string
	start := 0
	for i := 0; i < len(header); i++ {
		if header[i] != ',' {
			continue
		}
		if startsCookiePair(header[i+1:]) {
			cookies = append(cookies, header[start:i])
			start = i + 1
		}
	}
	return append(cookies, header[start:])
}

// startsCookiePair reports whether s begins, after optional spaces, with
// a token=value pair: an '=' before any ';', ',' or space.
func startsCookiePair(s string) bool {
	s = strings.TrimLeft(s, " ")
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '=':
			return i > 0
		case ';', ',', ' ':
			return false
		}
	}
	return false
}

// cookieValue extracts a single named cookie from a merged Cookie header
// string, or "" when absent.
func cookieValue(cookies, name string) string {
	for _, pair := range strings.Split(cookies, ";") {
		n, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if ok && n == name {
			return v
		}
	}
	return ""
}
