package portal

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// The portal's XML is inconsistent about namespace prefixes: the same
// operation may answer <ns1:Tag> one day and <Tag> the next. Lookups are
// therefore regex-based and prefix-tolerant. They are also non-recursive:
// the first match in the given substring wins, which holds for the
// portal's flat leaf elements.

var (
	tagPatterns   = make(map[string]*regexp.Regexp)
	tagPatternsMu sync.Mutex
)

func tagPattern(tag string) *regexp.Regexp {
	tagPatternsMu.Lock()
	defer tagPatternsMu.Unlock()
	if re, ok := tagPatterns[tag]; ok {
		return re
	}
	re := regexp.MustCompile(`(?is)<(?:[a-z0-9_]+:)?` + regexp.QuoteMeta(tag) +
		`(?:\s[^>]*)?>(.*?)</(?:[a-z0-9_]+:)?` + regexp.QuoteMeta(tag) + `\s*>`)
	tagPatterns[tag] = re
	return re
}

// tagValue returns the text of the first occurrence of tag in body,
// entity-unescaped and trimmed, or "" when absent.
func tagValue(body, tag string) string {
	m := tagPattern(tag).FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(xmlUnescape(m[1]))
}

// intValue parses the tag text as an integer, falling back to zero when
// the tag is absent or malformed.
func intValue(body, tag string) int {
	n, err := strconv.Atoi(tagValue(body, tag))
	if err != nil {
		return 0
	}
	return n
}

// boolValue reports whether the tag text is the portal's idea of true:
// the literal "1" or "true".
func boolValue(body, tag string) bool {
	v := tagValue(body, tag)
	return v == "1" || strings.EqualFold(v, "true")
}

// tagBlocks returns the inner content of every occurrence of the named
// wrapper element, for repeated-element parsing.
func tagBlocks(body, tag string) []string {
	var blocks []string
	for _, m := range tagPattern(tag).FindAllStringSubmatch(body, -1) {
		blocks = append(blocks, m[1])
	}
	return blocks
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

var xmlUnescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

// xmlEscape escapes free-text field content for envelope interpolation.
func xmlEscape(s string) string { return xmlEscaper.Replace(s) }

func xmlUnescape(s string) string { return xmlUnescaper.Replace(s) }
