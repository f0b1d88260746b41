package markup

import "strings"

// renderInline resolves inline spans: strong before emphasis so that **x**
// is never read as nested emphasis, then links and code spans. Unterminated
// markers fall through as literal text. Code span content is left untouched.
func renderInline(s string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		switch {
		case strings.HasPrefix(s[i:], "**"):
			if end := strings.Index(s[i+2:], "**"); end >= 0 {
				b.WriteString("<strong>")
				b.WriteString(renderInline(s[i+2 : i+2+end]))
				b.WriteString("</strong>")
				i += end + 4
				continue
			}
		case s[i] == '*':
			if end := strings.IndexByte(s[i+1:], '*'); end >= 0 {
				b.WriteString("<em>")
				b.WriteString(renderInline(s[i+1 : i+1+end]))
				b.WriteString("</em>")
				i += end + 2
				continue
			}
		case s[i] == '`':
			if end := strings.IndexByte(s[i+1:], '`'); end >= 0 {
				b.WriteString("<code>")
				b.WriteString(s[i+1 : i+1+end])
				b.WriteString("</code>")
				i += end + 2
				continue
			}
		case s[i] == '[':
			if label, url, n, ok := parseLink(s[i:]); ok {
				b.WriteString(`<a href="`)
				b.WriteString(url)
				b.WriteString(`" target="_blank" rel="noopener noreferrer">`)
				b.WriteString(renderInline(label))
				b.WriteString("</a>")
				i += n
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// parseLink matches a leading "[label](url)" and returns its parts plus the
// number of bytes consumed.
func parseLink(s string) (label, url string, n int, ok bool) {
	mid := strings.Index(s, "](")
	if !strings.HasPrefix(s, "[") || mid < 0 {
		return "", "", 0, false
	}
	end := strings.IndexByte(s[mid+2:], ')')
	if end < 0 {
		return "", "", 0, false
	}
	return s[1:mid], s[mid+2 : mid+2+end], mid + 2 + end + 1, true
}
