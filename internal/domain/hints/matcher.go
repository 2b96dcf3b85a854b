package hints

import (
	"regexp"
	"strings"
)

// Pattern is one entry of a ranked pattern list.
type Pattern struct {
	Name string
	Expr *regexp.Regexp
}

// P compiles a case-insensitive pattern. It panics on a bad expression and
// is meant for package-level tables.
func P(name, expr string) Pattern {
	return Pattern{Name: name, Expr: regexp.MustCompile(`(?i)` + expr)}
}

// Matcher tries its patterns in order; earlier patterns win.
type Matcher []Pattern

// Match returns the first non-empty capture group of the first matching
// pattern, or the whole match when the pattern captured nothing.
func (m Matcher) Match(text string) (string, bool) {
	v, _, ok := m.Find(text)
	return v, ok
}

// Find is Match that also reports which pattern fired.
func (m Matcher) Find(text string) (value, name string, ok bool) {
	for _, p := range m {
		sub := p.Expr.FindStringSubmatch(text)
		if sub == nil {
			continue
		}
		for _, g := range sub[1:] {
			if g != "" {
				return strings.TrimSpace(g), p.Name, true
			}
		}
		return strings.TrimSpace(sub[0]), p.Name, true
	}
	return "", "", false
}
