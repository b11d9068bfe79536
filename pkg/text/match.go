package text

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/twinfer/combo/pkg/combo"
)

// snippetRunes is how much of the remaining input a pattern failure quotes.
const snippetRunes = 20

// Match returns a parser accepting exactly literal at the cursor. Its result
// is the literal.
func Match(literal string) *Parser {
	return combo.New[string](func(s State) State {
		got := window(s.Source, s.Index, len(literal))
		if got != literal {
			return combo.Fail(s, matchError(literal, got, s.Index))
		}
		return combo.Ok(s, literal, s.Index+len(literal))
	})
}

// MatchFold is Match ignoring case. Both sides are case folded before the
// comparison; the result is the input as written, so matching "abc" against
// "ABC" yields "ABC".
func MatchFold(literal string) *Parser {
	folded := cases.Fold().String(literal)
	return combo.New[string](func(s State) State {
		got := window(s.Source, s.Index, len(literal))
		if cases.Fold().String(got) != folded {
			return combo.Fail(s, matchError(literal, got, s.Index))
		}
		return combo.Ok(s, got, s.Index+len(got))
	})
}

// MatchRegexp returns a parser for a regular expression anchored at the
// cursor. Every alternative must match at the cursor; inline flags such as
// (?i) keep working. Failures quote the pattern as written when it starts
// with "^" and as "^(?:pattern)" otherwise. The result is the whole match.
//
// An invalid pattern panics with a *combo.ConfigError.
func MatchRegexp(pattern string) *Parser {
	a := compileAnchored(pattern)
	return combo.New[string](func(s State) State {
		loc := a.re.FindStringIndex(rest(s.Source, s.Index))
		if loc == nil {
			return combo.Fail(s, a.failure(s))
		}
		return combo.Ok(s, s.Source[s.Index:s.Index+loc[1]], s.Index+loc[1])
	})
}

// MatchRegexpFunc is MatchRegexp whose result is extract applied to the
// match and its submatches (index 0 is the whole match, unmatched optional
// groups are empty strings).
func MatchRegexpFunc(pattern string, extract func(groups []string) any) *Parser {
	if extract == nil {
		panic(&combo.ConfigError{Op: "match", Message: "extract must be a valid function"})
	}
	a := compileAnchored(pattern)
	return combo.New[string](func(s State) State {
		groups := a.re.FindStringSubmatch(rest(s.Source, s.Index))
		if groups == nil {
			return combo.Fail(s, a.failure(s))
		}
		return combo.Ok(s, extract(groups), s.Index+len(groups[0]))
	})
}

// anchored is a pattern compiled as "^(?:pattern)" so that no alternative
// can match past the cursor, plus the text failures quote.
type anchored struct {
	re      *regexp.Regexp
	display string
}

func compileAnchored(pattern string) anchored {
	// The pattern must parse on its own, or a stray ")" could close the group.
	if _, err := regexp.Compile(pattern); err != nil {
		panic(&combo.ConfigError{Op: "match", Message: err.Error()})
	}
	re := regexp.MustCompile("^(?:" + pattern + ")")
	display := pattern
	if !strings.HasPrefix(pattern, "^") {
		display = re.String()
	}
	return anchored{re: re, display: display}
}

func (a anchored) failure(s State) string {
	return matchError(a.display, snippet(rest(s.Source, s.Index)), s.Index)
}

func matchError(expected, got string, index int) string {
	return fmt.Sprintf("match: Tried to match '%s', but got '%s' @ index %d", expected, got, index)
}

// rest is the input from index on, empty past the end.
func rest(source string, index int) string {
	if index >= len(source) {
		return ""
	}
	return source[index:]
}

// window is up to n bytes of source starting at index.
func window(source string, index, n int) string {
	r := rest(source, index)
	if len(r) > n {
		return r[:n]
	}
	return r
}

// snippet is up to snippetRunes runes of s.
func snippet(s string) string {
	i, n := 0, 0
	for i < len(s) && n < snippetRunes {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		n++
	}
	return s[:i]
}
