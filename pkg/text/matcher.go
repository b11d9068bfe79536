package text

import (
	"fmt"
	"regexp"
)

// Matcher modes accepted by NewMatcher.
const (
	ModeLiteral = "literal"
	ModeFold    = "fold"
	ModeRegexp  = "regexp"
)

// Modes lists the matcher modes.
var Modes = []string{ModeLiteral, ModeFold, ModeRegexp}

// NewMatcher picks Match, MatchFold or MatchRegexp by mode. Unlike those, it
// reports a bad mode or pattern as an error, for patterns that come from
// user input.
func NewMatcher(mode, pattern string) (*Parser, error) {
	switch mode {
	case ModeLiteral:
		return Match(pattern), nil
	case ModeFold:
		return MatchFold(pattern), nil
	case ModeRegexp:
		if _, err := regexp.Compile(pattern); err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
		return MatchRegexp(pattern), nil
	default:
		return nil, fmt.Errorf("unknown mode %q: must be one of %v", mode, Modes)
	}
}
